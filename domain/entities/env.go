package entities

// Env is the chain context passed to every contract entrypoint.
type Env struct {
	Block       BlockInfo        `json:"block"`
	Transaction *TransactionInfo `json:"transaction,omitempty"`
	Contract    ContractInfo     `json:"contract"`
}

// BlockInfo describes the block the invocation executes in.
type BlockInfo struct {
	// Height is the current block height.
	Height uint64 `json:"height"`
	// Time is the block timestamp in nanoseconds since the unix epoch,
	// encoded as a string to survive JSON number precision limits.
	Time    string `json:"time"`
	ChainID string `json:"chain_id"`
	// Random is the per-block beacon entropy, present only when the host
	// runs with the randomness capability enabled.
	Random *Binary `json:"random,omitempty"`
}

// TransactionInfo is present for entrypoints executed in a transaction,
// absent for begin/end block style calls.
type TransactionInfo struct {
	// Index of the transaction in the block.
	Index uint32 `json:"index"`
}

// ContractInfo identifies the contract instance being invoked.
type ContractInfo struct {
	Address Addr `json:"address"`
	// CodeHash is the hex checksum of the contract's code.
	CodeHash string `json:"code_hash,omitempty"`
}

// MessageInfo describes the message that triggered an instantiate or
// execute call: who sent it and which native funds were transferred to the
// contract up front.
type MessageInfo struct {
	Sender Addr  `json:"sender"`
	Funds  Coins `json:"funds"`
}
