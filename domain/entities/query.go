package entities

import "encoding/json"

// QueryRequest is the union of all queries a contract can send back to the
// chain through the query host function. Exactly one field is set. Custom
// stays raw JSON, uninterpreted by the host.
type QueryRequest struct {
	Bank     *BankQuery      `json:"bank,omitempty"`
	Custom   json.RawMessage `json:"custom,omitempty"`
	IBC      *IBCQuery       `json:"ibc,omitempty"`
	Staking  *StakingQuery   `json:"staking,omitempty"`
	Stargate *StargateQuery  `json:"stargate,omitempty"`
	Wasm     *WasmQuery      `json:"wasm,omitempty"`
}

// BankQuery reads native token state.
type BankQuery struct {
	Balance     *BalanceQuery     `json:"balance,omitempty"`
	AllBalances *AllBalancesQuery `json:"all_balances,omitempty"`
	// Supply requires a host runtime of at least 1.1.
	Supply *SupplyQuery `json:"supply,omitempty"`
}

type BalanceQuery struct {
	Address string `json:"address"`
	Denom   string `json:"denom"`
}

type AllBalancesQuery struct {
	Address string `json:"address"`
}

type SupplyQuery struct {
	Denom string `json:"denom"`
}

type BalanceResponse struct {
	Amount Coin `json:"amount"`
}

type AllBalancesResponse struct {
	Amount Coins `json:"amount"`
}

type SupplyResponse struct {
	Amount Coin `json:"amount"`
}

// StakingQuery reads staking module state.
type StakingQuery struct {
	AllValidators  *AllValidatorsQuery  `json:"all_validators,omitempty"`
	Validator      *ValidatorQuery      `json:"validator,omitempty"`
	AllDelegations *AllDelegationsQuery `json:"all_delegations,omitempty"`
	Delegation     *DelegationQuery     `json:"delegation,omitempty"`
	BondedDenom    *struct{}            `json:"bonded_denom,omitempty"`
}

type AllValidatorsQuery struct{}

type ValidatorQuery struct {
	Address string `json:"address"`
}

type AllDelegationsQuery struct {
	Delegator string `json:"delegator"`
}

type DelegationQuery struct {
	Delegator string `json:"delegator"`
	Validator string `json:"validator"`
}

type Validator struct {
	Address       string `json:"address"`
	Commission    string `json:"commission"`
	MaxCommission string `json:"max_commission"`
	MaxChangeRate string `json:"max_change_rate"`
}

type AllValidatorsResponse struct {
	Validators []Validator `json:"validators"`
}

type ValidatorResponse struct {
	Validator *Validator `json:"validator,omitempty"`
}

type Delegation struct {
	Delegator string `json:"delegator"`
	Validator string `json:"validator"`
	Amount    Coin   `json:"amount"`
}

type FullDelegation struct {
	Delegator          string `json:"delegator"`
	Validator          string `json:"validator"`
	Amount             Coin   `json:"amount"`
	AccumulatedRewards Coins  `json:"accumulated_rewards"`
	CanRedelegate      Coin   `json:"can_redelegate"`
}

type AllDelegationsResponse struct {
	Delegations []Delegation `json:"delegations"`
}

type DelegationResponse struct {
	Delegation *FullDelegation `json:"delegation,omitempty"`
}

type BondedDenomResponse struct {
	Denom string `json:"denom"`
}

// StargateQuery is a protobuf query routed by full type URL, response
// returned verbatim.
type StargateQuery struct {
	Path string `json:"path"`
	Data Binary `json:"data"`
}

// IBCQuery reads the IBC state of the calling contract's port.
type IBCQuery struct {
	PortID       *PortIDQuery       `json:"port_id,omitempty"`
	Channel      *ChannelQuery      `json:"channel,omitempty"`
	ListChannels *ListChannelsQuery `json:"list_channels,omitempty"`
}

type PortIDQuery struct{}

type PortIDResponse struct {
	PortID string `json:"port_id"`
}

type ChannelQuery struct {
	ChannelID string `json:"channel_id"`
	// PortID defaults to the contract's own port when empty.
	PortID string `json:"port_id,omitempty"`
}

type ChannelResponse struct {
	Channel *IBCChannel `json:"channel,omitempty"`
}

type ListChannelsQuery struct {
	PortID string `json:"port_id,omitempty"`
}

type ListChannelsResponse struct {
	Channels []IBCChannel `json:"channels"`
}

// WasmQuery reads other contracts' state.
type WasmQuery struct {
	Smart        *SmartQuery        `json:"smart,omitempty"`
	Raw          *RawQuery          `json:"raw,omitempty"`
	ContractInfo *ContractInfoQuery `json:"contract_info,omitempty"`
}

// SmartQuery invokes the query entrypoint of another contract.
type SmartQuery struct {
	ContractAddr string `json:"contract_addr"`
	Msg          Binary `json:"msg"`
}

// RawQuery reads another contract's storage directly, bypassing its code.
type RawQuery struct {
	ContractAddr string `json:"contract_addr"`
	Key          Binary `json:"key"`
}

type ContractInfoQuery struct {
	ContractAddr string `json:"contract_addr"`
}

type ContractInfoResponse struct {
	CodeID  uint64 `json:"code_id"`
	Creator string `json:"creator"`
	Admin   string `json:"admin,omitempty"`
	Pinned  bool   `json:"pinned"`
	IBCPort string `json:"ibc_port,omitempty"`
}
