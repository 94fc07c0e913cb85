package entities

import "encoding/json"

// CosmosMsg is the union of all outbound messages a contract can emit.
// Exactly one field is set. Custom stays raw JSON: its shape is a private
// contract between the contract and the chain it runs on.
type CosmosMsg struct {
	Bank         *BankMsg         `json:"bank,omitempty"`
	Custom       json.RawMessage  `json:"custom,omitempty"`
	Distribution *DistributionMsg `json:"distribution,omitempty"`
	Gov          *GovMsg          `json:"gov,omitempty"`
	IBC          *IBCMsg          `json:"ibc,omitempty"`
	Staking      *StakingMsg      `json:"staking,omitempty"`
	Stargate     *StargateMsg     `json:"stargate,omitempty"`
	Wasm         *WasmMsg         `json:"wasm,omitempty"`
}

// RequiredFeature names the host feature a message variant depends on.
// Bank, gov, wasm and custom messages work on every host.
func (m CosmosMsg) RequiredFeature() (Feature, bool) {
	switch {
	case m.Staking != nil, m.Distribution != nil:
		return FeatureStaking, true
	case m.Stargate != nil, m.IBC != nil:
		return FeatureStargate, true
	}
	return "", false
}

// BankMsg moves native tokens held by the contract.
type BankMsg struct {
	Send *SendMsg `json:"send,omitempty"`
	Burn *BurnMsg `json:"burn,omitempty"`
}

// SendMsg transfers native tokens from the contract to another account.
type SendMsg struct {
	ToAddress string `json:"to_address"`
	Amount    Coins  `json:"amount"`
}

// BurnMsg destroys native tokens held by the contract.
type BurnMsg struct {
	Amount Coins `json:"amount"`
}

// StakingMsg covers the staking module operations a contract can perform
// with its own funds.
type StakingMsg struct {
	Delegate   *DelegateMsg   `json:"delegate,omitempty"`
	Undelegate *UndelegateMsg `json:"undelegate,omitempty"`
	Redelegate *RedelegateMsg `json:"redelegate,omitempty"`
}

type DelegateMsg struct {
	Validator string `json:"validator"`
	Amount    Coin   `json:"amount"`
}

type UndelegateMsg struct {
	Validator string `json:"validator"`
	Amount    Coin   `json:"amount"`
}

type RedelegateMsg struct {
	SrcValidator string `json:"src_validator"`
	DstValidator string `json:"dst_validator"`
	Amount       Coin   `json:"amount"`
}

// DistributionMsg covers reward withdrawal and withdraw-address control.
type DistributionMsg struct {
	SetWithdrawAddress      *SetWithdrawAddressMsg      `json:"set_withdraw_address,omitempty"`
	WithdrawDelegatorReward *WithdrawDelegatorRewardMsg `json:"withdraw_delegator_reward,omitempty"`
}

type SetWithdrawAddressMsg struct {
	Address string `json:"address"`
}

type WithdrawDelegatorRewardMsg struct {
	Validator string `json:"validator"`
}

// GovMsg lets a contract vote with its own stake.
type GovMsg struct {
	Vote *VoteMsg `json:"vote,omitempty"`
}

type VoteMsg struct {
	ProposalID uint64 `json:"proposal_id"`
	Vote       string `json:"vote"`
}

// Vote options accepted in VoteMsg.Vote.
const (
	VoteYes        = "yes"
	VoteNo         = "no"
	VoteAbstain    = "abstain"
	VoteNoWithVeto = "no_with_veto"
)

// StargateMsg is a protobuf message in Any form, routed by the chain
// without the host interpreting the payload.
type StargateMsg struct {
	TypeURL string `json:"type_url"`
	Value   Binary `json:"value"`
}

// IBCMsg covers outbound IBC actions.
type IBCMsg struct {
	Transfer     *TransferMsg     `json:"transfer,omitempty"`
	SendPacket   *SendPacketMsg   `json:"send_packet,omitempty"`
	CloseChannel *CloseChannelMsg `json:"close_channel,omitempty"`
}

// TransferMsg is an ICS-20 token transfer over an existing channel.
type TransferMsg struct {
	ChannelID string     `json:"channel_id"`
	ToAddress string     `json:"to_address"`
	Amount    Coin       `json:"amount"`
	Timeout   IBCTimeout `json:"timeout"`
	Memo      string     `json:"memo,omitempty"`
}

// SendPacketMsg sends an arbitrary packet over a channel owned by the
// contract's IBC port.
type SendPacketMsg struct {
	ChannelID string     `json:"channel_id"`
	Data      Binary     `json:"data"`
	Timeout   IBCTimeout `json:"timeout"`
}

type CloseChannelMsg struct {
	ChannelID string `json:"channel_id"`
}

// WasmMsg dispatches to other contracts or manages contract lifecycle.
type WasmMsg struct {
	Execute     *ExecuteMsg     `json:"execute,omitempty"`
	Instantiate *InstantiateMsg `json:"instantiate,omitempty"`
	Migrate     *MigrateMsg     `json:"migrate,omitempty"`
	UpdateAdmin *UpdateAdminMsg `json:"update_admin,omitempty"`
	ClearAdmin  *ClearAdminMsg  `json:"clear_admin,omitempty"`
}

type ExecuteMsg struct {
	ContractAddr string `json:"contract_addr"`
	Msg          Binary `json:"msg"`
	Funds        Coins  `json:"funds"`
}

type InstantiateMsg struct {
	CodeID uint64 `json:"code_id"`
	Msg    Binary `json:"msg"`
	Funds  Coins  `json:"funds"`
	Label  string `json:"label"`
	Admin  string `json:"admin,omitempty"`
}

type MigrateMsg struct {
	ContractAddr string `json:"contract_addr"`
	NewCodeID    uint64 `json:"new_code_id"`
	Msg          Binary `json:"msg"`
}

type UpdateAdminMsg struct {
	ContractAddr string `json:"contract_addr"`
	Admin        string `json:"admin"`
}

type ClearAdminMsg struct {
	ContractAddr string `json:"contract_addr"`
}
