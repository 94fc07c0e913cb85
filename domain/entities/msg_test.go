package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosmosMsg_BankSendWireFormat(t *testing.T) {
	msg := CosmosMsg{
		Bank: &BankMsg{
			Send: &SendMsg{
				ToAddress: "cosmos1xyz",
				Amount:    Coins{NewCoin(12345, "ustake")},
			},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"bank":{"send":{"to_address":"cosmos1xyz","amount":[{"denom":"ustake","amount":"12345"}]}}}`,
		string(data))

	var parsed CosmosMsg
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.NotNil(t, parsed.Bank)
	require.NotNil(t, parsed.Bank.Send)
	assert.Equal(t, "cosmos1xyz", parsed.Bank.Send.ToAddress)
	assert.Nil(t, parsed.Staking)
	assert.Nil(t, parsed.Stargate)
}

func TestCosmosMsg_StakingDelegate(t *testing.T) {
	msg := CosmosMsg{
		Staking: &StakingMsg{
			Delegate: &DelegateMsg{
				Validator: "cosmosvaloper1abc",
				Amount:    NewCoin(777, "ustake"),
			},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"staking":{"delegate":{"validator":"cosmosvaloper1abc","amount":{"denom":"ustake","amount":"777"}}}}`,
		string(data))
}

func TestCosmosMsg_StargateCarriesBase64Value(t *testing.T) {
	msg := CosmosMsg{
		Stargate: &StargateMsg{
			TypeURL: "/cosmos.gov.v1beta1.MsgVote",
			Value:   Binary{0x0a, 0x01, 0x02},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"stargate":{"type_url":"/cosmos.gov.v1beta1.MsgVote","value":"CgEC"}}`,
		string(data))
}

func TestCosmosMsg_IBCTransferTimeout(t *testing.T) {
	msg := CosmosMsg{
		IBC: &IBCMsg{
			Transfer: &TransferMsg{
				ChannelID: "channel-7",
				ToAddress: "juno1dest",
				Amount:    NewCoin(1, "ujuno"),
				Timeout: IBCTimeout{
					Block: &IBCTimeoutBlock{Revision: 1, Height: 500},
				},
			},
		},
	}

	data, err := json.Marshal(msg)
	require.NoError(t, err)

	var parsed CosmosMsg
	require.NoError(t, json.Unmarshal(data, &parsed))
	require.NotNil(t, parsed.IBC)
	require.NotNil(t, parsed.IBC.Transfer)
	require.NotNil(t, parsed.IBC.Transfer.Timeout.Block)
	assert.Equal(t, uint64(500), parsed.IBC.Transfer.Timeout.Block.Height)
	assert.Empty(t, parsed.IBC.Transfer.Timeout.Timestamp)
}

func TestResponse_EmptyCollectionsStayArrays(t *testing.T) {
	resp := Response{
		Messages:   []SubMsg{},
		Attributes: []Attribute{},
		Events:     []Event{},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	// Contracts serialize empty vectors as [], not null. Keep the host
	// symmetric so round trips are stable.
	assert.JSONEq(t, `{"messages":[],"attributes":[],"events":[]}`, string(data))
}

func TestSubMsg_ReplyOnWire(t *testing.T) {
	gasLimit := uint64(400_000)
	sub := SubMsg{
		ID:       9,
		Msg:      CosmosMsg{Bank: &BankMsg{Burn: &BurnMsg{Amount: Coins{NewCoin(5, "uatom")}}}},
		GasLimit: &gasLimit,
		ReplyOn:  ReplyOnError,
	}

	data, err := json.Marshal(sub)
	require.NoError(t, err)

	var parsed SubMsg
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, ReplyOnError, parsed.ReplyOn)
	require.NotNil(t, parsed.GasLimit)
	assert.Equal(t, uint64(400_000), *parsed.GasLimit)
}

func TestCosmosMsg_CustomIsArbitraryJSON(t *testing.T) {
	raw := `{"messages":[{"id":1,"msg":{"custom":{"ping":{}}},"reply_on":"never"}],"attributes":[],"events":[]}`

	var resp Response
	require.NoError(t, json.Unmarshal([]byte(raw), &resp))
	require.Len(t, resp.Messages, 1)
	assert.JSONEq(t, `{"ping":{}}`, string(resp.Messages[0].Msg.Custom))

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(data))
}

func TestQueryRequest_CustomIsArbitraryJSON(t *testing.T) {
	var req QueryRequest
	require.NoError(t, json.Unmarshal([]byte(`{"custom":{"price":{"denom":"uatom"}}}`), &req))
	assert.JSONEq(t, `{"price":{"denom":"uatom"}}`, string(req.Custom))
	assert.Nil(t, req.Bank)
}

func TestCosmosMsg_RequiredFeature(t *testing.T) {
	cases := []struct {
		name    string
		msg     CosmosMsg
		feature Feature
		gated   bool
	}{
		{"bank", CosmosMsg{Bank: &BankMsg{}}, "", false},
		{"custom", CosmosMsg{Custom: json.RawMessage(`{}`)}, "", false},
		{"wasm", CosmosMsg{Wasm: &WasmMsg{}}, "", false},
		{"gov", CosmosMsg{Gov: &GovMsg{}}, "", false},
		{"staking", CosmosMsg{Staking: &StakingMsg{}}, FeatureStaking, true},
		{"distribution", CosmosMsg{Distribution: &DistributionMsg{}}, FeatureStaking, true},
		{"stargate", CosmosMsg{Stargate: &StargateMsg{}}, FeatureStargate, true},
		{"ibc", CosmosMsg{IBC: &IBCMsg{}}, FeatureStargate, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			feature, gated := tc.msg.RequiredFeature()
			assert.Equal(t, tc.gated, gated)
			assert.Equal(t, tc.feature, feature)
		})
	}
}
