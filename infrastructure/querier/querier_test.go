package querier

import (
	"encoding/json"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kromsten/cosmwasm/domain/entities"
)

const gasLimit = 1_000_000

func TestQuerier_BankBalance(t *testing.T) {
	q := New()
	q.SetBalance("cosmos1rich", entities.Coins{
		entities.NewCoin(500, "uatom"),
		entities.NewCoin(7, "uosmo"),
	})

	resp, err := q.Query(entities.QueryRequest{
		Bank: &entities.BankQuery{Balance: &entities.BalanceQuery{Address: "cosmos1rich", Denom: "uatom"}},
	}, gasLimit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":{"denom":"uatom","amount":"500"}}`, string(resp))

	// unknown denom answers zero, not an error
	resp, err = q.Query(entities.QueryRequest{
		Bank: &entities.BankQuery{Balance: &entities.BalanceQuery{Address: "cosmos1rich", Denom: "ujuno"}},
	}, gasLimit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":{"denom":"ujuno","amount":"0"}}`, string(resp))
}

func TestQuerier_AllBalancesEmptyIsArray(t *testing.T) {
	q := New()

	resp, err := q.Query(entities.QueryRequest{
		Bank: &entities.BankQuery{AllBalances: &entities.AllBalancesQuery{Address: "cosmos1empty"}},
	}, gasLimit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":[]}`, string(resp))
}

func TestQuerier_Supply(t *testing.T) {
	q := New()
	q.SetSupply("uatom", "340282366920938463463374607431768211455")

	resp, err := q.Query(entities.QueryRequest{
		Bank: &entities.BankQuery{Supply: &entities.SupplyQuery{Denom: "uatom"}},
	}, gasLimit)
	require.NoError(t, err)

	var parsed entities.SupplyResponse
	require.NoError(t, json.Unmarshal(resp, &parsed))
	assert.Equal(t, "340282366920938463463374607431768211455", parsed.Amount.Amount)
}

func TestQuerier_Staking(t *testing.T) {
	q := New()
	q.SetBondedDenom("ustake")
	q.SetValidators([]entities.Validator{
		{Address: "cosmosvaloper1a", Commission: "0.05", MaxCommission: "0.20", MaxChangeRate: "0.01"},
	})
	q.SetDelegations([]entities.FullDelegation{
		{
			Delegator:          "cosmos1del",
			Validator:          "cosmosvaloper1a",
			Amount:             entities.NewCoin(1000, "ustake"),
			AccumulatedRewards: entities.Coins{},
			CanRedelegate:      entities.NewCoin(1000, "ustake"),
		},
	})

	resp, err := q.Query(entities.QueryRequest{
		Staking: &entities.StakingQuery{BondedDenom: &struct{}{}},
	}, gasLimit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"denom":"ustake"}`, string(resp))

	resp, err = q.Query(entities.QueryRequest{
		Staking: &entities.StakingQuery{Validator: &entities.ValidatorQuery{Address: "cosmosvaloper1a"}},
	}, gasLimit)
	require.NoError(t, err)
	var vr entities.ValidatorResponse
	require.NoError(t, json.Unmarshal(resp, &vr))
	require.NotNil(t, vr.Validator)
	assert.Equal(t, "0.05", vr.Validator.Commission)

	// unknown validator gives null, not an error
	resp, err = q.Query(entities.QueryRequest{
		Staking: &entities.StakingQuery{Validator: &entities.ValidatorQuery{Address: "cosmosvaloper1ghost"}},
	}, gasLimit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"validator":null}`, string(resp))

	resp, err = q.Query(entities.QueryRequest{
		Staking: &entities.StakingQuery{Delegation: &entities.DelegationQuery{Delegator: "cosmos1del", Validator: "cosmosvaloper1a"}},
	}, gasLimit)
	require.NoError(t, err)
	var dr entities.DelegationResponse
	require.NoError(t, json.Unmarshal(resp, &dr))
	require.NotNil(t, dr.Delegation)
	assert.Equal(t, "1000", dr.Delegation.Amount.Amount)
}

func TestQuerier_WasmSmartAndRaw(t *testing.T) {
	q := New()
	q.RegisterSmart("cosmos1counter", func(msg []byte) ([]byte, error) {
		assert.JSONEq(t, `{"count":{}}`, string(msg))
		return []byte(`{"count":42}`), nil
	})
	q.SetRaw("cosmos1counter", []byte("state"), []byte{0x2A})

	resp, err := q.Query(entities.QueryRequest{
		Wasm: &entities.WasmQuery{Smart: &entities.SmartQuery{ContractAddr: "cosmos1counter", Msg: entities.Binary(`{"count":{}}`)}},
	}, gasLimit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":42}`, string(resp))

	resp, err = q.Query(entities.QueryRequest{
		Wasm: &entities.WasmQuery{Raw: &entities.RawQuery{ContractAddr: "cosmos1counter", Key: entities.Binary("state")}},
	}, gasLimit)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x2A}, resp)

	// missing contract is a system error
	_, err = q.Query(entities.QueryRequest{
		Wasm: &entities.WasmQuery{Smart: &entities.SmartQuery{ContractAddr: "cosmos1ghost", Msg: entities.Binary(`{}`)}},
	}, gasLimit)
	var sysErr *entities.SystemError
	require.True(t, stdErrors.As(err, &sysErr))
	require.NotNil(t, sysErr.NoSuchContract)
	assert.Equal(t, "cosmos1ghost", sysErr.NoSuchContract.Addr)
}

func TestQuerier_Stargate(t *testing.T) {
	q := New()
	q.RegisterStargate("/cosmos.bank.v1beta1.Query/DenomMetadata", func(data []byte) ([]byte, error) {
		return []byte(`{"metadata":{}}`), nil
	})

	resp, err := q.Query(entities.QueryRequest{
		Stargate: &entities.StargateQuery{Path: "/cosmos.bank.v1beta1.Query/DenomMetadata"},
	}, gasLimit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"metadata":{}}`, string(resp))

	_, err = q.Query(entities.QueryRequest{
		Stargate: &entities.StargateQuery{Path: "/unknown.Path"},
	}, gasLimit)
	var sysErr *entities.SystemError
	require.True(t, stdErrors.As(err, &sysErr))
	require.NotNil(t, sysErr.UnsupportedRequest)
}

func TestQuerier_IBC(t *testing.T) {
	q := New()
	channel := entities.IBCChannel{
		Endpoint:             entities.IBCEndpoint{PortID: "wasm.cosmos1c", ChannelID: "channel-3"},
		CounterpartyEndpoint: entities.IBCEndpoint{PortID: "transfer", ChannelID: "channel-9"},
		Order:                entities.IBCOrderUnordered,
		Version:              "ics20-1",
		ConnectionID:         "connection-0",
	}
	q.SetIBC("wasm.cosmos1c", []entities.IBCChannel{channel})

	resp, err := q.Query(entities.QueryRequest{
		IBC: &entities.IBCQuery{PortID: &entities.PortIDQuery{}},
	}, gasLimit)
	require.NoError(t, err)
	assert.JSONEq(t, `{"port_id":"wasm.cosmos1c"}`, string(resp))

	resp, err = q.Query(entities.QueryRequest{
		IBC: &entities.IBCQuery{Channel: &entities.ChannelQuery{ChannelID: "channel-3"}},
	}, gasLimit)
	require.NoError(t, err)
	var cr entities.ChannelResponse
	require.NoError(t, json.Unmarshal(resp, &cr))
	require.NotNil(t, cr.Channel)
	assert.Equal(t, "ics20-1", cr.Channel.Version)

	resp, err = q.Query(entities.QueryRequest{
		IBC: &entities.IBCQuery{ListChannels: &entities.ListChannelsQuery{}},
	}, gasLimit)
	require.NoError(t, err)
	var lr entities.ListChannelsResponse
	require.NoError(t, json.Unmarshal(resp, &lr))
	assert.Len(t, lr.Channels, 1)
}

func TestQuerier_UnroutableRequests(t *testing.T) {
	q := New()

	_, err := q.Query(entities.QueryRequest{}, gasLimit)
	var sysErr *entities.SystemError
	require.True(t, stdErrors.As(err, &sysErr))
	assert.NotNil(t, sysErr.Unknown)

	_, err = q.Query(entities.QueryRequest{Custom: json.RawMessage(`{}`)}, gasLimit)
	require.True(t, stdErrors.As(err, &sysErr))
	require.NotNil(t, sysErr.UnsupportedRequest)
	assert.Equal(t, "custom", sysErr.UnsupportedRequest.Kind)
}

func TestQuerier_GasAccounting(t *testing.T) {
	q := New()
	require.Zero(t, q.GasConsumed())

	_, _ = q.Query(entities.QueryRequest{Bank: &entities.BankQuery{AllBalances: &entities.AllBalancesQuery{Address: "a"}}}, gasLimit)
	assert.Equal(t, uint64(gasPerQuery), q.GasConsumed())

	// tight limit trips after the first query
	_, err := q.Query(entities.QueryRequest{Bank: &entities.BankQuery{AllBalances: &entities.AllBalancesQuery{Address: "a"}}}, gasPerQuery)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of gas")
}
