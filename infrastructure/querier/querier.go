// Package querier provides an in-memory implementation of the querier port.
// Embedders on a real chain route queries into their modules instead; this
// implementation backs tests and standalone hosts.
package querier

import (
	"encoding/json"
	"fmt"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/ports"
)

// SmartHandler answers a smart query against a registered contract.
type SmartHandler func(msg []byte) ([]byte, error)

// StargateHandler answers a stargate query registered under a gRPC path.
type StargateHandler func(data []byte) ([]byte, error)

// gasPerQuery is the flat gas cost charged for every routed query.
const gasPerQuery = 100

// Querier routes QueryRequest variants against in-memory chain state.
type Querier struct {
	balances    map[string]entities.Coins
	supply      map[string]string
	bondedDenom string

	validators  []entities.Validator
	delegations []entities.FullDelegation

	rawStores     map[string]map[string][]byte
	smartHandlers map[string]SmartHandler
	contractInfos map[string]entities.ContractInfoResponse

	stargateHandlers map[string]StargateHandler

	portID   string
	channels []entities.IBCChannel

	gasConsumed uint64
}

var _ ports.Querier = (*Querier)(nil)

// New creates an empty querier.
func New() *Querier {
	return &Querier{
		balances:         make(map[string]entities.Coins),
		supply:           make(map[string]string),
		bondedDenom:      "ustake",
		rawStores:        make(map[string]map[string][]byte),
		smartHandlers:    make(map[string]SmartHandler),
		contractInfos:    make(map[string]entities.ContractInfoResponse),
		stargateHandlers: make(map[string]StargateHandler),
	}
}

// SetBalance sets the full balance of an account.
func (q *Querier) SetBalance(addr string, coins entities.Coins) {
	q.balances[addr] = coins
}

// SetSupply sets the total supply of a denom.
func (q *Querier) SetSupply(denom, amount string) {
	q.supply[denom] = amount
}

// SetBondedDenom sets the staking bond denomination.
func (q *Querier) SetBondedDenom(denom string) {
	q.bondedDenom = denom
}

// SetValidators replaces the validator set.
func (q *Querier) SetValidators(vals []entities.Validator) {
	q.validators = vals
}

// SetDelegations replaces the delegation list.
func (q *Querier) SetDelegations(dels []entities.FullDelegation) {
	q.delegations = dels
}

// SetRaw sets one raw storage entry of a contract.
func (q *Querier) SetRaw(contractAddr string, key, value []byte) {
	store, ok := q.rawStores[contractAddr]
	if !ok {
		store = make(map[string][]byte)
		q.rawStores[contractAddr] = store
	}
	store[string(key)] = value
}

// RegisterSmart installs a smart-query handler for a contract address.
func (q *Querier) RegisterSmart(contractAddr string, handler SmartHandler) {
	q.smartHandlers[contractAddr] = handler
}

// SetContractInfo registers contract metadata.
func (q *Querier) SetContractInfo(contractAddr string, info entities.ContractInfoResponse) {
	q.contractInfos[contractAddr] = info
}

// RegisterStargate installs a handler for a gRPC query path.
func (q *Querier) RegisterStargate(path string, handler StargateHandler) {
	q.stargateHandlers[path] = handler
}

// SetIBC sets the caller's port and known channels.
func (q *Querier) SetIBC(portID string, channels []entities.IBCChannel) {
	q.portID = portID
	q.channels = channels
}

// GasConsumed implements ports.Querier.
func (q *Querier) GasConsumed() uint64 {
	return q.gasConsumed
}

// Query implements ports.Querier. Routing-level failures are returned as
// *entities.SystemError so the host can encode them for the contract.
func (q *Querier) Query(request entities.QueryRequest, gasLimit uint64) ([]byte, error) {
	q.gasConsumed += gasPerQuery
	if q.gasConsumed > gasLimit && gasLimit > 0 {
		return nil, fmt.Errorf("querier: out of gas (limit %d)", gasLimit)
	}

	switch {
	case request.Bank != nil:
		return q.queryBank(request.Bank)
	case request.Staking != nil:
		return q.queryStaking(request.Staking)
	case request.Wasm != nil:
		return q.queryWasm(request.Wasm)
	case request.Stargate != nil:
		return q.queryStargate(request.Stargate)
	case request.IBC != nil:
		return q.queryIBC(request.IBC)
	case request.Custom != nil:
		return nil, &entities.SystemError{UnsupportedRequest: &entities.UnsupportedRequestErr{Kind: "custom"}}
	default:
		return nil, &entities.SystemError{Unknown: &struct{}{}}
	}
}

func marshalResponse(v any) ([]byte, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, &entities.SystemError{InvalidResponse: &entities.InvalidResponseErr{Error: err.Error()}}
	}
	return out, nil
}

func (q *Querier) queryBank(req *entities.BankQuery) ([]byte, error) {
	switch {
	case req.Balance != nil:
		amount := entities.Coin{Denom: req.Balance.Denom, Amount: "0"}
		for _, c := range q.balances[req.Balance.Address] {
			if c.Denom == req.Balance.Denom {
				amount = c
			}
		}
		return marshalResponse(entities.BalanceResponse{Amount: amount})
	case req.AllBalances != nil:
		coins := q.balances[req.AllBalances.Address]
		if coins == nil {
			coins = entities.Coins{}
		}
		return marshalResponse(entities.AllBalancesResponse{Amount: coins})
	case req.Supply != nil:
		amount, ok := q.supply[req.Supply.Denom]
		if !ok {
			amount = "0"
		}
		return marshalResponse(entities.SupplyResponse{
			Amount: entities.Coin{Denom: req.Supply.Denom, Amount: amount},
		})
	default:
		return nil, &entities.SystemError{UnsupportedRequest: &entities.UnsupportedRequestErr{Kind: "bank"}}
	}
}

func (q *Querier) queryStaking(req *entities.StakingQuery) ([]byte, error) {
	switch {
	case req.BondedDenom != nil:
		return marshalResponse(entities.BondedDenomResponse{Denom: q.bondedDenom})
	case req.AllValidators != nil:
		vals := q.validators
		if vals == nil {
			vals = []entities.Validator{}
		}
		return marshalResponse(entities.AllValidatorsResponse{Validators: vals})
	case req.Validator != nil:
		for _, v := range q.validators {
			if v.Address == req.Validator.Address {
				val := v
				return marshalResponse(entities.ValidatorResponse{Validator: &val})
			}
		}
		return marshalResponse(entities.ValidatorResponse{})
	case req.AllDelegations != nil:
		dels := []entities.Delegation{}
		for _, d := range q.delegations {
			if d.Delegator == req.AllDelegations.Delegator {
				dels = append(dels, entities.Delegation{
					Delegator: d.Delegator,
					Validator: d.Validator,
					Amount:    d.Amount,
				})
			}
		}
		return marshalResponse(entities.AllDelegationsResponse{Delegations: dels})
	case req.Delegation != nil:
		for _, d := range q.delegations {
			if d.Delegator == req.Delegation.Delegator && d.Validator == req.Delegation.Validator {
				del := d
				return marshalResponse(entities.DelegationResponse{Delegation: &del})
			}
		}
		return marshalResponse(entities.DelegationResponse{})
	default:
		return nil, &entities.SystemError{UnsupportedRequest: &entities.UnsupportedRequestErr{Kind: "staking"}}
	}
}

func (q *Querier) queryWasm(req *entities.WasmQuery) ([]byte, error) {
	switch {
	case req.Smart != nil:
		handler, ok := q.smartHandlers[req.Smart.ContractAddr]
		if !ok {
			return nil, &entities.SystemError{NoSuchContract: &entities.NoSuchContractErr{Addr: req.Smart.ContractAddr}}
		}
		return handler(req.Smart.Msg)
	case req.Raw != nil:
		store, ok := q.rawStores[req.Raw.ContractAddr]
		if !ok {
			return nil, &entities.SystemError{NoSuchContract: &entities.NoSuchContractErr{Addr: req.Raw.ContractAddr}}
		}
		// missing keys answer with empty bytes, not an error
		return store[string(req.Raw.Key)], nil
	case req.ContractInfo != nil:
		info, ok := q.contractInfos[req.ContractInfo.ContractAddr]
		if !ok {
			return nil, &entities.SystemError{NoSuchContract: &entities.NoSuchContractErr{Addr: req.ContractInfo.ContractAddr}}
		}
		return marshalResponse(info)
	default:
		return nil, &entities.SystemError{UnsupportedRequest: &entities.UnsupportedRequestErr{Kind: "wasm"}}
	}
}

func (q *Querier) queryStargate(req *entities.StargateQuery) ([]byte, error) {
	handler, ok := q.stargateHandlers[req.Path]
	if !ok {
		return nil, &entities.SystemError{UnsupportedRequest: &entities.UnsupportedRequestErr{
			Kind: "stargate path " + req.Path,
		}}
	}
	return handler(req.Data)
}

func (q *Querier) queryIBC(req *entities.IBCQuery) ([]byte, error) {
	switch {
	case req.PortID != nil:
		return marshalResponse(entities.PortIDResponse{PortID: q.portID})
	case req.ListChannels != nil:
		channels := []entities.IBCChannel{}
		for _, ch := range q.channels {
			if req.ListChannels.PortID == "" || ch.Endpoint.PortID == req.ListChannels.PortID {
				channels = append(channels, ch)
			}
		}
		return marshalResponse(entities.ListChannelsResponse{Channels: channels})
	case req.Channel != nil:
		portID := req.Channel.PortID
		if portID == "" {
			portID = q.portID
		}
		for _, ch := range q.channels {
			if ch.Endpoint.ChannelID == req.Channel.ChannelID && ch.Endpoint.PortID == portID {
				found := ch
				return marshalResponse(entities.ChannelResponse{Channel: &found})
			}
		}
		return marshalResponse(entities.ChannelResponse{})
	default:
		return nil, &entities.SystemError{UnsupportedRequest: &entities.UnsupportedRequestErr{Kind: "ibc"}}
	}
}
