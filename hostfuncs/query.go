package hostfuncs

import (
	"encoding/json"
	stdErrors "errors"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
)

// QueryChain executes a chain query for the contract. The result is always
// a SystemResult-encoded JSON document: routing failures, feature gaps and
// malformed requests are reported inside the envelope so the contract can
// handle them. Only gas exhaustion and encoding bugs are fatal.
func (e *Env) QueryChain(rawRequest []byte) ([]byte, error) {
	if len(rawRequest) > e.limits.MaxQueryLength {
		return nil, &errors.SizeLimitError{Subject: "query request", Size: len(rawRequest), Limit: e.limits.MaxQueryLength}
	}
	cost := e.costs.QueryFlat + e.costs.QueryPerByte*uint64(len(rawRequest))
	if err := e.gas.ConsumeGas(cost, "query_chain"); err != nil {
		return nil, err
	}

	var request entities.QueryRequest
	if err := json.Unmarshal(rawRequest, &request); err != nil {
		return entities.ToSystemResponse(nil, &entities.SystemError{
			InvalidRequest: &entities.InvalidRequestErr{Error: err.Error(), Request: rawRequest},
		})
	}

	if sysErr := e.gateQuery(request); sysErr != nil {
		return entities.ToSystemResponse(nil, sysErr)
	}

	response, err := e.querier.Query(request, e.gas.Remaining())
	if err != nil {
		var sysErr *entities.SystemError
		if stdErrors.As(err, &sysErr) {
			return entities.ToSystemResponse(nil, sysErr)
		}
		return entities.ToSystemResponse(nil, &entities.SystemError{
			InvalidResponse: &entities.InvalidResponseErr{Error: err.Error()},
		})
	}
	return entities.ToSystemResponse(response, nil)
}

// gateQuery rejects query variants outside the enabled feature set.
func (e *Env) gateQuery(request entities.QueryRequest) *entities.SystemError {
	unsupported := func(kind string) *entities.SystemError {
		return &entities.SystemError{UnsupportedRequest: &entities.UnsupportedRequestErr{Kind: kind}}
	}
	switch {
	case request.Staking != nil && !e.features.Has(entities.FeatureStaking):
		return unsupported("staking")
	case request.Stargate != nil && !e.features.Has(entities.FeatureStargate):
		return unsupported("stargate")
	case request.IBC != nil && !e.features.Has(entities.FeatureStargate):
		return unsupported("ibc")
	case request.Bank != nil && request.Bank.Supply != nil && !e.features.Has(entities.FeatureCosmwasm11):
		return unsupported("bank supply")
	}
	return nil
}
