package ports

import (
	"github.com/kromsten/cosmwasm/domain/entities"
)

// Querier answers chain queries issued by a contract during execution.
// The returned bytes are the JSON response body for the matched query
// variant; routing-level failures are reported as *entities.SystemError so
// the contract can handle them.
type Querier interface {
	// Query executes the request with at most gasLimit gas.
	Query(request entities.QueryRequest, gasLimit uint64) ([]byte, error)

	// GasConsumed reports gas used by queries so far in this invocation.
	GasConsumed() uint64
}

// RandomSource produces deterministic per-call entropy for contracts.
type RandomSource interface {
	// Random derives entropy bound to the given invocation context.
	// Every node must derive the same bytes for the same call.
	Random(height uint64, contract entities.Addr) ([]byte, error)
}
