package hostfuncs

import (
	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/domain/ports"
)

// gasMeter is the default ports.GasMeter: a plain counter against a fixed
// limit. Not safe for concurrent use; an invocation is single-threaded.
type gasMeter struct {
	limit    uint64
	consumed uint64
}

// NewGasMeter creates a meter for a single invocation.
func NewGasMeter(limit uint64) ports.GasMeter {
	return &gasMeter{limit: limit}
}

func (m *gasMeter) ConsumeGas(amount uint64, descriptor string) error {
	if amount > m.limit-m.consumed {
		wanted := m.consumed + amount
		m.consumed = m.limit
		return &errors.OutOfGasError{Descriptor: descriptor, Limit: m.limit, Wanted: wanted}
	}
	m.consumed += amount
	return nil
}

func (m *gasMeter) GasConsumed() uint64 {
	return m.consumed
}

func (m *gasMeter) Limit() uint64 {
	return m.limit
}

func (m *gasMeter) Remaining() uint64 {
	return m.limit - m.consumed
}
