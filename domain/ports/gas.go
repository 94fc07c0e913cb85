package ports

// GasMeter tracks gas usage during a contract invocation.
type GasMeter interface {
	// ConsumeGas deducts amount, annotated with a descriptor for tracing.
	// Returns an out-of-gas error once the limit is exceeded.
	ConsumeGas(amount uint64, descriptor string) error

	// GasConsumed returns the gas used so far.
	GasConsumed() uint64

	// Limit returns the gas limit of this invocation.
	Limit() uint64

	// Remaining returns the gas still available.
	Remaining() uint64
}
