package hostfuncs

// GasCosts is the deterministic price list for host operations. The values
// are part of consensus: all nodes must run with identical tables.
type GasCosts struct {
	ReadFlat    uint64 `yaml:"read_flat"`
	ReadPerByte uint64 `yaml:"read_per_byte"`

	WriteFlat    uint64 `yaml:"write_flat"`
	WritePerByte uint64 `yaml:"write_per_byte"`

	RemoveFlat uint64 `yaml:"remove_flat"`

	ScanFlat uint64 `yaml:"scan_flat"`
	NextFlat uint64 `yaml:"next_flat"`

	AddrValidate     uint64 `yaml:"addr_validate"`
	AddrCanonicalize uint64 `yaml:"addr_canonicalize"`
	AddrHumanize     uint64 `yaml:"addr_humanize"`

	Secp256k1Verify  uint64 `yaml:"secp256k1_verify"`
	Secp256k1Recover uint64 `yaml:"secp256k1_recover"`
	Secp256k1Sign    uint64 `yaml:"secp256k1_sign"`

	Ed25519Verify       uint64 `yaml:"ed25519_verify"`
	Ed25519BatchPerItem uint64 `yaml:"ed25519_batch_per_item"`
	Ed25519Sign         uint64 `yaml:"ed25519_sign"`

	QueryFlat    uint64 `yaml:"query_flat"`
	QueryPerByte uint64 `yaml:"query_per_byte"`

	DebugFlat  uint64 `yaml:"debug_flat"`
	RandomFlat uint64 `yaml:"random_flat"`

	// EntrypointFlat is charged once per contract entrypoint call to cover
	// instantiation overhead of the guest module.
	EntrypointFlat uint64 `yaml:"entrypoint_flat"`

	// PerWasmOp prices one guest instruction. Contract code is rewritten at
	// store time to charge this deterministically while it runs.
	PerWasmOp uint64 `yaml:"per_wasm_op"`
}

// DefaultGasCosts returns the standard price list.
func DefaultGasCosts() GasCosts {
	return GasCosts{
		ReadFlat:            250,
		ReadPerByte:         3,
		WriteFlat:           700,
		WritePerByte:        30,
		RemoveFlat:          400,
		ScanFlat:            800,
		NextFlat:            250,
		AddrValidate:        300,
		AddrCanonicalize:    400,
		AddrHumanize:        400,
		Secp256k1Verify:     25_000,
		Secp256k1Recover:    35_000,
		Secp256k1Sign:       30_000,
		Ed25519Verify:       20_000,
		Ed25519BatchPerItem: 15_000,
		Ed25519Sign:         25_000,
		QueryFlat:           500,
		QueryPerByte:        1,
		DebugFlat:           100,
		RandomFlat:          1_000,
		EntrypointFlat:      20_000,
		PerWasmOp:           1,
	}
}

// Limits bounds the payloads contracts may push across the boundary.
// Oversized payloads abort the invocation before any allocation happens.
type Limits struct {
	MaxKeyLength   int `yaml:"max_key_length" validate:"gt=0"`
	MaxValueLength int `yaml:"max_value_length" validate:"gt=0"`
	MaxQueryLength int `yaml:"max_query_length" validate:"gt=0"`
	MaxDebugLength int `yaml:"max_debug_length" validate:"gt=0"`
	// MaxIterators caps concurrently open range iterators per invocation.
	MaxIterators int `yaml:"max_iterators" validate:"gt=0"`
	// MaxResultLength bounds what an entrypoint may return.
	MaxResultLength int `yaml:"max_result_length" validate:"gt=0"`
}

// DefaultLimits returns the standard boundary limits.
func DefaultLimits() Limits {
	return Limits{
		MaxKeyLength:    64 * 1024,
		MaxValueLength:  128 * 1024,
		MaxQueryLength:  512 * 1024,
		MaxDebugLength:  64 * 1024,
		MaxIterators:    100,
		MaxResultLength: 1024 * 1024,
	}
}
