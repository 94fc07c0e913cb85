package wazero

import (
	"context"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/hostfuncs"
)

// DefaultModuleName is the import module name contracts link against.
const DefaultModuleName = "env"

// Import describes one host function of the import module.
type Import struct {
	// Name is the exported function name.
	Name string

	// Params are the WASM parameter types.
	Params []api.ValueType

	// Results are the WASM result types.
	Results []api.ValueType

	// Fn is the wazero implementation.
	Fn api.GoModuleFunc
}

// Middleware wraps an import implementation. Middleware added first runs
// outermost.
type Middleware func(name string, next api.GoModuleFunc) api.GoModuleFunc

type config struct {
	moduleName string
	middleware []Middleware
}

// Option configures registration.
type Option func(*config)

// WithModuleName overrides the import module name (default: "env").
func WithModuleName(name string) Option {
	return func(c *config) {
		c.moduleName = name
	}
}

// WithMiddleware wraps every import with the given middleware, FIFO.
func WithMiddleware(mw ...Middleware) Option {
	return func(c *config) {
		c.middleware = append(c.middleware, mw...)
	}
}

// Register builds the host import module for the given feature set and
// instantiates it on the runtime. Imports of disabled features are not
// exported at all, so contracts requiring them fail at instantiation.
func Register(ctx context.Context, runtime wazero.Runtime, features entities.Features, opts ...Option) error {
	cfg := config{moduleName: DefaultModuleName}
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.moduleName)
	for _, imp := range Imports(features) {
		fn := imp.Fn
		for i := len(cfg.middleware) - 1; i >= 0; i-- {
			fn = cfg.middleware[i](imp.Name, fn)
		}
		builder.NewFunctionBuilder().
			WithGoModuleFunction(fn, imp.Params, imp.Results).
			Export(imp.Name)
	}

	_, err := builder.Instantiate(ctx)
	return err
}

// Imports returns the import table enabled by the feature set.
func Imports(features entities.Features) []Import {
	i32 := api.ValueTypeI32
	i64 := api.ValueTypeI64

	imports := []Import{
		{"db_read", []api.ValueType{i32}, []api.ValueType{i32}, hostFn(dbRead)},
		{"db_write", []api.ValueType{i32, i32}, nil, hostFn(dbWrite)},
		{"db_remove", []api.ValueType{i32}, nil, hostFn(dbRemove)},
		{"addr_validate", []api.ValueType{i32}, []api.ValueType{i32}, hostFn(addrValidate)},
		{"addr_canonicalize", []api.ValueType{i32, i32}, []api.ValueType{i32}, hostFn(addrCanonicalize)},
		{"addr_humanize", []api.ValueType{i32, i32}, []api.ValueType{i32}, hostFn(addrHumanize)},
		{"secp256k1_verify", []api.ValueType{i32, i32, i32}, []api.ValueType{i32}, hostFn(secp256k1Verify)},
		{"secp256k1_recover_pubkey", []api.ValueType{i32, i32, i32}, []api.ValueType{i64}, hostFn(secp256k1RecoverPubkey)},
		{"secp256k1_sign", []api.ValueType{i32, i32}, []api.ValueType{i64}, hostFn(secp256k1Sign)},
		{"ed25519_verify", []api.ValueType{i32, i32, i32}, []api.ValueType{i32}, hostFn(ed25519Verify)},
		{"ed25519_batch_verify", []api.ValueType{i32, i32, i32}, []api.ValueType{i32}, hostFn(ed25519BatchVerify)},
		{"ed25519_sign", []api.ValueType{i32, i32}, []api.ValueType{i64}, hostFn(ed25519Sign)},
		{"debug", []api.ValueType{i32}, nil, hostFn(debug)},
		{"query_chain", []api.ValueType{i32}, []api.ValueType{i32}, hostFn(queryChain)},
		{"check_gas", nil, []api.ValueType{i64}, hostFn(checkGas)},
		{"gas_evaporate", []api.ValueType{i32}, []api.ValueType{i32}, hostFn(gasEvaporate)},
	}

	if features.Has(entities.FeatureIterator) {
		imports = append(imports,
			Import{"db_scan", []api.ValueType{i32, i32, i32}, []api.ValueType{i32}, hostFn(dbScan)},
			Import{"db_next", []api.ValueType{i32}, []api.ValueType{i32}, hostFn(dbNext)},
		)
	}
	if features.Has(entities.FeatureAbort) {
		imports = append(imports,
			Import{"abort", []api.ValueType{i32}, nil, hostFn(abort)},
		)
	}
	if features.Has(entities.FeatureRandom) {
		imports = append(imports,
			Import{"random", nil, []api.ValueType{i32}, hostFn(random)},
		)
	}
	return imports
}

// hostFn resolves the per-invocation environment before dispatching.
func hostFn(fn func(ctx context.Context, env *hostfuncs.Env, mod api.Module, stack []uint64)) api.GoModuleFunc {
	return api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
		env, ok := hostfuncs.FromContext(ctx)
		if !ok {
			panic(errors.Generic("host import called without an invocation environment"))
		}
		fn(ctx, env, mod, stack)
	})
}
