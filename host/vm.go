package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tetratelabs/wazero"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/domain/ports"
	"github.com/kromsten/cosmwasm/hostfuncs"
	hostwazero "github.com/kromsten/cosmwasm/infrastructure/wazero"
	"github.com/kromsten/cosmwasm/internal/metering"
	"github.com/kromsten/cosmwasm/log"
)

// VM compiles, caches and runs contract code.
type VM struct {
	runtime  wazero.Runtime
	cache    *codeCache
	api      ports.API
	features entities.Features
	costs    hostfuncs.GasCosts
	limits   hostfuncs.Limits
	random   ports.RandomSource
	logger   *slog.Logger

	// importNames is the set of host imports the feature set provides,
	// used to reject contracts requiring more at store time.
	importNames map[string]bool
}

// New builds a VM and instantiates its host import module.
func New(ctx context.Context, opts ...Option) (*VM, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	runtimeConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cfg.cacheDir != "" {
		compilationCache, err := wazero.NewCompilationCacheWithDir(cfg.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("open compilation cache: %w", err)
		}
		runtimeConfig = runtimeConfig.WithCompilationCache(compilationCache)
	}

	// invocation context attributes on every record logged during a call
	if _, ok := cfg.logger.Handler().(*log.ContextHandler); !ok {
		cfg.logger = slog.New(log.NewContextHandler(cfg.logger.Handler(),
			log.WithLevel(slog.LevelDebug)))
	}

	runtime := wazero.NewRuntimeWithConfig(ctx, runtimeConfig)
	if err := hostwazero.Register(ctx, runtime, cfg.features,
		hostwazero.WithMiddleware(cfg.middleware...),
	); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("register host imports: %w", err)
	}

	importNames := make(map[string]bool)
	for _, imp := range hostwazero.Imports(cfg.features) {
		importNames[imp.Name] = true
	}

	return &VM{
		runtime:     runtime,
		cache:       newCodeCache(),
		api:         cfg.api,
		features:    cfg.features,
		costs:       cfg.costs,
		limits:      cfg.limits,
		random:      cfg.random,
		logger:      cfg.logger,
		importNames: importNames,
	}, nil
}

// Close releases the runtime and all cached code.
func (vm *VM) Close(ctx context.Context) error {
	cacheErr := vm.cache.close(ctx)
	if err := vm.runtime.Close(ctx); err != nil {
		return err
	}
	return cacheErr
}

// Features returns the capability set the VM serves.
func (vm *VM) Features() entities.Features {
	return vm.features
}

// CacheStats reports code cache usage.
func (vm *VM) CacheStats() CacheStats {
	return vm.cache.stats()
}

// StoreCode compiles and caches a contract blob, returning its checksum.
// Storing the same blob twice is a no-op.
func (vm *VM) StoreCode(ctx context.Context, wasm []byte) (entities.Checksum, error) {
	checksum := entities.NewChecksum(wasm)
	if vm.cache.has(checksum) {
		return checksum, nil
	}

	metered, err := metering.Instrument(wasm, vm.costs.PerWasmOp)
	if err != nil {
		return entities.Checksum{}, fmt.Errorf("instrument contract: %w", err)
	}
	compiled, err := vm.runtime.CompileModule(ctx, metered)
	if err != nil {
		return entities.Checksum{}, fmt.Errorf("compile contract: %w", err)
	}
	if err := vm.checkContract(compiled); err != nil {
		compiled.Close(ctx)
		return entities.Checksum{}, err
	}

	blob := make([]byte, len(wasm))
	copy(blob, wasm)
	vm.cache.save(checksum, blob, compiled)
	return checksum, nil
}

// GetCode returns the original wasm blob of a stored contract.
func (vm *VM) GetCode(checksum entities.Checksum) ([]byte, error) {
	return vm.cache.wasm(checksum)
}

// RemoveCode drops a stored contract. Pinned code cannot be removed.
func (vm *VM) RemoveCode(ctx context.Context, checksum entities.Checksum) error {
	return vm.cache.remove(ctx, checksum)
}

// Pin protects stored code from removal.
func (vm *VM) Pin(checksum entities.Checksum) error {
	return vm.cache.pin(checksum, true)
}

// Unpin lifts the removal protection again.
func (vm *VM) Unpin(checksum entities.Checksum) error {
	return vm.cache.pin(checksum, false)
}

// CodeAnalysis is the static report of a stored contract.
type CodeAnalysis struct {
	// HasIBCEntrypoints is true when the contract exports any of the
	// ibc_channel_* or ibc_packet_* handlers.
	HasIBCEntrypoints bool

	// RequiredFeatures lists the gated host imports the contract links
	// against.
	RequiredFeatures []entities.Feature
}

// gatedImports maps import names to the feature providing them.
var gatedImports = map[string]entities.Feature{
	"db_scan": entities.FeatureIterator,
	"db_next": entities.FeatureIterator,
	"abort":   entities.FeatureAbort,
	"random":  entities.FeatureRandom,
}

var ibcEntrypoints = []string{
	"ibc_channel_open",
	"ibc_channel_connect",
	"ibc_channel_close",
	"ibc_packet_receive",
	"ibc_packet_ack",
	"ibc_packet_timeout",
}

// AnalyzeCode inspects stored code without running it.
func (vm *VM) AnalyzeCode(checksum entities.Checksum) (*CodeAnalysis, error) {
	entry, err := vm.cache.get(checksum)
	if err != nil {
		return nil, err
	}

	analysis := &CodeAnalysis{}
	exports := entry.compiled.ExportedFunctions()
	for _, name := range ibcEntrypoints {
		if _, ok := exports[name]; ok {
			analysis.HasIBCEntrypoints = true
			break
		}
	}

	seen := make(map[entities.Feature]bool)
	for _, def := range entry.compiled.ImportedFunctions() {
		module, name, isImport := def.Import()
		if !isImport || module != hostwazero.DefaultModuleName {
			continue
		}
		if feature, ok := gatedImports[name]; ok && !seen[feature] {
			seen[feature] = true
			analysis.RequiredFeatures = append(analysis.RequiredFeatures, feature)
		}
	}
	return analysis, nil
}

// checkContract verifies the code links only against provided imports and
// exports the memory management hooks every contract needs.
func (vm *VM) checkContract(compiled wazero.CompiledModule) error {
	exports := compiled.ExportedFunctions()
	for _, required := range []string{"allocate", "deallocate"} {
		if _, ok := exports[required]; !ok {
			return errors.Generic("contract does not export %q", required)
		}
	}

	for _, def := range compiled.ImportedFunctions() {
		module, name, isImport := def.Import()
		if !isImport || module != hostwazero.DefaultModuleName {
			continue
		}
		if vm.importNames[name] {
			continue
		}
		if feature, ok := gatedImports[name]; ok {
			return &errors.FeatureError{Feature: string(feature), Subject: "import " + name}
		}
		return errors.Generic("contract imports unknown host function %q", name)
	}
	return nil
}
