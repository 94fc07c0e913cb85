// Package wazero registers the contract host import module with the wazero
// runtime.
//
// This package bridges the pure Go host function implementations in
// hostfuncs with the wazero WebAssembly runtime. It handles:
//
//   - Decoding Region descriptors from guest linear memory
//   - Allocating guest memory through the contract's "allocate" export and
//     writing results back as Regions
//   - Building the "env" host module from the enabled feature set
//
// The import table is feature gated at registration time: a contract that
// imports db_scan against a host without the iterator feature fails to
// instantiate rather than trapping mid-execution.
//
// # Basic Usage
//
//	runtime := wazero.NewRuntimeWithConfig(ctx, config)
//	err := hostwazero.Register(ctx, runtime, features,
//	    hostwazero.WithMiddleware(hostwazero.WithCallLogging(logger)),
//	)
//
// Every import resolves its per-invocation environment from the context, so
// the caller must run guest exports with a context built by
// hostfuncs.WithEnv. Fatal failures (gas exhaustion, broken regions, guest
// aborts) panic with a typed error; the executor recovers them at the call
// boundary.
package wazero
