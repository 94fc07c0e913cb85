// Package host runs contract code. It owns the wazero runtime, the code
// cache and the entrypoint call convention: each invocation gets a fresh
// module instance, a fresh gas meter and a fresh host function environment,
// so no state leaks between calls.
//
// A VM is safe for concurrent use. Storage, querier and gas limit are
// supplied per call because they belong to the transaction, not to the VM.
//
//	vm, err := host.New(ctx,
//	    host.WithAPI(wasmapi.New()),
//	    host.WithFeatures(features),
//	)
//	checksum, err := vm.StoreCode(ctx, wasmBlob)
//	result, gasUsed, err := vm.Instantiate(ctx, checksum, env, info, msg,
//	    store, querier, gasLimit)
package host
