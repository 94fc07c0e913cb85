// Package hostfuncs implements the semantics of the host functions exposed
// to contracts: storage access, range iteration, address handling,
// signature primitives, chain queries, randomness, gas introspection and
// debugging.
//
// Everything in this package works on plain Go values. Reading and writing
// guest linear memory is the job of the wazero adapter in
// infrastructure/wazero, which translates between region pointers and the
// byte slices these functions consume and produce. This split keeps the
// boundary semantics testable without a WASM runtime.
//
// All operations charge gas before doing work and are gated by the enabled
// feature set. Errors returned here are fatal for the invocation unless
// documented otherwise.
package hostfuncs
