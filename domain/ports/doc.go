// Package ports defines the interfaces a chain embedder implements to back
// contract execution: key/value storage, the address/crypto api, the chain
// querier and gas metering. The host core depends only on these
// abstractions; infrastructure adapters provide the implementations.
package ports
