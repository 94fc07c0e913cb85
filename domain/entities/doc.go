// Package entities contains the wire types exchanged between the host and
// contracts: invocation context, outbound message variants, query variants
// and their result envelopes.
//
// All types (de)serialize to the snake_case JSON format contracts expect at
// the boundary. Tagged unions are represented as structs of optional
// pointers where exactly one field is set.
package entities
