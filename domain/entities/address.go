package entities

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// MaxHumanAddressLength is the upper bound the host accepts for a
// human-readable address crossing the boundary. Inputs longer than this are
// rejected before any decoding is attempted.
const MaxHumanAddressLength = 256

// CanonicalAddressBufferLength is an upper bound for canonical address
// lengths (20 bytes in Cosmos SDK / Ethereum, 32 in Nano / Substrate).
const CanonicalAddressBufferLength = 64

// HumanAddressBufferLength is an upper bound for human-readable address
// formats (42 for Ethereum hex, up to 90 for bech32).
const HumanAddressBufferLength = 90

// Addr is a human-readable address in the chain's native format.
// Construction does not imply validity; validation happens against the
// chain's address codec.
type Addr string

func (a Addr) String() string {
	return string(a)
}

// CanonicalAddr is the binary representation of an address as stored by the
// chain. Serializes as base64 in JSON.
type CanonicalAddr = Binary

// Checksum identifies stored contract code by its SHA-256 hash.
type Checksum [32]byte

// NewChecksum hashes the given wasm blob.
func NewChecksum(wasm []byte) Checksum {
	return Checksum(sha256.Sum256(wasm))
}

// ChecksumFromHex parses a hex-encoded checksum.
func ChecksumFromHex(s string) (Checksum, error) {
	var cs Checksum
	raw, err := hex.DecodeString(s)
	if err != nil {
		return cs, fmt.Errorf("invalid checksum hex: %w", err)
	}
	if len(raw) != len(cs) {
		return cs, fmt.Errorf("invalid checksum length: got %d, want %d", len(raw), len(cs))
	}
	copy(cs[:], raw)
	return cs, nil
}

func (c Checksum) String() string {
	return hex.EncodeToString(c[:])
}
