// Package beacon derives deterministic per-call randomness for contracts
// from a block-level entropy seed. Every node holds the same seed for a
// block, so expanding it with HKDF bound to the invocation context yields
// entropy that is unpredictable to contract authors but identical across
// the network.
package beacon

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/ports"
)

// EntropyLength is the number of random bytes handed to a contract.
const EntropyLength = 32

// Beacon implements ports.RandomSource by HKDF-expanding a block seed.
type Beacon struct {
	seed []byte
	salt []byte
}

var _ ports.RandomSource = (*Beacon)(nil)

// Option configures the Beacon.
type Option func(*Beacon)

// WithSalt sets an extra domain separator, e.g. the chain ID.
func WithSalt(salt []byte) Option {
	return func(b *Beacon) {
		b.salt = salt
	}
}

// New creates a beacon over the given block seed. The seed comes from the
// chain's randomness protocol; it must be fixed before the block executes.
func New(seed []byte, opts ...Option) (*Beacon, error) {
	if len(seed) == 0 {
		return nil, fmt.Errorf("beacon: empty seed")
	}
	b := &Beacon{seed: seed}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Random implements ports.RandomSource. The block height and contract
// address are mixed into the HKDF info so distinct contracts in the same
// block cannot observe each other's entropy.
func (b *Beacon) Random(height uint64, contract entities.Addr) ([]byte, error) {
	info := make([]byte, 8, 8+len(contract))
	binary.BigEndian.PutUint64(info, height)
	info = append(info, contract...)

	reader := hkdf.New(sha256.New, b.seed, b.salt, info)
	out := make([]byte, EntropyLength)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("beacon: derive: %w", err)
	}
	return out, nil
}
