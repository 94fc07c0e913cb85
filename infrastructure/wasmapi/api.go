// Package wasmapi implements the API port with a bech32 address codec and
// the secp256k1/ed25519 primitives contracts rely on. Everything here must
// be deterministic across nodes.
package wasmapi

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/hdevalence/ed25519consensus"

	"github.com/kromsten/cosmwasm/domain/errors"
	"github.com/kromsten/cosmwasm/domain/ports"
)

// Accepted canonical address lengths, per Cosmos SDK conventions.
var canonicalLengths = map[int]bool{20: true, 32: true}

// API is a deterministic implementation of ports.API for bech32 chains.
type API struct {
	prefix string
}

var _ ports.API = (*API)(nil)

// Option configures the API.
type Option func(*API)

// WithPrefix sets the bech32 human-readable prefix (default "cosmos").
func WithPrefix(prefix string) Option {
	return func(a *API) {
		a.prefix = prefix
	}
}

// New creates an API with the given options.
func New(opts ...Option) *API {
	a := &API{prefix: "cosmos"}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateAddress implements ports.API. An address is valid when it decodes
// under the chain prefix and is in normalized form, i.e. humanizing its
// canonical form reproduces the input exactly.
func (a *API) ValidateAddress(human string) error {
	canonical, err := a.CanonicalizeAddress(human)
	if err != nil {
		return err
	}
	normalized, err := a.HumanizeAddress(canonical)
	if err != nil {
		return err
	}
	if normalized != human {
		return fmt.Errorf("address %q is not normalized", human)
	}
	return nil
}

// CanonicalizeAddress implements ports.API.
func (a *API) CanonicalizeAddress(human string) ([]byte, error) {
	hrp, data5, err := bech32.Decode(human)
	if err != nil {
		return nil, fmt.Errorf("invalid bech32: %w", err)
	}
	if hrp != a.prefix {
		return nil, fmt.Errorf("wrong address prefix: got %q, expected %q", hrp, a.prefix)
	}
	canonical, err := bech32.ConvertBits(data5, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("invalid bech32 payload: %w", err)
	}
	if !canonicalLengths[len(canonical)] {
		return nil, fmt.Errorf("invalid canonical address length %d", len(canonical))
	}
	return canonical, nil
}

// HumanizeAddress implements ports.API.
func (a *API) HumanizeAddress(canonical []byte) (string, error) {
	if !canonicalLengths[len(canonical)] {
		return "", fmt.Errorf("invalid canonical address length %d", len(canonical))
	}
	data5, err := bech32.ConvertBits(canonical, 8, 5, true)
	if err != nil {
		return "", err
	}
	human, err := bech32.Encode(a.prefix, data5)
	if err != nil {
		return "", err
	}
	return human, nil
}

// Secp256k1Verify implements ports.API.
func (a *API) Secp256k1Verify(messageHash, signature, publicKey []byte) (bool, error) {
	if len(messageHash) != 32 {
		return false, errors.InvalidHashFormat(fmt.Sprintf("expected 32 bytes, got %d", len(messageHash)))
	}
	if len(signature) != 64 {
		return false, errors.InvalidSignatureFormat(fmt.Sprintf("expected 64 bytes, got %d", len(signature)))
	}
	pubKey, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false, errors.InvalidPubkeyFormat(err.Error())
	}

	var r, s secp256k1.ModNScalar
	if overflow := r.SetByteSlice(signature[:32]); overflow || r.IsZero() {
		return false, nil
	}
	if overflow := s.SetByteSlice(signature[32:]); overflow || s.IsZero() {
		return false, nil
	}
	return secpecdsa.NewSignature(&r, &s).Verify(messageHash, pubKey), nil
}

// compactSigHeader is the base header byte of the compact signature format,
// recovery parameter added on top.
const compactSigHeader = 27

// Secp256k1RecoverPubkey implements ports.API. The result is the 65-byte
// uncompressed public key.
func (a *API) Secp256k1RecoverPubkey(messageHash, signature []byte, recoveryParam byte) ([]byte, error) {
	if len(messageHash) != 32 {
		return nil, errors.InvalidHashFormat(fmt.Sprintf("expected 32 bytes, got %d", len(messageHash)))
	}
	if len(signature) != 64 {
		return nil, errors.InvalidSignatureFormat(fmt.Sprintf("expected 64 bytes, got %d", len(signature)))
	}
	if recoveryParam > 1 {
		return nil, errors.InvalidRecoveryParam(fmt.Sprintf("got %d, expected 0 or 1", recoveryParam))
	}

	compact := make([]byte, 65)
	compact[0] = compactSigHeader + recoveryParam
	copy(compact[1:], signature)

	pubKey, _, err := secpecdsa.RecoverCompact(compact, messageHash)
	if err != nil {
		return nil, errors.CryptoGeneric(err.Error())
	}
	return pubKey.SerializeUncompressed(), nil
}

// Secp256k1Sign implements ports.API. The message may be any length; it is
// hashed with SHA-256 before signing. Returns the 64-byte r||s signature.
func (a *API) Secp256k1Sign(message, privateKey []byte) ([]byte, error) {
	if len(privateKey) != 32 {
		return nil, errors.InvalidPrivateKeyFormat(fmt.Sprintf("expected 32 bytes, got %d", len(privateKey)))
	}
	priv := secp256k1.PrivKeyFromBytes(privateKey)
	if priv.Key.IsZero() {
		return nil, errors.InvalidPrivateKeyFormat("zero key")
	}
	digest := sha256.Sum256(message)
	compact := secpecdsa.SignCompact(priv, digest[:], false)
	// strip the recovery header, contracts expect plain r||s
	return compact[1:], nil
}

// Ed25519Verify implements ports.API.
func (a *API) Ed25519Verify(message, signature, publicKey []byte) (bool, error) {
	if len(signature) != ed25519.SignatureSize {
		return false, errors.InvalidSignatureFormat(fmt.Sprintf("expected %d bytes, got %d", ed25519.SignatureSize, len(signature)))
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return false, errors.InvalidPubkeyFormat(fmt.Sprintf("expected %d bytes, got %d", ed25519.PublicKeySize, len(publicKey)))
	}
	return ed25519consensus.Verify(ed25519.PublicKey(publicKey), message, signature), nil
}

// Ed25519BatchVerify implements ports.API. Supports the usual shapes: equal
// length batches, one key for many message/signature pairs, or one message
// for many signature/key pairs.
func (a *API) Ed25519BatchVerify(messages, signatures, publicKeys [][]byte) (bool, error) {
	switch {
	case len(messages) == len(signatures) && len(messages) == len(publicKeys):
		// pairwise
	case len(messages) == 1 && len(signatures) == len(publicKeys):
		expanded := make([][]byte, len(signatures))
		for i := range expanded {
			expanded[i] = messages[0]
		}
		messages = expanded
	case len(publicKeys) == 1 && len(messages) == len(signatures):
		expanded := make([][]byte, len(messages))
		for i := range expanded {
			expanded[i] = publicKeys[0]
		}
		publicKeys = expanded
	default:
		return false, errors.CryptoGeneric(fmt.Sprintf(
			"mismatched batch lengths: %d messages, %d signatures, %d public keys",
			len(messages), len(signatures), len(publicKeys)))
	}
	if len(messages) == 0 {
		return true, nil
	}

	verifier := ed25519consensus.NewBatchVerifier()
	for i := range messages {
		if len(signatures[i]) != ed25519.SignatureSize {
			return false, errors.InvalidSignatureFormat(fmt.Sprintf("batch entry %d", i))
		}
		if len(publicKeys[i]) != ed25519.PublicKeySize {
			return false, errors.InvalidPubkeyFormat(fmt.Sprintf("batch entry %d", i))
		}
		verifier.Add(ed25519.PublicKey(publicKeys[i]), messages[i], signatures[i])
	}
	return verifier.Verify(), nil
}

// Ed25519Sign implements ports.API. privateKey is the 32-byte seed.
func (a *API) Ed25519Sign(message, privateKey []byte) ([]byte, error) {
	if len(privateKey) != ed25519.SeedSize {
		return nil, errors.InvalidPrivateKeyFormat(fmt.Sprintf("expected %d byte seed, got %d", ed25519.SeedSize, len(privateKey)))
	}
	key := ed25519.NewKeyFromSeed(privateKey)
	return ed25519.Sign(key, message), nil
}
