package ports

// API provides address handling and signature primitives to contracts.
// Implementations must be deterministic: the same inputs produce the same
// outputs on every node, or consensus breaks.
type API interface {
	// ValidateAddress checks that the input is a valid, normalized
	// human-readable address on this chain.
	ValidateAddress(human string) error

	// CanonicalizeAddress converts a human-readable address to its binary
	// representation.
	CanonicalizeAddress(human string) ([]byte, error)

	// HumanizeAddress converts a canonical address back to the
	// human-readable format.
	HumanizeAddress(canonical []byte) (string, error)

	// Secp256k1Verify verifies an ECDSA signature (64-byte r||s) over a
	// 32-byte message hash against a compressed or uncompressed public
	// key. Returns (false, nil) for a well-formed but wrong signature.
	Secp256k1Verify(messageHash, signature, publicKey []byte) (bool, error)

	// Secp256k1RecoverPubkey recovers the uncompressed public key from a
	// signature and recovery parameter (0 or 1).
	Secp256k1RecoverPubkey(messageHash, signature []byte, recoveryParam byte) ([]byte, error)

	// Secp256k1Sign hashes the message with SHA-256, signs the digest with
	// a 32-byte private key and returns the 64-byte r||s signature.
	Secp256k1Sign(message, privateKey []byte) ([]byte, error)

	// Ed25519Verify verifies an EdDSA signature over the raw message.
	Ed25519Verify(message, signature, publicKey []byte) (bool, error)

	// Ed25519BatchVerify verifies a batch in one pass. The three slices
	// must be equal length, except that a single public key may be used
	// for many message/signature pairs and a single message for many
	// signature/key pairs.
	Ed25519BatchVerify(messages, signatures, publicKeys [][]byte) (bool, error)

	// Ed25519Sign signs a message with a 32-byte seed private key.
	Ed25519Sign(message, privateKey []byte) ([]byte, error)
}
