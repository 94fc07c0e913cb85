package hostfuncs

// Signature primitives. Each wrapper charges gas and delegates to the api
// port; malformed-input failures come back as typed errors the adapter
// reduces to the numeric wire codes.

func (e *Env) Secp256k1Verify(hash, signature, pubkey []byte) (bool, error) {
	if err := e.gas.ConsumeGas(e.costs.Secp256k1Verify, "secp256k1_verify"); err != nil {
		return false, err
	}
	return e.api.Secp256k1Verify(hash, signature, pubkey)
}

func (e *Env) Secp256k1RecoverPubkey(hash, signature []byte, recoveryParam byte) ([]byte, error) {
	if err := e.gas.ConsumeGas(e.costs.Secp256k1Recover, "secp256k1_recover_pubkey"); err != nil {
		return nil, err
	}
	return e.api.Secp256k1RecoverPubkey(hash, signature, recoveryParam)
}

func (e *Env) Secp256k1Sign(message, privateKey []byte) ([]byte, error) {
	if err := e.gas.ConsumeGas(e.costs.Secp256k1Sign, "secp256k1_sign"); err != nil {
		return nil, err
	}
	return e.api.Secp256k1Sign(message, privateKey)
}

func (e *Env) Ed25519Verify(message, signature, pubkey []byte) (bool, error) {
	if err := e.gas.ConsumeGas(e.costs.Ed25519Verify, "ed25519_verify"); err != nil {
		return false, err
	}
	return e.api.Ed25519Verify(message, signature, pubkey)
}

func (e *Env) Ed25519BatchVerify(messages, signatures, pubkeys [][]byte) (bool, error) {
	items := len(signatures)
	if len(messages) > items {
		items = len(messages)
	}
	if len(pubkeys) > items {
		items = len(pubkeys)
	}
	cost := e.costs.Ed25519BatchPerItem * uint64(items)
	if err := e.gas.ConsumeGas(cost, "ed25519_batch_verify"); err != nil {
		return false, err
	}
	return e.api.Ed25519BatchVerify(messages, signatures, pubkeys)
}

func (e *Env) Ed25519Sign(message, privateKey []byte) ([]byte, error) {
	if err := e.gas.ConsumeGas(e.costs.Ed25519Sign, "ed25519_sign"); err != nil {
		return nil, err
	}
	return e.api.Ed25519Sign(message, privateKey)
}
