package hostfuncs

import (
	"unicode/utf8"

	"github.com/kromsten/cosmwasm/domain/entities"
	"github.com/kromsten/cosmwasm/domain/errors"
)

// AddrValidate checks a human-readable address. The returned error string,
// if any, is handed back to the contract; it is not fatal.
func (e *Env) AddrValidate(human []byte) (string, error) {
	input, err := e.checkHumanAddr(human)
	if err != nil {
		return "", err
	}
	if err := e.gas.ConsumeGas(e.costs.AddrValidate, "addr_validate"); err != nil {
		return "", err
	}
	if err := e.api.ValidateAddress(input); err != nil {
		return err.Error(), nil
	}
	return "", nil
}

// AddrCanonicalize converts a human-readable address into canonical bytes.
// A non-empty errMsg reports a contract-level failure; err is fatal.
func (e *Env) AddrCanonicalize(human []byte) (canonical []byte, errMsg string, err error) {
	input, err := e.checkHumanAddr(human)
	if err != nil {
		return nil, "", err
	}
	if err := e.gas.ConsumeGas(e.costs.AddrCanonicalize, "addr_canonicalize"); err != nil {
		return nil, "", err
	}
	canonical, cerr := e.api.CanonicalizeAddress(input)
	if cerr != nil {
		return nil, cerr.Error(), nil
	}
	if len(canonical) > entities.CanonicalAddressBufferLength {
		return nil, "", errors.Generic("canonical address of %d bytes exceeds buffer of %d",
			len(canonical), entities.CanonicalAddressBufferLength)
	}
	return canonical, "", nil
}

// AddrHumanize converts a canonical address back to the human format.
func (e *Env) AddrHumanize(canonical []byte) (human string, errMsg string, err error) {
	if len(canonical) > entities.CanonicalAddressBufferLength {
		return "", "", &errors.SizeLimitError{
			Subject: "canonical address",
			Size:    len(canonical),
			Limit:   entities.CanonicalAddressBufferLength,
		}
	}
	if err := e.gas.ConsumeGas(e.costs.AddrHumanize, "addr_humanize"); err != nil {
		return "", "", err
	}
	human, herr := e.api.HumanizeAddress(canonical)
	if herr != nil {
		return "", herr.Error(), nil
	}
	if len(human) > entities.HumanAddressBufferLength {
		return "", "", errors.Generic("human address of %d bytes exceeds buffer of %d",
			len(human), entities.HumanAddressBufferLength)
	}
	return human, "", nil
}

func (e *Env) checkHumanAddr(human []byte) (string, error) {
	if len(human) > entities.MaxHumanAddressLength {
		return "", &errors.SizeLimitError{
			Subject: "human address",
			Size:    len(human),
			Limit:   entities.MaxHumanAddressLength,
		}
	}
	if !utf8.Valid(human) {
		return "", errors.InvalidUtf8("human address")
	}
	return string(human), nil
}
