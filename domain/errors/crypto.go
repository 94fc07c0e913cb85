package errors

import (
	stdErrors "errors"
	"fmt"
)

// Result codes of the signature verification imports. These values are the
// wire contract with the guest and must never change.
const (
	CodeVerifySuccess   uint32 = 0
	CodeVerifyFailed    uint32 = 1
	CodeInvalidHash     uint32 = 3
	CodeInvalidSig      uint32 = 4
	CodeInvalidPubkey   uint32 = 5
	CodeInvalidRecovery uint32 = 6
	CodeGenericCrypto   uint32 = 10
	CodeInvalidPrivkey  uint32 = 1000
)

// VerificationError is a malformed-input failure of a verify import. A
// well-formed signature that simply does not match is not an error; it is a
// false verify result.
type VerificationError struct {
	Code uint32
	Msg  string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification error (code %d): %s", e.Code, e.Msg)
}

// Is matches on the code so sentinel comparisons work.
func (e *VerificationError) Is(target error) bool {
	var other *VerificationError
	if stdErrors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

func InvalidHashFormat(msg string) *VerificationError {
	return &VerificationError{Code: CodeInvalidHash, Msg: msg}
}

func InvalidSignatureFormat(msg string) *VerificationError {
	return &VerificationError{Code: CodeInvalidSig, Msg: msg}
}

func InvalidPubkeyFormat(msg string) *VerificationError {
	return &VerificationError{Code: CodeInvalidPubkey, Msg: msg}
}

func InvalidRecoveryParam(msg string) *VerificationError {
	return &VerificationError{Code: CodeInvalidRecovery, Msg: msg}
}

func CryptoGeneric(msg string) *VerificationError {
	return &VerificationError{Code: CodeGenericCrypto, Msg: msg}
}

// SigningError is a failure of a sign import.
type SigningError struct {
	Code uint32
	Msg  string
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("signing error (code %d): %s", e.Code, e.Msg)
}

func InvalidPrivateKeyFormat(msg string) *SigningError {
	return &SigningError{Code: CodeInvalidPrivkey, Msg: msg}
}

// VerifyCode reduces an error from a verify operation to its wire code.
// nil maps to success.
func VerifyCode(err error) uint32 {
	if err == nil {
		return CodeVerifySuccess
	}
	var ve *VerificationError
	if stdErrors.As(err, &ve) {
		return ve.Code
	}
	return CodeGenericCrypto
}

// SignCode reduces an error from a sign operation to its wire code.
func SignCode(err error) uint32 {
	if err == nil {
		return 0
	}
	var se *SigningError
	if stdErrors.As(err, &se) {
		return se.Code
	}
	var ve *VerificationError
	if stdErrors.As(err, &ve) {
		return ve.Code
	}
	return CodeGenericCrypto
}
