package entities

import (
	"encoding/base64"
	"encoding/json"

	"github.com/kromsten/cosmwasm/domain/errors"
)

// Binary is a byte slice that serializes as standard base64 in JSON.
// This is the wire representation for all opaque payloads crossing the
// contract boundary (messages, raw storage values, protobuf blobs).
type Binary []byte

// MarshalJSON implements json.Marshaler.
func (b Binary) MarshalJSON() ([]byte, error) {
	return json.Marshal(base64.StdEncoding.EncodeToString(b))
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *Binary) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return errors.InvalidBase64(err.Error())
	}
	*b = decoded
	return nil
}

// String returns the base64 representation.
func (b Binary) String() string {
	return base64.StdEncoding.EncodeToString(b)
}
