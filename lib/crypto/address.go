package crypto

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
)

/* This file implements the fixed-length account address identity used across the node */

const (
	// AddressSize is the byte length of every account address on the chain
	AddressSize = 32
)

// AddressI is the interface model of a fixed-length account address
type AddressI interface {
	Bytes() []byte
	String() string
	Equals(AddressI) bool
	json.Marshaler
}

type Address []byte

var _ AddressI = &Address{}

// Bytes() returns the raw address bytes
func (a *Address) Bytes() []byte { return (*a)[:] }

// String() returns the hex string representation of the address
func (a *Address) String() string { return hex.EncodeToString(a.Bytes()) }

// Equals() compares two addresses byte-wise
func (a *Address) Equals(e AddressI) bool { return bytes.Equal(a.Bytes(), e.Bytes()) }

// MarshalJSON() implements the json.Marshaler interface for Address
func (a *Address) MarshalJSON() ([]byte, error) { return json.Marshal(a.String()) }

// UnmarshalJSON() implements the json.Unmarshaler interface for Address
func (a *Address) UnmarshalJSON(b []byte) (err error) {
	var s string
	if err = json.Unmarshal(b, &s); err != nil {
		return
	}
	*a, err = hex.DecodeString(s)
	return
}

// NewAddressFromBytes() converts raw bytes to an Address object reference
func NewAddressFromBytes(b []byte) *Address {
	a := Address(b)
	return &a
}

// NewAddressFromString() converts a hex string to an Address object reference
func NewAddressFromString(s string) (*Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return NewAddressFromBytes(b), nil
}

// ValidAddress() checks the fixed-length requirement of an address
func ValidAddress(b []byte) bool { return len(b) == AddressSize }
