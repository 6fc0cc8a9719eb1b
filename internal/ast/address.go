package ast

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// AddressLength is the width of an account address in bytes.
const AddressLength = 32

// AccountAddress is a fixed-width account identifier.
type AccountAddress [AddressLength]byte

// ParseAccountAddress parses a 0x-prefixed hex literal of up to 64 digits.
func ParseAccountAddress(raw string) (AccountAddress, error) {
	var addr AccountAddress
	value := strings.TrimSpace(raw)
	if !strings.HasPrefix(value, "0x") && !strings.HasPrefix(value, "0X") {
		return addr, fmt.Errorf("address %q: missing 0x prefix", raw)
	}
	value = value[2:]
	if value == "" {
		return addr, fmt.Errorf("address %q: no digits", raw)
	}
	if len(value) > AddressLength*2 {
		return addr, fmt.Errorf("address %q: longer than %d bytes", raw, AddressLength)
	}
	if len(value)%2 == 1 {
		value = "0" + value
	}
	decoded, err := hex.DecodeString(value)
	if err != nil {
		return addr, fmt.Errorf("address %q: %w", raw, err)
	}
	copy(addr[AddressLength-len(decoded):], decoded)
	return addr, nil
}

// IsNumericAddress reports whether raw looks like a numeric address literal.
func IsNumericAddress(raw string) bool {
	_, err := ParseAccountAddress(raw)
	return err == nil
}

// String returns the full-width hex form.
func (a AccountAddress) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// ShortString returns the hex form without leading zeros, e.g. 0x2.
func (a AccountAddress) ShortString() string {
	trimmed := strings.TrimLeft(hex.EncodeToString(a[:]), "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return "0x" + trimmed
}

// IsZero reports whether every byte is zero.
func (a AccountAddress) IsZero() bool {
	return a == AccountAddress{}
}
