package domain

import (
	"encoding/hex"
	"strings"

	"go.trai.ch/zerr"
)

// AccountAddressLength is the size of an account address in bytes.
const AccountAddressLength = 32

// AccountAddress is a concrete on-chain address.
type AccountAddress [AccountAddressLength]byte

// ParseAccountAddress parses a hex literal with or without the 0x prefix.
// Short literals are left-padded with zeros.
func ParseAccountAddress(s string) (AccountAddress, error) {
	var addr AccountAddress

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if digits == "" || len(digits) > 2*AccountAddressLength {
		return addr, zerr.With(zerr.Wrap(ErrInvalidAddress, "expected 1 to 64 hex digits"), "address", s)
	}
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}

	raw, err := hex.DecodeString(digits)
	if err != nil {
		return addr, zerr.With(zerr.Wrap(ErrInvalidAddress, "not a hex literal"), "address", s)
	}
	copy(addr[AccountAddressLength-len(raw):], raw)
	return addr, nil
}

// MustParseAccountAddress is like ParseAccountAddress but panics on error.
// It is intended for constants and tests.
func MustParseAccountAddress(s string) AccountAddress {
	addr, err := ParseAccountAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// String returns the short form with leading zeros trimmed, e.g. 0x1.
func (a AccountAddress) String() string {
	trimmed := strings.TrimLeft(hex.EncodeToString(a[:]), "0")
	if trimmed == "" {
		trimmed = "0"
	}
	return "0x" + trimmed
}

// LongString returns all 64 hex digits.
func (a AccountAddress) LongString() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalText implements encoding.TextMarshaler.
func (a AccountAddress) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *AccountAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountAddress(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AddressDeclarations maps each named address of a package to its value.
// A nil value marks a placeholder.
type AddressDeclarations map[NamedAddress]*AccountAddress

// Names returns every declared name in canonical order.
func (d AddressDeclarations) Names() []NamedAddress {
	return SortedKeys(d)
}

// Placeholders returns the declared names without a value, in canonical order.
func (d AddressDeclarations) Placeholders() []NamedAddress {
	var out []NamedAddress
	for _, name := range d.Names() {
		if d[name] == nil {
			out = append(out, name)
		}
	}
	return out
}

// Lookup returns the value of name and whether name is declared at all.
func (d AddressDeclarations) Lookup(name NamedAddress) (*AccountAddress, bool) {
	addr, ok := d[name]
	return addr, ok
}

// Clone returns a deep copy of the table.
func (d AddressDeclarations) Clone() AddressDeclarations {
	if d == nil {
		return nil
	}
	out := make(AddressDeclarations, len(d))
	for name, addr := range d {
		if addr == nil {
			out[name] = nil
			continue
		}
		v := *addr
		out[name] = &v
	}
	return out
}

// DevAddressDeclarations assigns concrete addresses for development builds.
// It cannot hold placeholders.
type DevAddressDeclarations map[NamedAddress]AccountAddress

// Names returns every assigned name in canonical order.
func (d DevAddressDeclarations) Names() []NamedAddress {
	return SortedKeys(d)
}
