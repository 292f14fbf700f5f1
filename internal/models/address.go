// Copyright (C) 2019  Lukas Dietrich <lukas@lukasdietrich.com>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package models

import (
	"errors"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrInvalidAddressFormat is used for addresses of zero length or without
	// an "@" sign.
	ErrInvalidAddressFormat = errors.New("address: invalid format")

	// ErrPathTooLong is used for addresses, that are too long or contain a path
	// that is too long according to RFC#5321.
	ErrPathTooLong = errors.New("address: path too long")

	// ZeroAddress is an invalid, zero value Address.
	ZeroAddress Address
)

// Address is a string of the form "local-part@domain".
type Address struct {
	raw string
	at  int
}

// Parse trims surrounding whitespace, splits an address at the "@" sign and checks for size
// limits.
func Parse(raw string) (Address, error) {
	raw = strings.TrimSpace(raw)

	if len(raw) == 0 {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	at := strings.LastIndex(raw, "@")
	if at <= 0 || at == len(raw)-1 {
		return ZeroAddress, ErrInvalidAddressFormat
	}

	// see RFC#5321 4.5.3.1
	if at > 64 || len(raw)-at > 256 || len(raw) > 256 {
		return ZeroAddress, ErrPathTooLong
	}

	return Address{raw, at}, nil
}

// String returns the raw address provided to Parse.
func (a Address) String() string {
	return a.raw
}

// LocalPart returns the part left of the "@" sign (exclusive).
func (a Address) LocalPart() string {
	return a.raw[:a.at]
}

// Domain return the part right of the "@" sign (exclusive).
func (a Address) Domain() string {
	return a.raw[a.at+1:]
}

// Key returns a comparable form of the address. Two addresses with equal keys are considered to
// reach the same recipient. Unlike inbound normalization the "+suffix" is kept, because a remote
// server may treat it as a different mailbox.
func (a Address) Key() string {
	domain, err := DomainToUnicode(a.Domain())
	if err != nil {
		domain = a.Domain()
	}

	return FoldLocalPart(a.LocalPart()) + "@" + foldString(domain)
}

// NormalizeAddress returns the Key of a raw address. Input that cannot be parsed is still folded,
// so that comparisons stay case-insensitive for garbage as well.
func NormalizeAddress(raw string) string {
	addr, err := Parse(raw)
	if err != nil {
		return foldString(strings.TrimSpace(raw))
	}

	return addr.Key()
}

// SameAddress reports whether two raw addresses reach the same recipient.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}

// DomainToUnicode normalizes a punycode domain to unicode and applies the
// NFC normal form.
func DomainToUnicode(domain string) (string, error) {
	mapped, err := idna.Lookup.ToUnicode(domain)
	if err != nil {
		return domain, err
	}

	return norm.NFC.String(mapped), nil
}

// DomainToASCII transforms a unicode domain to punycode.
func DomainToASCII(domain string) (string, error) {
	mapped, err := DomainToUnicode(domain)
	if err != nil {
		return domain, err
	}

	return idna.Lookup.ToASCII(mapped)
}

// foldString folds unicode text. Folding is more or less "compatible" lowercase. A cases.Caser is
// stateful and may not be shared, so a new one is created per call.
func foldString(s string) string {
	return cases.Fold().String(s)
}

// FoldLocalPart makes local-parts comparable: it is case-folded and normalized using NFKC so that
// equal looking runes are considered equal.
func FoldLocalPart(localPart string) string {
	return norm.NFKC.String(foldString(localPart))
}

// AddressSet is a set of addresses compared by their Key.
type AddressSet struct {
	entries map[string]bool
}

// NewAddressSet creates a set containing all raw addresses.
func NewAddressSet(raw ...string) *AddressSet {
	s := AddressSet{entries: make(map[string]bool, len(raw))}

	for _, r := range raw {
		s.Add(r)
	}

	return &s
}

// Add inserts an address and reports whether it was not yet present.
func (s *AddressSet) Add(raw string) bool {
	key := NormalizeAddress(raw)
	if s.entries[key] {
		return false
	}

	s.entries[key] = true
	return true
}

// Contains reports whether an equal address is part of the set.
func (s *AddressSet) Contains(raw string) bool {
	return s.entries[NormalizeAddress(raw)]
}

// Len returns the number of distinct addresses.
func (s *AddressSet) Len() int {
	return len(s.entries)
}
