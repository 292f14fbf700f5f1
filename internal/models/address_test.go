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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyAddress(t *testing.T) {
	for _, raw := range []string{"", "   "} {
		addr, err := Parse(raw)
		assert.Equal(t, ErrInvalidAddressFormat, err)
		assert.Zero(t, addr)
	}
}

func TestInvalidAddress(t *testing.T) {
	for _, raw := range []string{"no-at-sign", "@example.com", "someone@"} {
		addr, err := Parse(raw)
		assert.Equal(t, ErrInvalidAddressFormat, err)
		assert.Zero(t, addr)
	}
}

func TestTooLongAddress(t *testing.T) {
	for _, raw := range []string{
		longString(200) + "@" + longString(200),
		longString(65) + "@example.com",
		longString(64) + "@" + longString(192),
	} {
		addr, err := Parse(raw)
		assert.Equal(t, ErrPathTooLong, err)
		assert.Zero(t, addr)
	}
}

func TestValidAddress(t *testing.T) {
	for _, raw := range []string{
		longString(64) + "@" + longString(100),
		"a@" + longString(254),
		longString(10) + "@" + longString(245),
	} {
		addr, err := Parse(raw)
		assert.NoError(t, err)
		assert.NotZero(t, addr)
		assert.Equal(t, raw, addr.String())
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	addr, err := Parse("  someone@example.com\n")
	assert.NoError(t, err)
	assert.Equal(t, "someone@example.com", addr.String())
	assert.Equal(t, "someone", addr.LocalPart())
	assert.Equal(t, "example.com", addr.Domain())
}

func longString(n int) string {
	r := make([]rune, n)
	for i := 0; i < n; i++ {
		r[i] = 'a'
	}

	return string(r)
}

func TestDomainToASCII(t *testing.T) {
	for domain, expected := range map[string]string{
		"example.com":     "example.com",
		"dömäin.example":  "xn--dmin-moa0i.example",
		"DÖMÄIN.example":  "xn--dmin-moa0i.example",
		"äaaa.example":    "xn--aaa-pla.example",
		"déjà.vu.example": "xn--dj-kia8a.vu.example",
		"fußball.example": "fussball.example",
	} {
		actual, err := DomainToASCII(domain)
		assert.NoError(t, err)
		assert.Equal(t, expected, actual)
	}
}

func TestDomainToUnicode(t *testing.T) {
	for domain, expected := range map[string]string{
		"example.com":             "example.com",
		"xn--dmin-moa0i.example":  "dömäin.example",
		"xn--aaa-pla.example":     "äaaa.example",
		"xn--dj-kia8a.vu.example": "déjà.vu.example",
		"fussball.example":        "fussball.example",
	} {
		actual, err := DomainToUnicode(domain)
		assert.NoError(t, err)
		assert.Equal(t, expected, actual)
	}
}

func TestFoldLocalPart(t *testing.T) {
	for _, tc := range []struct {
		localPart string
		expected  string
	}{
		{"User+Suffix", "user+suffix"},
		{"\u00c4\u00d6\u00dc", "\u00e4\u00f6\u00fc"},
		{"A\u030a", "\u00e5"},
	} {
		assert.Equal(t, tc.expected, FoldLocalPart(tc.localPart))
	}
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "someone@example.com", NormalizeAddress("Someone@Example.COM"))
	assert.Equal(t, "a@x.com", NormalizeAddress(" a@X.com "))
	assert.Equal(t, "someone@dömäin.example", NormalizeAddress("someone@xn--dmin-moa0i.example"))
	assert.Equal(t, "not an address", NormalizeAddress("Not An Address"))
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("Real.Person@Target.com", "real.person@target.com"))
	assert.False(t, SameAddress("real.person+a@target.com", "real.person@target.com"))
}

func TestAddressSet(t *testing.T) {
	set := NewAddressSet("a@x.com", "B@X.com")

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains("A@x.com"))
	assert.True(t, set.Contains("b@x.com"))
	assert.False(t, set.Contains("c@x.com"))

	assert.False(t, set.Add("a@X.COM"))
	assert.True(t, set.Add("c@x.com"))
	assert.Equal(t, 3, set.Len())
}
