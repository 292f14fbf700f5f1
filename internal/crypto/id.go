// Copyright (C) 2024  Lukas Dietrich <lukas@lukasdietrich.com>
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

package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// IDGenerator is a service to generate unique string IDs.
type IDGenerator interface {
	// GenerateID generates a new batch id.
	GenerateID() (string, error)
	// GenerateMessageID generates a globally unique Message-Id header value for the domain.
	GenerateMessageID(domain string) (string, error)
}

// NewIDGenerator creates a new id generator.
func NewIDGenerator() IDGenerator {
	return &randomIDGenerator{random: rand.Reader}
}

type randomIDGenerator struct {
	random io.Reader
}

func (r randomIDGenerator) GenerateID() (string, error) {
	id, err := uuid.NewRandomFromReader(r.random)
	if err != nil {
		return "", err
	}

	return id.String(), nil
}

func (r randomIDGenerator) GenerateMessageID(domain string) (string, error) {
	const byteLength = 16

	b, err := r.readRandomBytes(byteLength)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("<%s@%s>", hex.EncodeToString(b), domain), nil
}

func (r randomIDGenerator) readRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := io.ReadFull(r.random, b)
	return b, err
}
