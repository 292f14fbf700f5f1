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

import "github.com/stretchr/testify/mock"

// MockIDGenerator is a mock implementation of IDGenerator.
type MockIDGenerator struct {
	mock.Mock
}

// GenerateID implements IDGenerator.
func (m *MockIDGenerator) GenerateID() (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

// GenerateMessageID implements IDGenerator.
func (m *MockIDGenerator) GenerateMessageID(domain string) (string, error) {
	args := m.Called(domain)
	return args.String(0), args.Error(1)
}
