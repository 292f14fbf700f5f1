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

package database

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lukasdietrich/briefsend/internal/models"
)

// MockSuppressionDao is a mock implementation of SuppressionDao.
type MockSuppressionDao struct {
	mock.Mock
}

// Insert implements SuppressionDao.
func (m *MockSuppressionDao) Insert(ctx context.Context, q Queryer, suppression *models.SuppressionEntity) error {
	args := m.Called(ctx, q, suppression)
	return args.Error(0)
}

// Delete implements SuppressionDao.
func (m *MockSuppressionDao) Delete(ctx context.Context, q Queryer, suppression *models.SuppressionEntity) error {
	args := m.Called(ctx, q, suppression)
	return args.Error(0)
}

// FindAll implements SuppressionDao.
func (m *MockSuppressionDao) FindAll(ctx context.Context, q Queryer) ([]models.SuppressionEntity, error) {
	args := m.Called(ctx, q)
	suppressionSlice, _ := args.Get(0).([]models.SuppressionEntity)
	return suppressionSlice, args.Error(1)
}

// FindByAddress implements SuppressionDao.
func (m *MockSuppressionDao) FindByAddress(ctx context.Context, q Queryer, address string) (*models.SuppressionEntity, error) {
	args := m.Called(ctx, q, address)
	suppression, _ := args.Get(0).(*models.SuppressionEntity)
	return suppression, args.Error(1)
}
