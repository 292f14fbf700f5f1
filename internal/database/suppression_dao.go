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

	"github.com/lukasdietrich/briefsend/internal/models"
)

// SuppressionDao is a data access object for the list of addresses that must not be contacted
// again.
type SuppressionDao interface {
	// Insert inserts a new suppression. An already suppressed address fails with a unique
	// constraint error.
	Insert(context.Context, Queryer, *models.SuppressionEntity) error
	// Delete deletes an existing suppression.
	Delete(context.Context, Queryer, *models.SuppressionEntity) error
	// FindAll returns all suppressions, most recent first.
	FindAll(context.Context, Queryer) ([]models.SuppressionEntity, error)
	// FindByAddress returns the suppression matching the address, compared case-insensitively.
	FindByAddress(context.Context, Queryer, string) (*models.SuppressionEntity, error)
}

// suppressionDao is the sqlite implementation of SuppressionDao.
type suppressionDao struct{}

// NewSuppressionDao creates a new SuppressionDao.
func NewSuppressionDao() SuppressionDao {
	return suppressionDao{}
}

func (suppressionDao) Insert(ctx context.Context, q Queryer, suppression *models.SuppressionEntity) error {
	const query = `
		insert into "suppressions" (
			"address" ,
			"display_address" ,
			"reason" ,
			"archive_id" ,
			"created_at"
		) values (
			:address ,
			:display_address ,
			:reason ,
			:archive_id ,
			:created_at
		) ;
	`

	suppression.Address = models.NormalizeAddress(suppression.Address)

	result, err := execNamed(ctx, q, query, suppression)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (suppressionDao) Delete(ctx context.Context, q Queryer, suppression *models.SuppressionEntity) error {
	const query = `
		delete from "suppressions"
		where "address" = $1 ;
	`

	result, err := execPositional(ctx, q, query, suppression.Address)
	if err != nil {
		return err
	}

	return ensureRowsAffected(result)
}

func (suppressionDao) FindAll(ctx context.Context, q Queryer) ([]models.SuppressionEntity, error) {
	const query = `
		select *
		from "suppressions"
		order by "created_at" desc ,
		         "address" asc ;
	`

	var suppressionSlice []models.SuppressionEntity

	if err := selectSlice(ctx, q, &suppressionSlice, query); err != nil {
		return nil, err
	}

	return suppressionSlice, nil
}

func (suppressionDao) FindByAddress(ctx context.Context, q Queryer, address string) (*models.SuppressionEntity, error) {
	const query = `
		select *
		from "suppressions"
		where "address" = $1
		limit 1 ;
	`

	var suppression models.SuppressionEntity

	if err := selectOne(ctx, q, &suppression, query, models.NormalizeAddress(address)); err != nil {
		return nil, err
	}

	return &suppression, nil
}
