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

package models

// SuppressionEntity is the entity for the "suppressions" table.
type SuppressionEntity struct {
	// Address is the normalized address used for comparisons.
	Address string `db:"address"`
	// DisplayAddress is the address as it appeared in the bounce notification.
	DisplayAddress string `db:"display_address"`
	Reason         string `db:"reason"`
	ArchiveID      string `db:"archive_id"`
	CreatedAt      int64  `db:"created_at"`
}

// NewSuppressionEntity creates the suppression of a bounced address.
func NewSuppressionEntity(bounce BounceRecord, archiveID string, createdAt int64) SuppressionEntity {
	return SuppressionEntity{
		Address:        NormalizeAddress(bounce.BouncedEmail),
		DisplayAddress: bounce.BouncedEmail,
		Reason:         bounce.Reason,
		ArchiveID:      archiveID,
		CreatedAt:      createdAt,
	}
}
