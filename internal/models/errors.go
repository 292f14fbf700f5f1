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

import (
	"fmt"
	"strings"
)

// ConfigurationError is returned when a batch or scan cannot start because of incomplete or
// unusable configuration. Nothing has been sent or scanned when it is returned.
type ConfigurationError struct {
	Component string
	Fields    []string
	Err       error
}

func (e *ConfigurationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("%s configuration incomplete: missing %s",
			e.Component, strings.Join(e.Fields, ", "))
	}

	return fmt.Sprintf("%s configuration unusable: %v", e.Component, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ScanError is returned when the mailbox could not be opened for a bounce scan. Bounce records
// stored before the scan are left untouched.
type ScanError struct {
	Err error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("bounce scan aborted: %v", e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
