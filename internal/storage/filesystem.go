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

package storage

import (
	"encoding/json"
	"os"
	"path"

	"github.com/spf13/afero"
)

// NewFilesystem returns the os backed filesystem.
func NewFilesystem() afero.Fs {
	return afero.NewOsFs()
}

// writeJSON encodes v into a temporary file next to filename, flushes it to stable storage and
// renames it into place, so that a reader never observes a partially written document.
func writeJSON(fs afero.Fs, filename string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if err := fs.MkdirAll(path.Dir(filename), 0700); err != nil {
		return err
	}

	temporary := filename + ".tmp"

	if err := writeFileSync(fs, temporary, data); err != nil {
		_ = fs.Remove(temporary)
		return err
	}

	if err := fs.Rename(temporary, filename); err != nil {
		_ = fs.Remove(temporary)
		return err
	}

	syncDir(fs, path.Dir(filename))
	return nil
}

func writeFileSync(fs afero.Fs, filename string, data []byte) error {
	f, err := fs.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

// syncDir persists the directory entry of a rename. Not every platform supports syncing a
// directory, so errors are ignored.
func syncDir(fs afero.Fs, dirname string) {
	dir, err := fs.Open(dirname)
	if err != nil {
		return
	}

	_ = dir.Sync()
	_ = dir.Close()
}

func readJSON(fs afero.Fs, filename string, v interface{}) error {
	data, err := afero.ReadFile(fs, filename)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

func removeIfExists(fs afero.Fs, filename string) error {
	if err := fs.Remove(filename); err != nil && !os.IsNotExist(err) {
		return err
	}

	return nil
}
