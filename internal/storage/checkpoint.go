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
	"context"
	"errors"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/models"
)

// ErrNoCheckpoint is returned when there is no checkpoint, meaning there is no pending batch.
var ErrNoCheckpoint = errors.New("no checkpoint")

func init() {
	viper.SetDefault("storage.checkpoint.filename", "data/checkpoint.json")
}

// CheckpointOptions is the configuration of the checkpoint store.
type CheckpointOptions struct {
	Filename string
}

// CheckpointOptionsFromViper reads the checkpoint configuration.
//
// `storage.checkpoint.filename` is the well-known location of the checkpoint.
func CheckpointOptionsFromViper() CheckpointOptions {
	return CheckpointOptions{
		Filename: viper.GetString("storage.checkpoint.filename"),
	}
}

// Checkpoints persists the progress of the running batch. There is at most one checkpoint.
type Checkpoints interface {
	// Load reads the checkpoint. ErrNoCheckpoint is returned if there is none.
	Load(context.Context) (*models.BatchProgress, error)
	// Save replaces the checkpoint atomically. Save returns only after the data has been handed to
	// the filesystem.
	Save(context.Context, *models.BatchProgress) error
	// Delete removes the checkpoint. Deleting a missing checkpoint is not an error.
	Delete(context.Context) error
}

type checkpoints struct {
	fs       afero.Fs
	filename string
}

// NewCheckpoints creates a new checkpoint store.
func NewCheckpoints(fs afero.Fs, opts CheckpointOptions) Checkpoints {
	return &checkpoints{
		fs:       fs,
		filename: opts.Filename,
	}
}

func (c *checkpoints) Load(ctx context.Context) (*models.BatchProgress, error) {
	var progress models.BatchProgress

	if err := readJSON(c.fs, c.filename, &progress); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoCheckpoint
		}

		return nil, err
	}

	return &progress, nil
}

func (c *checkpoints) Save(ctx context.Context, progress *models.BatchProgress) error {
	log.TraceContext(ctx).
		Str("status", progress.Status.String()).
		Int("results", len(progress.ResultsSoFar)).
		Msg("writing checkpoint")

	return writeJSON(c.fs, c.filename, progress)
}

func (c *checkpoints) Delete(ctx context.Context) error {
	log.DebugContext(ctx).
		Str("filename", c.filename).
		Msg("removing checkpoint")

	return removeIfExists(c.fs, c.filename)
}
