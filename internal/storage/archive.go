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
	"path"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefsend/internal/log"
	"github.com/lukasdietrich/briefsend/internal/models"
)

const archiveExtension = ".json"

// ErrArchiveNotFound is returned when there is no archive record for an id.
var ErrArchiveNotFound = errors.New("archive not found")

func init() {
	viper.SetDefault("storage.archive.foldername", "data/archive")
}

// ArchiveOptions is the configuration of the archive store.
type ArchiveOptions struct {
	Foldername string
}

// ArchiveOptionsFromViper reads the archive configuration.
//
// `storage.archive.foldername` is the folder containing one file per completed batch.
func ArchiveOptionsFromViper() ArchiveOptions {
	return ArchiveOptions{
		Foldername: viper.GetString("storage.archive.foldername"),
	}
}

// Archives is the history of completed batches. Records are never deleted.
type Archives interface {
	// Save writes an archive record. An existing record with the same id is replaced.
	Save(context.Context, *models.BatchArchive) error
	// List returns all archive records, newest first.
	List(context.Context) ([]*models.BatchArchive, error)
	// Load reads a single archive record.
	Load(context.Context, string) (*models.BatchArchive, error)
	// UpdateBounces replaces the bounce records of an archive in place.
	UpdateBounces(ctx context.Context, id string, bounces []models.BounceRecord, reconciledAt time.Time, lookbackDays int) error
}

type archives struct {
	fs afero.Fs
}

// NewArchives creates a new archive store.
func NewArchives(fs afero.Fs, opts ArchiveOptions) (Archives, error) {
	if err := fs.MkdirAll(opts.Foldername, 0700); err != nil {
		return nil, err
	}

	return &archives{
		fs: afero.NewBasePathFs(fs, opts.Foldername),
	}, nil
}

func (a *archives) Save(ctx context.Context, archive *models.BatchArchive) error {
	filename, err := archiveFilename(archive.ID)
	if err != nil {
		return err
	}

	log.DebugContext(ctx).
		Str("archive", archive.ID).
		Int("results", len(archive.Results)).
		Msg("writing archive")

	return writeJSON(a.fs, filename, archive)
}

func (a *archives) List(ctx context.Context) ([]*models.BatchArchive, error) {
	infos, err := afero.ReadDir(a.fs, "/")
	if err != nil {
		return nil, err
	}

	var ids []string

	for _, info := range infos {
		name := info.Name()

		if !info.IsDir() && strings.HasSuffix(name, archiveExtension) {
			ids = append(ids, strings.TrimSuffix(name, archiveExtension))
		}
	}

	sort.Sort(sort.Reverse(sort.StringSlice(ids)))

	archiveSlice := make([]*models.BatchArchive, 0, len(ids))

	for _, id := range ids {
		archive, err := a.Load(ctx, id)
		if err != nil {
			log.WarnContext(ctx).
				Err(err).
				Str("archive", id).
				Msg("skipping unreadable archive")

			continue
		}

		archiveSlice = append(archiveSlice, archive)
	}

	return archiveSlice, nil
}

func (a *archives) Load(ctx context.Context, id string) (*models.BatchArchive, error) {
	filename, err := archiveFilename(id)
	if err != nil {
		return nil, err
	}

	var archive models.BatchArchive

	if err := readJSON(a.fs, filename, &archive); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrArchiveNotFound
		}

		return nil, err
	}

	return &archive, nil
}

func (a *archives) UpdateBounces(ctx context.Context, id string, bounces []models.BounceRecord, reconciledAt time.Time, lookbackDays int) error {
	archive, err := a.Load(ctx, id)
	if err != nil {
		return err
	}

	if bounces == nil {
		bounces = []models.BounceRecord{}
	}

	archive.Bounces = bounces
	archive.ReconciledAt = &reconciledAt
	archive.LookbackDays = lookbackDays

	return a.Save(ctx, archive)
}

func archiveFilename(id string) (string, error) {
	if id == "" || strings.ContainsAny(id, "/\\") || strings.HasPrefix(id, ".") {
		return "", ErrArchiveNotFound
	}

	return path.Join("/", id+archiveExtension), nil
}
