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
	"database/sql"
	"embed"
	"errors"
	"net/url"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/viper"

	"github.com/lukasdietrich/briefsend/internal/log"
)

const (
	driverName      = "sqlite3"
	migrationsTable = "database_migrations"
)

//go:embed migrations/*
var migrationFolder embed.FS

func init() {
	migrate.SetTable(migrationsTable)

	viper.SetDefault("storage.database.filename", "data/briefsend.sqlite")
	viper.SetDefault("storage.database.journalmode", "wal")
}

// Queryer is an interface for both transactions and the database connection itself.
type Queryer interface {
	sqlx.ExtContext
}

// Tx is a database transaction, which can be rolled back or committed.
type Tx interface {
	Queryer
	Commit() error
	Rollback() error
	RollbackWith(func()) error
}

type tx struct {
	*sqlx.Tx
}

func (t tx) RollbackWith(callback func()) error {
	err := t.Rollback()

	if !errors.Is(err, sql.ErrTxDone) {
		callback()
	}

	return err
}

// Conn is a connection to the sql database.
type Conn interface {
	Queryer
	Begin(context.Context) (Tx, error)
	Close() error
}

type conn struct {
	*sqlx.DB
}

func (c conn) Begin(ctx context.Context) (Tx, error) {
	rawTx, err := c.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}

	return tx{rawTx}, nil
}

// ConnOptions is the configuration of the database connection.
type ConnOptions struct {
	Filename    string
	JournalMode string
}

// ConnOptionsFromViper reads the database configuration.
//
// `storage.database.filename` is the filename for the sqlite database.
// `storage.database.journalmode` will be used for the journalmode pragma.
func ConnOptionsFromViper() ConnOptions {
	return ConnOptions{
		Filename:    viper.GetString("storage.database.filename"),
		JournalMode: viper.GetString("storage.database.journalmode"),
	}
}

// OpenConnection opens an sqlite3 database connection and applies all pending migrations. The
// returned cleanup function closes the connection.
func OpenConnection(opts ConnOptions) (Conn, func(), error) {
	sqliteVersion, _, _ := sqlite3.Version()

	if opts.Filename != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(opts.Filename), 0700); err != nil {
			return nil, nil, err
		}
	}

	dsn := createDataSourceName(opts)
	log.Info().
		Str("driver", driverName).
		Str("version", sqliteVersion).
		Str("dataSourceName", dsn).
		Msg("connecting to database")

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, nil, err
	}

	if opts.Filename == ":memory:" {
		// every connection of the pool would open its own empty database.
		db.SetMaxOpenConns(1)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			log.Warn().Err(err).Msg("could not close database")
		}
	}

	return conn{db}, cleanup, nil
}

func createDataSourceName(opts ConnOptions) string {
	query := make(url.Values)
	query.Add("_foreign_keys", "true")
	query.Add("_journal_mode", opts.JournalMode)

	dsn := url.URL{
		Scheme:   "file",
		Opaque:   opts.Filename,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func applyMigrations(db *sqlx.DB) error {
	source := migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFolder,
		Root:       "migrations",
	}

	n, err := migrate.Exec(db.DB, driverName, source, migrate.Up)
	if err != nil {
		return err
	}

	if n > 0 {
		log.Info().
			Int("migrations", n).
			Msg("database migrations applied")
	}

	return nil
}
