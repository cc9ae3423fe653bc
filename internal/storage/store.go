/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"oetagger/internal/domain"
	applog "oetagger/internal/log"
	"oetagger/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the project database schema. Bump on breaking schema
// changes and add a migration in runMigrations.
const schemaVersion = 1

// ErrNewerSchema is returned when a project database was written by a newer
// application version.
var ErrNewerSchema = errors.New("project database uses a newer schema")

// Store is a sqlite-backed project database. It owns token identities and
// their annotation payloads; all mutations go through it.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens an existing project database, enables WAL mode, and verifies
// the schema version (running migrations when behind).
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("database path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open project database: %w", err)
	}
	return open(path)
}

// Create initializes a new project database at path and inserts the initial
// project row. The parent directory is created if needed.
func Create(path, projectName string) (*Store, *domain.Project, error) {
	if strings.TrimSpace(path) == "" {
		return nil, nil, errors.New("database path is required")
	}
	if strings.TrimSpace(projectName) == "" {
		return nil, nil, errors.New("project name is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create project dir: %w", err)
	}
	s, err := open(path)
	if err != nil {
		return nil, nil, err
	}
	p, err := s.CreateProject(context.Background(), projectName)
	if err != nil {
		_ = s.Close()
		return nil, nil, err
	}
	return s, p, nil
}

func open(path string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(
		slog.String("path", path),
	)

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Embedded usage: one writer connection is plenty.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	// Cascades from tokens to annotations depend on this.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		_ = db.Close()
		l.Error("enable foreign_keys failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable foreign_keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := s.runMigrations(ctx); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}

	l.Debug("project database ready")
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

func (s *Store) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id         INTEGER PRIMARY KEY CHECK(id=1),
			schema     INTEGER NOT NULL,
			app        TEXT,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS projects (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL UNIQUE,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS sentences (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			project_id    INTEGER NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			display_order INTEGER NOT NULL,
			text_oe       TEXT NOT NULL,
			text_modern   TEXT,
			created_at    TEXT NOT NULL,
			updated_at    TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS ix_sentences_project ON sentences(project_id, display_order);`,
		`CREATE TABLE IF NOT EXISTS tokens (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			sentence_id INTEGER NOT NULL REFERENCES sentences(id) ON DELETE CASCADE,
			position    INTEGER NOT NULL,
			surface     TEXT NOT NULL,
			lemma       TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL,
			UNIQUE(sentence_id, position)
		);`,
		`CREATE TABLE IF NOT EXISTS annotations (
			token_id      INTEGER PRIMARY KEY REFERENCES tokens(id) ON DELETE CASCADE,
			pos           TEXT CHECK(pos IN ('N','V','A','R','D','B','C','E','I','L')),
			gender        TEXT CHECK(gender IN ('m','f','n')),
			number        TEXT CHECK(number IN ('s','p')),
			"case"        TEXT CHECK("case" IN ('n','a','g','d','i')),
			declension    TEXT,
			article_type  TEXT CHECK(article_type IN ('d','i','p','D')),
			pronoun_type  TEXT CHECK(pronoun_type IN ('p','rx','r','d','i','m')),
			pronoun_number TEXT CHECK(pronoun_number IN ('s','d','pl')),
			verb_class    TEXT CHECK(verb_class IN ('a','w1','w2','w3','pp','s1','s2','s3','s4','s5','s6','s7')),
			verb_tense    TEXT CHECK(verb_tense IN ('p','n')),
			verb_person   TEXT CHECK(verb_person IN ('1','2','3')),
			verb_mood     TEXT CHECK(verb_mood IN ('i','s','imp')),
			verb_aspect   TEXT CHECK(verb_aspect IN ('p','f','prg','gn')),
			verb_form     TEXT CHECK(verb_form IN ('f','i','p','ii')),
			prep_case     TEXT CHECK(prep_case IN ('a','d','g','i')),
			adj_inflection TEXT CHECK(adj_inflection IN ('s','w')),
			adj_degree    TEXT CHECK(adj_degree IN ('p','c','s')),
			conj_type     TEXT CHECK(conj_type IN ('c','s')),
			adverb_degree TEXT CHECK(adverb_degree IN ('p','c','s')),
			confidence    INTEGER CHECK(confidence BETWEEN 0 AND 100),
			meaning       TEXT,
			root          TEXT,
			updated_at    TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS notes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			sentence_id INTEGER NOT NULL REFERENCES sentences(id) ON DELETE CASCADE,
			start_token INTEGER REFERENCES tokens(id) ON DELETE SET NULL,
			end_token   INTEGER REFERENCES tokens(id) ON DELETE SET NULL,
			note_text   TEXT NOT NULL DEFAULT '',
			note_type   TEXT NOT NULL DEFAULT 'general',
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS idioms (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			sentence_id    INTEGER NOT NULL REFERENCES sentences(id) ON DELETE CASCADE,
			start_token_id INTEGER NOT NULL REFERENCES tokens(id) ON DELETE CASCADE,
			end_token_id   INTEGER NOT NULL REFERENCES tokens(id) ON DELETE CASCADE,
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS annotation_presets (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			name           TEXT NOT NULL UNIQUE,
			pos            TEXT NOT NULL CHECK(pos IN ('N','V','A','R','D','B','C','E','I','L')),
			gender         TEXT,
			number         TEXT,
			"case"         TEXT,
			declension     TEXT,
			article_type   TEXT,
			pronoun_type   TEXT,
			pronoun_number TEXT,
			verb_class     TEXT,
			verb_tense     TEXT,
			verb_person    TEXT,
			verb_mood      TEXT,
			verb_aspect    TEXT,
			verb_form      TEXT,
			adj_inflection TEXT,
			adj_degree     TEXT,
			created_at     TEXT NOT NULL,
			updated_at     TEXT NOT NULL
		);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}

	// Seed or check the version row.
	var stored int
	err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&stored)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO version(id, schema, app, updated_at) VALUES (1, ?, ?, ?)`,
			schemaVersion, version.String(), now())
		if err != nil {
			return fmt.Errorf("seed version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case stored > schemaVersion:
		return fmt.Errorf("%w (database schema %d, application schema %d)", ErrNewerSchema, stored, schemaVersion)
	}
	return nil
}

// runMigrations brings an older database up to the current schema. Each step
// upgrades exactly one version and records it.
func (s *Store) runMigrations(ctx context.Context) error {
	var stored int
	if err := s.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&stored); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for v := stored; v < schemaVersion; v++ {
		// no incremental migrations yet; the switch grows with schemaVersion
		switch v {
		default:
			return fmt.Errorf("no migration path from schema %d", v)
		}
	}
	if stored != schemaVersion {
		if _, err := s.db.ExecContext(ctx,
			`UPDATE version SET schema=?, app=?, updated_at=? WHERE id=1`,
			schemaVersion, version.String(), now()); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	}
	return nil
}

// now returns the canonical timestamp representation used in the database.
func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullable maps the empty string to NULL so check constraints and queries
// treat "not set" uniformly.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func orEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
