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
	"strings"

	"oetagger/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// CreateProject inserts a new project row. Names are unique.
func (s *Store) CreateProject(ctx context.Context, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("project name is required")
	}
	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO projects(name, created_at, updated_at) VALUES (?, ?, ?)`,
		name, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create project id: %w", err)
	}
	return &domain.Project{ID: id, Name: name, CreatedAt: parseTime(ts), UpdatedAt: parseTime(ts)}, nil
}

// Project loads one project by ID.
func (s *Store) Project(ctx context.Context, id int64) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM projects WHERE id=?`, id)
	return scanProject(row)
}

// FirstProject returns the oldest project in the database, the common case
// for single-project files.
func (s *Store) FirstProject(ctx context.Context) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM projects ORDER BY id LIMIT 1`)
	return scanProject(row)
}

// Projects lists all projects ordered by creation.
func (s *Store) Projects(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at, updated_at FROM projects ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		var created, updated string
		if err := rows.Scan(&p.ID, &p.Name, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.CreatedAt, p.UpdatedAt = parseTime(created), parseTime(updated)
		out = append(out, p)
	}
	return out, rows.Err()
}

// RenameProject updates the project name.
func (s *Store) RenameProject(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("project name is required")
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET name=?, updated_at=? WHERE id=?`, name, now(), id)
	if err != nil {
		return fmt.Errorf("rename project: %w", err)
	}
	return requireRow(res)
}

// DeleteProject removes a project and, via cascades, all its sentences,
// tokens, annotations, notes and idioms.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res)
}

func scanProject(row *sql.Row) (*domain.Project, error) {
	var p domain.Project
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	p.CreatedAt, p.UpdatedAt = parseTime(created), parseTime(updated)
	return &p, nil
}

// touchProject bumps the project's updated_at inside a transaction.
func touchProject(ctx context.Context, tx *sql.Tx, projectID int64) error {
	_, err := tx.ExecContext(ctx, `UPDATE projects SET updated_at=? WHERE id=?`, now(), projectID)
	return err
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
