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

	"oetagger/internal/domain"
	applog "oetagger/internal/log"
	"oetagger/internal/split"
)

// ImportText normalizes the given text, splits it into sentences and stores
// them with tokenized token rows, appended after the project's existing
// sentences. Sentences that tokenize to nothing are skipped.
func (s *Store) ImportText(ctx context.Context, projectID int64, text string) ([]domain.Sentence, error) {
	sentences := split.Sentences(split.Normalize(text))
	if len(sentences) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("import text: %w", err)
	}
	defer tx.Rollback()

	var next int
	row := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(display_order)+1, 0) FROM sentences WHERE project_id=?`, projectID)
	if err := row.Scan(&next); err != nil {
		return nil, fmt.Errorf("import text order: %w", err)
	}

	var out []domain.Sentence
	for _, txt := range sentences {
		surfaces := split.Tokenize(txt)
		if len(surfaces) == 0 {
			continue
		}
		ts := now()
		res, err := tx.ExecContext(ctx,
			`INSERT INTO sentences(project_id, display_order, text_oe, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?)`,
			projectID, next, txt, ts, ts)
		if err != nil {
			return nil, fmt.Errorf("insert sentence: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("insert sentence id: %w", err)
		}
		for pos, surface := range surfaces {
			if _, err := insertToken(ctx, tx, id, pos, surface); err != nil {
				return nil, err
			}
		}
		out = append(out, domain.Sentence{
			ID: id, ProjectID: projectID, DisplayOrder: next, TextOE: txt,
			CreatedAt: parseTime(ts), UpdatedAt: parseTime(ts),
		})
		next++
	}
	if err := touchProject(ctx, tx, projectID); err != nil {
		return nil, fmt.Errorf("import text touch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("import text commit: %w", err)
	}
	applog.L().Info("text imported", slog.Int64("project", projectID), slog.Int("sentences", len(out)))
	return out, nil
}

// Sentences lists a project's sentences in display order.
func (s *Store) Sentences(ctx context.Context, projectID int64) ([]domain.Sentence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, display_order, text_oe, text_modern, created_at, updated_at
		 FROM sentences WHERE project_id=? ORDER BY display_order`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list sentences: %w", err)
	}
	defer rows.Close()

	var out []domain.Sentence
	for rows.Next() {
		sen, err := scanSentence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sen)
	}
	return out, rows.Err()
}

// Sentence loads one sentence by ID.
func (s *Store) Sentence(ctx context.Context, id int64) (*domain.Sentence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, display_order, text_oe, text_modern, created_at, updated_at
		 FROM sentences WHERE id=?`, id)
	if err != nil {
		return nil, fmt.Errorf("load sentence: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	return scanSentence(rows)
}

// SetTranslation stores the Modern English translation of a sentence.
func (s *Store) SetTranslation(ctx context.Context, id int64, text string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sentences SET text_modern=?, updated_at=? WHERE id=?`,
		nullable(text), now(), id)
	if err != nil {
		return fmt.Errorf("set translation: %w", err)
	}
	return requireRow(res)
}

// DeleteSentence removes a sentence together with its tokens and their
// annotations.
func (s *Store) DeleteSentence(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sentences WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete sentence: %w", err)
	}
	return requireRow(res)
}

func scanSentence(rows *sql.Rows) (*domain.Sentence, error) {
	var sen domain.Sentence
	var modern sql.NullString
	var created, updated string
	if err := rows.Scan(&sen.ID, &sen.ProjectID, &sen.DisplayOrder, &sen.TextOE,
		&modern, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan sentence: %w", err)
	}
	sen.TextModern = orEmpty(modern)
	sen.CreatedAt, sen.UpdatedAt = parseTime(created), parseTime(updated)
	return &sen, nil
}

// insertToken creates a token row plus its empty annotation row.
func insertToken(ctx context.Context, tx *sql.Tx, sentenceID int64, pos int, surface string) (int64, error) {
	ts := now()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO tokens(sentence_id, position, surface, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sentenceID, pos, surface, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("insert token: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert token id: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO annotations(token_id, updated_at) VALUES (?, ?)`, id, ts); err != nil {
		return 0, fmt.Errorf("insert annotation: %w", err)
	}
	return id, nil
}
