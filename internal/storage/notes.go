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

	"oetagger/internal/domain"
)

// AddNote attaches a note to a token range of a sentence. Start and end are
// token identities of that sentence; an inverted range is stored swapped.
func (s *Store) AddNote(ctx context.Context, n *domain.Note) error {
	if n == nil {
		return errors.New("note is required")
	}
	if n.Type == "" {
		n.Type = "general"
	}
	start, end, err := s.orderRange(ctx, n.SentenceID, n.StartToken, n.EndToken)
	if err != nil {
		return fmt.Errorf("add note: %w", err)
	}
	n.StartToken, n.EndToken = start, end
	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO notes(sentence_id, start_token, end_token, note_text, note_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.SentenceID, start, end, n.Text, n.Type, ts, ts)
	if err != nil {
		return fmt.Errorf("add note: %w", err)
	}
	n.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add note id: %w", err)
	}
	n.CreatedAt, n.UpdatedAt = parseTime(ts), parseTime(ts)
	return nil
}

// Notes lists a sentence's notes in creation order.
func (s *Store) Notes(ctx context.Context, sentenceID int64) ([]domain.Note, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sentence_id, start_token, end_token, note_text, note_type, created_at, updated_at
		 FROM notes WHERE sentence_id=? ORDER BY id`, sentenceID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []domain.Note
	for rows.Next() {
		var n domain.Note
		var start, end sql.NullInt64
		var created, updated string
		if err := rows.Scan(&n.ID, &n.SentenceID, &start, &end, &n.Text, &n.Type,
			&created, &updated); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		n.StartToken, n.EndToken = start.Int64, end.Int64
		n.CreatedAt, n.UpdatedAt = parseTime(created), parseTime(updated)
		out = append(out, n)
	}
	return out, rows.Err()
}

// UpdateNoteText replaces a note's text.
func (s *Store) UpdateNoteText(ctx context.Context, id int64, text string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notes SET note_text=?, updated_at=? WHERE id=?`, text, now(), id)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return requireRow(res)
}

// DeleteNote removes a note.
func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return requireRow(res)
}

// AddIdiom marks the inclusive token range between two token identities as an
// idiomatic expression. An inverted range is stored swapped.
func (s *Store) AddIdiom(ctx context.Context, i *domain.Idiom) error {
	if i == nil {
		return errors.New("idiom is required")
	}
	start, end, err := s.orderRange(ctx, i.SentenceID, i.StartTokenID, i.EndTokenID)
	if err != nil {
		return fmt.Errorf("add idiom: %w", err)
	}
	i.StartTokenID, i.EndTokenID = start, end
	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO idioms(sentence_id, start_token_id, end_token_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		i.SentenceID, start, end, ts, ts)
	if err != nil {
		return fmt.Errorf("add idiom: %w", err)
	}
	i.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("add idiom id: %w", err)
	}
	i.CreatedAt, i.UpdatedAt = parseTime(ts), parseTime(ts)
	return nil
}

// Idioms lists a sentence's idioms in creation order.
func (s *Store) Idioms(ctx context.Context, sentenceID int64) ([]domain.Idiom, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sentence_id, start_token_id, end_token_id, created_at, updated_at
		 FROM idioms WHERE sentence_id=? ORDER BY id`, sentenceID)
	if err != nil {
		return nil, fmt.Errorf("list idioms: %w", err)
	}
	defer rows.Close()

	var out []domain.Idiom
	for rows.Next() {
		var i domain.Idiom
		var created, updated string
		if err := rows.Scan(&i.ID, &i.SentenceID, &i.StartTokenID, &i.EndTokenID,
			&created, &updated); err != nil {
			return nil, fmt.Errorf("scan idiom: %w", err)
		}
		i.CreatedAt, i.UpdatedAt = parseTime(created), parseTime(updated)
		out = append(out, i)
	}
	return out, rows.Err()
}

// DeleteIdiom removes an idiom.
func (s *Store) DeleteIdiom(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM idioms WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete idiom: %w", err)
	}
	return requireRow(res)
}

// orderRange verifies that both token identities belong to the sentence and
// returns them ordered by position.
func (s *Store) orderRange(ctx context.Context, sentenceID, startID, endID int64) (int64, int64, error) {
	pos := func(id int64) (int, error) {
		var p int
		err := s.db.QueryRowContext(ctx,
			`SELECT position FROM tokens WHERE id=? AND sentence_id=?`, id, sentenceID).Scan(&p)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("token %d is not part of sentence %d", id, sentenceID)
		}
		return p, err
	}
	startPos, err := pos(startID)
	if err != nil {
		return 0, 0, err
	}
	endPos, err := pos(endID)
	if err != nil {
		return 0, 0, err
	}
	if startPos > endPos {
		return endID, startID, nil
	}
	return startID, endID, nil
}
