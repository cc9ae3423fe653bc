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
	"sort"

	"oetagger/internal/domain"
	applog "oetagger/internal/log"
	"oetagger/internal/resync"
	"oetagger/internal/split"
)

// Tokens lists a sentence's tokens ordered by position.
func (s *Store) Tokens(ctx context.Context, sentenceID int64) ([]domain.Token, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, sentence_id, position, surface, lemma, created_at, updated_at
		 FROM tokens WHERE sentence_id=? ORDER BY position`, sentenceID)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var out []domain.Token
	for rows.Next() {
		var t domain.Token
		var lemma sql.NullString
		var created, updated string
		if err := rows.Scan(&t.ID, &t.SentenceID, &t.Position, &t.Surface,
			&lemma, &created, &updated); err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		t.Lemma = orEmpty(lemma)
		t.CreatedAt, t.UpdatedAt = parseTime(created), parseTime(updated)
		out = append(out, t)
	}
	return out, rows.Err()
}

// TokenByID loads one token by identity.
func (s *Store) TokenByID(ctx context.Context, id int64) (*domain.Token, error) {
	var t domain.Token
	var lemma sql.NullString
	var created, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, sentence_id, position, surface, lemma, created_at, updated_at
		 FROM tokens WHERE id=?`, id).
		Scan(&t.ID, &t.SentenceID, &t.Position, &t.Surface, &lemma, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	t.Lemma = orEmpty(lemma)
	t.CreatedAt, t.UpdatedAt = parseTime(created), parseTime(updated)
	return &t, nil
}

// SetLemma stores the dictionary headword for a token.
func (s *Store) SetLemma(ctx context.Context, tokenID int64, lemma string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tokens SET lemma=?, updated_at=? WHERE id=?`,
		nullable(lemma), now(), tokenID)
	if err != nil {
		return fmt.Errorf("set lemma: %w", err)
	}
	return requireRow(res)
}

// UpdateSentenceText replaces a sentence's Old English text and reconciles
// its token rows with the retokenized text. Tokens whose surface survives the
// edit keep their row (and with it every annotation attached to it); tokens
// with no counterpart in the new text are deleted, and new words get fresh
// rows with empty annotations.
//
// Notes anchored on deleted tokens are re-anchored to the nearest surviving
// position when possible and removed otherwise. Idioms lose their meaning as
// soon as any member token is gone, so those are deleted outright; one
// human-readable message per removed note or idiom is returned so callers can
// surface them.
func (s *Store) UpdateSentenceText(ctx context.Context, sentenceID int64, text string) ([]string, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "update-sentence").With(
		slog.Int64("sentence", sentenceID),
	)

	sen, err := s.Sentence(ctx, sentenceID)
	if err != nil {
		return nil, err
	}
	text = split.Normalize(text)
	surfaces := split.Tokenize(text)

	old, err := s.Tokens(ctx, sentenceID)
	if err != nil {
		return nil, err
	}
	slots := make([]resync.TokenSlot, len(old))
	for i, t := range old {
		slots[i] = resync.TokenSlot{ID: t.ID, Surface: t.Surface}
	}
	m := resync.Resynchronize(slots, surfaces)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update sentence: %w", err)
	}
	defer tx.Rollback()

	ts := now()
	if _, err := tx.ExecContext(ctx,
		`UPDATE sentences SET text_oe=?, updated_at=? WHERE id=?`,
		text, ts, sentenceID); err != nil {
		return nil, fmt.Errorf("update sentence text: %w", err)
	}

	// Park survivors at negative positions so the (sentence_id, position)
	// uniqueness constraint cannot trip while positions shuffle.
	for i, t := range old {
		if _, err := tx.ExecContext(ctx,
			`UPDATE tokens SET position=? WHERE id=?`, -(i + 1), t.ID); err != nil {
			return nil, fmt.Errorf("park token %d: %w", t.ID, err)
		}
	}

	// newTokens maps each new position to the identity occupying it.
	newTokens := make(map[int]int64, len(surfaces))

	keptPositions := make([]int, 0, len(m.Kept))
	for pos := range m.Kept {
		keptPositions = append(keptPositions, pos)
	}
	sort.Ints(keptPositions)
	for _, pos := range keptPositions {
		id := m.Kept[pos]
		if _, err := tx.ExecContext(ctx,
			`UPDATE tokens SET position=?, surface=?, updated_at=? WHERE id=?`,
			pos, surfaces[pos], ts, id); err != nil {
			return nil, fmt.Errorf("move token %d: %w", id, err)
		}
		newTokens[pos] = id
	}
	for _, pos := range m.Created {
		id, err := insertToken(ctx, tx, sentenceID, pos, surfaces[pos])
		if err != nil {
			return nil, err
		}
		newTokens[pos] = id
	}

	messages, err := repairNotes(ctx, tx, sentenceID, old, m, newTokens)
	if err != nil {
		return nil, err
	}
	idiomMsgs, err := dropBrokenIdioms(ctx, tx, sentenceID, old, m)
	if err != nil {
		return nil, err
	}
	messages = append(messages, idiomMsgs...)

	for _, id := range m.Deleted {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tokens WHERE id=?`, id); err != nil {
			return nil, fmt.Errorf("delete token %d: %w", id, err)
		}
	}
	if err := touchProject(ctx, tx, sen.ProjectID); err != nil {
		return nil, fmt.Errorf("update sentence touch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update sentence commit: %w", err)
	}

	l.Info("sentence text updated",
		slog.Int("kept", len(m.Kept)),
		slog.Int("created", len(m.Created)),
		slog.Int("deleted", len(m.Deleted)),
	)
	return messages, nil
}

// repairNotes re-anchors note token ranges after a retokenization. A note
// whose anchor token was deleted is moved to the token now nearest to the
// anchor's old position; notes that cannot be repaired are deleted. Ranges
// that end up inverted are swapped.
func repairNotes(ctx context.Context, tx *sql.Tx, sentenceID int64,
	old []domain.Token, m resync.Match, newTokens map[int]int64) ([]string, error) {

	rows, err := tx.QueryContext(ctx,
		`SELECT id, start_token, end_token FROM notes WHERE sentence_id=?`, sentenceID)
	if err != nil {
		return nil, fmt.Errorf("load notes: %w", err)
	}
	type noteRow struct {
		id         int64
		start, end sql.NullInt64
	}
	var notes []noteRow
	for rows.Next() {
		var n noteRow
		if err := rows.Scan(&n.id, &n.start, &n.end); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan note: %w", err)
		}
		notes = append(notes, n)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, nil
	}

	oldPos := make(map[int64]int, len(old))
	for i, t := range old {
		oldPos[t.ID] = i
	}
	kept := m.KeptIdentities()
	// newPos covers created tokens too; re-anchored ranges may end on one.
	newPos := make(map[int64]int, len(newTokens))
	positions := make([]int, 0, len(newTokens))
	for pos, id := range newTokens {
		newPos[id] = pos
		positions = append(positions, pos)
	}
	sort.Ints(positions)

	// nearest returns the surviving token closest to a deleted anchor's old
	// position; ties go to the earlier position.
	nearest := func(want int) (int64, bool) {
		best, bestDist := int64(0), -1
		for _, pos := range positions {
			d := pos - want
			if d < 0 {
				d = -d
			}
			if bestDist < 0 || d < bestDist {
				best, bestDist = newTokens[pos], d
			}
		}
		return best, bestDist >= 0
	}

	var messages []string
	for _, n := range notes {
		if !n.start.Valid || !n.end.Valid {
			if err := deleteNoteRow(ctx, tx, n.id, &messages); err != nil {
				return nil, err
			}
			continue
		}
		startID, endID := n.start.Int64, n.end.Int64
		_, startKept := kept[startID]
		_, endKept := kept[endID]
		if startKept && endKept {
			if newPos[startID] > newPos[endID] {
				if _, err := tx.ExecContext(ctx,
					`UPDATE notes SET start_token=?, end_token=?, updated_at=? WHERE id=?`,
					endID, startID, now(), n.id); err != nil {
					return nil, fmt.Errorf("swap note %d: %w", n.id, err)
				}
			}
			continue
		}

		oldStart, okS := oldPos[startID]
		oldEnd, okE := oldPos[endID]
		if !okS || !okE {
			if err := deleteNoteRow(ctx, tx, n.id, &messages); err != nil {
				return nil, err
			}
			continue
		}
		newStartID, foundS := startID, true
		if !startKept {
			newStartID, foundS = nearest(oldStart)
		}
		newEndID, foundE := endID, true
		if !endKept {
			newEndID, foundE = nearest(oldEnd)
		}
		if !foundS || !foundE {
			if err := deleteNoteRow(ctx, tx, n.id, &messages); err != nil {
				return nil, err
			}
			continue
		}
		if newPos[newStartID] > newPos[newEndID] {
			newStartID, newEndID = newEndID, newStartID
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE notes SET start_token=?, end_token=?, updated_at=? WHERE id=?`,
			newStartID, newEndID, now(), n.id); err != nil {
			return nil, fmt.Errorf("re-anchor note %d: %w", n.id, err)
		}
		messages = append(messages,
			fmt.Sprintf("Note %d was moved to the nearest surviving tokens after the text edit.", n.id))
	}
	return messages, nil
}

func deleteNoteRow(ctx context.Context, tx *sql.Tx, id int64, messages *[]string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE id=?`, id); err != nil {
		return fmt.Errorf("delete note %d: %w", id, err)
	}
	*messages = append(*messages,
		fmt.Sprintf("Note %d was deleted because its tokens no longer exist.", id))
	return nil
}

// dropBrokenIdioms deletes every idiom whose original token span lost at
// least one member in the retokenization. Unlike notes, an idiom is a claim
// about an exact word sequence and cannot survive partial loss.
func dropBrokenIdioms(ctx context.Context, tx *sql.Tx, sentenceID int64,
	old []domain.Token, m resync.Match) ([]string, error) {

	rows, err := tx.QueryContext(ctx,
		`SELECT id, start_token_id, end_token_id FROM idioms WHERE sentence_id=?`, sentenceID)
	if err != nil {
		return nil, fmt.Errorf("load idioms: %w", err)
	}
	type idiomRow struct {
		id, start, end int64
	}
	var idioms []idiomRow
	for rows.Next() {
		var i idiomRow
		if err := rows.Scan(&i.id, &i.start, &i.end); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan idiom: %w", err)
		}
		idioms = append(idioms, i)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(idioms) == 0 {
		return nil, nil
	}

	oldPos := make(map[int64]int, len(old))
	for i, t := range old {
		oldPos[t.ID] = i
	}
	kept := m.KeptIdentities()

	var messages []string
	for _, idm := range idioms {
		startPos, okS := oldPos[idm.start]
		endPos, okE := oldPos[idm.end]
		if okS && okE && startPos > endPos {
			startPos, endPos = endPos, startPos
		}
		broken := !okS || !okE
		if !broken {
			for _, t := range old[startPos : endPos+1] {
				if _, ok := kept[t.ID]; !ok {
					broken = true
					break
				}
			}
		}
		if !broken {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM idioms WHERE id=?`, idm.id); err != nil {
			return nil, fmt.Errorf("delete idiom %d: %w", idm.id, err)
		}
		messages = append(messages,
			"Idiom annotation deleted because one of its tokens was removed.")
	}
	return messages, nil
}
