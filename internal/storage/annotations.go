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

const annotationCols = `token_id, pos, gender, number, "case", declension, article_type,
	pronoun_type, pronoun_number, verb_class, verb_tense, verb_person, verb_mood,
	verb_aspect, verb_form, prep_case, adj_inflection, adj_degree, conj_type,
	adverb_degree, confidence, meaning, root, updated_at`

// Annotation loads the grammar payload attached to a token. Every token has
// exactly one annotation row; a fresh token's row is empty.
func (s *Store) Annotation(ctx context.Context, tokenID int64) (*domain.Annotation, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+annotationCols+` FROM annotations WHERE token_id=?`, tokenID)
	a, err := scanAnnotation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// Annotations loads the payloads for all tokens of a sentence, keyed by
// token identity.
func (s *Store) Annotations(ctx context.Context, sentenceID int64) (map[int64]*domain.Annotation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+annotationCols+` FROM annotations
		 WHERE token_id IN (SELECT id FROM tokens WHERE sentence_id=?)`, sentenceID)
	if err != nil {
		return nil, fmt.Errorf("list annotations: %w", err)
	}
	defer rows.Close()

	out := make(map[int64]*domain.Annotation)
	for rows.Next() {
		a, err := scanAnnotation(rows)
		if err != nil {
			return nil, err
		}
		out[a.TokenID] = a
	}
	return out, rows.Err()
}

// SaveAnnotation validates and writes a token's grammar payload, replacing
// whatever was stored before.
func (s *Store) SaveAnnotation(ctx context.Context, a *domain.Annotation) error {
	if a == nil {
		return errors.New("annotation is required")
	}
	if err := a.Validate(); err != nil {
		return err
	}
	var conf any
	if a.Confidence != nil {
		conf = *a.Confidence
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE annotations SET
			pos=?, gender=?, number=?, "case"=?, declension=?, article_type=?,
			pronoun_type=?, pronoun_number=?, verb_class=?, verb_tense=?,
			verb_person=?, verb_mood=?, verb_aspect=?, verb_form=?, prep_case=?,
			adj_inflection=?, adj_degree=?, conj_type=?, adverb_degree=?,
			confidence=?, meaning=?, root=?, updated_at=?
		 WHERE token_id=?`,
		nullable(string(a.POS)), nullable(a.Gender), nullable(a.Number),
		nullable(a.Case), nullable(a.Declension), nullable(a.ArticleType),
		nullable(a.PronounType), nullable(a.PronounNumber), nullable(a.VerbClass),
		nullable(a.VerbTense), nullable(a.VerbPerson), nullable(a.VerbMood),
		nullable(a.VerbAspect), nullable(a.VerbForm), nullable(a.PrepCase),
		nullable(a.AdjInflection), nullable(a.AdjDegree), nullable(a.ConjType),
		nullable(a.AdverbDegree), conf, nullable(a.Meaning), nullable(a.Root),
		now(), a.TokenID)
	if err != nil {
		return fmt.Errorf("save annotation: %w", err)
	}
	return requireRow(res)
}

// ClearAnnotation resets a token's payload to empty without touching the
// token itself.
func (s *Store) ClearAnnotation(ctx context.Context, tokenID int64) error {
	return s.SaveAnnotation(ctx, &domain.Annotation{TokenID: tokenID})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnnotation(row rowScanner) (*domain.Annotation, error) {
	var a domain.Annotation
	var pos, gender, number, caseV, decl, artType sql.NullString
	var proType, proNum, vClass, vTense, vPerson, vMood sql.NullString
	var vAspect, vForm, prepCase, adjInfl, adjDeg, conjType, advDeg sql.NullString
	var conf sql.NullInt64
	var meaning, root sql.NullString
	var updated string
	if err := row.Scan(&a.TokenID, &pos, &gender, &number, &caseV, &decl, &artType,
		&proType, &proNum, &vClass, &vTense, &vPerson, &vMood,
		&vAspect, &vForm, &prepCase, &adjInfl, &adjDeg, &conjType,
		&advDeg, &conf, &meaning, &root, &updated); err != nil {
		return nil, err
	}
	a.POS = domain.POS(orEmpty(pos))
	a.Gender = orEmpty(gender)
	a.Number = orEmpty(number)
	a.Case = orEmpty(caseV)
	a.Declension = orEmpty(decl)
	a.ArticleType = orEmpty(artType)
	a.PronounType = orEmpty(proType)
	a.PronounNumber = orEmpty(proNum)
	a.VerbClass = orEmpty(vClass)
	a.VerbTense = orEmpty(vTense)
	a.VerbPerson = orEmpty(vPerson)
	a.VerbMood = orEmpty(vMood)
	a.VerbAspect = orEmpty(vAspect)
	a.VerbForm = orEmpty(vForm)
	a.PrepCase = orEmpty(prepCase)
	a.AdjInflection = orEmpty(adjInfl)
	a.AdjDegree = orEmpty(adjDeg)
	a.ConjType = orEmpty(conjType)
	a.AdverbDegree = orEmpty(advDeg)
	if conf.Valid {
		v := int(conf.Int64)
		a.Confidence = &v
	}
	a.Meaning = orEmpty(meaning)
	a.Root = orEmpty(root)
	a.UpdatedAt = parseTime(updated)
	return &a, nil
}
