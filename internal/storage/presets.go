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
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"oetagger/internal/domain"
)

//go:embed preset.schema.json
var presetSchema []byte

const presetCols = `id, name, pos, gender, number, "case", declension, article_type,
	pronoun_type, pronoun_number, verb_class, verb_tense, verb_person, verb_mood,
	verb_aspect, verb_form, adj_inflection, adj_degree`

// SavePreset inserts or updates a named preset. Names are unique; saving an
// existing name replaces its field values.
func (s *Store) SavePreset(ctx context.Context, p *domain.AnnotationPreset) error {
	if p == nil {
		return errors.New("preset is required")
	}
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("preset name is required")
	}
	if !p.POS.Valid() {
		return fmt.Errorf("unknown part of speech %q", p.POS)
	}
	ts := now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO annotation_presets(name, pos, gender, number, "case", declension,
			article_type, pronoun_type, pronoun_number, verb_class, verb_tense,
			verb_person, verb_mood, verb_aspect, verb_form, adj_inflection, adj_degree,
			created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
			pos=excluded.pos, gender=excluded.gender, number=excluded.number,
			"case"=excluded."case", declension=excluded.declension,
			article_type=excluded.article_type, pronoun_type=excluded.pronoun_type,
			pronoun_number=excluded.pronoun_number, verb_class=excluded.verb_class,
			verb_tense=excluded.verb_tense, verb_person=excluded.verb_person,
			verb_mood=excluded.verb_mood, verb_aspect=excluded.verb_aspect,
			verb_form=excluded.verb_form, adj_inflection=excluded.adj_inflection,
			adj_degree=excluded.adj_degree, updated_at=excluded.updated_at`,
		p.Name, string(p.POS), nullable(p.Gender), nullable(p.Number), nullable(p.Case),
		nullable(p.Declension), nullable(p.ArticleType), nullable(p.PronounType),
		nullable(p.PronounNumber), nullable(p.VerbClass), nullable(p.VerbTense),
		nullable(p.VerbPerson), nullable(p.VerbMood), nullable(p.VerbAspect),
		nullable(p.VerbForm), nullable(p.AdjInflection), nullable(p.AdjDegree),
		ts, ts)
	if err != nil {
		return fmt.Errorf("save preset: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		p.ID = id
	}
	return nil
}

// Presets lists all presets ordered by name.
func (s *Store) Presets(ctx context.Context) ([]domain.AnnotationPreset, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+presetCols+` FROM annotation_presets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer rows.Close()

	var out []domain.AnnotationPreset
	for rows.Next() {
		p, err := scanPreset(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// DeletePreset removes a preset by name.
func (s *Store) DeletePreset(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM annotation_presets WHERE name=?`, name)
	if err != nil {
		return fmt.Errorf("delete preset: %w", err)
	}
	return requireRow(res)
}

// ApplyPreset copies a named preset's field values onto a token's annotation,
// clearing whatever payload the token carried.
func (s *Store) ApplyPreset(ctx context.Context, tokenID int64, name string) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+presetCols+` FROM annotation_presets WHERE name=?`, name)
	if err != nil {
		return fmt.Errorf("apply preset: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return err
		}
		return fmt.Errorf("apply preset %q: %w", name, ErrNotFound)
	}
	p, err := scanPreset(rows)
	if err != nil {
		return err
	}
	a := domain.Annotation{TokenID: tokenID}
	p.Apply(&a)
	return s.SaveAnnotation(ctx, &a)
}

// ImportPresets validates a preset file against the embedded schema and
// stores every entry, replacing presets with matching names. It returns the
// number of presets imported.
func (s *Store) ImportPresets(ctx context.Context, data []byte) (int, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(presetSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return 0, fmt.Errorf("validate preset file: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return 0, fmt.Errorf("invalid preset file: %s", strings.Join(msgs, "; "))
	}

	var presets []domain.AnnotationPreset
	if err := json.Unmarshal(data, &presets); err != nil {
		return 0, fmt.Errorf("decode preset file: %w", err)
	}
	for i := range presets {
		if err := s.SavePreset(ctx, &presets[i]); err != nil {
			return 0, err
		}
	}
	return len(presets), nil
}

// ExportPresets renders all stored presets as an importable JSON document.
func (s *Store) ExportPresets(ctx context.Context) ([]byte, error) {
	presets, err := s.Presets(ctx)
	if err != nil {
		return nil, err
	}
	if presets == nil {
		presets = []domain.AnnotationPreset{}
	}
	return json.MarshalIndent(presets, "", "  ")
}

func scanPreset(rows rowScanner) (*domain.AnnotationPreset, error) {
	var p domain.AnnotationPreset
	var pos string
	var gender, number, caseV, decl, artType, proType, proNum sql.NullString
	var vClass, vTense, vPerson, vMood, vAspect, vForm, adjInfl, adjDeg sql.NullString
	if err := rows.Scan(&p.ID, &p.Name, &pos, &gender, &number, &caseV, &decl,
		&artType, &proType, &proNum, &vClass, &vTense, &vPerson, &vMood,
		&vAspect, &vForm, &adjInfl, &adjDeg); err != nil {
		return nil, fmt.Errorf("scan preset: %w", err)
	}
	p.POS = domain.POS(pos)
	p.Gender = orEmpty(gender)
	p.Number = orEmpty(number)
	p.Case = orEmpty(caseV)
	p.Declension = orEmpty(decl)
	p.ArticleType = orEmpty(artType)
	p.PronounType = orEmpty(proType)
	p.PronounNumber = orEmpty(proNum)
	p.VerbClass = orEmpty(vClass)
	p.VerbTense = orEmpty(vTense)
	p.VerbPerson = orEmpty(vPerson)
	p.VerbMood = orEmpty(vMood)
	p.VerbAspect = orEmpty(vAspect)
	p.VerbForm = orEmpty(vForm)
	p.AdjInflection = orEmpty(adjInfl)
	p.AdjDegree = orEmpty(adjDeg)
	return &p, nil
}
