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
	"strings"
	"testing"

	"oetagger/internal/domain"
)

func TestSaveAndApplyPreset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sen := importOne(t, s, "Se cyning wæs gōd.")
	toks, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}

	p := &domain.AnnotationPreset{
		Name: "masc nom sg", POS: domain.POSNoun,
		Gender: "m", Number: "s", Case: "n",
	}
	if err := s.SavePreset(ctx, p); err != nil {
		t.Fatalf("SavePreset: %v", err)
	}
	if err := s.ApplyPreset(ctx, toks[1].ID, "masc nom sg"); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	a, err := s.Annotation(ctx, toks[1].ID)
	if err != nil {
		t.Fatalf("Annotation: %v", err)
	}
	if a.POS != domain.POSNoun || a.Gender != "m" || a.Number != "s" || a.Case != "n" {
		t.Fatalf("preset not applied: %+v", a)
	}

	// saving the same name again replaces the values
	p2 := &domain.AnnotationPreset{Name: "masc nom sg", POS: domain.POSNoun, Gender: "f"}
	if err := s.SavePreset(ctx, p2); err != nil {
		t.Fatalf("SavePreset update: %v", err)
	}
	all, err := s.Presets(ctx)
	if err != nil {
		t.Fatalf("Presets: %v", err)
	}
	if len(all) != 1 || all[0].Gender != "f" {
		t.Fatalf("preset not replaced: %+v", all)
	}
}

func TestApplyUnknownPresetFails(t *testing.T) {
	s := newTestStore(t)
	sen := importOne(t, s, "Se cyning.")
	toks, err := s.Tokens(context.Background(), sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if err := s.ApplyPreset(context.Background(), toks[0].ID, "missing"); err == nil {
		t.Fatal("expected unknown preset to fail")
	}
}

func TestImportExportPresets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	data := []byte(`[
		{"name": "strong verb past", "pos": "V", "verbClass": "s1", "verbTense": "p"},
		{"name": "weak adj", "pos": "A", "adjectiveInflection": "w"}
	]`)
	n, err := s.ImportPresets(ctx, data)
	if err != nil {
		t.Fatalf("ImportPresets: %v", err)
	}
	if n != 2 {
		t.Fatalf("imported %d presets, want 2", n)
	}

	out, err := s.ExportPresets(ctx)
	if err != nil {
		t.Fatalf("ExportPresets: %v", err)
	}
	for _, name := range []string{"strong verb past", "weak adj"} {
		if !strings.Contains(string(out), name) {
			t.Fatalf("export missing %q: %s", name, out)
		}
	}

	// the export is itself importable
	if _, err := s.ImportPresets(ctx, out); err != nil {
		t.Fatalf("re-import of export failed: %v", err)
	}
}

func TestImportPresetsRejectsInvalidFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cases := []string{
		`{"name": "not an array", "pos": "N"}`,
		`[{"pos": "N"}]`,
		`[{"name": "bad pos", "pos": "Z"}]`,
		`[{"name": "stray field", "pos": "N", "bogus": true}]`,
	}
	for _, c := range cases {
		if _, err := s.ImportPresets(ctx, []byte(c)); err == nil {
			t.Fatalf("expected rejection of %s", c)
		}
	}
}
