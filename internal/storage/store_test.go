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
	"errors"
	"path/filepath"
	"testing"

	"oetagger/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "project.oedb")
	s, _, err := Create(path, "Test Project")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func importOne(t *testing.T, s *Store, text string) domain.Sentence {
	t.Helper()
	p, err := s.FirstProject(context.Background())
	if err != nil {
		t.Fatalf("FirstProject: %v", err)
	}
	sens, err := s.ImportText(context.Background(), p.ID, text)
	if err != nil {
		t.Fatalf("ImportText: %v", err)
	}
	if len(sens) != 1 {
		t.Fatalf("expected 1 sentence, got %d", len(sens))
	}
	return sens[0]
}

func TestCreateAndReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.oedb")
	s, p, err := Create(path, "Beowulf")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Name != "Beowulf" {
		t.Fatalf("unexpected project name %q", p.Name)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s2.Close()
	got, err := s2.FirstProject(context.Background())
	if err != nil {
		t.Fatalf("FirstProject: %v", err)
	}
	if got.ID != p.ID || got.Name != "Beowulf" {
		t.Fatalf("reopened project mismatch: %+v", got)
	}
}

func TestOpenMissingFileFails(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "nope.oedb")); err == nil {
		t.Fatal("expected error opening missing database")
	}
}

func TestImportTextSplitsAndTokenizes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p, err := s.FirstProject(ctx)
	if err != nil {
		t.Fatalf("FirstProject: %v", err)
	}

	sens, err := s.ImportText(ctx, p.ID, "Hēr cōm se cyning. Se cyning wæs gōd.")
	if err != nil {
		t.Fatalf("ImportText: %v", err)
	}
	if len(sens) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(sens))
	}
	if sens[0].DisplayOrder != 0 || sens[1].DisplayOrder != 1 {
		t.Fatalf("unexpected display orders %d, %d", sens[0].DisplayOrder, sens[1].DisplayOrder)
	}

	toks, err := s.Tokens(ctx, sens[0].ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	want := []string{"Hēr", "cōm", "se", "cyning"}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}
	for i, tok := range toks {
		if tok.Surface != want[i] || tok.Position != i {
			t.Fatalf("token %d = %q@%d, want %q@%d", i, tok.Surface, tok.Position, want[i], i)
		}
		// every token starts with an empty annotation row
		a, err := s.Annotation(ctx, tok.ID)
		if err != nil {
			t.Fatalf("Annotation: %v", err)
		}
		if !a.Empty() {
			t.Fatalf("fresh token %d has non-empty annotation", tok.ID)
		}
	}

	// a second import appends after the existing sentences
	more, err := s.ImportText(ctx, p.ID, "Þā fōr hē.")
	if err != nil {
		t.Fatalf("ImportText: %v", err)
	}
	if more[0].DisplayOrder != 2 {
		t.Fatalf("appended sentence order = %d, want 2", more[0].DisplayOrder)
	}
}

func TestUpdateSentenceTextKeepsAnnotationsOnSurvivors(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sen := importOne(t, s, "Hēr cōm se cyning.")

	toks, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	cyning := toks[3]
	ann := &domain.Annotation{TokenID: cyning.ID, POS: domain.POSNoun, Gender: "m", Number: "s", Case: "n"}
	if err := s.SaveAnnotation(ctx, ann); err != nil {
		t.Fatalf("SaveAnnotation: %v", err)
	}

	msgs, err := s.UpdateSentenceText(ctx, sen.ID, "Hēr cōm se gōda cyning.")
	if err != nil {
		t.Fatalf("UpdateSentenceText: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("unexpected messages: %v", msgs)
	}

	got, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	want := []string{"Hēr", "cōm", "se", "gōda", "cyning"}
	if len(got) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(got))
	}
	for i, tok := range got {
		if tok.Surface != want[i] || tok.Position != i {
			t.Fatalf("token %d = %q@%d, want %q@%d", i, tok.Surface, tok.Position, want[i], i)
		}
	}
	// cyning shifted from position 3 to 4 but kept its identity and payload
	if got[4].ID != cyning.ID {
		t.Fatalf("cyning identity changed: %d -> %d", cyning.ID, got[4].ID)
	}
	a, err := s.Annotation(ctx, cyning.ID)
	if err != nil {
		t.Fatalf("Annotation: %v", err)
	}
	if a.POS != domain.POSNoun || a.Gender != "m" {
		t.Fatalf("annotation lost in edit: %+v", a)
	}
	// the inserted word starts unannotated
	fresh, err := s.Annotation(ctx, got[3].ID)
	if err != nil {
		t.Fatalf("Annotation: %v", err)
	}
	if !fresh.Empty() {
		t.Fatalf("inserted token has non-empty annotation: %+v", fresh)
	}

	upd, err := s.Sentence(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Sentence: %v", err)
	}
	if upd.TextOE != "Hēr cōm se gōda cyning." {
		t.Fatalf("sentence text not updated: %q", upd.TextOE)
	}
}

func TestUpdateSentenceTextDeletesOrphanPayloads(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sen := importOne(t, s, "Se cyning wæs gōd.")

	toks, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	was := toks[2] // wæs
	if err := s.SaveAnnotation(ctx, &domain.Annotation{TokenID: was.ID, POS: domain.POSVerb}); err != nil {
		t.Fatalf("SaveAnnotation: %v", err)
	}

	if _, err := s.UpdateSentenceText(ctx, sen.ID, "Se cyning gōd."); err != nil {
		t.Fatalf("UpdateSentenceText: %v", err)
	}

	got, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tokens, got %d", len(got))
	}
	for _, tok := range got {
		if tok.ID == was.ID {
			t.Fatal("deleted token identity still present")
		}
	}
	if _, err := s.Annotation(ctx, was.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for orphan annotation, got %v", err)
	}
}

func TestUpdateSentenceTextRepairsNotes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sen := importOne(t, s, "Se cyning wæs gōd.")

	toks, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	note := &domain.Note{
		SentenceID: sen.ID,
		StartToken: toks[2].ID, // wæs
		EndToken:   toks[2].ID,
		Text:       "unusual spelling",
	}
	if err := s.AddNote(ctx, note); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	// dropping wæs forces the note onto the nearest surviving token
	msgs, err := s.UpdateSentenceText(ctx, sen.ID, "Se cyning gōd.")
	if err != nil {
		t.Fatalf("UpdateSentenceText: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %v", msgs)
	}

	notes, err := s.Notes(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected the note to survive, got %d notes", len(notes))
	}
	got, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	// nearest new position to the deleted anchor's old position 2 is the new
	// position 2, now occupied by gōd
	if notes[0].StartToken != got[2].ID || notes[0].EndToken != got[2].ID {
		t.Fatalf("note anchored to %d..%d, want %d..%d",
			notes[0].StartToken, notes[0].EndToken, got[2].ID, got[2].ID)
	}
}

func TestUpdateSentenceTextReanchoredNoteStaysOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sen := importOne(t, s, "Se cyning rīdeþ.")

	toks, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	note := &domain.Note{
		SentenceID: sen.ID,
		StartToken: toks[1].ID, // cyning
		EndToken:   toks[2].ID, // rīdeþ
		Text:       "verb of motion",
	}
	if err := s.AddNote(ctx, note); err != nil {
		t.Fatalf("AddNote: %v", err)
	}

	// rīdeþ is replaced by a brand-new word; the note's end anchor moves to
	// the created token and the range must still run start before end
	if _, err := s.UpdateSentenceText(ctx, sen.ID, "Se cyning gangeþ."); err != nil {
		t.Fatalf("UpdateSentenceText: %v", err)
	}

	got, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	notes, err := s.Notes(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Notes: %v", err)
	}
	if len(notes) != 1 {
		t.Fatalf("expected the note to survive, got %d notes", len(notes))
	}
	if notes[0].StartToken != toks[1].ID || notes[0].EndToken != got[2].ID {
		t.Fatalf("note anchored to %d..%d, want %d..%d",
			notes[0].StartToken, notes[0].EndToken, toks[1].ID, got[2].ID)
	}
	pos := make(map[int64]int, len(got))
	for _, tok := range got {
		pos[tok.ID] = tok.Position
	}
	if pos[notes[0].StartToken] > pos[notes[0].EndToken] {
		t.Fatalf("note range stored inverted: start@%d end@%d",
			pos[notes[0].StartToken], pos[notes[0].EndToken])
	}
}

func TestUpdateSentenceTextDropsBrokenIdioms(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sen := importOne(t, s, "Hē wearþ tō hearpan.")

	toks, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	idiom := &domain.Idiom{
		SentenceID:   sen.ID,
		StartTokenID: toks[1].ID, // wearþ
		EndTokenID:   toks[3].ID, // hearpan
	}
	if err := s.AddIdiom(ctx, idiom); err != nil {
		t.Fatalf("AddIdiom: %v", err)
	}

	// removing tō breaks the span
	msgs, err := s.UpdateSentenceText(ctx, sen.ID, "Hē wearþ hearpan.")
	if err != nil {
		t.Fatalf("UpdateSentenceText: %v", err)
	}
	found := false
	for _, m := range msgs {
		if m == "Idiom annotation deleted because one of its tokens was removed." {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing idiom deletion message in %v", msgs)
	}
	idioms, err := s.Idioms(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Idioms: %v", err)
	}
	if len(idioms) != 0 {
		t.Fatalf("expected idiom to be deleted, got %d", len(idioms))
	}
}

func TestUpdateSentenceTextNoOpKeepsEverything(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sen := importOne(t, s, "Se cyning wæs gōd.")

	before, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	idiom := &domain.Idiom{SentenceID: sen.ID, StartTokenID: before[0].ID, EndTokenID: before[1].ID}
	if err := s.AddIdiom(ctx, idiom); err != nil {
		t.Fatalf("AddIdiom: %v", err)
	}

	msgs, err := s.UpdateSentenceText(ctx, sen.ID, sen.TextOE)
	if err != nil {
		t.Fatalf("UpdateSentenceText: %v", err)
	}
	if len(msgs) != 0 {
		t.Fatalf("unexpected messages: %v", msgs)
	}
	after, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	for i := range before {
		if after[i].ID != before[i].ID {
			t.Fatalf("token %d identity changed in no-op edit", i)
		}
	}
	idioms, err := s.Idioms(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Idioms: %v", err)
	}
	if len(idioms) != 1 {
		t.Fatalf("idiom lost in no-op edit")
	}
}

func TestSaveAnnotationRejectsInvalidCodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sen := importOne(t, s, "Se cyning.")
	toks, err := s.Tokens(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Tokens: %v", err)
	}
	err = s.SaveAnnotation(ctx, &domain.Annotation{TokenID: toks[0].ID, POS: "X"})
	if err == nil {
		t.Fatal("expected invalid POS to be rejected")
	}
}

func TestSetTranslation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	sen := importOne(t, s, "Se cyning wæs gōd.")
	if err := s.SetTranslation(ctx, sen.ID, "The king was good."); err != nil {
		t.Fatalf("SetTranslation: %v", err)
	}
	got, err := s.Sentence(ctx, sen.ID)
	if err != nil {
		t.Fatalf("Sentence: %v", err)
	}
	if got.TextModern != "The king was good." {
		t.Fatalf("translation = %q", got.TextModern)
	}
}
