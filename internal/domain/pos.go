/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import "fmt"

// POS is a part-of-speech code. Each code selects a field set on Annotation;
// the variants replace what a UI would model as one form subclass per part
// of speech.
type POS string

const (
	POSNoun         POS = "N"
	POSVerb         POS = "V"
	POSAdjective    POS = "A"
	POSArticle      POS = "D"
	POSPronoun      POS = "R"
	POSPreposition  POS = "E"
	POSAdverb       POS = "B"
	POSConjunction  POS = "C"
	POSInterjection POS = "I"
	POSNumber       POS = "L"
)

// Field names used by FieldsFor; they match the Annotation struct fields.
const (
	FieldGender        = "Gender"
	FieldNumber        = "Number"
	FieldCase          = "Case"
	FieldDeclension    = "Declension"
	FieldArticleType   = "ArticleType"
	FieldPronounType   = "PronounType"
	FieldPronounNumber = "PronounNumber"
	FieldVerbClass     = "VerbClass"
	FieldVerbTense     = "VerbTense"
	FieldVerbPerson    = "VerbPerson"
	FieldVerbMood      = "VerbMood"
	FieldVerbAspect    = "VerbAspect"
	FieldVerbForm      = "VerbForm"
	FieldPrepCase      = "PrepCase"
	FieldAdjInflection = "AdjInflection"
	FieldAdjDegree     = "AdjDegree"
	FieldConjType      = "ConjType"
	FieldAdverbDegree  = "AdverbDegree"
)

var posNames = map[POS]string{
	POSNoun:         "Noun",
	POSVerb:         "Verb",
	POSAdjective:    "Adjective",
	POSArticle:      "Article",
	POSPronoun:      "Pronoun",
	POSPreposition:  "Preposition",
	POSAdverb:       "Adverb",
	POSConjunction:  "Conjunction",
	POSInterjection: "Interjection",
	POSNumber:       "Number",
}

var posFields = map[POS][]string{
	POSNoun:         {FieldGender, FieldNumber, FieldCase, FieldDeclension},
	POSVerb:         {FieldVerbClass, FieldVerbTense, FieldVerbPerson, FieldVerbMood, FieldVerbAspect, FieldVerbForm},
	POSAdjective:    {FieldGender, FieldNumber, FieldCase, FieldAdjInflection, FieldAdjDegree},
	POSArticle:      {FieldArticleType, FieldGender, FieldNumber, FieldCase},
	POSPronoun:      {FieldPronounType, FieldPronounNumber, FieldGender, FieldCase},
	POSPreposition:  {FieldPrepCase},
	POSAdverb:       {FieldAdverbDegree},
	POSConjunction:  {FieldConjType},
	POSInterjection: {},
	POSNumber:       {FieldGender, FieldNumber, FieldCase},
}

// Valid reports whether p is a known POS code. The empty code is valid and
// means "not yet tagged".
func (p POS) Valid() bool {
	if p == "" {
		return true
	}
	_, ok := posNames[p]
	return ok
}

// Name returns a display name for the code, or the code itself if unknown.
func (p POS) Name() string {
	if n, ok := posNames[p]; ok {
		return n
	}
	return string(p)
}

// FieldsFor returns the annotation field names that apply to a POS, in
// display order. Unknown or empty codes have no fields.
func FieldsFor(p POS) []string {
	return posFields[p]
}

// allowed value codes per field, mirrored from the store's check constraints
var fieldValues = map[string][]string{
	FieldGender:        {"m", "f", "n"},
	FieldNumber:        {"s", "p"},
	FieldCase:          {"n", "a", "g", "d", "i"},
	FieldArticleType:   {"d", "i", "p", "D"},
	FieldPronounType:   {"p", "rx", "r", "d", "i", "m"},
	FieldPronounNumber: {"s", "d", "pl"},
	FieldVerbClass:     {"a", "w1", "w2", "w3", "pp", "s1", "s2", "s3", "s4", "s5", "s6", "s7"},
	FieldVerbTense:     {"p", "n"},
	FieldVerbPerson:    {"1", "2", "3"},
	FieldVerbMood:      {"i", "s", "imp"},
	FieldVerbAspect:    {"p", "f", "prg", "gn"},
	FieldVerbForm:      {"f", "i", "p", "ii"},
	FieldPrepCase:      {"a", "d", "g", "i"},
	FieldAdjInflection: {"s", "w"},
	FieldAdjDegree:     {"p", "c", "s"},
	FieldConjType:      {"c", "s"},
	FieldAdverbDegree:  {"p", "c", "s"},
}

// Validate checks the annotation's coded fields against their allowed value
// sets and the POS code itself. Declension and free-text fields are not
// constrained.
func (a Annotation) Validate() error {
	if !a.POS.Valid() {
		return fmt.Errorf("invalid part of speech %q", a.POS)
	}
	checks := []struct {
		field string
		value string
	}{
		{FieldGender, a.Gender},
		{FieldNumber, a.Number},
		{FieldCase, a.Case},
		{FieldArticleType, a.ArticleType},
		{FieldPronounType, a.PronounType},
		{FieldPronounNumber, a.PronounNumber},
		{FieldVerbClass, a.VerbClass},
		{FieldVerbTense, a.VerbTense},
		{FieldVerbPerson, a.VerbPerson},
		{FieldVerbMood, a.VerbMood},
		{FieldVerbAspect, a.VerbAspect},
		{FieldVerbForm, a.VerbForm},
		{FieldPrepCase, a.PrepCase},
		{FieldAdjInflection, a.AdjInflection},
		{FieldAdjDegree, a.AdjDegree},
		{FieldConjType, a.ConjType},
		{FieldAdverbDegree, a.AdverbDegree},
	}
	for _, c := range checks {
		if c.value == "" {
			continue
		}
		if !contains(fieldValues[c.field], c.value) {
			return fmt.Errorf("invalid %s value %q", c.field, c.value)
		}
	}
	if a.Confidence != nil && (*a.Confidence < 0 || *a.Confidence > 100) {
		return fmt.Errorf("confidence %d out of range 0-100", *a.Confidence)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
