/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package domain defines the core data model for the annotation toolkit:
// projects holding ordered sentences, sentences holding ordered tokens, and
// per-token morphological annotations, plus sentence notes, idioms spanning
// token ranges, and reusable annotation presets.
package domain

import "time"

// Project is the top-level container for an annotated text.
type Project struct {
	ID        int64     `json:"-"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Sentence is one sentence of the source text together with its working
// translation. Tokens, notes and idioms reference it by ID.
type Sentence struct {
	ID           int64     `json:"-"`
	ProjectID    int64     `json:"-"`
	DisplayOrder int       `json:"displayOrder"`
	TextOE       string    `json:"textOE"`
	TextModern   string    `json:"textModern,omitempty"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// Token is a single surface-form unit of a sentence. Position is the 0-based
// index within the sentence; positions are unique and contiguous per
// sentence. ID is the stable identity annotations attach to across edits.
type Token struct {
	ID         int64     `json:"-"`
	SentenceID int64     `json:"-"`
	Position   int       `json:"position"`
	Surface    string    `json:"surface"`
	Lemma      string    `json:"lemma,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// Annotation is the morphological payload attached to one token identity.
// Which of the optional fields are meaningful depends on POS; see FieldsFor.
// An empty string means "not set". Confidence distinguishes unset (nil)
// from an explicit 0.
type Annotation struct {
	TokenID       int64  `json:"-"`
	POS           POS    `json:"pos,omitempty"`
	Gender        string `json:"gender,omitempty"`
	Number        string `json:"number,omitempty"`
	Case          string `json:"case,omitempty"`
	Declension    string `json:"declension,omitempty"`
	ArticleType   string `json:"articleType,omitempty"`
	PronounType   string `json:"pronounType,omitempty"`
	PronounNumber string `json:"pronounNumber,omitempty"`
	VerbClass     string `json:"verbClass,omitempty"`
	VerbTense     string `json:"verbTense,omitempty"`
	VerbPerson    string `json:"verbPerson,omitempty"`
	VerbMood      string `json:"verbMood,omitempty"`
	VerbAspect    string `json:"verbAspect,omitempty"`
	VerbForm      string `json:"verbForm,omitempty"`
	PrepCase      string `json:"prepCase,omitempty"`
	AdjInflection string `json:"adjectiveInflection,omitempty"`
	AdjDegree     string `json:"adjectiveDegree,omitempty"`
	ConjType      string `json:"conjunctionType,omitempty"`
	AdverbDegree  string `json:"adverbDegree,omitempty"`
	Confidence    *int   `json:"confidence,omitempty"`
	Meaning       string `json:"modernEnglishMeaning,omitempty"`
	Root          string `json:"root,omitempty"`

	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// Empty reports whether the annotation carries no payload at all.
func (a Annotation) Empty() bool {
	return a.POS == "" && a.Gender == "" && a.Number == "" && a.Case == "" &&
		a.Declension == "" && a.ArticleType == "" && a.PronounType == "" &&
		a.PronounNumber == "" && a.VerbClass == "" && a.VerbTense == "" &&
		a.VerbPerson == "" && a.VerbMood == "" && a.VerbAspect == "" &&
		a.VerbForm == "" && a.PrepCase == "" && a.AdjInflection == "" &&
		a.AdjDegree == "" && a.ConjType == "" && a.AdverbDegree == "" &&
		a.Confidence == nil && a.Meaning == "" && a.Root == ""
}

// Note is a free-form comment anchored to a token range of one sentence.
// StartToken/EndToken are token identities; a zero value means unanchored.
type Note struct {
	ID         int64     `json:"-"`
	SentenceID int64     `json:"-"`
	StartToken int64     `json:"-"`
	EndToken   int64     `json:"-"`
	Text       string    `json:"text"`
	Type       string    `json:"type,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt,omitempty"`
}

// Idiom marks a multi-token expression annotated as a unit. Its span is the
// inclusive token range between two token identities of the same sentence.
type Idiom struct {
	ID           int64     `json:"-"`
	SentenceID   int64     `json:"-"`
	StartTokenID int64     `json:"-"`
	EndTokenID   int64     `json:"-"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// AnnotationPreset is a reusable, named bundle of annotation field values
// for one part of speech, applied to tokens as a shortcut.
type AnnotationPreset struct {
	ID            int64  `json:"-"`
	Name          string `json:"name"`
	POS           POS    `json:"pos"`
	Gender        string `json:"gender,omitempty"`
	Number        string `json:"number,omitempty"`
	Case          string `json:"case,omitempty"`
	Declension    string `json:"declension,omitempty"`
	ArticleType   string `json:"articleType,omitempty"`
	PronounType   string `json:"pronounType,omitempty"`
	PronounNumber string `json:"pronounNumber,omitempty"`
	VerbClass     string `json:"verbClass,omitempty"`
	VerbTense     string `json:"verbTense,omitempty"`
	VerbPerson    string `json:"verbPerson,omitempty"`
	VerbMood      string `json:"verbMood,omitempty"`
	VerbAspect    string `json:"verbAspect,omitempty"`
	VerbForm      string `json:"verbForm,omitempty"`
	AdjInflection string `json:"adjectiveInflection,omitempty"`
	AdjDegree     string `json:"adjectiveDegree,omitempty"`
}

// Apply copies the preset's field values onto an annotation, including the
// part of speech.
func (p AnnotationPreset) Apply(a *Annotation) {
	a.POS = p.POS
	a.Gender = p.Gender
	a.Number = p.Number
	a.Case = p.Case
	a.Declension = p.Declension
	a.ArticleType = p.ArticleType
	a.PronounType = p.PronounType
	a.PronounNumber = p.PronounNumber
	a.VerbClass = p.VerbClass
	a.VerbTense = p.VerbTense
	a.VerbPerson = p.VerbPerson
	a.VerbMood = p.VerbMood
	a.VerbAspect = p.VerbAspect
	a.VerbForm = p.VerbForm
	a.AdjInflection = p.AdjInflection
	a.AdjDegree = p.AdjDegree
}
