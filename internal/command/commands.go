/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package command

import (
	"context"
	"fmt"

	"oetagger/internal/domain"
	"oetagger/internal/storage"
)

// AnnotateToken replaces a token's annotation payload. The previous payload
// is captured on first Apply so Revert can restore it.
type AnnotateToken struct {
	Store      *storage.Store
	Annotation domain.Annotation

	prev *domain.Annotation
}

func (c *AnnotateToken) Apply(ctx context.Context) error {
	if c.prev == nil {
		prev, err := c.Store.Annotation(ctx, c.Annotation.TokenID)
		if err != nil {
			return err
		}
		c.prev = prev
	}
	return c.Store.SaveAnnotation(ctx, &c.Annotation)
}

func (c *AnnotateToken) Revert(ctx context.Context) error {
	return c.Store.SaveAnnotation(ctx, c.prev)
}

func (c *AnnotateToken) Description() string {
	return fmt.Sprintf("annotate token %d", c.Annotation.TokenID)
}

// ApplyPreset applies a named preset to a token, capturing the previous
// payload for Revert.
type ApplyPreset struct {
	Store   *storage.Store
	TokenID int64
	Preset  string

	prev *domain.Annotation
}

func (c *ApplyPreset) Apply(ctx context.Context) error {
	if c.prev == nil {
		prev, err := c.Store.Annotation(ctx, c.TokenID)
		if err != nil {
			return err
		}
		c.prev = prev
	}
	return c.Store.ApplyPreset(ctx, c.TokenID, c.Preset)
}

func (c *ApplyPreset) Revert(ctx context.Context) error {
	return c.Store.SaveAnnotation(ctx, c.prev)
}

func (c *ApplyPreset) Description() string {
	return fmt.Sprintf("apply preset %q to token %d", c.Preset, c.TokenID)
}

// EditSentenceText rewrites a sentence's Old English text, reconciling its
// tokens. Revert restores the previous text through the same reconciliation,
// so identities that survived the forward edit survive the revert too;
// annotations on tokens the edit deleted are gone for good, which is why the
// edit surfaces its repair messages.
type EditSentenceText struct {
	Store      *storage.Store
	SentenceID int64
	Text       string

	// Messages collects the note/idiom repair messages from the last Apply.
	Messages []string

	prevText string
	captured bool
}

func (c *EditSentenceText) Apply(ctx context.Context) error {
	if !c.captured {
		sen, err := c.Store.Sentence(ctx, c.SentenceID)
		if err != nil {
			return err
		}
		c.prevText = sen.TextOE
		c.captured = true
	}
	msgs, err := c.Store.UpdateSentenceText(ctx, c.SentenceID, c.Text)
	if err != nil {
		return err
	}
	c.Messages = msgs
	return nil
}

func (c *EditSentenceText) Revert(ctx context.Context) error {
	_, err := c.Store.UpdateSentenceText(ctx, c.SentenceID, c.prevText)
	return err
}

func (c *EditSentenceText) Description() string {
	return fmt.Sprintf("edit sentence %d", c.SentenceID)
}

// SetTranslation edits a sentence's Modern English translation.
type SetTranslation struct {
	Store      *storage.Store
	SentenceID int64
	Text       string

	prev     string
	captured bool
}

func (c *SetTranslation) Apply(ctx context.Context) error {
	if !c.captured {
		sen, err := c.Store.Sentence(ctx, c.SentenceID)
		if err != nil {
			return err
		}
		c.prev = sen.TextModern
		c.captured = true
	}
	return c.Store.SetTranslation(ctx, c.SentenceID, c.Text)
}

func (c *SetTranslation) Revert(ctx context.Context) error {
	return c.Store.SetTranslation(ctx, c.SentenceID, c.prev)
}

func (c *SetTranslation) Description() string {
	return fmt.Sprintf("translate sentence %d", c.SentenceID)
}

// SetLemma edits a token's dictionary headword.
type SetLemma struct {
	Store   *storage.Store
	TokenID int64
	Lemma   string

	prev     string
	captured bool
}

func (c *SetLemma) Apply(ctx context.Context) error {
	if !c.captured {
		tok, err := c.Store.TokenByID(ctx, c.TokenID)
		if err != nil {
			return err
		}
		c.prev = tok.Lemma
		c.captured = true
	}
	return c.Store.SetLemma(ctx, c.TokenID, c.Lemma)
}

func (c *SetLemma) Revert(ctx context.Context) error {
	return c.Store.SetLemma(ctx, c.TokenID, c.prev)
}

func (c *SetLemma) Description() string {
	return fmt.Sprintf("set lemma of token %d", c.TokenID)
}
