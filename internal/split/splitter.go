/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package split turns raw Old English text into sentences and sentences into
// surface tokens. Sentence boundaries respect quoted speech and editorial
// [n] markers; the tokenizer keeps hyphenated words whole and drops attached
// punctuation.
package split

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	markerRe     = regexp.MustCompile(`\[\d+\]`)
	leadNumRe    = regexp.MustCompile(`^\d+\]\s*`)
	onlyMarkerRe = regexp.MustCompile(`^\[\d+\]\s*$`)
)

// Sentences splits text into sentence strings. A sentence ends at .!? when
// followed by end of text, an uppercase letter, an opening quote, or a [n]
// marker; lowercase continuation is treated as an abbreviation. Inside a
// quotation no split happens until the quote closes; a closed quote ends the
// sentence when it contained final punctuation and an uppercase letter
// follows. [n] markers are stripped from the output.
func Sentences(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	r := []rune(text)
	var sentences []string
	var cur []rune
	insideQuotes := false
	var quoteChar rune

	flush := func() {
		if s := strings.TrimSpace(string(cur)); s != "" {
			sentences = append(sentences, s)
		}
		cur = cur[:0]
	}

	for i := 0; i < len(r); i++ {
		ch := r[i]
		switch {
		case ch == '"' || ch == '\'':
			if !insideQuotes {
				insideQuotes = true
				quoteChar = ch
				cur = append(cur, ch)
			} else if ch == quoteChar {
				insideQuotes = false
				quoteChar = 0
				cur = append(cur, ch)
				var before rune
				if len(cur) >= 2 {
					before = cur[len(cur)-2]
				}
				j := i + 1
				for j < len(r) && unicode.IsSpace(r[j]) {
					j++
				}
				if j < len(r) && (startsMarker(r, j) ||
					((before == '.' || before == '!' || before == '?') && unicode.IsUpper(r[j]))) {
					flush()
					i = j - 1
				}
			} else {
				// a different quote type inside a quotation is literal text
				cur = append(cur, ch)
			}
		case ch == '.' || ch == '!' || ch == '?':
			cur = append(cur, ch)
			if insideQuotes {
				continue
			}
			j := i + 1
			for j < len(r) && unicode.IsSpace(r[j]) {
				j++
			}
			if j >= len(r) || unicode.IsUpper(r[j]) || r[j] == '"' || r[j] == '\'' || startsMarker(r, j) {
				flush()
				i = j - 1
			}
		case ch == '[' && i+1 < len(r) && unicode.IsDigit(r[i+1]):
			// consume the whole [n] marker when well-formed
			j := i + 1
			for j < len(r) && unicode.IsDigit(r[j]) {
				j++
			}
			if j < len(r) && r[j] == ']' {
				i = j
			} else {
				cur = append(cur, ch)
			}
		default:
			cur = append(cur, ch)
		}
	}
	flush()

	out := make([]string, 0, len(sentences))
	for _, s := range sentences {
		s = markerRe.ReplaceAllString(s, "")
		s = leadNumRe.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		if s == "" || onlyMarkerRe.MatchString(s) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func startsMarker(r []rune, j int) bool {
	return r[j] == '[' && j+1 < len(r) && unicode.IsDigit(r[j+1])
}
