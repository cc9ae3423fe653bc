/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package split

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// OEChars are the characters beyond basic Latin that may appear in the
// surface form of an Old English token.
const OEChars = "þÞðÐæǣÆǢȝġĠċĊāĀȳȲēĒīĪūŪōŌū"

var (
	// wordPat matches a run of word characters. \p{L}\p{N}_ covers the Old
	// English letter set as well; OEChars stays exported for callers that
	// build input validation on it.
	wordPat = `[\p{L}\p{N}_]+`
	// hyphenPat matches hyphenated words (hyphen, en dash or em dash
	// between word characters); these stay one token.
	hyphenPat = `[\p{L}\p{N}_]+[-–—][\p{L}\p{N}_]+`
	punctPat  = `[.,;:!?\-—"'.]+`

	hyphenRe    = regexp.MustCompile(hyphenPat)
	wordPunctRe = regexp.MustCompile(wordPat + `|` + punctPat)
	punctQuote  = regexp.MustCompile(`^[.!?]+["']+$`)
	wsRe        = regexp.MustCompile(`\s+`)
)

// attachedPunct is punctuation dropped when it rides on a word; sentence
// punctuation (.!?) is kept as a token mid-sentence and trimmed at the end.
var attachedPunct = map[string]bool{
	",": true, ";": true, ":": true, "-": true, "—": true, `"`: true, "'": true,
}

var standalonePunct = map[string]bool{
	",": true, ";": true, ":": true, "!": true, "?": true,
	"-": true, "—": true, `"`: true, "'": true, ".": true,
}

// Normalize prepares raw input text for splitting and tokenization: trims
// surrounding whitespace and applies Unicode NFC so that combining-mark
// spellings of Old English characters compare equal to their precomposed
// forms.
func Normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Tokenize splits sentence text into surface tokens. Words are separated on
// whitespace; hyphenated words stay whole; attached punctuation such as
// commas and quotes is dropped; trailing sentence punctuation is left in the
// sentence text but not tokenized.
func Tokenize(sentenceText string) []string {
	var tokens []string
	for _, word := range wsRe.Split(strings.TrimSpace(sentenceText), -1) {
		if word == "" {
			continue
		}
		if standalonePunct[word] || punctQuote.MatchString(word) {
			continue
		}

		hyphenated := hyphenRe.FindAllStringIndex(word, -1)
		if len(hyphenated) == 0 {
			tokens = appendParts(tokens, word)
			continue
		}
		last := 0
		for _, span := range hyphenated {
			tokens = appendParts(tokens, word[last:span[0]])
			tokens = append(tokens, word[span[0]:span[1]])
			last = span[1]
		}
		tokens = appendParts(tokens, word[last:])
	}

	// Closing punctuation stays in the sentence text, not the token list.
	for len(tokens) > 0 && isClosing(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// appendParts tokenizes a word fragment into word and punctuation runs,
// dropping attached punctuation and punctuation-quote combinations.
func appendParts(tokens []string, fragment string) []string {
	if fragment == "" {
		return tokens
	}
	for _, part := range wordPunctRe.FindAllString(fragment, -1) {
		if attachedPunct[part] || punctQuote.MatchString(part) {
			continue
		}
		tokens = append(tokens, part)
	}
	return tokens
}

func isClosing(tok string) bool {
	return tok == "." || tok == "!" || tok == "?"
}
