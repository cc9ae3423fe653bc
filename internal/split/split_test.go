/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package split

import (
	"reflect"
	"testing"
)

func TestTokenizeBasicSentence(t *testing.T) {
	got := Tokenize("Se cyning wæs gōd.")
	want := []string{"Se", "cyning", "wæs", "gōd"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeDropsAttachedPunctuation(t *testing.T) {
	got := Tokenize("Hē cwæð, 'Ne mæg ic.'")
	want := []string{"Hē", "cwæð", "Ne", "mæg", "ic"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeKeepsHyphenatedWordsWhole(t *testing.T) {
	got := Tokenize("middan-geard wæs micel")
	want := []string{"middan-geard", "wæs", "micel"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeSkipsStandalonePunctuation(t *testing.T) {
	got := Tokenize("wæs — gōd ; swīðe")
	want := []string{"wæs", "gōd", "swīðe"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeTrimsTrailingSentencePunctuation(t *testing.T) {
	got := Tokenize("Hwæt sceal ic swā?")
	want := []string{"Hwæt", "sceal", "ic", "swā"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Tokenize = %v, want %v", got, want)
	}
}

func TestTokenizeEmpty(t *testing.T) {
	if got := Tokenize("   "); len(got) != 0 {
		t.Fatalf("Tokenize whitespace = %v, want empty", got)
	}
}

func TestSentencesBasicSplit(t *testing.T) {
	got := Sentences("Se cyning wæs gōd. Þā cōm se here.")
	want := []string{"Se cyning wæs gōd.", "Þā cōm se here."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sentences = %v, want %v", got, want)
	}
}

func TestSentencesLowercaseContinuationIsAbbreviation(t *testing.T) {
	got := Sentences("Se cyning st. ælfred wæs gōd.")
	want := []string{"Se cyning st. ælfred wæs gōd."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sentences = %v, want %v", got, want)
	}
}

func TestSentencesQuoteAware(t *testing.T) {
	got := Sentences("Hē cwæð: 'Ne mæg ic faran.' Þā ēode hē.")
	want := []string{"Hē cwæð: 'Ne mæg ic faran.'", "Þā ēode hē."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sentences = %v, want %v", got, want)
	}
}

func TestSentencesNoSplitInsideQuote(t *testing.T) {
	got := Sentences("Hē cwæð: 'Ne mæg ic. ne wille ic' and swā forð.")
	if len(got) != 1 {
		t.Fatalf("expected a single sentence, got %v", got)
	}
}

func TestSentencesStripsMarkers(t *testing.T) {
	got := Sentences("[1] Se cyning wæs gōd. [2] Þā cōm se here.")
	want := []string{"Se cyning wæs gōd.", "Þā cōm se here."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Sentences = %v, want %v", got, want)
	}
}

func TestSentencesEmptyInput(t *testing.T) {
	if got := Sentences(" \n\t "); got != nil {
		t.Fatalf("Sentences = %v, want nil", got)
	}
}

func TestNormalizeComposesOldEnglishCharacters(t *testing.T) {
	// "a" + combining macron must compose to the precomposed ā.
	got := Normalize("  wās  ")
	if got != "wās" {
		t.Fatalf("Normalize = %q, want %q", got, "wās")
	}
}
