/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package resync reconciles a sentence's existing token sequence against the
// surfaces produced by re-tokenizing edited sentence text.
//
// The matcher decides, for every new position, whether an existing token (and
// with it any attached annotation) is carried forward under its old identity
// or whether a fresh token must be created, and which old tokens are orphaned.
// It is a pure computation: the caller applies the result to storage.
//
// Matching is a two-pass greedy policy. Pass 1 keeps a token that sits at the
// same index with the same surface; pass 2 hands each remaining position the
// first still-unmatched old token with an equal surface, in original order.
// Positional matching first keeps a save-without-edit a strict no-op. The
// first-available rule for repeated surfaces is order-stable only while the
// surrounding structure does not shift: inserting or deleting a token before
// a run of repeated words reassigns annotations within that run. Callers
// depend on that exact behavior, so it must not be changed here.
package resync

// TokenSlot is one position in a sentence's token sequence. ID is the stable
// identity of a pre-existing token; Surface its string content at that
// position.
type TokenSlot struct {
	ID      int64
	Surface string
}

// Match is the outcome of one resynchronization. Every new position appears
// exactly once in either Kept or Created, and every old identity appears
// exactly once as a Kept value or in Deleted.
type Match struct {
	// Kept maps a new position to the old identity reused there. The
	// payload attached to that identity survives unchanged.
	Kept map[int]int64
	// Created lists new positions that need a fresh token, ascending.
	Created []int
	// Deleted lists orphaned old identities in their original order. The
	// caller discards their payload along with the token.
	Deleted []int64
}

// Resynchronize matches old tokens, ordered by position, against the surface
// strings of the re-tokenized sentence. Both sequences may be empty and
// surfaces may repeat. old must be sorted by position with no gaps; list
// order is trusted, not validated.
func Resynchronize(old []TokenSlot, surfaces []string) Match {
	m := Match{Kept: make(map[int]int64, len(surfaces))}
	matched := make([]bool, len(old))

	// Pass 1: exact position, exact surface.
	for i, s := range surfaces {
		if i < len(old) && old[i].Surface == s {
			m.Kept[i] = old[i].ID
			matched[i] = true
		}
	}

	// Pass 2: content match from the pool of leftovers, original order
	// preserved, first equal surface wins and is consumed.
	pool := make([]int, 0, len(old))
	for i := range old {
		if !matched[i] {
			pool = append(pool, i)
		}
	}
	for i, s := range surfaces {
		if _, ok := m.Kept[i]; ok {
			continue
		}
		hit := -1
		for pi, oi := range pool {
			if old[oi].Surface == s {
				hit = pi
				break
			}
		}
		if hit < 0 {
			m.Created = append(m.Created, i)
			continue
		}
		m.Kept[i] = old[pool[hit]].ID
		pool = append(pool[:hit], pool[hit+1:]...)
	}

	for _, oi := range pool {
		m.Deleted = append(m.Deleted, old[oi].ID)
	}
	return m
}

// KeptIdentities returns the set of old identities carried forward, keyed by
// identity for membership checks by callers repairing token-range references.
func (m Match) KeptIdentities() map[int64]int {
	ids := make(map[int64]int, len(m.Kept))
	for pos, id := range m.Kept {
		ids[id] = pos
	}
	return ids
}
