/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package autosave periodically flushes dirty sentence texts to the project
// store so an unclean shutdown loses at most one interval of typing.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	applog "oetagger/internal/log"
	"oetagger/internal/storage"
)

// Service collects pending sentence edits and writes them on a timer.
// Marking the same sentence twice before a flush keeps only the latest text.
type Service struct {
	store    *storage.Store
	interval time.Duration

	mu      sync.Mutex
	pending map[int64]string

	started bool
	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New creates a service flushing every interval. Intervals below one second
// are clamped to one second.
func New(store *storage.Store, interval time.Duration) *Service {
	if interval < time.Second {
		interval = time.Second
	}
	return &Service{
		store:    store,
		interval: interval,
		pending:  make(map[int64]string),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the flush loop until Close is called or ctx is canceled.
// Starting twice is a no-op.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()
	go func() {
		defer close(s.done)
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.Flush(ctx)
			case <-s.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// MarkDirty records a sentence's latest unsaved text for the next flush.
func (s *Service) MarkDirty(sentenceID int64, text string) {
	s.mu.Lock()
	s.pending[sentenceID] = text
	s.mu.Unlock()
}

// Flush writes all pending edits now. Failed writes are kept pending so the
// next tick retries them, unless the sentence was marked again meanwhile.
func (s *Service) Flush(ctx context.Context) {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return
	}
	batch := s.pending
	s.pending = make(map[int64]string)
	s.mu.Unlock()

	l := applog.WithComponent("autosave")
	for id, text := range batch {
		if _, err := s.store.UpdateSentenceText(ctx, id, text); err != nil {
			l.Warn("autosave flush failed", slog.Int64("sentence", id), slog.Any("err", err))
			s.mu.Lock()
			if _, again := s.pending[id]; !again {
				s.pending[id] = text
			}
			s.mu.Unlock()
			continue
		}
		l.Debug("sentence autosaved", slog.Int64("sentence", id))
	}
}

// Close stops the loop after flushing whatever is still pending.
func (s *Service) Close() {
	s.once.Do(func() {
		close(s.stop)
		s.mu.Lock()
		started := s.started
		s.mu.Unlock()
		if started {
			<-s.done
		}
		s.Flush(context.Background())
	})
}

// Pending returns the number of unsaved sentences, for status display.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
