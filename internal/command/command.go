/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package command provides undo/redo for store mutations. Every edit goes
// through a Command that knows how to apply itself and how to put the
// previous state back.
package command

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	applog "oetagger/internal/log"
)

// Command is one reversible mutation. Apply performs it; Revert restores the
// state from before Apply. Description is a short human-readable label for
// undo/redo UI and logs.
type Command interface {
	Apply(ctx context.Context) error
	Revert(ctx context.Context) error
	Description() string
}

// ErrBusy is returned when Do/Undo/Redo is called while another command is
// still executing, which would corrupt the stacks.
var ErrBusy = errors.New("command manager is busy")

// Config controls the manager's depth cap.
type Config struct {
	// MaxDepth limits the undo stack; the oldest entry is dropped when
	// exceeded. Zero means the default of 50.
	MaxDepth int
}

// Manager keeps bounded undo and redo stacks of executed commands. It is
// safe for concurrent use; execution itself is serialized.
type Manager struct {
	cfg Config

	mu   sync.Mutex
	busy bool
	undo []Command
	redo []Command
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 50
	}
	return &Manager{cfg: cfg}
}

// Do executes the command and pushes it onto the undo stack. A successful
// execution clears the redo stack; a failed one leaves both stacks untouched.
func (m *Manager) Do(ctx context.Context, c Command) error {
	if err := m.acquire(); err != nil {
		return err
	}
	defer m.release()

	if err := c.Apply(ctx); err != nil {
		applog.L().Warn("command failed", slog.String("cmd", c.Description()), slog.Any("err", err))
		return err
	}
	m.mu.Lock()
	m.undo = append(m.undo, c)
	if len(m.undo) > m.cfg.MaxDepth {
		m.undo = m.undo[1:]
	}
	m.redo = nil
	m.mu.Unlock()
	applog.L().Debug("command applied", slog.String("cmd", c.Description()))
	return nil
}

// Undo reverts the most recent command and moves it to the redo stack. If the
// revert fails the command is pushed back so the stack stays consistent with
// the store.
func (m *Manager) Undo(ctx context.Context) (string, error) {
	if err := m.acquire(); err != nil {
		return "", err
	}
	defer m.release()

	m.mu.Lock()
	n := len(m.undo)
	if n == 0 {
		m.mu.Unlock()
		return "", nil
	}
	c := m.undo[n-1]
	m.undo = m.undo[:n-1]
	m.mu.Unlock()

	if err := c.Revert(ctx); err != nil {
		m.mu.Lock()
		m.undo = append(m.undo, c)
		m.mu.Unlock()
		applog.L().Warn("undo failed", slog.String("cmd", c.Description()), slog.Any("err", err))
		return "", err
	}
	m.mu.Lock()
	m.redo = append(m.redo, c)
	m.mu.Unlock()
	return c.Description(), nil
}

// Redo re-applies the most recently undone command. A failed re-apply pushes
// the command back onto the redo stack.
func (m *Manager) Redo(ctx context.Context) (string, error) {
	if err := m.acquire(); err != nil {
		return "", err
	}
	defer m.release()

	m.mu.Lock()
	n := len(m.redo)
	if n == 0 {
		m.mu.Unlock()
		return "", nil
	}
	c := m.redo[n-1]
	m.redo = m.redo[:n-1]
	m.mu.Unlock()

	if err := c.Apply(ctx); err != nil {
		m.mu.Lock()
		m.redo = append(m.redo, c)
		m.mu.Unlock()
		applog.L().Warn("redo failed", slog.String("cmd", c.Description()), slog.Any("err", err))
		return "", err
	}
	m.mu.Lock()
	m.undo = append(m.undo, c)
	m.mu.Unlock()
	return c.Description(), nil
}

// CanUndo reports whether an undoable command is available, with its label.
func (m *Manager) CanUndo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return "", false
	}
	return m.undo[len(m.undo)-1].Description(), true
}

// CanRedo reports whether a redoable command is available, with its label.
func (m *Manager) CanRedo() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return "", false
	}
	return m.redo[len(m.redo)-1].Description(), true
}

// Clear drops both stacks, e.g. after closing a project.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo, m.redo = nil, nil
}

// Depths returns the current stack sizes.
func (m *Manager) Depths() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

func (m *Manager) acquire() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return ErrBusy
	}
	m.busy = true
	return nil
}

func (m *Manager) release() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}
