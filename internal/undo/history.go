/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps the board's reversible action history: a past stack
// and a future stack of patch lists. Pushing a new action always discards
// the future so there are no branching timelines.
package undo

import (
	"sync"

	"beadboard/internal/domain"
)

// History provides the undo/redo stacks for one board.
// It is safe for concurrent use.
type History struct {
	mu     sync.Mutex
	past   []domain.HistoryAction
	future []domain.HistoryAction
}

func NewHistory() *History {
	return &History{}
}

// Push records a completed action. Actions with zero patches are dropped;
// any recorded action invalidates the redo stack. Pushed actions must never
// be mutated afterwards by the caller.
func (h *History) Push(a domain.HistoryAction) {
	if len(a.Patches) == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.past = append(h.past, a)
	h.future = nil
}

// Undo moves the most recent past action to the front of the future stack
// and returns it. ok is false on an empty past stack.
func (h *History) Undo() (domain.HistoryAction, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.past)
	if n == 0 {
		return domain.HistoryAction{}, false
	}
	a := h.past[n-1]
	h.past = h.past[:n-1]
	h.future = append([]domain.HistoryAction{a}, h.future...)
	return a, true
}

// Redo moves the first future action back onto the past stack and returns
// it. ok is false on an empty future stack.
func (h *History) Redo() (domain.HistoryAction, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.future) == 0 {
		return domain.HistoryAction{}, false
	}
	a := h.future[0]
	h.future = h.future[1:]
	h.past = append(h.past, a)
	return a, true
}

// CanUndo reports whether the past stack is nonempty.
func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

// CanRedo reports whether the future stack is nonempty.
func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future) > 0
}

// Reset discards both stacks. Called whenever the grid identity changes
// (new, loaded, or resized board); history never survives a design switch.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.past = nil
	h.future = nil
}

// Depths returns the stack sizes for diagnostics.
func (h *History) Depths() (past, future int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past), len(h.future)
}
