/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor turns discrete edit input (a cell index plus the active
// tool) into coalesced reversible actions against the board grid. It owns
// the grid store and the undo/redo history; persistence observes it through
// the change callback and Grid snapshots.
package editor

import (
	"sync"

	"beadboard/internal/domain"
	"beadboard/internal/stability"
	"beadboard/internal/undo"
)

// Tool selects what a touch does to a cell.
type Tool int

const (
	// ToolPaint writes the active color id.
	ToolPaint Tool = iota
	// ToolErase writes the empty value.
	ToolErase
	// ToolPan is a pure viewport gesture; it never starts a stroke and
	// never touches cells or history.
	ToolPan
)

// Editor is the stroke and history engine for one board.
// All operations are synchronous and run to completion; it is safe for
// concurrent use, though callers are expected to drive it from one goroutine
// plus the autosave timer.
type Editor struct {
	mu       sync.Mutex
	grid     domain.Grid
	hist     *undo.History
	tool     Tool
	color    byte
	inStroke bool
	moved    bool
	touched  map[int]struct{}
	patches  []domain.CellPatch
	gen      uint64
	onChange func()
}

// New returns an editor over a blank grid of the given size.
func New(width, height int) (*Editor, error) {
	g, err := domain.NewGrid(width, height)
	if err != nil {
		return nil, err
	}
	return &Editor{grid: g, hist: undo.NewHistory(), tool: ToolPaint, color: 1}, nil
}

// SetOnChange installs a callback invoked after every grid mutation
// (stroke writes, clear, undo, redo, and identity changes). The callback
// runs outside the editor lock; it may call back into the editor.
func (e *Editor) SetOnChange(fn func()) {
	e.mu.Lock()
	e.onChange = fn
	e.mu.Unlock()
}

func (e *Editor) notify(fn func()) {
	if fn != nil {
		fn()
	}
}

// SetTool selects the active tool. Switching tools mid-stroke is not a
// supported gesture; the current stroke keeps its target value rule.
func (e *Editor) SetTool(t Tool) {
	e.mu.Lock()
	e.tool = t
	e.mu.Unlock()
}

// Tool returns the active tool.
func (e *Editor) Tool() Tool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tool
}

// SetActiveColor sets the palette color id painted by ToolPaint. The empty
// value is not a paintable color.
func (e *Editor) SetActiveColor(c byte) {
	e.mu.Lock()
	if c != domain.EmptyCell {
		e.color = c
	}
	e.mu.Unlock()
}

// ActiveColor returns the current paint color id.
func (e *Editor) ActiveColor() byte {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.color
}

// target resolves the tool to the value a touched cell should take.
// ok is false for tools that never touch cells.
func (e *Editor) target() (byte, bool) {
	switch e.tool {
	case ToolPaint:
		return e.color, true
	case ToolErase:
		return domain.EmptyCell, true
	default:
		return 0, false
	}
}

// StartStroke begins a new stroke at the given cell. Any in-progress patch
// buffer is discarded first. The pan tool is a no-op here.
func (e *Editor) StartStroke(index int) {
	e.mu.Lock()
	e.inStroke = false
	e.moved = false
	e.touched = nil
	e.patches = nil
	target, ok := e.target()
	if !ok {
		e.mu.Unlock()
		return
	}
	e.inStroke = true
	e.touched = make(map[int]struct{})
	changed := e.writeCellLocked(index, target)
	fn := e.onChange
	e.mu.Unlock()
	if changed {
		e.notify(fn)
	}
}

// ContinueStroke extends the active stroke to another cell. Out-of-bounds
// indices and cells already touched this stroke are silently ignored.
func (e *Editor) ContinueStroke(index int) {
	e.mu.Lock()
	if !e.inStroke {
		e.mu.Unlock()
		return
	}
	e.moved = true
	target, ok := e.target()
	if !ok {
		e.mu.Unlock()
		return
	}
	changed := e.writeCellLocked(index, target)
	fn := e.onChange
	e.mu.Unlock()
	if changed {
		e.notify(fn)
	}
}

// writeCellLocked applies the stroke write rule: in bounds, first write per
// cell wins, and only differing values produce a patch.
func (e *Editor) writeCellLocked(index int, target byte) bool {
	if !e.grid.InBounds(index) {
		return false
	}
	if _, seen := e.touched[index]; seen {
		return false
	}
	e.touched[index] = struct{}{}
	prev := e.grid.Cells[index]
	if prev == target {
		return false
	}
	e.grid.Cells[index] = target
	e.patches = append(e.patches, domain.CellPatch{Index: index, Prev: prev, Next: target})
	return true
}

// EndStroke completes the active stroke. A stroke that produced patches is
// pushed as one history action: a tap when the pointer never moved, a
// stroke otherwise. A pure no-op drag pushes nothing. The stroke buffer is
// always cleared.
func (e *Editor) EndStroke() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.inStroke {
		return
	}
	if len(e.patches) > 0 {
		kind := domain.ActionStroke
		if !e.moved {
			kind = domain.ActionTap
		}
		e.hist.Push(domain.HistoryAction{Kind: kind, Patches: e.patches})
	}
	e.inStroke = false
	e.moved = false
	e.touched = nil
	e.patches = nil
}

// ClearBoard erases every bead as a single undoable action. An already
// empty board stays untouched and records nothing.
func (e *Editor) ClearBoard() {
	e.mu.Lock()
	var patches []domain.CellPatch
	for i, v := range e.grid.Cells {
		if v != domain.EmptyCell {
			patches = append(patches, domain.CellPatch{Index: i, Prev: v, Next: domain.EmptyCell})
			e.grid.Cells[i] = domain.EmptyCell
		}
	}
	if len(patches) > 0 {
		e.hist.Push(domain.HistoryAction{Kind: domain.ActionClear, Patches: patches})
	}
	fn := e.onChange
	e.mu.Unlock()
	if len(patches) > 0 {
		e.notify(fn)
	}
}

// Undo reverts the most recent action, patch by patch in reverse order.
// An empty past stack is a defined no-op.
func (e *Editor) Undo() {
	e.mu.Lock()
	a, ok := e.hist.Undo()
	if ok {
		for i := len(a.Patches) - 1; i >= 0; i-- {
			p := a.Patches[i]
			e.grid.Cells[p.Index] = p.Prev
		}
	}
	fn := e.onChange
	e.mu.Unlock()
	if ok {
		e.notify(fn)
	}
}

// Redo re-applies the next future action patch by patch in touch order.
// An empty future stack is a defined no-op.
func (e *Editor) Redo() {
	e.mu.Lock()
	a, ok := e.hist.Redo()
	if ok {
		for _, p := range a.Patches {
			e.grid.Cells[p.Index] = p.Next
		}
	}
	fn := e.onChange
	e.mu.Unlock()
	if ok {
		e.notify(fn)
	}
}

// CanUndo reports undo availability.
func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }

// CanRedo reports redo availability.
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// Grid returns an immutable snapshot of the board.
func (e *Editor) Grid() domain.Grid {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.grid.Clone()
}

// Generation identifies the grid's identity; it changes whenever the board
// is replaced wholesale (new, loaded, resized), never on cell edits.
func (e *Editor) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// Reset replaces the board with a blank grid of the given size. History is
// discarded; grid identity changes.
func (e *Editor) Reset(width, height int) error {
	g, err := domain.NewGrid(width, height)
	if err != nil {
		return err
	}
	e.replace(g)
	return nil
}

// Load replaces the board with the given grid snapshot. History is
// discarded; grid identity changes.
func (e *Editor) Load(g domain.Grid) {
	e.replace(g.Clone())
}

func (e *Editor) replace(g domain.Grid) {
	e.mu.Lock()
	e.grid = g
	e.inStroke = false
	e.moved = false
	e.touched = nil
	e.patches = nil
	e.gen++
	e.hist.Reset()
	fn := e.onChange
	e.mu.Unlock()
	e.notify(fn)
}

// Unstable runs the structural analyzer against the current snapshot.
// Used by preview mode; it has no effect on history or persistence.
func (e *Editor) Unstable() map[int]struct{} {
	g := e.Grid()
	return stability.FindUnstable(g.Cells, g.Width, g.Height)
}
