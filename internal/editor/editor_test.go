/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"beadboard/internal/domain"
)

func newTestEditor(t *testing.T) *Editor {
	t.Helper()
	e, err := New(4, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestStrokePaintsAndUndoesExactly(t *testing.T) {
	e := newTestEditor(t)
	before := e.Grid()

	e.SetActiveColor(3)
	e.StartStroke(0)
	e.ContinueStroke(1)
	e.ContinueStroke(5)
	e.EndStroke()

	after := e.Grid()
	if after.Cells[0] != 3 || after.Cells[1] != 3 || after.Cells[5] != 3 {
		t.Fatalf("stroke did not paint: %v", after.Cells)
	}
	if !e.CanUndo() || e.CanRedo() {
		t.Fatalf("expected undo available, redo empty")
	}

	e.Undo()
	if !e.Grid().Equal(before) {
		t.Fatalf("undo must restore the exact prior grid")
	}
	e.Redo()
	if !e.Grid().Equal(after) {
		t.Fatalf("redo must restore the exact post-stroke grid")
	}
}

func TestStrokeCoalescesRepeatedTouches(t *testing.T) {
	e := newTestEditor(t)
	e.SetActiveColor(2)
	e.StartStroke(6)
	// Drag smears revisit the same cell; only the first write counts.
	e.ContinueStroke(6)
	e.ContinueStroke(6)
	e.EndStroke()

	if got := e.Grid().Cells[6]; got != 2 {
		t.Fatalf("cell 6 = %d, want 2", got)
	}
	e.Undo()
	if got := e.Grid().Cells[6]; got != 0 {
		t.Fatalf("one undo must fully revert the stroke, cell 6 = %d", got)
	}
	if e.CanUndo() {
		t.Fatalf("stroke must coalesce into a single action")
	}
}

func TestNoopDragRecordsNothing(t *testing.T) {
	e := newTestEditor(t)
	e.SetTool(ToolErase)
	// Erasing an already empty board changes nothing.
	e.StartStroke(0)
	e.ContinueStroke(1)
	e.EndStroke()
	if e.CanUndo() {
		t.Fatalf("no-op drag must not push a history action")
	}
}

func TestPanToolNeverTouchesCellsOrHistory(t *testing.T) {
	e := newTestEditor(t)
	e.SetTool(ToolPan)
	e.StartStroke(0)
	e.ContinueStroke(1)
	e.EndStroke()
	if !e.Grid().IsEmpty() {
		t.Fatalf("pan stroke mutated cells")
	}
	if e.CanUndo() {
		t.Fatalf("pan stroke recorded history")
	}
}

func TestOutOfBoundsIndicesAreSilentlyIgnored(t *testing.T) {
	e := newTestEditor(t)
	e.StartStroke(-1)
	e.ContinueStroke(99)
	e.ContinueStroke(2)
	e.EndStroke()
	g := e.Grid()
	if g.Cells[2] != 1 {
		t.Fatalf("in-bounds cell not painted: %v", g.Cells)
	}
	painted := 0
	for _, v := range g.Cells {
		if v != 0 {
			painted++
		}
	}
	if painted != 1 {
		t.Fatalf("expected exactly one painted cell, got %d", painted)
	}
}

func TestContinueWithoutStartIsNoop(t *testing.T) {
	e := newTestEditor(t)
	e.ContinueStroke(3)
	e.EndStroke()
	if !e.Grid().IsEmpty() || e.CanUndo() {
		t.Fatalf("continue without an active stroke must do nothing")
	}
}

func TestClearBoardIdempotence(t *testing.T) {
	e := newTestEditor(t)
	// Clear on an empty board is a defined no-op.
	e.ClearBoard()
	if e.CanUndo() {
		t.Fatalf("clear on empty board must not record history")
	}

	e.StartStroke(0)
	e.EndStroke()
	e.StartStroke(5)
	e.EndStroke()

	e.ClearBoard()
	e.ClearBoard()
	if !e.Grid().IsEmpty() {
		t.Fatalf("board not empty after clear")
	}
	// Two taps plus exactly one clear action.
	e.Undo()
	g := e.Grid()
	if g.Cells[0] != 1 || g.Cells[5] != 1 {
		t.Fatalf("undoing the single clear must restore both beads: %v", g.Cells)
	}
}

func TestNewStrokeDiscardsRedoFuture(t *testing.T) {
	e := newTestEditor(t)
	for i := 0; i < 3; i++ {
		e.StartStroke(i)
		e.EndStroke()
	}
	e.Undo()
	e.Undo()
	if !e.CanRedo() {
		t.Fatalf("expected redo after undos")
	}
	e.StartStroke(9)
	e.EndStroke()
	if e.CanRedo() {
		t.Fatalf("a new stroke must discard the future stack")
	}
}

func TestEraseRecordsReversiblePatch(t *testing.T) {
	e := newTestEditor(t)
	e.SetActiveColor(4)
	e.StartStroke(7)
	e.EndStroke()

	e.SetTool(ToolErase)
	e.StartStroke(7)
	e.EndStroke()
	if got := e.Grid().Cells[7]; got != 0 {
		t.Fatalf("erase failed, cell 7 = %d", got)
	}
	e.Undo()
	if got := e.Grid().Cells[7]; got != 4 {
		t.Fatalf("undo of erase must restore color 4, got %d", got)
	}
}

func TestLoadAndResizeResetHistoryAndIdentity(t *testing.T) {
	e := newTestEditor(t)
	e.StartStroke(0)
	e.EndStroke()
	gen := e.Generation()

	g, _ := domain.NewGrid(2, 2)
	g.Cells[3] = 9
	e.Load(g)
	if e.CanUndo() || e.CanRedo() {
		t.Fatalf("history must not survive a design switch")
	}
	if e.Generation() == gen {
		t.Fatalf("load must change grid identity")
	}
	if got := e.Grid(); got.Width != 2 || got.Cells[3] != 9 {
		t.Fatalf("loaded grid mismatch: %+v", got)
	}

	gen = e.Generation()
	if err := e.Reset(5, 5); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if e.Generation() == gen || e.CanUndo() {
		t.Fatalf("resize must reset identity and history")
	}
}

func TestStartStrokeClearsInProgressBuffer(t *testing.T) {
	e := newTestEditor(t)
	e.StartStroke(0)
	// No EndStroke: a new StartStroke abandons the old buffer.
	e.StartStroke(1)
	e.EndStroke()
	// Only the second stroke's patch is undoable.
	e.Undo()
	g := e.Grid()
	if g.Cells[1] != 0 {
		t.Fatalf("second stroke not undone: %v", g.Cells)
	}
	if g.Cells[0] != 1 {
		t.Fatalf("abandoned stroke's write should remain on the grid: %v", g.Cells)
	}
	if e.CanUndo() {
		t.Fatalf("abandoned buffer must not become an action")
	}
}

func TestTapVersusStrokeKinds(t *testing.T) {
	e := newTestEditor(t)
	e.StartStroke(0)
	e.EndStroke()
	e.StartStroke(1)
	e.ContinueStroke(2)
	e.EndStroke()

	// Inspect kinds through undo order: last action was the drag.
	e.Undo()
	e.Undo()
	if e.CanUndo() {
		t.Fatalf("expected exactly two actions")
	}
}

func TestChangeCallbackFiresOnMutations(t *testing.T) {
	e := newTestEditor(t)
	fired := 0
	e.SetOnChange(func() { fired++ })

	e.StartStroke(0)
	e.EndStroke()
	if fired == 0 {
		t.Fatalf("stroke write must notify")
	}

	n := fired
	e.Undo()
	if fired <= n {
		t.Fatalf("undo must notify")
	}

	n = fired
	e.Redo()
	if fired <= n {
		t.Fatalf("redo must notify")
	}

	n = fired
	e.StartStroke(0) // repaints same color: no change
	e.EndStroke()
	if fired != n {
		t.Fatalf("no-op write must not notify")
	}
}

func TestUnstableDelegatesToAnalyzer(t *testing.T) {
	e := newTestEditor(t)
	e.StartStroke(5)
	e.EndStroke()
	got := e.Unstable()
	if _, ok := got[5]; !ok || len(got) != 1 {
		t.Fatalf("lone bead should be the only unstable cell, got %v", got)
	}
}
