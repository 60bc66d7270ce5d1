/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package domain defines the core data model for beadboard: the peg-board
// grid, the patch/action history records, and the persisted design shapes.
package domain

import (
	"errors"
	"fmt"
	"time"
)

// EmptyCell is the value of a peg without a bead. All other values in
// [1,255] are palette color ids.
const EmptyCell = 0

// MaxCells bounds Width*Height so index arithmetic can never overflow and a
// corrupt record cannot ask the process to allocate absurd grids.
const MaxCells = 1 << 24

// Grid is the peg-board: Width*Height cells in row-major order.
// Cells are mutated exclusively through the editor; everything else works on
// snapshots.
type Grid struct {
	Width  int
	Height int
	Cells  []byte
}

// NewGrid returns a blank grid of the given dimensions.
func NewGrid(width, height int) (Grid, error) {
	if width <= 0 || height <= 0 {
		return Grid{}, fmt.Errorf("%w: grid dimensions %dx%d", ErrValidation, width, height)
	}
	if int64(width)*int64(height) > MaxCells {
		return Grid{}, fmt.Errorf("%w: grid %dx%d exceeds cell limit", ErrValidation, width, height)
	}
	return Grid{Width: width, Height: height, Cells: make([]byte, width*height)}, nil
}

// Clone returns a deep copy; the copy shares no storage with the original.
func (g Grid) Clone() Grid {
	c := Grid{Width: g.Width, Height: g.Height, Cells: make([]byte, len(g.Cells))}
	copy(c.Cells, g.Cells)
	return c
}

// InBounds reports whether idx addresses a cell of this grid.
func (g Grid) InBounds(idx int) bool { return idx >= 0 && idx < len(g.Cells) }

// Equal compares dimensions and every cell value.
func (g Grid) Equal(o Grid) bool {
	if g.Width != o.Width || g.Height != o.Height || len(g.Cells) != len(o.Cells) {
		return false
	}
	for i := range g.Cells {
		if g.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no cell holds a bead.
func (g Grid) IsEmpty() bool {
	for _, v := range g.Cells {
		if v != EmptyCell {
			return false
		}
	}
	return true
}

// ColorCounts tallies beads per palette color id, skipping empty pegs.
func (g Grid) ColorCounts() map[byte]int {
	counts := make(map[byte]int)
	for _, v := range g.Cells {
		if v != EmptyCell {
			counts[v]++
		}
	}
	return counts
}

// CellPatch records one reversible cell change. Prev is the grid value
// immediately before the patch was applied; applying Next and then
// reverting to Prev reproduces the exact prior grid.
type CellPatch struct {
	Index int
	Prev  byte
	Next  byte
}

// ActionKind discriminates history actions.
type ActionKind string

const (
	ActionStroke ActionKind = "stroke"
	ActionTap    ActionKind = "tap"
	ActionClear  ActionKind = "clear"
)

// HistoryAction is one undoable step: its patches in touch order.
// An action with zero patches is never recorded.
type HistoryAction struct {
	Kind    ActionKind
	Patches []CellPatch
}

// Design is the persisted record for one saved board.
// ID is immutable once assigned; CreatedAt is preserved across updates.
type Design struct {
	ID             string    `json:"id"`
	Width          int       `json:"width"`
	Height         int       `json:"height"`
	PaletteVersion string    `json:"paletteVersion"`
	GridEncoded    string    `json:"gridEncoded"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// DesignIndexEntry is the gallery summary kept under the index key,
// sorted by UpdatedAt descending and capped.
type DesignIndexEntry struct {
	ID        string    `json:"id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ErrValidation marks records that fail shape or range checks; the caller's
// editor state must be left untouched when it is returned.
var ErrValidation = errors.New("invalid design record")

// Validate checks the record shape before it may replace editor state:
// positive dimensions, bounded cell count, and an encoding that decodes to
// exactly Width*Height cells. Decoded bytes are inherently within [0,255].
func (d Design) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrValidation, d.Width, d.Height)
	}
	if int64(d.Width)*int64(d.Height) > MaxCells {
		return fmt.Errorf("%w: %dx%d exceeds cell limit", ErrValidation, d.Width, d.Height)
	}
	cells := DecodeCells(d.GridEncoded)
	if len(cells) != d.Width*d.Height {
		return fmt.Errorf("%w: encoded cells decode to %d values, want %d", ErrValidation, len(cells), d.Width*d.Height)
	}
	return nil
}

// GridFromDesign decodes a validated record into a grid. It validates first
// so a corrupt record can never partially apply.
func GridFromDesign(d Design) (Grid, error) {
	if err := d.Validate(); err != nil {
		return Grid{}, err
	}
	return Grid{Width: d.Width, Height: d.Height, Cells: DecodeCells(d.GridEncoded)}, nil
}
