/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package stability

import (
	"reflect"
	"testing"
)

// grid builds a cell slice from rows of palette ids.
func grid(rows ...[]byte) (cells []byte, w, h int) {
	h = len(rows)
	w = len(rows[0])
	for _, r := range rows {
		cells = append(cells, r...)
	}
	return cells, w, h
}

func indices(m map[int]struct{}) []int {
	out := make([]int, 0, len(m))
	for i := range m {
		out = append(out, i)
	}
	return out
}

func TestPlusShapeIsStable(t *testing.T) {
	cells, w, h := grid(
		[]byte{0, 1, 0},
		[]byte{1, 1, 1},
		[]byte{0, 1, 0},
	)
	if got := FindUnstable(cells, w, h); len(got) != 0 {
		t.Fatalf("plus shape must be stable, got unstable %v", indices(got))
	}
}

func TestLoneBeadIsUnstable(t *testing.T) {
	cells, w, h := grid(
		[]byte{0, 0, 0, 0},
		[]byte{0, 0, 5, 0},
		[]byte{0, 0, 0, 0},
	)
	got := FindUnstable(cells, w, h)
	want := map[int]struct{}{6: {}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected only the lone bead at 6, got %v", indices(got))
	}
}

func TestDiagonalChainIsFullyUnstable(t *testing.T) {
	// Beads connected only corner to corner have zero orthogonal neighbors
	// each, so isolation flags every one of them.
	cells, w, h := grid(
		[]byte{1, 0, 0},
		[]byte{0, 1, 0},
		[]byte{0, 0, 1},
	)
	got := FindUnstable(cells, w, h)
	if len(got) != 3 {
		t.Fatalf("expected all 3 diagonal beads unstable, got %v", indices(got))
	}
}

func TestCornerTouchingBlocksFlagOnlyTheCornerCells(t *testing.T) {
	// Two 2x2 blocks meeting at a single corner. Only the two cells at the
	// shared corner see a diagonal bead from the other cluster.
	cells, w, h := grid(
		[]byte{1, 1, 0, 0},
		[]byte{1, 1, 0, 0},
		[]byte{0, 0, 2, 2},
		[]byte{0, 0, 2, 2},
	)
	got := FindUnstable(cells, w, h)
	want := map[int]struct{}{5: {}, 10: {}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected corner cells {5,10}, got %v", indices(got))
	}
}

func TestColorDoesNotSplitClusters(t *testing.T) {
	// Different palette ids in one 4-connected region form a single cluster;
	// the diagonal rule must not fire inside it.
	cells, w, h := grid(
		[]byte{1, 2, 0},
		[]byte{3, 4, 0},
		[]byte{0, 0, 0},
	)
	if got := FindUnstable(cells, w, h); len(got) != 0 {
		t.Fatalf("solid block must be stable regardless of colors, got %v", indices(got))
	}
}

func TestEmptyAndDegenerateInputs(t *testing.T) {
	if got := FindUnstable(nil, 0, 0); len(got) != 0 {
		t.Fatalf("empty input: %v", indices(got))
	}
	if got := FindUnstable(make([]byte, 9), 3, 3); len(got) != 0 {
		t.Fatalf("blank board: %v", indices(got))
	}
	// Mismatched length is rejected rather than read out of bounds.
	if got := FindUnstable(make([]byte, 8), 3, 3); len(got) != 0 {
		t.Fatalf("mismatched length must yield empty set, got %v", indices(got))
	}
}

func TestDeterminismAcrossRepeatedRuns(t *testing.T) {
	cells, w, h := grid(
		[]byte{1, 1, 0, 2},
		[]byte{1, 0, 2, 2},
		[]byte{0, 3, 0, 0},
	)
	first := FindUnstable(cells, w, h)
	for i := 0; i < 10; i++ {
		if got := FindUnstable(cells, w, h); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d diverged: %v vs %v", i, indices(got), indices(first))
		}
	}
}
