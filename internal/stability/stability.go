/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package stability analyzes a board snapshot for bead placements that are
// physically weak once fused. It is read-only and recomputed on demand,
// typically while the editor is in preview mode.
package stability

import "beadboard/internal/domain"

// FindUnstable returns the set of cell indices that would be fragile after
// fusing:
//
//   - isolation: a bead with no 4-adjacent neighbor has nothing to fuse to
//     (a lone bead, or a chain connected only diagonally);
//   - weak bridge: a bead whose diagonal neighbor belongs to a different
//     4-connected cluster marks a corner-only contact between two regions.
//
// The result is deterministic for identical inputs. Runs in O(width*height).
func FindUnstable(cells []byte, width, height int) map[int]struct{} {
	unstable := make(map[int]struct{})
	if width <= 0 || height <= 0 || len(cells) != width*height {
		return unstable
	}
	clusters := clusterIDs(cells, width, height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if cells[i] == domain.EmptyCell {
				continue
			}
			if orthogonalNeighbors(cells, width, height, x, y) == 0 {
				unstable[i] = struct{}{}
				continue
			}
			if weakBridge(cells, clusters, width, height, x, y) {
				unstable[i] = struct{}{}
			}
		}
	}
	return unstable
}

// clusterIDs labels every nonempty cell with its 4-connected component id
// via breadth-first traversal. Empty cells keep id 0; component ids start
// at 1.
func clusterIDs(cells []byte, width, height int) []int {
	ids := make([]int, len(cells))
	next := 0
	queue := make([]int, 0, 64)
	for start := range cells {
		if cells[start] == domain.EmptyCell || ids[start] != 0 {
			continue
		}
		next++
		ids[start] = next
		queue = append(queue[:0], start)
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			x, y := i%width, i/width
			for _, d := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				n := ny*width + nx
				if cells[n] != domain.EmptyCell && ids[n] == 0 {
					ids[n] = next
					queue = append(queue, n)
				}
			}
		}
	}
	return ids
}

func orthogonalNeighbors(cells []byte, width, height, x, y int) int {
	count := 0
	for _, d := range [4][2]int{{0, -1}, {0, 1}, {-1, 0}, {1, 0}} {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= width || ny < 0 || ny >= height {
			continue
		}
		if cells[ny*width+nx] != domain.EmptyCell {
			count++
		}
	}
	return count
}

// weakBridge reports whether any diagonal neighbor holds a bead from a
// different cluster. The first qualifying corner is sufficient.
func weakBridge(cells []byte, clusters []int, width, height, x, y int) bool {
	own := clusters[y*width+x]
	for _, d := range [4][2]int{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}} {
		nx, ny := x+d[0], y+d[1]
		if nx < 0 || nx >= width || ny < 0 || ny >= height {
			continue
		}
		n := ny*width + nx
		if cells[n] != domain.EmptyCell && clusters[n] != own {
			return true
		}
	}
	return false
}
