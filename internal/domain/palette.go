/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package domain

// BeadColor describes one palette entry. Index 0 is reserved for the empty
// peg and never appears in a palette.
type BeadColor struct {
	Index   byte
	Name    string
	R, G, B uint8
}

// PaletteV1 is the built-in bead palette. Indices are stable: stored grids
// reference them by value, so entries may be appended but never reordered.
var PaletteV1 = []BeadColor{
	{Index: 1, Name: "Black", R: 0x26, G: 0x26, B: 0x26},
	{Index: 2, Name: "White", R: 0xf4, G: 0xf4, B: 0xf0},
	{Index: 3, Name: "Red", R: 0xc8, G: 0x2a, B: 0x2a},
	{Index: 4, Name: "Orange", R: 0xe8, G: 0x7b, B: 0x1e},
	{Index: 5, Name: "Yellow", R: 0xf0, G: 0xd0, B: 0x2e},
	{Index: 6, Name: "Light Green", R: 0x8c, G: 0xc6, B: 0x3f},
	{Index: 7, Name: "Dark Green", R: 0x2e, G: 0x7d, B: 0x32},
	{Index: 8, Name: "Light Blue", R: 0x64, G: 0xb5, B: 0xf6},
	{Index: 9, Name: "Dark Blue", R: 0x1a, G: 0x4f, B: 0x9c},
	{Index: 10, Name: "Purple", R: 0x7e, G: 0x57, B: 0xc2},
	{Index: 11, Name: "Pink", R: 0xf0, G: 0x8f, B: 0xb1},
	{Index: 12, Name: "Brown", R: 0x79, G: 0x55, B: 0x48},
	{Index: 13, Name: "Grey", R: 0x9e, G: 0x9e, B: 0x9e},
	{Index: 14, Name: "Beige", R: 0xd7, G: 0xc4, B: 0xa3},
	{Index: 15, Name: "Cyan", R: 0x26, G: 0xc6, B: 0xda},
	{Index: 16, Name: "Magenta", R: 0xc2, G: 0x18, B: 0x5b},
}

// PaletteFor resolves a palette version string. Unknown versions fall back
// to the current palette so old records always render.
func PaletteFor(version string) []BeadColor {
	switch version {
	case "v1":
		return PaletteV1
	default:
		return PaletteV1
	}
}

// ColorByIndex finds a palette entry by its stable index.
func ColorByIndex(palette []BeadColor, idx byte) (BeadColor, bool) {
	for _, c := range palette {
		if c.Index == idx {
			return c, true
		}
	}
	return BeadColor{}, false
}
