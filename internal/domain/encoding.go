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

import "encoding/base64"

// EncodeCells renders the raw cell bytes as base64 for storage in a string
// value store. The codec is length-agnostic; grids of any supported size
// round-trip without truncation.
func EncodeCells(cells []byte) string {
	return base64.StdEncoding.EncodeToString(cells)
}

// DecodeCells is the inverse of EncodeCells. Malformed input never panics or
// returns an error here; it yields nil, which record validation then rejects
// as a corrupt design.
func DecodeCells(s string) []byte {
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil
	}
	return b
}
