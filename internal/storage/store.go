/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package storage persists beadboard designs: a string key-value collaborator
// (sqlite-backed in production, in-memory in tests) and the synchronizer that
// keeps the editor's board and the durable gallery in agreement.
package storage

import "errors"

// Store is the durable collaborator: a key to string-value store. Writes may
// fail (e.g. capacity); failures surface as errors, never panics. No
// protection is offered against concurrent writers from separate processes;
// last writer wins.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key string) (string, error)
	// Set writes key=value, overwriting any prior value.
	Set(key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error
}

// ErrNotFound reports an absent key.
var ErrNotFound = errors.New("key not found")

// ErrStoreFull reports a write rejected for capacity.
var ErrStoreFull = errors.New("store capacity exceeded")

// Store keys. Designs get one key each; the gallery index and the pointer to
// the currently open design are single keys.
const (
	indexKey        = "beadboard:index"
	currentKey      = "beadboard:current"
	designKeyPrefix = "beadboard:design:"
)

func designKey(id string) string { return designKeyPrefix + id }
