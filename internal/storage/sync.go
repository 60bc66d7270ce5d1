/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"beadboard/internal/domain"
	"beadboard/internal/editor"
	applog "beadboard/internal/log"

	"github.com/google/uuid"
)

// persistedSnapshot is the synchronizer's private record of what is
// currently safely stored. It exists only for dirty comparison and is never
// exposed.
type persistedSnapshot struct {
	width       int
	height      int
	gridEncoded string
}

// SyncConfig tunes the synchronizer. Clock and NewID are injectable for
// deterministic tests; zero values pick sensible defaults.
type SyncConfig struct {
	AutosaveDelay  time.Duration
	GalleryCap     int
	PaletteVersion string
	Clock          func() time.Time
	NewID          func() string
}

func (c *SyncConfig) fillDefaults() {
	if c.AutosaveDelay <= 0 {
		c.AutosaveDelay = time.Second
	}
	if c.GalleryCap <= 0 {
		c.GalleryCap = 30
	}
	if c.PaletteVersion == "" {
		c.PaletteVersion = "v1"
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.NewID == nil {
		c.NewID = uuid.NewString
	}
}

// Synchronizer watches the editor's board, decides when in-memory state
// diverges from the last persisted snapshot, and moves designs in and out of
// the durable store. At most one autosave timer is pending at any time.
//
// Draft policy: a brand-new unnamed draft is persisted by its first debounced
// autosave (it is assigned an id then), so work survives a restart before the
// user ever saves explicitly. A blank untouched draft is not considered
// dirty and is never autosaved.
type Synchronizer struct {
	mu    sync.Mutex
	store Store
	ed    *editor.Editor
	cfg   SyncConfig
	log   *slog.Logger

	currentID string
	persisted *persistedSnapshot
	timer     *time.Timer
	epoch     uint64

	// suspended gates the editor change callback while the synchronizer
	// itself replaces the grid, so loads never re-enter the lock.
	suspended atomic.Bool
}

// NewSynchronizer wires a synchronizer to the editor's change notifications.
func NewSynchronizer(store Store, ed *editor.Editor, cfg SyncConfig) *Synchronizer {
	cfg.fillDefaults()
	s := &Synchronizer{
		store: store,
		ed:    ed,
		cfg:   cfg,
		log:   applog.WithComponent("sync"),
	}
	ed.SetOnChange(s.onEdit)
	return s
}

// onEdit runs after every grid mutation. It (re)arms the single debounced
// autosave timer when the board diverged from the persisted snapshot.
func (s *Synchronizer) onEdit() {
	if s.suspended.Load() {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirtyLocked() {
		// An undo back to the persisted snapshot cancels any stale save.
		s.cancelTimerLocked()
		return
	}
	s.armTimerLocked()
}

func (s *Synchronizer) armTimerLocked() {
	s.cancelTimerLocked()
	epoch := s.epoch
	s.timer = time.AfterFunc(s.cfg.AutosaveDelay, func() { s.autosaveFire(epoch) })
}

func (s *Synchronizer) cancelTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// autosaveFire commits the debounced save, unless the design identity
// changed since the timer was armed or the state is no longer dirty.
func (s *Synchronizer) autosaveFire(epoch uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timer = nil
	if epoch != s.epoch {
		return
	}
	if !s.dirtyLocked() {
		return
	}
	if _, err := s.saveLocked(); err != nil {
		s.log.Error("autosave failed", slog.Any("err", err))
	}
}

// Dirty reports whether the board's content differs from the persisted
// snapshot. Comparison is by content, not reference, so re-renders never
// produce false positives.
func (s *Synchronizer) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirtyLocked()
}

func (s *Synchronizer) dirtyLocked() bool {
	g := s.ed.Grid()
	if s.persisted == nil {
		return !g.IsEmpty()
	}
	return s.persisted.width != g.Width ||
		s.persisted.height != g.Height ||
		s.persisted.gridEncoded != domain.EncodeCells(g.Cells)
}

// Save commits the board to the store now and returns the design id. On
// failure the persisted snapshot, the current id, and all in-memory editor
// state are left unchanged, so dirtiness keeps reporting correctly.
func (s *Synchronizer) Save() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
	return s.saveLocked()
}

func (s *Synchronizer) saveLocked() (string, error) {
	g := s.ed.Grid()
	encoded := domain.EncodeCells(g.Cells)
	now := s.cfg.Clock().UTC()

	id := s.currentID
	isNew := id == ""
	createdAt := now
	if isNew {
		id = s.cfg.NewID()
	} else if prev, err := s.getDesignLocked(id); err == nil {
		// id is immutable and createdAt survives updates
		createdAt = prev.CreatedAt
	}

	d := domain.Design{
		ID:             id,
		Width:          g.Width,
		Height:         g.Height,
		PaletteVersion: s.cfg.PaletteVersion,
		GridEncoded:    encoded,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("marshal design: %w", err)
	}
	if err := s.store.Set(designKey(id), string(raw)); err != nil {
		return "", fmt.Errorf("write design record: %w", err)
	}

	if err := s.upsertIndexLocked(domain.DesignIndexEntry{
		ID: id, Width: g.Width, Height: g.Height, UpdatedAt: now,
	}); err != nil {
		if isNew {
			// the record is not yet in the index, do not leave it orphaned
			_ = s.store.Remove(designKey(id))
		}
		return "", err
	}
	if err := s.store.Set(currentKey, id); err != nil {
		return "", fmt.Errorf("write current pointer: %w", err)
	}

	s.currentID = id
	s.persisted = &persistedSnapshot{width: g.Width, height: g.Height, gridEncoded: encoded}
	s.log.Debug("design saved", slog.String("id", id), slog.Int("w", g.Width), slog.Int("h", g.Height))
	return id, nil
}

// upsertIndexLocked inserts or replaces the entry by id, re-sorts by
// UpdatedAt descending, and evicts everything beyond the gallery cap,
// index entries and their full records both.
func (s *Synchronizer) upsertIndexLocked(entry domain.DesignIndexEntry) error {
	idx, err := s.readIndexLocked()
	if err != nil {
		return err
	}
	replaced := false
	for i := range idx {
		if idx[i].ID == entry.ID {
			idx[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		idx = append(idx, entry)
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if !idx[i].UpdatedAt.Equal(idx[j].UpdatedAt) {
			return idx[i].UpdatedAt.After(idx[j].UpdatedAt)
		}
		return idx[i].ID < idx[j].ID
	})

	var evicted []domain.DesignIndexEntry
	if len(idx) > s.cfg.GalleryCap {
		evicted = idx[s.cfg.GalleryCap:]
		idx = idx[:s.cfg.GalleryCap]
	}

	raw, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := s.store.Set(indexKey, string(raw)); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	for _, e := range evicted {
		if err := s.store.Remove(designKey(e.ID)); err != nil {
			s.log.Warn("evicted record removal failed", slog.String("id", e.ID), slog.Any("err", err))
		} else {
			s.log.Info("evicted design beyond gallery cap", slog.String("id", e.ID))
		}
	}
	return nil
}

func (s *Synchronizer) readIndexLocked() ([]domain.DesignIndexEntry, error) {
	raw, err := s.store.Get(indexKey)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	var idx []domain.DesignIndexEntry
	if err := json.Unmarshal([]byte(raw), &idx); err != nil {
		// A corrupt index is rebuilt from scratch rather than crashing.
		s.log.Warn("index unmarshal failed, starting empty", slog.Any("err", err))
		return nil, nil
	}
	return idx, nil
}

func (s *Synchronizer) getDesignLocked(id string) (domain.Design, error) {
	raw, err := s.store.Get(designKey(id))
	if err != nil {
		return domain.Design{}, fmt.Errorf("read design %s: %w", id, err)
	}
	var d domain.Design
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return domain.Design{}, fmt.Errorf("%w: design %s: %v", domain.ErrValidation, id, err)
	}
	return d, nil
}

// Flush commits any pending work synchronously: the timer is cancelled and
// a save happens now if the state is dirty. Callers switching designs must
// gate on the returned error so no edit is silently lost.
func (s *Synchronizer) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked()
}

func (s *Synchronizer) flushLocked() error {
	s.cancelTimerLocked()
	if !s.dirtyLocked() {
		return nil
	}
	_, err := s.saveLocked()
	return err
}

// Load flushes pending work, then replaces the board with the stored design.
// A record failing validation is rejected wholesale: editor state, history,
// and the persisted snapshot stay untouched and the error reports why.
func (s *Synchronizer) Load(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(); err != nil {
		return fmt.Errorf("flush before load: %w", err)
	}
	d, err := s.getDesignLocked(id)
	if err != nil {
		return err
	}
	g, err := domain.GridFromDesign(d)
	if err != nil {
		return err
	}

	s.suspended.Store(true)
	s.ed.Load(g)
	s.suspended.Store(false)

	s.currentID = d.ID
	s.persisted = &persistedSnapshot{width: d.Width, height: d.Height, gridEncoded: d.GridEncoded}
	s.epoch++
	if err := s.store.Set(currentKey, d.ID); err != nil {
		s.log.Warn("current pointer update failed", slog.Any("err", err))
	}
	s.log.Info("design loaded", slog.String("id", d.ID))
	return nil
}

// CreateNew flushes pending work, then resets the editor to a blank draft of
// the given size with no identity. A failed flush aborts the switch.
func (s *Synchronizer) CreateNew(width, height int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.flushLocked(); err != nil {
		return fmt.Errorf("flush before new: %w", err)
	}

	s.suspended.Store(true)
	err := s.ed.Reset(width, height)
	s.suspended.Store(false)
	if err != nil {
		return err
	}

	s.currentID = ""
	s.persisted = nil
	s.epoch++
	if err := s.store.Remove(currentKey); err != nil {
		s.log.Warn("current pointer removal failed", slog.Any("err", err))
	}
	return nil
}

// Delete removes a design record and its index entry. Deleting the open
// design also resets the editor to a blank draft. The durable current
// pointer is cleared whenever it references the removed id, even when this
// instance never opened the design, so it can never dangle.
func (s *Synchronizer) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Remove(designKey(id)); err != nil {
		return fmt.Errorf("remove design record: %w", err)
	}
	idx, err := s.readIndexLocked()
	if err != nil {
		return err
	}
	kept := idx[:0]
	for _, e := range idx {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	raw, err := json.Marshal(kept)
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}
	if err := s.store.Set(indexKey, string(raw)); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	if pointed, err := s.store.Get(currentKey); err == nil && pointed == id {
		if err := s.store.Remove(currentKey); err != nil {
			s.log.Warn("current pointer removal failed", slog.Any("err", err))
		}
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warn("current pointer read failed", slog.Any("err", err))
	}

	if id == s.currentID {
		g := s.ed.Grid()
		s.cancelTimerLocked()
		s.suspended.Store(true)
		err := s.ed.Reset(g.Width, g.Height)
		s.suspended.Store(false)
		if err != nil {
			return err
		}
		s.currentID = ""
		s.persisted = nil
		s.epoch++
	}
	s.log.Info("design deleted", slog.String("id", id))
	return nil
}

// Index returns the gallery entries, newest first.
func (s *Synchronizer) Index() ([]domain.DesignIndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readIndexLocked()
}

// Get returns a stored design record by id.
func (s *Synchronizer) Get(id string) (domain.Design, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getDesignLocked(id)
}

// CurrentID returns the open design's id, or empty for an unnamed draft.
func (s *Synchronizer) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// RestoreCurrent loads the design the current pointer references, if any.
// Used at startup to resume the last session.
func (s *Synchronizer) RestoreCurrent() (bool, error) {
	s.mu.Lock()
	id, err := s.store.Get(currentKey)
	s.mu.Unlock()
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read current pointer: %w", err)
	}
	if err := s.Load(id); err != nil {
		return false, err
	}
	return true, nil
}

// Close cancels any pending autosave without committing. Use Flush first
// when the pending work must survive.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelTimerLocked()
}
