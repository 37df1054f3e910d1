package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/klytics/sheetviz/internal/sheet"
)

// Entry is one uploaded workbook.
type Entry struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Uploaded time.Time       `json:"uploaded"`
	Sheets   []string        `json:"sheets"`
	Workbook *sheet.Workbook `json:"-"`
}

// Store keeps uploaded workbooks in memory for the life of the process.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*Entry)}
}

// Put adds a workbook under a fresh ID.
func (s *Store) Put(name string, wb *sheet.Workbook) *Entry {
	e := &Entry{
		ID:       uuid.NewString(),
		Name:     name,
		Uploaded: time.Now().UTC(),
		Sheets:   wb.SheetNames(),
		Workbook: wb,
	}
	s.mu.Lock()
	s.entries[e.ID] = e
	s.mu.Unlock()
	return e
}

// Get returns the workbook stored under id.
func (s *Store) Get(id string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Delete removes id and reports whether it was present.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	return true
}

// List returns all entries, oldest first.
func (s *Store) List() []*Entry {
	s.mu.RLock()
	out := make([]*Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Uploaded.Equal(out[j].Uploaded) {
			return out[i].ID < out[j].ID
		}
		return out[i].Uploaded.Before(out[j].Uploaded)
	})
	return out
}

// Len returns the number of stored workbooks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
