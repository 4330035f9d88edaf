package bank

import (
	"sort"
	"sync"

	"github.com/rgfreitas/certtrainer/internal/model"
)

// Key identifies one question bank.
type Key struct {
	Track    string
	Language string
}

// Store is an in-memory cache of question banks keyed by track and
// language. Writes replace the whole bank for a key (last writer wins);
// the bank is a best-effort cache, not a system of record.
type Store struct {
	mu    sync.RWMutex
	banks map[Key][]model.Question
}

// NewStore creates an empty bank store.
func NewStore() *Store {
	return &Store{banks: make(map[Key][]model.Question)}
}

// Get returns the bank for a track and language, or an empty slice if none
// exists. The returned slice is a copy; callers may reorder it freely.
func (s *Store) Get(track, language string) []model.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Question(nil), s.banks[Key{track, language}]...)
}

// Set replaces the bank for a track and language.
func (s *Store) Set(track, language string, questions []model.Question) {
	s.mu.Lock()
	s.banks[Key{track, language}] = append([]model.Question(nil), questions...)
	s.mu.Unlock()
}

// Keys returns all bank keys in stable order.
func (s *Store) Keys() []Key {
	s.mu.RLock()
	keys := make([]Key, 0, len(s.banks))
	for k := range s.banks {
		keys = append(keys, k)
	}
	s.mu.RUnlock()
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Track != keys[j].Track {
			return keys[i].Track < keys[j].Track
		}
		return keys[i].Language < keys[j].Language
	})
	return keys
}
