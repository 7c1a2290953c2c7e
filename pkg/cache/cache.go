// Package cache holds built elevation profiles between MCP tool calls so a
// profile built once can back later clearance evaluations.
package cache

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/NERVsystems/pathclear/pkg/link"
	"github.com/NERVsystems/pathclear/pkg/profile"
)

// Entry is a stored profile together with the path it was built for.
type Entry struct {
	ID        string
	Path      link.Path
	Profile   profile.Profile
	CreatedAt time.Time
}

// ProfileStore is a size-bounded, expiring profile store. It is safe for
// concurrent use.
type ProfileStore struct {
	lru      *expirable.LRU[string, Entry]
	onChange func(n int)
}

// NewProfileStore creates a store holding at most size profiles, each for at
// most ttl. A ttl of zero keeps profiles until they are evicted by size.
func NewProfileStore(size int, ttl time.Duration) *ProfileStore {
	if size < 1 {
		size = 1
	}
	return &ProfileStore{
		lru: expirable.NewLRU[string, Entry](size, nil, ttl),
	}
}

// OnChange registers fn to receive the entry count after every mutation.
// It must be set before the store is shared.
func (s *ProfileStore) OnChange(fn func(n int)) {
	s.onChange = fn
}

func (s *ProfileStore) changed() {
	if s.onChange != nil {
		s.onChange(s.lru.Len())
	}
}

// Put stores prof under a fresh ID and returns the entry.
func (s *ProfileStore) Put(path link.Path, prof profile.Profile) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Path:      path,
		Profile:   prof,
		CreatedAt: time.Now(),
	}
	s.lru.Add(e.ID, e)
	s.changed()
	return e
}

// Get returns the entry stored under id. Expired entries are not returned.
func (s *ProfileStore) Get(id string) (Entry, bool) {
	return s.lru.Get(id)
}

// Delete removes an entry and reports whether it was present.
func (s *ProfileStore) Delete(id string) bool {
	ok := s.lru.Remove(id)
	if ok {
		s.changed()
	}
	return ok
}

// Len returns the number of stored, unexpired entries.
func (s *ProfileStore) Len() int {
	return s.lru.Len()
}

// Clear removes all entries.
func (s *ProfileStore) Clear() {
	s.lru.Purge()
	s.changed()
}
