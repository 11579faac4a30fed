package session

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"launchpad/internal/wizard"
)

var ErrNotFound = errors.New("session not found")

// Store keeps wizard snapshots in memory. Snapshots are replaced as whole
// values; nothing survives a restart.
type Store struct {
	// mu serialises read-modify-write in Update.
	mu    sync.Mutex
	cache *expirable.LRU[string, wizard.Snapshot]
}

// New returns a store holding at most size sessions, each expiring ttl
// after its last write. onEvict, when set, runs for expired and evicted
// sessions on its own goroutine, after the cache lock is released, so slow
// cleanup never stalls lookups of other sessions.
func New(size int, ttl time.Duration, onEvict func(id string)) *Store {
	if size <= 0 {
		size = 1024
	}
	var cb expirable.EvictCallback[string, wizard.Snapshot]
	if onEvict != nil {
		cb = func(id string, _ wizard.Snapshot) { go onEvict(id) }
	}
	return &Store{cache: expirable.NewLRU[string, wizard.Snapshot](size, cb, ttl)}
}

func (s *Store) Get(id string) (wizard.Snapshot, error) {
	snap, ok := s.cache.Get(strings.TrimSpace(id))
	if !ok {
		return wizard.Snapshot{}, ErrNotFound
	}
	return snap, nil
}

// Put stores snap under snap.ID, replacing any previous snapshot.
func (s *Store) Put(snap wizard.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(snap.ID, snap)
}

// Update replaces the snapshot for id with fn's result. fn sees the latest
// snapshot and must not block.
func (s *Store) Update(id string, fn func(wizard.Snapshot) (wizard.Snapshot, error)) (wizard.Snapshot, error) {
	id = strings.TrimSpace(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.cache.Get(id)
	if !ok {
		return wizard.Snapshot{}, ErrNotFound
	}
	next, err := fn(cur)
	if err != nil {
		return wizard.Snapshot{}, err
	}
	next.ID = id
	s.cache.Add(id, next)
	return next, nil
}

func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(strings.TrimSpace(id))
}

func (s *Store) Len() int { return s.cache.Len() }
