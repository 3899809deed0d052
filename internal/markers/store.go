package markers

import (
	"slices"
	"strings"
	"sync"

	"github.com/woozymasta/mapview/internal/geo"

	"github.com/rs/zerolog/log"
)

// Store is an in-memory marker collection safe for concurrent use.
// Every mutation bumps the revision and notifies subscribers.
type Store struct {
	markers     map[string]Marker
	subscribers []chan uint64
	revision    uint64
	mu          sync.RWMutex
}

// NewStore returns a store holding the given markers.
func NewStore(initial ...Marker) (*Store, error) {
	s := &Store{markers: make(map[string]Marker, len(initial))}
	if err := s.Replace(initial); err != nil {
		return nil, err
	}

	return s, nil
}

// Revision returns the counter bumped on every mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.revision
}

// Len returns the number of markers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.markers)
}

// List returns a snapshot of all markers sorted by id, with the revision it was taken at.
func (s *Store) List() ([]Marker, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(func(Marker) bool { return true }), s.revision
}

// Within returns markers inside b sorted by id.
func (s *Store) Within(b geo.Bounds) []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.sorted(func(m Marker) bool { return b.Contains(m.Coordinate()) })
}

// Get returns one marker by id.
func (s *Store) Get(id string) (Marker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.markers[id]
	if !ok {
		return Marker{}, ErrNotFound
	}

	return m, nil
}

// Upsert inserts or replaces a marker. created reports whether it was new.
func (s *Store) Upsert(m Marker) (created bool, err error) {
	if err := m.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	_, exists := s.markers[m.ID]
	s.markers[m.ID] = m
	rev := s.bump()
	s.mu.Unlock()

	log.Debug().Str("id", m.ID).Bool("created", !exists).Uint64("revision", rev).Msg("Marker stored")
	return !exists, nil
}

// Delete removes a marker by id.
func (s *Store) Delete(id string) error {
	s.mu.Lock()
	if _, ok := s.markers[id]; !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.markers, id)
	rev := s.bump()
	s.mu.Unlock()

	log.Debug().Str("id", id).Uint64("revision", rev).Msg("Marker deleted")
	return nil
}

// Replace swaps the whole collection. Nothing changes if any marker is invalid
// or ids repeat.
func (s *Store) Replace(list []Marker) error {
	next := make(map[string]Marker, len(list))
	for _, m := range list {
		if err := m.Validate(); err != nil {
			return err
		}
		if _, dup := next[m.ID]; dup {
			return &DuplicateError{ID: m.ID}
		}
		next[m.ID] = m
	}

	s.mu.Lock()
	s.markers = next
	rev := s.bump()
	s.mu.Unlock()

	log.Debug().Int("count", len(next)).Uint64("revision", rev).Msg("Markers replaced")
	return nil
}

// Subscribe returns a channel receiving the new revision after each mutation.
// Notifications are dropped for slow readers, the channel holds only the latest.
// Call cancel to stop receiving; the channel is closed.
func (s *Store) Subscribe() (updates <-chan uint64, cancel func()) {
	ch := make(chan uint64, 1)

	s.mu.Lock()
	s.subscribers = append(s.subscribers, ch)
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.subscribers = slices.DeleteFunc(s.subscribers, func(c chan uint64) bool { return c == ch })
			close(ch)
		})
	}
}

// bump must be called with mu held for writing.
func (s *Store) bump() uint64 {
	s.revision++
	for _, ch := range s.subscribers {
		// drain a stale value so the reader sees the latest revision
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s.revision:
		default:
		}
	}

	return s.revision
}

func (s *Store) sorted(keep func(Marker) bool) []Marker {
	out := make([]Marker, 0, len(s.markers))
	for _, m := range s.markers {
		if keep(m) {
			out = append(out, m)
		}
	}
	slices.SortFunc(out, func(a, b Marker) int { return strings.Compare(a.ID, b.ID) })

	return out
}

// DuplicateError reports a repeated marker id in a bulk load.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return "duplicate marker id " + e.ID
}

// Is makes duplicates match ErrInvalid.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrInvalid
}
