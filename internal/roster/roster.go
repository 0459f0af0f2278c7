// Package roster tracks the participants present in a room and the draft text
// reconstructed for each of them.
//
// Every operation is total: operations on an id that is not present are
// no-ops, because edits for a participant who already left are an expected
// race rather than a fault.
package roster

import (
	"slices"
	"strings"
	"sync"
)

// Defaults applied when a participant arrives without a name or location.
const (
	DefaultDisplayName = "Anonymous"
	DefaultLocation    = "Unknown"
)

// Seed describes a participant as announced by the room. Empty fields are
// defaulted on insertion.
type Seed struct {
	ID          string
	DisplayName string
	Location    string
}

// Participant is one roster entry.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Location    string `json:"location"`
	DraftText   string `json:"draftText"`
	JoinedSeq   uint64 `json:"-"`
}

// Store maps participant ids to their records. The zero value is not usable;
// call New.
//
// Writes are expected from a single dispatcher goroutine. The lock lets
// readers such as the status endpoint observe the store concurrently.
type Store struct {
	mu           sync.RWMutex
	participants map[string]*Participant
	nextSeq      uint64
}

// New returns an empty store.
func New() *Store {
	return &Store{participants: make(map[string]*Participant)}
}

// Initialize replaces the entire store with seeds. Each participant's draft
// starts at currentMessages[id], or empty when absent.
func (s *Store) Initialize(seeds []Seed, currentMessages map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.participants = make(map[string]*Participant, len(seeds))
	for _, seed := range seeds {
		s.insertLocked(seed, currentMessages[seed.ID])
	}
}

// UpsertOnJoin inserts a participant with an empty draft, replacing any stale
// record with the same id.
func (s *Store) UpsertOnJoin(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.insertLocked(seed, "")
}

// Remove deletes the participant if present.
func (s *Store) Remove(id string) {
	s.mu.Lock()
	delete(s.participants, id)
	s.mu.Unlock()
}

// Get returns a copy of the participant record.
func (s *Store) Get(id string) (Participant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.participants[id]
	if !ok {
		return Participant{}, false
	}
	return *p, true
}

// SetDraftText overwrites the participant's draft if present.
func (s *Store) SetDraftText(id, text string) {
	s.mu.Lock()
	if p, ok := s.participants[id]; ok {
		p.DraftText = text
	}
	s.mu.Unlock()
}

// List returns copies of all participants in arrival order.
func (s *Store) List() []Participant {
	s.mu.RLock()
	out := make([]Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, *p)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b Participant) int {
		switch {
		case a.JoinedSeq < b.JoinedSeq:
			return -1
		case a.JoinedSeq > b.JoinedSeq:
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Len returns the number of participants.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants)
}

func (s *Store) insertLocked(seed Seed, draft string) {
	s.nextSeq++
	s.participants[seed.ID] = &Participant{
		ID:          seed.ID,
		DisplayName: orDefault(seed.DisplayName, DefaultDisplayName),
		Location:    orDefault(seed.Location, DefaultLocation),
		DraftText:   draft,
		JoinedSeq:   s.nextSeq,
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
