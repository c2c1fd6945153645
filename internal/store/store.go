package store

import (
	"sort"
	"time"

	"github.com/mnemo-app/mnemo/internal/domain"
)

// Store is the in-memory collection: all models, decks, notes and cards
// plus the monotonic ID allocator they share. IDs are seeded from the
// wall clock in milliseconds so every entity ever created in one
// collection gets a distinct id, imports included.
type Store struct {
	models map[int64]*domain.Model
	decks  map[int64]*domain.Deck
	notes  map[int64]*domain.Note
	cards  map[int64]*domain.Card

	nextID  int64
	created time.Time
}

// New creates an empty collection.
func New() *Store {
	now := time.Now().UTC()
	return &Store{
		models:  make(map[int64]*domain.Model),
		decks:   make(map[int64]*domain.Deck),
		notes:   make(map[int64]*domain.Note),
		cards:   make(map[int64]*domain.Card),
		nextID:  now.UnixMilli(),
		created: now,
	}
}

// NextID hands out the next unused entity id.
func (s *Store) NextID() int64 {
	id := s.nextID
	s.nextID++
	return id
}

// CreatedAt is the collection epoch. Review-card due day counters are
// relative to midnight of this day.
func (s *Store) CreatedAt() time.Time {
	return s.created
}

// Counts reports table sizes, deleted cards excluded.
func (s *Store) Counts() (models, decks, notes, cards int) {
	for _, c := range s.cards {
		if !c.Deleted {
			cards++
		}
	}
	return len(s.models), len(s.decks), len(s.notes), cards
}

func sortedIDs[T any](m map[int64]*T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
