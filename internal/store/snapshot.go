package store

import (
	"time"

	"github.com/mnemo-app/mnemo/internal/domain"
)

// Snapshot is the serializable image of a collection. The host's
// persistence collaborator decides how it reaches disk; the store only
// exports and re-imports it.
type Snapshot struct {
	Created time.Time       `json:"created"`
	NextID  int64           `json:"next_id"`
	Models  []*domain.Model `json:"models"`
	Decks   []*domain.Deck  `json:"decks"`
	Notes   []*domain.Note  `json:"notes"`
	Cards   []*domain.Card  `json:"cards"`
}

// Persister is the external durability collaborator. The engine never
// opens files itself.
type Persister interface {
	Save(snap *Snapshot) error
	Load() (*Snapshot, error)
}

// Snapshot exports the collection, entities ordered by id.
func (s *Store) Snapshot() *Snapshot {
	snap := &Snapshot{Created: s.created, NextID: s.nextID}
	for _, id := range sortedIDs(s.models) {
		snap.Models = append(snap.Models, s.models[id])
	}
	for _, id := range sortedIDs(s.decks) {
		snap.Decks = append(snap.Decks, s.decks[id])
	}
	for _, id := range sortedIDs(s.notes) {
		snap.Notes = append(snap.Notes, s.notes[id])
	}
	for _, id := range sortedIDs(s.cards) {
		snap.Cards = append(snap.Cards, s.cards[id])
	}
	return snap
}

// FromSnapshot rebuilds a collection from an exported image.
func FromSnapshot(snap *Snapshot) *Store {
	s := New()
	s.created = snap.Created
	if snap.NextID > s.nextID {
		s.nextID = snap.NextID
	}
	for _, m := range snap.Models {
		s.models[m.ID] = m
	}
	for _, d := range snap.Decks {
		s.decks[d.ID] = d
	}
	for _, n := range snap.Notes {
		s.notes[n.ID] = n
	}
	for _, c := range snap.Cards {
		s.cards[c.ID] = c
	}
	return s
}
