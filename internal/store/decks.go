package store

import (
	"sort"
	"strings"

	"github.com/mnemo-app/mnemo/internal/domain"
)

// AddDeck inserts a deck. An id of zero is assigned from the allocator.
// Deck names are unique; inserting an existing name is a duplicate.
func (s *Store) AddDeck(d *domain.Deck) error {
	if err := d.Validate(); err != nil {
		return storeErr("deck", "add", err)
	}
	if existing, _ := s.DeckByName(d.Name); existing != nil {
		return storeErr("deck", "add", ErrDuplicate)
	}
	if d.ID == 0 {
		d.ID = s.NextID()
	} else if _, exists := s.decks[d.ID]; exists {
		return storeErr("deck", "add", ErrDuplicate)
	}
	s.decks[d.ID] = d
	return nil
}

// EnsureDeck returns the deck with the given hierarchical name,
// creating it and any missing ancestors ("A::B" creates "A" first).
func (s *Store) EnsureDeck(name string) (*domain.Deck, error) {
	if d, _ := s.DeckByName(name); d != nil {
		return d, nil
	}
	for _, ancestor := range domain.DeckAncestorNames(name) {
		if existing, _ := s.DeckByName(ancestor); existing != nil {
			continue
		}
		d, err := domain.NewDeck(s.NextID(), ancestor)
		if err != nil {
			return nil, storeErr("deck", "ensure", err)
		}
		s.decks[d.ID] = d
	}
	d, err := domain.NewDeck(s.NextID(), name)
	if err != nil {
		return nil, storeErr("deck", "ensure", err)
	}
	s.decks[d.ID] = d
	return d, nil
}

// Deck returns the deck with the given id.
func (s *Store) Deck(id int64) (*domain.Deck, error) {
	d, ok := s.decks[id]
	if !ok {
		return nil, ErrDeckNotFound
	}
	return d, nil
}

// DeckByName returns the deck with the exact given name.
func (s *Store) DeckByName(name string) (*domain.Deck, error) {
	for _, d := range s.decks {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, ErrDeckNotFound
}

// Decks returns all decks ordered by name, which groups each deck with
// its descendants.
func (s *Store) Decks() []*domain.Deck {
	out := make([]*domain.Deck, 0, len(s.decks))
	for _, d := range s.decks {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DeckWithChildren returns the ids of the deck and every descendant,
// resolved by name prefix.
func (s *Store) DeckWithChildren(id int64) ([]int64, error) {
	root, err := s.Deck(id)
	if err != nil {
		return nil, err
	}
	ids := []int64{root.ID}
	for _, d := range s.decks {
		if root.IsAncestorOf(d) {
			ids = append(ids, d.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// RenameDeck renames a deck and rewrites the name prefix of every
// descendant so the derived hierarchy moves with it.
func (s *Store) RenameDeck(id int64, newName string) error {
	d, err := s.Deck(id)
	if err != nil {
		return err
	}
	if existing, _ := s.DeckByName(newName); existing != nil && existing.ID != id {
		return storeErr("deck", "rename", ErrDuplicate)
	}

	oldPrefix := d.Name + domain.DeckSeparator
	renamed := &domain.Deck{
		ID: d.ID, Name: newName,
		NewPerDay: d.NewPerDay, ReviewsPerDay: d.ReviewsPerDay,
		Collapsed: d.Collapsed, Mod: d.Mod,
	}
	if err := renamed.Validate(); err != nil {
		return storeErr("deck", "rename", err)
	}
	d.Name = newName

	for _, child := range s.decks {
		if strings.HasPrefix(child.Name, oldPrefix) {
			child.Name = newName + domain.DeckSeparator + child.Name[len(oldPrefix):]
		}
	}
	return nil
}
