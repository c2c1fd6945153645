package store

import (
	"sort"

	"github.com/mnemo-app/mnemo/internal/domain"
)

// InsertCard inserts a pre-built card. Both referenced entities must
// exist and the (note, ordinal) pair must be free; referential breakage
// is not constructible through this API.
func (s *Store) InsertCard(c *domain.Card) error {
	if err := c.Validate(); err != nil {
		return storeErr("card", "insert", err)
	}
	if _, err := s.Note(c.NoteID); err != nil {
		return err
	}
	if _, err := s.Deck(c.DeckID); err != nil {
		return err
	}
	for _, existing := range s.cards {
		if existing.NoteID == c.NoteID && existing.Ord == c.Ord {
			return storeErr("card", "insert", ErrDuplicate)
		}
	}
	if c.ID == 0 {
		c.ID = s.NextID()
	} else if _, exists := s.cards[c.ID]; exists {
		return storeErr("card", "insert", ErrDuplicate)
	}
	s.cards[c.ID] = c
	return nil
}

// Card returns the card with the given id, soft-deleted ones included.
func (s *Store) Card(id int64) (*domain.Card, error) {
	c, ok := s.cards[id]
	if !ok {
		return nil, ErrCardNotFound
	}
	return c, nil
}

// Cards returns all live cards ordered by id.
func (s *Store) Cards() []*domain.Card {
	out := make([]*domain.Card, 0, len(s.cards))
	for _, id := range sortedIDs(s.cards) {
		if c := s.cards[id]; !c.Deleted {
			out = append(out, c)
		}
	}
	return out
}

// CardsOfNote returns the note's live cards ordered by template
// ordinal.
func (s *Store) CardsOfNote(noteID int64) []*domain.Card {
	var out []*domain.Card
	for _, c := range s.cards {
		if c.NoteID == noteID && !c.Deleted {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ord < out[j].Ord })
	return out
}

// CardsInDeck returns the live cards sitting in the exact given deck,
// ordered by id. Hierarchy resolution is the caller's business via
// DeckWithChildren.
func (s *Store) CardsInDeck(deckID int64) []*domain.Card {
	var out []*domain.Card
	for _, id := range sortedIDs(s.cards) {
		c := s.cards[id]
		if c.DeckID == deckID && !c.Deleted {
			out = append(out, c)
		}
	}
	return out
}

// UpdateCard replaces the stored row with the given card in one swap.
// The scheduler mutates a clone and commits it here, so an abandoned
// transition never leaves mixed old/new scheduling fields behind.
func (s *Store) UpdateCard(c *domain.Card) error {
	if err := c.Validate(); err != nil {
		return storeErr("card", "update", err)
	}
	old, ok := s.cards[c.ID]
	if !ok {
		return ErrCardNotFound
	}
	if old.NoteID != c.NoteID {
		return storeErr("card", "update", ErrNoteNotFound)
	}
	if _, err := s.Deck(c.DeckID); err != nil {
		return err
	}
	s.cards[c.ID] = c
	return nil
}

// SuspendCard parks a card in the suspended queue; its type keeps the
// learning phase for later restore.
func (s *Store) SuspendCard(id int64) error {
	c, err := s.Card(id)
	if err != nil {
		return err
	}
	c.Queue = domain.QueueSuspended
	return nil
}

// UnsuspendCard returns a suspended card to the queue implied by its
// type.
func (s *Store) UnsuspendCard(id int64) error {
	c, err := s.Card(id)
	if err != nil {
		return err
	}
	if c.Queue != domain.QueueSuspended {
		return nil
	}
	switch c.Type {
	case domain.CardTypeLearning:
		c.Queue = domain.QueueLearning
	case domain.CardTypeReview:
		c.Queue = domain.QueueReview
	case domain.CardTypeRelearning:
		c.Queue = domain.QueueRelearning
	default:
		c.Queue = domain.QueueNew
	}
	return nil
}
