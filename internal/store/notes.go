package store

import (
	"github.com/mnemo-app/mnemo/internal/cloze"
	"github.com/mnemo-app/mnemo/internal/domain"
)

// CreateNote builds a note from field values, inserts it and generates
// its cards in the given deck: one per template for a standard model,
// one per distinct cloze index in the first field for a cloze model.
func (s *Store) CreateNote(modelID, deckID int64, values []string, tags string) (*domain.Note, error) {
	m, err := s.Model(modelID)
	if err != nil {
		return nil, err
	}
	if _, err := s.Deck(deckID); err != nil {
		return nil, err
	}
	if len(values) != len(m.Fields) {
		return nil, storeErr("note", "create", ErrFieldCount)
	}

	n, err := domain.NewNote(s.NextID(), modelID, values)
	if err != nil {
		return nil, storeErr("note", "create", err)
	}
	n.Tags = tags
	s.notes[n.ID] = n

	for _, ord := range s.cardOrdinals(m, values) {
		card, err := domain.NewCard(s.NextID(), n.ID, deckID, ord)
		if err != nil {
			delete(s.notes, n.ID)
			return nil, storeErr("card", "generate", err)
		}
		s.cards[card.ID] = card
	}
	return n, nil
}

// InsertNote inserts a pre-built note without generating cards. Used by
// the importer, which carries the cards of the archive explicitly.
func (s *Store) InsertNote(n *domain.Note) error {
	if err := n.Validate(); err != nil {
		return storeErr("note", "insert", err)
	}
	m, err := s.Model(n.ModelID)
	if err != nil {
		return err
	}
	if len(n.Fields()) != len(m.Fields) {
		return storeErr("note", "insert", ErrFieldCount)
	}
	if n.ID == 0 {
		n.ID = s.NextID()
	} else if _, exists := s.notes[n.ID]; exists {
		return storeErr("note", "insert", ErrDuplicate)
	}
	s.notes[n.ID] = n
	return nil
}

// Note returns the note with the given id.
func (s *Store) Note(id int64) (*domain.Note, error) {
	n, ok := s.notes[id]
	if !ok {
		return nil, ErrNoteNotFound
	}
	return n, nil
}

// Notes returns all notes ordered by id.
func (s *Store) Notes() []*domain.Note {
	out := make([]*domain.Note, 0, len(s.notes))
	for _, id := range sortedIDs(s.notes) {
		out = append(out, s.notes[id])
	}
	return out
}

// UpdateNoteFields replaces a note's field values. For cloze notes the
// card set is recomputed from the old and new index sets: a new index
// gains a card (reviving a soft-deleted one if the index returns), a
// vanished index soft-deletes its card so review history survives.
func (s *Store) UpdateNoteFields(noteID int64, values []string) error {
	n, err := s.Note(noteID)
	if err != nil {
		return err
	}
	m, err := s.Model(n.ModelID)
	if err != nil {
		return err
	}
	if len(values) != len(m.Fields) {
		return storeErr("note", "update", ErrFieldCount)
	}

	oldFirst := n.Fields()[0]
	if err := n.SetFields(values); err != nil {
		return storeErr("note", "update", err)
	}
	if !m.IsCloze() {
		return nil
	}
	return s.syncClozeCards(n, oldFirst, values[0])
}

// DeleteNote removes a note and cascades the hard delete to every card
// it owns, soft-deleted cards included.
func (s *Store) DeleteNote(noteID int64) error {
	if _, err := s.Note(noteID); err != nil {
		return err
	}
	delete(s.notes, noteID)
	for id, c := range s.cards {
		if c.NoteID == noteID {
			delete(s.cards, id)
		}
	}
	return nil
}

// cardOrdinals lists the template ordinals a fresh note produces.
func (s *Store) cardOrdinals(m *domain.Model, values []string) []int {
	if m.IsCloze() {
		indices := cloze.Indices(values[0])
		ords := make([]int, 0, len(indices))
		for _, idx := range indices {
			ords = append(ords, idx-1)
		}
		if len(ords) == 0 {
			// A cloze note with no markers still yields one card so the
			// content stays reachable.
			ords = []int{0}
		}
		return ords
	}
	ords := make([]int, 0, len(m.Templates))
	for _, t := range m.Templates {
		ords = append(ords, t.Ord)
	}
	return ords
}

// syncClozeCards diffs the cloze index sets of the old and new first
// field and adjusts the note's cards to match.
func (s *Store) syncClozeCards(n *domain.Note, oldText, newText string) error {
	oldSet := make(map[int]struct{})
	for _, idx := range cloze.Indices(oldText) {
		oldSet[idx] = struct{}{}
	}
	newSet := make(map[int]struct{})
	for _, idx := range cloze.Indices(newText) {
		newSet[idx] = struct{}{}
	}

	byOrd := make(map[int]*domain.Card)
	for _, c := range s.cards {
		if c.NoteID == n.ID {
			byOrd[c.Ord] = c
		}
	}

	deckID := s.homeDeckOfNote(n.ID)
	for idx := range newSet {
		if _, had := oldSet[idx]; had {
			continue
		}
		if existing, ok := byOrd[idx-1]; ok {
			existing.Deleted = false
			continue
		}
		if deckID == 0 {
			return storeErr("card", "generate", ErrDeckNotFound)
		}
		card, err := domain.NewCard(s.NextID(), n.ID, deckID, idx-1)
		if err != nil {
			return storeErr("card", "generate", err)
		}
		s.cards[card.ID] = card
	}
	for idx := range oldSet {
		if _, still := newSet[idx]; still {
			continue
		}
		if c, ok := byOrd[idx-1]; ok {
			c.Deleted = true
		}
	}
	return nil
}

// homeDeckOfNote picks the deck new sibling cards should land in: the
// deck of the note's lowest-ordinal card, or 0 when the note has none.
func (s *Store) homeDeckOfNote(noteID int64) int64 {
	best := int64(0)
	bestOrd := -1
	for _, c := range s.cards {
		if c.NoteID != noteID {
			continue
		}
		if bestOrd == -1 || c.Ord < bestOrd {
			bestOrd = c.Ord
			best = c.DeckID
		}
	}
	return best
}
