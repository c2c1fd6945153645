package store

import (
	"github.com/mnemo-app/mnemo/internal/domain"
)

// AddModel inserts a model. An id of zero is assigned from the
// allocator; a non-zero id must be unused.
func (s *Store) AddModel(m *domain.Model) error {
	if err := m.Validate(); err != nil {
		return storeErr("model", "add", err)
	}
	if m.ID == 0 {
		m.ID = s.NextID()
	} else if _, exists := s.models[m.ID]; exists {
		return storeErr("model", "add", ErrDuplicate)
	}
	s.models[m.ID] = m
	return nil
}

// Model returns the model with the given id.
func (s *Store) Model(id int64) (*domain.Model, error) {
	m, ok := s.models[id]
	if !ok {
		return nil, ErrModelNotFound
	}
	return m, nil
}

// Models returns all models ordered by id.
func (s *Store) Models() []*domain.Model {
	out := make([]*domain.Model, 0, len(s.models))
	for _, id := range sortedIDs(s.models) {
		out = append(out, s.models[id])
	}
	return out
}

// modelHasNotes reports whether any note references the model.
func (s *Store) modelHasNotes(modelID int64) bool {
	for _, n := range s.notes {
		if n.ModelID == modelID {
			return true
		}
	}
	return false
}

// AddFieldToModel appends a field to a model. Existing notes are padded
// with an empty value so the packed-field-count invariant holds.
func (s *Store) AddFieldToModel(modelID int64, name string) error {
	m, err := s.Model(modelID)
	if err != nil {
		return err
	}
	if m.FieldIndex(name) >= 0 {
		return storeErr("model", "add field", domain.ErrModelDuplicateField)
	}
	m.Fields = append(m.Fields, name)

	for _, n := range s.notes {
		if n.ModelID != modelID {
			continue
		}
		if err := n.SetFields(append(n.Fields(), "")); err != nil {
			return storeErr("note", "pad fields", err)
		}
	}
	return nil
}

// AddTemplateToModel appends a card template to a standard model and
// generates the missing card for every existing note of that model.
// New cards land in the deck of the note's first existing card.
func (s *Store) AddTemplateToModel(modelID int64, name string) error {
	m, err := s.Model(modelID)
	if err != nil {
		return err
	}
	if m.IsCloze() {
		return storeErr("model", "add template", ErrModelFrozen)
	}
	ord := len(m.Templates)
	m.Templates = append(m.Templates, domain.Template{Name: name, Ord: ord})

	for _, noteID := range sortedIDs(s.notes) {
		n := s.notes[noteID]
		if n.ModelID != modelID {
			continue
		}
		deckID := s.homeDeckOfNote(n.ID)
		if deckID == 0 {
			continue
		}
		card, err := domain.NewCard(s.NextID(), n.ID, deckID, ord)
		if err != nil {
			return storeErr("card", "generate", err)
		}
		s.cards[card.ID] = card
	}
	return nil
}
