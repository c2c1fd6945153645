package domain

import (
	"errors"
	"time"
)

// Model-specific validation errors
var (
	// ErrModelNameEmpty is returned when a model has no name.
	ErrModelNameEmpty = errors.New("model name cannot be empty")

	// ErrModelNoFields is returned when a model defines no fields.
	ErrModelNoFields = errors.New("model must define at least one field")

	// ErrModelNoTemplates is returned when a standard model defines no card templates.
	ErrModelNoTemplates = errors.New("standard model must define at least one template")

	// ErrModelDuplicateField is returned when two fields share a name.
	ErrModelDuplicateField = errors.New("model field names must be unique")

	// ErrModelKindInvalid is returned for an unknown model kind.
	ErrModelKindInvalid = errors.New("invalid model kind")
)

// ModelKind discriminates how a model turns a note into cards.
type ModelKind string

const (
	// ModelStandard generates one card per template.
	ModelStandard ModelKind = "standard"

	// ModelCloze generates one card per distinct cloze index in the
	// note's first field.
	ModelCloze ModelKind = "cloze"
)

// Template is one card layout of a model. Ord is the template's position
// and doubles as the card ordinal for standard models.
type Template struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// Model is a note type: an ordered set of field names plus the card
// templates rendered from them. Once notes exist against a model only
// additive changes (new fields, new templates) are permitted; the store
// enforces that restriction.
type Model struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Fields    []string   `json:"fields"`
	Templates []Template `json:"templates"`
	Kind      ModelKind  `json:"kind"`
	Mod       time.Time  `json:"mod"`
}

// NewModel creates a model with the given name, ordered field names and
// templates. Cloze models ignore templates for card generation but may
// still carry one for rendering.
func NewModel(id int64, name string, kind ModelKind, fields []string, templates []string) (*Model, error) {
	m := &Model{
		ID:     id,
		Name:   name,
		Fields: append([]string(nil), fields...),
		Kind:   kind,
		Mod:    time.Now().UTC(),
	}
	for i, t := range templates {
		m.Templates = append(m.Templates, Template{Name: t, Ord: i})
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the model's local invariants.
func (m *Model) Validate() error {
	if m.Name == "" {
		return ErrModelNameEmpty
	}
	if len(m.Fields) == 0 {
		return ErrModelNoFields
	}
	seen := make(map[string]struct{}, len(m.Fields))
	for _, f := range m.Fields {
		if _, dup := seen[f]; dup {
			return ErrModelDuplicateField
		}
		seen[f] = struct{}{}
	}
	switch m.Kind {
	case ModelStandard:
		if len(m.Templates) == 0 {
			return ErrModelNoTemplates
		}
	case ModelCloze:
		// Cloze card count comes from the note text, not templates.
	default:
		return ErrModelKindInvalid
	}
	return nil
}

// FieldIndex returns the ordinal of the named field, or -1.
func (m *Model) FieldIndex(name string) int {
	for i, f := range m.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// IsCloze reports whether the model derives cards from cloze markers.
func (m *Model) IsCloze() bool {
	return m.Kind == ModelCloze
}
