package domain

import (
	"errors"
	"strings"
	"time"
)

// FieldSeparator joins a note's field values into the single packed
// string stored on the note. It is a reserved control byte and must
// never appear inside user-entered field content.
const FieldSeparator = "\x1f"

// Note-specific validation errors
var (
	// ErrNoteModelEmpty is returned when a note has no owning model id.
	ErrNoteModelEmpty = errors.New("note model ID cannot be empty")

	// ErrNoteNoFields is returned when a note carries no field values.
	ErrNoteNoFields = errors.New("note must carry at least one field value")

	// ErrFieldSeparator is returned when user content contains the
	// reserved field separator byte.
	ErrFieldSeparator = errors.New("field content cannot contain the reserved separator byte")
)

// Note is a single piece of study content: N field values packed with
// FieldSeparator, plus whitespace-delimited tags. A note owns between
// one and K cards; the store keeps that ownership consistent.
type Note struct {
	ID        int64     `json:"id"`
	ModelID   int64     `json:"model_id"`
	FieldsRaw string    `json:"fields"`
	Tags      string    `json:"tags"`
	Mod       time.Time `json:"mod"`
}

// JoinFields packs field values into the stored representation.
// It fails if any value contains the reserved separator.
func JoinFields(values []string) (string, error) {
	for _, v := range values {
		if strings.Contains(v, FieldSeparator) {
			return "", ErrFieldSeparator
		}
	}
	return strings.Join(values, FieldSeparator), nil
}

// SplitFields unpacks a stored field string into individual values.
func SplitFields(raw string) []string {
	return strings.Split(raw, FieldSeparator)
}

// NewNote creates a note owned by the given model with the given field
// values. The caller (the store) is responsible for checking the value
// count against the model.
func NewNote(id, modelID int64, values []string) (*Note, error) {
	raw, err := JoinFields(values)
	if err != nil {
		return nil, err
	}
	n := &Note{
		ID:        id,
		ModelID:   modelID,
		FieldsRaw: raw,
		Mod:       time.Now().UTC(),
	}
	if err := n.Validate(); err != nil {
		return nil, err
	}
	return n, nil
}

// Validate checks the note's local invariants.
func (n *Note) Validate() error {
	if n.ModelID == 0 {
		return ErrNoteModelEmpty
	}
	if n.FieldsRaw == "" {
		return ErrNoteNoFields
	}
	return nil
}

// Fields returns the unpacked field values.
func (n *Note) Fields() []string {
	return SplitFields(n.FieldsRaw)
}

// SetFields replaces the note's field values and bumps its modification
// time. The field count invariant against the model is the store's job.
func (n *Note) SetFields(values []string) error {
	raw, err := JoinFields(values)
	if err != nil {
		return err
	}
	n.FieldsRaw = raw
	n.Mod = time.Now().UTC()
	return nil
}

// TagList returns the note's tags as a slice, empty for no tags.
func (n *Note) TagList() []string {
	return strings.Fields(n.Tags)
}

// HasTag reports exact membership of tag in the note's tag set.
func (n *Note) HasTag(tag string) bool {
	for _, t := range n.TagList() {
		if t == tag {
			return true
		}
	}
	return false
}

// AddTag adds tag to the note's tag set if absent.
func (n *Note) AddTag(tag string) {
	if tag == "" || n.HasTag(tag) {
		return
	}
	tags := append(n.TagList(), tag)
	n.Tags = strings.Join(tags, " ")
	n.Mod = time.Now().UTC()
}

// RemoveTag removes tag from the note's tag set if present.
func (n *Note) RemoveTag(tag string) {
	var kept []string
	for _, t := range n.TagList() {
		if t != tag {
			kept = append(kept, t)
		}
	}
	n.Tags = strings.Join(kept, " ")
	n.Mod = time.Now().UTC()
}
