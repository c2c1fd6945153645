package domain

import (
	"errors"
	"strings"
	"time"
)

// DeckSeparator separates hierarchy levels in a deck's display name,
// e.g. "Spanish::Verbs". Hierarchy is purely a naming convention; no
// parent pointers are stored.
const DeckSeparator = "::"

// Deck-specific validation errors
var (
	// ErrDeckNameEmpty is returned when a deck has no name.
	ErrDeckNameEmpty = errors.New("deck name cannot be empty")

	// ErrDeckNameInvalid is returned when a deck name has an empty
	// hierarchy component ("A::::B" or a leading/trailing separator).
	ErrDeckNameInvalid = errors.New("deck name has an empty hierarchy component")

	// ErrDeckLimitNegative is returned for a negative daily limit.
	ErrDeckLimitNegative = errors.New("deck daily limits cannot be negative")
)

// Deck is a named bucket of cards with per-day study limits. Decks form
// a hierarchy by name prefix only.
type Deck struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	NewPerDay     int       `json:"new_per_day"`
	ReviewsPerDay int       `json:"reviews_per_day"`
	Collapsed     bool      `json:"collapsed"`
	Mod           time.Time `json:"mod"`
}

// Default daily limits for a fresh deck.
const (
	DefaultNewPerDay     = 20
	DefaultReviewsPerDay = 200
)

// NewDeck creates a deck with default daily limits.
func NewDeck(id int64, name string) (*Deck, error) {
	d := &Deck{
		ID:            id,
		Name:          name,
		NewPerDay:     DefaultNewPerDay,
		ReviewsPerDay: DefaultReviewsPerDay,
		Mod:           time.Now().UTC(),
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks the deck's local invariants.
func (d *Deck) Validate() error {
	if d.Name == "" {
		return ErrDeckNameEmpty
	}
	for _, part := range strings.Split(d.Name, DeckSeparator) {
		if part == "" {
			return ErrDeckNameInvalid
		}
	}
	if d.NewPerDay < 0 || d.ReviewsPerDay < 0 {
		return ErrDeckLimitNegative
	}
	return nil
}

// Components returns the deck name split into hierarchy levels.
func (d *Deck) Components() []string {
	return strings.Split(d.Name, DeckSeparator)
}

// ParentName returns the name of the deck's parent, or "" for a root
// deck.
func (d *Deck) ParentName() string {
	idx := strings.LastIndex(d.Name, DeckSeparator)
	if idx < 0 {
		return ""
	}
	return d.Name[:idx]
}

// IsAncestorOf reports whether other sits below this deck in the name
// hierarchy. A deck is not its own ancestor.
func (d *Deck) IsAncestorOf(other *Deck) bool {
	return strings.HasPrefix(other.Name, d.Name+DeckSeparator)
}

// DeckAncestorNames lists every ancestor name of the given deck name,
// outermost first: "A::B::C" yields ["A", "A::B"].
func DeckAncestorNames(name string) []string {
	parts := strings.Split(name, DeckSeparator)
	var out []string
	for i := 1; i < len(parts); i++ {
		out = append(out, strings.Join(parts[:i], DeckSeparator))
	}
	return out
}
