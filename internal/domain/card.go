package domain

import (
	"errors"
	"time"
)

// Card-specific validation errors
var (
	// ErrCardNoteEmpty is returned when a card has no owning note id.
	ErrCardNoteEmpty = errors.New("card note ID cannot be empty")

	// ErrCardDeckEmpty is returned when a card has no owning deck id.
	ErrCardDeckEmpty = errors.New("card deck ID cannot be empty")

	// ErrCardOrdNegative is returned for a negative template ordinal.
	ErrCardOrdNegative = errors.New("card ordinal cannot be negative")

	// ErrCardEaseInvalid is returned when the ease factor is below the
	// hard floor of the permille representation.
	ErrCardEaseInvalid = errors.New("card ease factor must be at least 1000 permille")
)

// Queue is a card's current scheduling queue.
type Queue int

const (
	QueueNew Queue = iota
	QueueLearning
	QueueReview
	QueueRelearning
	QueueSuspended
)

// String returns the queue's display label.
func (q Queue) String() string {
	switch q {
	case QueueNew:
		return "new"
	case QueueLearning:
		return "learning"
	case QueueReview:
		return "review"
	case QueueRelearning:
		return "relearning"
	case QueueSuspended:
		return "suspended"
	}
	return "unknown"
}

// CardType labels the learning phase a card is in. It mirrors Queue for
// active cards but survives suspension, so a suspended review card is
// still typed Review.
type CardType int

const (
	CardTypeNew CardType = iota
	CardTypeLearning
	CardTypeReview
	CardTypeRelearning
)

// EaseStart is the baseline ease factor in permille (250%).
const EaseStart = 2500

// Card is one reviewable instance derived from a note. It carries all
// scheduling state. Due semantics depend on the queue: a day counter
// relative to the collection epoch for review cards, an absolute Unix
// timestamp for cards inside a learning step.
type Card struct {
	ID       int64    `json:"id"`
	NoteID   int64    `json:"note_id"`
	DeckID   int64    `json:"deck_id"`
	Ord      int      `json:"ord"`
	Queue    Queue    `json:"queue"`
	Type     CardType `json:"type"`
	Due      int64    `json:"due"`
	Interval int      `json:"interval"` // days
	Ease     int      `json:"ease"`     // permille
	Reps     int      `json:"reps"`
	Lapses   int      `json:"lapses"`
	Left     int      `json:"left"` // remaining learning steps
	ODue     int64    `json:"odue"`
	ODeckID  int64    `json:"odeck_id"`
	Flags    int      `json:"flags"`
	Deleted  bool     `json:"deleted"`

	// FirstAnswered and LastAnswered let daily study counters be
	// recomputed from card rows alone, without a separate review log.
	FirstAnswered time.Time `json:"first_answered,omitzero"`
	LastAnswered  time.Time `json:"last_answered,omitzero"`

	Mod time.Time `json:"mod"`
}

// NewCard creates a new-queue card for the given note, deck and template
// ordinal. Due starts at the card id so new cards surface in creation
// order.
func NewCard(id, noteID, deckID int64, ord int) (*Card, error) {
	c := &Card{
		ID:     id,
		NoteID: noteID,
		DeckID: deckID,
		Ord:    ord,
		Queue:  QueueNew,
		Type:   CardTypeNew,
		Due:    id,
		Ease:   EaseStart,
		Mod:    time.Now().UTC(),
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the card's local invariants.
func (c *Card) Validate() error {
	if c.NoteID == 0 {
		return ErrCardNoteEmpty
	}
	if c.DeckID == 0 {
		return ErrCardDeckEmpty
	}
	if c.Ord < 0 {
		return ErrCardOrdNegative
	}
	if c.Ease < 1000 {
		return ErrCardEaseInvalid
	}
	return nil
}

// Clone returns a copy of the card. Scheduler transitions mutate the
// copy and swap it back in whole, so a failed transition never leaves a
// half-updated row visible.
func (c *Card) Clone() *Card {
	dup := *c
	return &dup
}

// InFiltered reports whether the card is temporarily relocated and
// carries snapshot values in ODue/ODeckID.
func (c *Card) InFiltered() bool {
	return c.ODeckID != 0
}
