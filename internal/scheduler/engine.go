package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/mnemo-app/mnemo/internal/config"
	"github.com/mnemo-app/mnemo/internal/domain"
	"github.com/mnemo-app/mnemo/internal/store"
)

// Scheduler errors
var (
	// ErrInvalidRating is returned for a rating outside Again..Easy.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrNotStudiable is returned when answering a suspended or
	// soft-deleted card; the card is left unchanged.
	ErrNotStudiable = errors.New("card is not in a studiable queue")

	// ErrNotFiltered is returned when restoring a card that is not in
	// a temporary deck.
	ErrNotFiltered = errors.New("card is not in a filtered deck")
)

// AnswerResult reports the outcome of one answer.
type AnswerResult struct {
	Card *domain.Card

	// Leech is set when the card's lapse count has crossed the
	// configured threshold. Reported only; the card is not suspended.
	Leech bool
}

// Engine mutates card scheduling state inside a store it is handed.
type Engine struct {
	store *store.Store
	cfg   config.SchedulerConfig
	now   func() time.Time
	rng   *rand.Rand
}

// New creates an engine over the given store with the given tuning.
func New(s *store.Store, cfg config.SchedulerConfig) *Engine {
	return NewWithClock(s, cfg, time.Now, time.Now().UnixNano())
}

// NewWithClock creates an engine with an injected clock and fuzz seed,
// for deterministic tests.
func NewWithClock(s *store.Store, cfg config.SchedulerConfig, now func() time.Time, seed int64) *Engine {
	return &Engine{
		store: s,
		cfg:   cfg,
		now:   now,
		rng:   rand.New(rand.NewSource(seed)),
	}
}

// Today returns the collection day counter for the given instant: the
// number of whole days since midnight UTC of the collection epoch.
func (e *Engine) Today(now time.Time) int64 {
	epoch := e.store.CreatedAt().UTC().Truncate(24 * time.Hour)
	return int64(now.UTC().Sub(epoch) / (24 * time.Hour))
}

// Answer applies one review answer to the card. The full state
// transition is computed on a clone and committed in a single row swap.
func (e *Engine) Answer(cardID int64, rating Rating) (*AnswerResult, error) {
	if !rating.Valid() {
		return nil, ErrInvalidRating
	}
	orig, err := e.store.Card(cardID)
	if err != nil {
		return nil, err
	}
	if orig.Deleted || orig.Queue == domain.QueueSuspended {
		return nil, ErrNotStudiable
	}

	now := e.now()
	c := orig.Clone()
	leech := false

	switch c.Queue {
	case domain.QueueNew:
		e.startLearning(c)
		e.answerLearning(c, rating, now)
	case domain.QueueLearning, domain.QueueRelearning:
		e.answerLearning(c, rating, now)
	case domain.QueueReview:
		leech = e.answerReview(c, rating, now)
	default:
		return nil, ErrNotStudiable
	}

	c.Reps++
	if c.FirstAnswered.IsZero() {
		c.FirstAnswered = now.UTC()
	}
	c.LastAnswered = now.UTC()
	c.Mod = now.UTC()

	if err := e.store.UpdateCard(c); err != nil {
		return nil, fmt.Errorf("commit answer: %w", err)
	}
	return &AnswerResult{Card: c, Leech: leech}, nil
}

// startLearning moves a new card into the learning queue at the first
// step.
func (e *Engine) startLearning(c *domain.Card) {
	c.Queue = domain.QueueLearning
	c.Type = domain.CardTypeLearning
	c.Left = len(e.cfg.LearnSteps)
}

// answerLearning walks a card through its (re)learning steps.
func (e *Engine) answerLearning(c *domain.Card, rating Rating, now time.Time) {
	steps := e.cfg.LearnSteps
	if c.Queue == domain.QueueRelearning {
		steps = e.cfg.RelearnSteps
	}
	if c.Left <= 0 || c.Left > len(steps) {
		c.Left = len(steps)
	}

	switch rating {
	case Again:
		c.Left = len(steps)
		e.scheduleStep(c, steps[0], now)
	case Hard:
		// Repeat the current step.
		e.scheduleStep(c, steps[len(steps)-c.Left], now)
	case Good:
		c.Left--
		if c.Left <= 0 {
			e.graduate(c, rating, now)
			return
		}
		e.scheduleStep(c, steps[len(steps)-c.Left], now)
	case Easy:
		e.graduate(c, rating, now)
	}
}

// scheduleStep makes the card due stepMinutes from now, as an absolute
// timestamp.
func (e *Engine) scheduleStep(c *domain.Card, stepMinutes int, now time.Time) {
	c.Due = now.Add(time.Duration(stepMinutes) * time.Minute).Unix()
}

// graduate promotes a card out of its learning steps into the review
// queue. A learning card earns the graduating (or easy) interval; a
// relearning card carries its lapse-reduced interval back.
func (e *Engine) graduate(c *domain.Card, rating Rating, now time.Time) {
	if c.Queue == domain.QueueLearning {
		if rating == Easy {
			c.Interval = e.cfg.EasyInterval
		} else {
			c.Interval = e.cfg.GraduatingInterval
		}
	}
	// Relearning keeps the interval assigned at lapse time.

	c.Queue = domain.QueueReview
	c.Type = domain.CardTypeReview
	c.Left = 0
	c.Due = e.Today(now) + int64(c.Interval)
}

// answerReview applies a review answer and reports leech status.
func (e *Engine) answerReview(c *domain.Card, rating Rating, now time.Time) bool {
	if rating == Again {
		return e.lapse(c, now)
	}

	switch rating {
	case Hard:
		c.Ease = maxInt(e.cfg.MinEase, c.Ease+e.cfg.HardEaseDelta)
		c.Interval = e.nextInterval(c.Interval, float64(c.Interval)*e.cfg.HardMultiplier)
	case Good:
		c.Interval = e.nextInterval(c.Interval, float64(c.Interval)*easeFactor(c.Ease))
	case Easy:
		c.Ease += e.cfg.EasyEaseDelta
		c.Interval = e.nextInterval(c.Interval, float64(c.Interval)*easeFactor(c.Ease)*e.cfg.EasyBonus)
	}
	c.Due = e.Today(now) + int64(c.Interval)
	return false
}

// lapse sends a review card to relearning with a reduced interval.
func (e *Engine) lapse(c *domain.Card, now time.Time) bool {
	c.Lapses++
	c.Ease = maxInt(e.cfg.MinEase, c.Ease+e.cfg.AgainEaseDelta)

	ivl := int(float64(c.Interval) * e.cfg.LapseMultiplier)
	if ivl < e.cfg.LapseMinInterval {
		ivl = e.cfg.LapseMinInterval
	}
	c.Interval = ivl

	c.Queue = domain.QueueRelearning
	c.Type = domain.CardTypeRelearning
	c.Left = len(e.cfg.RelearnSteps)
	e.scheduleStep(c, e.cfg.RelearnSteps[0], now)

	return c.Lapses >= e.cfg.LeechThreshold
}

// nextInterval turns a raw computed interval into the stored one:
// always at least one day longer than before, fuzzed within the
// configured bound, capped at the maximum.
func (e *Engine) nextInterval(prev int, raw float64) int {
	ivl := int(raw * e.cfg.IntervalMultiplier)
	if ivl <= prev {
		ivl = prev + 1
	}
	ivl = e.fuzz(ivl)
	if ivl <= prev {
		// Fuzz must not undo the growth guarantee.
		ivl = prev + 1
	}
	if ivl > e.cfg.MaxInterval {
		ivl = e.cfg.MaxInterval
	}
	if ivl < 1 {
		ivl = 1
	}
	return ivl
}

// fuzz jitters an interval within ±FuzzPercent (at least one day) so
// cards reviewed together drift apart. Short intervals are left alone.
func (e *Engine) fuzz(ivl int) int {
	if ivl <= 2 || e.cfg.FuzzPercent <= 0 {
		return ivl
	}
	span := int(float64(ivl) * e.cfg.FuzzPercent)
	if span < 1 {
		span = 1
	}
	return ivl + e.rng.Intn(2*span+1) - span
}

// MoveToFiltered relocates a card into a temporary deck, snapshotting
// its due value and home deck for later restore.
func (e *Engine) MoveToFiltered(cardID, deckID int64) error {
	orig, err := e.store.Card(cardID)
	if err != nil {
		return err
	}
	if _, err := e.store.Deck(deckID); err != nil {
		return err
	}

	c := orig.Clone()
	c.ODue = c.Due
	c.ODeckID = c.DeckID
	c.DeckID = deckID
	c.Mod = e.now().UTC()
	return e.store.UpdateCard(c)
}

// RestoreFromFiltered returns a relocated card to its home deck,
// restoring the snapshotted due value and clearing the snapshot.
func (e *Engine) RestoreFromFiltered(cardID int64) error {
	orig, err := e.store.Card(cardID)
	if err != nil {
		return err
	}
	if !orig.InFiltered() {
		return ErrNotFiltered
	}

	c := orig.Clone()
	c.Due = c.ODue
	c.DeckID = c.ODeckID
	c.ODue = 0
	c.ODeckID = 0
	c.Mod = e.now().UTC()
	return e.store.UpdateCard(c)
}

func easeFactor(permille int) float64 {
	return float64(permille) / 1000
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
