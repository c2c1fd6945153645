package scheduler

import (
	"log/slog"
	"sort"
	"time"

	"github.com/mnemo-app/mnemo/internal/domain"
)

// Session is one study pass over a deck and its descendants. Daily
// counters are recomputed from the store's cards at bootstrap, never
// cached across restarts.
type Session struct {
	engine *Engine
	deckID int64

	newRemaining    int
	reviewRemaining int
}

// NewSession bootstraps a session for the deck. The deck's daily caps
// are reduced by the answers already given today, counted from the
// first/last-answered stamps on the cards themselves.
func (e *Engine) NewSession(deckID int64) (*Session, error) {
	deck, err := e.store.Deck(deckID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	today := e.Today(now)

	cards, err := e.deckCards(deckID)
	if err != nil {
		return nil, err
	}

	newToday, reviewsToday := 0, 0
	for _, c := range cards {
		if !c.FirstAnswered.IsZero() && e.Today(c.FirstAnswered) == today {
			newToday++
		}
		if !c.LastAnswered.IsZero() && e.Today(c.LastAnswered) == today &&
			(c.Type == domain.CardTypeReview || c.Type == domain.CardTypeRelearning) {
			reviewsToday++
		}
	}

	return &Session{
		engine:          e,
		deckID:          deckID,
		newRemaining:    maxInt(0, deck.NewPerDay-newToday),
		reviewRemaining: maxInt(0, deck.ReviewsPerDay-reviewsToday),
	}, nil
}

// Next returns the card to show now, or nil when the session has
// nothing due. Learning cards whose timestamp has passed come first,
// then due review cards, then new cards up to the daily cap.
func (s *Session) Next() *domain.Card {
	e := s.engine
	now := e.now()
	today := e.Today(now)

	cards, err := e.deckCards(s.deckID)
	if err != nil {
		// The deck existed at bootstrap; keep the inconsistency visible
		// instead of turning it into an empty session.
		slog.Debug("session deck no longer resolvable", "deck_id", s.deckID, "error", err)
		return nil
	}

	if c := firstLearning(cards, now); c != nil {
		return c
	}
	if s.reviewRemaining > 0 {
		if c := firstReview(cards, today); c != nil {
			return c
		}
	}
	if s.newRemaining > 0 {
		if c := firstNew(cards); c != nil {
			return c
		}
	}
	return nil
}

// Answer applies the rating through the engine and updates the
// session's remaining caps based on the queue the card came from.
func (s *Session) Answer(cardID int64, rating Rating) (*AnswerResult, error) {
	before, err := s.engine.store.Card(cardID)
	if err != nil {
		return nil, err
	}
	wasNew := before.Queue == domain.QueueNew
	wasReview := before.Queue == domain.QueueReview

	res, err := s.engine.Answer(cardID, rating)
	if err != nil {
		return nil, err
	}

	if wasNew && s.newRemaining > 0 {
		s.newRemaining--
	}
	if wasReview && s.reviewRemaining > 0 {
		s.reviewRemaining--
	}
	return res, nil
}

// Remaining reports the new/review caps left for today.
func (s *Session) Remaining() (newCards, reviews int) {
	return s.newRemaining, s.reviewRemaining
}

// deckCards collects the live cards of the deck and every descendant.
func (e *Engine) deckCards(deckID int64) ([]*domain.Card, error) {
	ids, err := e.store.DeckWithChildren(deckID)
	if err != nil {
		return nil, err
	}
	var out []*domain.Card
	for _, id := range ids {
		out = append(out, e.store.CardsInDeck(id)...)
	}
	return out, nil
}

func firstLearning(cards []*domain.Card, now time.Time) *domain.Card {
	var due []*domain.Card
	for _, c := range cards {
		if (c.Queue == domain.QueueLearning || c.Queue == domain.QueueRelearning) &&
			c.Due <= now.Unix() {
			due = append(due, c)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool { return due[i].Due < due[j].Due })
	return due[0]
}

func firstReview(cards []*domain.Card, today int64) *domain.Card {
	var due []*domain.Card
	for _, c := range cards {
		if c.Queue == domain.QueueReview && c.Due <= today {
			due = append(due, c)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].Due != due[j].Due {
			return due[i].Due < due[j].Due
		}
		return due[i].ID < due[j].ID
	})
	return due[0]
}

func firstNew(cards []*domain.Card) *domain.Card {
	var fresh []*domain.Card
	for _, c := range cards {
		if c.Queue == domain.QueueNew {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		return nil
	}
	sort.Slice(fresh, func(i, j int) bool { return fresh[i].ID < fresh[j].ID })
	return fresh[0]
}
