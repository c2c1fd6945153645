package search

import (
	"sort"
	"strings"

	"github.com/mnemo-app/mnemo/internal/config"
	"github.com/mnemo-app/mnemo/internal/domain"
	"github.com/mnemo-app/mnemo/internal/store"
)

// Per-token match scores. A query token must match somewhere for the
// note to qualify; the strongest match per token wins.
const (
	scoreExact     = 10
	scorePrefix    = 6
	scoreSubstring = 3
	scoreTag       = 15
)

// Filter narrows a search. Zero values mean "no restriction"; a DeckID
// covers the deck and every deck below it in the name hierarchy.
type Filter struct {
	DeckID int64
	Tag    string
	Limit  int
}

// Result is one search hit.
type Result struct {
	NoteID int64
	Score  int
}

type document struct {
	text   string
	tokens []string
	tags   []string
}

// Index is the full-text index over the store's notes.
type Index struct {
	store *store.Store
	cfg   config.SearchConfig
	docs  map[int64]*document
	dirty bool
}

// New creates an empty index. Call IndexAll (or let the first search do
// it) before querying.
func New(s *store.Store, cfg config.SearchConfig) *Index {
	return &Index{
		store: s,
		cfg:   cfg,
		docs:  make(map[int64]*document),
		dirty: true,
	}
}

// IndexAll rebuilds the whole index from the store.
func (ix *Index) IndexAll() {
	ix.docs = make(map[int64]*document)
	for _, n := range ix.store.Notes() {
		ix.docs[n.ID] = buildDocument(n)
	}
	ix.dirty = false
}

// IndexNote adds or refreshes one note.
func (ix *Index) IndexNote(n *domain.Note) {
	ix.docs[n.ID] = buildDocument(n)
}

// UpdateNote refreshes one note after an edit.
func (ix *Index) UpdateNote(n *domain.Note) {
	ix.IndexNote(n)
}

// RemoveNote drops a note from the index.
func (ix *Index) RemoveNote(noteID int64) {
	delete(ix.docs, noteID)
}

// MarkDirty schedules a full rebuild before the next search. Used by
// callers that mutate the store without going through the index.
func (ix *Index) MarkDirty() {
	ix.dirty = true
}

// Search scores every indexed note against the query. Every query token
// must match the note somewhere; an empty or unusable query returns no
// hits rather than everything.
func (ix *Index) Search(query string, f Filter) []Result {
	if ix.dirty {
		ix.IndexAll()
	}

	terms := tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	inDeck := ix.deckFilter(f.DeckID)
	tag := strings.ToLower(f.Tag)

	var results []Result
	for noteID, doc := range ix.docs {
		if inDeck != nil && !inDeck[noteID] {
			continue
		}
		if tag != "" && !containsToken(doc.tags, tag) {
			continue
		}
		score, ok := scoreDocument(doc, terms)
		if !ok {
			continue
		}
		results = append(results, Result{NoteID: noteID, Score: score})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].NoteID < results[b].NoteID
	})

	limit := f.Limit
	if limit <= 0 {
		limit = ix.cfg.DefaultLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Preview returns the note's plain text, truncated to max runes.
func (ix *Index) Preview(noteID int64, max int) string {
	doc, ok := ix.docs[noteID]
	if !ok {
		n, err := ix.store.Note(noteID)
		if err != nil {
			return ""
		}
		doc = buildDocument(n)
	}
	runes := []rune(doc.text)
	if max <= 0 || len(runes) <= max {
		return doc.text
	}
	return strings.TrimRight(string(runes[:max]), " ") + "..."
}

func buildDocument(n *domain.Note) *document {
	text := Plain(n.FieldsRaw)
	var tags []string
	for _, t := range n.TagList() {
		tags = append(tags, strings.ToLower(t))
	}
	return &document{
		text:   text,
		tokens: tokenize(text),
		tags:   tags,
	}
}

// scoreDocument sums the best match per query term. A term contained in
// one of the note's tags earns the tag bonus and qualifies the note
// even when the note text does not contain it.
func scoreDocument(doc *document, terms []string) (int, bool) {
	total := 0
	for _, term := range terms {
		best := 0
		for _, tok := range doc.tokens {
			if s := matchScore(term, tok); s > best {
				best = s
			}
			if best == scoreExact {
				break
			}
		}
		if tagContains(doc.tags, term) {
			best += scoreTag
		}
		if best == 0 {
			return 0, false
		}
		total += best
	}
	return total, true
}

func matchScore(term, token string) int {
	switch {
	case token == term:
		return scoreExact
	case strings.HasPrefix(token, term):
		return scorePrefix
	case strings.Contains(token, term):
		return scoreSubstring
	}
	return 0
}

// containsToken is exact membership, used by the tag filter.
func containsToken(list []string, want string) bool {
	for _, t := range list {
		if t == want {
			return true
		}
	}
	return false
}

// tagContains reports whether any tag contains the term as a substring,
// used by the scoring bonus.
func tagContains(tags []string, term string) bool {
	for _, t := range tags {
		if strings.Contains(t, term) {
			return true
		}
	}
	return false
}

// deckFilter resolves a deck restriction to the set of note ids with at
// least one card in the deck or any of its descendants. A nil return
// means no restriction.
func (ix *Index) deckFilter(deckID int64) map[int64]bool {
	if deckID == 0 {
		return nil
	}
	deckIDs, err := ix.store.DeckWithChildren(deckID)
	if err != nil {
		return map[int64]bool{}
	}
	inScope := make(map[int64]bool, len(deckIDs))
	for _, id := range deckIDs {
		inScope[id] = true
	}
	notes := make(map[int64]bool)
	for _, c := range ix.store.Cards() {
		if inScope[c.DeckID] {
			notes[c.NoteID] = true
		}
	}
	return notes
}
