package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo/internal/config"
	"github.com/mnemo-app/mnemo/internal/domain"
	"github.com/mnemo-app/mnemo/internal/store"
)

func testConfig() config.SearchConfig {
	return config.SearchConfig{DefaultLimit: 100}
}

// searchFixture builds a store with one standard model and one deck,
// ready for notes.
func searchFixture(t *testing.T) (*store.Store, *domain.Model, *domain.Deck) {
	t.Helper()
	s := store.New()

	m, err := domain.NewModel(s.NextID(), "Basic", domain.ModelStandard,
		[]string{"Front", "Back"}, []string{"Card 1"})
	require.NoError(t, err)
	require.NoError(t, s.AddModel(m))

	d, err := s.EnsureDeck("Default")
	require.NoError(t, err)
	return s, m, d
}

func addNote(t *testing.T, s *store.Store, m *domain.Model, d *domain.Deck, front, back, tags string) *domain.Note {
	t.Helper()
	n, err := s.CreateNote(m.ID, d.ID, []string{front, back}, tags)
	require.NoError(t, err)
	return n
}

func TestSearchPrefixMatch(t *testing.T) {
	t.Parallel()
	s, m, d := searchFixture(t)
	apple := addNote(t, s, m, d, "Apple", "Fruit", "")
	addNote(t, s, m, d, "Banana", "Fruit", "")

	ix := New(s, testConfig())

	results := ix.Search("appl", Filter{})
	require.Len(t, results, 1)
	assert.Equal(t, apple.ID, results[0].NoteID)
	assert.Equal(t, scorePrefix, results[0].Score)

	// Exact token matches rank above prefix ones.
	results = ix.Search("apple fruit", Filter{})
	require.Len(t, results, 1, "both terms must match the same note")
	assert.Equal(t, apple.ID, results[0].NoteID)
	assert.Equal(t, scoreExact+scoreExact, results[0].Score)
}

func TestSearchRanking(t *testing.T) {
	t.Parallel()
	s, m, d := searchFixture(t)
	exact := addNote(t, s, m, d, "run", "to move fast", "")
	prefix := addNote(t, s, m, d, "running", "gerund", "")

	ix := New(s, testConfig())
	results := ix.Search("run", Filter{})
	require.Len(t, results, 2)
	assert.Equal(t, exact.ID, results[0].NoteID)
	assert.Equal(t, prefix.ID, results[1].NoteID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchEmptyQuery(t *testing.T) {
	t.Parallel()
	s, m, d := searchFixture(t)
	addNote(t, s, m, d, "Apple", "Fruit", "")
	ix := New(s, testConfig())

	assert.Empty(t, ix.Search("", Filter{}))
	assert.Empty(t, ix.Search("   ", Filter{}))
	// Single-rune fragments are dropped during tokenization.
	assert.Empty(t, ix.Search("a", Filter{}))
}

func TestSearchDeckFilterCoversChildren(t *testing.T) {
	t.Parallel()
	s, m, _ := searchFixture(t)

	parent, err := s.EnsureDeck("Spanish")
	require.NoError(t, err)
	child, err := s.EnsureDeck("Spanish::Verbs")
	require.NoError(t, err)
	sibling, err := s.EnsureDeck("French")
	require.NoError(t, err)

	inChild := addNote(t, s, m, child, "hablar", "to speak", "")
	addNote(t, s, m, sibling, "parler", "to speak", "")

	ix := New(s, testConfig())

	results := ix.Search("hablar", Filter{DeckID: parent.ID})
	require.Len(t, results, 1)
	assert.Equal(t, inChild.ID, results[0].NoteID)

	assert.Empty(t, ix.Search("hablar", Filter{DeckID: sibling.ID}))
	assert.Empty(t, ix.Search("parler", Filter{DeckID: parent.ID}))
}

func TestSearchTagFilterAndBonus(t *testing.T) {
	t.Parallel()
	s, m, d := searchFixture(t)
	tagged := addNote(t, s, m, d, "verbs overview", "grammar", "verbs")
	plain := addNote(t, s, m, d, "verbs cheat sheet", "grammar", "")

	ix := New(s, testConfig())

	results := ix.Search("verbs", Filter{Tag: "verbs"})
	require.Len(t, results, 1)
	assert.Equal(t, tagged.ID, results[0].NoteID)

	// Without the filter both match, but the tag bonus ranks the tagged
	// note first.
	results = ix.Search("verbs", Filter{})
	require.Len(t, results, 2)
	assert.Equal(t, tagged.ID, results[0].NoteID)
	assert.Equal(t, plain.ID, results[1].NoteID)
	assert.Equal(t, scoreExact+scoreTag, results[0].Score)
}

func TestSearchTagContainingTermQualifiesNote(t *testing.T) {
	t.Parallel()
	s, m, d := searchFixture(t)
	n := addNote(t, s, m, d, "conjugation table", "grammar", "spanish-verbs")

	ix := New(s, testConfig())

	// The note text never mentions the term; the containing tag alone
	// must qualify it and contribute the bonus.
	results := ix.Search("verbs", Filter{})
	require.Len(t, results, 1)
	assert.Equal(t, n.ID, results[0].NoteID)
	assert.Equal(t, scoreTag, results[0].Score)

	// The tag filter itself stays exact.
	assert.Empty(t, ix.Search("verbs", Filter{Tag: "verbs"}))
	require.Len(t, ix.Search("verbs", Filter{Tag: "spanish-verbs"}), 1)
}

func TestSearchStripsMarkup(t *testing.T) {
	t.Parallel()
	s, m, d := searchFixture(t)
	n := addNote(t, s, m, d, "<b>Hello&nbsp;world</b>", "<i>greeting</i>", "")

	ix := New(s, testConfig())

	results := ix.Search("world", Filter{})
	require.Len(t, results, 1)
	assert.Equal(t, n.ID, results[0].NoteID)

	results = ix.Search("greeting", Filter{})
	require.Len(t, results, 1)
	assert.Equal(t, n.ID, results[0].NoteID)
}

func TestSearchLazyRebuild(t *testing.T) {
	t.Parallel()
	s, m, d := searchFixture(t)
	ix := New(s, testConfig())
	ix.IndexAll()

	n := addNote(t, s, m, d, "Apple", "Fruit", "")
	assert.Empty(t, ix.Search("apple", Filter{}), "index is a cache, not live")

	ix.MarkDirty()
	results := ix.Search("apple", Filter{})
	require.Len(t, results, 1)
	assert.Equal(t, n.ID, results[0].NoteID)
}

func TestSearchLimit(t *testing.T) {
	t.Parallel()
	s, m, d := searchFixture(t)
	for i := 0; i < 5; i++ {
		addNote(t, s, m, d, "apple variant", "fruit", "")
	}
	ix := New(s, testConfig())

	assert.Len(t, ix.Search("apple", Filter{Limit: 3}), 3)
	assert.Len(t, ix.Search("apple", Filter{}), 5)
}

func TestPreview(t *testing.T) {
	t.Parallel()
	s, m, d := searchFixture(t)
	n := addNote(t, s, m, d, "<b>Hello</b> world", "this is a longer back field", "")

	ix := New(s, testConfig())
	ix.IndexAll()

	assert.Equal(t, "Hello world this is a longer back field", ix.Preview(n.ID, 0))
	assert.Equal(t, "Hello...", ix.Preview(n.ID, 6))
	assert.Equal(t, "", ix.Preview(99999, 10))
}
