package importer

import (
	"archive/zip"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo/internal/config"
	"github.com/mnemo-app/mnemo/internal/domain"
	"github.com/mnemo-app/mnemo/internal/store"
)

const testSchema = `
CREATE TABLE col (crt INTEGER, models TEXT, decks TEXT);
CREATE TABLE notes (id INTEGER PRIMARY KEY, mid INTEGER, flds TEXT, tags TEXT);
CREATE TABLE cards (
	id INTEGER PRIMARY KEY, nid INTEGER, did INTEGER, ord INTEGER,
	type INTEGER, queue INTEGER, due INTEGER, ivl INTEGER,
	factor INTEGER, reps INTEGER, lapses INTEGER, left INTEGER,
	odue INTEGER, odid INTEGER, flags INTEGER
);`

const testModels = `{
	"1001": {"name": "Basic", "type": 0,
		"flds": [{"name": "Front", "ord": 0}, {"name": "Back", "ord": 1}],
		"tmpls": [{"name": "Card 1", "ord": 0}]},
	"1002": {"name": "Cloze", "type": 1,
		"flds": [{"name": "Text", "ord": 0}, {"name": "Extra", "ord": 1}],
		"tmpls": [{"name": "Cloze", "ord": 0}]}
}`

const testDecks = `{
	"1": {"name": "Default"},
	"21": {"name": "Spanish"},
	"22": {"name": "Spanish::Verbs"}
}`

// buildArchive assembles a deck package in a temp dir: an embedded
// SQLite collection seeded three days before now, a media manifest and
// one numbered media payload. mutate can add extra rows.
func buildArchive(t *testing.T, mutate func(t *testing.T, db *sql.DB)) string {
	t.Helper()
	dir := t.TempDir()

	dbPath := filepath.Join(dir, collectionFile)
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	crt := time.Now().Add(-72 * time.Hour).Unix()
	_, err = db.Exec("INSERT INTO col (crt, models, decks) VALUES (?, ?, ?)",
		crt, testModels, testDecks)
	require.NoError(t, err)

	insertNote := "INSERT INTO notes (id, mid, flds, tags) VALUES (?, ?, ?, ?)"
	insertCard := `INSERT INTO cards (id, nid, did, ord, type, queue, due, ivl,
		factor, reps, lapses, left, odue, odid, flags)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, 0, 0)`

	_, err = db.Exec(insertNote, 501, 1001, "Hola\x1fHello", " greetings ")
	require.NoError(t, err)
	_, err = db.Exec(insertNote, 502, 1002, "{{c1::hablar}} means to speak\x1fextra", "")
	require.NoError(t, err)
	_, err = db.Exec(insertNote, 503, 1001, `<img src="0">`+"\x1fpicture", "")
	require.NoError(t, err)

	// A mature review card due on source day 10, a new cloze card and a
	// new card carrying the media reference.
	_, err = db.Exec(insertCard, 601, 501, 22, 0, 2, 2, 10, 10, 2600, 5, 1, 0)
	require.NoError(t, err)
	_, err = db.Exec(insertCard, 602, 502, 21, 0, 0, 0, 602, 0, 0, 0, 0, 0)
	require.NoError(t, err)
	_, err = db.Exec(insertCard, 603, 503, 1, 0, 0, 0, 603, 0, 0, 0, 0, 0)
	require.NoError(t, err)

	if mutate != nil {
		mutate(t, db)
	}
	require.NoError(t, db.Close())

	zipPath := filepath.Join(dir, "deck.apkg")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)

	dbBytes, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	writeMember(t, zw, collectionFile, dbBytes)
	writeMember(t, zw, mediaManifestFile, []byte(`{"0": "pronounce.mp3"}`))
	writeMember(t, zw, "0", []byte("fake audio payload"))

	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return zipPath
}

func writeMember(t *testing.T, zw *zip.Writer, name string, content []byte) {
	t.Helper()
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write(content)
	require.NoError(t, err)
}

func testImporter(t *testing.T) (*Importer, *store.Store, *DirMediaStore) {
	t.Helper()
	s := store.New()
	media := &DirMediaStore{Dir: filepath.Join(t.TempDir(), "media")}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(s, media, log, config.ImporterConfig{BatchSize: 2}), s, media
}

func noteByFront(t *testing.T, s *store.Store, front string) *domain.Note {
	t.Helper()
	for _, n := range s.Notes() {
		if strings.HasPrefix(n.Fields()[0], front) {
			return n
		}
	}
	t.Fatalf("no note with first field starting %q", front)
	return nil
}

func TestImportWithProgress(t *testing.T) {
	t.Parallel()
	imp, s, _ := testImporter(t)
	path := buildArchive(t, nil)

	res, err := imp.Import(context.Background(), path, Options{Mode: ModeWithProgress})
	require.NoError(t, err)

	assert.Empty(t, res.Warnings)
	assert.Equal(t, 2, res.Models)
	assert.Equal(t, 3, res.Decks)
	assert.Equal(t, 3, res.Notes)
	assert.Equal(t, 3, res.Cards)
	assert.Equal(t, 1, res.Media)

	// The hierarchy arrived intact.
	verbs, err := s.DeckByName("Spanish::Verbs")
	require.NoError(t, err)

	n := noteByFront(t, s, "Hola")
	assert.Greater(t, n.ID, int64(501), "ids must be remapped, not copied")
	assert.Equal(t, []string{"Hola", "Hello"}, n.Fields())
	assert.True(t, n.HasTag("greetings"))

	cards := s.CardsOfNote(n.ID)
	require.Len(t, cards, 1)
	c := cards[0]
	assert.Equal(t, verbs.ID, c.DeckID)
	assert.Equal(t, domain.QueueReview, c.Queue)
	assert.Equal(t, domain.CardTypeReview, c.Type)
	assert.Equal(t, 10, c.Interval)
	assert.Equal(t, 2600, c.Ease)
	assert.Equal(t, 5, c.Reps)
	assert.Equal(t, 1, c.Lapses)
	// Source day 10 against an epoch three days older than ours lands
	// on local day 7.
	assert.Equal(t, int64(7), c.Due)
}

func TestImportFresh(t *testing.T) {
	t.Parallel()
	imp, s, _ := testImporter(t)
	path := buildArchive(t, nil)

	res, err := imp.Import(context.Background(), path, Options{Mode: ModeFresh})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Cards)

	for _, c := range s.Cards() {
		assert.Equal(t, domain.QueueNew, c.Queue)
		assert.Equal(t, domain.CardTypeNew, c.Type)
		assert.Equal(t, c.ID, c.Due, "fresh cards surface in creation order")
		assert.Equal(t, domain.EaseStart, c.Ease)
		assert.Zero(t, c.Reps)
		assert.Zero(t, c.Lapses)
	}
}

func TestImportRewritesMediaRefs(t *testing.T) {
	t.Parallel()
	imp, s, media := testImporter(t)
	path := buildArchive(t, nil)

	_, err := imp.Import(context.Background(), path, Options{})
	require.NoError(t, err)

	n := noteByFront(t, s, "<img")
	assert.Equal(t, `<img src="pronounce.mp3">`, n.Fields()[0])

	payload, err := os.ReadFile(filepath.Join(media.Dir, "pronounce.mp3"))
	require.NoError(t, err)
	assert.Equal(t, "fake audio payload", string(payload))
}

func TestImportSkipsMalformedRows(t *testing.T) {
	t.Parallel()
	imp, s, _ := testImporter(t)
	path := buildArchive(t, func(t *testing.T, db *sql.DB) {
		// Unknown model, wrong field count, and a card pointing nowhere.
		_, err := db.Exec("INSERT INTO notes (id, mid, flds, tags) VALUES (701, 9999, 'x', '')")
		require.NoError(t, err)
		_, err = db.Exec("INSERT INTO notes (id, mid, flds, tags) VALUES (702, 1001, 'only-one-field', '')")
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO cards (id, nid, did, ord, type, queue, due, ivl,
			factor, reps, lapses, left, odue, odid, flags)
			VALUES (704, 999999, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)`)
		require.NoError(t, err)
	})

	res, err := imp.Import(context.Background(), path, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, res.Notes, "healthy rows still land")
	assert.Equal(t, 3, res.Cards)
	assert.Len(t, res.Warnings, 3)
	_, _, notes, cards := s.Counts()
	assert.Equal(t, 3, notes)
	assert.Equal(t, 3, cards)
}

func TestImportStructuralFailureLeavesStoreUntouched(t *testing.T) {
	t.Parallel()
	imp, s, _ := testImporter(t)

	dir := t.TempDir()
	zipPath := filepath.Join(dir, "empty.apkg")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	writeMember(t, zw, "unrelated.txt", []byte("nothing here"))
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	_, err = imp.Import(context.Background(), zipPath, Options{})
	assert.ErrorIs(t, err, ErrDatabase)

	models, decks, notes, cards := s.Counts()
	assert.Zero(t, models+decks+notes+cards)
}

func TestImportNotAnArchive(t *testing.T) {
	t.Parallel()
	imp, _, _ := testImporter(t)

	path := filepath.Join(t.TempDir(), "garbage.apkg")
	require.NoError(t, os.WriteFile(path, []byte("this is not a zip"), 0o644))

	_, err := imp.Import(context.Background(), path, Options{})
	assert.ErrorIs(t, err, ErrArchive)
}

func TestImportCancelledContext(t *testing.T) {
	t.Parallel()
	imp, s, _ := testImporter(t)
	path := buildArchive(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := imp.Import(ctx, path, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	models, decks, notes, cards := s.Counts()
	assert.Zero(t, models+decks+notes+cards, "cancelled import must not commit")
}

func TestImportProgressEvents(t *testing.T) {
	t.Parallel()
	imp, _, _ := testImporter(t)
	path := buildArchive(t, nil)

	var events []Progress
	_, err := imp.Import(context.Background(), path, Options{
		Mode:       ModeWithProgress,
		OnProgress: func(p Progress) { events = append(events, p) },
	})
	require.NoError(t, err)

	byPhase := make(map[Phase][]Progress)
	for _, p := range events {
		byPhase[p.Phase] = append(byPhase[p.Phase], p)
	}
	for _, phase := range []Phase{PhaseDecks, PhaseNotes, PhaseCards, PhaseMedia} {
		require.NotEmpty(t, byPhase[phase], "phase %s never reported", phase)
		last := byPhase[phase][len(byPhase[phase])-1]
		assert.Equal(t, last.Total, last.Done, "phase %s should finish complete", phase)
	}
}
