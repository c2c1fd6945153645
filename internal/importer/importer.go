package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mnemo-app/mnemo/internal/config"
	"github.com/mnemo-app/mnemo/internal/domain"
	"github.com/mnemo-app/mnemo/internal/store"
)

// Structural import errors. Anything wrapped in these aborts the whole
// import with the store untouched.
var (
	// ErrArchive means the container itself could not be read.
	ErrArchive = errors.New("archive unreadable")

	// ErrDatabase means the embedded collection database could not be
	// opened or is missing required tables.
	ErrDatabase = errors.New("embedded database unreadable")
)

// Mode selects what happens to the scheduling state carried by the
// archive. The choice applies uniformly to every card in one import.
type Mode int

const (
	// ModeFresh discards review progress: every card arrives as New.
	ModeFresh Mode = iota

	// ModeWithProgress preserves queue, interval, ease and due values.
	ModeWithProgress
)

// Options tunes one import run.
type Options struct {
	Mode Mode

	// OnProgress, when set, receives one structured event per batch.
	OnProgress func(Progress)
}

// Result summarizes a completed import.
type Result struct {
	JobID    uuid.UUID
	Models   int
	Decks    int
	Notes    int
	Cards    int
	Media    int
	Warnings []Warning
}

// Importer merges deck packages into a store.
type Importer struct {
	store  *store.Store
	media  MediaStore
	logger *slog.Logger
	batch  int
}

// New creates an importer writing into the given store and media
// collaborator.
func New(s *store.Store, media MediaStore, logger *slog.Logger, cfg config.ImporterConfig) *Importer {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 1
	}
	return &Importer{
		store:  s,
		media:  media,
		logger: logger,
		batch:  batch,
	}
}

// Row shapes of the embedded database.

type colRow struct {
	Crt    int64  `db:"crt"`
	Models string `db:"models"`
	Decks  string `db:"decks"`
}

type srcField struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

type srcTemplate struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

type srcModel struct {
	Name      string        `json:"name"`
	Type      int           `json:"type"` // 0 standard, 1 cloze
	Fields    []srcField    `json:"flds"`
	Templates []srcTemplate `json:"tmpls"`
}

type srcDeck struct {
	Name      string `json:"name"`
	Collapsed bool   `json:"collapsed"`
}

type rawNote struct {
	ID   int64  `db:"id"`
	MID  int64  `db:"mid"`
	Flds string `db:"flds"`
	Tags string `db:"tags"`
}

type rawCard struct {
	ID     int64 `db:"id"`
	NID    int64 `db:"nid"`
	DID    int64 `db:"did"`
	Ord    int   `db:"ord"`
	Type   int   `db:"type"`
	Queue  int   `db:"queue"`
	Due    int64 `db:"due"`
	Ivl    int   `db:"ivl"`
	Factor int   `db:"factor"`
	Reps   int   `db:"reps"`
	Lapses int   `db:"lapses"`
	Left   int   `db:"left"`
	ODue   int64 `db:"odue"`
	ODid   int64 `db:"odid"`
	Flags  int   `db:"flags"`
}

// staging accumulates everything to apply. Nothing in it touches the
// store until commit.
type staging struct {
	models     []*domain.Model
	modelByMid map[int64]*domain.Model // source model id -> staged model
	deckNames  []string                // in source-id order
	deckByDid  map[int64]string        // source deck id -> name
	collapsed  map[string]bool         // name -> collapsed flag
	notes      []*domain.Note
	cards      []*domain.Card
	cardDids   map[int64]int64 // staged card id -> source deck id
	dayOffset  int64           // source day counter -> local day counter
	warnings   []Warning
}

// Import parses the archive at path and merges it into the store. A
// cancelled context or structural error leaves the store untouched;
// malformed individual records are skipped and reported in the result.
func (i *Importer) Import(ctx context.Context, path string, opts Options) (*Result, error) {
	jobID := uuid.New()
	log := i.logger.With("job_id", jobID.String(), "path", path)

	a, err := openArchive(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	db, err := a.openDatabase(jobID.String())
	if err != nil {
		return nil, err
	}
	defer db.Close()

	names, err := a.manifest()
	if err != nil {
		return nil, err
	}

	st := &staging{
		modelByMid: make(map[int64]*domain.Model),
		deckByDid:  make(map[int64]string),
		collapsed:  make(map[string]bool),
		cardDids:   make(map[int64]int64),
	}

	if err := i.stageCollection(db, st); err != nil {
		return nil, err
	}
	emit(opts, Progress{Phase: PhaseDecks, Done: len(st.deckNames), Total: len(st.deckNames)})

	noteByOld, err := i.stageNotes(ctx, db, st, names, opts)
	if err != nil {
		return nil, err
	}
	if err := i.stageCards(ctx, db, st, noteByOld, opts); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("import aborted: %w", err)
	}

	res := i.commit(st, jobID)

	res.Media = i.copyMedia(a, names, st, opts)
	res.Warnings = st.warnings

	log.Info("import finished",
		"models", res.Models, "decks", res.Decks,
		"notes", res.Notes, "cards", res.Cards,
		"media", res.Media, "warnings", len(res.Warnings))
	return res, nil
}

// stageCollection reads the col row: collection epoch plus the model
// and deck definitions serialized as JSON.
func (i *Importer) stageCollection(db *sqlx.DB, st *staging) error {
	var col colRow
	if err := db.Get(&col, "SELECT crt, models, decks FROM col LIMIT 1"); err != nil {
		return fmt.Errorf("%w: col row: %v", ErrDatabase, err)
	}

	srcEpoch := time.Unix(col.Crt, 0).UTC().Truncate(24 * time.Hour)
	localEpoch := i.store.CreatedAt().UTC().Truncate(24 * time.Hour)
	st.dayOffset = int64(srcEpoch.Sub(localEpoch) / (24 * time.Hour))

	var models map[string]srcModel
	if err := json.Unmarshal([]byte(col.Models), &models); err != nil {
		return fmt.Errorf("%w: model definitions: %v", ErrDatabase, err)
	}
	var decks map[string]srcDeck
	if err := json.Unmarshal([]byte(col.Decks), &decks); err != nil {
		return fmt.Errorf("%w: deck definitions: %v", ErrDatabase, err)
	}

	for _, key := range sortedNumericKeys(models) {
		src := models[key]
		mid, _ := strconv.ParseInt(key, 10, 64)

		kind := domain.ModelStandard
		if src.Type == 1 {
			kind = domain.ModelCloze
		}
		sort.Slice(src.Fields, func(a, b int) bool { return src.Fields[a].Ord < src.Fields[b].Ord })
		fields := make([]string, len(src.Fields))
		for fi, f := range src.Fields {
			fields[fi] = f.Name
		}
		sort.Slice(src.Templates, func(a, b int) bool { return src.Templates[a].Ord < src.Templates[b].Ord })
		templates := make([]string, len(src.Templates))
		for ti, t := range src.Templates {
			templates[ti] = t.Name
		}

		m, err := domain.NewModel(i.store.NextID(), src.Name, kind, fields, templates)
		if err != nil {
			return fmt.Errorf("%w: model %q: %v", ErrDatabase, src.Name, err)
		}
		st.models = append(st.models, m)
		st.modelByMid[mid] = m
	}

	for _, key := range sortedNumericKeys(decks) {
		src := decks[key]
		if src.Name == "" {
			continue
		}
		did, _ := strconv.ParseInt(key, 10, 64)
		st.deckByDid[did] = src.Name
		st.deckNames = append(st.deckNames, src.Name)
		st.collapsed[src.Name] = src.Collapsed
	}
	return nil
}

// stageNotes reads and remaps the notes table, skipping malformed rows.
func (i *Importer) stageNotes(ctx context.Context, db *sqlx.DB, st *staging, media map[string]string, opts Options) (map[int64]int64, error) {
	total, err := countRows(db, "notes")
	if err != nil {
		return nil, err
	}

	rows, err := db.Queryx("SELECT id, mid, flds, tags FROM notes ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("%w: notes table: %v", ErrDatabase, err)
	}
	defer rows.Close()

	noteByOld := make(map[int64]int64)
	done := 0
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("import aborted: %w", err)
		}

		var raw rawNote
		if err := rows.StructScan(&raw); err != nil {
			st.warn(WarnNote, fmt.Sprintf("unreadable note row: %v", err))
			continue
		}
		done++
		if done%i.batch == 0 {
			emit(opts, Progress{Phase: PhaseNotes, Done: done, Total: total})
		}

		m, ok := st.modelByMid[raw.MID]
		if !ok {
			st.warn(WarnNote, fmt.Sprintf("note %d references unknown model %d", raw.ID, raw.MID))
			continue
		}
		values := domain.SplitFields(raw.Flds)
		if len(values) != len(m.Fields) {
			st.warn(WarnNote, fmt.Sprintf("note %d has %d fields, model %q wants %d",
				raw.ID, len(values), m.Name, len(m.Fields)))
			continue
		}

		n := &domain.Note{
			ID:        i.store.NextID(),
			ModelID:   m.ID,
			FieldsRaw: rewriteMediaRefs(raw.Flds, media),
			Tags:      raw.Tags,
			Mod:       time.Now().UTC(),
		}
		st.notes = append(st.notes, n)
		noteByOld[raw.ID] = n.ID
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: notes table: %v", ErrDatabase, err)
	}
	emit(opts, Progress{Phase: PhaseNotes, Done: done, Total: total})
	return noteByOld, nil
}

// stageCards reads and remaps the cards table. Scheduling fields are
// preserved or zeroed per the import mode.
func (i *Importer) stageCards(ctx context.Context, db *sqlx.DB, st *staging, noteByOld map[int64]int64, opts Options) error {
	total, err := countRows(db, "cards")
	if err != nil {
		return err
	}

	rows, err := db.Queryx(`SELECT id, nid, did, ord, type, queue, due, ivl,
		factor, reps, lapses, left, odue, odid, flags
		FROM cards ORDER BY id`)
	if err != nil {
		return fmt.Errorf("%w: cards table: %v", ErrDatabase, err)
	}
	defer rows.Close()

	seen := make(map[[2]int64]bool) // (new note id, ord)
	done := 0
	for rows.Next() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("import aborted: %w", err)
		}

		var raw rawCard
		if err := rows.StructScan(&raw); err != nil {
			st.warn(WarnCard, fmt.Sprintf("unreadable card row: %v", err))
			continue
		}
		done++
		if done%i.batch == 0 {
			emit(opts, Progress{Phase: PhaseCards, Done: done, Total: total})
		}

		noteID, ok := noteByOld[raw.NID]
		if !ok {
			st.warn(WarnCard, fmt.Sprintf("card %d references missing note %d", raw.ID, raw.NID))
			continue
		}
		if _, ok := st.deckByDid[raw.DID]; !ok {
			st.warn(WarnCard, fmt.Sprintf("card %d references unknown deck %d", raw.ID, raw.DID))
			continue
		}
		if raw.Ord < 0 {
			st.warn(WarnCard, fmt.Sprintf("card %d has negative ordinal", raw.ID))
			continue
		}
		pair := [2]int64{noteID, int64(raw.Ord)}
		if seen[pair] {
			st.warn(WarnCard, fmt.Sprintf("card %d duplicates note/ordinal pair", raw.ID))
			continue
		}
		seen[pair] = true

		c := &domain.Card{
			ID:     i.store.NextID(),
			NoteID: noteID,
			Ord:    raw.Ord,
			Ease:   domain.EaseStart,
			Flags:  raw.Flags,
			Mod:    time.Now().UTC(),
		}
		// DeckID is resolved at commit once decks exist; remember the
		// source deck for that step.
		st.cardDids[c.ID] = raw.DID

		if opts.Mode == ModeFresh {
			c.Due = c.ID
		} else {
			i.carrySchedulingState(c, &raw, st.dayOffset)
		}
		st.cards = append(st.cards, c)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: cards table: %v", ErrDatabase, err)
	}
	emit(opts, Progress{Phase: PhaseCards, Done: done, Total: total})
	return nil
}

// carrySchedulingState translates the source scheduling encoding onto
// the local card: queues map across, review day counters shift by the
// difference between the two collection epochs, learning timestamps
// carry as-is. Filtered-deck snapshots are not carried because their
// deck references do not survive the id remap.
func (i *Importer) carrySchedulingState(c *domain.Card, raw *rawCard, dayOffset int64) {
	c.Interval = raw.Ivl
	if raw.Factor > 0 {
		c.Ease = raw.Factor
	}
	c.Reps = raw.Reps
	c.Lapses = raw.Lapses
	c.Left = raw.Left % 1000 // source packs step count into thousands

	switch raw.Type {
	case 1:
		c.Type = domain.CardTypeLearning
	case 2:
		c.Type = domain.CardTypeReview
	case 3:
		c.Type = domain.CardTypeRelearning
	default:
		c.Type = domain.CardTypeNew
	}

	localEpoch := i.store.CreatedAt().UTC().Truncate(24 * time.Hour)
	switch raw.Queue {
	case -1:
		c.Queue = domain.QueueSuspended
		c.Due = raw.Due
	case 1:
		// Intra-day learning: due is already an absolute timestamp.
		c.Queue = domain.QueueLearning
		c.Due = raw.Due
	case 2:
		c.Queue = domain.QueueReview
		c.Due = raw.Due + dayOffset
	case 3:
		// Day-based learning: convert the day counter to a timestamp.
		c.Queue = domain.QueueLearning
		c.Due = localEpoch.Add(time.Duration(raw.Due+dayOffset) * 24 * time.Hour).Unix()
	default:
		c.Queue = domain.QueueNew
		c.Type = domain.CardTypeNew
		c.Due = c.ID
	}
	if c.Type == domain.CardTypeRelearning && c.Queue == domain.QueueLearning {
		c.Queue = domain.QueueRelearning
	}
}

// commit applies the fully staged import to the store. Staging already
// validated every reference, so failures here are unexpected and
// reported as warnings on the affected record.
func (i *Importer) commit(st *staging, jobID uuid.UUID) *Result {
	res := &Result{JobID: jobID}

	for _, m := range st.models {
		if err := i.store.AddModel(m); err != nil {
			st.warn(WarnNote, fmt.Sprintf("model %q not applied: %v", m.Name, err))
			continue
		}
		res.Models++
	}

	deckIDByDid := make(map[int64]int64, len(st.deckByDid))
	for did, name := range st.deckByDid {
		d, err := i.store.EnsureDeck(name)
		if err != nil {
			st.warn(WarnCard, fmt.Sprintf("deck %q not applied: %v", name, err))
			continue
		}
		d.Collapsed = st.collapsed[name]
		deckIDByDid[did] = d.ID
	}
	res.Decks = len(deckIDByDid)

	applied := make(map[int64]bool, len(st.notes))
	for _, n := range st.notes {
		if err := i.store.InsertNote(n); err != nil {
			st.warn(WarnNote, fmt.Sprintf("note not applied: %v", err))
			continue
		}
		applied[n.ID] = true
		res.Notes++
	}

	for _, c := range st.cards {
		if !applied[c.NoteID] {
			continue
		}
		deckID, ok := deckIDByDid[st.cardDids[c.ID]]
		if !ok {
			st.warn(WarnCard, fmt.Sprintf("card %d lost its deck", c.ID))
			continue
		}
		c.DeckID = deckID
		if err := i.store.InsertCard(c); err != nil {
			st.warn(WarnCard, fmt.Sprintf("card not applied: %v", err))
			continue
		}
		res.Cards++
	}
	return res
}

// copyMedia renames each numbered payload to its decoded filename in
// the media store. Media problems never fail the import.
func (i *Importer) copyMedia(a *archive, names map[string]string, st *staging, opts Options) int {
	tokens := make([]string, 0, len(names))
	for token := range names {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)

	copied := 0
	for idx, token := range tokens {
		name := names[token]
		r, err := a.mediaFile(token)
		if err != nil {
			st.warn(WarnMedia, err.Error())
			continue
		}
		err = i.media.Put(name, r)
		r.Close()
		if err != nil {
			st.warn(WarnMedia, fmt.Sprintf("media %q: %v", name, err))
			continue
		}
		copied++
		if (idx+1)%i.batch == 0 {
			emit(opts, Progress{Phase: PhaseMedia, Done: idx + 1, Total: len(tokens)})
		}
	}
	emit(opts, Progress{Phase: PhaseMedia, Done: len(tokens), Total: len(tokens)})
	return copied
}

func (st *staging) warn(kind WarningKind, detail string) {
	st.warnings = append(st.warnings, Warning{Kind: kind, Detail: detail})
}

func emit(opts Options, p Progress) {
	if opts.OnProgress != nil {
		opts.OnProgress(p)
	}
}

// sortedNumericKeys returns the map's keys sorted by their numeric
// value, as the JSON blobs key models and decks by stringified ids.
func sortedNumericKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		if _, err := strconv.ParseInt(k, 10, 64); err != nil {
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		x, _ := strconv.ParseInt(keys[a], 10, 64)
		y, _ := strconv.ParseInt(keys[b], 10, 64)
		return x < y
	})
	return keys
}

func countRows(db *sqlx.DB, table string) (int, error) {
	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("%w: %s table: %v", ErrDatabase, table, err)
	}
	return n, nil
}
