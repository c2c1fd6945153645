package importer

// Phase identifies what the importer is currently working through.
type Phase string

const (
	PhaseDecks Phase = "decks"
	PhaseNotes Phase = "notes"
	PhaseCards Phase = "cards"
	PhaseMedia Phase = "media"
)

// Progress is one structured progress event, emitted once per batch
// rather than per row so large archives still yield control to the
// caller without flooding it.
type Progress struct {
	Phase Phase
	Done  int
	Total int
}

// WarningKind classifies a skipped record.
type WarningKind string

const (
	WarnNote  WarningKind = "note"
	WarnCard  WarningKind = "card"
	WarnMedia WarningKind = "media"
)

// Warning reports one malformed record that was skipped. Warnings never
// abort an import.
type Warning struct {
	Kind   WarningKind
	Detail string
}
