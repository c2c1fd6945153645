// Package importer unpacks a third-party deck package (a zip container
// holding an embedded SQLite database, a media manifest and numbered
// media payloads) and merges it into the local store.
//
// Every imported id is remapped through the store's allocator so an
// import can never collide with existing entities, and the mapping is
// consistent within one run: a card's note reference resolves to the
// same remapped note id the note was inserted under.
//
// The importer stages everything in memory and touches the store only
// once the whole archive has parsed. A structural failure or a
// cancelled context therefore leaves the store exactly as it was.
// Individual malformed rows are skipped and reported as warnings.
package importer
