// Package store holds the in-memory entity tables for models, decks,
// notes and cards and enforces the referential integrity between them:
// a note always points at an existing model, a card at an existing note
// and deck, and exactly one card exists per (note, template ordinal)
// pair. Deleting a note cascades to its cards.
//
// The store is synchronous and single-owner: callers serialize access.
// Durability belongs to a Persister collaborator fed by Snapshot; the
// store itself never touches the filesystem.
package store
