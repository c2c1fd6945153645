// Package search maintains an in-memory full-text index over note
// content. Field markup is stripped down to plain text, tokenized and
// scored per query token; decks filter through the name-prefix
// hierarchy so searching a parent deck covers its children.
//
// The index is a cache over the store, never a source of truth. Callers
// that mutate notes behind its back mark it dirty and the next search
// rebuilds before answering.
package search
