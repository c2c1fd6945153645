// Package domain defines the core entities of the study engine: Model,
// Note, Card and Deck, together with their validation rules and the
// reserved byte/token conventions of the deck-package format they are
// compatible with (0x1f field separator, "::" deck path separator).
//
// Entities here are plain data with local invariants. Referential
// integrity between entities (a Card's note, a Note's model) is enforced
// by the store package, which is the only way entities are wired together.
package domain
