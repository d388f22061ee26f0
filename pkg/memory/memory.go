// Package memory persists finished diary sessions. Each record is
// one night's condensed memory, addressable by UUID so a printed
// card can link back to it.
package memory

import (
	"errors"
	"time"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when no record exists for a UUID.
	ErrNotFound = errors.New("memory: record not found")

	// ErrEmptyID is returned when a UUID is missing.
	ErrEmptyID = errors.New("memory: empty record id")
)

// Utterance is a single recognized speech segment with its
// classified emotion.
type Utterance struct {
	Text    string    `json:"text"`
	Emotion string    `json:"emotion"`
	At      time.Time `json:"at"`
}

// Record is one night's stored memory.
type Record struct {
	UUID            string      `json:"uuid"`
	Date            string      `json:"date"`
	FullSummary     string      `json:"full_summary"`
	ShortSummary    string      `json:"short_summary"`
	RawConversation []Utterance `json:"raw_conversation"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Update carries the optional fields of a record edit. Nil fields
// are left untouched.
type Update struct {
	FullSummary  *string `json:"full_summary"`
	ShortSummary *string `json:"short_summary"`
}

// Store is the persistence interface for diary records.
type Store interface {
	// Create persists a new record under its UUID.
	Create(rec *Record) error

	// Read returns the record for the given UUID, or ErrNotFound.
	// Reading never mutates the record.
	Read(uuid string) (*Record, error)

	// Update merges the provided summary fields into an existing
	// record.
	Update(uuid string, upd Update) (*Record, error)

	// Close releases store resources.
	Close() error
}
