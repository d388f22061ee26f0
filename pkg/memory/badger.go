package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"
)

const keyPrefix = "record/"

// BadgerStore implements Store on an embedded Badger database.
type BadgerStore struct {
	db *badger.DB
}

// Open opens (or creates) a Badger-backed store at dir.
func Open(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// OpenInMemory opens an ephemeral store. Used in tests and mock mode.
func OpenInMemory() (*BadgerStore, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

// Create persists a new record under its UUID.
func (s *BadgerStore) Create(rec *Record) error {
	if rec.UUID == "" {
		return ErrEmptyID
	}
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+rec.UUID), data)
	})
}

// Read returns the record for the given UUID.
func (s *BadgerStore) Read(uuid string) (*Record, error) {
	if uuid == "" {
		return nil, ErrEmptyID
	}
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + uuid))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	return &rec, nil
}

// Update merges the provided summary fields into an existing record.
func (s *BadgerStore) Update(uuid string, upd Update) (*Record, error) {
	rec, err := s.Read(uuid)
	if err != nil {
		return nil, err
	}
	if upd.FullSummary != nil {
		rec.FullSummary = *upd.FullSummary
	}
	if upd.ShortSummary != nil {
		rec.ShortSummary = *upd.ShortSummary
	}
	rec.UpdatedAt = time.Now()

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(keyPrefix+uuid), data)
	})
	if err != nil {
		return nil, fmt.Errorf("update record: %w", err)
	}
	return rec, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
