package docstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"
)

// ErrDocumentNotFound is returned when no document exists for the key.
var ErrDocumentNotFound = errors.New("document not found")

// recentCap bounds the local fallback list; the oldest entry is evicted
// first once the cap is reached.
const recentCap = 100

// Store is an embedded document store over Badger. Documents are JSON
// objects addressed by collection and key; upserts merge fields rather
// than replacing whole documents.
type Store struct {
	db *badger.DB

	mu        sync.Mutex
	recentSeq uint64
}

// Open opens (or creates) a store at path.
func Open(path string) (*Store, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	return open(opts)
}

// OpenInMemory opens a store without disk backing, for tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open docstore: %w", err)
	}
	store := &Store{db: db}
	if err := store.loadRecentSeq(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert merges fields into the document at collection/key. Fields not
// present in the update are left untouched; the write is unconditional.
func (s *Store) Upsert(collection, key string, fields map[string]any) error {
	docKey := documentKey(collection, key)

	return s.db.Update(func(txn *badger.Txn) error {
		doc := map[string]any{}

		item, err := txn.Get(docKey)
		switch {
		case err == nil:
			raw, copyErr := item.ValueCopy(nil)
			if copyErr != nil {
				return copyErr
			}
			if unmarshalErr := json.Unmarshal(raw, &doc); unmarshalErr != nil {
				return fmt.Errorf("decode document %s/%s: %w", collection, key, unmarshalErr)
			}
		case errors.Is(err, badger.ErrKeyNotFound):
			// fresh document
		default:
			return err
		}

		for k, v := range fields {
			doc[k] = v
		}

		raw, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode document %s/%s: %w", collection, key, err)
		}
		return txn.Set(docKey, raw)
	})
}

// Read returns the document at collection/key.
func (s *Store) Read(collection, key string) (map[string]any, error) {
	var doc map[string]any

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(documentKey(collection, key))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &doc)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// AppendRecent appends an entry to the bounded local fallback list,
// evicting the oldest entries beyond the cap.
func (s *Store) AppendRecent(entry any) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode recent entry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recentSeq++
	seq := s.recentSeq

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(recentKey(seq), raw); err != nil {
			return err
		}

		keys, err := recentKeys(txn)
		if err != nil {
			return err
		}
		for len(keys) > recentCap {
			if err := txn.Delete(keys[0]); err != nil {
				return err
			}
			keys = keys[1:]
		}
		return nil
	})
}

// Recent returns the fallback list entries, oldest first.
func (s *Store) Recent() ([]json.RawMessage, error) {
	var entries []json.RawMessage

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(recentPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			raw, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			entries = append(entries, json.RawMessage(raw))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

const recentPrefix = "recent/"

func documentKey(collection, key string) []byte {
	return []byte(fmt.Sprintf("doc/%s/%s", collection, key))
}

func recentKey(seq uint64) []byte {
	// zero-padded so lexicographic order is insertion order
	return []byte(fmt.Sprintf("%s%020d", recentPrefix, seq))
}

func recentKeys(txn *badger.Txn) ([][]byte, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(recentPrefix)
	opts.PrefetchValues = false

	it := txn.NewIterator(opts)
	defer it.Close()

	// badger iterates in byte-sorted key order, which is insertion
	// order thanks to the zero-padded sequence.
	var keys [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}

// loadRecentSeq restores the append counter from the highest stored key
// so restarts keep appending after existing entries.
func (s *Store) loadRecentSeq() error {
	return s.db.View(func(txn *badger.Txn) error {
		keys, err := recentKeys(txn)
		if err != nil || len(keys) == 0 {
			return err
		}
		last := string(keys[len(keys)-1])
		var seq uint64
		if _, err := fmt.Sscanf(last[len(recentPrefix):], "%d", &seq); err != nil {
			return fmt.Errorf("parse recent seq: %w", err)
		}
		s.recentSeq = seq
		return nil
	})
}
