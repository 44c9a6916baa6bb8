// Package storage keeps snapshots of in-progress games in BadgerDB so a
// restarted server can resume them.
package storage

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/gofiber/fiber/v2/log"

	"github.com/benbeisheim/chessrules-backend/internal/model"
)

const gamePrefix = "game/"

// Snapshot is what is persisted per game: the rules record plus the seats.
type Snapshot struct {
	Record  model.GameRecord `json:"record"`
	WhiteID string           `json:"whitePlayerId"`
	BlackID string           `json:"blackPlayerId"`
}

// Store wraps BadgerDB for game snapshots
type Store struct {
	db *badger.DB
}

// badgerLogger routes badger's internal messages to the application log.
// Info chatter is demoted to debug.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...interface{})   { log.Errorf("badger: "+format, args...) }
func (badgerLogger) Warningf(format string, args ...interface{}) { log.Warnf("badger: "+format, args...) }
func (badgerLogger) Infof(format string, args ...interface{})    { log.Debugf("badger: "+format, args...) }
func (badgerLogger) Debugf(format string, args ...interface{})   { log.Debugf("badger: "+format, args...) }

// Open opens or creates the store under dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{})
	return open(opts)
}

// OpenInMemory creates a store that lives only as long as the process.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts)
}

func open(opts badger.Options) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func gameKey(id string) []byte {
	return []byte(gamePrefix + id)
}

// SaveGame writes the snapshot of game id, replacing any previous one.
func (s *Store) SaveGame(id string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gameKey(id), data)
	})
}

// LoadGame reads the snapshot of game id. found is false if none exists.
func (s *Store) LoadGame(id string) (snap Snapshot, found bool, err error) {
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gameKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &snap)
		})
	})
	return snap, found, err
}

func (s *Store) DeleteGame(id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(gameKey(id))
	})
}

// ListGames returns the ids of all stored games in key order.
func (s *Store) ListGames() ([]string, error) {
	ids := []string{}
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(gamePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			ids = append(ids, strings.TrimPrefix(string(it.Item().Key()), gamePrefix))
		}
		return nil
	})
	return ids, err
}
