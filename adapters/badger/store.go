// Package badger implements store.ResultStore on an embedded BadgerDB.
//
// Every record is a JSON document under a kind prefix:
//
//	comparison/<comparison id>
//	labeling/<comparison id>/<record id>
//	highlight/<record id>
//
// IDs are time-ordered, so a prefix scan returns records in creation order.
package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"gosigtest/domain/core"
	"gosigtest/domain/results"
	"gosigtest/internal"
)

const (
	prefixComparison = "comparison/"
	prefixLabeling   = "labeling/"
	prefixHighlight  = "highlight/"
)

// Config holds configuration for a BadgerDB instance.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests.
	InMemory bool

	// SyncWrites fsyncs every commit.
	SyncWrites bool

	// Logger receives BadgerDB's internal messages. Nil disables them.
	Logger *internal.Logger
}

// DefaultConfig returns durable settings for the database at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns configuration for tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts the leveled logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *internal.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.logger.Error(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.logger.Warn(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.logger.Debug(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.logger.Trace(format, args...) }

// Store is a BadgerDB backed result store.
type Store struct {
	db *badger.DB
}

// Open creates and opens a store with the given configuration.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger.WithPrefix("badger")})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens an empty in-memory store.
func OpenInMemory() (*Store, error) {
	return Open(InMemoryConfig())
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (s *Store) get(key string, v any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
}

// scan calls fn with the value of every key under prefix, in key order.
func (s *Store) scan(ctx context.Context, prefix string, fn func(val []byte) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := it.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}

// SaveComparison validates and stores a comparison under its id.
func (s *Store) SaveComparison(ctx context.Context, rec *results.ComparisonRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	return s.put(prefixComparison+rec.ID.String(), rec)
}

// GetComparison loads a comparison by id, wrapping core.ErrComparisonNotFound
// when it is absent.
func (s *Store) GetComparison(ctx context.Context, id core.ComparisonID) (*results.ComparisonRecord, error) {
	var rec results.ComparisonRecord
	err := s.get(prefixComparison+id.String(), &rec)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", core.ErrComparisonNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// LatestComparison returns the most recently created comparison.
func (s *Store) LatestComparison(ctx context.Context) (*results.ComparisonRecord, error) {
	var latest *results.ComparisonRecord
	err := s.scan(ctx, prefixComparison, func(val []byte) error {
		var rec results.ComparisonRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		if latest == nil || !rec.CreatedAt.Before(latest.CreatedAt) {
			latest = &rec
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if latest == nil {
		return nil, core.ErrComparisonNotFound
	}
	return latest, nil
}

// SaveLabeling stores a letter display under its comparison.
func (s *Store) SaveLabeling(ctx context.Context, rec *results.LabelingRecord) error {
	if rec.ID == "" || rec.ComparisonID == "" {
		return fmt.Errorf("labeling record needs an id and a comparison id")
	}
	return s.put(prefixLabeling+rec.ComparisonID.String()+"/"+rec.ID.String(), rec)
}

// ListLabelings returns the letter displays of one comparison, oldest first.
func (s *Store) ListLabelings(ctx context.Context, id core.ComparisonID) ([]*results.LabelingRecord, error) {
	var out []*results.LabelingRecord
	err := s.scan(ctx, prefixLabeling+id.String()+"/", func(val []byte) error {
		var rec results.LabelingRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		out = append(out, &rec)
		return nil
	})
	return out, err
}

// SaveHighlight stores a near-best record.
func (s *Store) SaveHighlight(ctx context.Context, rec *results.HighlightRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("highlight record needs an id")
	}
	return s.put(prefixHighlight+rec.ID.String(), rec)
}

// ListHighlights returns every near-best record, oldest first.
func (s *Store) ListHighlights(ctx context.Context) ([]*results.HighlightRecord, error) {
	var out []*results.HighlightRecord
	err := s.scan(ctx, prefixHighlight, func(val []byte) error {
		var rec results.HighlightRecord
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		out = append(out, &rec)
		return nil
	})
	return out, err
}
