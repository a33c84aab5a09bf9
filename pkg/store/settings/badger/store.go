// Package badger implements the settings store on BadgerDB, a fast embedded
// key-value store, so access decisions and options survive restarts.
package badger

import (
	"context"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/marmos91/brokerd/pkg/store/settings"
)

// Database Key Namespace
// ======================
//
// Data Type         Prefix   Key Format      Value
// --------------------------------------------------------------
// Access Decisions  "a:"     a:<tenantID>    1 byte: 0x01 allow, 0x00 deny
// Options           "o:"     o:<key>         raw string bytes
//
// Point lookups are O(1); ListAccessDecisions range-scans the "a:" prefix.
const (
	prefixAccess = "a:"
	prefixOption = "o:"
)

func keyAccess(tenantID string) []byte { return []byte(prefixAccess + tenantID) }
func keyOption(key string) []byte      { return []byte(prefixOption + key) }

// BadgerStore implements settings.Store using BadgerDB.
//
// Thread Safety: BadgerDB transactions provide isolation; no additional
// locking is needed for the single-key operations used here.
type BadgerStore struct {
	db *badger.DB
}

// NewBadgerStore opens (or creates) a BadgerDB database at dbPath.
//
// The settings workload is tiny — a handful of keys, point lookups — so the
// store disables compression and shrinks Badger's caches from their
// multi-hundred-MB defaults.
func NewBadgerStore(ctx context.Context, dbPath string) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(dbPath)
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)
	opts = opts.WithBlockCacheSize(8 << 20)
	opts = opts.WithIndexCacheSize(8 << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", dbPath, err)
	}

	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) GetAccessDecision(ctx context.Context, tenantID string) (settings.Decision, error) {
	if err := ctx.Err(); err != nil {
		return settings.DecisionUnknown, err
	}

	decision := settings.DecisionUnknown
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyAccess(tenantID))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			if len(val) == 1 && val[0] == 0x01 {
				decision = settings.DecisionAllow
			} else {
				decision = settings.DecisionDeny
			}
			return nil
		})
	})
	if err != nil {
		return settings.DecisionUnknown, fmt.Errorf("failed to read access decision: %w", err)
	}
	return decision, nil
}

func (s *BadgerStore) SetAccessDecision(ctx context.Context, tenantID string, allow bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value := []byte{0x00}
	if allow {
		value[0] = 0x01
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyAccess(tenantID), value)
	})
	if err != nil {
		return fmt.Errorf("failed to persist access decision: %w", err)
	}
	return nil
}

func (s *BadgerStore) DeleteAccessDecision(ctx context.Context, tenantID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(keyAccess(tenantID))
	})
	if err != nil {
		return fmt.Errorf("failed to delete access decision: %w", err)
	}
	return nil
}

func (s *BadgerStore) ListAccessDecisions(ctx context.Context) (map[string]bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make(map[string]bool)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(prefixAccess)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			tenant := strings.TrimPrefix(string(item.Key()), prefixAccess)
			err := item.Value(func(val []byte) error {
				out[tenant] = len(val) == 1 && val[0] == 0x01
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list access decisions: %w", err)
	}
	return out, nil
}

func (s *BadgerStore) GetOption(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	var value string
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyOption(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to read option %s: %w", key, err)
	}
	return value, found, nil
}

func (s *BadgerStore) SetOption(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyOption(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("failed to persist option %s: %w", key, err)
	}
	return nil
}

// Close closes the database, flushing pending writes to disk.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}
