package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/rubiojr/kashif/pkg/core"
	"github.com/rubiojr/kashif/pkg/log"
)

// BadgerBackend is an embedded cache for deployments without Redis.
type BadgerBackend struct {
	db *badger.DB
}

type badgerLogger struct {
	l *log.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (bl *badgerLogger) Errorf(msg string, items ...any)   { bl.l.Errorf(msg, items...) }
func (bl *badgerLogger) Warningf(msg string, items ...any) { bl.l.Warnf(msg, items...) }
func (bl *badgerLogger) Infof(msg string, items ...any)    { bl.l.Debugf(msg, items...) }
func (bl *badgerLogger) Debugf(msg string, items ...any)   { bl.l.Debugf(msg, items...) }

// OpenBadgerBackend opens (creating if needed) a Badger database in dir. When
// inMemory is set dir is ignored and nothing touches the disk.
func OpenBadgerBackend(dir string, inMemory bool) (*BadgerBackend, error) {
	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating cache directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLogger{l: log.ForService("badger")}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger cache: %w", err)
	}
	return &BadgerBackend{db: db}, nil
}

func (b *BadgerBackend) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("%w: badger get: %v", core.ErrCacheUnavailable, err)
	}
	return value, nil
}

func (b *BadgerBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("%w: badger set: %v", core.ErrCacheUnavailable, err)
	}
	return nil
}

// RunGC reclaims space from expired entries. Nothing to collect is not an
// error.
func (b *BadgerBackend) RunGC() error {
	err := b.db.RunValueLogGC(0.5)
	if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) || errors.Is(err, badger.ErrGCInMemoryMode) {
		return nil
	}
	return err
}

func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
