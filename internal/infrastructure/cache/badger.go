package cache

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
)

const DefaultGCSchedule = "@every 10m"

// Badger is an embedded CacheStore. An empty dir keeps everything in memory.
type Badger struct {
	db     *badger.DB
	logger *log.Logger
	cron   *cron.Cron
}

type badgerLogger struct {
	logger *log.Logger
}

func (l badgerLogger) Errorf(f string, v ...any)   { l.logger.Printf("[Cache] badger error: "+f, v...) }
func (l badgerLogger) Warningf(f string, v ...any) { l.logger.Printf("[Cache] badger warn: "+f, v...) }
func (badgerLogger) Infof(string, ...any)          {}
func (badgerLogger) Debugf(string, ...any)         {}

func OpenBadger(dir string, logger *log.Logger) (*Badger, error) {
	var opts badger.Options
	dir = strings.TrimSpace(dir)
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create badger dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger: logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &Badger{db: db, logger: logger}, nil
}

func (b *Badger) Get(_ context.Context, key string) ([]byte, bool, error) {
	var out []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (b *Badger) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	return b.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

func (b *Badger) Delete(_ context.Context, key string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// DeleteByPrefix deletes matching keys through a write batch, which splits the work
// across as many transactions as the key count needs.
func (b *Badger) DeleteByPrefix(_ context.Context, prefix string) (int, error) {
	if prefix == "" {
		return 0, nil
	}
	p := []byte(prefix)

	var keys [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = p
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range keys {
		if err := wb.Delete(k); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (b *Badger) TTL(_ context.Context, key string) (time.Duration, bool, error) {
	var expiresAt uint64
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		expiresAt = item.ExpiresAt()
		return nil
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if expiresAt == 0 {
		return 0, true, nil
	}
	remaining := time.Until(time.Unix(int64(expiresAt), 0))
	if remaining < 0 {
		remaining = 0
	}
	return remaining.Truncate(time.Second), true, nil
}

func (b *Badger) Ping(context.Context) error {
	if b.db.IsClosed() {
		return ErrUnavailable
	}
	return nil
}

// StartGC schedules value-log garbage collection. In-memory stores have no value log.
func (b *Badger) StartGC(schedule string) error {
	if b.db.Opts().InMemory {
		return nil
	}
	if strings.TrimSpace(schedule) == "" {
		schedule = DefaultGCSchedule
	}
	c := cron.New()
	if _, err := c.AddFunc(schedule, b.runGC); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}
	c.Start()
	b.cron = c
	if b.logger != nil {
		b.logger.Printf("[Cache] badger value-log GC scheduled: %s", schedule)
	}
	return nil
}

func (b *Badger) runGC() {
	for {
		// RunValueLogGC rewrites at most one file per call
		if err := b.db.RunValueLogGC(0.5); err != nil {
			if !errors.Is(err, badger.ErrNoRewrite) && b.logger != nil {
				b.logger.Printf("[Cache] badger GC error: %v", err)
			}
			return
		}
	}
}

func (b *Badger) Close() error {
	if b.cron != nil {
		<-b.cron.Stop().Done()
	}
	return b.db.Close()
}
