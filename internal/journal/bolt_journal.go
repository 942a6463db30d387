package journal

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	attemptBucket = "attempts"
	keyBytes      = 12
)

// boltJournal implements a Store backed by BoltDB. Keys are time-ordered
// (8-byte unix-nano timestamp plus a 4-byte sequence to break ties), so TTL
// sweeps and Recent scans are simple cursor walks.
type boltJournal struct {
	db              *bolt.DB
	seq             atomic.Uint32
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed journal.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(attemptBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	j := &boltJournal{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	j.lastCleanup.Store(time.Now().Unix())
	return j, nil
}

// Close closes the BoltDB journal.
func (j *boltJournal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends a dispatch attempt.
func (j *boltJournal) Record(e Entry) error {
	if j == nil || j.db == nil {
		return nil
	}

	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	if err := j.maybeCleanupExpired(time.Now()); err != nil {
		return err
	}

	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode journal entry: %w", err)
	}

	key := j.entryKey(e.RecordedAt)
	return j.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(attemptBucket))
		if bucket == nil {
			return fmt.Errorf("attempt bucket missing")
		}
		return bucket.Put(key, value)
	})
}

// Recent returns up to n entries, newest first.
func (j *boltJournal) Recent(n int) ([]Entry, error) {
	if j == nil || j.db == nil || n <= 0 {
		return nil, nil
	}

	var out []Entry
	err := j.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(attemptBucket))
		if bucket == nil {
			return fmt.Errorf("attempt bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < n; k, v = cursor.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			out = append(out, e)
		}
		return nil
	})
	return out, err
}

// entryKey builds a time-ordered unique key for an entry.
func (j *boltJournal) entryKey(at time.Time) []byte {
	key := make([]byte, keyBytes)
	binary.BigEndian.PutUint64(key[:8], uint64(at.UnixNano()))
	binary.BigEndian.PutUint32(key[8:], j.seq.Add(1))
	return key
}

// maybeCleanupExpired removes entries past their TTL on a fixed cadence to
// avoid unbounded growth.
func (j *boltJournal) maybeCleanupExpired(now time.Time) error {
	if j == nil || j.db == nil {
		return nil
	}

	last := time.Unix(j.lastCleanup.Load(), 0)
	if now.Sub(last) < j.cleanupInterval {
		return nil
	}

	j.cleanupMu.Lock()
	defer j.cleanupMu.Unlock()

	last = time.Unix(j.lastCleanup.Load(), 0)
	if now.Sub(last) < j.cleanupInterval {
		return nil
	}

	cutoff := make([]byte, 8)
	binary.BigEndian.PutUint64(cutoff, uint64(now.Add(-j.entryTTL).UnixNano()))

	err := j.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(attemptBucket))
		if bucket == nil {
			return fmt.Errorf("attempt bucket missing")
		}

		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			if len(k) >= 8 && bytes.Compare(k[:8], cutoff) >= 0 {
				break
			}
			if err := cursor.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		j.lastCleanup.Store(now.Unix())
	}
	return err
}
