package history

import (
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

const transcriptBucket = "transcripts"

// record is the stored form of an Entry plus its expiry.
type record struct {
	Entry
	ExpiresAt int64 `json:"expires_at"`
}

// boltStore implements a Store backed by BoltDB. Each session gets a nested
// bucket keyed by a monotonically increasing sequence number.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	entryTTL        time.Duration
	cleanupInterval time.Duration
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(transcriptBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		entryTTL:        opts.EntryTTL,
		cleanupInterval: opts.CleanupInterval,
	}
	store.lastCleanup.Store(time.Now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Append writes one transcript entry to the session's bucket.
func (b *boltStore) Append(sessionID string, e Entry) error {
	if b == nil || b.db == nil {
		return nil
	}
	if sessionID == "" {
		return fmt.Errorf("session id is empty")
	}

	now := time.Now()
	if e.At.IsZero() {
		e.At = now.UTC()
	}
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(transcriptBucket))
		if root == nil {
			return fmt.Errorf("transcript bucket missing")
		}
		bucket, err := root.CreateBucketIfNotExists([]byte(sessionID))
		if err != nil {
			return fmt.Errorf("session bucket: %w", err)
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}
		key := make([]byte, 8)
		binary.BigEndian.PutUint64(key, seq)

		value, err := json.Marshal(record{
			Entry:     e,
			ExpiresAt: now.Add(b.entryTTL).Unix(),
		})
		if err != nil {
			return fmt.Errorf("marshal entry: %w", err)
		}
		return bucket.Put(key, value)
	})
}

// Recent returns up to n most recent entries for a session, oldest first.
func (b *boltStore) Recent(sessionID string, n int) ([]Entry, error) {
	if b == nil || b.db == nil || n <= 0 {
		return nil, nil
	}

	now := time.Now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return nil, err
	}

	var out []Entry
	err := b.db.View(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(transcriptBucket))
		if root == nil {
			return fmt.Errorf("transcript bucket missing")
		}
		bucket := root.Bucket([]byte(sessionID))
		if bucket == nil {
			return nil
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && len(out) < n; k, v = cursor.Prev() {
			var rec record
			if err := json.Unmarshal(v, &rec); err != nil {
				continue
			}
			if rec.ExpiresAt <= now.Unix() {
				continue
			}
			out = append(out, rec.Entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// cursor walked newest-first; return oldest-first
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// maybeCleanupExpired removes expired transcript entries on a fixed cadence to
// avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		root := tx.Bucket([]byte(transcriptBucket))
		if root == nil {
			return fmt.Errorf("transcript bucket missing")
		}

		return root.ForEachBucket(func(name []byte) error {
			bucket := root.Bucket(name)
			if bucket == nil {
				return nil
			}
			cursor := bucket.Cursor()
			for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
				var rec record
				if err := json.Unmarshal(v, &rec); err != nil || rec.ExpiresAt <= now.Unix() {
					if err := cursor.Delete(); err != nil {
						return err
					}
				}
			}
			return nil
		})
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}
