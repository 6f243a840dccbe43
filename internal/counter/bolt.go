package counter

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var counterBucket = []byte("counters")

// Bolt keeps counters in an embedded bbolt file for single-node setups
// without a Redis server. bbolt serializes writers, so Incr is atomic.
type Bolt struct {
	db *bolt.DB
}

func OpenBolt(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create counter dir: %w", err)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(counterBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Bolt{db: db}, nil
}

// Layout: 8 bytes big endian value per key.
func (b *Bolt) Incr(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var next int64
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(counterBucket)
		var current int64
		if v := bucket.Get([]byte(key)); len(v) == 8 {
			current = int64(binary.BigEndian.Uint64(v))
		}
		next = current + 1
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(next))
		return bucket.Put([]byte(key), buf)
	})
	if err != nil {
		return 0, fmt.Errorf("bolt incr %s: %w", key, err)
	}
	return next, nil
}

// Ping confirms the file is open and the counter bucket is readable.
func (b *Bolt) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(counterBucket) == nil {
			return fmt.Errorf("bolt bucket %s missing", counterBucket)
		}
		return nil
	})
}

func (b *Bolt) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}
