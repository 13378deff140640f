package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/hpungsan/clarity/internal/db"
	"github.com/hpungsan/clarity/internal/errors"
)

// BoltFileName is the bbolt database file inside the base directory.
const BoltFileName = "clarity.bolt"

const boltBucketRecords = "records" // key: record key -> boltRecord JSON

type boltRecord struct {
	Value     string `json:"value"`
	Version   int64  `json:"version"`
	UpdatedAt int64  `json:"updated_at"`
}

// Bolt stores records in a single bbolt bucket.
type Bolt struct {
	storage *bbolt.DB
}

// OpenBolt creates baseDir (and its exports dir) and opens baseDir/clarity.bolt.
func OpenBolt(baseDir string) (*Bolt, error) {
	if err := db.EnsureExportsDir(baseDir); err != nil {
		return nil, err
	}
	return NewBolt(filepath.Join(baseDir, BoltFileName))
}

// NewBolt opens (or creates) a Bolt store at path.
func NewBolt(path string) (*Bolt, error) {
	instance, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.NewStorageUnavailable(err)
	}

	if err := instance.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketRecords))
		return err
	}); err != nil {
		_ = instance.Close()

		return nil, errors.NewStorageUnavailable(err)
	}

	return &Bolt{storage: instance}, nil
}

func (b *Bolt) Get(ctx context.Context, key string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("get")
	}

	var rec *Record
	err := b.storage.View(func(tx *bbolt.Tx) error {
		r, err := readBolt(tx, key)
		rec = r
		return err
	})
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, errors.NewNotFound(key)
	}
	return rec, nil
}

func (b *Bolt) Set(ctx context.Context, key, value string) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("set")
	}

	var rec *Record
	err := b.storage.Update(func(tx *bbolt.Tx) error {
		current, err := readBolt(tx, key)
		if err != nil {
			return err
		}
		var version int64
		if current != nil {
			version = current.Version
		}
		rec, err = writeBolt(tx, key, value, version+1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (b *Bolt) CompareAndSwap(ctx context.Context, key, value string, expectVersion int64) (*Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("compare-and-swap")
	}

	var rec *Record
	err := b.storage.Update(func(tx *bbolt.Tx) error {
		current, err := readBolt(tx, key)
		if err != nil {
			return err
		}
		var version int64
		if current != nil {
			version = current.Version
		}
		if version != expectVersion {
			return conflict(key, expectVersion, version)
		}
		rec, err = writeBolt(tx, key, value, version+1)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (b *Bolt) Remove(ctx context.Context, keys ...string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewCancelled("remove")
	}

	return b.storage.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(boltBucketRecords))
		for _, k := range keys {
			if err := bucket.Delete([]byte(k)); err != nil {
				return errors.NewStorageUnavailable(err)
			}
		}
		return nil
	})
}

func (b *Bolt) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewCancelled("keys")
	}

	var keys []string
	err := b.storage.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket([]byte(boltBucketRecords)).Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, errors.NewStorageUnavailable(err)
	}
	return keys, nil
}

// Close closes the database.
func (b *Bolt) Close() error {
	return b.storage.Close()
}

func readBolt(tx *bbolt.Tx, key string) (*Record, error) {
	data := tx.Bucket([]byte(boltBucketRecords)).Get([]byte(key))
	if data == nil {
		return nil, nil
	}

	var br boltRecord
	if err := json.Unmarshal(data, &br); err != nil {
		return nil, errors.NewStorageUnavailable(fmt.Errorf("decoding %s: %w", key, err))
	}
	return &Record{Key: key, Value: br.Value, Version: br.Version, UpdatedAt: br.UpdatedAt}, nil
}

func writeBolt(tx *bbolt.Tx, key, value string, version int64) (*Record, error) {
	br := boltRecord{Value: value, Version: version, UpdatedAt: time.Now().UnixMilli()}
	data, err := json.Marshal(br)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if err := tx.Bucket([]byte(boltBucketRecords)).Put([]byte(key), data); err != nil {
		return nil, errors.NewStorageUnavailable(err)
	}
	return &Record{Key: key, Value: value, Version: version, UpdatedAt: br.UpdatedAt}, nil
}
