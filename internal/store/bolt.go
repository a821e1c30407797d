package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const prefsBucket = "prefs"

// BoltKV is a KV backed by a bbolt file
type BoltKV struct {
	db *bolt.DB
}

// OpenBolt opens or creates the preferences file at path
func OpenBolt(path string) (*BoltKV, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create prefs directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists([]byte(prefsBucket))
		return e
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create prefs bucket: %w", err)
	}

	return &BoltKV{db: db}, nil
}

func (b *BoltKV) Get(key string) (string, bool, error) {
	if b.db == nil {
		return "", false, errors.New("prefs not opened")
	}
	var (
		value string
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bk := tx.Bucket([]byte(prefsBucket))
		if bk == nil {
			return errors.New("prefs bucket missing")
		}
		if v := bk.Get([]byte(key)); v != nil {
			value = string(v)
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, found, nil
}

func (b *BoltKV) Put(key, value string) error {
	if b.db == nil {
		return errors.New("prefs not opened")
	}
	err := b.db.Update(func(tx *bolt.Tx) error {
		bk := tx.Bucket([]byte(prefsBucket))
		if bk == nil {
			return errors.New("prefs bucket missing")
		}
		return bk.Put([]byte(key), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (b *BoltKV) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
