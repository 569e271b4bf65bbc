package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var boltBucket = []byte("chatKV")

// BoltStore keeps keys in a single bbolt bucket
type BoltStore struct {
	db *bbolt.DB
}

// NewBoltStore opens (creating if needed) a bbolt file at path
func NewBoltStore(path string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Op: "open", Key: path, Err: err}
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, &StorageError{Op: "open", Key: path, Err: errors.Wrap(err, "bolt open")}
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, &StorageError{Op: "open", Key: path, Err: errors.Wrap(err, "create bucket")}
	}

	return &BoltStore{db: db}, nil
}

func (b *BoltStore) Get(key string) (string, bool, error) {
	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		if v := tx.Bucket(boltBucket).Get([]byte(key)); v != nil {
			value = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return "", false, &StorageError{Op: "get", Key: key, Err: err}
	}
	if value == nil {
		return "", false, nil
	}
	return string(value), true, nil
}

func (b *BoltStore) Set(key, value string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), []byte(value))
	})
	if err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (b *BoltStore) Remove(key string) error {
	err := b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Delete([]byte(key))
	})
	if err != nil {
		return &StorageError{Op: "remove", Key: key, Err: err}
	}
	return nil
}

func (b *BoltStore) Keys(prefix string) ([]string, error) {
	var keys []string
	p := []byte(prefix)
	err := b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(boltBucket).Cursor()
		for k, _ := c.Seek(p); k != nil && bytes.HasPrefix(k, p); k, _ = c.Next() {
			keys = append(keys, string(k))
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "list", Key: prefix, Err: err}
	}
	return keys, nil
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
