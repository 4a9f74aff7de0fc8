package wifidb

import (
	"bytes"
	"encoding/json"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

func (db *DB) setJSON(bucket []byte, bucketKey []byte, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists(bucket)
		if err != nil {
			return err
		}

		return bucket.Put(bucketKey, payload)
	})
}

// getJSON decodes the value under bucketKey into v. It reports false when
// the key is missing or holds null.
func (db *DB) getJSON(bucket []byte, bucketKey []byte, v interface{}) (bool, error) {
	found := false

	err := db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucket)
		if bucket == nil {
			return nil
		}

		payload := bucket.Get(bucketKey)
		if payload == nil || bytes.Equal(payload, []byte("null")) {
			return nil
		}

		err := json.Unmarshal(payload, v)
		if err != nil {
			return errors.Errorf("Could not unmarshal data: %v", err)
		}

		found = true

		return nil
	})

	return found, err
}
