// Package wifidb persists the daemon's settings in a bbolt database.
package wifidb

import (
	"os"
	"path/filepath"
	"time"

	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
)

const dbName = "wifi.db"

var (
	settingsBucket    = []byte("settings")
	wifiConnectionKey = []byte("wifiConnection")
	nameKey           = []byte("name")
)

type DB struct {
	*bbolt.DB
	path string
}

// WifiConnection is the station network the daemon reconnects to at boot.
type WifiConnection struct {
	Ssid string `json:"ssid"`
	Psk  string `json:"psk"`
}

// Open opens or creates the database inside dir.
func Open(dir string) (*DB, error) {
	err := os.MkdirAll(dir, 0700)
	if err != nil {
		return nil, errors.Errorf("Could not create %v: %v", dir, err)
	}

	path := filepath.Join(dir, dbName)

	bdb, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Errorf("Could not open %v: %v", path, err)
	}

	db := &DB{
		DB:   bdb,
		path: path,
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settingsBucket)
		return err
	})
	if err != nil {
		_ = bdb.Close()
		return nil, errors.Errorf("Could not create buckets: %v", err)
	}

	return db, nil
}

func (db *DB) Path() string {
	return db.path
}

func (db *DB) GetWifiConnection() (*WifiConnection, error) {
	connection := &WifiConnection{}

	found, err := db.getJSON(settingsBucket, wifiConnectionKey, connection)
	if err != nil {
		return nil, errors.Errorf("Could not get wifi connection: %v", err)
	}

	if !found {
		return nil, nil
	}

	return connection, nil
}

// SetWifiConnection stores connection. Nil forgets the stored one.
func (db *DB) SetWifiConnection(connection *WifiConnection) error {
	err := db.setJSON(settingsBucket, wifiConnectionKey, connection)
	if err != nil {
		return errors.Errorf("Could not set wifi connection: %v", err)
	}

	return nil
}

func (db *DB) GetName() (string, error) {
	var name string

	_, err := db.getJSON(settingsBucket, nameKey, &name)
	if err != nil {
		return "", errors.Errorf("Could not get name: %v", err)
	}

	return name, nil
}

func (db *DB) SetName(name string) error {
	err := db.setJSON(settingsBucket, nameKey, name)
	if err != nil {
		return errors.Errorf("Could not set name: %v", err)
	}

	return nil
}
