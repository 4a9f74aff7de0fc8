package wifidb

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	dir, err := ioutil.TempDir("", "wifidb")
	require.NoError(t, err)

	db, err := Open(filepath.Join(dir, "nested"))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
		_ = os.RemoveAll(dir)
	})

	return db
}

func TestWifiConnection(t *testing.T) {
	db := openTestDB(t)

	connection, err := db.GetWifiConnection()
	require.NoError(t, err)
	assert.Nil(t, connection)

	require.NoError(t, db.SetWifiConnection(&WifiConnection{Ssid: "home", Psk: "secret"}))

	connection, err = db.GetWifiConnection()
	require.NoError(t, err)
	assert.Equal(t, &WifiConnection{Ssid: "home", Psk: "secret"}, connection)

	require.NoError(t, db.SetWifiConnection(nil))

	connection, err = db.GetWifiConnection()
	require.NoError(t, err)
	assert.Nil(t, connection)
}

func TestName(t *testing.T) {
	db := openTestDB(t)

	name, err := db.GetName()
	require.NoError(t, err)
	assert.Empty(t, name)

	require.NoError(t, db.SetName("kitchen"))

	name, err = db.GetName()
	require.NoError(t, err)
	assert.Equal(t, "kitchen", name)
}

func TestReopenKeepsData(t *testing.T) {
	dir, err := ioutil.TempDir("", "wifidb")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	db, err := Open(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "wifi.db"), db.Path())
	require.NoError(t, db.SetWifiConnection(&WifiConnection{Ssid: "office"}))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()

	connection, err := db.GetWifiConnection()
	require.NoError(t, err)
	assert.Equal(t, "office", connection.Ssid)
	assert.Empty(t, connection.Psk)
}

func TestCorruptValue(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.setJSON(settingsBucket, wifiConnectionKey, "not an object"))

	_, err := db.GetWifiConnection()
	assert.Error(t, err)
}
