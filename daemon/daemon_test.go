package daemon

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/driver"
	"github.com/the-lightning-land/wifid/eventloop"
	"github.com/the-lightning-land/wifid/network"
	"github.com/the-lightning-land/wifid/wifidb"
)

type fakeApi struct {
	served   chan net.Listener
	shutdown chan struct{}
}

func newFakeApi() *fakeApi {
	return &fakeApi{
		served:   make(chan net.Listener, 1),
		shutdown: make(chan struct{}),
	}
}

func (f *fakeApi) Serve(l net.Listener) error {
	f.served <- l
	<-f.shutdown
	return l.Close()
}

func (f *fakeApi) Shutdown(ctx context.Context) error {
	close(f.shutdown)
	return nil
}

type fixture struct {
	daemon   *Daemon
	driver   *driver.MockDriver
	db       *wifidb.DB
	reporter *connectivity.NetworkReporter
}

func openTestDB(t *testing.T) *wifidb.DB {
	db, err := wifidb.Open(t.TempDir())
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}

func newFixture(t *testing.T, db *wifidb.DB, api Api) *fixture {
	d := driver.NewMockDriver(&driver.MockConfig{
		Simulate: true,
		// completion events trail the call that triggered them
		Delay:    20 * time.Millisecond,
		Networks: []driver.MockNetwork{
			{SSID: "home", Password: "secret", Channel: 6, RSSI: -42, AuthMode: driver.AuthWPA2PSK},
			{SSID: "cafe", Channel: 11, RSSI: -71, AuthMode: driver.AuthOpen},
		},
	})

	loop := eventloop.New(&eventloop.Config{})

	reporter := connectivity.NewReporter(&connectivity.Config{})

	daemon := New(&Config{
		Wifi: network.NewWifi(&network.Config{
			Driver:  d,
			Runtime: loop,
		}),
		Loop:     loop,
		DB:       db,
		Reporter: reporter,
		Api:      api,
		Listen:   []string{"127.0.0.1:0"},
		Timeout:  time.Second,
	})

	ran := make(chan error, 1)
	go func() {
		ran <- daemon.Run()
	}()

	t.Cleanup(func() {
		daemon.Shutdown()

		select {
		case err := <-ran:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Error("daemon did not stop")
		}
	})

	return &fixture{
		daemon:   daemon,
		driver:   d,
		db:       db,
		reporter: reporter,
	}
}

func (f *fixture) waitOnline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.True(t, f.reporter.WaitForStateChange(ctx, connectivity.Offline))
	require.Equal(t, connectivity.Online, f.daemon.State())
}

func TestConnectsToSavedNetwork(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SetWifiConnection(&wifidb.WifiConnection{Ssid: "home", Psk: "secret"}))

	f := newFixture(t, db, nil)
	f.waitOnline(t)

	assert.Contains(t, f.driver.Calls(), "Connect")
}

func TestNoSavedNetwork(t *testing.T) {
	f := newFixture(t, openTestDB(t), nil)

	status, err := f.daemon.WifiStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "off", status.String("station"))
	assert.NotContains(t, f.driver.Calls(), "Connect")
}

func TestRemembersConnectedNetwork(t *testing.T) {
	f := newFixture(t, openTestDB(t), nil)

	require.NoError(t, f.daemon.ConnectToWifi("home", "secret"))
	f.waitOnline(t)

	assert.Eventually(t, func() bool {
		saved, err := f.db.GetWifiConnection()
		return err == nil && saved != nil && *saved == wifidb.WifiConnection{Ssid: "home", Psk: "secret"}
	}, time.Second, 10*time.Millisecond)

	ip, err := f.daemon.WifiIP(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.168.4.2", ip.String("ip"))

	details, err := f.daemon.WifiDetails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "home", details.String("ssid"))

	require.NoError(t, f.daemon.ForgetWifi())

	saved, err := f.db.GetWifiConnection()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestDoesNotRememberFailedNetwork(t *testing.T) {
	f := newFixture(t, openTestDB(t), nil)

	require.NoError(t, f.daemon.ConnectToWifi("home", "guess"))

	assert.Eventually(t, func() bool {
		status, err := f.daemon.WifiStatus(context.Background())
		return err == nil && status.String("station") == string(network.StationWrongPassword)
	}, time.Second, 10*time.Millisecond)

	saved, err := f.db.GetWifiConnection()
	require.NoError(t, err)
	assert.Nil(t, saved)
	assert.Equal(t, connectivity.Offline, f.daemon.State())
}

func TestScanWifi(t *testing.T) {
	f := newFixture(t, openTestDB(t), nil)

	records, err := f.daemon.ScanWifi(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "home", records[0].String("ssid"))
	assert.Equal(t, "wpa2", records[0].String("authMode"))
	assert.Equal(t, "cafe", records[1].String("ssid"))
}

func TestScanWifiTimesOut(t *testing.T) {
	f := newFixture(t, openTestDB(t), nil)

	f.driver.Fail("ScanAPNum", driver.StatusFail)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := f.daemon.ScanWifi(ctx)
	assert.Error(t, err)
}

func TestServesApi(t *testing.T) {
	api := newFakeApi()
	newFixture(t, openTestDB(t), api)

	select {
	case l := <-api.served:
		assert.Equal(t, "127.0.0.1", l.Addr().(*net.TCPAddr).IP.String())
	case <-time.After(time.Second):
		t.Fatal("api was not served")
	}
}

func TestName(t *testing.T) {
	f := newFixture(t, openTestDB(t), nil)

	require.NoError(t, f.daemon.SetName("porch"))

	name, err := f.daemon.GetName()
	require.NoError(t, err)
	assert.Equal(t, "porch", name)
}
