package network

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wifid/driver"
)

func newTestWifi(t *testing.T) (*Wifi, *driver.MockDriver, *recordingRuntime) {
	d := driver.NewMockDriver(nil)
	rt := &recordingRuntime{}

	w := NewWifi(&Config{
		Driver:  d,
		Runtime: rt,
	})

	require.NoError(t, w.Start())
	d.ResetCalls()

	return w, d, rt
}

func gotIPEvent(ip, netmask, gw string) driver.Event {
	return driver.Event{
		ID: driver.EventSTAGotIP,
		Info: &driver.GotIP{IPInfo: driver.IPInfo{
			IP:      net.ParseIP(ip),
			Netmask: net.ParseIP(netmask),
			GW:      net.ParseIP(gw),
		}},
	}
}

func disconnectedEvent(ssid string, reason uint8) driver.Event {
	info := &driver.STADisconnected{
		SSIDLen: uint8(len(ssid)),
		BSSID:   [6]byte{0xaa, 0xbb, 0xcc, 0x00, 0x11, 0x22},
		Reason:  reason,
	}
	copy(info.SSID[:], ssid)

	return driver.Event{ID: driver.EventSTADisconnected, Info: info}
}

func apRecord(ssid string, rssi int8, mode driver.AuthMode) driver.APRecord {
	record := driver.APRecord{RSSI: rssi, AuthMode: mode}
	copy(record.SSID[:], ssid)
	return record
}

func TestConnectResolvesOnGotIP(t *testing.T) {
	w, d, rt := newTestWifi(t)
	calls := &callRecorder{}

	require.NoError(t, w.Connect("myssid", &ConnectOptions{Password: "secret"}, calls.cb()))
	assert.Equal(t, []string{"SetMode", "SetSTAConfig", "Start", "Connect"}, d.Calls())

	config, err := d.GetSTAConfig()
	require.NoError(t, err)
	assert.Equal(t, "myssid", decodeString(config.SSID[:]))
	assert.Equal(t, "secret", decodeString(config.Password[:]))

	require.NoError(t, d.Emit(gotIPEvent("192.168.1.5", "255.255.255.0", "192.168.1.1")))
	rt.run()

	require.Len(t, calls.calls, 1)
	assert.Equal(t, []interface{}{nil}, calls.calls[0])
	assert.False(t, w.gotIP.isSet())

	events := rt.emitted()
	require.Len(t, events, 1)
	assert.Equal(t, EventConnected, events[0].name)
	require.Len(t, events[0].args, 1)

	record := events[0].args[0].(*Record)
	assert.Equal(t, []string{"ip", "netmask", "gw"}, record.Keys())
	assert.Equal(t, "192.168.1.5", record.String("ip"))
	assert.Equal(t, "255.255.255.0", record.String("netmask"))
	assert.Equal(t, "192.168.1.1", record.String("gw"))

	require.NoError(t, d.Emit(gotIPEvent("192.168.1.5", "255.255.255.0", "192.168.1.1")))
	rt.run()

	assert.Len(t, calls.calls, 1)
	assert.Equal(t, StationConnected, w.Station())
}

func TestConnectTruncatesCredentials(t *testing.T) {
	w, d, _ := newTestWifi(t)

	ssid := strings.Repeat("s", 40)
	password := strings.Repeat("p", 80)

	require.NoError(t, w.Connect(ssid, &ConnectOptions{Password: password}, nil))

	config, err := d.GetSTAConfig()
	require.NoError(t, err)
	assert.Equal(t, ssid[:32], decodeString(config.SSID[:]))
	assert.Equal(t, password[:64], decodeString(config.Password[:]))
}

func TestConnectWithoutSSID(t *testing.T) {
	w, d, _ := newTestWifi(t)

	err := w.Connect("", nil, nil)

	require.IsType(t, &ArgumentError{}, err)
	assert.Equal(t, "No SSID provided", err.Error())
	assert.Empty(t, d.Calls())
}

func TestConnectSupersedesPendingCallback(t *testing.T) {
	w, d, rt := newTestWifi(t)
	first := &callRecorder{}
	second := &callRecorder{}

	require.NoError(t, w.Connect("one", nil, first.cb()))
	require.NoError(t, w.Connect("two", nil, second.cb()))

	require.NoError(t, d.Emit(gotIPEvent("10.0.0.2", "255.0.0.0", "10.0.0.1")))
	rt.run()

	assert.Empty(t, first.calls)
	assert.Len(t, second.calls, 1)
}

func TestConnectDriverFailureAbortsSequence(t *testing.T) {
	tests := []struct {
		call  string
		calls []string
	}{
		{"SetMode", []string{"SetMode"}},
		{"SetSTAConfig", []string{"SetMode", "SetSTAConfig"}},
		{"Start", []string{"SetMode", "SetSTAConfig", "Start"}},
		{"Connect", []string{"SetMode", "SetSTAConfig", "Start", "Connect"}},
	}

	for _, test := range tests {
		t.Run(test.call, func(t *testing.T) {
			w, d, rt := newTestWifi(t)
			calls := &callRecorder{}

			d.Fail(test.call, driver.StatusFail)

			require.NoError(t, w.Connect("home", nil, calls.cb()))
			assert.Equal(t, test.calls, d.Calls())
			assert.False(t, w.gotIP.isSet())

			require.NoError(t, d.Emit(gotIPEvent("10.0.0.2", "255.0.0.0", "10.0.0.1")))
			rt.run()

			assert.Empty(t, calls.calls)
		})
	}
}

func TestDisconnectResolvesWithoutArguments(t *testing.T) {
	w, d, rt := newTestWifi(t)
	calls := &callRecorder{}

	require.NoError(t, w.Disconnect(calls.cb()))
	assert.Equal(t, []string{"Disconnect"}, d.Calls())

	require.NoError(t, d.Emit(disconnectedEvent("home", driver.ReasonAssocLeave)))
	rt.run()

	require.Len(t, calls.calls, 1)
	assert.Empty(t, calls.calls[0])
	assert.False(t, w.disconnect.isSet())
	assert.Equal(t, StationOff, w.Station())
}

func TestDisconnectThenConnectDropsDisconnectCallback(t *testing.T) {
	w, d, rt := newTestWifi(t)
	cbA := &callRecorder{}
	cbB := &callRecorder{}

	require.NoError(t, w.Disconnect(cbA.cb()))
	require.NoError(t, w.Connect("ssid", nil, cbB.cb()))

	assert.False(t, w.disconnect.isSet())
	assert.True(t, w.gotIP.isSet())

	require.NoError(t, d.Emit(disconnectedEvent("ssid", driver.ReasonAssocLeave)))
	rt.run()
	assert.Empty(t, cbA.calls)
	assert.Empty(t, cbB.calls)

	require.NoError(t, d.Emit(gotIPEvent("10.0.0.2", "255.0.0.0", "10.0.0.1")))
	rt.run()
	assert.Empty(t, cbA.calls)
	assert.Len(t, cbB.calls, 1)
}

func TestDisconnectDriverFailure(t *testing.T) {
	w, d, _ := newTestWifi(t)
	calls := &callRecorder{}

	d.Fail("Disconnect", driver.StatusWifiNotStarted)

	require.NoError(t, w.Disconnect(calls.cb()))
	assert.False(t, w.disconnect.isSet())
}

func TestScanResolvesWithRecordsInOrder(t *testing.T) {
	w, d, rt := newTestWifi(t)
	calls := &callRecorder{}

	require.NoError(t, w.Scan(calls.cb()))
	assert.Equal(t, []string{"SetMode", "Start", "ScanStart"}, d.Calls())

	d.SetRecords([]driver.APRecord{
		apRecord("first", -40, driver.AuthWPA2PSK),
		apRecord("second", -72, driver.AuthOpen),
	})

	require.NoError(t, d.Emit(driver.Event{ID: driver.EventScanDone, Info: &driver.ScanDone{Number: 2}}))
	rt.run()

	require.Len(t, calls.calls, 1)
	require.Len(t, calls.calls[0], 1)

	results := calls.calls[0][0].([]*Record)
	require.Len(t, results, 2)

	assert.Equal(t, []string{"rssi", "authMode", "ssid"}, results[0].Keys())
	assert.Equal(t, "first", results[0].String("ssid"))
	assert.Equal(t, "wpa2", results[0].String("authMode"))
	rssi, _ := results[0].Get("rssi")
	assert.Equal(t, -40, rssi)

	assert.Equal(t, "second", results[1].String("ssid"))
	assert.Equal(t, "open", results[1].String("authMode"))

	assert.False(t, w.scan.isSet())
	assert.Empty(t, rt.emitted())
}

func TestScanWhilePending(t *testing.T) {
	w, d, rt := newTestWifi(t)
	first := &callRecorder{}
	second := &callRecorder{}

	require.NoError(t, w.Scan(first.cb()))
	d.ResetCalls()

	assert.Equal(t, ErrScanInProgress, w.Scan(second.cb()))
	assert.Empty(t, d.Calls())

	d.SetRecords([]driver.APRecord{apRecord("net", -50, driver.AuthWEP)})
	require.NoError(t, d.Emit(driver.Event{ID: driver.EventScanDone, Info: &driver.ScanDone{Number: 1}}))
	rt.run()

	assert.Len(t, first.calls, 1)
	assert.Empty(t, second.calls)

	require.NoError(t, w.Scan(second.cb()))
}

func TestScanRequiresCallback(t *testing.T) {
	w, d, _ := newTestWifi(t)

	err := w.Scan(nil)

	require.IsType(t, &ArgumentError{}, err)
	assert.Equal(t, "Expecting callback function but got undefined", err.Error())
	assert.Empty(t, d.Calls())
}

func TestScanDriverFailureKeepsSlotFree(t *testing.T) {
	w, d, _ := newTestWifi(t)
	calls := &callRecorder{}

	d.Fail("ScanStart", driver.StatusWifiState)

	require.NoError(t, w.Scan(calls.cb()))
	assert.False(t, w.scan.isSet())

	d.Fail("ScanStart", nil)
	require.NoError(t, w.Scan(calls.cb()))
	assert.True(t, w.scan.isSet())
}

func TestScanRecordFetchFailureReleasesSlot(t *testing.T) {
	w, d, rt := newTestWifi(t)
	calls := &callRecorder{}

	require.NoError(t, w.Scan(calls.cb()))

	d.Fail("ScanAPRecords", driver.StatusNoMem)

	err := d.Emit(driver.Event{ID: driver.EventScanDone, Info: &driver.ScanDone{}})
	require.Error(t, err)
	rt.run()

	assert.Empty(t, calls.calls)
	assert.False(t, w.scan.isSet())
}

func TestScanDoneWithoutPendingScan(t *testing.T) {
	_, d, rt := newTestWifi(t)

	require.NoError(t, d.Emit(driver.Event{ID: driver.EventScanDone, Info: &driver.ScanDone{}}))

	assert.NotContains(t, d.Calls(), "ScanAPNum")
	assert.Empty(t, rt.emitted())
}

func TestStopDropsPendingCallbacks(t *testing.T) {
	w, d, rt := newTestWifi(t)
	calls := &callRecorder{}

	require.NoError(t, w.Connect("home", nil, calls.cb()))
	require.NoError(t, w.Scan(calls.cb()))
	require.NoError(t, w.Stop())

	require.NoError(t, d.Emit(gotIPEvent("10.0.0.2", "255.0.0.0", "10.0.0.1")))
	rt.run()

	assert.Empty(t, calls.calls)
	assert.False(t, w.scan.isSet())
}

func TestGetStatus(t *testing.T) {
	w, d, rt := newTestWifi(t)
	calls := &callRecorder{}

	require.NoError(t, w.Connect("home", nil, nil))

	record, err := w.GetStatus(calls.cb())
	require.NoError(t, err)

	assert.Equal(t, []string{"mode", "powersave", "station", "ap"}, record.Keys())
	assert.Equal(t, "sta", record.String("mode"))
	assert.Equal(t, "modem", record.String("powersave"))
	assert.Equal(t, "connecting", record.String("station"))
	assert.Equal(t, "disabled", record.String("ap"))

	rt.run()
	require.Len(t, calls.calls, 1)
	assert.Same(t, record, calls.calls[0][0])

	require.NoError(t, d.SetMode(driver.ModeAPSTA))
	d.Fail("GetPowerSave", driver.StatusFail)

	record, err = w.GetStatus(nil)
	require.NoError(t, err)
	assert.Equal(t, "sta+ap", record.String("mode"))
	assert.Equal(t, "unknown", record.String("powersave"))
	assert.Equal(t, "enabled", record.String("ap"))
}

func TestGetDetails(t *testing.T) {
	w, _, _ := newTestWifi(t)

	require.NoError(t, w.Connect("home", &ConnectOptions{Password: "secret"}, nil))

	record, err := w.GetDetails(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"ssid", "password"}, record.Keys())
	assert.Equal(t, "home", record.String("ssid"))
	assert.Equal(t, "secret", record.String("password"))
}

func TestGetAPDetails(t *testing.T) {
	w, d, _ := newTestWifi(t)

	config := driver.APConfig{
		SSIDLen:       7,
		AuthMode:      driver.AuthWPAWPA2PSK,
		SSIDHidden:    true,
		MaxConnection: 3,
	}
	copy(config.SSID[:], "espruinoXX")
	copy(config.Password[:], "pass1234")
	d.SetAPConfig(config)

	record, err := w.GetAPDetails(nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"authMode", "hidden", "maxConn", "ssid", "password"}, record.Keys())
	assert.Equal(t, "wpa_wpa2", record.String("authMode"))
	hidden, _ := record.Get("hidden")
	assert.Equal(t, true, hidden)
	maxConn, _ := record.Get("maxConn")
	assert.Equal(t, 3, maxConn)
	assert.Equal(t, "espruin", record.String("ssid"))
	assert.Equal(t, "pass1234", record.String("password"))
}

func TestGetIP(t *testing.T) {
	w, d, _ := newTestWifi(t)

	record, err := w.GetIP(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"mac"}, record.Keys())
	assert.Equal(t, "24:0a:c4:00:00:01", record.String("mac"))

	d.SetIPInfo(driver.InterfaceSTA, &driver.IPInfo{
		IP:      net.IPv4(192, 168, 1, 5),
		Netmask: net.IPv4(255, 255, 255, 0),
		GW:      net.IPv4(192, 168, 1, 1),
	})

	record, err = w.GetIP(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"ip", "netmask", "gw", "mac"}, record.Keys())
	assert.Equal(t, "192.168.1.5", record.String("ip"))

	d.SetIPInfo(driver.InterfaceAP, &driver.IPInfo{IP: net.IPv4zero})

	record, err = w.GetAPIP(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"mac"}, record.Keys())
	assert.Equal(t, "24:0a:c4:00:00:02", record.String("mac"))
}

func TestPlaceholders(t *testing.T) {
	w, d, rt := newTestWifi(t)

	for _, fn := range []func() error{
		w.StartAP, w.StopAP, w.SetConfig, w.Save, w.Restore,
		w.GetHostByName, w.GetHostname, w.SetHostname, w.Ping,
	} {
		assert.NoError(t, fn())
	}

	assert.Empty(t, d.Calls())
	assert.Empty(t, rt.emitted())
}
