package network

import (
	"testing"

	"github.com/go-errors/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/wifid/driver"
)

func TestInvokeArgumentErrors(t *testing.T) {
	tests := []struct {
		name    string
		method  string
		args    []interface{}
		message string
	}{
		{"ssid missing", "connect", nil, "No SSID provided"},
		{"ssid number", "connect", []interface{}{42}, "No SSID provided"},
		{"ssid empty", "connect", []interface{}{""}, "No SSID provided"},
		{"options string", "connect", []interface{}{"home", "secret"}, "Expecting options object but got String"},
		{"password number", "connect", []interface{}{"home", map[string]interface{}{"password": 1234.0}}, "Expecting options.password to be a string but got Number"},
		{"connect callback", "connect", []interface{}{"home", nil, "cb"}, "Expecting callback function but got String"},
		{"disconnect callback", "disconnect", []interface{}{true}, "Expecting callback function but got Boolean"},
		{"scan callback missing", "scan", nil, "Expecting callback function but got undefined"},
		{"scan callback object", "scan", []interface{}{map[string]interface{}{}}, "Expecting callback function but got Object"},
		{"query callback", "getIP", []interface{}{[]interface{}{}}, "Expecting callback function but got Array"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			w, d, rt := newTestWifi(t)

			_, err := w.Invoke(test.method, test.args...)

			require.IsType(t, &ArgumentError{}, err)
			assert.Equal(t, test.message, err.Error())
			assert.Empty(t, d.Calls())
			assert.False(t, w.gotIP.isSet())
			assert.False(t, w.disconnect.isSet())
			assert.False(t, w.scan.isSet())
			assert.Empty(t, rt.queued)
		})
	}
}

func TestInvokeConnect(t *testing.T) {
	w, d, rt := newTestWifi(t)
	calls := &callRecorder{}

	result, err := w.Invoke("connect", "home", map[string]interface{}{"password": "secret"}, calls.cb())
	require.NoError(t, err)
	assert.Nil(t, result)

	require.NoError(t, d.Emit(gotIPEvent("192.168.1.5", "255.255.255.0", "192.168.1.1")))
	rt.run()

	assert.Len(t, calls.calls, 1)
}

func TestInvokeAcceptsPlainFunctions(t *testing.T) {
	w, _, rt := newTestWifi(t)

	var got []interface{}
	_, err := w.Invoke("getStatus", func(args ...interface{}) {
		got = args
	})
	require.NoError(t, err)

	rt.run()
	require.Len(t, got, 1)
	assert.IsType(t, &Record{}, got[0])
}

func TestInvokeQueryReturnsRecord(t *testing.T) {
	w, _, _ := newTestWifi(t)

	result, err := w.Invoke("getDetails")
	require.NoError(t, err)

	record, ok := result.(*Record)
	require.True(t, ok)
	assert.Equal(t, []string{"ssid", "password"}, record.Keys())
}

func TestInvokeScanInProgress(t *testing.T) {
	w, _, _ := newTestWifi(t)
	calls := &callRecorder{}

	_, err := w.Invoke("scan", calls.cb())
	require.NoError(t, err)

	_, err = w.Invoke("scan", calls.cb())
	assert.Equal(t, ErrScanInProgress, err)
}

func TestInvokePlaceholders(t *testing.T) {
	w, d, _ := newTestWifi(t)

	for _, name := range []string{"startAP", "stopAP", "setConfig", "save", "restore", "getHostByName", "getHostname", "setHostname", "ping"} {
		result, err := w.Invoke(name, "anything", 1.0, nil)
		assert.NoError(t, err, name)
		assert.Nil(t, result, name)

		_, ok := CallbackArg(name)
		assert.False(t, ok, name)
	}

	assert.Empty(t, d.Calls())
}

func TestInvokeUnknownMethod(t *testing.T) {
	w, _, _ := newTestWifi(t)

	_, err := w.Invoke("reboot")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownMethod))
}

func TestCallbackArg(t *testing.T) {
	pos, ok := CallbackArg("connect")
	assert.True(t, ok)
	assert.Equal(t, 2, pos)

	pos, ok = CallbackArg("scan")
	assert.True(t, ok)
	assert.Equal(t, 0, pos)

	_, ok = CallbackArg("reboot")
	assert.False(t, ok)

	assert.Contains(t, Methods(), "getAPIP")
	assert.Len(t, Methods(), 17)
}

func TestInvokeDriverFailureIsNotAnError(t *testing.T) {
	w, d, _ := newTestWifi(t)

	d.Fail("SetMode", driver.StatusWifiNotInit)

	_, err := w.Invoke("connect", "home")
	assert.NoError(t, err)
}
