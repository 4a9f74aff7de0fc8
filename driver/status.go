package driver

import "fmt"

// Status is a non-success code returned by a driver call.
type Status int32

const (
	StatusFail           Status = -1
	StatusNoMem          Status = 0x101
	StatusInvalidArg     Status = 0x102
	StatusInvalidState   Status = 0x103
	StatusNotSupported   Status = 0x106
	StatusWifiNotInit    Status = 0x3001
	StatusWifiNotStarted Status = 0x3002
	StatusWifiIf         Status = 0x3004
	StatusWifiMode       Status = 0x3005
	StatusWifiState      Status = 0x3006
	StatusWifiConn       Status = 0x3007
	StatusWifiSSID       Status = 0x300a
	StatusWifiPassword   Status = 0x300b
	StatusWifiTimeout    Status = 0x300c
)

var statusNames = map[Status]string{
	StatusFail:           "FAIL",
	StatusNoMem:          "NO_MEM",
	StatusInvalidArg:     "INVALID_ARG",
	StatusInvalidState:   "INVALID_STATE",
	StatusNotSupported:   "NOT_SUPPORTED",
	StatusWifiNotInit:    "WIFI_NOT_INIT",
	StatusWifiNotStarted: "WIFI_NOT_STARTED",
	StatusWifiIf:         "WIFI_IF",
	StatusWifiMode:       "WIFI_MODE",
	StatusWifiState:      "WIFI_STATE",
	StatusWifiConn:       "WIFI_CONN",
	StatusWifiSSID:       "WIFI_SSID",
	StatusWifiPassword:   "WIFI_PASSWORD",
	StatusWifiTimeout:    "WIFI_TIMEOUT",
}

func (s Status) Error() string {
	if name, ok := statusNames[s]; ok {
		return fmt.Sprintf("%s (%d)", name, int32(s))
	}

	return fmt.Sprintf("status %d", int32(s))
}
