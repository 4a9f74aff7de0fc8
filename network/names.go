package network

import "github.com/the-lightning-land/wifid/driver"

// AuthModeName returns the short name of an auth mode as used in scan
// results and access point details.
func AuthModeName(mode driver.AuthMode) string {
	switch mode {
	case driver.AuthOpen:
		return "open"
	case driver.AuthWEP:
		return "wep"
	case driver.AuthWPAPSK:
		return "wpa"
	case driver.AuthWPA2PSK:
		return "wpa2"
	case driver.AuthWPAWPA2PSK:
		return "wpa_wpa2"
	default:
		return "unknown"
	}
}

// AuthModeLabel returns the display label of an auth mode.
func AuthModeLabel(mode driver.AuthMode) string {
	switch mode {
	case driver.AuthOpen:
		return "OPEN"
	case driver.AuthWEP:
		return "WEP"
	case driver.AuthWPAPSK:
		return "WPA"
	case driver.AuthWPA2PSK:
		return "WPA2"
	case driver.AuthWPAWPA2PSK:
		return "WPA/WPA2"
	default:
		return "Unknown"
	}
}

// AuthModeByName is the inverse of AuthModeName.
func AuthModeByName(name string) (driver.AuthMode, bool) {
	for _, mode := range []driver.AuthMode{
		driver.AuthOpen,
		driver.AuthWEP,
		driver.AuthWPAPSK,
		driver.AuthWPA2PSK,
		driver.AuthWPAWPA2PSK,
	} {
		if AuthModeName(mode) == name {
			return mode, true
		}
	}

	return 0, false
}

func modeName(mode driver.Mode) string {
	switch mode {
	case driver.ModeNull:
		return "off"
	case driver.ModeAP:
		return "ap"
	case driver.ModeSTA:
		return "sta"
	case driver.ModeAPSTA:
		return "sta+ap"
	default:
		return "unknown"
	}
}

func powerSaveName(ps driver.PowerSave) string {
	switch ps {
	case driver.PowerSaveLight:
		return "light"
	case driver.PowerSaveMAC:
		return "mac"
	case driver.PowerSaveModem:
		return "modem"
	case driver.PowerSaveNone:
		return "none"
	default:
		return "unknown"
	}
}

// StationStatus describes the station side of the radio.
type StationStatus string

const (
	StationOff           StationStatus = "off"
	StationConnecting    StationStatus = "connecting"
	StationAssociated    StationStatus = "associated"
	StationConnected     StationStatus = "connected"
	StationNoAPFound     StationStatus = "no_ap_found"
	StationWrongPassword StationStatus = "wrong_password"
	StationConnectFail   StationStatus = "connect_fail"
)

// stationAfterDisconnect maps a disconnect reason to the resulting status.
func stationAfterDisconnect(reason uint8) StationStatus {
	switch reason {
	case driver.ReasonAssocLeave:
		return StationOff
	case driver.ReasonNoAPFound:
		return StationNoAPFound
	case driver.ReasonAuthFail, driver.ReasonAuthExpire, driver.ReasonFourWayTimeout, driver.ReasonHandshakeTimeout:
		return StationWrongPassword
	default:
		return StationConnectFail
	}
}
