package wpa

import (
	"strings"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
	"github.com/the-lightning-land/wifid/driver"
)

// BSS is an access point seen by wpa_supplicant.
type BSS struct {
	obj dbus.BusObject
}

func (b *BSS) String() string {
	return string(b.obj.Path())
}

// Bss holds the properties of a BSS.
type Bss struct {
	SSID      []byte
	BSSID     []byte
	Signal    int16
	Frequency uint16
	Privacy   bool
	// WPAKeyMgmt and RSNKeyMgmt list the key management suites announced in
	// the WPA and RSN information elements.
	WPAKeyMgmt []string
	RSNKeyMgmt []string
}

func (b *BSS) GetAll() (*Bss, error) {
	call := b.obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, bssName)
	if call.Err != nil {
		return nil, errors.Errorf("could not get all properties: %v", call.Err)
	}

	props, ok := call.Body[0].(map[string]dbus.Variant)
	if !ok {
		return nil, errors.Errorf("could not convert output")
	}

	bss := Bss{}

	if val, ok := props["SSID"]; ok {
		if ssid, ok := val.Value().([]byte); ok {
			bss.SSID = ssid
		} else {
			return nil, errors.Errorf("could not convert SSID: %v", val)
		}
	} else {
		return nil, errors.Errorf("mandatory property SSID was missing")
	}

	if val, ok := props["BSSID"]; ok {
		if bssid, ok := val.Value().([]byte); ok {
			bss.BSSID = bssid
		} else {
			return nil, errors.Errorf("could not convert BSSID: %v", val)
		}
	} else {
		return nil, errors.Errorf("mandatory property BSSID was missing")
	}

	if val, ok := props["Signal"]; ok {
		bss.Signal, _ = val.Value().(int16)
	}

	if val, ok := props["Frequency"]; ok {
		bss.Frequency, _ = val.Value().(uint16)
	}

	if val, ok := props["Privacy"]; ok {
		bss.Privacy, _ = val.Value().(bool)
	}

	bss.WPAKeyMgmt = keyMgmt(props["WPA"])
	bss.RSNKeyMgmt = keyMgmt(props["RSN"])

	return &bss, nil
}

func keyMgmt(ie dbus.Variant) []string {
	props, ok := ie.Value().(map[string]dbus.Variant)
	if !ok {
		return nil
	}

	suites, _ := props["KeyMgmt"].Value().([]string)

	return suites
}

// AuthMode derives the driver auth mode from the announced security.
func (b *Bss) AuthMode() driver.AuthMode {
	return authMode(b.Privacy, b.WPAKeyMgmt, b.RSNKeyMgmt)
}

// Channel returns the channel number of the BSS frequency.
func (b *Bss) Channel() uint8 {
	return frequencyToChannel(b.Frequency)
}

// Record converts the properties to a scan record.
func (b *Bss) Record() driver.APRecord {
	record := driver.APRecord{
		Primary:  b.Channel(),
		RSSI:     clampRSSI(b.Signal),
		AuthMode: b.AuthMode(),
	}

	copy(record.SSID[:], b.SSID)
	copy(record.BSSID[:], b.BSSID)

	return record
}

func authMode(privacy bool, wpa, rsn []string) driver.AuthMode {
	for _, suite := range rsn {
		if strings.Contains(suite, "eap") {
			return driver.AuthWPA2Enterprise
		}
	}

	switch {
	case len(wpa) > 0 && len(rsn) > 0:
		return driver.AuthWPAWPA2PSK
	case len(rsn) > 0:
		return driver.AuthWPA2PSK
	case len(wpa) > 0:
		return driver.AuthWPAPSK
	case privacy:
		return driver.AuthWEP
	default:
		return driver.AuthOpen
	}
}

func frequencyToChannel(freq uint16) uint8 {
	switch {
	case freq == 2484:
		return 14
	case freq >= 2412 && freq < 2484:
		return uint8((freq - 2407) / 5)
	case freq >= 5000 && freq < 5900:
		return uint8((freq - 5000) / 5)
	default:
		return 0
	}
}

func clampRSSI(signal int16) int8 {
	if signal < -128 {
		return -128
	}

	if signal > 127 {
		return 127
	}

	return int8(signal)
}
