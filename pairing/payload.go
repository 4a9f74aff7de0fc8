package pairing

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/network"
)

const readTimeout = 10 * time.Second

var connectSignal = []byte{1}

type WifiScanListItem struct {
	Ssid     string `json:"ssid"`
	Rssi     int    `json:"rssi"`
	Security string `json:"security"`
}

// characteristics holds the values written over bluetooth until the connect
// signal arrives. Its handlers do not depend on bluez.
type characteristics struct {
	log    Logger
	daemon Daemon
	ssid   string
	psk    string
}

func (c *characteristics) readNetworkAvailabilityStatus() ([]byte, error) {
	c.log.Infof("Reading network availability...")

	if c.daemon.State() == connectivity.Online {
		return []byte{1}, nil
	}

	return []byte{0}, nil
}

func (c *characteristics) readIpAddress() ([]byte, error) {
	c.log.Infof("Reading ip address...")

	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	record, err := c.daemon.WifiIP(ctx)
	if err != nil {
		return nil, errors.Errorf("Could not get ip address: %v", err)
	}

	return []byte(record.String("ip")), nil
}

func (c *characteristics) readWifiScanList() ([]byte, error) {
	c.log.Infof("Reading wifi scan list...")

	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	records, err := c.daemon.ScanWifi(ctx)
	if err != nil {
		return nil, errors.Errorf("Could not get wifi scan list: %v", err)
	}

	payload, err := encodeScanList(records)
	if err != nil {
		return nil, errors.Errorf("Could not serialize wifi scan list: %v", err)
	}

	return payload, nil
}

func (c *characteristics) readWifiSsidString() ([]byte, error) {
	c.log.Infof("Reading wifi ssid...")

	ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
	defer cancel()

	record, err := c.daemon.WifiDetails(ctx)
	if err != nil {
		return nil, errors.Errorf("Could not get wifi details: %v", err)
	}

	return []byte(record.String("ssid")), nil
}

func (c *characteristics) writeWifiSsidString(value []byte) error {
	ssid := string(value)

	c.log.Infof("Writing wifi ssid to %v", ssid)

	c.ssid = ssid

	return nil
}

func (c *characteristics) writeWifiPskString(value []byte) error {
	psk := string(value)
	stars := strings.Repeat("*", len(psk))

	c.log.Infof("Writing wifi psk to %v", stars)

	c.psk = psk

	return nil
}

func (c *characteristics) writeWifiConnectSignal(value []byte) error {
	c.log.Infof("Writing wifi connect signal to %v", value)

	if !bytes.Equal(value, connectSignal) {
		return nil
	}

	err := c.daemon.ConnectToWifi(c.ssid, c.psk)
	if err != nil {
		return errors.Errorf("Could not connect to wifi: %v", err)
	}

	return nil
}

func encodeScanList(records []*network.Record) ([]byte, error) {
	// literal so it serializes into an empty json array
	wifiScanList := []*WifiScanListItem{}

	for _, record := range records {
		item := &WifiScanListItem{
			Ssid:     record.String("ssid"),
			Security: securityLabel(record.String("authMode")),
		}

		if rssi, ok := record.Get("rssi"); ok {
			item.Rssi, _ = rssi.(int)
		}

		wifiScanList = append(wifiScanList, item)
	}

	return json.Marshal(wifiScanList)
}

func securityLabel(authMode string) string {
	mode, ok := network.AuthModeByName(authMode)
	if !ok {
		return "Unknown"
	}

	return network.AuthModeLabel(mode)
}
