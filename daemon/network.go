package daemon

import (
	"context"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/network"
	"github.com/the-lightning-land/wifid/wifidb"
)

// maybeAttemptSavedWifiConnection connects to the most recently remembered
// network, if there is one.
func (d *Daemon) maybeAttemptSavedWifiConnection() {
	wifiConnection, err := d.db.GetWifiConnection()
	if err != nil {
		d.log.Warnf("Could not retrieve saved wifi connection: %v", err)
		return
	}

	if wifiConnection == nil {
		d.log.Infof("No saved Wifi connection available. Not connecting.")
		return
	}

	d.log.Infof("Will attempt connecting to Wifi %v.", wifiConnection.Ssid)

	err = d.ConnectToWifi(wifiConnection.Ssid, wifiConnection.Psk)
	if err != nil {
		d.log.Warnf("Could not connect to saved wifi: %v", err)
	}
}

// rememberWifiConnection runs on the loop after the station got an address
// and persists the credentials it is configured with.
func (d *Daemon) rememberWifiConnection(args ...interface{}) {
	details, err := d.wifi.GetDetails(nil)
	if err != nil {
		d.log.Errorf("Could not get station details: %v", err)
		return
	}

	connection := &wifidb.WifiConnection{
		Ssid: details.String("ssid"),
		Psk:  details.String("password"),
	}

	if connection.Ssid == "" {
		return
	}

	saved, err := d.db.GetWifiConnection()
	if err != nil {
		d.log.Warnf("Could not retrieve saved wifi connection: %v", err)
	}

	if saved != nil && *saved == *connection {
		return
	}

	err = d.SetWifiConnection(connection)
	if err != nil {
		d.log.Errorf("Could not save wifi connection: %v", err)
	}
}

func (d *Daemon) SetWifiConnection(connection *wifidb.WifiConnection) error {
	d.log.Infof("Setting Wifi connection")

	err := d.db.SetWifiConnection(connection)
	if err != nil {
		return errors.Errorf("Failed setting Wifi connection: %v", err)
	}

	return nil
}

// ForgetWifi drops the remembered network.
func (d *Daemon) ForgetWifi() error {
	return d.SetWifiConnection(nil)
}

// ConnectToWifi starts connecting the station. Completion is observed
// through the connected event.
func (d *Daemon) ConnectToWifi(ssid string, psk string) error {
	d.log.Infof("Connecting to wifi %v", ssid)

	var connectErr error

	err := d.do(context.Background(), func() {
		connectErr = d.wifi.Connect(ssid, &network.ConnectOptions{Password: psk}, nil)
	})
	if err != nil {
		return err
	}

	if connectErr != nil {
		return errors.Errorf("Could not connect to wifi %v: %v", ssid, connectErr)
	}

	return nil
}

// ScanWifi runs a scan and waits for its results.
func (d *Daemon) ScanWifi(ctx context.Context) ([]*network.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	results := make(chan []*network.Record, 1)
	var scanErr error

	err := d.do(ctx, func() {
		scanErr = d.wifi.Scan(func(args ...interface{}) {
			records, _ := args[0].([]*network.Record)
			results <- records
		})
	})
	if err != nil {
		return nil, err
	}

	if scanErr != nil {
		return nil, errors.Errorf("Could not scan: %v", scanErr)
	}

	select {
	case records := <-results:
		return records, nil
	case <-ctx.Done():
		return nil, errors.Errorf("Could not scan: %v", ctx.Err())
	}
}

// WifiStatus returns the adapter's status record.
func (d *Daemon) WifiStatus(ctx context.Context) (*network.Record, error) {
	return d.query(ctx, d.wifi.GetStatus)
}

// WifiDetails returns the station configuration.
func (d *Daemon) WifiDetails(ctx context.Context) (*network.Record, error) {
	return d.query(ctx, d.wifi.GetDetails)
}

// WifiIP returns the station's address record.
func (d *Daemon) WifiIP(ctx context.Context) (*network.Record, error) {
	return d.query(ctx, d.wifi.GetIP)
}

func (d *Daemon) query(ctx context.Context, fn func(network.Callback) (*network.Record, error)) (*network.Record, error) {
	var record *network.Record
	var queryErr error

	err := d.do(ctx, func() {
		record, queryErr = fn(nil)
	})
	if err != nil {
		return nil, err
	}

	return record, queryErr
}

// do runs fn on the event loop, bounded by the daemon's timeout.
func (d *Daemon) do(ctx context.Context, fn func()) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	err := d.loop.Do(ctx, fn)
	if err != nil {
		return errors.Errorf("Could not run on event loop: %v", err)
	}

	return nil
}
