package wpa

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
	"github.com/the-lightning-land/wifid/driver"
)

type DriverConfig struct {
	Interface string
	// DHCPTimeout bounds the wait for an address after association.
	DHCPTimeout  time.Duration
	DHCPInterval time.Duration
	Logger       Logger
}

// Driver implements driver.Driver for the station side of an interface
// managed by wpa_supplicant. Access point mode is not supported.
type Driver struct {
	log          Logger
	ifname       string
	dhcpTimeout  time.Duration
	dhcpInterval time.Duration
	wpa          *Wpa
	iface        station
	client       *SignalClient
	ipInfo       func(ifname string) (*driver.IPInfo, error)

	mu         sync.Mutex
	handler    driver.EventHandler
	mode       driver.Mode
	sta        driver.STAConfig
	started    bool
	state      string
	leaving    bool
	connecting bool
	scanning   bool
	showHidden bool
	bssid      [6]byte
	records    []driver.APRecord
	scanErr    error
	dhcpCancel context.CancelFunc

	events chan driver.Event
	done   chan struct{}
	wg     sync.WaitGroup
}

// Compile time check for protocol compatibility
var _ driver.Driver = (*Driver)(nil)

func NewDriver(config *DriverConfig) *Driver {
	d := &Driver{
		ifname:       config.Interface,
		dhcpTimeout:  config.DHCPTimeout,
		dhcpInterval: config.DHCPInterval,
		wpa:          New(),
		ipInfo:       readIPInfo,
		events:       make(chan driver.Event, 16),
		done:         make(chan struct{}),
	}

	if d.dhcpTimeout == 0 {
		d.dhcpTimeout = 30 * time.Second
	}

	if d.dhcpInterval == 0 {
		d.dhcpInterval = 500 * time.Millisecond
	}

	if config.Logger != nil {
		d.log = config.Logger
	} else {
		d.log = noopLogger{}
	}

	return d
}

// Open connects to wpa_supplicant and starts delivering events.
func (d *Driver) Open() error {
	err := d.wpa.Start()
	if err != nil {
		return errors.Errorf("could not start wpa: %v", err)
	}

	iface, err := d.wpa.GetInterface(d.ifname)
	if err != nil {
		_ = d.wpa.Stop()
		return errors.Errorf("could not find interface %v: %v", d.ifname, err)
	}

	err = iface.Watch()
	if err != nil {
		_ = d.wpa.Stop()
		return errors.Errorf("could not watch interface %v: %v", d.ifname, err)
	}

	state, err := iface.State()
	if err != nil {
		d.log.Warnf("Could not get initial state of %v: %v", d.ifname, err)
	}

	d.mu.Lock()
	d.iface = &interfaceStation{Interface: iface, log: d.log}
	d.state = state
	d.mu.Unlock()

	d.client = d.wpa.Subscribe()

	d.wg.Add(2)
	go d.signalLoop()
	go d.eventLoop()

	d.log.Infof("Watching %v in state %v", d.ifname, state)

	return nil
}

// Close stops event delivery and disconnects from the bus.
func (d *Driver) Close() error {
	close(d.done)

	d.cancelDHCP()

	if d.client != nil {
		d.client.Cancel()
	}

	if d.iface != nil {
		if err := d.iface.Unwatch(); err != nil {
			d.log.Warnf("Could not unwatch %v: %v", d.ifname, err)
		}
	}

	err := d.wpa.Stop()

	d.wg.Wait()

	if err != nil {
		return errors.Errorf("could not stop wpa: %v", err)
	}

	return nil
}

func (d *Driver) emit(ev driver.Event) {
	select {
	case d.events <- ev:
	case <-d.done:
	}
}

func (d *Driver) eventLoop() {
	defer d.wg.Done()

	for {
		select {
		case ev := <-d.events:
			d.mu.Lock()
			handler := d.handler
			d.mu.Unlock()

			if handler == nil {
				continue
			}

			if err := handler(ev); err != nil {
				d.log.Errorf("Event handler failed on %v: %v", ev.ID, err)
			}
		case <-d.done:
			return
		}
	}
}

func (d *Driver) signalLoop() {
	defer d.wg.Done()

	for signal := range d.client.Signals {
		if signal.Path != d.iface.Path() || len(signal.Body) == 0 {
			continue
		}

		switch signal.Name {
		case interfaceName + ".PropertiesChanged":
			props, ok := signal.Body[0].(map[string]dbus.Variant)
			if !ok {
				continue
			}

			if v, ok := props["State"]; ok {
				if state, ok := v.Value().(string); ok {
					d.handleState(state)
				}
			}
		case interfaceName + ".ScanDone":
			success, _ := signal.Body[0].(bool)
			d.handleScanDone(success)
		}
	}
}

func (d *Driver) handleState(state string) {
	d.mu.Lock()
	prev := d.state
	d.state = state
	d.mu.Unlock()

	if prev == state {
		return
	}

	d.log.Debugf("State of %v changed from %v to %v", d.ifname, prev, state)

	switch state {
	case "completed":
		d.handleAssociated()
	case "disconnected", "inactive":
		d.mu.Lock()
		pending := d.connecting || d.leaving
		d.mu.Unlock()

		switch {
		case prev == "completed" || isConnecting(prev):
			d.handleDisconnected(prev)
		case prev == "scanning" && pending:
			// the selected network was never found
			d.handleDisconnected(prev)
		}
	case "interface_disabled":
		d.cancelDHCP()
		d.emit(driver.Event{ID: driver.EventSTAStop})
	}
}

func isConnecting(state string) bool {
	switch state {
	case "authenticating", "associating", "associated", "4way_handshake", "group_handshake":
		return true
	default:
		return false
	}
}

func (d *Driver) handleAssociated() {
	d.mu.Lock()
	info := &driver.STAConnected{SSID: d.sta.SSID}
	d.connecting = false
	d.mu.Unlock()

	info.SSIDLen = uint8(len(cString(info.SSID[:])))

	props, err := d.iface.CurrentBSS()
	if err == nil {
		record := props.Record()
		info.SSID = record.SSID
		info.SSIDLen = uint8(len(props.SSID))
		info.BSSID = record.BSSID
		info.Channel = record.Primary
		info.AuthMode = record.AuthMode
	} else {
		d.log.Warnf("Could not read associated access point: %v", err)
	}

	d.mu.Lock()
	d.bssid = info.BSSID
	d.mu.Unlock()

	d.emit(driver.Event{ID: driver.EventSTAConnected, Info: info})

	d.startDHCP()
}

func (d *Driver) handleDisconnected(prev string) {
	d.cancelDHCP()

	d.mu.Lock()
	info := &driver.STADisconnected{
		SSID:  d.sta.SSID,
		BSSID: d.bssid,
	}
	leaving := d.leaving
	d.leaving = false
	d.connecting = false
	d.mu.Unlock()

	info.SSIDLen = uint8(len(cString(info.SSID[:])))

	switch {
	case leaving:
		info.Reason = driver.ReasonAssocLeave
	case prev == "scanning":
		info.Reason = driver.ReasonNoAPFound
	case prev == "4way_handshake":
		info.Reason = driver.ReasonFourWayTimeout
	default:
		code, err := d.iface.DisconnectReason()
		if err != nil {
			d.log.Debugf("Could not get disconnect reason: %v", err)
		}
		info.Reason = reasonFromCode(code)
	}

	d.emit(driver.Event{ID: driver.EventSTADisconnected, Info: info})
}

// reasonFromCode maps an IEEE 802.11 reason code to a disconnect reason.
func reasonFromCode(code int32) uint8 {
	if code < 0 {
		code = -code
	}

	if code == 0 || code > 255 {
		return driver.ReasonUnspecified
	}

	return uint8(code)
}

func (d *Driver) handleScanDone(success bool) {
	d.mu.Lock()
	scanning := d.scanning
	showHidden := d.showHidden
	d.scanning = false
	d.mu.Unlock()

	if !scanning {
		return
	}

	var records []driver.APRecord
	var status uint32
	var err error

	if success {
		records, err = d.scanRecords(showHidden)
		if err != nil {
			d.log.Errorf("Could not read scan results: %v", err)
			err = errors.WrapPrefix(err, "could not read scan results", 0)
		}
	} else {
		err = errors.Errorf("scan failed on %v", d.ifname)
	}

	if err != nil {
		status = 1
	}

	d.mu.Lock()
	d.records = records
	d.scanErr = err
	d.mu.Unlock()

	number := len(records)
	if number > 255 {
		number = 255
	}

	d.emit(driver.Event{
		ID:   driver.EventScanDone,
		Info: &driver.ScanDone{Status: status, Number: uint8(number)},
	})
}

func (d *Driver) scanRecords(showHidden bool) ([]driver.APRecord, error) {
	bsss, err := d.iface.BSSs()
	if err != nil {
		return nil, err
	}

	records := make([]driver.APRecord, 0, len(bsss))

	for _, props := range bsss {
		if !showHidden && cString(props.SSID) == "" {
			continue
		}

		records = append(records, props.Record())
	}

	return records, nil
}

func (d *Driver) startDHCP() {
	select {
	case <-d.done:
		return
	default:
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.dhcpTimeout)

	d.mu.Lock()
	if d.dhcpCancel != nil {
		d.dhcpCancel()
	}
	d.dhcpCancel = cancel
	d.mu.Unlock()

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer cancel()

		ticker := time.NewTicker(d.dhcpInterval)
		defer ticker.Stop()

		for {
			info, err := d.GetIPInfo(driver.InterfaceSTA)
			if err == nil {
				d.emit(driver.Event{ID: driver.EventSTAGotIP, Info: &driver.GotIP{IPInfo: *info}})
				return
			}

			select {
			case <-ticker.C:
			case <-d.done:
				return
			case <-ctx.Done():
				if ctx.Err() == context.DeadlineExceeded {
					d.log.Warnf("No address on %v after %v", d.ifname, d.dhcpTimeout)
					d.emit(driver.Event{ID: driver.EventSTADHCPTimeout})
				}
				return
			}
		}
	}()
}

func (d *Driver) cancelDHCP() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.dhcpCancel != nil {
		d.dhcpCancel()
		d.dhcpCancel = nil
	}
}

func (d *Driver) SetEventHandler(handler driver.EventHandler) error {
	d.mu.Lock()
	d.handler = handler
	d.mu.Unlock()

	return nil
}

func (d *Driver) SetMode(mode driver.Mode) error {
	if mode == driver.ModeAP || mode == driver.ModeAPSTA {
		return driver.StatusNotSupported
	}

	d.mu.Lock()
	d.mode = mode
	d.mu.Unlock()

	return nil
}

func (d *Driver) GetMode() (driver.Mode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.mode, nil
}

func (d *Driver) GetPowerSave() (driver.PowerSave, error) {
	return driver.PowerSaveNone, nil
}

func (d *Driver) SetSTAConfig(config *driver.STAConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.mode != driver.ModeSTA {
		return driver.StatusWifiMode
	}

	d.sta = *config

	return nil
}

func (d *Driver) GetSTAConfig() (*driver.STAConfig, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	config := d.sta

	return &config, nil
}

func (d *Driver) GetAPConfig() (*driver.APConfig, error) {
	return nil, driver.StatusNotSupported
}

func (d *Driver) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.iface == nil {
		return driver.StatusWifiNotInit
	}

	d.started = true

	return nil
}

// ready returns the interface once Open and Start have succeeded.
func (d *Driver) ready() (station, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.iface == nil {
		return nil, driver.StatusWifiNotInit
	}

	if !d.started {
		return nil, driver.StatusWifiNotStarted
	}

	return d.iface, nil
}

func (d *Driver) Connect() error {
	iface, err := d.ready()
	if err != nil {
		return err
	}

	d.mu.Lock()
	ssid := cString(d.sta.SSID[:])
	psk := cString(d.sta.Password[:])
	d.mu.Unlock()

	if ssid == "" {
		return driver.StatusWifiSSID
	}

	d.mu.Lock()
	d.leaving = false
	d.connecting = true
	d.mu.Unlock()

	err = iface.SelectSSID(ssid, psk)
	if err != nil {
		d.mu.Lock()
		d.connecting = false
		d.mu.Unlock()

		return err
	}

	d.log.Infof("Selected network %v on %v", ssid, d.ifname)

	return nil
}

func (d *Driver) Disconnect() error {
	iface, err := d.ready()
	if err != nil {
		return err
	}

	d.cancelDHCP()

	d.mu.Lock()
	idle := d.state == "disconnected" || d.state == "inactive"
	connecting := d.connecting
	info := &driver.STADisconnected{
		SSID:   d.sta.SSID,
		BSSID:  d.bssid,
		Reason: driver.ReasonAssocLeave,
	}
	d.leaving = !idle
	d.connecting = false
	d.mu.Unlock()

	if idle {
		if connecting {
			// stop wpa_supplicant from looking for the selected network
			if err := iface.Disconnect(); err != nil {
				d.log.Debugf("Could not abort connect on %v: %v", d.ifname, err)
			}
		}

		// no state change follows, so the leave is reported here
		info.SSIDLen = uint8(len(cString(info.SSID[:])))

		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.emit(driver.Event{ID: driver.EventSTADisconnected, Info: info})
		}()

		return nil
	}

	err = iface.Disconnect()
	if err != nil {
		d.mu.Lock()
		d.leaving = false
		d.mu.Unlock()

		return err
	}

	return nil
}

func (d *Driver) ScanStart(config *driver.ScanConfig) error {
	iface, err := d.ready()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.scanning = true
	d.showHidden = config != nil && config.ShowHidden
	d.scanErr = nil
	d.mu.Unlock()

	err = iface.Scan()
	if err != nil {
		d.mu.Lock()
		d.scanning = false
		d.mu.Unlock()

		return err
	}

	return nil
}

func (d *Driver) ScanAPNum() (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scanErr != nil {
		return 0, d.scanErr
	}

	return uint16(len(d.records)), nil
}

func (d *Driver) ScanAPRecords(max uint16) ([]driver.APRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.scanErr != nil {
		return nil, d.scanErr
	}

	n := len(d.records)
	if int(max) < n {
		n = int(max)
	}

	records := make([]driver.APRecord, n)
	copy(records, d.records)

	return records, nil
}

func (d *Driver) GetIPInfo(iface driver.Interface) (*driver.IPInfo, error) {
	if iface != driver.InterfaceSTA {
		return nil, driver.StatusNotSupported
	}

	return d.ipInfo(d.ifname)
}

func (d *Driver) GetMAC(iface driver.Interface) (net.HardwareAddr, error) {
	if iface != driver.InterfaceSTA {
		return nil, driver.StatusNotSupported
	}

	netIface, err := net.InterfaceByName(d.ifname)
	if err != nil {
		return nil, errors.Errorf("could not find interface %v: %v", d.ifname, err)
	}

	return netIface.HardwareAddr, nil
}

func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}

	return string(b)
}
