package network

import (
	"sync"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/driver"
)

type Config struct {
	Driver  driver.Driver
	Runtime Runtime
	Logger  Logger
}

// ConnectOptions are the optional parameters of Connect.
type ConnectOptions struct {
	Password string
}

// Wifi is the adapter between a driver and a runtime. Public operations are
// serialized among themselves; the event handler runs concurrently with them
// and only touches the pending slots and the station status.
type Wifi struct {
	log     Logger
	driver  driver.Driver
	runtime Runtime

	op sync.Mutex

	disconnect pending
	gotIP      pending
	scan       pending

	stationMu sync.Mutex
	station   StationStatus
}

func NewWifi(config *Config) *Wifi {
	w := &Wifi{
		driver:  config.Driver,
		runtime: config.Runtime,
		station: StationOff,
	}

	if config.Logger != nil {
		w.log = config.Logger
	} else {
		w.log = noopLogger{}
	}

	return w
}

// Start registers the adapter as the driver's event handler.
func (w *Wifi) Start() error {
	err := w.driver.SetEventHandler(w.HandleEvent)
	if err != nil {
		return errors.Errorf("Could not register event handler: %v", err)
	}

	return nil
}

// Stop unregisters the event handler and drops every pending callback.
func (w *Wifi) Stop() error {
	w.disconnect.clear()
	w.gotIP.clear()
	w.scan.clear()

	err := w.driver.SetEventHandler(nil)
	if err != nil {
		return errors.Errorf("Could not unregister event handler: %v", err)
	}

	return nil
}

// Station returns the status of the station side as observed from events.
func (w *Wifi) Station() StationStatus {
	w.stationMu.Lock()
	defer w.stationMu.Unlock()

	return w.station
}

func (w *Wifi) setStation(status StationStatus) {
	w.stationMu.Lock()
	w.station = status
	w.stationMu.Unlock()
}

// Connect associates the station with ssid. cb is called with nil once the
// station has obtained an IP address. A failing driver call is logged and
// leaves cb unregistered.
func (w *Wifi) Connect(ssid string, opts *ConnectOptions, cb Callback) error {
	if ssid == "" {
		return argumentErrorf("No SSID provided")
	}

	w.op.Lock()
	defer w.op.Unlock()

	w.gotIP.clear()
	w.disconnect.clear()

	config := &driver.STAConfig{}
	copy(config.SSID[:], ssid)
	if opts != nil {
		copy(config.Password[:], opts.Password)
	}

	if err := w.driver.SetMode(driver.ModeSTA); err != nil {
		w.log.Errorf("Could not set station mode: %v", err)
		return nil
	}

	if err := w.driver.SetSTAConfig(config); err != nil {
		w.log.Errorf("Could not set station config: %v", err)
		return nil
	}

	if err := w.driver.Start(); err != nil {
		w.log.Errorf("Could not start wifi: %v", err)
		return nil
	}

	w.setStation(StationConnecting)

	if err := w.driver.Connect(); err != nil {
		w.setStation(StationConnectFail)
		w.log.Errorf("Could not connect to %v: %v", ssid, err)
		return nil
	}

	w.gotIP.register(cb)

	w.log.Infof("Connecting to %v", ssid)

	return nil
}

// Disconnect drops the station's association. cb is called without
// arguments once the driver reports the disconnection.
func (w *Wifi) Disconnect(cb Callback) error {
	w.op.Lock()
	defer w.op.Unlock()

	w.disconnect.clear()

	if err := w.driver.Disconnect(); err != nil {
		w.log.Errorf("Could not disconnect: %v", err)
		return nil
	}

	w.disconnect.register(cb)

	return nil
}

// Scan searches for access points. cb receives a slice of records with the
// fields rssi, authMode and ssid in the order the driver reports them.
func (w *Wifi) Scan(cb Callback) error {
	if cb == nil {
		return argumentErrorf("Expecting callback function but got %v", typeName(nil))
	}

	w.op.Lock()
	defer w.op.Unlock()

	if w.scan.isSet() {
		return ErrScanInProgress
	}

	if err := w.driver.SetMode(driver.ModeSTA); err != nil {
		w.log.Errorf("Could not set station mode: %v", err)
		return nil
	}

	if err := w.driver.Start(); err != nil {
		w.log.Errorf("Could not start wifi: %v", err)
		return nil
	}

	if err := w.driver.ScanStart(&driver.ScanConfig{ShowHidden: true}); err != nil {
		w.log.Errorf("Could not start scan: %v", err)
		return nil
	}

	w.scan.register(cb)

	return nil
}

// reply hands record to the optional callback and returns it.
func (w *Wifi) reply(record *Record, cb Callback) (*Record, error) {
	if cb != nil {
		w.runtime.Queue(cb, record)
	}

	return record, nil
}

// GetStatus reports the operating mode, power save type, station status and
// access point status.
func (w *Wifi) GetStatus(cb Callback) (*Record, error) {
	w.op.Lock()
	defer w.op.Unlock()

	record := NewRecord()

	mode, modeErr := w.driver.GetMode()
	if modeErr != nil {
		w.log.Errorf("Could not get mode: %v", modeErr)
		record.Set("mode", "unknown")
	} else {
		record.Set("mode", modeName(mode))
	}

	ps, err := w.driver.GetPowerSave()
	if err != nil {
		w.log.Errorf("Could not get power save type: %v", err)
		record.Set("powersave", "unknown")
	} else {
		record.Set("powersave", powerSaveName(ps))
	}

	record.Set("station", string(w.Station()))

	if modeErr == nil && (mode == driver.ModeAP || mode == driver.ModeAPSTA) {
		record.Set("ap", "enabled")
	} else {
		record.Set("ap", "disabled")
	}

	return w.reply(record, cb)
}

// GetDetails reports the station configuration.
func (w *Wifi) GetDetails(cb Callback) (*Record, error) {
	w.op.Lock()
	defer w.op.Unlock()

	record := NewRecord()

	config, err := w.driver.GetSTAConfig()
	if err != nil {
		w.log.Errorf("Could not get station config: %v", err)
	} else {
		record.Set("ssid", decodeString(config.SSID[:]))
		record.Set("password", decodeString(config.Password[:]))
	}

	return w.reply(record, cb)
}

// GetAPDetails reports the access point configuration.
func (w *Wifi) GetAPDetails(cb Callback) (*Record, error) {
	w.op.Lock()
	defer w.op.Unlock()

	record := NewRecord()

	config, err := w.driver.GetAPConfig()
	if err != nil {
		w.log.Errorf("Could not get access point config: %v", err)
	} else {
		record.Set("authMode", AuthModeName(config.AuthMode))
		record.Set("hidden", config.SSIDHidden)
		record.Set("maxConn", int(config.MaxConnection))
		record.Set("ssid", decodeSSID(config.SSID, config.SSIDLen))
		record.Set("password", decodeString(config.Password[:]))
	}

	return w.reply(record, cb)
}

// GetIP reports the station's address and MAC.
func (w *Wifi) GetIP(cb Callback) (*Record, error) {
	w.op.Lock()
	defer w.op.Unlock()

	return w.reply(w.ipRecord(driver.InterfaceSTA), cb)
}

// GetAPIP reports the access point's address and MAC.
func (w *Wifi) GetAPIP(cb Callback) (*Record, error) {
	w.op.Lock()
	defer w.op.Unlock()

	return w.reply(w.ipRecord(driver.InterfaceAP), cb)
}

// ipRecord omits ip, netmask and gw when the interface has no address.
func (w *Wifi) ipRecord(iface driver.Interface) *Record {
	record := NewRecord()

	info, err := w.driver.GetIPInfo(iface)
	if err != nil {
		w.log.Debugf("No address on %v interface: %v", iface, err)
	} else if info.IP.To4() != nil && !info.IP.IsUnspecified() {
		record.Set("ip", formatIP(info.IP))
		record.Set("netmask", formatIP(info.Netmask))
		record.Set("gw", formatIP(info.GW))
	}

	mac, err := w.driver.GetMAC(iface)
	if err != nil {
		w.log.Errorf("Could not get %v mac address: %v", iface, err)
	}

	record.Set("mac", formatHardwareAddr(mac))

	return record
}

func (w *Wifi) notImplemented(name string) error {
	w.log.Debugf("%v: Not implemented", name)
	return nil
}

func (w *Wifi) StartAP() error { return w.notImplemented("startAP") }

func (w *Wifi) StopAP() error { return w.notImplemented("stopAP") }

func (w *Wifi) SetConfig() error { return w.notImplemented("setConfig") }

func (w *Wifi) Save() error { return w.notImplemented("save") }

func (w *Wifi) Restore() error { return w.notImplemented("restore") }

func (w *Wifi) GetHostByName() error { return w.notImplemented("getHostByName") }

func (w *Wifi) GetHostname() error { return w.notImplemented("getHostname") }

func (w *Wifi) SetHostname() error { return w.notImplemented("setHostname") }

func (w *Wifi) Ping() error { return w.notImplemented("ping") }
