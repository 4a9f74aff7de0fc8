package driver

import (
	"net"
	"sync"
	"time"
)

// MockNetwork is an access point visible to a simulating MockDriver.
type MockNetwork struct {
	SSID     string
	Password string
	BSSID    [6]byte
	Channel  uint8
	RSSI     int8
	AuthMode AuthMode
}

// MockConfig configures a MockDriver.
type MockConfig struct {
	// Simulate makes Connect, Disconnect and ScanStart report completion
	// events on their own after Delay.
	Simulate bool
	Delay    time.Duration
	Networks []MockNetwork
	// Lease is handed out once a simulated association completes.
	Lease IPInfo
}

// MockDriver is an in-memory Driver. Tests drive it with Emit and Fail; with
// Simulate set it behaves like a radio surrounded by Networks.
type MockDriver struct {
	mu        sync.Mutex
	config    MockConfig
	handler   EventHandler
	mode      Mode
	powerSave PowerSave
	sta       STAConfig
	ap        APConfig
	started   bool
	records   []APRecord
	ipInfo    map[Interface]*IPInfo
	macs      map[Interface]net.HardwareAddr
	failures  map[string]error
	calls     []string
	// HandlerErrors collects errors returned by the event handler.
	HandlerErrors []error
}

// Compile time check for protocol compatibility
var _ Driver = (*MockDriver)(nil)

func NewMockDriver(config *MockConfig) *MockDriver {
	m := &MockDriver{
		powerSave: PowerSaveModem,
		ipInfo:    make(map[Interface]*IPInfo),
		macs: map[Interface]net.HardwareAddr{
			InterfaceSTA: {0x24, 0x0a, 0xc4, 0x00, 0x00, 0x01},
			InterfaceAP:  {0x24, 0x0a, 0xc4, 0x00, 0x00, 0x02},
		},
		failures: make(map[string]error),
	}

	if config != nil {
		m.config = *config
	}

	if m.config.Lease.IP == nil {
		m.config.Lease = IPInfo{
			IP:      net.IPv4(192, 168, 4, 2).To4(),
			Netmask: net.IPv4(255, 255, 255, 0).To4(),
			GW:      net.IPv4(192, 168, 4, 1).To4(),
		}
	}

	m.ap.MaxConnection = 4
	m.ap.AuthMode = AuthOpen

	return m
}

// Fail makes every subsequent call named call return err. A nil err clears it.
func (m *MockDriver) Fail(call string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err == nil {
		delete(m.failures, call)
		return
	}

	m.failures[call] = err
}

// Calls returns the names of all calls made so far, in order.
func (m *MockDriver) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]string, len(m.calls))
	copy(calls, m.calls)

	return calls
}

// ResetCalls forgets the recorded calls.
func (m *MockDriver) ResetCalls() {
	m.mu.Lock()
	m.calls = nil
	m.mu.Unlock()
}

// SetRecords sets the access points returned by ScanAPRecords.
func (m *MockDriver) SetRecords(records []APRecord) {
	m.mu.Lock()
	m.records = records
	m.mu.Unlock()
}

// SetIPInfo sets the address of an interface. Nil removes it.
func (m *MockDriver) SetIPInfo(iface Interface, info *IPInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if info == nil {
		delete(m.ipInfo, iface)
		return
	}

	m.ipInfo[iface] = info
}

// SetAPConfig replaces the access point configuration.
func (m *MockDriver) SetAPConfig(config APConfig) {
	m.mu.Lock()
	m.ap = config
	m.mu.Unlock()
}

// SetPowerSave replaces the reported power save type.
func (m *MockDriver) SetPowerSave(ps PowerSave) {
	m.mu.Lock()
	m.powerSave = ps
	m.mu.Unlock()
}

// Emit delivers ev to the registered handler on the calling goroutine.
func (m *MockDriver) Emit(ev Event) error {
	m.mu.Lock()
	handler := m.handler
	m.mu.Unlock()

	if handler == nil {
		return nil
	}

	err := handler(ev)
	if err != nil {
		m.mu.Lock()
		m.HandlerErrors = append(m.HandlerErrors, err)
		m.mu.Unlock()
	}

	return err
}

// record notes the call and returns the configured failure, if any.
// Caller must hold m.mu.
func (m *MockDriver) record(call string) error {
	m.calls = append(m.calls, call)
	return m.failures[call]
}

func (m *MockDriver) SetEventHandler(handler EventHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("SetEventHandler"); err != nil {
		return err
	}

	m.handler = handler

	return nil
}

func (m *MockDriver) SetMode(mode Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("SetMode"); err != nil {
		return err
	}

	m.mode = mode

	return nil
}

func (m *MockDriver) GetMode() (Mode, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("GetMode"); err != nil {
		return ModeNull, err
	}

	return m.mode, nil
}

func (m *MockDriver) GetPowerSave() (PowerSave, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("GetPowerSave"); err != nil {
		return PowerSaveNone, err
	}

	return m.powerSave, nil
}

func (m *MockDriver) SetSTAConfig(config *STAConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("SetSTAConfig"); err != nil {
		return err
	}

	if m.mode != ModeSTA && m.mode != ModeAPSTA {
		return StatusWifiMode
	}

	m.sta = *config

	return nil
}

func (m *MockDriver) GetSTAConfig() (*STAConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("GetSTAConfig"); err != nil {
		return nil, err
	}

	config := m.sta

	return &config, nil
}

func (m *MockDriver) GetAPConfig() (*APConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("GetAPConfig"); err != nil {
		return nil, err
	}

	config := m.ap

	return &config, nil
}

func (m *MockDriver) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("Start"); err != nil {
		return err
	}

	m.started = true

	return nil
}

func (m *MockDriver) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("Connect"); err != nil {
		return err
	}

	if !m.started {
		return StatusWifiNotStarted
	}

	if m.config.Simulate {
		go m.simulateConnect(m.sta)
	}

	return nil
}

func (m *MockDriver) Disconnect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("Disconnect"); err != nil {
		return err
	}

	if m.config.Simulate {
		sta := m.sta
		delete(m.ipInfo, InterfaceSTA)
		go m.after(Event{
			ID: EventSTADisconnected,
			Info: &STADisconnected{
				SSID:    sta.SSID,
				SSIDLen: uint8(cStringLen(sta.SSID[:])),
				BSSID:   sta.BSSID,
				Reason:  ReasonAssocLeave,
			},
		})
	}

	return nil
}

func (m *MockDriver) ScanStart(config *ScanConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("ScanStart"); err != nil {
		return err
	}

	if !m.started {
		return StatusWifiNotStarted
	}

	if m.config.Simulate {
		m.records = m.records[:0]
		for _, n := range m.config.Networks {
			if n.SSID == "" && !config.ShowHidden {
				continue
			}

			record := APRecord{
				BSSID:    n.BSSID,
				Primary:  n.Channel,
				RSSI:     n.RSSI,
				AuthMode: n.AuthMode,
			}
			copy(record.SSID[:], n.SSID)
			m.records = append(m.records, record)
		}

		go m.after(Event{
			ID:   EventScanDone,
			Info: &ScanDone{Number: uint8(len(m.records))},
		})
	}

	return nil
}

func (m *MockDriver) ScanAPNum() (uint16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("ScanAPNum"); err != nil {
		return 0, err
	}

	return uint16(len(m.records)), nil
}

func (m *MockDriver) ScanAPRecords(max uint16) ([]APRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("ScanAPRecords"); err != nil {
		return nil, err
	}

	n := len(m.records)
	if int(max) < n {
		n = int(max)
	}

	records := make([]APRecord, n)
	copy(records, m.records)

	return records, nil
}

func (m *MockDriver) GetIPInfo(iface Interface) (*IPInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("GetIPInfo"); err != nil {
		return nil, err
	}

	info, ok := m.ipInfo[iface]
	if !ok {
		return nil, StatusWifiIf
	}

	copied := *info

	return &copied, nil
}

func (m *MockDriver) GetMAC(iface Interface) (net.HardwareAddr, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.record("GetMAC"); err != nil {
		return nil, err
	}

	return m.macs[iface], nil
}

func (m *MockDriver) after(ev Event) {
	time.Sleep(m.config.Delay)
	_ = m.Emit(ev)
}

func (m *MockDriver) simulateConnect(sta STAConfig) {
	ssid := string(sta.SSID[:cStringLen(sta.SSID[:])])
	password := string(sta.Password[:cStringLen(sta.Password[:])])

	var found *MockNetwork
	for i := range m.config.Networks {
		if m.config.Networks[i].SSID == ssid {
			found = &m.config.Networks[i]
			break
		}
	}

	disconnected := &STADisconnected{
		SSID:    sta.SSID,
		SSIDLen: uint8(len(ssid)),
	}

	if found == nil {
		disconnected.Reason = ReasonNoAPFound
		m.after(Event{ID: EventSTADisconnected, Info: disconnected})
		return
	}

	disconnected.BSSID = found.BSSID

	if found.AuthMode != AuthOpen && found.Password != password {
		disconnected.Reason = ReasonAuthFail
		m.after(Event{ID: EventSTADisconnected, Info: disconnected})
		return
	}

	m.after(Event{
		ID: EventSTAConnected,
		Info: &STAConnected{
			SSID:     sta.SSID,
			SSIDLen:  uint8(len(ssid)),
			BSSID:    found.BSSID,
			Channel:  found.Channel,
			AuthMode: found.AuthMode,
		},
	})

	m.mu.Lock()
	lease := m.config.Lease
	m.ipInfo[InterfaceSTA] = &lease
	m.mu.Unlock()

	m.after(Event{ID: EventSTAGotIP, Info: &GotIP{IPInfo: lease}})
}

func cStringLen(b []byte) int {
	for i, c := range b {
		if c == 0 {
			return i
		}
	}

	return len(b)
}
