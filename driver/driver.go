// Package driver describes the vendor Wi-Fi stack the adapter sits on: the
// event identifiers it reports, their payloads, the fixed-size configuration
// records it holds and the step-wise calls it accepts.
package driver

import "net"

// Mode is the radio operating mode.
type Mode int

const (
	ModeNull Mode = iota
	ModeSTA
	ModeAP
	ModeAPSTA
)

// PowerSave is the radio power save type.
type PowerSave int

const (
	PowerSaveNone PowerSave = iota
	PowerSaveModem
	PowerSaveLight
	PowerSaveMAC
)

// AuthMode is the authentication mode of an access point.
type AuthMode int

const (
	AuthOpen AuthMode = iota
	AuthWEP
	AuthWPAPSK
	AuthWPA2PSK
	AuthWPAWPA2PSK
	AuthWPA2Enterprise
)

// Interface selects the station or the access point side of the radio.
type Interface int

const (
	InterfaceSTA Interface = iota
	InterfaceAP
)

func (i Interface) String() string {
	switch i {
	case InterfaceSTA:
		return "sta"
	case InterfaceAP:
		return "ap"
	default:
		return "invalid"
	}
}

// EventID identifies a vendor system event.
type EventID int

const (
	EventWifiReady EventID = iota
	EventScanDone
	EventSTAStart
	EventSTAStop
	EventSTAConnected
	EventSTADisconnected
	EventSTAAuthModeChange
	EventSTAGotIP
	EventSTALostIP
	EventSTADHCPTimeout
	EventAPStart
	EventAPStop
	EventAPSTAConnected
	EventAPSTADisconnected
	EventAPProbeReqReceived
)

func (e EventID) String() string {
	switch e {
	case EventWifiReady:
		return "WIFI_READY"
	case EventScanDone:
		return "SCAN_DONE"
	case EventSTAStart:
		return "STA_START"
	case EventSTAStop:
		return "STA_STOP"
	case EventSTAConnected:
		return "STA_CONNECTED"
	case EventSTADisconnected:
		return "STA_DISCONNECTED"
	case EventSTAAuthModeChange:
		return "STA_AUTHMODE_CHANGE"
	case EventSTAGotIP:
		return "STA_GOT_IP"
	case EventSTALostIP:
		return "STA_LOST_IP"
	case EventSTADHCPTimeout:
		return "STA_DHCP_TIMEOUT"
	case EventAPStart:
		return "AP_START"
	case EventAPStop:
		return "AP_STOP"
	case EventAPSTAConnected:
		return "AP_STACONNECTED"
	case EventAPSTADisconnected:
		return "AP_STADISCONNECTED"
	case EventAPProbeReqReceived:
		return "AP_PROBEREQRECVED"
	default:
		return "UNKNOWN"
	}
}

// Disconnect reason codes reported in STADisconnected.
const (
	ReasonUnspecified      uint8 = 1
	ReasonAuthExpire       uint8 = 2
	ReasonAssocLeave       uint8 = 8
	ReasonFourWayTimeout   uint8 = 15
	ReasonBeaconTimeout    uint8 = 200
	ReasonNoAPFound        uint8 = 201
	ReasonAuthFail         uint8 = 202
	ReasonAssocFail        uint8 = 203
	ReasonHandshakeTimeout uint8 = 204
)

// Event is delivered to the registered EventHandler. Info holds a pointer to
// one of the payload structs below, or nil for events without payload.
type Event struct {
	ID   EventID
	Info interface{}
}

// STAConnected is the payload of EventSTAConnected.
type STAConnected struct {
	SSID     [32]byte
	SSIDLen  uint8
	BSSID    [6]byte
	Channel  uint8
	AuthMode AuthMode
}

// STADisconnected is the payload of EventSTADisconnected.
type STADisconnected struct {
	SSID    [32]byte
	SSIDLen uint8
	BSSID   [6]byte
	Reason  uint8
}

// AuthModeChange is the payload of EventSTAAuthModeChange.
type AuthModeChange struct {
	OldMode AuthMode
	NewMode AuthMode
}

// GotIP is the payload of EventSTAGotIP.
type GotIP struct {
	IPInfo IPInfo
}

// APSTAConnected is the payload of EventAPSTAConnected.
type APSTAConnected struct {
	MAC [6]byte
	AID uint8
}

// APSTADisconnected is the payload of EventAPSTADisconnected.
type APSTADisconnected struct {
	MAC [6]byte
	AID uint8
}

// ProbeReqReceived is the payload of EventAPProbeReqReceived.
type ProbeReqReceived struct {
	RSSI int
	MAC  [6]byte
}

// ScanDone is the payload of EventScanDone.
type ScanDone struct {
	Status uint32
	Number uint8
	ScanID uint8
}

// IPInfo holds the IPv4 configuration of an interface.
type IPInfo struct {
	IP      net.IP
	Netmask net.IP
	GW      net.IP
}

// APRecord is one access point found by a scan.
type APRecord struct {
	BSSID    [6]byte
	SSID     [32]byte
	Primary  uint8
	RSSI     int8
	AuthMode AuthMode
}

// STAConfig is the station configuration.
type STAConfig struct {
	SSID     [32]byte
	Password [64]byte
	BSSIDSet bool
	BSSID    [6]byte
}

// APConfig is the access point configuration.
type APConfig struct {
	SSID           [32]byte
	Password       [64]byte
	SSIDLen        uint8
	Channel        uint8
	AuthMode       AuthMode
	SSIDHidden     bool
	MaxConnection  uint8
	BeaconInterval uint16
}

// ScanConfig parameterizes ScanStart. Nil SSID and BSSID scan for all.
type ScanConfig struct {
	SSID       []byte
	BSSID      []byte
	Channel    uint8
	ShowHidden bool
}

// EventHandler receives every vendor event. A returned error is reported by
// the driver according to its own conventions.
type EventHandler func(Event) error

// Driver is the vendor Wi-Fi stack. Completion of Connect, Disconnect and
// ScanStart is reported later through the EventHandler, never synchronously
// from within those calls.
type Driver interface {
	SetEventHandler(handler EventHandler) error

	SetMode(mode Mode) error
	GetMode() (Mode, error)
	GetPowerSave() (PowerSave, error)

	SetSTAConfig(config *STAConfig) error
	GetSTAConfig() (*STAConfig, error)
	GetAPConfig() (*APConfig, error)

	Start() error
	Connect() error
	Disconnect() error

	ScanStart(config *ScanConfig) error
	ScanAPNum() (uint16, error)
	ScanAPRecords(max uint16) ([]APRecord, error)

	GetIPInfo(iface Interface) (*IPInfo, error)
	GetMAC(iface Interface) (net.HardwareAddr, error)
}
