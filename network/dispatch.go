package network

import (
	"sort"
	"strconv"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/driver"
)

// Event names published to the runtime.
const (
	EventDisconnected = "disconnected"
	EventAssociated   = "associated"
	EventConnected    = "connected"
	EventAuthChange   = "auth_change"
	EventSTAJoined    = "sta_joined"
	EventSTALeft      = "sta_left"
	EventProbeRecv    = "probe_recv"
	EventDHCPTimeout  = "dhcp_timeout"
)

var eventNames = map[driver.EventID]string{
	driver.EventSTADisconnected:    EventDisconnected,
	driver.EventSTAConnected:       EventAssociated,
	driver.EventSTAGotIP:           EventConnected,
	driver.EventSTAAuthModeChange:  EventAuthChange,
	driver.EventAPSTAConnected:     EventSTAJoined,
	driver.EventAPSTADisconnected:  EventSTALeft,
	driver.EventAPProbeReqReceived: EventProbeRecv,
	driver.EventSTADHCPTimeout:     EventDHCPTimeout,
}

// EventName returns the name a vendor event is published under. Events
// without a name are not published.
func EventName(id driver.EventID) (string, bool) {
	name, ok := eventNames[id]
	return name, ok
}

// Events lists every name published to the runtime.
func Events() []string {
	names := make([]string, 0, len(eventNames))
	for _, name := range eventNames {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// HandleEvent is the driver event handler. It resolves pending callbacks,
// builds scan results and publishes named events to the runtime.
func (w *Wifi) HandleEvent(ev driver.Event) error {
	w.trackStation(ev)

	if ev.ID == driver.EventScanDone {
		return w.buildScanResults()
	}

	name, ok := EventName(ev.ID)
	if !ok {
		w.log.Debugf("Ignoring event %v", ev.ID)
		return nil
	}

	switch ev.ID {
	case driver.EventSTADisconnected:
		w.resolve(&w.disconnect)
	case driver.EventSTAGotIP:
		w.resolve(&w.gotIP, nil)
	}

	record, err := eventRecord(ev)
	if err != nil {
		w.log.Errorf("Could not build %v record: %v", name, err)
		return err
	}

	if record == nil {
		w.runtime.Emit(name)
	} else {
		w.runtime.Emit(name, record)
	}

	return nil
}

// resolve takes the callback out of slot and queues it with args. An empty
// slot is a no-op.
func (w *Wifi) resolve(slot *pending, args ...interface{}) {
	cb := slot.take()
	if cb == nil {
		return
	}

	w.runtime.Queue(cb, args...)
}

func eventRecord(ev driver.Event) (*Record, error) {
	switch info := ev.Info.(type) {
	case *driver.STADisconnected:
		return NewRecord().
			Set("ssid", decodeSSID(info.SSID, info.SSIDLen)).
			Set("mac", formatMAC(info.BSSID)).
			Set("reason", strconv.Itoa(int(info.Reason))), nil
	case *driver.STAConnected:
		return NewRecord().
			Set("ssid", decodeSSID(info.SSID, info.SSIDLen)).
			Set("mac", formatMAC(info.BSSID)).
			Set("channel", strconv.Itoa(int(info.Channel))), nil
	case *driver.GotIP:
		return NewRecord().
			Set("ip", formatIP(info.IPInfo.IP)).
			Set("netmask", formatIP(info.IPInfo.Netmask)).
			Set("gw", formatIP(info.IPInfo.GW)), nil
	case *driver.AuthModeChange:
		return NewRecord().
			Set("oldMode", AuthModeName(info.OldMode)).
			Set("newMode", AuthModeName(info.NewMode)), nil
	case *driver.APSTAConnected:
		return NewRecord().Set("mac", formatMAC(info.MAC)), nil
	case *driver.APSTADisconnected:
		return NewRecord().Set("mac", formatMAC(info.MAC)), nil
	case *driver.ProbeReqReceived:
		return NewRecord().
			Set("mac", formatMAC(info.MAC)).
			Set("rssi", info.RSSI), nil
	case nil:
		if ev.ID == driver.EventSTADHCPTimeout {
			return nil, nil
		}
	}

	return nil, errors.Errorf("unexpected payload %T for event %v", ev.Info, ev.ID)
}

func (w *Wifi) trackStation(ev driver.Event) {
	switch ev.ID {
	case driver.EventSTAConnected, driver.EventSTALostIP:
		w.setStation(StationAssociated)
	case driver.EventSTAGotIP:
		w.setStation(StationConnected)
	case driver.EventSTADHCPTimeout:
		w.setStation(StationConnectFail)
	case driver.EventSTAStop:
		w.setStation(StationOff)
	case driver.EventSTADisconnected:
		if info, ok := ev.Info.(*driver.STADisconnected); ok {
			w.setStation(stationAfterDisconnect(info.Reason))
		}
	}
}
