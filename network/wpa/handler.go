package wpa

import "github.com/godbus/dbus/v5"

// wpaSignalHandler hands every signal of the private connection to Wpa.
type wpaSignalHandler struct {
	*Wpa
}

var _ dbus.SignalHandler = (*wpaSignalHandler)(nil)

func (h *wpaSignalHandler) DeliverSignal(iface, name string, signal *dbus.Signal) {
	h.deliverSignal(iface, name, signal)
}
