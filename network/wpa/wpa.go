// Package wpa talks to wpa_supplicant over the D-Bus system bus and offers a
// driver.Driver for the station side of a wireless interface.
package wpa

import (
	"sync"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

const (
	service       = "fi.w1.wpa_supplicant1"
	servicePath   = "/fi/w1/wpa_supplicant1"
	interfaceName = "fi.w1.wpa_supplicant1.Interface"
	bssName       = "fi.w1.wpa_supplicant1.BSS"
)

type nextClient struct {
	sync.Mutex
	id uint32
}

// SignalClient receives every signal delivered on the connection until
// Cancel is called.
type SignalClient struct {
	Id      uint32
	Signals <-chan *dbus.Signal
	Cancel  func()
	signals chan *dbus.Signal
}

// Wpa is a private system bus connection to wpa_supplicant.
type Wpa struct {
	conn       *dbus.Conn
	obj        dbus.BusObject
	clientsMu  sync.Mutex
	clients    map[uint32]*SignalClient
	nextClient nextClient
}

func New() *Wpa {
	return &Wpa{
		clients: make(map[uint32]*SignalClient),
	}
}

func (w *Wpa) Start() error {
	conn, err := dbus.SystemBusPrivate(dbus.WithSignalHandler(&wpaSignalHandler{w}))
	if err != nil {
		return errors.Errorf("could not connect to system bus: %v", err)
	}

	err = conn.Auth(nil)
	if err != nil {
		_ = conn.Close()
		return errors.Errorf("could not authenticate: %v", err)
	}

	err = conn.Hello()
	if err != nil {
		_ = conn.Close()
		return errors.Errorf("could not send hello: %v", err)
	}

	w.conn = conn
	w.obj = conn.Object(service, servicePath)

	return nil
}

func (w *Wpa) Stop() error {
	w.clientsMu.Lock()
	for id, client := range w.clients {
		close(client.signals)
		delete(w.clients, id)
	}
	w.clientsMu.Unlock()

	if w.conn == nil {
		return nil
	}

	err := w.conn.Close()
	if err != nil {
		return errors.Errorf("could not close system bus connection: %v", err)
	}

	return nil
}

// GetInterface looks up the wpa_supplicant object of a network interface.
func (w *Wpa) GetInterface(ifname string) (*Interface, error) {
	var path dbus.ObjectPath

	err := w.obj.Call(service+".GetInterface", 0, ifname).Store(&path)
	if err != nil {
		return nil, errors.Errorf("could not get interface %v: %v", ifname, err)
	}

	return &Interface{
		wpa:    w,
		ifname: ifname,
		obj:    w.conn.Object(service, path),
	}, nil
}

// Subscribe returns a client receiving all signals. Signals are dropped for
// a client whose buffer is full.
func (w *Wpa) Subscribe() *SignalClient {
	signals := make(chan *dbus.Signal, 32)

	client := &SignalClient{
		Signals: signals,
		signals: signals,
	}

	w.nextClient.Lock()
	client.Id = w.nextClient.id
	w.nextClient.id++
	w.nextClient.Unlock()

	client.Cancel = func() {
		w.clientsMu.Lock()
		defer w.clientsMu.Unlock()

		if _, ok := w.clients[client.Id]; ok {
			delete(w.clients, client.Id)
			close(signals)
		}
	}

	w.clientsMu.Lock()
	w.clients[client.Id] = client
	w.clientsMu.Unlock()

	return client
}

func (w *Wpa) deliverSignal(iface, name string, signal *dbus.Signal) {
	w.clientsMu.Lock()
	defer w.clientsMu.Unlock()

	for _, client := range w.clients {
		select {
		case client.signals <- signal:
		default:
		}
	}
}
