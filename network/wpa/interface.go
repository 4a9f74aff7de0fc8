package wpa

import (
	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

// Interface is a network interface controlled by wpa_supplicant.
type Interface struct {
	wpa    *Wpa
	ifname string
	obj    dbus.BusObject
}

func (i *Interface) Ifname() string {
	return i.ifname
}

func (i *Interface) Path() dbus.ObjectPath {
	return i.obj.Path()
}

// Watch subscribes the connection to the interface signals the driver
// reacts to.
func (i *Interface) Watch() error {
	for _, member := range []string{"PropertiesChanged", "ScanDone"} {
		call := i.wpa.conn.BusObject().AddMatchSignal(interfaceName, member, dbus.WithMatchObjectPath(i.obj.Path()))
		if call.Err != nil {
			return errors.Errorf("could not add %v signal: %v", member, call.Err)
		}
	}

	return nil
}

// Unwatch removes the matches added by Watch.
func (i *Interface) Unwatch() error {
	for _, member := range []string{"PropertiesChanged", "ScanDone"} {
		call := i.wpa.conn.BusObject().RemoveMatchSignal(interfaceName, member, dbus.WithMatchObjectPath(i.obj.Path()))
		if call.Err != nil {
			return errors.Errorf("could not remove %v signal: %v", member, call.Err)
		}
	}

	return nil
}

func (i *Interface) Scan() error {
	call := i.obj.Call(interfaceName+".Scan", 0, map[string]interface{}{
		"Type": "active",
	})
	if call.Err != nil {
		return errors.Errorf("could not scan: %v", call.Err)
	}

	return nil
}

func (i *Interface) Disconnect() error {
	call := i.obj.Call(interfaceName+".Disconnect", 0)
	if call.Err != nil {
		return errors.Errorf("could not disconnect: %v", call.Err)
	}

	return nil
}

func (i *Interface) State() (string, error) {
	v, err := i.obj.GetProperty(interfaceName + ".State")
	if err != nil {
		return "", errors.Errorf("could not get state: %v", err)
	}

	state, ok := v.Value().(string)
	if !ok {
		return "", errors.Errorf("could not convert state: %v", v)
	}

	return state, nil
}

// DisconnectReason is the IEEE 802.11 reason code of the last disconnection,
// negative when the disconnection was initiated locally.
func (i *Interface) DisconnectReason() (int32, error) {
	v, err := i.obj.GetProperty(interfaceName + ".DisconnectReason")
	if err != nil {
		return 0, errors.Errorf("could not get disconnect reason: %v", err)
	}

	reason, ok := v.Value().(int32)
	if !ok {
		return 0, errors.Errorf("could not convert disconnect reason: %v", v)
	}

	return reason, nil
}

func (i *Interface) CurrentBSS() (*BSS, error) {
	v, err := i.obj.GetProperty(interfaceName + ".CurrentBSS")
	if err != nil {
		return nil, errors.Errorf("could not get current bss: %v", err)
	}

	path, ok := v.Value().(dbus.ObjectPath)
	if !ok || path == "/" {
		return nil, errors.Errorf("no current bss")
	}

	return &BSS{obj: i.wpa.conn.Object(service, path)}, nil
}

func (i *Interface) BSSs() ([]*BSS, error) {
	v, err := i.obj.GetProperty(interfaceName + ".BSSs")
	if err != nil {
		return nil, errors.Errorf("could not get bsss: %v", err)
	}

	objectPaths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert bsss: %v", v)
	}

	var bsss []*BSS

	for _, objectPath := range objectPaths {
		bsss = append(bsss, &BSS{
			obj: i.wpa.conn.Object(service, objectPath),
		})
	}

	return bsss, nil
}

// AddNetwork configures a network block. An empty psk configures an open
// network.
func (i *Interface) AddNetwork(ssid string, psk string) (*Network, error) {
	args := map[string]interface{}{
		"ssid":      ssid,
		"scan_ssid": int32(1),
	}

	if psk != "" {
		args["psk"] = psk
	} else {
		args["key_mgmt"] = "NONE"
	}

	call := i.obj.Call(interfaceName+".AddNetwork", 0, args)
	if call.Err != nil {
		return nil, errors.Errorf("could not add network: %v", call.Err)
	}

	var objPath dbus.ObjectPath
	err := call.Store(&objPath)
	if err != nil {
		return nil, errors.Errorf("could not store value: %v", err)
	}

	return &Network{
		obj: i.wpa.conn.Object(service, objPath),
	}, nil
}

func (i *Interface) SelectNetwork(net *Network) error {
	call := i.obj.Call(interfaceName+".SelectNetwork", 0, net.Path())
	if call.Err != nil {
		return errors.Errorf("could not select network: %v", call.Err)
	}

	return nil
}

func (i *Interface) RemoveAllNetworks() error {
	call := i.obj.Call(interfaceName+".RemoveAllNetworks", 0)
	if call.Err != nil {
		return errors.Errorf("could not remove all networks: %v", call.Err)
	}

	return nil
}
