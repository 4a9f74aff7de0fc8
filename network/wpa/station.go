package wpa

import (
	"github.com/godbus/dbus/v5"
)

// station is the part of a wpa_supplicant interface the driver drives.
type station interface {
	Path() dbus.ObjectPath
	DisconnectReason() (int32, error)
	CurrentBSS() (*Bss, error)
	// BSSs returns the known access points in the order wpa_supplicant
	// reports them.
	BSSs() ([]*Bss, error)
	Scan() error
	Disconnect() error
	SelectSSID(ssid string, psk string) error
	Unwatch() error
}

// interfaceStation resolves BSS objects of an Interface into properties.
type interfaceStation struct {
	*Interface
	log Logger
}

func (s *interfaceStation) CurrentBSS() (*Bss, error) {
	bss, err := s.Interface.CurrentBSS()
	if err != nil {
		return nil, err
	}

	return bss.GetAll()
}

func (s *interfaceStation) BSSs() ([]*Bss, error) {
	bsss, err := s.Interface.BSSs()
	if err != nil {
		return nil, err
	}

	props := make([]*Bss, 0, len(bsss))

	for _, bss := range bsss {
		p, err := bss.GetAll()
		if err != nil {
			s.log.Debugf("Skipping %v: %v", bss, err)
			continue
		}

		props = append(props, p)
	}

	return props, nil
}

// SelectSSID replaces all configured networks with ssid and selects it.
func (s *interfaceStation) SelectSSID(ssid string, psk string) error {
	err := s.RemoveAllNetworks()
	if err != nil {
		return err
	}

	network, err := s.AddNetwork(ssid, psk)
	if err != nil {
		return err
	}

	return s.SelectNetwork(network)
}
