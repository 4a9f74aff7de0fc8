package pairing

import (
	"context"

	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/network"
)

// Daemon is what the pairing characteristics read from and write to.
type Daemon interface {
	State() connectivity.State
	WifiIP(ctx context.Context) (*network.Record, error)
	WifiDetails(ctx context.Context) (*network.Record, error)
	ScanWifi(ctx context.Context) ([]*network.Record, error)
	ConnectToWifi(ssid string, psk string) error
}

type Config struct {
	Logger Logger
	// AdapterId is the bluetooth adapter, ex. hci0
	AdapterId string
	// Name is advertised as the local and device name.
	Name   string
	Daemon Daemon
}
