package main

import (
	"path/filepath"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/mitchellh/go-homedir"
)

const (
	defaultDataDir     = "~/.wifid"
	defaultDriver      = "wpa"
	defaultApiListen   = ":9000"
	defaultApiTimeout  = 30 * time.Second
	defaultInterface   = "wlan0"
	defaultDHCPTimeout = 30 * time.Second
	defaultQueueSize   = 64
	defaultAdapterId   = "hci0"
)

type apiConfig struct {
	Listen  []string      `long:"listen" description:"Add an interface/port to listen for api connections"`
	Secret  string        `long:"secret" description:"Require HS256 bearer tokens signed with this secret"`
	Timeout time.Duration `long:"timeout" description:"How long an api request waits for the adapter"`
}

type wpaConfig struct {
	Interface   string        `long:"interface" description:"The wireless interface managed by wpa_supplicant"`
	DHCPTimeout time.Duration `long:"dhcptimeout" description:"How long to wait for an address after associating"`
}

type mockConfig struct {
	Networks []string `long:"network" description:"A simulated network as ssid[:password]"`
}

type mdnsConfig struct {
	Enabled  bool   `long:"enabled" description:"Announce the api over mDNS while connected"`
	Instance string `long:"instance" description:"The mDNS instance name, defaults to the device name"`
	Service  string `long:"service" description:"The mDNS service type"`
}

type pairingConfig struct {
	Enabled   bool   `long:"enabled" description:"Offer Wi-Fi provisioning over Bluetooth LE"`
	AdapterId string `long:"adapter" description:"The bluetooth adapter to advertise on"`
}

type profilingConfig struct {
	Listen string `long:"listen" description:"Add an interface/port to listen for profiling data"`
}

type config struct {
	ShowVersion bool             `short:"v" long:"version" description:"Display version information and exit"`
	Debug       bool             `long:"debug" description:"Start in debug mode"`
	DataDir     string           `long:"datadir" description:"The directory to store wifid's data within"`
	Driver      string           `long:"driver" description:"The radio driver to use" choice:"wpa" choice:"mock"`
	QueueSize   int              `long:"queuesize" description:"How many callbacks may wait for the event loop"`
	Api         *apiConfig       `group:"API" namespace:"api"`
	Wpa         *wpaConfig       `group:"wpa_supplicant" namespace:"wpa"`
	Mock        *mockConfig      `group:"Mock" namespace:"mock"`
	Mdns        *mdnsConfig      `group:"mDNS" namespace:"mdns"`
	Pairing     *pairingConfig   `group:"Pairing" namespace:"pairing"`
	Profiling   *profilingConfig `group:"Profiling" namespace:"profiling"`
}

// loadConfig parses the command line on top of the defaults.
func loadConfig() (*config, error) {
	cfg := config{
		DataDir:   defaultDataDir,
		Driver:    defaultDriver,
		QueueSize: defaultQueueSize,
		Api: &apiConfig{
			Timeout: defaultApiTimeout,
		},
		Wpa: &wpaConfig{
			Interface:   defaultInterface,
			DHCPTimeout: defaultDHCPTimeout,
		},
		Mock:      &mockConfig{},
		Mdns:      &mdnsConfig{},
		Pairing:   &pairingConfig{AdapterId: defaultAdapterId},
		Profiling: &profilingConfig{},
	}

	if _, err := flags.Parse(&cfg); err != nil {
		return nil, err
	}

	if len(cfg.Api.Listen) == 0 {
		cfg.Api.Listen = []string{defaultApiListen}
	}

	dataDir, err := homedir.Expand(filepath.Clean(cfg.DataDir))
	if err != nil {
		return nil, err
	}

	cfg.DataDir = dataDir

	// profiling stays off unless asked for
	if cfg.Profiling.Listen == "" {
		cfg.Profiling = nil
	}

	return &cfg, nil
}
