package main

import (
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/the-lightning-land/wifid/announce"
	"github.com/the-lightning-land/wifid/api"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/daemon"
	"github.com/the-lightning-land/wifid/driver"
	"github.com/the-lightning-land/wifid/eventloop"
	"github.com/the-lightning-land/wifid/network"
	"github.com/the-lightning-land/wifid/network/wpa"
	"github.com/the-lightning-land/wifid/pairing"
	"github.com/the-lightning-land/wifid/wifidb"

	// Blank import to set up profiling HTTP handlers.
	_ "net/http/pprof"
)

var (
	// commit stores the current commit hash of this build. This should be set using -ldflags during compilation.
	Commit string
	// version stores the version string of this build. This should be set using -ldflags during compilation.
	Version string
	// date stores the date of this build. This should be set using -ldflags during compilation.
	Date string
)

// wifidMain is the true entry point for wifid. This is required since defers
// created in the top-level scope of a main method aren't executed if os.Exit() is called.
func wifidMain() error {
	log.SetOutput(os.Stdout)
	log.SetLevel(log.InfoLevel)

	// Load CLI configuration and defaults
	cfg, err := loadConfig()
	if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		return nil
	} else if err != nil {
		return errors.Errorf("Failed parsing arguments: %v", err)
	}

	// Set logger into debug mode if called with --debug
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
		log.Info("Setting debug mode.")
	}

	log.Debug("Loaded config.")

	// Print version of the daemon
	log.Infof("Version %s (commit %s)", Version, Commit)
	log.Infof("Built on %s", Date)

	// Stop here if only version was requested
	if cfg.ShowVersion {
		return nil
	}

	if cfg.Profiling != nil {
		go func() {
			log.Infof("Starting profiling server on %v", cfg.Profiling.Listen)
			// Redirect the root path
			http.Handle("/", http.RedirectHandler("/debug/pprof", http.StatusSeeOther))
			// All other handlers are registered on DefaultServeMux through the import of pprof
			err := http.ListenAndServe(cfg.Profiling.Listen, nil)
			if err != nil {
				log.Errorf("Could not run profiler: %v", err)
			}
		}()
	}

	// wifi.db remembers the station network between boots
	wifiDB, err := wifidb.Open(cfg.DataDir)
	if err != nil {
		return errors.Errorf("Could not open wifi.db: %v", err)
	}

	log.Infof("Opened %v", wifiDB.Path())

	defer func() {
		err := wifiDB.Close()
		if err != nil {
			log.Errorf("Could not close wifi.db: %v", err)
		} else {
			log.Info("Closed wifi.db.")
		}
	}()

	// The radio driver, which reports association, addressing and scan
	// results to the adapter
	var d driver.Driver

	switch cfg.Driver {
	case "wpa":
		wpaDriver := wpa.NewDriver(&wpa.DriverConfig{
			Interface:   cfg.Wpa.Interface,
			DHCPTimeout: cfg.Wpa.DHCPTimeout,
			Logger:      log.New().WithField("system", "wpa"),
		})

		err := wpaDriver.Open()
		if err != nil {
			return errors.Errorf("Could not open wpa_supplicant driver: %v", err)
		}

		defer func() {
			err := wpaDriver.Close()
			if err != nil {
				log.Errorf("Could not properly close wpa_supplicant driver: %v", err)
			} else {
				log.Info("Closed wpa_supplicant driver.")
			}
		}()

		d = wpaDriver

		log.Infof("Created wpa_supplicant driver on %v.", cfg.Wpa.Interface)
	case "mock":
		d = driver.NewMockDriver(&driver.MockConfig{
			Simulate: true,
			Delay:    100 * time.Millisecond,
			Networks: mockNetworks(cfg.Mock.Networks),
		})

		log.Info("Created a mock driver.")
	default:
		return errors.Errorf("Unknown driver type %v", cfg.Driver)
	}

	// The execution context all adapter callbacks and events run on
	loop := eventloop.New(&eventloop.Config{
		QueueSize: cfg.QueueSize,
		Logger:    log.New().WithField("system", "loop"),
	})

	wifi := network.NewWifi(&network.Config{
		Driver:  d,
		Runtime: loop,
		Logger:  log.New().WithField("system", "network"),
	})

	reporter := connectivity.NewReporter(&connectivity.Config{
		Logger: log.New().WithField("system", "connectivity"),
	})

	name, err := wifiDB.GetName()
	if err != nil {
		log.Warnf("Could not read device name: %v", err)
	}

	if name == "" {
		name, _ = os.Hostname()
	}

	var announcer *announce.Announcer

	if cfg.Mdns.Enabled {
		instance := cfg.Mdns.Instance
		if instance == "" {
			instance = name
		}

		announcer = announce.New(&announce.Config{
			Instance:  instance,
			Service:   cfg.Mdns.Service,
			Port:      listenPort(cfg.Api.Listen[0]),
			Text:      []string{"version=" + Version},
			Interface: cfg.Wpa.Interface,
			Logger:    log.New().WithField("system", "announce"),
		})

		log.Infof("Created mDNS announcer for %v.", instance)
	}

	a := api.New(&api.Config{
		Wifi:     wifi,
		Loop:     loop,
		Reporter: reporter,
		Secret:   cfg.Api.Secret,
		Timeout:  cfg.Api.Timeout,
		Logger:   log.New().WithField("system", "api"),
	})

	log.Infof("Created API")

	// central controller for everything the daemon does
	wifid := daemon.New(&daemon.Config{
		Wifi:      wifi,
		Loop:      loop,
		DB:        wifiDB,
		Reporter:  reporter,
		Announcer: announcer,
		Api:       a,
		Listen:    cfg.Api.Listen,
		Timeout:   cfg.Api.Timeout,
		Logger:    log.New().WithField("system", "daemon"),
	})

	log.Infof("Created daemon.")

	if cfg.Pairing.Enabled {
		// create subsystem responsible for pairing
		pairingController, err := pairing.NewController(&pairing.Config{
			Logger:    log.New().WithField("system", "pairing"),
			AdapterId: cfg.Pairing.AdapterId,
			Name:      name,
			Daemon:    wifid,
		})
		if err != nil {
			return errors.Errorf("Could not create pairing controller: %v", err)
		}

		log.Infof("Created pairing controller.")

		err = pairingController.Start()
		if err != nil {
			return errors.Errorf("Could not start pairing controller: %v", err)
		}

		log.Infof("Started pairing controller.")

		defer func() {
			err := pairingController.Stop()
			if err != nil {
				log.Errorf("Could not properly shut down pairing controller: %v", err)
			}

			log.Infof("Stopped pairing controller.")
		}()
	}

	// Handle interrupt signals correctly
	go func() {
		signals := make(chan os.Signal, 1)
		signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
		sig := <-signals
		log.Info(sig)
		log.Info("Received an interrupt, stopping daemon...")
		wifid.Shutdown()
	}()

	// blocks until the daemon is shut down
	err = wifid.Run()
	if err != nil {
		return errors.Errorf("Failed running daemon: %v", err)
	}

	// finish with no error
	return nil
}

// mockNetworks parses ssid[:password] values.
func mockNetworks(values []string) []driver.MockNetwork {
	var networks []driver.MockNetwork

	for i, value := range values {
		n := driver.MockNetwork{
			SSID:     value,
			Channel:  uint8(1 + i%11),
			RSSI:     int8(-40 - 5*(i%10)),
			AuthMode: driver.AuthOpen,
		}

		if sep := strings.Index(value, ":"); sep >= 0 {
			n.SSID = value[:sep]
			n.Password = value[sep+1:]
			n.AuthMode = driver.AuthWPA2PSK
		}

		networks = append(networks, n)
	}

	return networks
}

// listenPort returns the port of a listen address, 0 if there is none.
func listenPort(addr string) int {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}

	p, err := strconv.Atoi(port)
	if err != nil {
		return 0
	}

	return p
}

func main() {
	// Call the "real" main in a nested manner so the defers will properly
	// be executed in the case of a graceful shutdown.
	if err := wifidMain(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
		} else {
			log.WithError(err).Println("Failed running wifid.")
		}
		os.Exit(1)
	}
}
