// Package daemon is the central controller. It owns the lifecycle of the
// adapter and its event loop, remembers the station's network and serves the
// api.
package daemon

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/wifid/announce"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/eventloop"
	"github.com/the-lightning-land/wifid/network"
	"github.com/the-lightning-land/wifid/wifidb"
)

const (
	defaultTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

type Daemon struct {
	wifi      *network.Wifi
	loop      *eventloop.Loop
	db        *wifidb.DB
	reporter  *connectivity.NetworkReporter
	announcer *announce.Announcer
	api       Api
	listen    []string
	timeout   time.Duration
	log       Logger
	done      chan struct{}
	once      sync.Once
	subs      []*eventloop.Subscription
}

func New(config *Config) *Daemon {
	d := &Daemon{
		wifi:      config.Wifi,
		loop:      config.Loop,
		db:        config.DB,
		reporter:  config.Reporter,
		announcer: config.Announcer,
		api:       config.Api,
		listen:    config.Listen,
		timeout:   config.Timeout,
		done:      make(chan struct{}),
	}

	if d.timeout <= 0 {
		d.timeout = defaultTimeout
	}

	if config.Logger != nil {
		d.log = config.Logger
	} else {
		d.log = noopLogger{}
	}

	return d
}

// Run blocks until Shutdown is called.
func (d *Daemon) Run() error {
	d.log.Infof("Starting daemon...")

	err := d.wifi.Start()
	if err != nil {
		return errors.Errorf("Could not start wifi: %v", err)
	}

	defer func() {
		err := d.wifi.Stop()
		if err != nil {
			d.log.Errorf("Could not stop wifi: %v", err)
		}
	}()

	d.reporter.Attach(d.loop)
	defer d.reporter.Detach()

	if d.announcer != nil {
		d.announcer.Attach(d.loop)
		go d.announcer.Run()
		defer d.announcer.Shutdown()
	}

	d.subs = append(d.subs, d.loop.On(network.EventConnected, d.rememberWifiConnection))

	defer func() {
		for _, sub := range d.subs {
			sub.Cancel()
		}
	}()

	// the handler and listeners are in place before anything runs on the loop
	go d.loop.Run()
	defer d.loop.Stop()

	d.maybeAttemptSavedWifiConnection()

	if d.api != nil {
		for _, addr := range d.listen {
			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return errors.Errorf("Api unable to listen on %v: %v", addr, err)
			}

			d.log.Infof("Serving api on %v", lis.Addr())

			go func() {
				err := d.api.Serve(lis)
				if err != nil {
					d.log.Errorf("Could not serve api: %v", err)
				}
			}()
		}
	}

	<-d.done

	d.log.Infof("Stopping daemon...")

	return nil
}

// Shutdown stops the api and makes Run return.
func (d *Daemon) Shutdown() {
	d.once.Do(func() {
		if d.api != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			err := d.api.Shutdown(ctx)
			if err != nil {
				d.log.Errorf("Could not shut down api: %v", err)
			}
		}

		close(d.done)
	})
}

// State reports whether the station currently holds an address.
func (d *Daemon) State() connectivity.State {
	return d.reporter.CurrentState()
}

func (d *Daemon) GetName() (string, error) {
	name, err := d.db.GetName()
	if err != nil {
		return "", errors.Errorf("Failed getting name: %v", err)
	}

	return name, nil
}

func (d *Daemon) SetName(name string) error {
	d.log.Infof("Setting name")

	err := d.db.SetName(name)
	if err != nil {
		return errors.Errorf("Failed setting name: %v", err)
	}

	return nil
}
