// Package announce publishes the daemon over mDNS while the station is
// online.
package announce

import (
	"net"

	"github.com/go-errors/errors"
	"github.com/grandcat/zeroconf"
	"github.com/the-lightning-land/wifid/eventloop"
	"github.com/the-lightning-land/wifid/network"
)

type server interface {
	Shutdown()
}

type registerFunc func(instance, service, domain string, port int, text []string, ifaces []net.Interface) (server, error)

func zeroconfRegister(instance, service, domain string, port int, text []string, ifaces []net.Interface) (server, error) {
	return zeroconf.Register(instance, service, domain, port, text, ifaces)
}

// Events is where the announcer learns about the station.
type Events interface {
	On(event string, cb network.Callback) *eventloop.Subscription
}

type Config struct {
	Instance string
	Service  string
	Domain   string
	Port     int
	Text     []string
	// Interface restricts announcements to one network interface.
	Interface string
	Logger    Logger
}

type Announcer struct {
	log       Logger
	instance  string
	service   string
	domain    string
	port      int
	text      []string
	ifname    string
	register  registerFunc
	server    server
	changes   chan bool
	done      chan struct{}
	announced chan bool
	subs      []*eventloop.Subscription
}

func New(config *Config) *Announcer {
	a := &Announcer{
		instance:  config.Instance,
		service:   config.Service,
		domain:    config.Domain,
		port:      config.Port,
		text:      config.Text,
		ifname:    config.Interface,
		register:  zeroconfRegister,
		changes:   make(chan bool, 8),
		done:      make(chan struct{}),
		announced: make(chan bool, 8),
	}

	if a.service == "" {
		a.service = "_wifid._tcp"
	}

	if a.domain == "" {
		a.domain = "local."
	}

	if config.Logger != nil {
		a.log = config.Logger
	} else {
		a.log = noopLogger{}
	}

	return a
}

// Attach announces after connected and withdraws after disconnected or
// dhcp_timeout.
func (a *Announcer) Attach(events Events) {
	a.subs = append(a.subs,
		events.On(network.EventConnected, func(args ...interface{}) { a.set(true) }),
		events.On(network.EventDisconnected, func(args ...interface{}) { a.set(false) }),
		events.On(network.EventDHCPTimeout, func(args ...interface{}) { a.set(false) }),
	)
}

func (a *Announcer) set(on bool) {
	select {
	case a.changes <- on:
	default:
		a.log.Warnf("Dropping announcement change")
	}
}

// Run applies announcement changes in order until Shutdown.
func (a *Announcer) Run() {
	for {
		select {
		case on := <-a.changes:
			if on {
				if err := a.announce(); err != nil {
					a.log.Errorf("Could not announce: %v", err)
				}
			} else {
				a.withdraw()
			}

			select {
			case a.announced <- a.server != nil:
			default:
			}
		case <-a.done:
			a.withdraw()
			return
		}
	}
}

func (a *Announcer) Shutdown() {
	for _, sub := range a.subs {
		sub.Cancel()
	}

	close(a.done)
}

func (a *Announcer) announce() error {
	a.withdraw()

	var ifaces []net.Interface
	if a.ifname != "" {
		iface, err := net.InterfaceByName(a.ifname)
		if err != nil {
			return errors.Errorf("Could not find interface %v: %v", a.ifname, err)
		}

		ifaces = append(ifaces, *iface)
	}

	server, err := a.register(a.instance, a.service, a.domain, a.port, a.text, ifaces)
	if err != nil {
		return errors.Errorf("Could not register %v: %v", a.instance, err)
	}

	a.server = server

	a.log.Infof("Announcing %v as %v.%v on port %v", a.instance, a.service, a.domain, a.port)

	return nil
}

func (a *Announcer) withdraw() {
	if a.server == nil {
		return
	}

	a.server.Shutdown()
	a.server = nil

	a.log.Infof("Stopped announcing %v", a.instance)
}
