package daemon

import (
	"context"
	"net"
	"time"

	"github.com/the-lightning-land/wifid/announce"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/eventloop"
	"github.com/the-lightning-land/wifid/network"
	"github.com/the-lightning-land/wifid/wifidb"
)

type Api interface {
	Serve(l net.Listener) error
	Shutdown(ctx context.Context) error
}

type Config struct {
	Wifi     *network.Wifi
	Loop     *eventloop.Loop
	DB       *wifidb.DB
	Reporter *connectivity.NetworkReporter
	// Announcer is optional.
	Announcer *announce.Announcer
	// Api is optional. It is served on every address in Listen.
	Api    Api
	Listen []string
	// Timeout bounds calls onto the event loop.
	Timeout time.Duration
	Logger  Logger
}
