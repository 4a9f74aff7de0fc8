package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/the-lightning-land/wifid/connectivity"
	"github.com/the-lightning-land/wifid/eventloop"
	"github.com/the-lightning-land/wifid/network"
)

const defaultTimeout = 30 * time.Second

// Wifi is the method table of the adapter.
type Wifi interface {
	Invoke(name string, args ...interface{}) (interface{}, error)
}

// Loop is the execution context the adapter methods run on.
type Loop interface {
	Do(ctx context.Context, fn func()) error
	On(event string, cb network.Callback) *eventloop.Subscription
}

type Config struct {
	Wifi     Wifi
	Loop     Loop
	Reporter connectivity.Reporter
	// Secret enables HS256 bearer token checks on every route.
	Secret string
	// Timeout bounds how long a request waits for the loop and for callbacks.
	Timeout time.Duration
	Logger  Logger
}

type Api struct {
	wifi     Wifi
	loop     Loop
	reporter connectivity.Reporter
	secret   []byte
	timeout  time.Duration
	router   *mux.Router
	server   *http.Server
	log      Logger
}

func New(config *Config) *Api {
	api := &Api{
		wifi:     config.Wifi,
		loop:     config.Loop,
		reporter: config.Reporter,
		timeout:  config.Timeout,
		router:   mux.NewRouter(),
	}

	if config.Logger != nil {
		api.log = config.Logger
	} else {
		api.log = noopLogger{}
	}

	if api.timeout <= 0 {
		api.timeout = defaultTimeout
	}

	api.server = &http.Server{Handler: api.router}

	if config.Secret != "" {
		api.secret = []byte(config.Secret)
		api.router.Use(api.authenticate)
	}

	api.router.Handle("/api/v1/status", api.handleGetStatus()).Methods(http.MethodGet)

	api.router.Handle("/api/v1/wifi/events", api.handleGetWifiEvents()).Methods(http.MethodGet)
	api.router.Handle("/api/v1/wifi/{method}", api.handlePostWifiMethod()).Methods(http.MethodPost)

	return api
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

func (a *Api) Serve(l net.Listener) error {
	err := a.server.Serve(l)
	if err != nil && err != http.ErrServerClosed {
		return errors.Errorf("Unable to serve api: %v", err)
	}

	return nil
}

func (a *Api) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if err != nil {
		return errors.Errorf("Could not shut down api: %v", err)
	}

	return nil
}
