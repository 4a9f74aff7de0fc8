package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-errors/errors"
	"github.com/gorilla/mux"
	"github.com/the-lightning-land/wifid/network"
)

type postWifiMethodResponse struct {
	Result   interface{}   `json:"result"`
	Callback []interface{} `json:"callback"`
}

// handlePostWifiMethod invokes an adapter method with the JSON array in the
// request body as its arguments. Methods taking a callback get one appended
// whose arguments are returned when the request waits for it.
func (a *Api) handlePostWifiMethod() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["method"]

		var args []interface{}
		err := json.NewDecoder(r.Body).Decode(&args)
		if err != nil && err != io.EOF {
			a.jsonError(w, "Expecting a JSON array of arguments", http.StatusBadRequest)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), a.timeout)
		defer cancel()

		called := make(chan []interface{}, 1)
		hasCallback := false

		if i, ok := network.CallbackArg(name); ok {
			for len(args) <= i {
				args = append(args, nil)
			}

			// a value sent by the client is kept so the adapter rejects it
			if args[i] == nil {
				hasCallback = true
				args[i] = network.Callback(func(values ...interface{}) {
					select {
					case called <- values:
					default:
					}
				})
			}
		}

		var result interface{}
		var invokeErr error

		err = a.loop.Do(ctx, func() {
			result, invokeErr = a.wifi.Invoke(name, args...)
		})
		if err != nil {
			a.log.Errorf("Could not run %v: %v", name, err)
			a.jsonError(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		if invokeErr != nil {
			a.jsonError(w, invokeErr.Error(), errorCode(invokeErr))
			return
		}

		res := &postWifiMethodResponse{
			Result: result,
		}

		if hasCallback && (name == "scan" || r.URL.Query().Get("wait") == "true") {
			select {
			case res.Callback = <-called:
			case <-ctx.Done():
				a.jsonError(w, "Timed out waiting for "+name+" to complete", http.StatusGatewayTimeout)
				return
			}

			if res.Callback == nil {
				res.Callback = []interface{}{}
			}
		}

		a.jsonResponse(w, res, http.StatusOK)
	}
}

func errorCode(err error) int {
	if _, ok := err.(*network.ArgumentError); ok {
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, network.ErrScanInProgress):
		return http.StatusConflict
	case errors.Is(err, network.ErrUnknownMethod):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
