package api

import (
	"net/http"

	"github.com/the-lightning-land/wifid/connectivity"
)

type getStatusResponse struct {
	State string `json:"state"`
}

func (a *Api) handleGetStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := connectivity.Offline
		if a.reporter != nil {
			state = a.reporter.CurrentState()
		}

		a.jsonResponse(w, &getStatusResponse{
			State: state.String(),
		}, http.StatusOK)
	}
}
