package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ridepool/pkg/api/handlers"
	"ridepool/pkg/lifecycle"
)

// NewRouter builds the HTTP routing table. All business endpoints are thin
// mappings onto the store and lifecycle packages.
func NewRouter(sw *lifecycle.Sweeper) *mux.Router {
	r := mux.NewRouter()

	// Liveness probe used by deployment systems and CI.
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)

	handlers.RegisterProfiles(r)
	handlers.RegisterChats(r, sw)
	handlers.RegisterMessages(r)

	r.Handle("/metrics", promhttp.Handler())
	return r
}
