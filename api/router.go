// Package api serves the reconciled occupancy data as read-only JSON.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/theoremus-urban-solutions/library-occupancy/accuracy"
	"github.com/theoremus-urban-solutions/library-occupancy/formatter"
	"github.com/theoremus-urban-solutions/library-occupancy/livefeed"
	"github.com/theoremus-urban-solutions/library-occupancy/metrics"
	"github.com/theoremus-urban-solutions/library-occupancy/reconcile"
)

// LiveStatus reports the live feed state, normally a *livefeed.Client
type LiveStatus interface {
	Status() livefeed.Status
}

// Deps are the collaborators behind the handlers. Live and Metrics may be nil.
type Deps struct {
	Engine   *reconcile.Engine
	Reporter *accuracy.Reporter
	Live     LiveStatus
	Metrics  *metrics.Metrics
	Logger   *slog.Logger
}

type handler struct {
	Deps
	rb     *formatter.ResponseBuilder
	logger *slog.Logger
}

// NewRouter wires every route
func NewRouter(d Deps) *mux.Router {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Reporter == nil {
		d.Reporter = accuracy.NewReporter(d.Engine)
	}
	h := &handler{
		Deps:   d,
		rb:     formatter.NewResponseBuilder(d.Engine.Now),
		logger: d.Logger.With("component", "api"),
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/health", h.handleHealth).Methods("GET")
	r.HandleFunc("/api/occupancy", h.handleOccupancy).Methods("GET")
	r.HandleFunc("/api/occupancy/{area}/series", h.handleSeries).Methods("GET")
	r.HandleFunc("/api/accuracy", h.handleAccuracy).Methods("GET")
	r.HandleFunc("/api/comparison", h.handleComparison).Methods("GET")
	r.Handle("/metrics", d.Metrics.Handler()).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		h.rb.Write(w, http.StatusNotFound, h.rb.BuildError("not found"))
	})
	return r
}

func (h *handler) liveStatus() livefeed.Status {
	if h.Live == nil {
		return livefeed.Status{}
	}
	return h.Live.Status()
}

func (h *handler) badRequest(w http.ResponseWriter, err error) {
	h.rb.Write(w, http.StatusBadRequest, h.rb.BuildError(err.Error()))
}
