// Package metrics exposes Prometheus counters for the poll loop and an
// optional HTTP scrape endpoint.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Ticks counts completed poll ticks, including ones skipped on a
	// transport error.
	Ticks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lyrad_poll_ticks_total",
		Help: "Poll scheduler ticks executed.",
	})

	// TransportErrors counts failed register reads by register.
	TransportErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lyrad_transport_errors_total",
		Help: "Register reads that failed at the bus level.",
	}, []string{"register"})

	// KeyEvents counts decoded FIFO entries forwarded to the resolver.
	KeyEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lyrad_key_events_total",
		Help: "FIFO key events forwarded to the keymap resolver.",
	}, []string{"type"})

	// DroppedEvents counts FIFO entries dropped before resolution.
	DroppedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lyrad_dropped_events_total",
		Help: "FIFO entries dropped by the decoder or resolver.",
	}, []string{"reason"})

	// FifoOverflows counts hardware queue overflow reports.
	FifoOverflows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lyrad_fifo_overflows_total",
		Help: "FIFO overflow conditions reported by the peripheral.",
	})

	// MotionEvents counts emitted relative motion events by axis.
	MotionEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lyrad_motion_events_total",
		Help: "Relative pointer motion events emitted.",
	}, []string{"axis"})

	// PowerToggles counts power button state transitions.
	PowerToggles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lyrad_power_toggles_total",
		Help: "Power button press/release transitions emitted.",
	})
)

// Drop reasons.
const (
	ReasonHold        = "hold"
	ReasonBadKeycode  = "bad_keycode"
	ReasonUnknownType = "unknown_type"
)

// Server serves the Prometheus scrape endpoint.
type Server struct {
	srv *http.Server
	log *slog.Logger
}

// NewServer creates a scrape endpoint on addr, serving /metrics.
func NewServer(addr string, log *slog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Start serves in the background until Stop is called.
func (s *Server) Start() {
	go func() {
		s.log.Info("metrics endpoint listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("metrics endpoint failed", "error", err)
		}
	}()
}

// Stop shuts the endpoint down, waiting for in-flight scrapes.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
