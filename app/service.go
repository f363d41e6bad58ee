package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apicontrol "github.com/kilianp07/dualportal/api/control"
	"github.com/kilianp07/dualportal/api/stream"
	"github.com/kilianp07/dualportal/config"
	"github.com/kilianp07/dualportal/core/control"
	coremetrics "github.com/kilianp07/dualportal/core/metrics"
	"github.com/kilianp07/dualportal/core/model"
	"github.com/kilianp07/dualportal/infra/engine"
	"github.com/kilianp07/dualportal/infra/logger"
	"github.com/kilianp07/dualportal/infra/metrics"
	"github.com/kilianp07/dualportal/infra/mqtt"
	"github.com/kilianp07/dualportal/internal/eventbus"
)

// Service wires the orchestrator, the REST handler, the push channel and
// the telemetry sinks.
type Service struct {
	Orchestrator *control.Orchestrator

	cfg       *config.Config
	bus       *eventbus.Bus[model.SimulationSnapshot]
	hub       *stream.Hub
	mux       *http.ServeMux
	publisher *mqtt.SnapshotPublisher
	log       logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken,
			cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New[model.SimulationSnapshot]()
	orch := control.New(
		engine.NewResonance(cfg.Engine),
		bus,
		sink,
		logger.New("control"),
		control.Options{
			DetuneDefault: cfg.Control.DetuneDefault,
			ScanTimeout:   time.Duration(cfg.Control.ScanTimeoutSeconds) * time.Second,
			LockPolicy:    control.DefaultLockPolicy{AllowEmptyPayload: cfg.Control.AllowEmptyPayload},
		},
	)

	hub := stream.NewHub(bus, orch, logger.New("stream"))
	mux := http.NewServeMux()
	apicontrol.NewHandler(orch, logger.New("api")).Register(mux)
	mux.Handle("/ws", hub)

	svc := &Service{Orchestrator: orch, cfg: cfg, bus: bus, hub: hub, mux: mux, log: logg}
	if cfg.MQTT.Enabled {
		pub, err := mqtt.NewSnapshotPublisher(cfg.MQTT, logger.New("mqtt-export"))
		if err != nil {
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
	}
	return svc, nil
}

// Handler exposes the HTTP mux, mainly for tests.
func (s *Service) Handler() http.Handler { return s.mux }

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.hub.Run(ctx)
	if s.publisher != nil {
		s.publisher.Start(ctx, s.bus)
	}
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.HTTP.Addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(s.cfg.HTTP.ShutdownSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("http shutdown: %v", err)
		}
	}()
	s.log.Infof("serving dashboard API on %s", s.cfg.HTTP.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.publisher != nil {
		s.publisher.Close()
	}
	s.bus.Close()
	return nil
}
