// Package app wires the configured components into a running service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/kilianp07/ctr/api"
	"github.com/kilianp07/ctr/config"
	"github.com/kilianp07/ctr/core/aggregate"
	"github.com/kilianp07/ctr/core/audit"
	"github.com/kilianp07/ctr/core/events"
	coremetrics "github.com/kilianp07/ctr/core/metrics"
	coremon "github.com/kilianp07/ctr/core/monitoring"
	coremqtt "github.com/kilianp07/ctr/core/mqtt"
	"github.com/kilianp07/ctr/core/report"
	"github.com/kilianp07/ctr/infra/dataset"
	"github.com/kilianp07/ctr/infra/logger"
	"github.com/kilianp07/ctr/infra/metrics"
	"github.com/kilianp07/ctr/infra/monitoring"
	"github.com/kilianp07/ctr/infra/mqtt"
	"github.com/kilianp07/ctr/internal/eventbus"
	"github.com/kilianp07/ctr/jobs/snapshot"
)

// MQTT commands understood on the command topic.
const (
	CommandPublish  = "publish"
	CommandBackfill = "backfill"
	CommandRefresh  = "refresh"
)

// Service orchestrates the report engine, its observability sinks and the
// HTTP API.
type Service struct {
	Engine   *report.Engine
	Source   *dataset.CachedSource
	Store    audit.Store
	Sink     coremetrics.MetricsSink
	Snapshot *snapshot.Job

	cfg      *config.Config
	bus      *eventbus.Bus
	log      logger.Logger
	mqtt     *mqtt.PahoClient
	commands chan string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	bus := eventbus.New()
	src, err := dataset.Open(cfg.Dataset, bus)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	store, err := audit.Open(cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}
	engine, err := report.NewEngine(src, cfg.Summary,
		report.WithAudit(store), report.WithBus(bus), report.WithLogger(logger.New("report")))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	svc := &Service{
		Engine:   engine,
		Source:   src,
		Store:    store,
		cfg:      cfg,
		bus:      bus,
		log:      logg,
		commands: make(chan string, 1),
	}
	if cfg.MQTT.Broker != "" {
		client, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		client.OnCommand(svc.handleCommand)
		svc.mqtt = client
		sink = coremetrics.NewMultiSink(sink, metrics.NewMQTTSink(client, cfg.MQTT.TopicPrefix))
	}
	svc.Sink = sink
	// Reports reach the sinks through the event collector.
	svc.Snapshot = snapshot.New(engine, nil, aggregate.Selection{}, time.Duration(cfg.Snapshot.Timeout())*time.Second)
	return svc, nil
}

// Run starts the service and blocks until the context is cancelled or the
// API server fails.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.Sink)
	eventbus.Listen(ctx, s.bus, eventbus.On(s.logDatasetLoad))
	if addr := s.cfg.Metrics.PromAddr(); addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if _, err := s.Source.Load(ctx); err != nil {
		s.log.Warnf("initial dataset load: %v", err)
	}
	if s.cfg.Snapshot.Enabled {
		go s.Snapshot.Run(ctx, time.Duration(s.cfg.Snapshot.Interval())*time.Second, s.commands)
	}
	h := api.NewRouter(s.Engine, api.Options{
		Token:        s.cfg.API.Token,
		CORSOrigins:  s.cfg.API.CORSOrigins,
		RankingLimit: s.cfg.API.DefaultRankingLimit,
		Bus:          s.bus,
		Log:          logger.New("api"),
	})
	return api.Serve(ctx, s.cfg.API.Addr, h, time.Duration(s.cfg.API.ReadTimeoutSeconds)*time.Second, s.log)
}

func (s *Service) handleCommand(cmd coremqtt.Command) {
	switch cmd.Name {
	case CommandPublish:
		select {
		case s.commands <- report.TriggerMQTT:
		default:
			s.log.Warnf("publish already pending")
		}
	case CommandBackfill:
		go func() {
			defer coremon.Recover()
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.cfg.Snapshot.Timeout())*time.Second)
			defer cancel()
			n, err := s.Snapshot.Backfill(ctx)
			if err != nil {
				s.log.Errorf("backfill: %v", err)
				return
			}
			s.log.Infof("backfilled %d cycles", n)
		}()
	case CommandRefresh:
		s.Source.Invalidate()
		s.log.Infof("dataset cache invalidated")
	default:
		s.log.Warnf("unknown command %s", cmd.Name)
	}
}

func (s *Service) logDatasetLoad(ev events.DatasetEvent) {
	if ev.Err != nil {
		s.log.Errorf("dataset %s: %v", ev.Source, ev.Err)
		return
	}
	s.log.Infof("dataset %s loaded: %d records, %d issues in %s", ev.Source, ev.Records, ev.Issues, ev.Duration)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	s.bus.Close()
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("event bus dropped %d deliveries", n)
	}
	coremon.Flush(2 * time.Second)
	var errs []error
	switch c := s.Sink.(type) {
	case io.Closer:
		errs = append(errs, c.Close())
	case interface{ Close() }:
		c.Close()
	}
	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("audit store: %w", err))
	}
	return errors.Join(errs...)
}
