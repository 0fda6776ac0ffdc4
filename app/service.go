// Package app assembles the dispatch service from configuration: store,
// oracle stack, metrics, notifier, core facade and the HTTP boundary.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	apidispatch "github.com/kopong25/freightquick/api/dispatch"
	"github.com/kopong25/freightquick/config"
	coredispatch "github.com/kopong25/freightquick/core/dispatch"
	"github.com/kopong25/freightquick/core/ledger"
	"github.com/kopong25/freightquick/core/match"
	corenotify "github.com/kopong25/freightquick/core/notify"
	coreoracle "github.com/kopong25/freightquick/core/oracle"
	"github.com/kopong25/freightquick/core/route"
	corestore "github.com/kopong25/freightquick/core/store"
	"github.com/kopong25/freightquick/infra/logger"
	"github.com/kopong25/freightquick/infra/metrics"
	"github.com/kopong25/freightquick/infra/mqtt"
	"github.com/kopong25/freightquick/infra/oracle"
	"github.com/kopong25/freightquick/infra/store"
	"github.com/kopong25/freightquick/internal/eventbus"
)

// Service owns the assembled dispatch stack and its HTTP server.
type Service struct {
	Facade   *coredispatch.Facade
	Bus      *eventbus.Bus
	handler  http.Handler
	addr     string
	promAddr string
	log      logger.Logger
	closers  []io.Closer
}

// New builds a Service from the configuration. The returned service is not
// running yet; call Run.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	records, err := buildStore(ctx, cfg.Store, logg)
	if err != nil {
		return nil, fmt.Errorf("record store: %w", err)
	}

	distOracle, oracleCloser, err := buildOracle(cfg.Oracle, logg)
	if err != nil {
		return nil, fmt.Errorf("distance oracle: %w", err)
	}

	sink, err := metrics.NewSink(cfg.Metrics, logg)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var notifier corenotify.Publisher
	if cfg.MQTT.Enabled {
		n, err := mqtt.NewNotifier(cfg.MQTT.Config)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = n
	}

	led, err := ledger.New(cfg.Dispatch.Match.TourCap, logg)
	if err != nil {
		return nil, err
	}
	scorer, err := match.NewScorer(cfg.Dispatch.Match, distOracle, logg)
	if err != nil {
		return nil, err
	}
	builder, err := route.NewBuilder(cfg.Dispatch.Route, logg)
	if err != nil {
		return nil, err
	}

	bus := eventbus.New()
	facade, err := coredispatch.New(led, scorer, builder, distOracle, records, notifier, sink, bus, logg)
	if err != nil {
		return nil, err
	}
	if err := facade.SyncFromStore(ctx); err != nil {
		return nil, fmt.Errorf("hydrate ledger: %w", err)
	}

	var listener *mqtt.PositionListener
	if cfg.MQTT.Enabled {
		listener, err = mqtt.NewPositionListener(cfg.MQTT.Config,
			func(ctx context.Context, driverID string, report mqtt.PositionReport) error {
				return facade.UpdateDriverPosition(ctx, driverID, report.Location(), report.DutyHoursLeft)
			})
		if err != nil {
			return nil, fmt.Errorf("position listener: %w", err)
		}
	}

	svc := &Service{
		Facade:  facade,
		Bus:     bus,
		handler: apidispatch.NewMux(facade, cfg.Server.Token, logg),
		addr:    cfg.Server.Addr,
		log:     logg,
		closers: []io.Closer{records},
	}
	if oracleCloser != nil {
		svc.closers = append(svc.closers, oracleCloser)
	}
	if notifier != nil {
		svc.closers = append(svc.closers, notifier)
	}
	if listener != nil {
		svc.closers = append(svc.closers, listener)
	}
	if c, ok := sink.(io.Closer); ok {
		svc.closers = append(svc.closers, c)
	}
	for _, name := range cfg.Metrics.Sinks {
		if name == "prometheus" {
			svc.promAddr = fmt.Sprintf(":%d", cfg.Metrics.PrometheusPort)
		}
	}
	return svc, nil
}

// Handler exposes the HTTP boundary, mainly for tests.
func (s *Service) Handler() http.Handler { return s.handler }

// Run serves the API and blocks until the context is cancelled or the
// server fails.
func (s *Service) Run(ctx context.Context) error {
	if s.promAddr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promAddr, s.log); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.addr, Handler: s.handler}
	errc := make(chan error, 1)
	go func() {
		s.log.Infof("dispatch API listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Bus.Close()
	var errs []error
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func buildStore(ctx context.Context, cfg config.StoreConfig, log logger.Logger) (corestore.RecordStore, error) {
	switch cfg.Backend {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Postgres, log)
	default:
		m := store.NewMemory()
		if cfg.Seed {
			store.SeedFleet(m, time.Now())
			log.Infof("seeded development fleet")
		}
		return m, nil
	}
}

// buildOracle stacks the configured base oracle with the optional Redis leg
// cache. The matrix provider always falls back to haversine for lanes it
// does not know.
func buildOracle(cfg config.OracleConfig, log logger.Logger) (coreoracle.DistanceOracle, io.Closer, error) {
	var base coreoracle.DistanceOracle = oracle.NewHaversine(cfg.Haversine)
	if cfg.Provider == "matrix" {
		base = oracle.NewMatrix(cfg.Legs, base)
	}
	if !cfg.Cache.Enabled {
		return base, nil, nil
	}
	cache, err := oracle.NewCache(cfg.Cache.CacheConfig, base, log)
	if err != nil {
		return nil, nil, err
	}
	return cache, cache, nil
}
