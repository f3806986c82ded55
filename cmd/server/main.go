// main wires high-level dependencies, exposes the HTTP router, and runs the
// drain worker. Business logic lives in the internal services packages.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"multa-gateway/internal/folio"
	httpapi "multa-gateway/internal/http"
	"multa-gateway/internal/platform/config"
	"multa-gateway/internal/platform/httpserver"
	"multa-gateway/internal/platform/logger"
	"multa-gateway/internal/platform/metrics"
	"multa-gateway/internal/queue"
	"multa-gateway/internal/queue/store/boltstore"
	queueMemory "multa-gateway/internal/queue/store/memory"
	"multa-gateway/internal/treasury"
	"multa-gateway/internal/violation/backend"
	violationHandler "multa-gateway/internal/violation/handler"
	violationService "multa-gateway/internal/violation/service"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var queueStore queue.Store
	if cfg.QueueDBPath != "" {
		bs, err := boltstore.Open(cfg.QueueDBPath)
		if err != nil {
			log.Error("could not open queue db", "path", cfg.QueueDBPath, "error", err)
			os.Exit(1)
		}
		defer bs.Close()
		queueStore = bs
	} else {
		log.Warn("QUEUE_DB_PATH empty, queued violations will not survive restarts")
		queueStore = queueMemory.New()
	}

	// Items stranded in_flight by a previous crash go back to pending before
	// anything else can drain.
	if recovered, err := queueStore.RecoverInFlight(ctx); err != nil {
		log.Error("in-flight recovery failed", "error", err)
		os.Exit(1)
	} else if recovered > 0 {
		log.Info("recovered in-flight queue items", "count", recovered)
	}

	treasuryClient := treasury.NewClient(cfg.TreasuryBaseURL, cfg.TreasuryTimeout)
	issuer, err := treasury.NewIssuer(treasuryClient,
		treasury.WithLogger(log),
		treasury.WithMetrics(m),
	)
	if err != nil {
		log.Error("issuer init failed", "error", err)
		os.Exit(1)
	}

	backendClient := backend.New(cfg.BackendBaseURL, cfg.SubmitTimeout)

	queueSvc, err := queue.New(queueStore, backendClient, issuer,
		queue.WithLogger(log),
		queue.WithMetrics(m),
		queue.WithMaxAttempts(cfg.MaxAttempts),
		queue.WithSubmitTimeout(cfg.SubmitTimeout),
	)
	if err != nil {
		log.Error("queue init failed", "error", err)
		os.Exit(1)
	}

	finalizeSvc, err := violationService.New(
		folio.New(folio.DefaultCatalog()),
		issuer,
		queueSvc,
		backendClient,
		violationService.WithLogger(log),
		violationService.WithMetrics(m),
	)
	if err != nil {
		log.Error("finalize service init failed", "error", err)
		os.Exit(1)
	}

	handler := violationHandler.New(finalizeSvc, queueSvc, treasuryClient, log)
	srv := httpserver.New(cfg.Addr, httpapi.NewRouter(handler, log))
	worker := queue.NewWorker(queueSvc, backendClient, cfg.DrainInterval, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting multa-gateway", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		err := worker.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("multa-gateway exited", "error", err)
		os.Exit(1)
	}
}
