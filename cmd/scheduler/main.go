package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "time/tzdata"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/app"
	httpapi "github.com/clemsonMakerspace/unified-makerspace-sub003/internal/http"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/metrics"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/schedule"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, svc, err := app.Load(ctx)
	if err != nil {
		log.Fatalf("scheduler: init: %v", err)
	}
	defer logger.Sync()

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("scheduler: timezone", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.MustRegister(reg)

	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := httpapi.NewServer(cfg.MetricsAddr, r)

	go func() {
		logger.Info("scheduler: metrics listening", zap.String("addr", cfg.MetricsAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("scheduler: metrics server", zap.Error(err))
		}
	}()

	sched, err := schedule.New(loc, logger)
	if err != nil {
		logger.Fatal("scheduler: init", zap.Error(err))
	}
	if err := sched.Add(ctx, "late-task-report", cfg.ScheduleCron, svc.Notifier.Run); err != nil {
		logger.Fatal("scheduler: add job", zap.Error(err))
	}
	sched.Start()
	logger.Info("scheduler: started", zap.String("cron", cfg.ScheduleCron), zap.String("timezone", loc.String()))

	<-ctx.Done()
	logger.Info("scheduler: shutting down")

	if err := sched.Stop(); err != nil {
		logger.Error("scheduler: stop", zap.Error(err))
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
