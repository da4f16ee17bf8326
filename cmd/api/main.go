package main

import (
	"context"
	"log"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	_ "time/tzdata"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/app"
	httpapi "github.com/clemsonMakerspace/unified-makerspace-sub003/internal/http"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/metrics"
)

func main() {
	ctx := context.Background()

	cfg, logger, svc, err := app.Load(ctx)
	if err != nil {
		log.Fatalf("api: init: %v", err)
	}
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	metrics.MustRegister(reg)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))

	httpapi.RegisterRoutes(r, &httpapi.App{
		Addresses:  svc.Addresses,
		Identities: svc.Email,
		Reports:    svc.Notifier,
		Logger:     logger.Named("api"),
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := httpapi.NewServer(cfg.HTTPAddr, r)

	logger.Info("API listening", zap.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal("api: serve", zap.Error(err))
	}
}
