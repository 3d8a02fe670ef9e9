package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rohan4324/Furever-App-sub000/internal/config"
	"github.com/rohan4324/Furever-App-sub000/internal/logging"
	"github.com/rohan4324/Furever-App-sub000/internal/server"
	"github.com/rohan4324/Furever-App-sub000/internal/signaling"
)

func main() {
	logger := logging.New()
	defer logger.Sync()

	cfg, err := config.Load(config.Options{})
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	hub := signaling.NewHub(logger, signaling.NewMetrics(registry))
	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HealthHandler(hub))
	mux.HandleFunc("/ws", server.ServeWs(hub, cfg.AllowedOrigins, logger))
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	logger.Info("starting signaling server",
		zap.String("addr", cfg.ListenAddr),
		zap.Strings("allowed_origins", cfg.AllowedOrigins))

	if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
