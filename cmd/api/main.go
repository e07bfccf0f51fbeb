package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/mohamedkhairy/stock-cruncher/internal/alert"
	"github.com/mohamedkhairy/stock-cruncher/internal/api"
	"github.com/mohamedkhairy/stock-cruncher/internal/config"
	"github.com/mohamedkhairy/stock-cruncher/internal/indicator"
	"github.com/mohamedkhairy/stock-cruncher/pkg/logger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.Environment); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting indicator API service",
		logger.Int("port", cfg.API.Port),
		logger.Int("workers", cfg.Batch.Workers),
		logger.Int("max_series", cfg.API.MaxSeries),
		logger.Strings("sinks", cfg.Alert.Sinks),
	)

	// Resubmissions under the same X-Run-ID are delivered once
	dedupe := alert.NewDeduplicator(cfg.Alert.DedupeKeys)
	delivery, err := alert.NewDelivery(cfg, cfg.Alert.Sinks, alert.WithDeduplicator(dedupe))
	if err != nil {
		logger.Fatal("Failed to initialize alert delivery",
			logger.ErrorField(err),
		)
	}
	defer delivery.Close()

	engine := indicator.NewEngine(indicator.EngineConfig{Workers: cfg.Batch.Workers}, delivery.Dispatcher)
	indicatorHandler := api.NewIndicatorHandler(engine, cfg.API.MaxSeries)

	router := mux.NewRouter()
	v1 := router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/indicators", indicatorHandler.Compute).Methods("POST")

	// Alert history needs the postgres sink
	if delivery.Store != nil {
		alertHandler := api.NewAlertHandler(delivery.Store)
		v1.HandleFunc("/alerts", alertHandler.ListAlerts).Methods("GET")
		v1.HandleFunc("/alerts/{id}", alertHandler.GetAlert).Methods("GET")
	}

	// Health check endpoints
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"workers": engine.Workers(),
			"sinks":   delivery.Dispatcher.SinkNames(),
		})
	})

	router.HandleFunc("/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
	})

	// Metrics endpoint
	router.Handle("/metrics", promhttp.Handler())

	handler := api.ServerMiddleware(cfg.API.RateLimit)(router)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.API.Port),
		Handler:      handler,
		ReadTimeout:  cfg.API.ReadTimeout,
		WriteTimeout: cfg.API.WriteTimeout,
	}

	go func() {
		logger.Info("Starting HTTP server",
			logger.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start HTTP server",
				logger.ErrorField(err),
			)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutting down indicator API service")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Error shutting down HTTP server",
			logger.ErrorField(err),
		)
	}

	logger.Info("Indicator API service stopped")
}
