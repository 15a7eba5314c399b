package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/analysis"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/clients"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/clients/kafka_client"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/consumers"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/db"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/logging"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/metrics"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/sentiment"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	settings, err := config.Load(os.Getenv("SENTIMENT_CONFIG_FILE"))
	if err != nil {
		slog.Error("[Worker] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(settings.Log.Level, settings.Log.AddSource)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, settings); err != nil {
		slog.Error("[Worker] Exiting", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, settings *config.Settings) error {
	registry, err := sentiment.Load(ctx, settings.Models)
	if err != nil {
		return err
	}
	defer registry.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	service, err := analysis.Build(settings, registry.Classifiers(), m)
	if err != nil {
		return err
	}

	dynamoClient, err := clients.NewDynamoDBClient(ctx, settings.Store)
	if err != nil {
		return err
	}

	kafkaCfg := kafka_client.NewKafkaConfig(settings.Kafka)
	producer, err := kafka_client.NewProducer(kafkaCfg)
	if err != nil {
		return err
	}
	defer producer.Close()

	consumer := &consumers.AnalysisConsumer{
		Analyzer:    service,
		Publisher:   producer,
		Store:       db.NewResultStore(dynamoClient, settings.Store.ResultsTable, settings.Store.RecordsTable, settings.Store.CacheTTL),
		ResultTopic: kafkaCfg.ResultTopic,
	}

	if settings.Store.ValkeyAddress != "" {
		tracker, err := clients.NewValkeyClient(ctx, settings.Store)
		if err != nil {
			return err
		}
		defer tracker.Close()
		consumer.Tracker = tracker
	}

	metricsServer := serveMetrics(settings.Metrics.Addr)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	kafka_client.RegisterConsumer(kafkaCfg.RequestTopic, consumer.Run)
	return kafka_client.StartConsumer(ctx, kafkaCfg)
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		slog.Info("[Worker] Serving metrics", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("[Worker] Metrics server failed", slog.String("error", err.Error()))
		}
	}()
	return server
}
