package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/analysis"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/clients"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/db"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/logging"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/sentiment"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/source"
	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	input      string
	format     string
	query      string
	output     string
	store      bool
	markdown   bool
}

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	if err := command().Execute(); err != nil {
		os.Exit(1)
	}
}

func command() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a sentiment analysis over a file of records",
		Long: `Classify every record with each enabled model, then print the
distributions, evaluation metrics and insights as one JSON document.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to sentiment.yaml")
	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "Records file (csv, json or jsonl)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "Input format, inferred from the extension when empty")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Query the records were collected for")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the result here instead of stdout")
	cmd.Flags().BoolVar(&opts.store, "store", false, "Persist the result to DynamoDB and Valkey")
	cmd.Flags().BoolVar(&opts.markdown, "markdown", false, "Flatten markdown in record text before analysis")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func run(ctx context.Context, opts *options) error {
	settings, err := config.Load(opts.configPath)
	if err != nil {
		slog.Error("[Analyze] Invalid configuration", slog.String("error", err.Error()))
		return err
	}
	logging.InitLogger(settings.Log.Level, settings.Log.AddSource)

	var format source.Format
	if opts.format != "" {
		if format, err = source.ParseFormat(opts.format); err != nil {
			return err
		}
	}
	records, err := source.Open(opts.input, format, source.Options{Markdown: opts.markdown})
	if err != nil {
		slog.Error("[Analyze] Failed to read records", slog.String("error", err.Error()))
		return err
	}

	registry, err := sentiment.Load(ctx, settings.Models)
	if err != nil {
		slog.Error("[Analyze] Failed to load models", slog.String("error", err.Error()))
		return err
	}
	defer registry.Close()

	service, err := analysis.Build(settings, registry.Classifiers(), nil)
	if err != nil {
		return err
	}

	result, err := service.Analyze(ctx, models.AnalysisRequest{Query: opts.query, Records: records})
	if err != nil {
		return err
	}

	if opts.store {
		if err := store(ctx, settings, result); err != nil {
			return err
		}
	}

	return write(opts.output, result)
}

func store(ctx context.Context, settings *config.Settings, result *models.AnalysisResult) error {
	dynamoClient, err := clients.NewDynamoDBClient(ctx, settings.Store)
	if err != nil {
		return err
	}
	resultStore := db.NewResultStore(dynamoClient, settings.Store.ResultsTable, settings.Store.RecordsTable, settings.Store.CacheTTL)
	if err := resultStore.Save(ctx, result); err != nil {
		return err
	}

	if settings.Store.ValkeyAddress == "" {
		return nil
	}
	cache, err := clients.NewValkeyClient(ctx, settings.Store)
	if err != nil {
		slog.Warn("[Analyze] Skipping result cache", slog.String("error", err.Error()))
		return nil
	}
	defer cache.Close()

	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return cache.CacheResult(ctx, result.ID, payload)
}

func write(path string, result *models.AnalysisResult) error {
	out := os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("[Analyze] failed to create %s: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("[Analyze] failed to write result: %w", err)
	}

	if path != "" {
		slog.Info("[Analyze] Result written",
			slog.String("analysis_id", result.ID),
			slog.String("path", path))
	}
	return nil
}
