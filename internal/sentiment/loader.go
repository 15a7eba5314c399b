package sentiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/config"
	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
)

const (
	MAX_DOWNLOAD_RETRIES = 5
	INITIAL_BACKOFF      = 1 * time.Second
	MAX_BACKOFF          = 32 * time.Second
)

// Registry holds the classifiers loaded for the process, in registration order.
type Registry struct {
	classifiers []Classifier
	closers     []func() error
}

func NewRegistry(classifiers ...Classifier) *Registry {
	return &Registry{classifiers: classifiers}
}

func (r *Registry) Classifiers() []Classifier {
	return append([]Classifier(nil), r.classifiers...)
}

func (r *Registry) Infos() []models.ModelInfo {
	infos := make([]models.ModelInfo, len(r.classifiers))
	for i, c := range r.classifiers {
		infos[i] = c.Info()
	}
	return infos
}

func (r *Registry) Close() error {
	var errs []error
	for _, closeFn := range r.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// Load constructs every enabled classifier. Any failure is fatal: the caller
// gets no registry and must not serve analyses.
func Load(ctx context.Context, cfg config.ModelSettings) (*Registry, error) {
	registry := &Registry{}
	fail := func(err error) (*Registry, error) {
		registry.Close()
		return nil, err
	}

	var vectorizer *TFIDFVectorizer
	if cfg.NaiveBayes.Enabled || cfg.LinearSVM.Enabled {
		v, err := LoadVectorizer(cfg.Vectorizer)
		if err != nil {
			return fail(fmt.Errorf("[ModelLoader] vectorizer: %w", err))
		}
		vectorizer = v
	}

	if cfg.NaiveBayes.Enabled {
		labels, err := labelMapOrIdentity(cfg.NaiveBayes.Labels)
		if err != nil {
			return fail(fmt.Errorf("[ModelLoader] naive bayes: %w", err))
		}
		nb, err := LoadNaiveBayes(cfg.NaiveBayes.Path, vectorizer, labels)
		if err != nil {
			return fail(fmt.Errorf("[ModelLoader] naive bayes: %w", err))
		}
		registry.classifiers = append(registry.classifiers, nb)
		slog.Info("[ModelLoader] Loaded naive bayes model", slog.String("path", cfg.NaiveBayes.Path))
	}

	if cfg.LinearSVM.Enabled {
		labels, err := labelMapOrIdentity(cfg.LinearSVM.Labels)
		if err != nil {
			return fail(fmt.Errorf("[ModelLoader] linear svm: %w", err))
		}
		svm, err := LoadLinearSVM(cfg.LinearSVM.Path, vectorizer, labels)
		if err != nil {
			return fail(fmt.Errorf("[ModelLoader] linear svm: %w", err))
		}
		registry.classifiers = append(registry.classifiers, svm)
		slog.Info("[ModelLoader] Loaded linear svm model", slog.String("path", cfg.LinearSVM.Path))
	}

	if cfg.Transformer.Enabled {
		labels, err := labelMapOrIdentity(cfg.Transformer.Labels)
		if err != nil {
			return fail(fmt.Errorf("[ModelLoader] transformer: %w", err))
		}
		modelDir, err := ensureTransformerModel(ctx, cfg.Transformer)
		if err != nil {
			return fail(fmt.Errorf("[ModelLoader] transformer: %w", err))
		}
		t, err := OpenTransformer(modelDir, labels)
		if err != nil {
			return fail(fmt.Errorf("[ModelLoader] transformer: %w", err))
		}
		registry.classifiers = append(registry.classifiers, t)
		registry.closers = append(registry.closers, t.Close)
		slog.Info("[ModelLoader] Loaded transformer model", slog.String("path", modelDir))
	}

	if cfg.Vader.Enabled {
		v, err := NewVader(cfg.Vader.PositiveThreshold, cfg.Vader.NegativeThreshold)
		if err != nil {
			return fail(fmt.Errorf("[ModelLoader] vader: %w", err))
		}
		registry.classifiers = append(registry.classifiers, v)
		slog.Info("[ModelLoader] Loaded vader lexicon")
	}

	if len(registry.classifiers) == 0 {
		return fail(fmt.Errorf("[ModelLoader] %w: no classifiers enabled", models.ErrConfiguration))
	}
	return registry, nil
}

// ensureTransformerModel returns a directory holding the exported model,
// downloading it from the hub when the configured path is empty.
func ensureTransformerModel(ctx context.Context, cfg config.TransformerSettings) (string, error) {
	if _, err := os.Stat(filepath.Join(cfg.Path, "config.json")); err == nil {
		slog.Info("[ModelLoader] Using existing transformer model", slog.String("path", cfg.Path))
		return cfg.Path, nil
	}
	if cfg.Repo == "" {
		return "", fmt.Errorf("%w: no model at %s and no repo to download from", models.ErrModelUnavailable, cfg.Path)
	}

	downloadDir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(downloadDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("%w: failed to create model directory: %v", models.ErrModelUnavailable, err)
	}

	slog.Info("[ModelLoader] Model not found, downloading...", slog.String("repo", cfg.Repo))
	var modelPath string
	err := retryWithBackoff(ctx, "transformer download", MAX_DOWNLOAD_RETRIES, INITIAL_BACKOFF, func() error {
		path, err := hugot.DownloadModel(cfg.Repo, downloadDir, hugot.NewDownloadOptions())
		if err != nil {
			return err
		}
		modelPath = path
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", models.ErrModelUnavailable, err)
	}

	slog.Info("[ModelLoader] Model downloaded successfully", slog.String("path", modelPath))
	return modelPath, nil
}

func retryWithBackoff(ctx context.Context, op string, attempts int, initial time.Duration, fn func() error) error {
	backoff := initial
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}

		slog.Warn("[ModelLoader] Attempt failed, retrying...",
			slog.String("operation", op),
			slog.Int("attempt", i+1),
			slog.Duration("backoff", backoff),
			slog.String("error", err.Error()))

		if i == attempts-1 {
			break
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > MAX_BACKOFF {
			backoff = MAX_BACKOFF
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, err)
}
