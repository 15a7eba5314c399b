package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mithunadhikari40/social-media-sentiment-analysis/internal/models"
	"github.com/spf13/viper"
)

const envPrefix = "SENTIMENT"

type Settings struct {
	Env        string             `mapstructure:"env"`
	Log        LogSettings        `mapstructure:"log"`
	Preprocess PreprocessSettings `mapstructure:"preprocess"`
	Models     ModelSettings      `mapstructure:"models"`
	Analysis   AnalysisSettings   `mapstructure:"analysis"`
	Kafka      KafkaSettings      `mapstructure:"kafka"`
	Store      StoreSettings      `mapstructure:"store"`
	Metrics    MetricsSettings    `mapstructure:"metrics"`
}

type LogSettings struct {
	Level     string `mapstructure:"level"`
	AddSource bool   `mapstructure:"add_source"`
}

type PreprocessSettings struct {
	Language       string   `mapstructure:"language"`
	ExtraStopWords []string `mapstructure:"extra_stopwords"`
	MinTokenLength int      `mapstructure:"min_token_length"`
}

type ModelSettings struct {
	Primary     string              `mapstructure:"primary"`
	Priority    []string            `mapstructure:"priority"`
	Vectorizer  string              `mapstructure:"vectorizer"`
	NaiveBayes  ClassifierSettings  `mapstructure:"naive_bayes"`
	LinearSVM   ClassifierSettings  `mapstructure:"linear_svm"`
	Transformer TransformerSettings `mapstructure:"transformer"`
	Vader       VaderSettings       `mapstructure:"vader"`
}

type ClassifierSettings struct {
	Enabled bool              `mapstructure:"enabled"`
	Path    string            `mapstructure:"path"`
	Labels  map[string]string `mapstructure:"labels"`
}

type TransformerSettings struct {
	Enabled bool              `mapstructure:"enabled"`
	Path    string            `mapstructure:"path"`
	Repo    string            `mapstructure:"repo"`
	Labels  map[string]string `mapstructure:"labels"`
}

type VaderSettings struct {
	Enabled           bool    `mapstructure:"enabled"`
	PositiveThreshold float64 `mapstructure:"positive_threshold"`
	NegativeThreshold float64 `mapstructure:"negative_threshold"`
}

type AnalysisSettings struct {
	Workers            int           `mapstructure:"workers"`
	Timeout            time.Duration `mapstructure:"timeout"`
	ImbalanceThreshold float64       `mapstructure:"imbalance_threshold"`
	RequireEvaluation  bool          `mapstructure:"require_evaluation"`
	SampleSize         int           `mapstructure:"sample_size"`
	TopTerms           int           `mapstructure:"top_terms"`
}

type KafkaSettings struct {
	Broker       string `mapstructure:"broker"`
	GroupID      string `mapstructure:"group_id"`
	RequestTopic string `mapstructure:"request_topic"`
	ResultTopic  string `mapstructure:"result_topic"`
}

type StoreSettings struct {
	AWSRegion      string        `mapstructure:"aws_region"`
	AWSEndpoint    string        `mapstructure:"aws_endpoint"`
	ResultsTable   string        `mapstructure:"results_table"`
	RecordsTable   string        `mapstructure:"records_table"`
	ValkeyAddress  string        `mapstructure:"valkey_address"`
	ValkeyPassword string        `mapstructure:"valkey_password"`
	ValkeyTLS      bool          `mapstructure:"valkey_tls"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
}

type MetricsSettings struct {
	Addr string `mapstructure:"addr"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.add_source", true)

	v.SetDefault("preprocess.language", "en")
	v.SetDefault("preprocess.extra_stopwords", []string{})
	v.SetDefault("preprocess.min_token_length", 0)

	v.SetDefault("models.primary", "transformer")
	v.SetDefault("models.priority", []string{"transformer", "linear_svm", "naive_bayes", "vader"})
	v.SetDefault("models.vectorizer", "models/tfidf_vectorizer.json")
	v.SetDefault("models.naive_bayes.enabled", true)
	v.SetDefault("models.naive_bayes.path", "models/naive_bayes.json")
	v.SetDefault("models.linear_svm.enabled", true)
	v.SetDefault("models.linear_svm.path", "models/linear_svm.json")
	v.SetDefault("models.transformer.enabled", true)
	v.SetDefault("models.transformer.path", "models/transformer")
	v.SetDefault("models.transformer.repo", "cardiffnlp/twitter-roberta-base-sentiment")
	v.SetDefault("models.transformer.labels", map[string]string{
		"label_0":  "negative",
		"label_1":  "neutral",
		"label_2":  "positive",
		"negative": "negative",
		"neutral":  "neutral",
		"positive": "positive",
	})
	v.SetDefault("models.vader.enabled", false)
	v.SetDefault("models.vader.positive_threshold", 0.20)
	v.SetDefault("models.vader.negative_threshold", -0.20)

	v.SetDefault("analysis.workers", 8)
	v.SetDefault("analysis.timeout", 2*time.Minute)
	v.SetDefault("analysis.imbalance_threshold", 0.2)
	v.SetDefault("analysis.require_evaluation", false)
	v.SetDefault("analysis.sample_size", 3)
	v.SetDefault("analysis.top_terms", 20)

	v.SetDefault("kafka.broker", "localhost:29092")
	v.SetDefault("kafka.group_id", "sentiment-analysis-group")
	v.SetDefault("kafka.request_topic", "analysis-requests")
	v.SetDefault("kafka.result_topic", "analysis-results")

	v.SetDefault("store.aws_region", "us-west-2")
	v.SetDefault("store.aws_endpoint", "http://localhost:8000")
	v.SetDefault("store.results_table", "Analyses")
	v.SetDefault("store.records_table", "AnalysisRecords")
	v.SetDefault("store.valkey_address", "localhost:6379")
	v.SetDefault("store.valkey_password", "")
	v.SetDefault("store.valkey_tls", false)
	v.SetDefault("store.cache_ttl", 24*time.Hour)

	v.SetDefault("metrics.addr", ":9102")
}

// Load builds Settings from defaults, an optional YAML file and SENTIMENT_*
// environment variables, in increasing order of precedence. An empty path
// searches for sentiment.yaml in ./config and the working directory.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sentiment")
		v.SetConfigType("yaml")
		v.AddConfigPath("config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("[Config] failed to read config file: %w", err)
		}
		slog.Info("[Config] No config file found, using defaults and environment")
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("[Config] failed to decode settings: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// EnabledModels lists enabled classifier ids in registration order.
func (m ModelSettings) EnabledModels() []string {
	var enabled []string
	if m.NaiveBayes.Enabled {
		enabled = append(enabled, "naive_bayes")
	}
	if m.LinearSVM.Enabled {
		enabled = append(enabled, "linear_svm")
	}
	if m.Transformer.Enabled {
		enabled = append(enabled, "transformer")
	}
	if m.Vader.Enabled {
		enabled = append(enabled, "vader")
	}
	return enabled
}

// EnabledPriority returns the priority order restricted to enabled models.
func (m ModelSettings) EnabledPriority() []string {
	enabled := make(map[string]bool)
	for _, id := range m.EnabledModels() {
		enabled[id] = true
	}

	var order []string
	for _, id := range m.Priority {
		if enabled[id] {
			order = append(order, id)
		}
	}
	return order
}

func (s *Settings) Validate() error {
	if s.Analysis.Workers < 1 {
		return configError("analysis.workers must be at least 1, got %d", s.Analysis.Workers)
	}
	if s.Analysis.Timeout <= 0 {
		return configError("analysis.timeout must be positive, got %s", s.Analysis.Timeout)
	}
	if s.Analysis.ImbalanceThreshold <= 0 || s.Analysis.ImbalanceThreshold >= 1 {
		return configError("analysis.imbalance_threshold must be in (0, 1), got %v", s.Analysis.ImbalanceThreshold)
	}
	if s.Analysis.SampleSize < 0 {
		return configError("analysis.sample_size must not be negative, got %d", s.Analysis.SampleSize)
	}
	if s.Analysis.TopTerms < 0 {
		return configError("analysis.top_terms must not be negative, got %d", s.Analysis.TopTerms)
	}

	vader := s.Models.Vader
	if vader.Enabled && (vader.NegativeThreshold < -1 || vader.PositiveThreshold > 1 ||
		vader.NegativeThreshold >= vader.PositiveThreshold) {
		return configError("models.vader thresholds must satisfy -1 <= negative < positive <= 1")
	}

	enabled := s.Models.EnabledModels()
	if len(enabled) == 0 {
		return configError("no classifiers enabled")
	}

	known := map[string]bool{"naive_bayes": true, "linear_svm": true, "transformer": true, "vader": true}
	seen := make(map[string]bool)
	for _, id := range s.Models.Priority {
		if !known[id] {
			return configError("models.priority names unknown model %q", id)
		}
		if seen[id] {
			return configError("models.priority lists %q more than once", id)
		}
		seen[id] = true
	}

	primaryEnabled := false
	for _, id := range enabled {
		if !seen[id] {
			return configError("models.priority is missing enabled model %q", id)
		}
		if id == s.Models.Primary {
			primaryEnabled = true
		}
	}
	if !primaryEnabled {
		return configError("models.primary %q is not an enabled model", s.Models.Primary)
	}

	return nil
}

func configError(format string, args ...any) error {
	return fmt.Errorf("[Config] %w: %s", models.ErrConfiguration, fmt.Sprintf(format, args...))
}
