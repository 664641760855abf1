package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	domainerrors "github.com/repodigest/repodigest/internal/domain/errors"
)

type (
	Config struct {
		Repositories []string `json:"repositories"`
		EndDate      string   `json:"end_date,omitempty"`
		PeriodDays   int      `json:"period_days"`
		TeamLogins   []string `json:"team_logins,omitempty"`
		OutputDir    string   `json:"output_dir"`
		Language     string   `json:"language"`
		PathFile     string   `json:"path_file"`

		GitHubToken string `json:"github_token,omitempty"`

		GeminiAPIKey string `json:"gemini_api_key,omitempty"`
		GeminiModel  string `json:"gemini_model"`

		Summaries SummaryConfig `json:"summaries"`
	}

	// SummaryConfig tunes the per-commit summarization engine.
	SummaryConfig struct {
		Workers        int  `json:"workers"`
		TimeoutSeconds int  `json:"timeout_seconds"`
		MaxTokens      int  `json:"max_tokens"`
		PreserveOrder  bool `json:"preserve_order"`
	}
)

const (
	defaultLang           = "en"
	defaultPeriodDays     = 7
	defaultOutputDir      = "output"
	defaultGeminiModel    = "gemini-2.0-flash"
	defaultWorkers        = 4
	defaultTimeoutSeconds = 30
	defaultMaxTokens      = 500
)

// LoadConfig reads the JSON config. path may be a config file directly (any
// .json path) or a home directory, in which case ~/.repodigest/config.json
// is used and created with defaults on first run. Environment variables
// GITHUB_TOKEN and GEMINI_API_KEY override the stored credentials.
func LoadConfig(path string) (*Config, error) {
	var configPath string

	if filepath.Ext(path) == ".json" {
		configPath = path
	} else {
		configDir := filepath.Join(path, ".repodigest")
		configPath = filepath.Join(configDir, "config.json")

		if _, err := os.Stat(configDir); os.IsNotExist(err) {
			if err := os.MkdirAll(configDir, 0755); err != nil {
				return nil, fmt.Errorf("error creating config directory: %w", err)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg, err := createDefaultConfig(configPath)
		if err != nil {
			return nil, err
		}
		applyEnvOverrides(cfg)
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("error decoding config file: %w", err)
	}
	cfg.PathFile = configPath
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func createDefaultConfig(path string) (*Config, error) {
	cfg := &Config{
		PeriodDays:  defaultPeriodDays,
		OutputDir:   defaultOutputDir,
		Language:    defaultLang,
		GeminiModel: defaultGeminiModel,
		PathFile:    path,
		Summaries: SummaryConfig{
			Workers:        defaultWorkers,
			TimeoutSeconds: defaultTimeoutSeconds,
			MaxTokens:      defaultMaxTokens,
		},
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("error creating config directory: %w", err)
	}
	if err := SaveConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func SaveConfig(cfg *Config) error {
	if cfg.PathFile == "" {
		return domainerrors.NewConfigError("path_file", "config file path is not set", nil)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding config: %w", err)
	}
	if err := os.WriteFile(cfg.PathFile, data, 0644); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Language == "" {
		cfg.Language = defaultLang
	}
	if cfg.PeriodDays <= 0 {
		cfg.PeriodDays = defaultPeriodDays
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = defaultOutputDir
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = defaultGeminiModel
	}
	if cfg.Summaries.Workers <= 0 {
		cfg.Summaries.Workers = defaultWorkers
	}
	if cfg.Summaries.TimeoutSeconds <= 0 {
		cfg.Summaries.TimeoutSeconds = defaultTimeoutSeconds
	}
	if cfg.Summaries.MaxTokens <= 0 {
		cfg.Summaries.MaxTokens = defaultMaxTokens
	}
}

func applyEnvOverrides(cfg *Config) {
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		cfg.GitHubToken = token
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.GeminiAPIKey = key
	}
}

func validateConfig(cfg *Config) error {
	if cfg.PeriodDays <= 0 {
		return domainerrors.NewConfigError("period_days", "must be greater than 0", nil)
	}
	if cfg.Language == "" {
		return domainerrors.NewConfigError("language", "must not be empty", nil)
	}
	if cfg.OutputDir == "" {
		return domainerrors.NewConfigError("output_dir", "must not be empty", nil)
	}
	return nil
}
