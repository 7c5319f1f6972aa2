// Package config loads task runner configuration from an optional YAML file
// plus environment variables. Environment always wins over file values so the
// service can run fully env-configured in containers.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/22f3002289/Mayank-s-first-LLM-Project/internal/errors"
)

// Config represents the application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	GitHub     GitHubConfig     `yaml:"github"`
	Submission SubmissionConfig `yaml:"submission"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds inbound HTTP settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// GeminiConfig holds generative-AI API settings.
type GeminiConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	APIBase         string `yaml:"api_base,omitempty"` // empty uses the SDK default endpoint
	MaxOutputTokens int    `yaml:"max_output_tokens,omitempty"`
}

// GitHubConfig holds source hosting API settings.
type GitHubConfig struct {
	Token   string `yaml:"token"`
	Owner   string `yaml:"owner,omitempty"` // org or username; empty resolves the token's user
	APIBase string `yaml:"api_base,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// SubmissionConfig holds the optional shared secret checkpoint.
type SubmissionConfig struct {
	Secret string `yaml:"secret,omitempty"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// Default returns the baseline configuration before file/env overrides.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Gemini: GeminiConfig{
			Model:           "gemini-1.5-pro",
			MaxOutputTokens: 2000,
		},
		GitHub: GitHubConfig{
			APIBase: "https://api.github.com",
			BaseURL: "https://github.com",
		},
		Logging: LoggingConfig{Level: LogLevelInfo, Format: LogFormatText},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if it
// exists), then environment overrides. A missing file is not an error so a
// pure-env deployment needs no config.yaml.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

// loadEnvFiles loads .env/.env.local without overriding existing process env.
func loadEnvFiles() {
	for _, p := range []string{".env", ".env.local"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// applyEnv overrides file values from the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		c.Gemini.Model = v
	}
	if v := os.Getenv("GEMINI_API_BASE"); v != "" {
		c.Gemini.APIBase = v
	}
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		c.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_OWNER"); v != "" {
		c.GitHub.Owner = v
	}
	if v := os.Getenv("GITHUB_API_BASE"); v != "" {
		c.GitHub.APIBase = v
	}
	// SUBMISSION_SECRET preferred; STUDENT_SECRET kept as a legacy alias.
	if v := os.Getenv("SUBMISSION_SECRET"); v != "" {
		c.Submission.Secret = v
	} else if v := os.Getenv("STUDENT_SECRET"); v != "" {
		c.Submission.Secret = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = NormalizeLogLevel(v)
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = NormalizeLogFormat(v)
	}
}

// normalize fills zero values back to defaults after file/env merging.
func (c *Config) normalize() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-pro"
	}
	if c.Gemini.MaxOutputTokens <= 0 {
		c.Gemini.MaxOutputTokens = 2000
	}
	if c.GitHub.APIBase == "" {
		c.GitHub.APIBase = "https://api.github.com"
	}
	if c.GitHub.BaseURL == "" {
		c.GitHub.BaseURL = "https://github.com"
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

// Validate checks that credentials required for outbound calls are present.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.ConfigRequired("gemini.api_key")
	}
	if c.GitHub.Token == "" {
		return errors.ConfigRequired("github.token")
	}
	return nil
}
