// Package config loads service configuration from defaults, an optional
// YAML file and environment overrides, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	GRPCAddr string `yaml:"grpc_addr"`
	HTTPAddr string `yaml:"http_addr"`

	LLM    LLMConfig    `yaml:"llm"`
	Store  StoreConfig  `yaml:"store"`
	Stripe StripeConfig `yaml:"stripe"`
	Log    LogConfig    `yaml:"log"`
}

// LLMConfig configures the text-generation collaborator.
type LLMConfig struct {
	Provider       string        `yaml:"provider"` // gemini, openai, ollama
	APIKey         string        `yaml:"api_key"`
	Model          string        `yaml:"model"`
	BaseURL        string        `yaml:"base_url"`
	Timeout        time.Duration `yaml:"timeout"`
	MaxConcurrency int           `yaml:"max_concurrency"`
}

type StoreConfig struct {
	Driver     string         `yaml:"driver"` // memory, sqlite, dynamodb
	SQLitePath string         `yaml:"sqlite_path"`
	DynamoDB   DynamoDBConfig `yaml:"dynamodb"`
}

type DynamoDBConfig struct {
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	ProfilesTable  string `yaml:"profiles_table"`
	CharitiesTable string `yaml:"charities_table"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	APIBase       string `yaml:"api_base"`
	Currency      string `yaml:"currency"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
	MinimumAmount string `yaml:"minimum_amount"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func Default() *Config {
	return &Config{
		GRPCAddr: ":50051",
		HTTPAddr: ":8080",
		LLM: LLMConfig{
			Provider:       "gemini",
			Timeout:        30 * time.Second,
			MaxConcurrency: 3,
		},
		Store: StoreConfig{
			Driver:     "memory",
			SQLitePath: "charity.db",
			DynamoDB: DynamoDBConfig{
				Region:         "us-east-1",
				ProfilesTable:  "charity_profiles",
				CharitiesTable: "charity_directory",
			},
		},
		Stripe: StripeConfig{
			Currency:      "usd",
			SuccessURL:    "http://localhost:5173/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:     "http://localhost:5173/cancel",
			MinimumAmount: "0.50",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path (if non-empty), applies environment overrides and
// validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.GRPCAddr = env("GRPC_ADDR", c.GRPCAddr)
	c.HTTPAddr = env("HTTP_ADDR", c.HTTPAddr)

	c.LLM.Provider = env("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = env("LLM_MODEL", c.LLM.Model)
	c.LLM.BaseURL = env("LLM_BASE_URL", c.LLM.BaseURL)
	switch strings.ToLower(c.LLM.Provider) {
	case "gemini", "":
		c.LLM.APIKey = env("GEMINI_API_KEY", c.LLM.APIKey)
	case "openai":
		c.LLM.APIKey = env("OPENAI_API_KEY", c.LLM.APIKey)
	case "ollama":
		if host := os.Getenv("HOST_IP"); host != "" && c.LLM.BaseURL == "" {
			c.LLM.BaseURL = fmt.Sprintf("http://%s:11434", host)
		}
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LLM_TIMEOUT: %w", err)
		}
		c.LLM.Timeout = d
	}

	c.Store.Driver = env("STORE_DRIVER", c.Store.Driver)
	c.Store.SQLitePath = env("SQLITE_PATH", c.Store.SQLitePath)
	c.Store.DynamoDB.Region = env("DYNAMODB_REGION", c.Store.DynamoDB.Region)
	c.Store.DynamoDB.Endpoint = env("DYNAMODB_ENDPOINT", c.Store.DynamoDB.Endpoint)
	c.Store.DynamoDB.ProfilesTable = env("DYNAMODB_PROFILES_TABLE", c.Store.DynamoDB.ProfilesTable)
	c.Store.DynamoDB.CharitiesTable = env("DYNAMODB_CHARITIES_TABLE", c.Store.DynamoDB.CharitiesTable)

	c.Stripe.SecretKey = env("STRIPE_SECRET_KEY", c.Stripe.SecretKey)
	c.Stripe.WebhookSecret = env("STRIPE_WEBHOOK_SECRET", c.Stripe.WebhookSecret)
	c.Stripe.APIBase = env("STRIPE_API_BASE", c.Stripe.APIBase)

	c.Log.Level = env("LOG_LEVEL", c.Log.Level)
	if v := os.Getenv("LOG_PRETTY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = b
	}
	return nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.GRPCAddr == "" {
		errs = append(errs, errors.New("grpc_addr is required"))
	}
	switch strings.ToLower(c.LLM.Provider) {
	case "gemini", "openai", "ollama":
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not one of gemini, openai, ollama", c.LLM.Provider))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, errors.New("llm.timeout must be positive"))
	}
	if c.LLM.MaxConcurrency <= 0 {
		errs = append(errs, errors.New("llm.max_concurrency must be positive"))
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.SQLitePath == "" {
			errs = append(errs, errors.New("store.sqlite_path is required for sqlite"))
		}
	case "dynamodb":
		if c.Store.DynamoDB.ProfilesTable == "" || c.Store.DynamoDB.CharitiesTable == "" {
			errs = append(errs, errors.New("store.dynamodb tables are required for dynamodb"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.driver %q is not one of memory, sqlite, dynamodb", c.Store.Driver))
	}
	if _, err := c.Stripe.Minimum(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Minimum parses MinimumAmount; an empty value means no minimum.
func (s StripeConfig) Minimum() (decimal.Decimal, error) {
	if s.MinimumAmount == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s.MinimumAmount)
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("stripe.minimum_amount %q is not a non-negative amount", s.MinimumAmount)
	}
	return d, nil
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
