package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/yungbote/sprout-backend/internal/modules/garden/sequence"
)

const (
	AuthModeFirebase = "firebase"
	AuthModeDev      = "dev"

	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config keys mirror their environment variable names, lower-cased for
// config files.
type Config struct {
	Port    string `mapstructure:"port"`
	LogMode string `mapstructure:"log_mode"`

	DBDriver    string `mapstructure:"db_driver"`
	DatabaseURL string `mapstructure:"database_url"`

	AIProvider string        `mapstructure:"ai_provider"`
	AIAPIKey   string        `mapstructure:"ai_api_key"`
	AIModel    string        `mapstructure:"ai_model"`
	AIBaseURL  string        `mapstructure:"ai_base_url"`
	AITimeout  time.Duration `mapstructure:"ai_timeout"`

	AuthMode               string `mapstructure:"auth_mode"`
	FirebaseServiceAccount string `mapstructure:"firebase_service_account"`
	FirebaseProjectID      string `mapstructure:"firebase_project_id"`

	RedisAddr    string `mapstructure:"redis_addr"`
	RedisChannel string `mapstructure:"redis_channel"`

	VisionEnabled   bool   `mapstructure:"vision_enabled"`
	DiagnosisBucket string `mapstructure:"diagnosis_bucket"`

	// MediaDir keeps diagnosis photos on local disk when no bucket is set.
	MediaDir string `mapstructure:"media_dir"`

	RemediationInsertPolicy string `mapstructure:"remediation_insert_policy"`
	RecommendationLimit     int    `mapstructure:"recommendation_limit"`

	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	MetricsEnabled     bool   `mapstructure:"metrics_enabled"`

	OtelEnabled      bool    `mapstructure:"otel_enabled"`
	OtelServiceName  string  `mapstructure:"otel_service_name"`
	OtelEnvironment  string  `mapstructure:"otel_environment"`
	OtelEndpoint     string  `mapstructure:"otel_endpoint"`
	OtelHeaders      string  `mapstructure:"otel_headers"`
	OtelInsecure     bool    `mapstructure:"otel_insecure"`
	OtelSamplerRatio float64 `mapstructure:"otel_sampler_ratio"`

	// Policy is derived from RemediationInsertPolicy during validation.
	Policy sequence.Policy `mapstructure:"-"`
}

var defaults = map[string]any{
	"port":                      "8080",
	"log_mode":                  "development",
	"db_driver":                 "postgres",
	"database_url":              "",
	"ai_provider":               ProviderGemini,
	"ai_api_key":                "",
	"ai_model":                  "",
	"ai_base_url":               "",
	"ai_timeout":                "60s",
	"auth_mode":                 AuthModeFirebase,
	"firebase_service_account":  "",
	"firebase_project_id":       "",
	"redis_addr":                "",
	"redis_channel":             "sprout:events",
	"vision_enabled":            false,
	"diagnosis_bucket":          "",
	"media_dir":                 "",
	"remediation_insert_policy": string(sequence.PolicyHead),
	"recommendation_limit":      5,
	"cors_allowed_origins":      "",
	"metrics_enabled":           false,
	"otel_enabled":              false,
	"otel_service_name":         "sprout-backend",
	"otel_environment":          "",
	"otel_endpoint":             "",
	"otel_headers":              "",
	"otel_insecure":             false,
	"otel_sampler_ratio":        0.1,
}

// LoadConfig reads defaults, then the optional config file, then the
// environment. Later sources win.
func LoadConfig(configPath string) (Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	if strings.TrimSpace(configPath) != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.AIProvider = strings.ToLower(strings.TrimSpace(c.AIProvider))
	switch c.AIProvider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("unsupported AI_PROVIDER %q", c.AIProvider)
	}

	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	switch c.AuthMode {
	case AuthModeFirebase:
		if strings.TrimSpace(c.FirebaseProjectID) == "" && strings.TrimSpace(c.FirebaseServiceAccount) == "" {
			return fmt.Errorf("AUTH_MODE=firebase needs FIREBASE_PROJECT_ID or FIREBASE_SERVICE_ACCOUNT")
		}
	case AuthModeDev:
	default:
		return fmt.Errorf("unsupported AUTH_MODE %q", c.AuthMode)
	}

	policy, err := sequence.ParsePolicy(c.RemediationInsertPolicy)
	if err != nil {
		return err
	}
	c.Policy = policy

	if c.RecommendationLimit < 0 {
		return fmt.Errorf("RECOMMENDATION_LIMIT must not be negative")
	}
	if c.AITimeout <= 0 {
		c.AITimeout = 60 * time.Second
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	p := strings.TrimSpace(c.Port)
	if strings.Contains(p, ":") {
		return p
	}
	return ":" + p
}

func (c Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
