package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"maintenance-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	TrustedProxies  []string
	Env             string
	LogLevel        string

	KVBackend   string
	SQLitePath  string
	DatabaseURL string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	SSEKMSKeyID     string

	LLMProvider  string
	LLMModel     string
	GeminiAPIKey string
	OpenAIAPIKey string
	LLMTimeout   time.Duration
}

var defaults = map[string]any{
	"PORT":                "8080",
	"CORS_ALLOW_ORIGINS":  "http://localhost:5173",
	"ENV":                 "dev",
	"LOG_LEVEL":           "info",
	"KV_BACKEND":          "sqlite",
	"SQLITE_PATH":         "./data/maintenance.db",
	"OBJECT_STORE":        "local",
	"LOCAL_STORE_DIR":     "./data/exports",
	"LLM_PROVIDER":        "gemini",
	"LLM_TIMEOUT_SECONDS": 120,
}

// Load reads the process environment, falling back to .env files in the
// working directory.
func Load() Config {
	return FromViper(NewViper(".env", "cmd/.env"))
}

// NewViper merges the given env files and layers the process environment
// on top. File values are exported into the environment when unset so
// libraries that read os.Getenv directly (AWS, Google ADC, DB_*) see them.
func NewViper(envFiles ...string) *viper.Viper {
	v := viper.New()
	v.SetConfigType("env")
	for _, path := range envFiles {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			telemetry.Warn("config.env_file_invalid", map[string]any{"path": path, "error": err.Error()})
		}
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); !set {
			_ = os.Setenv(name, v.GetString(key))
		}
	}
	v.AutomaticEnv()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	return v
}

// FromViper normalizes raw settings into a Config.
func FromViper(v *viper.Viper) Config {
	kvBackend := normalizeKVBackend(v.GetString("KV_BACKEND"))
	dbURL := v.GetString("DATABASE_URL")
	if kvBackend == "postgres" && dbURL == "" {
		telemetry.Warn("config.missing", map[string]any{"key": "DATABASE_URL", "reason": "KV_BACKEND=postgres"})
	}
	provider := normalizeProvider(v.GetString("LLM_PROVIDER"))
	model := v.GetString("LLM_MODEL")
	if model == "" {
		model = defaultModel(provider)
	}

	return Config{
		Port:            v.GetString("PORT"),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		TrustedProxies:  splitAndTrim(v.GetString("TRUSTED_PROXIES")),
		Env:             normalizeEnv(v.GetString("ENV")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		KVBackend:       kvBackend,
		SQLitePath:      v.GetString("SQLITE_PATH"),
		DatabaseURL:     dbURL,
		ObjectStoreType: normalizeStoreType(v.GetString("OBJECT_STORE")),
		LocalStoreDir:   v.GetString("LOCAL_STORE_DIR"),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		S3Endpoint:      v.GetString("S3_ENDPOINT"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),
		LLMProvider:     provider,
		LLMModel:        model,
		GeminiAPIKey:    v.GetString("GEMINI_API_KEY"),
		OpenAIAPIKey:    v.GetString("OPENAI_API_KEY"),
		LLMTimeout:      time.Duration(positiveInt(v, "LLM_TIMEOUT_SECONDS")) * time.Second,
	}
}

// positiveInt falls back to the registered default for junk or non-positive values.
func positiveInt(v *viper.Viper, key string) int {
	def, _ := defaults[key].(int)
	if n := v.GetInt(key); n > 0 {
		return n
	}
	telemetry.Warn("config.invalid", map[string]any{"key": key, "value": v.GetString(key), "using": def})
	return def
}

func splitAndTrim(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeKVBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg", "postgresql":
		return "postgres"
	case "memory", "mem":
		return "memory"
	default:
		return "sqlite"
	}
}

func normalizeStoreType(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), "s3") {
		return "s3"
	}
	return "local"
}

func normalizeProvider(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "openai":
		return "openai"
	case "none", "off", "disabled":
		return "none"
	default:
		return "gemini"
	}
}

func defaultModel(provider string) string {
	switch provider {
	case "openai":
		return "gpt-4o-mini"
	case "gemini":
		return "gemini-2.5-pro"
	default:
		return ""
	}
}
