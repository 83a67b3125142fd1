package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// Config is built once at startup and passed by value to whoever needs it.
// Keys are the exact (case-sensitive) environment variable names.
type Config struct {
	ProjectName    string   `koanf:"PROJECT_NAME"`
	Version        string   `koanf:"VERSION"`
	APIV1Str       string   `koanf:"API_V1_STR" validate:"omitempty,startswith=/"`
	AllowedOrigins []string `koanf:"ALLOWED_ORIGINS"`
	BackendAPIURL  string   `koanf:"BACKEND_API_URL"`
	ModelName      string   `koanf:"MODEL_NAME"`
	OpenAIAPIKey   string   `koanf:"OPENAI_API_KEY"`

	AppEnv          string `koanf:"APP_ENV"`
	LogLevel        string `koanf:"LOG_LEVEL" validate:"omitempty,oneof=trace debug info warn error fatal panic disabled"`
	HTTPAddr        string `koanf:"HTTP_ADDR" validate:"required"`
	MetricsAddr     string `koanf:"METRICS_ADDR"`
	RedisAddr       string `koanf:"REDIS_ADDR"`
	RedisPass       string `koanf:"REDIS_PASSWORD"`
	RedisDB         int    `koanf:"REDIS_DB" validate:"gte=0"`
	CacheTTLSeconds int    `koanf:"CACHE_TTL_SECONDS" validate:"gte=0"`
}

const (
	envFileVar     = "ENV_FILE"
	defaultEnvFile = ".env"
	originsKey     = "ALLOWED_ORIGINS"
)

func Default() Config {
	return Config{
		ProjectName: "AI Trip AI Service",
		Version:     "1.0.0",
		APIV1Str:    "/api/v1",
		AllowedOrigins: []string{
			"http://localhost:3000",
			"http://localhost:8080",
		},
		BackendAPIURL:   "http://localhost:8080",
		ModelName:       "gpt-4",
		OpenAIAPIKey:    "",
		AppEnv:          "prod",
		LogLevel:        "info",
		HTTPAddr:        ":8000",
		MetricsAddr:     "",
		RedisAddr:       "",
		RedisPass:       "",
		RedisDB:         0,
		CacheTTLSeconds: 900,
	}
}

func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Load reads the env file named by ENV_FILE (default .env) and then the
// process environment. Process variables win over the file.
func Load() (Config, error) {
	path := os.Getenv(envFileVar)
	if path == "" {
		path = defaultEnvFile
	}
	return LoadFile(path)
}

// LoadFile is Load with an explicit env file path. A missing file is not an
// error; a malformed one is.
func LoadFile(path string) (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		vars, err := godotenv.Read(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read env file %s: %w", path, err)
		default:
			for key, v := range vars {
				if !k.Exists(key) {
					continue
				}
				if err := k.Set(key, v); err != nil {
					return Config{}, fmt.Errorf("set %s from %s: %w", key, path, err)
				}
			}
		}
	}

	// unknown variables are dropped so the environment cannot add keys
	known := func(key string) string {
		if k.Exists(key) {
			return key
		}
		return ""
	}
	if err := k.Load(env.Provider("", ".", known), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	if s, ok := k.Get(originsKey).(string); ok {
		origins, err := parseList(s)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", originsKey, err)
		}
		if err := k.Set(originsKey, origins); err != nil {
			return Config{}, fmt.Errorf("set %s: %w", originsKey, err)
		}
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	if c.OpenAIAPIKey == "" {
		log.Warn().Msg("OPENAI_API_KEY is empty")
	}
	return c, nil
}

// parseList accepts a JSON array (["a","b"]) or a comma-separated list.
func parseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err != nil {
			return nil, fmt.Errorf("malformed list: %w", err)
		}
		return out, nil
	}
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out, nil
}
