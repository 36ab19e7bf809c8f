package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/track360/server/validation"
)

type Config struct {
	Port            int             `koanf:"port" validate:"min=1,max=65535"`
	Database        DatabaseConfig  `koanf:"database"`
	Media           MediaConfig     `koanf:"media"`
	Upload          UploadConfig    `koanf:"upload"`
	Log             LogConfig       `koanf:"log"`
	CORS            CORSConfig      `koanf:"cors"`
	RateLimit       RateLimitConfig `koanf:"rate_limit"`
	Seed            SeedConfig      `koanf:"seed"`
	ShutdownTimeout time.Duration   `koanf:"shutdown_timeout" validate:"gt=0"`
}

type DatabaseConfig struct {
	Type         string `koanf:"type" validate:"oneof=mongodb postgres sqlite"`
	URL          string `koanf:"url"`
	Name         string `koanf:"name" validate:"required"`
	Transactions bool   `koanf:"transactions"`
}

type MediaConfig struct {
	CloudName         string `koanf:"cloud_name"`
	APIKey            string `koanf:"api_key"`
	APISecret         string `koanf:"api_secret"`
	UnprocessedFolder string `koanf:"unprocessed_folder" validate:"required"`
	ProcessedFolder   string `koanf:"processed_folder" validate:"required"`
}

type UploadConfig struct {
	MaxSize  string `koanf:"max_size"`
	MaxBytes int64  `koanf:"-"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

type CORSConfig struct {
	Origins []string `koanf:"origins"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests" validate:"gte=0"`
	Window   time.Duration `koanf:"window"`
}

type SeedConfig struct {
	Enabled bool `koanf:"enabled"`
}

// ConfigPathEnv names an optional YAML config file.
const ConfigPathEnv = "CONFIG_PATH"

func defaults() Config {
	return Config{
		Port: 3318,
		Database: DatabaseConfig{
			Type:         "mongodb",
			Name:         "track360",
			Transactions: true,
		},
		Media: MediaConfig{
			UnprocessedFolder: "unprocessed-videos",
			ProcessedFolder:   "processed-videos",
		},
		Upload:          UploadConfig{MaxSize: "100MB"},
		Log:             LogConfig{Level: "info", Format: "json"},
		CORS:            CORSConfig{Origins: []string{"*"}},
		RateLimit:       RateLimitConfig{Requests: 100, Window: time.Minute},
		Seed:            SeedConfig{Enabled: true},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Environment variable -> config key
var envKeys = map[string]string{
	"PORT":                     "port",
	"DATABASE_TYPE":            "database.type",
	"DATABASE_URL":             "database.url",
	"DATABASE_NAME":            "database.name",
	"DATABASE_TRANSACTIONS":    "database.transactions",
	"CLOUDINARY_CLOUD_NAME":    "media.cloud_name",
	"CLOUDINARY_API_KEY":       "media.api_key",
	"CLOUDINARY_API_SECRET":    "media.api_secret",
	"MEDIA_UNPROCESSED_FOLDER": "media.unprocessed_folder",
	"MEDIA_PROCESSED_FOLDER":   "media.processed_folder",
	"UPLOAD_MAX_SIZE":          "upload.max_size",
	"LOG_LEVEL":                "log.level",
	"LOG_FORMAT":               "log.format",
	"CORS_ORIGINS":             "cors.origins",
	"RATE_LIMIT_REQUESTS":      "rate_limit.requests",
	"RATE_LIMIT_WINDOW":        "rate_limit.window",
	"SEED_ENABLED":             "seed.enabled",
	"SHUTDOWN_TIMEOUT":         "shutdown_timeout",
}

// ParseFlags loads configuration. Precedence, lowest first: defaults,
// YAML file, .env, environment, command-line flags.
func ParseFlags(args []string) (Config, error) {
	fset := flag.NewFlagSet("track360", flag.ContinueOnError)

	port := fset.Int("p", 0, "Server port")
	dbURL := fset.String("d", "", "Database URL")
	dbType := fset.String("t", "", "Database type (mongodb, postgres or sqlite)")
	configPath := fset.String("config", "", "YAML config file (or CONFIG_PATH env)")
	envFile := fset.String("env-file", ".env", "dotenv file loaded when present")

	// Secrets (prefer env variables, but allow CLI for dev)
	apiSecret := fset.String("cloudinary-secret", "", "Cloudinary API secret (prefer env)")

	if err := fset.Parse(args); err != nil {
		return Config{}, err
	}

	// .env never overrides variables that are already set
	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", *envFile, err)
	}

	k := koanf.New(".")
	base := defaults()
	if err := k.Load(structs.Provider(&base, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := *configPath
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(key string) string {
		return envKeys[key]
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	// Flags win over everything
	overrides := map[string]any{}
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "p":
			overrides["port"] = *port
		case "d":
			overrides["database.url"] = *dbURL
		case "t":
			overrides["database.type"] = *dbType
		case "cloudinary-secret":
			overrides["media.api_secret"] = *apiSecret
		}
	})
	for key, v := range overrides {
		if err := k.Set(key, v); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}

	if err := cfg.finish(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) finish() error {
	if cfg.Database.URL == "" {
		return errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	// Secrets - MUST be provided
	if cfg.Media.CloudName == "" {
		return errors.New("CLOUDINARY_CLOUD_NAME required")
	}
	if cfg.Media.APIKey == "" {
		return errors.New("CLOUDINARY_API_KEY required")
	}
	if cfg.Media.APISecret == "" {
		return errors.New("CLOUDINARY_API_SECRET required")
	}

	maxBytes, err := humanize.ParseBytes(cfg.Upload.MaxSize)
	if err != nil || maxBytes == 0 {
		return fmt.Errorf("invalid UPLOAD_MAX_SIZE %q", cfg.Upload.MaxSize)
	}
	cfg.Upload.MaxBytes = int64(maxBytes)

	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.CORS.Origins = trimAll(cfg.CORS.Origins)

	if err := validation.Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Redacted returns a copy safe to log.
func (cfg Config) Redacted() Config {
	if cfg.Media.APISecret != "" {
		cfg.Media.APISecret = "********"
	}
	if cfg.Database.URL != "" {
		cfg.Database.URL = redactURL(cfg.Database.URL)
	}
	return cfg
}

func redactURL(u string) string {
	at := strings.LastIndex(u, "@")
	scheme := strings.Index(u, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return u
	}
	return u[:scheme+3] + "********" + u[at:]
}

// UploadLimit is the human readable upload cap, for logs.
func (cfg Config) UploadLimit() string {
	return humanize.Bytes(uint64(cfg.Upload.MaxBytes))
}
