package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"rankdelta/internal/collector"
	"rankdelta/internal/storage"
)

// EnvPaths are tried in order; the first .env found is loaded.
var EnvPaths = []string{".env", "../.env", "../../.env"}

// Config holds all application configuration. It is loaded once and not
// mutated afterwards.
type Config struct {
	Riot    RiotConfig
	Storage StorageConfig
	Crawl   CrawlConfig
	Server  ServerConfig
	Log     LogConfig
	Notify  NotifyConfig
	Summary SummaryConfig

	// EnvFile is the .env path that was loaded, empty if none.
	EnvFile string
}

type RiotConfig struct {
	APIKey        string        `env:"RIOT_API_KEY"`
	MaxAttempts   int           `env:"RIOT_MAX_ATTEMPTS" envDefault:"3"`
	BaseBackoff   time.Duration `env:"RIOT_BASE_BACKOFF" envDefault:"600ms"`
	CourtesyDelay time.Duration `env:"RIOT_COURTESY_DELAY" envDefault:"100ms"`
	HTTPTimeout   time.Duration `env:"RIOT_HTTP_TIMEOUT" envDefault:"30s"`
}

type StorageConfig struct {
	Backend  string `env:"BLOB_BACKEND" envDefault:"fs"` // fs or s3
	Path     string `env:"BLOB_STORAGE_PATH" envDefault:"./data"`
	Bucket   string `env:"BUCKET_NAME"`
	Region   string `env:"AWS_REGION"`
	Endpoint string `env:"S3_ENDPOINT"`
}

type CrawlConfig struct {
	Platform       string `env:"PLATFORM" envDefault:"na1"`
	Queue          string `env:"LADDER_QUEUE" envDefault:"RANKED_SOLO_5x5"`
	MaxPages       int    `env:"LADDER_MAX_PAGES" envDefault:"10"`
	MatchIDCount   int    `env:"MATCH_ID_COUNT" envDefault:"50"`
	MatchType      string `env:"MATCH_TYPE" envDefault:"ranked"`
	MatchIDWorkers int    `env:"MATCH_ID_WORKERS" envDefault:"2"`
	MatchWorkers   int    `env:"MATCH_DATA_WORKERS" envDefault:"2"`
	ProgressEvery  int    `env:"PROGRESS_EVERY" envDefault:"100"`
	WorkerID       int    `env:"WORKER_ID" envDefault:"0"`
	WorkerCount    int    `env:"WORKER_COUNT" envDefault:"1"`
}

type ServerConfig struct {
	Addr         string        `env:"SERVER_ADDR" envDefault:":8000"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://localhost:8080"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"120s"`
}

type LogConfig struct {
	Level      string `env:"LOG_LEVEL" envDefault:"info"`
	Dir        string `env:"LOG_DIR"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"14"`
	Compress   bool   `env:"LOG_COMPRESS" envDefault:"true"`
}

type NotifyConfig struct {
	DiscordWebhookURL string `env:"DISCORD_WEBHOOK_URL"`
}

type SummaryConfig struct {
	DatabaseURL string `env:"DATABASE_URL"`       // postgres://...
	TursoURL    string `env:"TURSO_DATABASE_URL"` // libsql://... or file:...
	TursoToken  string `env:"TURSO_AUTH_TOKEN"`
}

// Load reads the first .env found in EnvPaths (if any), then the environment.
func Load() (*Config, error) {
	loaded := ""
	for _, path := range EnvPaths {
		if err := godotenv.Load(path); err == nil {
			loaded = path
			break
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	cfg.EnvFile = loaded
	if cfg.Riot.APIKey == "" {
		cfg.Riot.APIKey = os.Getenv("RIOT-DEV-KEY")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Crawl.WorkerCount <= 0 {
		return fmt.Errorf("WORKER_COUNT must be positive, got %d", c.Crawl.WorkerCount)
	}
	if c.Crawl.WorkerID < 0 || c.Crawl.WorkerID >= c.Crawl.WorkerCount {
		return fmt.Errorf("WORKER_ID %d out of range [0, %d)", c.Crawl.WorkerID, c.Crawl.WorkerCount)
	}
	if c.Riot.MaxAttempts <= 0 {
		return fmt.Errorf("RIOT_MAX_ATTEMPTS must be positive, got %d", c.Riot.MaxAttempts)
	}
	switch c.Storage.Backend {
	case "fs", "s3":
	default:
		return fmt.Errorf("BLOB_BACKEND must be fs or s3, got %q", c.Storage.Backend)
	}
	return nil
}

// StorageOptions maps the storage section onto the blob store factory.
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:  c.Storage.Backend,
		Path:     c.Storage.Path,
		Bucket:   c.Storage.Bucket,
		Region:   c.Storage.Region,
		Endpoint: c.Storage.Endpoint,
	}
}

// CollectorConfig maps the crawl section onto the crawler tunables.
func (c *Config) CollectorConfig() collector.Config {
	return collector.Config{
		Platform:       c.Crawl.Platform,
		Queue:          c.Crawl.Queue,
		MaxPages:       c.Crawl.MaxPages,
		MatchIDCount:   c.Crawl.MatchIDCount,
		MatchType:      c.Crawl.MatchType,
		MatchIDWorkers: c.Crawl.MatchIDWorkers,
		MatchWorkers:   c.Crawl.MatchWorkers,
		ProgressEvery:  c.Crawl.ProgressEvery,
	}
}

// Shard is this process's worker identity.
func (c *Config) Shard() collector.ShardSpec {
	return collector.ShardSpec{Index: c.Crawl.WorkerID, Workers: c.Crawl.WorkerCount}
}
