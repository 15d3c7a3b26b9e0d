package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"madlib-maker/shared/utils"
)

// Storage backends of the short link service.
const (
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// Config holds the configuration of the short link service.
type Config struct {
	Env         string `envconfig:"ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`
	ServerPort  string `envconfig:"SERVER_PORT" default:"3001"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"redis"`

	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
	// Секретное поле БЕЗ envconfig тега
	RedisPassword string

	DBHost    string `envconfig:"DB_HOST" default:"localhost"`
	DBPort    string `envconfig:"DB_PORT" default:"5432"`
	DBUser    string `envconfig:"DB_USER" default:"madlib"`
	DBName    string `envconfig:"DB_NAME" default:"madlib"`
	DBSSLMode string `envconfig:"DB_SSL_MODE" default:"disable"`
	DBMaxConn int32  `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	// Секретное поле БЕЗ envconfig тега
	DBPassword string

	LinkTTL       time.Duration `envconfig:"LINK_TTL" default:"8760h"`
	PurgeInterval time.Duration `envconfig:"PURGE_INTERVAL" default:"1h"`

	PublicBaseURL    string `envconfig:"PUBLIC_BASE_URL"`
	MaxBodyBytes     int64  `envconfig:"MAX_BODY_BYTES" default:"262144"`
	ShortenRateLimit uint   `envconfig:"SHORTEN_RATE_LIMIT" default:"30"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
}

// GetAllowedOrigins splits CORSAllowedOrigins into a slice.
func (c *Config) GetAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(c.CORSAllowedOrigins, " ", ""), ",")
}

// PostgresDSN builds the pgx connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%d",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode, c.DBMaxConn)
}

// Validate checks values envconfig cannot check by itself.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendRedis, BackendPostgres, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (expected redis, postgres or memory)", c.StoreBackend)
	}
	if c.LinkTTL <= 0 {
		return fmt.Errorf("LINK_TTL must be positive, got %s", c.LinkTTL)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// LoadConfig loads the service configuration from envFilePath (if present),
// the environment and Docker secrets.
func LoadConfig(envFilePath string) (*Config, error) {
	loadEnvFile(envFilePath)

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}

	var err error
	if cfg.StoreBackend == BackendPostgres {
		cfg.DBPassword, err = utils.ReadSecret("db_password")
		if err != nil {
			return nil, err
		}
	}

	cfg.RedisPassword, err = utils.ReadOptionalSecret("redis_password")
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Println("Configuration loaded successfully (secrets read from files).")
	return &cfg, nil
}

// ClientConfig configures the madlib CLI.
type ClientConfig struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
	// AppBaseURL is the share page links point at.
	AppBaseURL string `envconfig:"APP_BASE_URL" default:"http://localhost:8080/"`
	// ShortenerAPIURL empty disables short links.
	ShortenerAPIURL  string        `envconfig:"SHORTENER_API_URL"`
	ShortenerTimeout time.Duration `envconfig:"SHORTENER_TIMEOUT" default:"10s"`
	DraftPath        string        `envconfig:"DRAFT_PATH"`
}

// LoadClientConfig loads the CLI configuration the same way LoadConfig does,
// without secrets.
func LoadClientConfig(envFilePath string) (*ClientConfig, error) {
	loadEnvFile(envFilePath)

	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("error processing env vars: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile(envFilePath string) {
	if envFilePath == "" {
		return
	}
	if _, err := os.Stat(envFilePath); err == nil {
		if err := godotenv.Load(envFilePath); err != nil {
			log.Printf("Warning: Could not load %s file: %v", envFilePath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Printf("Warning: Error checking %s file: %v", envFilePath, err)
	}
}
