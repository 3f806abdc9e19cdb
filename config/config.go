package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost      string        `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort      string        `env:"SERVER_PORT" envDefault:"8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Database configuration
	DBDriver       string `env:"DB_DRIVER" envDefault:"postgres"`
	DBHost         string `env:"DB_HOST" envDefault:"localhost"`
	DBPort         string `env:"DB_PORT" envDefault:"5432"`
	DBUser         string `env:"DB_USER" envDefault:"postgres"`
	DBPassword     string `env:"DB_PASSWORD"`
	DBName         string `env:"DB_NAME" envDefault:"foodgram"`
	DBSSLMode      string `env:"DB_SSL_MODE" envDefault:"disable"`
	SQLitePath     string `env:"SQLITE_PATH" envDefault:"foodgram.db"`
	MigrationsAuto bool   `env:"MIGRATIONS_AUTO" envDefault:"true"`

	// Redis configuration
	RedisURL      string `env:"REDIS_URL"`
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// JWT configuration
	JWTSecret string        `env:"JWT_SECRET" envDefault:"dev-insecure-secret"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// API behaviour
	PageSize                 int           `env:"PAGE_SIZE" envDefault:"6"`
	MaxPageSize              int           `env:"MAX_PAGE_SIZE" envDefault:"100"`
	SubscriptionRecipesLimit int           `env:"SUBSCRIPTION_RECIPES_LIMIT" envDefault:"3"`
	ShoppingListMaxRows      int           `env:"SHOPPING_LIST_MAX_ROWS" envDefault:"5000"`
	RecipeCreateLimit        int           `env:"RECIPE_CREATE_LIMIT" envDefault:"20"`
	RecipeCreateWindow       time.Duration `env:"RECIPE_CREATE_WINDOW" envDefault:"1h"`
	MaxImageBytes            int64         `env:"MAX_IMAGE_BYTES" envDefault:"5242880"`
	CORSAllowedOrigins       []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	// Object storage
	S3 S3Settings

	// Messaging
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"foodgram.events"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// S3Settings configures the recipe image bucket. Endpoint and path-style
// addressing allow a MinIO server to stand in for S3.
type S3Settings struct {
	Bucket       string `env:"S3_BUCKET_NAME" envDefault:"foodgram-media"`
	Region       string `env:"S3_REGION" envDefault:"us-east-1"`
	Endpoint     string `env:"S3_ENDPOINT"`
	AccessKey    string `env:"S3_ACCESS_KEY"`
	SecretKey    string `env:"S3_SECRET_KEY"`
	PublicURL    string `env:"S3_PUBLIC_URL"`
	UsePathStyle bool   `env:"S3_USE_PATH_STYLE" envDefault:"false"`
	PublicRead   bool   `env:"S3_PUBLIC_READ" envDefault:"false"`
}

// secretBindings maps docker secret file names onto config fields. A present
// secret file wins over the environment.
var secretBindings = []struct {
	name  string
	field func(*Config) *string
}{
	{"db_password", func(c *Config) *string { return &c.DBPassword }},
	{"jwt_secret", func(c *Config) *string { return &c.JWTSecret }},
	{"redis_password", func(c *Config) *string { return &c.RedisPassword }},
	{"redis_url", func(c *Config) *string { return &c.RedisURL }},
	{"s3_secret_key", func(c *Config) *string { return &c.S3.SecretKey }},
	{"amqp_url", func(c *Config) *string { return &c.AMQPURL }},
}

// LoadConfig reads an optional .env file, parses the environment, overlays
// docker secrets and validates the result.
func LoadConfig() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	cfg := &Config{Environment: GetEnvironment()}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	applySecrets(cfg)

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applySecrets(cfg *Config) {
	for _, b := range secretBindings {
		if value := readSecret(b.name); value != "" {
			*b.field(cfg) = value
		}
	}
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.ServerHost, c.ServerPort)
}

// PostgresDSN returns the keyword/value connection string for postgres.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// PostgresURL returns the URL form used by golang-migrate.
func (c *Config) PostgresURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, net.JoinHostPort(c.DBHost, c.DBPort), c.DBName, c.DBSSLMode,
	)
}

// RedisConfigured reports whether a Redis server was configured.
func (c *Config) RedisConfigured() bool {
	return c.RedisURL != "" || c.RedisHost != ""
}
