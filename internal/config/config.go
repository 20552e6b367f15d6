package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Storage  StorageConfig
	S3       S3Config
	Log      LogConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Resolver ResolverConfig
	Tax      TaxConfig
	Ingest   IngestConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds catalogue database settings. Driver is "postgres" or "sqlite".
type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
	MaxOpen    int    `mapstructure:"max_open"`
	MaxIdle    int    `mapstructure:"max_idle"`
}

// DSN returns the connection string for the configured driver.
func (d *DBConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// StorageConfig selects where uploaded documents are archived.
type StorageConfig struct {
	Provider string `mapstructure:"provider"` // "s3" or "local"
	LocalDir string `mapstructure:"local_dir"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// AuthConfig holds the admin token settings.
type AuthConfig struct {
	Secret      string        `mapstructure:"secret"`
	Issuer      string        `mapstructure:"issuer"`
	TokenExpiry time.Duration `mapstructure:"token_expiry"`
}

// ResolverConfig holds fuzzy resolution thresholds.
type ResolverConfig struct {
	PolicyPath      string  `mapstructure:"policy_path"`
	AcceptThreshold float64 `mapstructure:"accept_threshold"`
	TierSwitch      float64 `mapstructure:"tier_switch"`
	TokenBonus      float64 `mapstructure:"token_bonus"`
	MinOverlap      int     `mapstructure:"min_overlap"`
	TopK            int     `mapstructure:"top_k"`
}

// TaxConfig holds calculation settings.
type TaxConfig struct {
	// SplitRate treats stored rates as the CGST half of the total GST.
	SplitRate bool `mapstructure:"split_rate"`
}

// IngestConfig holds document ingestion settings.
type IngestConfig struct {
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	MaxKeywords   int    `mapstructure:"max_keywords"`
	SeedDir       string `mapstructure:"seed_dir"`
	SeedOnStart   bool   `mapstructure:"seed_on_start"`
}

// Load reads configuration from environment variables with the GSTRATES_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GSTRATES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "gstrates")
	v.SetDefault("db.password", "gstrates_secret")
	v.SetDefault("db.name", "gstrates_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.sqlite_path", "gstrates.db")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Storage defaults
	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_dir", "uploads")
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "gstrates-documents")
	v.SetDefault("s3.endpoint", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Auth defaults
	v.SetDefault("auth.secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "gstrates")
	v.SetDefault("auth.token_expiry", "24h")

	// Resolver defaults
	v.SetDefault("resolver.policy_path", "")
	v.SetDefault("resolver.accept_threshold", 65)
	v.SetDefault("resolver.tier_switch", 70)
	v.SetDefault("resolver.token_bonus", 10)
	v.SetDefault("resolver.min_overlap", 2)
	v.SetDefault("resolver.top_k", 3)

	v.SetDefault("tax.split_rate", true)

	// Ingest defaults
	v.SetDefault("ingest.max_file_size_mb", 50)
	v.SetDefault("ingest.max_keywords", 20)
	v.SetDefault("ingest.seed_dir", "seed_data")
	v.SetDefault("ingest.seed_on_start", false)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "GSTRATES_SERVER_PORT",
		"server.read_timeout":       "GSTRATES_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "GSTRATES_SERVER_WRITE_TIMEOUT",
		"server.environment":        "GSTRATES_SERVER_ENVIRONMENT",
		"db.driver":                 "GSTRATES_DB_DRIVER",
		"db.host":                   "GSTRATES_DB_HOST",
		"db.port":                   "GSTRATES_DB_PORT",
		"db.user":                   "GSTRATES_DB_USER",
		"db.password":               "GSTRATES_DB_PASSWORD",
		"db.name":                   "GSTRATES_DB_NAME",
		"db.sslmode":                "GSTRATES_DB_SSLMODE",
		"db.sqlite_path":            "GSTRATES_DB_SQLITE_PATH",
		"db.max_open":               "GSTRATES_DB_MAX_OPEN",
		"db.max_idle":               "GSTRATES_DB_MAX_IDLE",
		"storage.provider":          "GSTRATES_STORAGE_PROVIDER",
		"storage.local_dir":         "GSTRATES_STORAGE_LOCAL_DIR",
		"s3.region":                 "GSTRATES_S3_REGION",
		"s3.bucket":                 "GSTRATES_S3_BUCKET",
		"s3.endpoint":               "GSTRATES_S3_ENDPOINT",
		"s3.access_key":             "GSTRATES_S3_ACCESS_KEY",
		"s3.secret_key":             "GSTRATES_S3_SECRET_KEY",
		"log.level":                 "GSTRATES_LOG_LEVEL",
		"log.format":                "GSTRATES_LOG_FORMAT",
		"cors.allowed_origins":      "GSTRATES_CORS_ALLOWED_ORIGINS",
		"auth.secret":               "GSTRATES_AUTH_SECRET",
		"auth.issuer":               "GSTRATES_AUTH_ISSUER",
		"auth.token_expiry":         "GSTRATES_AUTH_TOKEN_EXPIRY",
		"resolver.policy_path":      "GSTRATES_RESOLVER_POLICY_PATH",
		"resolver.accept_threshold": "GSTRATES_RESOLVER_ACCEPT_THRESHOLD",
		"resolver.tier_switch":      "GSTRATES_RESOLVER_TIER_SWITCH",
		"resolver.token_bonus":      "GSTRATES_RESOLVER_TOKEN_BONUS",
		"resolver.min_overlap":      "GSTRATES_RESOLVER_MIN_OVERLAP",
		"resolver.top_k":            "GSTRATES_RESOLVER_TOP_K",
		"tax.split_rate":            "GSTRATES_TAX_SPLIT_RATE",
		"ingest.max_file_size_mb":   "GSTRATES_INGEST_MAX_FILE_SIZE_MB",
		"ingest.max_keywords":       "GSTRATES_INGEST_MAX_KEYWORDS",
		"ingest.seed_dir":           "GSTRATES_INGEST_SEED_DIR",
		"ingest.seed_on_start":      "GSTRATES_INGEST_SEED_ON_START",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if GSTRATES_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("GSTRATES_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Driver:     strings.ToLower(v.GetString("db.driver")),
		Host:       v.GetString("db.host"),
		Port:       v.GetInt("db.port"),
		User:       v.GetString("db.user"),
		Password:   v.GetString("db.password"),
		Name:       v.GetString("db.name"),
		SSLMode:    v.GetString("db.sslmode"),
		SQLitePath: v.GetString("db.sqlite_path"),
		MaxOpen:    v.GetInt("db.max_open"),
		MaxIdle:    v.GetInt("db.max_idle"),
	}
	if cfg.DB.Driver != DriverPostgres && cfg.DB.Driver != DriverSQLite {
		return nil, fmt.Errorf("config: unsupported db driver %q", cfg.DB.Driver)
	}
	cfg.Storage = StorageConfig{
		Provider: strings.ToLower(v.GetString("storage.provider")),
		LocalDir: v.GetString("storage.local_dir"),
	}
	cfg.S3 = S3Config{
		Region:    v.GetString("s3.region"),
		Bucket:    v.GetString("s3.bucket"),
		Endpoint:  v.GetString("s3.endpoint"),
		AccessKey: v.GetString("s3.access_key"),
		SecretKey: v.GetString("s3.secret_key"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{AllowedOrigins: corsOrigins}

	cfg.Auth = AuthConfig{
		Secret:      v.GetString("auth.secret"),
		Issuer:      v.GetString("auth.issuer"),
		TokenExpiry: v.GetDuration("auth.token_expiry"),
	}
	cfg.Resolver = ResolverConfig{
		PolicyPath:      v.GetString("resolver.policy_path"),
		AcceptThreshold: v.GetFloat64("resolver.accept_threshold"),
		TierSwitch:      v.GetFloat64("resolver.tier_switch"),
		TokenBonus:      v.GetFloat64("resolver.token_bonus"),
		MinOverlap:      v.GetInt("resolver.min_overlap"),
		TopK:            v.GetInt("resolver.top_k"),
	}
	cfg.Tax = TaxConfig{SplitRate: v.GetBool("tax.split_rate")}
	cfg.Ingest = IngestConfig{
		MaxFileSizeMB: v.GetInt64("ingest.max_file_size_mb"),
		MaxKeywords:   v.GetInt("ingest.max_keywords"),
		SeedDir:       v.GetString("ingest.seed_dir"),
		SeedOnStart:   v.GetBool("ingest.seed_on_start"),
	}

	return cfg, nil
}
