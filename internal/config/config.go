package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Session SessionConfig `mapstructure:"session"`
	Cache   CacheConfig   `mapstructure:"cache"`
	OIDC    OIDCConfig    `mapstructure:"oidc"`
	Log     LogConfig     `mapstructure:"log"`
	Author  AuthorConfig  `mapstructure:"author"`
	Blog    BlogConfig    `mapstructure:"blog"`
	Store   StoreConfig   `mapstructure:"store"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	Port    string    `mapstructure:"port"`
	BaseURL string    `mapstructure:"base_url"`
	TLS     TLSConfig `mapstructure:"tls"`
}

// TLSConfig holds TLS-specific configuration.
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"certFile"`
	KeyFile  string `mapstructure:"keyFile"`
}

// DBConfig holds database-specific configuration.
type DBConfig struct {
	Driver     string `mapstructure:"driver"` // "mysql" or "sqlite3"
	DSN        string `mapstructure:"dsn"`
	Migrations string `mapstructure:"migrations"`
}

// SessionConfig holds session cookie configuration.
type SessionConfig struct {
	SecretKey string `mapstructure:"secret_key"`
	Lifetime  int    `mapstructure:"lifetime"` // hours
}

// CacheConfig holds configuration for the SQLite read cache.
type CacheConfig struct {
	FilePath string        `mapstructure:"file_path"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// OIDCConfig holds OIDC client configuration. An empty IssuerURL disables OIDC login.
type OIDCConfig struct {
	IssuerURL    string `mapstructure:"issuer_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`  // e.g., "debug", "info", "warn", "error"
	Format string `mapstructure:"format"` // e.g., "json", "console"
}

// AuthorConfig identifies the single account allowed to publish.
// Both the username and the numeric id must match.
type AuthorConfig struct {
	Username string `mapstructure:"username"`
	UserID   int64  `mapstructure:"user_id"`
	Password string `mapstructure:"password"`
}

// BlogConfig holds content-related settings.
type BlogConfig struct {
	Categories      []string `mapstructure:"categories"`
	PostsPerPage    int      `mapstructure:"posts_per_page"`
	CommentsPerPage int      `mapstructure:"comments_per_page"`
}

// StoreConfig controls how write transactions are retried.
type StoreConfig struct {
	MaxAttempts uint `mapstructure:"max_attempts"`
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	// A missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	// Set default values
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.base_url", "http://localhost:8080")
	viper.SetDefault("db.driver", "mysql")
	viper.SetDefault("db.dsn", "root:root@tcp(localhost:3306)/blog?parseTime=true")
	viper.SetDefault("db.migrations", "migrations")
	viper.SetDefault("session.lifetime", 24)
	viper.SetDefault("cache.file_path", "blog-cache.db")
	viper.SetDefault("cache.ttl", "10m")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("author.username", "Dexter")
	viper.SetDefault("author.user_id", 1)
	viper.SetDefault("blog.categories", []string{"前端", "后台", "机器学习", "数据分析"})
	viper.SetDefault("blog.posts_per_page", 8)
	viper.SetDefault("blog.comments_per_page", 15)
	viper.SetDefault("store.max_attempts", 3)

	// Set up viper to read from config file
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("/etc/go-blog-app/")
	viper.AddConfigPath("$HOME/.go-blog-app")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return nil, err
		}
		// Config file not found; proceed with defaults and env vars
	}

	// Set up viper to read from environment variables
	viper.SetEnvPrefix("BLOG")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Unmarshal the config into the Config struct
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
