package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Source  SourceConfig  `mapstructure:"source"`
	Storage StorageConfig `mapstructure:"storage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Gallery GalleryConfig `mapstructure:"gallery"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// SourceConfig configures the remote catalog client.
type SourceConfig struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryCount    int           `mapstructure:"retry_count"`
	RetryWaitTime time.Duration `mapstructure:"retry_wait_time"`
	RetryMaxWait  time.Duration `mapstructure:"retry_max_wait"`
	RandomMaxPage int           `mapstructure:"random_max_page"`
}

// StorageConfig selects where the saved-images collection lives.
type StorageConfig struct {
	Driver string `mapstructure:"driver"` // file, sqlite, postgres
	Dir    string `mapstructure:"dir"`    // file driver
	Path   string `mapstructure:"path"`   // sqlite driver
	DSN    string `mapstructure:"dsn"`    // postgres driver
	Key    string `mapstructure:"key"`
}

// CacheConfig selects where downloaded image files live.
type CacheConfig struct {
	Backend string        `mapstructure:"backend"` // local, s3, minio
	Dir     string        `mapstructure:"dir"`
	Timeout time.Duration `mapstructure:"timeout"`
	Object  ObjectConfig  `mapstructure:"object"`
}

type ObjectConfig struct {
	Type      string `mapstructure:"type"` // r2, s3, s3compatible; empty auto-detects
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	Prefix    string `mapstructure:"prefix"`
}

type GalleryConfig struct {
	PageSize int `mapstructure:"page_size"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("source.base_url", "https://picsum.photos")
	v.SetDefault("source.timeout", 15*time.Second)
	v.SetDefault("source.retry_count", 3)
	v.SetDefault("source.retry_wait_time", time.Second)
	v.SetDefault("source.retry_max_wait", 5*time.Second)
	v.SetDefault("source.random_max_page", 100)
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.dir", "./data/store")
	v.SetDefault("storage.path", "./data/mygallery.db")
	v.SetDefault("storage.key", "@MyGallery:images")
	v.SetDefault("cache.backend", "local")
	v.SetDefault("cache.dir", "./data/images")
	v.SetDefault("cache.timeout", 30*time.Second)
	v.SetDefault("cache.object.use_ssl", false)
	v.SetDefault("cache.object.bucket", "mygallery")
	v.SetDefault("cache.object.prefix", "images")
	v.SetDefault("gallery.page_size", 10)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("storage.dsn", "DATABASE_DSN")
	v.BindEnv("cache.object.endpoint", "S3_ENDPOINT")
	v.BindEnv("cache.object.access_key", "S3_ACCESS_KEY")
	v.BindEnv("cache.object.secret_key", "S3_SECRET_KEY")
	v.BindEnv("cache.object.bucket", "S3_BUCKET")
	v.BindEnv("source.base_url", "PICSUM_BASE_URL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects unsupported driver and backend names.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.DSN == "" {
		return fmt.Errorf("storage driver postgres requires storage.dsn")
	}
	switch c.Cache.Backend {
	case "local", "s3", "minio":
	default:
		return fmt.Errorf("unsupported cache backend %q", c.Cache.Backend)
	}
	if c.Gallery.PageSize <= 0 {
		return fmt.Errorf("gallery.page_size must be positive, got %d", c.Gallery.PageSize)
	}
	return nil
}
