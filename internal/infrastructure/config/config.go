package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Static   StaticConfig   `mapstructure:"static"`
	Logger   LoggerConfig   `mapstructure:"logger"`
	Security SecurityConfig `mapstructure:"security"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment" validate:"oneof=development staging production test"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	// BodyLimit caps request bodies, e.g. "2M". Empty means unlimited.
	BodyLimit string `mapstructure:"body_limit"`
}

// StoreConfig holds record store configuration
type StoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
	// Strict serializes mutations and writes atomically. Off by default,
	// in which case concurrent writers can lose each other's changes.
	Strict     bool   `mapstructure:"strict"`
	IDStrategy string `mapstructure:"id_strategy" validate:"oneof=timestamp uuid"`
}

// StaticConfig holds the locations of the two static assets
type StaticConfig struct {
	Dir        string `mapstructure:"dir"`
	Index      string `mapstructure:"index" validate:"required"`
	Stylesheet string `mapstructure:"stylesheet" validate:"required"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level" validate:"oneof=debug info warn error dpanic panic fatal"`
	Format   string `mapstructure:"format" validate:"oneof=json console"`
	Output   string `mapstructure:"output" validate:"oneof=stdout file"`
	Filename string `mapstructure:"filename" validate:"required_if=Output file"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins" validate:"required"`
	RateLimitEnabled   bool          `mapstructure:"rate_limit_enabled"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window" validate:"min=0"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"startswith=/"`
}

// Loader reads configuration from defaults, the environment, an optional
// .env file and an optional config file
type Loader struct {
	v          *viper.Viper
	configFile string
}

// NewLoader creates a loader. configFile may be empty.
func NewLoader(configFile string) *Loader {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	return &Loader{v: v, configFile: configFile}
}

// Load loads configuration from various sources
func Load(configFile string) (*Config, error) {
	return NewLoader(configFile).Load()
}

// Load reads the config file, if any, and returns the validated configuration
func (l *Loader) Load() (*Config, error) {
	if l.configFile != "" {
		if err := l.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return l.decode()
}

// OnChange watches the config file and calls fn with the re-read
// configuration after every change. Invalid revisions are passed to onError
// and otherwise ignored. It does nothing without a config file.
func (l *Loader) OnChange(fn func(*Config), onError func(error)) {
	if l.configFile == "" {
		return
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := l.decode()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		fn(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "RecipeBox")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")

	// Server defaults
	v.SetDefault("server.port", 7000)
	v.SetDefault("server.host", "")
	v.SetDefault("server.read_timeout", "0s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.body_limit", "")

	// Store defaults
	v.SetDefault("store.path", "recipes.json")
	v.SetDefault("store.strict", false)
	v.SetDefault("store.id_strategy", "timestamp")

	// Static defaults
	v.SetDefault("static.dir", ".")
	v.SetDefault("static.index", "index.html")
	v.SetDefault("static.stylesheet", "style.css")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "*")
	v.SetDefault("security.rate_limit_enabled", false)
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "APP_NAME")
	v.BindEnv("app.version", "APP_VERSION")
	v.BindEnv("app.environment", "APP_ENVIRONMENT")

	// Server
	v.BindEnv("server.port", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")
	v.BindEnv("server.body_limit", "SERVER_BODY_LIMIT")

	// Store
	v.BindEnv("store.path", "STORE_PATH")
	v.BindEnv("store.strict", "STORE_STRICT")
	v.BindEnv("store.id_strategy", "STORE_ID_STRATEGY")

	// Static
	v.BindEnv("static.dir", "STATIC_DIR")
	v.BindEnv("static.index", "STATIC_INDEX")
	v.BindEnv("static.stylesheet", "STATIC_STYLESHEET")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Security
	v.BindEnv("security.cors_allowed_origins", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("security.rate_limit_enabled", "RATE_LIMIT_ENABLED")
	v.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")

	// Metrics
	v.BindEnv("metrics.enabled", "ENABLE_METRICS")
	v.BindEnv("metrics.path", "METRICS_PATH")
}

var validate = validator.New()

func validateConfig(cfg *Config) error {
	return validate.Struct(cfg)
}

// Address returns the listen address
func (cfg *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// CORSOrigin returns the value sent in Access-Control-Allow-Origin
func (cfg *SecurityConfig) CORSOrigin() string {
	return strings.TrimSpace(strings.Split(cfg.CORSAllowedOrigins, ",")[0])
}
