package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
	Mail      MailConfig      `yaml:"mail"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Admin     AdminConfig     `yaml:"admin"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	BodyLimit    int           `yaml:"body_limit"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	AllowOrigins string        `yaml:"allow_origins"`
}

type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// Enabled reports whether a redis address is configured.
func (r RedisConfig) Enabled() bool {
	return r.Address != ""
}

type AuthConfig struct {
	JWTSecret       string        `yaml:"jwt_secret"`
	TokenTTL        time.Duration `yaml:"token_ttl"`
	VerificationTTL time.Duration `yaml:"verification_ttl"`
	VerifyURL       string        `yaml:"verify_url"`
}

type RateLimitConfig struct {
	Enabled  bool          `yaml:"enabled"`
	RPS      float64       `yaml:"rps"`
	Burst    int           `yaml:"burst"`
	Requests int           `yaml:"requests"`
	Window   time.Duration `yaml:"window"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MailConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// Enabled reports whether an SMTP host is configured.
func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

type JobsConfig struct {
	ReminderSpec string        `yaml:"reminder_spec"`
	ReminderLead time.Duration `yaml:"reminder_lead"`
}

type CatalogConfig struct {
	SeedDefaults bool `yaml:"seed_defaults"`
}

// AdminConfig names the account promoted to SUPER_ADMIN on a store without admins.
type AdminConfig struct {
	BootstrapEmail    string `yaml:"bootstrap_email"`
	BootstrapPassword string `yaml:"bootstrap_password"`
}

// Load reads the YAML config at configPath, expanding ${VAR} references
// from the environment and an optional .env file.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes raw YAML into a validated Config.
func Parse(data []byte) (*Config, error) {
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return errors.New("auth jwt_secret must be at least 16 characters")
	}
	if c.RateLimit.Enabled && c.RateLimit.RPS <= 0 && !c.Redis.Enabled() {
		return errors.New("rate_limit.rps must be positive")
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "carehub"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.BodyLimit == 0 {
		c.Server.BodyLimit = 4 * 1024 * 1024
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.AllowOrigins == "" {
		c.Server.AllowOrigins = "*"
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 10
	}
	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 72 * time.Hour
	}
	if c.Auth.VerificationTTL == 0 {
		c.Auth.VerificationTTL = 24 * time.Hour
	}
	if c.Auth.VerifyURL == "" {
		c.Auth.VerifyURL = fmt.Sprintf("http://localhost:%d/auth/verify-email", c.Server.Port)
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 120
	}
	if c.RateLimit.Window == 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Mail.Port == 0 {
		c.Mail.Port = 587
	}
	if c.Jobs.ReminderSpec == "" {
		c.Jobs.ReminderSpec = "*/15 * * * *"
	}
	if c.Jobs.ReminderLead == 0 {
		c.Jobs.ReminderLead = 24 * time.Hour
	}
}
