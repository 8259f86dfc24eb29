package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// PortalConfig holds dairy-portal credentials and endpoints
type PortalConfig struct {
	// URL is the portal login page address
	URL string `mapstructure:"url"`
	// APIURL is the base address of the portal's private REST API
	APIURL string `mapstructure:"api_url"`
	// Email and Password are the portal credentials
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
	// ProducerID scopes the production fetch
	ProducerID string `mapstructure:"producer_id"`
	// CompanyID scopes stored records and aggregation
	CompanyID string `mapstructure:"company_id"`
	// LoginTimeout bounds the whole login + token discovery phase
	LoginTimeout time.Duration `mapstructure:"login_timeout"`
	// FetchTimeout bounds the production API request
	FetchTimeout time.Duration `mapstructure:"fetch_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ServerConfig holds HTTP control-surface configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// SchedulerConfig holds the periodic-trigger configuration
type SchedulerConfig struct {
	// Enabled disables all cron triggers when false; webhook triggers still work
	Enabled bool `mapstructure:"enabled"`
	// ExtractSchedule is the cron expression for extraction runs
	ExtractSchedule string `mapstructure:"extract_schedule"`
	// ReportSchedule is the cron expression for daily report dispatch
	ReportSchedule string `mapstructure:"report_schedule"`
	// Timezone anchors cron firing, the fetch date window and report dates
	Timezone string `mapstructure:"timezone"`
}

// Location resolves the configured timezone
func (c *SchedulerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// NotifyConfig holds notification-channel configuration
type NotifyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

// BrowserConfig holds browser-automation configuration
type BrowserConfig struct {
	Headless bool `mapstructure:"headless"`
	// ExecPath overrides the Chrome binary location (empty = auto-discover)
	ExecPath string `mapstructure:"exec_path"`
}

// WorkerConfig holds pipeline-worker configuration
type WorkerConfig struct {
	// MaxBacklog is the number of queued runs accepted beyond the one executing
	MaxBacklog int `mapstructure:"max_backlog"`
}

// ServiceConfig holds configuration for the resident service
type ServiceConfig struct {
	BaseConfig `mapstructure:",squash"`
	Portal     PortalConfig    `mapstructure:"portal"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Server     ServerConfig    `mapstructure:"server"`
	Scheduler  SchedulerConfig `mapstructure:"scheduler"`
	Notify     NotifyConfig    `mapstructure:"notify"`
	Browser    BrowserConfig   `mapstructure:"browser"`
	Worker     WorkerConfig    `mapstructure:"worker"`
}

// Validate checks the settings the service cannot start without
func (c *ServiceConfig) Validate() error {
	if c.Portal.Email == "" || c.Portal.Password == "" {
		return errors.New("portal credentials are not configured")
	}
	if c.Portal.ProducerID == "" {
		return errors.New("portal producer_id is not configured")
	}
	if _, err := c.Scheduler.Location(); err != nil {
		return err
	}
	return nil
}

// LoadServiceConfig loads configuration for the milkroom service
func LoadServiceConfig(configFile string, envPath string) (*ServiceConfig, error) {
	v := configureViper(configFile, envPath)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file is fine, env vars carry everything
	}

	var config ServiceConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("portal.url", "https://uda.milkmoovement.io/#/login")
	v.SetDefault("portal.api_url", "https://uda-api-express.prod.milkmoovement.io")
	v.SetDefault("portal.login_timeout", "90s")
	v.SetDefault("portal.fetch_timeout", "30s")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.idle_timeout", 60)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.extract_schedule", "0 6 * * *")
	v.SetDefault("scheduler.report_schedule", "30 12 * * *")
	v.SetDefault("scheduler.timezone", "America/Phoenix")
	v.SetDefault("notify.enabled", true)
	v.SetDefault("notify.url", "https://ntfy.sh/adc-milk")
	v.SetDefault("browser.headless", true)
	v.SetDefault("worker.max_backlog", 4)
}

func configureViper(configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("MILKROOM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables.
// This is required for viper to map env vars to config struct fields when no
// config file exists.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Portal
		"portal.url",
		"portal.api_url",
		"portal.email",
		"portal.password",
		"portal.producer_id",
		"portal.company_id",
		"portal.login_timeout",
		"portal.fetch_timeout",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Scheduler
		"scheduler.enabled",
		"scheduler.extract_schedule",
		"scheduler.report_schedule",
		"scheduler.timezone",
		// Notifications
		"notify.enabled",
		"notify.url",
		// Browser
		"browser.headless",
		"browser.exec_path",
		// Worker
		"worker.max_backlog",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

func loadEnv(envPath string) {
	if envPath == "" {
		envPath = "config/"
	}

	// Later files override earlier ones
	for _, envFile := range []string{".env", ".env.local"} {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate)
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
