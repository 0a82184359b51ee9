package config

import (
	"encoding/xml"
	"io"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

var (
	cfg  *APIConfig
	once sync.Once
)

// APIConfig represents the root element.
type APIConfig struct {
	XMLName     xml.Name        `xml:"API"`
	RequestDump bool            `xml:"REQUEST_DUMP,attr"`
	Context     ContextConfig   `xml:"CONTEXT"`
	Auth        AuthConfig      `xml:"AUTHENTICATION"`
	DB          DBConfig        `xml:"DB"`
	Session     SessionConfig   `xml:"SESSION"`
	RateLimit   RateLimitConfig `xml:"RATE_LIMIT"`
	Logging     LoggingConfig   `xml:"LOGGING"`
}

// ContextConfig holds basic server settings.
type ContextConfig struct {
	Port     int    `xml:"PORT"`
	Host     string `xml:"HOST"`
	TimeZone string `xml:"TIME_ZONE"`
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	AccessSecret  string `xml:"ACCESS_SECRET"`
	RefreshSecret string `xml:"REFRESH_SECRET"`
}

// DBConfig holds database connection settings.
type DBConfig struct {
	Initialize bool         `xml:"INITIALIZE"`
	Host       string       `xml:"HOST"`
	Port       int          `xml:"PORT"`
	Name       string       `xml:"NAME"`
	SSLMode    string       `xml:"SSL_MODE"`
	Username   string       `xml:"USERNAME"`
	Password   string       `xml:"PASSWORD"`
	Pool       DBPoolConfig `xml:"POOL"`
}

// DBPoolConfig holds database connection pooling settings.
type DBPoolConfig struct {
	MaxOpenConns    int `xml:"MAX_OPEN_CONNS"`
	MaxIdleConns    int `xml:"MAX_IDLE_CONNS"`
	ConnMaxLifetime int `xml:"CONN_MAX_LIFETIME"`
}

// SessionConfig holds exercise-session settings.
type SessionConfig struct {
	TTLHours           int `xml:"TTL_HOURS"`            // attempt time-to-live, default 24
	SweepIntervalMins  int `xml:"SWEEP_INTERVAL_MINS"`  // 0 disables the eager sweep
	DefaultPassingPerc int `xml:"DEFAULT_PASSING_PERC"` // used by seeding only
}

// RateLimitConfig holds request throttling settings.
type RateLimitConfig struct {
	RequestsPerSecond float64 `xml:"REQUESTS_PER_SECOND"`
	Burst             int     `xml:"BURST"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Dir        string `xml:"DIR"`
	MaxSizeMB  int    `xml:"MAX_SIZE_MB"`
	MaxBackups int    `xml:"MAX_BACKUPS"`
	MaxAgeDays int    `xml:"MAX_AGE_DAYS"`
}

// LoadConfig loads and parses the XML configuration from the given file.
// Values from the environment (optionally a .env file) override secrets.
func LoadConfig(xmlPath string) (*APIConfig, error) {
	once.Do(func() {
		f, err := os.Open(xmlPath)
		if err != nil {
			return
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return
		}

		var newCfg APIConfig
		if err := xml.Unmarshal(data, &newCfg); err != nil {
			return
		}

		applyDefaults(&newCfg)
		applyEnvOverrides(&newCfg)
		cfg = &newCfg
	})

	if cfg == nil {
		return nil, os.ErrInvalid
	}
	return cfg, nil
}

// GetConfig returns the loaded configuration.
func GetConfig() *APIConfig {
	return cfg
}

func applyDefaults(c *APIConfig) {
	if c.Session.TTLHours <= 0 {
		c.Session.TTLHours = 24
	}
	if c.Session.DefaultPassingPerc <= 0 {
		c.Session.DefaultPassingPerc = 70
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = 20
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = 40
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
}

func applyEnvOverrides(c *APIConfig) {
	_ = godotenv.Load()

	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.DB.Password = v
	}
	if v := os.Getenv("DB_HOST"); v != "" {
		c.DB.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.DB.Port = p
		}
	}
	if v := os.Getenv("JWT_ACCESS_SECRET"); v != "" {
		c.Auth.AccessSecret = v
	}
	if v := os.Getenv("JWT_REFRESH_SECRET"); v != "" {
		c.Auth.RefreshSecret = v
	}
}
