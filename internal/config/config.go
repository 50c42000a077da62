package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/controlai/controlai/internal/logger"
)

const envPrefix = "CONTROLAI"

type DBConfig struct {
	Source            string        `yaml:"source" toml:"source"`
	MaxOpenConns      int           `yaml:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns      int           `yaml:"max_idle_conns" toml:"max_idle_conns"`
	ConnMaxLifetime   time.Duration `yaml:"conn_max_lifetime" toml:"conn_max_lifetime"`
	ConnMaxIdleTime   time.Duration `yaml:"conn_max_idle_time" toml:"conn_max_idle_time"`
	JournalMode       string        `yaml:"journal_mode" toml:"journal_mode"`
	Synchronous       string        `yaml:"synchronous" toml:"synchronous"`
	CacheSize         int           `yaml:"cache_size" toml:"cache_size"`
	BusyTimeout       int           `yaml:"busy_timeout" toml:"busy_timeout"`
	WALAutocheckpoint int           `yaml:"wal_autocheckpoint" toml:"wal_autocheckpoint"`
	TempStore         string        `yaml:"temp_store" toml:"temp_store"`
}

type ServerConfig struct {
	Port              string        `yaml:"port" toml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" toml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" toml:"shutdown_timeout"`
	SessionTTL        time.Duration `yaml:"session_ttl" toml:"session_ttl"`
	SessionSweep      time.Duration `yaml:"session_sweep" toml:"session_sweep"`
}

// AMQPConfig is optional. An empty URL disables event publishing.
type AMQPConfig struct {
	URL      string `yaml:"url" toml:"url"`
	Exchange string `yaml:"exchange" toml:"exchange"`
}

type Config struct {
	DB     DBConfig      `yaml:"db" toml:"db"`
	Server ServerConfig  `yaml:"server" toml:"server"`
	AMQP   AMQPConfig    `yaml:"amqp" toml:"amqp"`
	Logger logger.Config `yaml:"logger" toml:"logger"`
}

const (
	defaultDBSource          = "controlai.db"
	defaultJournalMode       = "WAL"
	defaultSynchronous       = "NORMAL"
	defaultBusyTimeout       = 5000
	defaultPort              = "3333"
	defaultReadHeaderTimeout = 3 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultSessionTTL        = 7 * 24 * time.Hour
	defaultSessionSweep      = time.Hour
	defaultAMQPExchange      = "controlai"
	defaultLogLevel          = logger.LevelInfo
	defaultLogFormat         = logger.FormatText
	defaultLogOutput         = "stdout"
)

func defaults() *Config {
	return &Config{
		DB: DBConfig{
			Source:      defaultDBSource,
			JournalMode: defaultJournalMode,
			Synchronous: defaultSynchronous,
			BusyTimeout: defaultBusyTimeout,
		},
		Server: ServerConfig{
			Port:              defaultPort,
			ReadHeaderTimeout: defaultReadHeaderTimeout,
			ShutdownTimeout:   defaultShutdownTimeout,
			SessionTTL:        defaultSessionTTL,
			SessionSweep:      defaultSessionSweep,
		},
		AMQP: AMQPConfig{
			Exchange: defaultAMQPExchange,
		},
		Logger: logger.Config{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			Output: defaultLogOutput,
		},
	}
}

// Parse builds the configuration from defaults, then the optional file at
// path (YAML or TOML by extension), then CONTROLAI_* environment variables.
// A missing file is not an error.
func Parse(path string) (*Config, error) {
	conf := defaults()

	if path != "" {
		if err := conf.parseFile(path); err != nil {
			return nil, err
		}
	}

	conf.parseEnv()

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

func (c *Config) parseFile(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(content, c)
	case ".yml", ".yaml":
		err = yaml.Unmarshal(content, c)
	default:
		return fmt.Errorf("unsupported config file extension %q", filepath.Ext(path))
	}

	if err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) parseEnv() {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if v.IsSet("db") {
		c.DB.Source = v.GetString("db")
	}
	if v.IsSet("db_max_open_conns") {
		c.DB.MaxOpenConns = v.GetInt("db_max_open_conns")
	}
	if v.IsSet("db_busy_timeout") {
		c.DB.BusyTimeout = v.GetInt("db_busy_timeout")
	}
	if v.IsSet("db_journal_mode") {
		c.DB.JournalMode = v.GetString("db_journal_mode")
	}

	if v.IsSet("port") {
		c.Server.Port = v.GetString("port")
	}
	if v.IsSet("session_ttl") {
		c.Server.SessionTTL = v.GetDuration("session_ttl")
	}

	if v.IsSet("amqp_url") {
		c.AMQP.URL = v.GetString("amqp_url")
	}
	if v.IsSet("amqp_exchange") {
		c.AMQP.Exchange = v.GetString("amqp_exchange")
	}

	if v.IsSet("log_level") {
		c.Logger.Level = logger.Level(v.GetString("log_level"))
	}
	if v.IsSet("log_format") {
		c.Logger.Format = logger.Format(v.GetString("log_format"))
	}
	if v.IsSet("log_output") {
		c.Logger.Output = v.GetString("log_output")
	}
}

// Validate reports every problem found, not just the first one.
func (c *Config) Validate() error {
	var problems []string

	if c.DB.Source == "" {
		problems = append(problems, "database source cannot be empty")
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Server.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.Server.SessionTTL <= 0 {
		problems = append(problems, "session ttl must be positive")
	}

	if c.Server.SessionSweep <= 0 {
		problems = append(problems, "session sweep interval must be positive")
	}

	if c.AMQP.URL != "" {
		if parsedURL, err := url.Parse(c.AMQP.URL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQP.URL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQP.Exchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return nil
}
