package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"data_logger/internal/logger"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "DATALOGGER"

// Defaults match the fixed values of the original bench tool.
const (
	DefaultBaudRate        = 9600
	DefaultTimeoutSeconds  = 2.0
	DefaultIntervalSeconds = 1.0
	DefaultHTTPPort        = "8080"
	DefaultExportPath      = "sensor_data.csv"
)

// Config is the resolved application configuration.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Serial SerialConfig `mapstructure:"serial"`
	Poll   PollConfig   `mapstructure:"poll"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Export ExportConfig `mapstructure:"export"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type SerialConfig struct {
	BaudRate       int     `mapstructure:"baud_rate"`
	TimeoutSeconds float64 `mapstructure:"timeout_seconds"`
}

// ReadTimeout converts the configured seconds into a duration.
func (s SerialConfig) ReadTimeout() time.Duration {
	return secondsToDuration(s.TimeoutSeconds)
}

type PollConfig struct {
	IntervalSeconds float64 `mapstructure:"interval_seconds"`
}

// Interval converts the configured seconds into a duration.
func (p PollConfig) Interval() time.Duration {
	return secondsToDuration(p.IntervalSeconds)
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

type ExportConfig struct {
	Path string `mapstructure:"path"`
}

// flagKeys maps config keys to the CLI flag names that may override them.
var flagKeys = map[string]string{
	"log.level":              "log-level",
	"serial.baud_rate":       "baud",
	"serial.timeout_seconds": "timeout",
	"poll.interval_seconds":  "interval",
	"http.port":              "http-port",
	"export.path":            "out",
}

// Load resolves configuration from defaults, the config file, DATALOGGER_*
// environment variables and the given flags (highest precedence). When
// cfgFile is empty, configs/config.yml and ./config.yml are tried; a
// missing default file is not an error.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %q: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("serial.baud_rate", DefaultBaudRate)
	v.SetDefault("serial.timeout_seconds", DefaultTimeoutSeconds)
	v.SetDefault("poll.interval_seconds", DefaultIntervalSeconds)
	v.SetDefault("http.port", DefaultHTTPPort)
	v.SetDefault("export.path", DefaultExportPath)
}

// Validate rejects values the serial layer cannot work with.
func (c *Config) Validate() error {
	if !logger.IsValidLevel(strings.ToLower(c.Log.Level)) {
		return fmt.Errorf("invalid log.level %q", c.Log.Level)
	}
	if c.Serial.BaudRate <= 0 {
		return fmt.Errorf("serial.baud_rate must be > 0, got %d", c.Serial.BaudRate)
	}
	if c.Serial.TimeoutSeconds <= 0 {
		return fmt.Errorf("serial.timeout_seconds must be > 0, got %v", c.Serial.TimeoutSeconds)
	}
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("poll.interval_seconds must be > 0, got %v", c.Poll.IntervalSeconds)
	}
	if strings.TrimSpace(c.Export.Path) == "" {
		return errors.New("export.path must not be empty")
	}
	return nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
