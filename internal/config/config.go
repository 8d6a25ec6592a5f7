package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/user/agentcatalog/internal/telemetry"
)

const (
	EnvPrefix = "AGENTCATALOG"
	FileName  = "agentcatalog"

	DefaultAddr         = "127.0.0.1:8765"
	DefaultTemplatesDir = "templates"
	DefaultDBPath       = "agentcatalog.db"
)

type Config struct {
	TemplatesDir   string        `mapstructure:"templates_dir"`
	FrameworksFile string        `mapstructure:"frameworks_file"`
	Addr           string        `mapstructure:"addr"`
	StaticDir      string        `mapstructure:"static_dir"`
	Watch          bool          `mapstructure:"watch"`
	DBPath         string        `mapstructure:"db_path"`
	Log            LogConfig     `mapstructure:"log"`
	Publish        PublishConfig `mapstructure:"publish"`

	// ConfigFile is the file that was read, if any.
	ConfigFile string `mapstructure:"-"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type PublishConfig struct {
	Bucket string `mapstructure:"bucket"`
	Prefix string `mapstructure:"prefix"`
	Region string `mapstructure:"region"`
}

// NewViper returns a viper instance with defaults, environment binding and
// the config file (explicit path, ./agentcatalog.yaml or
// $HOME/.config/agentcatalog/agentcatalog.yaml) already read.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("templates_dir", DefaultTemplatesDir)
	v.SetDefault("frameworks_file", "")
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("static_dir", "")
	v.SetDefault("watch", false)
	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("publish.bucket", "")
	v.SetDefault("publish.prefix", "")
	v.SetDefault("publish.region", "")
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.TemplatesDir) == "" {
		return errors.New("templates_dir must not be empty")
	}
	_, portText, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return fmt.Errorf("invalid addr %q: %w", c.Addr, err)
	}
	port, err := strconv.Atoi(portText)
	if err != nil || port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %q: must be between 0 and 65535", portText)
	}
	if _, err := telemetry.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format %q: must be json or text", c.Log.Format)
	}
	return nil
}
