package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/userkv/pkg/core"
)

// Adapter names.
const (
	AdapterRedis  = "redis"
	AdapterMemory = "memory"
)

// ConfigFileNames are the names FindConfigFile looks for, in order.
var ConfigFileNames = []string{"userkv.yaml", "userkv.yml", "userkv.json"}

// Connection holds the store connection parameters.
type Connection struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	DB       int    `json:"db" yaml:"db"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
}

// Addr returns host:port.
func (c Connection) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// Config is the complete runtime configuration.
type Config struct {
	Adapter    string        `json:"adapter" yaml:"adapter"`
	Connection Connection    `json:"connection" yaml:"connection"`
	Settings   core.Settings `json:"settings" yaml:"settings"`
}

// DefaultConfig targets a local server on the default port and database 0.
func DefaultConfig() Config {
	return Config{
		Adapter: AdapterRedis,
		Connection: Connection{
			Host: "127.0.0.1",
			Port: 6379,
		},
		Settings: core.DefaultSettings(),
	}
}

// Validate reports the first invalid value.
func (c Config) Validate() error {
	switch c.Adapter {
	case AdapterRedis, AdapterMemory:
	default:
		return fmt.Errorf("unknown adapter: %s", c.Adapter)
	}
	if c.Connection.Host == "" {
		return errors.New("host cannot be empty")
	}
	if c.Connection.Port <= 0 || c.Connection.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Connection.Port)
	}
	if c.Connection.DB < 0 {
		return fmt.Errorf("invalid db: %d", c.Connection.DB)
	}
	if c.Settings.TopLimit <= 0 {
		return fmt.Errorf("invalid top_limit: %d", c.Settings.TopLimit)
	}
	return nil
}

// LoadConfigFile overlays the file at path onto cfg. YAML files are decoded
// with yaml.v3; JSON files may carry comments and trailing commas.
func LoadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".json":
		std, err := hujson.Standardize(data)
		if err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := json.Unmarshal(std, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format: %s", path)
	}
	return nil
}

// LoadOptions tells LoadConfig where to look.
type LoadOptions struct {
	// ConfigFile is read when set; otherwise FindConfigFile searches upward
	// from Dir and a missing file is not an error.
	ConfigFile string

	// EnvFile is read when set; otherwise Dir/.env is read if it exists.
	EnvFile string

	// Dir defaults to the working directory.
	Dir string

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// LoadConfig builds a Config from, lowest to highest precedence, the
// defaults, a config file, a dotenv file and the environment.
func LoadConfig(lo LoadOptions) (Config, error) {
	cfg := DefaultConfig()

	dir := lo.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return cfg, err
		}
		dir = wd
	}

	path := lo.ConfigFile
	if path == "" {
		found, err := FindConfigFile(dir)
		if err != nil && !errors.Is(err, ErrConfigNotFound) {
			return cfg, err
		}
		path = found
	}
	if path != "" {
		if err := LoadConfigFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	envFile := lo.EnvFile
	mustExist := envFile != ""
	if envFile == "" {
		envFile = filepath.Join(dir, ".env")
	}
	dotenv, err := ReadEnvFile(envFile, mustExist)
	if err != nil {
		return cfg, err
	}

	lookup := lo.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := ApplyEnv(&cfg, layered(lookup, dotenv)); err != nil {
		return cfg, err
	}

	return cfg, cfg.Validate()
}
