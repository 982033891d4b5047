package platform

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"

	"github.com/joho/godotenv"
)

// EnvPrefix marks variables that take priority over the bare names.
const EnvPrefix = "USERKV_"

// ReadEnvFile parses a dotenv file without touching the process
// environment. A missing file yields an empty map unless mustExist is set.
func ReadEnvFile(path string, mustExist bool) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if !mustExist && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return vars, nil
}

// layered looks a name up in the environment first, then in the dotenv
// values.
func layered(lookup func(string) (string, bool), dotenv map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		if v, ok := lookup(name); ok {
			return v, true
		}
		v, ok := dotenv[name]
		return v, ok
	}
}

// getenv returns USERKV_<name> if set, else <name>.
func getenv(lookup func(string) (string, bool), name string) (string, bool) {
	if v, ok := lookup(EnvPrefix + name); ok {
		return v, true
	}
	return lookup(name)
}

// ApplyEnv overlays HOST, PORT, DB, USERNAME, PASSWORD and ADAPTER onto cfg.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	if v, ok := getenv(lookup, "HOST"); ok && v != "" {
		cfg.Connection.Host = v
	}
	if v, ok := getenv(lookup, "PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		cfg.Connection.Port = port
	}
	if v, ok := getenv(lookup, "DB"); ok && v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DB: %w", err)
		}
		cfg.Connection.DB = db
	}
	if v, ok := getenv(lookup, "USERNAME"); ok {
		cfg.Connection.Username = v
	}
	if v, ok := getenv(lookup, "PASSWORD"); ok {
		cfg.Connection.Password = v
	}
	// Only the prefixed form; ADAPTER is too generic a name.
	if v, ok := lookup(EnvPrefix + "ADAPTER"); ok && v != "" {
		cfg.Adapter = v
	}
	return nil
}
