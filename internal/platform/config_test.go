package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// isolated returns a directory that FindConfigFile will not search above.
func isolated(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(LoadOptions{Dir: isolated(t), LookupEnv: env(nil)})
	require.NoError(t, err)
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("LoadConfig() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "127.0.0.1:6379", cfg.Connection.Addr())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := isolated(t)
	writeFile(t, dir, "userkv.yaml", `
connection:
  host: file-host
  port: 7000
  db: 1
settings:
  leaderboard: scores
  scan:
    count: 500
`)
	writeFile(t, dir, ".env", "PORT=7001\nUSERNAME=dotenv-user\nPASSWORD=\"secret\"\n")

	cfg, err := LoadConfig(LoadOptions{
		Dir: dir,
		LookupEnv: env(map[string]string{
			"USERNAME":        "env-user",
			"USERKV_USERNAME": "prefixed-user",
			"DB":              "3",
		}),
	})
	require.NoError(t, err)

	assert.Equal(t, "file-host", cfg.Connection.Host)
	assert.Equal(t, 7001, cfg.Connection.Port)
	assert.Equal(t, 3, cfg.Connection.DB)
	assert.Equal(t, "prefixed-user", cfg.Connection.Username)
	assert.Equal(t, "secret", cfg.Connection.Password)

	assert.Equal(t, "scores", cfg.Settings.Leaderboard)
	assert.Equal(t, int64(500), cfg.Settings.Scan.Count)
	// Untouched keys keep their defaults.
	assert.Equal(t, "user:*", cfg.Settings.Scan.Match)
	assert.Equal(t, "user_index", cfg.Settings.IndexName)
}

func TestLoadConfig_JSONC(t *testing.T) {
	dir := isolated(t)
	path := writeFile(t, dir, "custom.json", `{
  // local memory store
  "adapter": "memory",
  "connection": {"port": 6380,},
}`)

	cfg, err := LoadConfig(LoadOptions{Dir: dir, ConfigFile: path, LookupEnv: env(nil)})
	require.NoError(t, err)
	assert.Equal(t, AdapterMemory, cfg.Adapter)
	assert.Equal(t, 6380, cfg.Connection.Port)
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Run("Missing Explicit Config", func(t *testing.T) {
		_, err := LoadConfig(LoadOptions{Dir: isolated(t), ConfigFile: "nope.yaml", LookupEnv: env(nil)})
		assert.Error(t, err)
	})

	t.Run("Missing Explicit Env File", func(t *testing.T) {
		_, err := LoadConfig(LoadOptions{Dir: isolated(t), EnvFile: "nope.env", LookupEnv: env(nil)})
		assert.Error(t, err)
	})

	t.Run("Bad Port", func(t *testing.T) {
		_, err := LoadConfig(LoadOptions{Dir: isolated(t), LookupEnv: env(map[string]string{"PORT": "http"})})
		assert.ErrorContains(t, err, "PORT")
	})

	t.Run("Port Out Of Range", func(t *testing.T) {
		_, err := LoadConfig(LoadOptions{Dir: isolated(t), LookupEnv: env(map[string]string{"PORT": "70000"})})
		assert.ErrorContains(t, err, "invalid port")
	})

	t.Run("Unknown Adapter", func(t *testing.T) {
		_, err := LoadConfig(LoadOptions{Dir: isolated(t), LookupEnv: env(map[string]string{"USERKV_ADAPTER": "etcd"})})
		assert.ErrorContains(t, err, "unknown adapter")
	})

	t.Run("Zero Top Limit", func(t *testing.T) {
		dir := isolated(t)
		path := writeFile(t, dir, "userkv.yaml", "settings:\n  top_limit: 0\n")
		_, err := LoadConfig(LoadOptions{Dir: dir, ConfigFile: path, LookupEnv: env(nil)})
		assert.ErrorContains(t, err, "invalid top_limit")
	})

	t.Run("Unsupported Format", func(t *testing.T) {
		dir := isolated(t)
		path := writeFile(t, dir, "userkv.toml", "")
		_, err := LoadConfig(LoadOptions{Dir: dir, ConfigFile: path, LookupEnv: env(nil)})
		assert.ErrorContains(t, err, "unsupported config format")
	})
}
