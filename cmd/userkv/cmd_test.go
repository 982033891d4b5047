package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/userkv/pkg/core"
)

const users = `user:1 first_name "Peter" last_name "Cooper" email "pcooper@example.com" latitude "48.8" longitude "2.3"
user:2 first_name "Ana" last_name "Ivanova" email "ana@example.com"
user:3
user:4 first_name "Li" last_name "Wei" email "li@example.com"
`

type harness struct {
	t      *testing.T
	srv    *miniredis.Miniredis
	dir    string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0755))
	return &harness{t: t, srv: miniredis.RunT(t), dir: dir}
}

func (h *harness) app() *app {
	a := newApp(strings.NewReader(""), &h.stdout, &h.stderr)
	a.dir = h.dir
	a.lookupEnv = func(string) (string, bool) { return "", false }
	return a
}

// run executes one command line against the test server.
func (h *harness) run(args ...string) error {
	h.t.Helper()
	return h.runAt(h.srv.Host(), h.srv.Port(), args...)
}

// runAt executes one command line against host:port.
func (h *harness) runAt(host, port string, args ...string) error {
	h.t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()

	root := newRootCmd(h.app())
	root.SetArgs(append([]string{"--host", host, "--port", port}, args...))
	return root.ExecuteContext(context.Background())
}

func (h *harness) writeFile(name, content string) string {
	h.t.Helper()
	path := filepath.Join(h.dir, name)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(h.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadAndQuery(t *testing.T) {
	h := newHarness(t)
	path := h.writeFile("data/users.txt", users)

	require.NoError(t, h.run("load", filepath.Join(h.dir, "**", "*.txt")))
	assert.Equal(t, path+": 3 stored, 1 skipped\n", h.stdout.String())
	assert.Equal(t, "Peter", h.srv.HGet("user:1", "first_name"))

	t.Run("User", func(t *testing.T) {
		require.NoError(t, h.run("user", "2"))
		assert.Equal(t, "email: ana@example.com\nfirst_name: Ana\nlast_name: Ivanova\n", h.stdout.String())
	})

	t.Run("User JSON", func(t *testing.T) {
		require.NoError(t, h.run("user", "1", "--format", "json"))
		var fields map[string]string
		require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &fields))
		assert.Equal(t, "Cooper", fields["last_name"])
	})

	t.Run("Missing User", func(t *testing.T) {
		err := h.run("user", "404")
		require.Error(t, err)
		assert.ErrorIs(t, err, core.ErrNotFound)

		var ce *commandError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, "reading user", ce.action)
	})

	t.Run("Coordinates", func(t *testing.T) {
		require.NoError(t, h.run("coords", "1"))
		assert.Equal(t, "longitude: 2.3\nlatitude: 48.8\n", h.stdout.String())
	})

	t.Run("Even", func(t *testing.T) {
		require.NoError(t, h.run("even", "--count", "1"))
		assert.Equal(t, "user:2 Ivanova\nuser:4 Wei\n", h.stdout.String())
	})

	t.Run("Even YAML", func(t *testing.T) {
		require.NoError(t, h.run("even", "--field", "email", "--format", "yaml"))
		var res core.ScanResult
		require.NoError(t, yaml.Unmarshal(h.stdout.Bytes(), &res))
		assert.Equal(t, []string{"user:2", "user:4"}, res.Keys)
		assert.Equal(t, []string{"ana@example.com", "li@example.com"}, res.Values)
	})

	t.Run("Output File", func(t *testing.T) {
		out := filepath.Join(h.dir, "out", "user.json")
		require.NoError(t, os.MkdirAll(filepath.Dir(out), 0755))

		require.NoError(t, h.run("user", "4", "--format", "json", "--output", out))
		assert.Empty(t, h.stdout.String())

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), `"last_name": "Wei"`)
	})
}

func TestLoad_NoMatch(t *testing.T) {
	h := newHarness(t)
	err := h.run("load", filepath.Join(h.dir, "*.txt"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no files match")
}

func TestScoresAndTop(t *testing.T) {
	h := newHarness(t)
	h.srv.HSet("user:1", "email", "one@example.com")
	h.srv.HSet("user:2", "email", "two@example.com")
	path := h.writeFile("scores.txt", "1 120\n2 340\nnot-a-score\n3 15\n")

	require.NoError(t, h.run("scores", path))
	assert.Equal(t, path+": 3 stored, 1 skipped\n", h.stdout.String())

	require.NoError(t, h.run("top", "-n", "2"))
	assert.Equal(t, "1. 2 340 two@example.com\n2. 1 120 one@example.com\n", h.stdout.String())

	t.Run("Other Leaderboard", func(t *testing.T) {
		require.NoError(t, h.run("scores", path, "--key", "season-2"))
		score, err := h.srv.ZScore("season-2", "3")
		require.NoError(t, err)
		assert.Equal(t, 15.0, score)

		require.NoError(t, h.run("top", "--key", "empty-board"))
		assert.Empty(t, h.stdout.String())
	})
}

func TestSearch_WithoutSearchModule(t *testing.T) {
	h := newHarness(t)

	err := h.run("search", "--country", "Peru")
	require.Error(t, err)

	var ce *commandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "searching users", ce.action)

	var qe *core.QueryError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "ft.create", qe.Op)
}

func TestSearch_MemoryAdapter(t *testing.T) {
	h := newHarness(t)
	err := h.run("--adapter", "memory", "search")
	assert.ErrorIs(t, err, core.ErrUnsupported)
}

func TestStatus(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("status", "--format", "json"))

	var state struct {
		StoreType  string `json:"store_type"`
		Searchable bool   `json:"searchable"`
		StoreState struct {
			Addr string `json:"addr"`
		} `json:"store_state"`
	}
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &state))
	assert.Equal(t, "redis", state.StoreType)
	assert.True(t, state.Searchable)
	assert.Equal(t, h.srv.Addr(), state.StoreState.Addr)
}

func TestConfigFile(t *testing.T) {
	h := newHarness(t)
	h.srv.HSet("user:8", "last_name", "Eight")
	h.writeFile("userkv.yaml", fmt.Sprintf("connection:\n  host: %s\n  port: %s\n", h.srv.Host(), h.srv.Port()))

	root := newRootCmd(h.app())
	root.SetArgs([]string{"user", "8"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Equal(t, "last_name: Eight\n", h.stdout.String())
}

func TestUnreachable(t *testing.T) {
	h := newHarness(t)
	host, port := h.srv.Host(), h.srv.Port()
	h.srv.Close()

	err := h.runAt(host, port, "user", "1")
	require.Error(t, err)

	var ce *commandError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "connecting", ce.action)

	var connErr *core.ConnectionError
	assert.True(t, errors.As(err, &connErr))
}

func TestUnknownFormat(t *testing.T) {
	h := newHarness(t)
	h.srv.HSet("user:1", "a", "b")
	err := h.run("user", "1", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestVersion(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run("version"))
	assert.True(t, strings.HasPrefix(h.stdout.String(), "userkv version "))
}

func TestShellLines(t *testing.T) {
	h := newHarness(t)
	path := h.writeFile("my users/users.txt", users)

	// Connect the way the shell command does, keeping the service open.
	a := h.app()
	a.inShell = true
	root := newRootCmd(a)
	root.SetArgs([]string{"--host", h.srv.Host(), "--port", h.srv.Port(), "status"})
	require.NoError(t, root.ExecuteContext(context.Background()))
	require.NotNil(t, a.svc)
	svc := a.svc
	defer svc.Close()
	h.stdout.Reset()

	ctx := context.Background()
	assert.False(t, a.runShellLine(ctx, fmt.Sprintf("load %q", path)))
	assert.Contains(t, h.stdout.String(), "3 stored")

	h.stdout.Reset()
	assert.False(t, a.runShellLine(ctx, "user 4"))
	assert.Contains(t, h.stdout.String(), "last_name: Wei")

	// The connection survives each line.
	h.stdout.Reset()
	assert.False(t, a.runShellLine(ctx, "coords 1 --format json"))
	assert.Contains(t, h.stdout.String(), `"latitude": "48.8"`)

	assert.False(t, a.runShellLine(ctx, "user 'unterminated"))
	assert.Contains(t, h.stderr.String(), "Error parsing input")

	h.stderr.Reset()
	assert.False(t, a.runShellLine(ctx, "user 404"))
	assert.Contains(t, h.stderr.String(), "Error reading user")

	assert.True(t, a.runShellLine(ctx, "exit"))
	assert.NoError(t, svc.Ping(ctx))
}

func TestLoadWatch(t *testing.T) {
	h := newHarness(t)
	path := h.writeFile("users.txt", "user:1 first_name Peter\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := h.app()
	var out, errb bytes.Buffer
	a.stdout, a.stderr = &out, &errb
	root := newRootCmd(a)
	root.SetArgs([]string{"--host", h.srv.Host(), "--port", h.srv.Port(), "load", path, "--watch"})

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return h.srv.Exists("user:1")
	}, 5*time.Second, 20*time.Millisecond)

	// Rewrite until the watcher is registered and picks the change up.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("user:1 first_name Peter\nuser:9 first_name Nine\n"), 0644)
		return h.srv.Exists("user:9")
	}, 5*time.Second, 150*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("load --watch did not stop after cancel")
	}
}
