package quartus

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, []string{"quartus_stp", "-s"}, cfg.Args)
	assert.Equal(t, 5*time.Second, cfg.KillTimeout)
	assert.Equal(t, 0, cfg.ParseDepth)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{Args: []string{"tclsh"}}},
		{name: "no args", cfg: Config{}, wantErr: "args is required"},
		{name: "empty program", cfg: Config{Args: []string{""}}, wantErr: "args is required"},
		{name: "negative timeout", cfg: Config{Args: []string{"tclsh"}, KillTimeout: -time.Second}, wantErr: "kill_timeout"},
		{name: "negative depth", cfg: Config{Args: []string{"tclsh"}, ParseDepth: -1}, wantErr: "parse_depth"},
		{name: "bad prefix", cfg: Config{Args: []string{"tclsh"}, SentinelPrefix: "a-b"}, wantErr: "sentinel_prefix"},
		{name: "good prefix", cfg: Config{Args: []string{"tclsh"}, SentinelPrefix: "MY_1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{WorkDir: "/tmp"}.WithDefaults()
	assert.Equal(t, []string{"quartus_stp", "-s"}, cfg.Args)
	assert.Equal(t, 5*time.Second, cfg.KillTimeout)
	assert.Equal(t, "/tmp", cfg.WorkDir)

	cfg = Config{Args: []string{"tclsh"}, KillTimeout: time.Second}.WithDefaults()
	assert.Equal(t, []string{"tclsh"}, cfg.Args)
	assert.Equal(t, time.Second, cfg.KillTimeout)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	want := Config{
		Args:           []string{"tclsh"},
		WorkDir:        "/work",
		Env:            map[string]string{"QUARTUS_ROOTDIR": "/opt/quartus"},
		Debug:          true,
		KillTimeout:    10 * time.Second,
		SentinelPrefix: "CI",
		ParseDepth:     1,
	}

	t.Run("yaml", func(t *testing.T) {
		path := writeFile(t, "session.yaml", `
args: [tclsh]
work_dir: /work
env:
  QUARTUS_ROOTDIR: /opt/quartus
debug: true
kill_timeout: 10s
sentinel_prefix: CI
parse_depth: 1
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, want, cfg)
	})

	t.Run("toml", func(t *testing.T) {
		path := writeFile(t, "session.toml", `
args = ["tclsh"]
work_dir = "/work"
debug = true
kill_timeout = "10s"
sentinel_prefix = "CI"
parse_depth = 1

[env]
QUARTUS_ROOTDIR = "/opt/quartus"
`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, want, cfg)
	})

	t.Run("json", func(t *testing.T) {
		path := writeFile(t, "session.json", `{
  "args": ["tclsh"],
  "work_dir": "/work",
  "env": {"QUARTUS_ROOTDIR": "/opt/quartus"},
  "debug": true,
  "kill_timeout": "10s",
  "sentinel_prefix": "CI",
  "parse_depth": 1
}`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, want, cfg)
	})

	t.Run("json nanoseconds", func(t *testing.T) {
		path := writeFile(t, "ns.json", `{"kill_timeout": 250000000}`)
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 250*time.Millisecond, cfg.KillTimeout)
		assert.Equal(t, []string{"quartus_stp", "-s"}, cfg.Args)
	})

	t.Run("json bad duration", func(t *testing.T) {
		path := writeFile(t, "bad.json", `{"kill_timeout": "soon"}`)
		_, err := LoadConfig(path)
		assert.ErrorContains(t, err, "kill_timeout")
	})

	t.Run("defaults kept", func(t *testing.T) {
		path := writeFile(t, "partial.yml", "debug: true\n")
		cfg, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"quartus_stp", "-s"}, cfg.Args)
		assert.Equal(t, 5*time.Second, cfg.KillTimeout)
		assert.True(t, cfg.Debug)
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := writeFile(t, "session.ini", "args=tclsh\n")
		_, err := LoadConfig(path)
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeFile(t, "bad.yaml", "parse_depth: -2\n")
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse_depth")
	})

	t.Run("malformed", func(t *testing.T) {
		path := writeFile(t, "bad.toml", "args = [\n")
		_, err := LoadConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse config")
	})

	t.Run("missing", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("QUARTUSTCL_ARGS", "tclsh,-encoding,utf-8")
	t.Setenv("QUARTUSTCL_WORK_DIR", "/env/work")
	t.Setenv("QUARTUSTCL_ENV", "A:1,B:2")
	t.Setenv("QUARTUSTCL_DEBUG", "true")
	t.Setenv("QUARTUSTCL_KILL_TIMEOUT", "250ms")
	t.Setenv("QUARTUSTCL_SENTINEL_PREFIX", "ENV")
	t.Setenv("QUARTUSTCL_PARSE_DEPTH", "2")
	t.Setenv("QUARTUSTCL_LOG_LIMIT", "-1")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"tclsh", "-encoding", "utf-8"}, cfg.Args)
	assert.Equal(t, "/env/work", cfg.WorkDir)
	assert.Equal(t, map[string]string{"A": "1", "B": "2"}, cfg.Env)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 250*time.Millisecond, cfg.KillTimeout)
	assert.Equal(t, "ENV", cfg.SentinelPrefix)
	assert.Equal(t, 2, cfg.ParseDepth)
	assert.Equal(t, -1, cfg.LogLimit)
}

func TestConfig_LoadFromEnv_KeepsUnset(t *testing.T) {
	t.Setenv("QUARTUSTCL_DEBUG", "1")

	cfg := Config{Args: []string{"tclsh"}, WorkDir: "/keep"}
	require.NoError(t, cfg.LoadFromEnv())
	assert.Equal(t, []string{"tclsh"}, cfg.Args)
	assert.Equal(t, "/keep", cfg.WorkDir)
	assert.True(t, cfg.Debug)
}

func TestConfig_LoadFromEnv_Invalid(t *testing.T) {
	t.Setenv("QUARTUSTCL_PARSE_DEPTH", "deep")

	cfg := DefaultConfig()
	err := cfg.LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config from env")
}

func TestConfigSchema(t *testing.T) {
	schema, err := ConfigSchema()
	require.NoError(t, err)

	s := string(schema)
	for _, field := range []string{"args", "work_dir", "env", "debug", "kill_timeout", "sentinel_prefix", "parse_depth"} {
		assert.Contains(t, s, `"`+field+`"`)
	}
	assert.Contains(t, s, "Shell command line")
	assert.Contains(t, s, `Duration such as \"10s\"`)
}

func TestConfig_JSONRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KillTimeout = 1500 * time.Millisecond

	data, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kill_timeout":"1.5s"`)

	var got Config
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, cfg, got)
}
