package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setConfigEnv(t *testing.T, path string) {
	t.Helper()
	original := os.Getenv("PIXELD_CONFIG")
	t.Cleanup(func() { os.Setenv("PIXELD_CONFIG", original) })
	os.Setenv("PIXELD_CONFIG", path)
}

func TestRun_InvalidConfigPath(t *testing.T) {
	setConfigEnv(t, "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail with a missing config file")
	}
}

func TestRun_InvalidConfigValues(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	// Token mode without a token fails validation.
	configContent := `
auth:
  mode: token

logging:
  level: error
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	setConfigEnv(t, configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx); err == nil {
		t.Fatal("run() should fail on invalid config values")
	}
}

// TestRun_MemoryPlatformStartupAndShutdown boots the full daemon on the
// memory platform with MQTT and InfluxDB disabled, then cancels.
func TestRun_MemoryPlatformStartupAndShutdown(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	dbPath := filepath.Join(tmpDir, "pixeld.db")

	configContent := `
server:
  host: "127.0.0.1"
  port: 18093

hardware:
  platform: memory

database:
  path: "` + dbPath + `"
  busy_timeout: 5

persistence:
  enabled: true
  replay: true

mqtt:
  enabled: false

influxdb:
  enabled: false

startup:
  - action: init_neopixels
    args:
      pin: D18
      pixel_count: 8
      id: boot

logging:
  level: error
  format: text
  output: stdout
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	setConfigEnv(t, configPath)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := run(ctx); err != nil {
		t.Fatalf("run() error = %v", err)
	}

	// The startup strip definition persisted for the next boot.
	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("database file missing after run: %v", err)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	expected := "/custom/path/config.yaml"
	setConfigEnv(t, expected)

	if path := getConfigPath(); path != expected {
		t.Errorf("getConfigPath() = %q, want %q", path, expected)
	}
}

func TestGetConfigPath_DefaultsWhenUnset(t *testing.T) {
	setConfigEnv(t, "")
	os.Unsetenv("PIXELD_CONFIG")

	// Outside a deployment tree the default file does not exist, so the
	// daemon runs on built-in defaults.
	path := getConfigPath()
	if path != "" && path != defaultConfigPath {
		t.Errorf("getConfigPath() = %q", path)
	}
}

func TestDispatchInit_UnknownAction(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := dispatchInit(ctx, nil, "startup", "init_lasers", []byte(`{}`)); err == nil {
		t.Fatal("dispatchInit() should reject unknown actions")
	}
}
