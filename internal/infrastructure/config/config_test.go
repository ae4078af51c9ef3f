package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	content := `
server:
  host: "0.0.0.0"
  port: 9090
hardware:
  platform: "memory"
animation:
  tick_interval_ms: 20
database:
  path: "/tmp/test.db"
  busy_timeout: 5
mqtt:
  enabled: true
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
  topic_prefix: "leds"
startup:
  - action: init_neopixels
    args:
      pin: "D18"
      pixel_count: 30
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Animation.TickIntervalMs != 20 {
		t.Errorf("Animation.TickIntervalMs = %d, want 20", cfg.Animation.TickIntervalMs)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "/tmp/test.db")
	}
	if cfg.MQTT.TopicPrefix != "leds" {
		t.Errorf("MQTT.TopicPrefix = %q, want %q", cfg.MQTT.TopicPrefix, "leds")
	}
	if len(cfg.Startup) != 1 || cfg.Startup[0].Action != "init_neopixels" {
		t.Fatalf("Startup = %+v", cfg.Startup)
	}
	raw, err := cfg.Startup[0].ArgsJSON()
	if err != nil {
		t.Fatalf("ArgsJSON() error = %v", err)
	}
	if len(raw) == 0 {
		t.Error("ArgsJSON() returned empty body")
	}
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
	if cfg.Hardware.Platform != "memory" {
		t.Errorf("Hardware.Platform = %q, want default memory", cfg.Hardware.Platform)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	// validJWTSecret meets the 32-character minimum requirement
	validJWTSecret := "test-secret-key-at-least-32-chars!"

	valid := func() *Config { return defaultConfig() }

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "invalid port low",
			mutate:  func(c *Config) { c.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "invalid port high",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "unknown auth mode",
			mutate:  func(c *Config) { c.Auth.Mode = "basic" },
			wantErr: true,
		},
		{
			name:    "token mode without token",
			mutate:  func(c *Config) { c.Auth.Mode = AuthModeToken },
			wantErr: true,
		},
		{
			name: "token mode with token",
			mutate: func(c *Config) {
				c.Auth.Mode = AuthModeToken
				c.Auth.Token = "device-token"
			},
			wantErr: false,
		},
		{
			name:    "jwt mode without secret",
			mutate:  func(c *Config) { c.Auth.Mode = AuthModeJWT },
			wantErr: true,
		},
		{
			name: "jwt secret too short",
			mutate: func(c *Config) {
				c.Auth.Mode = AuthModeJWT
				c.Auth.JWT.Secret = "short"
				c.Auth.JWT.Username = "admin"
				c.Auth.JWT.PasswordHash = "abc"
			},
			wantErr: true,
		},
		{
			name: "jwt mode complete",
			mutate: func(c *Config) {
				c.Auth.Mode = AuthModeJWT
				c.Auth.JWT.Secret = validJWTSecret
				c.Auth.JWT.Username = "admin"
				c.Auth.JWT.PasswordHash = "abc"
			},
			wantErr: false,
		},
		{
			name:    "unknown platform",
			mutate:  func(c *Config) { c.Hardware.Platform = "fpga" },
			wantErr: true,
		},
		{
			name:    "zero tick interval",
			mutate:  func(c *Config) { c.Animation.TickIntervalMs = 0 },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name: "mqtt enabled without prefix",
			mutate: func(c *Config) {
				c.MQTT.Enabled = true
				c.MQTT.TopicPrefix = ""
			},
			wantErr: true,
		},
		{
			name:    "influx enabled without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true },
			wantErr: true,
		},
		{
			name: "persistence without database path",
			mutate: func(c *Config) {
				c.Persistence.Enabled = true
				c.Database.Path = ""
			},
			wantErr: true,
		},
		{
			name: "unknown startup action",
			mutate: func(c *Config) {
				c.Startup = []StartupAction{{Action: "reboot"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetTimeouts(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{
			Timeouts: ServerTimeoutConfig{
				Read:  30,
				Write: 45,
				Idle:  60,
			},
		},
		Animation: AnimationConfig{TickIntervalMs: 25},
	}

	if got := cfg.Server.GetReadTimeout().Seconds(); got != 30 {
		t.Errorf("GetReadTimeout() = %v, want 30", got)
	}
	if got := cfg.Server.GetWriteTimeout().Seconds(); got != 45 {
		t.Errorf("GetWriteTimeout() = %v, want 45", got)
	}
	if got := cfg.Server.GetIdleTimeout().Seconds(); got != 60 {
		t.Errorf("GetIdleTimeout() = %v, want 60", got)
	}
	if got := cfg.TickInterval().Milliseconds(); got != 25 {
		t.Errorf("TickInterval() = %vms, want 25", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("PIXELD_SERVER_HOST", "192.168.1.1")
	t.Setenv("PIXELD_SERVER_PORT", "9000")
	t.Setenv("PIXELD_AUTH_MODE", "token")
	t.Setenv("PIXELD_AUTH_TOKEN", "device-token")
	t.Setenv("PIXELD_HARDWARE_PLATFORM", "gpio")
	t.Setenv("PIXELD_DATABASE_PATH", "/custom/path.db")
	t.Setenv("PIXELD_MQTT_HOST", "mqtt.example.com")
	t.Setenv("PIXELD_MQTT_USERNAME", "testuser")
	t.Setenv("PIXELD_MQTT_PASSWORD", "testpass")
	t.Setenv("PIXELD_INFLUXDB_TOKEN", "secret-token")
	t.Setenv("PIXELD_JWT_SECRET", "jwt-secret")

	applyEnvOverrides(cfg)

	if cfg.Server.Host != "192.168.1.1" {
		t.Errorf("Server.Host = %q", cfg.Server.Host)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
	if cfg.Auth.Mode != "token" || cfg.Auth.Token != "device-token" {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Hardware.Platform != "gpio" {
		t.Errorf("Hardware.Platform = %q", cfg.Hardware.Platform)
	}
	if cfg.Database.Path != "/custom/path.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q", cfg.MQTT.Broker.Host)
	}
	if cfg.MQTT.Auth.Username != "testuser" || cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth = %+v", cfg.MQTT.Auth)
	}
	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q", cfg.InfluxDB.Token)
	}
	if cfg.Auth.JWT.Secret != "jwt-secret" {
		t.Errorf("Auth.JWT.Secret = %q", cfg.Auth.JWT.Secret)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Database.Path == "" {
		t.Error("defaultConfig should have non-empty Database.Path")
	}
	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("defaultConfig Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Auth.Mode != AuthModeNone {
		t.Errorf("defaultConfig Auth.Mode = %q, want none", cfg.Auth.Mode)
	}
	if cfg.Persistence.OpLogMaxRows != 10000 {
		t.Errorf("defaultConfig OpLogMaxRows = %d", cfg.Persistence.OpLogMaxRows)
	}
}
