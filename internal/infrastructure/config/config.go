package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for pixeld.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Auth        AuthConfig        `yaml:"auth"`
	Hardware    HardwareConfig    `yaml:"hardware"`
	Animation   AnimationConfig   `yaml:"animation"`
	MQTT        MQTTConfig        `yaml:"mqtt"`
	InfluxDB    InfluxDBConfig    `yaml:"influxdb"`
	Database    DatabaseConfig    `yaml:"database"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Startup     []StartupAction   `yaml:"startup"`
	Logging     LoggingConfig     `yaml:"logging"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host     string              `yaml:"host"`
	Port     int                 `yaml:"port"`
	Timeouts ServerTimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig          `yaml:"cors"`
}

// ServerTimeoutConfig contains HTTP timeout settings in seconds.
type ServerTimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// Auth modes.
const (
	AuthModeNone  = "none"
	AuthModeToken = "token"
	AuthModeJWT   = "jwt"
)

// AuthConfig selects how API requests are authenticated.
type AuthConfig struct {
	// Mode is "none", "token" or "jwt".
	Mode string `yaml:"mode"`

	// Token is the shared bearer token for token mode.
	Token string `yaml:"token"`

	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT settings for jwt auth mode.
type JWTConfig struct {
	Secret string `yaml:"secret"`

	// Username and PasswordHash are the login credentials accepted by the
	// token endpoint. The hash is bcrypt-free on purpose: a single-user
	// device daemon compares a SHA-256 hex digest.
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`

	// AccessTokenTTL is the token lifetime in minutes.
	AccessTokenTTL int `yaml:"access_token_ttl"`
}

// HardwareConfig selects the output platform and its transport tuning.
type HardwareConfig struct {
	// Platform is "memory" or "gpio".
	Platform string `yaml:"platform"`

	SPIFrequencyHz    int `yaml:"spi_frequency_hz"`
	WS281xFrequencyHz int `yaml:"ws281x_frequency_hz"`
	WS281xDMA         int `yaml:"ws281x_dma"`
}

// AnimationConfig contains scheduler settings.
type AnimationConfig struct {
	// TickIntervalMs is how often the control loop advances animation
	// frames, in milliseconds.
	TickIntervalMs int `yaml:"tick_interval_ms"`
}

// MQTTConfig contains MQTT bridge settings.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings in seconds.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
}

// InfluxDBConfig contains telemetry sink settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// PersistenceConfig controls definition persistence and boot replay.
type PersistenceConfig struct {
	Enabled bool `yaml:"enabled"`
	Replay  bool `yaml:"replay"`

	// OpLogMaxRows caps the operation log; older rows are trimmed.
	OpLogMaxRows int `yaml:"oplog_max_rows"`
}

// StartupAction is one init operation applied at boot, before the
// service boundary starts. Args carries the same fields as the matching
// HTTP request body.
type StartupAction struct {
	// Action is "init_neopixels", "init_dotstars" or "init_animation".
	Action string         `yaml:"action"`
	Args   map[string]any `yaml:"args"`
}

// ArgsJSON returns the action arguments re-encoded as a JSON body.
func (a StartupAction) ArgsJSON() ([]byte, error) {
	if a.Args == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(a.Args)
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// WebSocketConfig contains event stream settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// Load reads configuration from a YAML file and applies environment
// variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// An empty path skips the file stage so the daemon can run on defaults
// plus environment alone. Environment variables follow the pattern
// PIXELD_SECTION_KEY, e.g. PIXELD_DATABASE_PATH, PIXELD_SERVER_PORT.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
			Timeouts: ServerTimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeNone,
			JWT: JWTConfig{
				AccessTokenTTL: 60,
			},
		},
		Hardware: HardwareConfig{
			Platform: "memory",
		},
		Animation: AnimationConfig{
			TickIntervalMs: 10,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "pixeld",
			},
			QoS:         1,
			TopicPrefix: "pixeld",
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		Database: DatabaseConfig{
			Path:        "./data/pixeld.db",
			BusyTimeout: 5,
		},
		Persistence: PersistenceConfig{
			Enabled:      true,
			Replay:       true,
			OpLogMaxRows: 10000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Variables follow the pattern PIXELD_SECTION_KEY.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PIXELD_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("PIXELD_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("PIXELD_AUTH_MODE"); v != "" {
		cfg.Auth.Mode = v
	}
	if v := os.Getenv("PIXELD_AUTH_TOKEN"); v != "" {
		cfg.Auth.Token = v
	}
	if v := os.Getenv("PIXELD_JWT_SECRET"); v != "" {
		cfg.Auth.JWT.Secret = v
	}

	if v := os.Getenv("PIXELD_HARDWARE_PLATFORM"); v != "" {
		cfg.Hardware.Platform = v
	}

	if v := os.Getenv("PIXELD_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	if v := os.Getenv("PIXELD_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("PIXELD_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("PIXELD_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	if v := os.Getenv("PIXELD_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration, collecting every problem into one
// error.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	switch c.Auth.Mode {
	case AuthModeNone:
	case AuthModeToken:
		if c.Auth.Token == "" {
			errs = append(errs, "auth.token is required in token mode (set PIXELD_AUTH_TOKEN)")
		}
	case AuthModeJWT:
		const minJWTSecretLength = 32
		if c.Auth.JWT.Secret == "" {
			errs = append(errs, "auth.jwt.secret is required in jwt mode (set PIXELD_JWT_SECRET)")
		} else if len(c.Auth.JWT.Secret) < minJWTSecretLength {
			errs = append(errs, "auth.jwt.secret must be at least 32 characters")
		}
		if c.Auth.JWT.Username == "" || c.Auth.JWT.PasswordHash == "" {
			errs = append(errs, "auth.jwt.username and auth.jwt.password_hash are required in jwt mode")
		}
	default:
		errs = append(errs, "auth.mode must be none, token or jwt")
	}

	if c.Hardware.Platform != "memory" && c.Hardware.Platform != "gpio" {
		errs = append(errs, "hardware.platform must be memory or gpio")
	}

	if c.Animation.TickIntervalMs < 1 {
		errs = append(errs, "animation.tick_interval_ms must be at least 1")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.MQTT.Enabled && c.MQTT.TopicPrefix == "" {
		errs = append(errs, "mqtt.topic_prefix is required when mqtt is enabled")
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set PIXELD_INFLUXDB_TOKEN)")
		}
	}

	if c.Persistence.Enabled && c.Database.Path == "" {
		errs = append(errs, "database.path is required when persistence is enabled")
	}

	for i, action := range c.Startup {
		switch action.Action {
		case "init_neopixels", "init_dotstars", "init_animation":
		default:
			errs = append(errs, fmt.Sprintf("startup[%d].action %q is not a known init action", i, action.Action))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// TickInterval returns the animation tick interval as a Duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Animation.TickIntervalMs) * time.Millisecond
}

// GetReadTimeout returns the server read timeout as a Duration.
func (c ServerConfig) GetReadTimeout() time.Duration {
	return time.Duration(c.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the server write timeout as a Duration.
func (c ServerConfig) GetWriteTimeout() time.Duration {
	return time.Duration(c.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the server idle timeout as a Duration.
func (c ServerConfig) GetIdleTimeout() time.Duration {
	return time.Duration(c.Timeouts.Idle) * time.Second
}
