// pixeld - addressable LED strip control daemon
//
// pixeld drives NeoPixel (WS281x) and DotStar (APA102) strips on a
// Raspberry Pi, exposing the control operations over HTTP and MQTT.
// Strip and animation definitions persist to SQLite and are replayed at
// boot; operation telemetry flows to InfluxDB when enabled.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lumastack/pixeld/migrations"

	"github.com/lumastack/pixeld/internal/animation"
	"github.com/lumastack/pixeld/internal/api"
	"github.com/lumastack/pixeld/internal/bridge"
	"github.com/lumastack/pixeld/internal/controller"
	"github.com/lumastack/pixeld/internal/driver"
	"github.com/lumastack/pixeld/internal/infrastructure/config"
	"github.com/lumastack/pixeld/internal/infrastructure/database"
	"github.com/lumastack/pixeld/internal/infrastructure/influxdb"
	"github.com/lumastack/pixeld/internal/infrastructure/logging"
	"github.com/lumastack/pixeld/internal/infrastructure/mqtt"
	"github.com/lumastack/pixeld/internal/store"
	"github.com/lumastack/pixeld/internal/strip"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// registryGaugeInterval is how often registry sizes are written to
// telemetry.
const registryGaugeInterval = time.Minute

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting pixeld",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Persistence layer (optional)
	var db *database.DB
	var st *store.Store
	if cfg.Persistence.Enabled {
		db, err = database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     true,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()

		if migrateErr := db.Migrate(ctx); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database ready", "path", cfg.Database.Path)

		st = store.New(db, store.Options{
			OpLogMaxRows: cfg.Persistence.OpLogMaxRows,
			Logger:       log,
		})
	} else {
		log.Info("persistence disabled")
	}

	// Telemetry sink (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// MQTT surface (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log)
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT connected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)
	} else {
		log.Info("MQTT disabled")
	}

	// Output devices
	factory, err := driver.NewFactory(driver.Config{
		Platform:          cfg.Hardware.Platform,
		SPIFrequencyHz:    cfg.Hardware.SPIFrequencyHz,
		WS281xFrequencyHz: cfg.Hardware.WS281xFrequencyHz,
		WS281xDMA:         cfg.Hardware.WS281xDMA,
	})
	if err != nil {
		return fmt.Errorf("creating device factory: %w", err)
	}
	defer func() {
		if closeErr := factory.Close(); closeErr != nil {
			log.Error("error closing device factory", "error", closeErr)
		}
	}()
	log.Info("device factory ready", "platform", cfg.Hardware.Platform)

	// Event sinks: the WebSocket hub always, the MQTT publisher when the
	// broker is connected.
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	sinks := controller.SinkList{hub}
	mqttTopics := mqtt.NewTopics(cfg.MQTT.TopicPrefix)
	if mqttClient != nil {
		publisher := bridge.NewEventPublisher(mqttClient, bridge.Config{
			QoS:    byte(cfg.MQTT.QoS),
			Topics: mqttTopics,
			Logger: log,
		})
		sinks = append(sinks, publisher)
	}

	// Controller and its serving loop
	strips := strip.NewRegistry()
	strips.SetLogger(log)
	animations := animation.NewRegistry()
	animations.SetLogger(log)

	ctrlDeps := controller.Deps{
		Strips:     strips,
		Animations: animations,
		Devices:    factory,
		Logger:     log,
		Events:     sinks,
	}
	if st != nil {
		ctrlDeps.Definitions = st
	}
	ctrl, err := controller.New(ctrlDeps)
	if err != nil {
		return fmt.Errorf("creating controller: %w", err)
	}

	actorCfg := controller.ActorConfig{
		TickInterval: cfg.TickInterval(),
		Logger:       log,
	}
	if st != nil {
		actorCfg.OpLog = st
	}
	if influxClient != nil {
		actorCfg.Telemetry = influxClient
	}
	actor := controller.NewActor(ctrl, actorCfg)

	actorErr := make(chan error, 1)
	go func() {
		actorErr <- actor.Run(ctx)
	}()

	// Boot sequence: configured startup actions first, then the
	// persisted definitions. A definition whose id a startup action
	// already claimed replays as a logged conflict, not a failure.
	applyStartupActions(ctx, actor, cfg.Startup, log)
	if st != nil && cfg.Persistence.Replay {
		replayDefinitions(ctx, actor, st, log)
	}

	// MQTT command bridge
	if mqttClient != nil {
		cmdBridge := bridge.New(actor, mqttClient, bridge.Config{
			QoS:    byte(cfg.MQTT.QoS),
			Topics: mqttTopics,
			Logger: log,
		})
		if err := cmdBridge.Start(); err != nil {
			return fmt.Errorf("starting MQTT bridge: %w", err)
		}
	}

	// HTTP surface
	components := make(map[string]api.ComponentHealth)
	if db != nil {
		components["database"] = db
	}
	if mqttClient != nil {
		components["mqtt"] = mqttClient
	}
	if influxClient != nil {
		components["influxdb"] = influxClient
	}

	server, err := api.New(api.Deps{
		Config:      cfg.Server,
		WS:          cfg.WebSocket,
		Auth:        cfg.Auth,
		Logger:      log,
		Actor:       actor,
		Store:       st,
		Components:  components,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Periodic registry gauges
	if influxClient != nil {
		go publishRegistryGauges(ctx, actor, influxClient)
	}

	log.Info("initialisation complete, waiting for shutdown signal")

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, cleaning up")
		return nil
	case err := <-actorErr:
		if err != nil {
			return fmt.Errorf("control loop: %w", err)
		}
		return nil
	}
}

// publishRegistryGauges periodically snapshots registry sizes into the
// telemetry sink until the context is cancelled.
func publishRegistryGauges(ctx context.Context, actor *controller.Actor, influxClient *influxdb.Client) {
	ticker := time.NewTicker(registryGaugeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var strips, animations int
			err := actor.Inspect(ctx, func(c *controller.Controller) {
				strips, animations = c.Counts()
			})
			if err != nil {
				return
			}
			influxClient.WriteRegistryGauges(strips, animations)
		}
	}
}

// getConfigPath returns the configuration file path. Uses the
// PIXELD_CONFIG environment variable if set, otherwise the default path
// when the file exists, otherwise empty so the daemon runs on defaults.
func getConfigPath() string {
	if path := os.Getenv("PIXELD_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return defaultConfigPath
	}
	return ""
}

// applyStartupActions runs the configured init actions through the
// dispatch path. A failed action is reported and skipped; boot
// continues so one bad entry cannot keep the daemon down.
func applyStartupActions(ctx context.Context, actor *controller.Actor, actions []config.StartupAction, log *logging.Logger) {
	for i, action := range actions {
		raw, err := action.ArgsJSON()
		if err != nil {
			log.Error("startup action has invalid args",
				"index", i, "action", action.Action, "error", err)
			continue
		}
		if err := dispatchInit(ctx, actor, "startup", action.Action, raw); err != nil {
			log.Error("startup action failed",
				"index", i, "action", action.Action, "error", err)
			continue
		}
		log.Info("startup action applied", "action", action.Action)
	}
}

// replayDefinitions re-creates persisted strips and animations. A
// duplicate id means the definition already exists this boot (usually a
// startup action); that is a conflict worth a debug line, nothing more.
func replayDefinitions(ctx context.Context, actor *controller.Actor, st *store.Store, log *logging.Logger) {
	stripDefs, err := st.StripDefinitions(ctx)
	if err != nil {
		log.Error("loading strip definitions failed", "error", err)
		return
	}
	for _, def := range stripDefs {
		action := "init_neopixels"
		args := map[string]any{
			"id":          def.ID,
			"pin":         def.Pin,
			"pixel_count": float64(def.PixelCount),
			"brightness":  def.Brightness,
			"auto_write":  def.AutoWrite,
		}
		if def.Kind == string(strip.KindDotStar) {
			action = "init_dotstars"
			delete(args, "pin")
			args["clock_pin"] = def.ClockPin
			args["data_pin"] = def.DataPin
		}
		replayOne(ctx, actor, action, def.ID, args, log)
	}

	animDefs, err := st.AnimationDefinitions(ctx)
	if err != nil {
		log.Error("loading animation definitions failed", "error", err)
		return
	}
	for _, def := range animDefs {
		args := map[string]any{
			"strip_id":     def.StripID,
			"animation_id": def.ID,
			"animation":    def.Kind,
			"start":        def.AutoStart,
		}
		if len(def.Options) > 0 {
			args["kwargs"] = json.RawMessage(def.Options)
		}
		replayOne(ctx, actor, "init_animation", def.ID, args, log)
	}

	log.Info("definition replay complete",
		"strips", len(stripDefs), "animations", len(animDefs))
}

func replayOne(ctx context.Context, actor *controller.Actor, action, id string, args map[string]any, log *logging.Logger) {
	raw, err := json.Marshal(args)
	if err != nil {
		log.Error("encoding replay definition failed", "id", id, "error", err)
		return
	}
	if err := dispatchInit(ctx, actor, "replay", action, raw); err != nil {
		log.Debug("replay skipped", "action", action, "id", id, "error", err)
	}
}

// dispatchInit runs one init operation through the actor, validating
// the body the same way the HTTP handlers do.
func dispatchInit(ctx context.Context, actor *controller.Actor, source, action string, raw []byte) error {
	switch action {
	case "init_neopixels":
		f, err := controller.Validate(raw, "pin", "pixel_count")
		if err != nil {
			return err
		}
		return actor.Do(ctx, controller.Op{Name: action, Source: source},
			func(c *controller.Controller) error {
				_, err := c.InitNeoPixels(f)
				return err
			})

	case "init_dotstars":
		f, err := controller.Validate(raw, "clock_pin", "data_pin", "pixel_count")
		if err != nil {
			return err
		}
		return actor.Do(ctx, controller.Op{Name: action, Source: source},
			func(c *controller.Controller) error {
				_, err := c.InitDotStars(f)
				return err
			})

	case "init_animation":
		f, err := controller.Validate(raw, "strip_id", "animation_id", "animation")
		if err != nil {
			return err
		}
		return actor.Do(ctx, controller.Op{Name: action, Source: source},
			func(c *controller.Controller) error {
				return c.InitAnimation(f)
			})

	default:
		return fmt.Errorf("unknown init action %q", action)
	}
}
