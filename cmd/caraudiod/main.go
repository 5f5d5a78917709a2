// caraudiod - Car Audio Zone Configuration Service
//
// This is the main entry point for caraudiod. The service connects to
// the vehicle's audio control HAL bridge, negotiates the protocol
// revision, loads the zone topology (HAL-described or legacy fallback)
// and publishes it for the audio framework. A diagnostics HTTP API and
// WebSocket event stream expose the result to engineering tools.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/ridgeworth/caraudio-core/migrations"

	"github.com/ridgeworth/caraudio-core/internal/api"
	"github.com/ridgeworth/caraudio-core/internal/audio/hal"
	"github.com/ridgeworth/caraudio-core/internal/audio/topology"
	"github.com/ridgeworth/caraudio-core/internal/diagnostics"
	"github.com/ridgeworth/caraudio-core/internal/enumeration"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/config"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/database"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/influxdb"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/logging"
	"github.com/ridgeworth/caraudio-core/internal/infrastructure/mqtt"
	"github.com/ridgeworth/caraudio-core/internal/settings"
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

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run the application
	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Exit is non-zero only on startup failure. A failed topology load is
// operational behaviour (the framework runs on fallback routing) and
// never aborts the service.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting caraudiod",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
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
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Settings store for persisted volume state
	store := settings.NewStore(db.DB, log.Logger)

	// Conversion diagnostics ring, mirrored to the logger
	diag := diagnostics.New(diagnostics.DefaultCapacity, log)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Load the platform device inventory
	inventory, err := enumeration.Load(cfg.Devices.Inventory)
	if err != nil {
		return fmt.Errorf("loading device inventory: %w", err)
	}
	log.Info("device inventory loaded",
		"path", cfg.Devices.Inventory,
		"outputs", len(inventory.OutputDevices()),
		"inputs", len(inventory.InputDevices()),
	)

	// WebSocket hub, shared between the API server and the orchestrator
	hub := api.NewHub(cfg.WebSocket, log)
	go hub.Run(ctx)

	// Orchestrate callback registration, initial load, and reload paths.
	// Created before the bridge so its death handler can be wired in;
	// wrapper and loader are attached below.
	orch := &orchestrator{
		hub:    hub,
		influx: influxClient,
		diag:   diag,
		log:    log,
	}

	// Connect to the audio control HAL bridge
	wrapper, err := hal.Connect(ctx, mqttClient, hal.Options{
		ClientID:           cfg.MQTT.Broker.ClientID,
		QoS:                byte(cfg.MQTT.QoS), //nolint:gosec // QoS validated to 0-2 by config
		RequestTimeout:     cfg.GetHALRequestTimeout(),
		StatusTimeout:      cfg.GetHALStatusTimeout(),
		AudioConfiguration: cfg.Features.AudioConfiguration,
		Logger:             log,
		Diagnostics:        diag,
		OnDeath:            orch.onBridgeDied,
	})
	if err != nil {
		return fmt.Errorf("connecting to audio control bridge: %w", err)
	}
	defer func() {
		log.Info("closing audio control bridge")
		if closeErr := wrapper.Close(); closeErr != nil {
			log.Error("error closing audio control bridge", "error", closeErr)
		}
	}()
	orch.wrapper = wrapper

	// Topology converter and loader
	converter := topology.NewConverter(
		inventory.OutputDevices(),
		inventory.InputDevices(),
		topology.ConverterOptions{
			Strategies:               topology.StrategyMap(cfg.Routing.CoreStrategies),
			FadeManagerConfiguration: cfg.Features.FadeManagerConfiguration,
			DynamicDevices:           cfg.Features.DynamicDevices,
		},
	)

	loader := topology.NewLoader(wrapper, inventory, converter, diag, topology.LoaderOptions{
		LegacyResource: cfg.Routing.LegacyResource,
		Settings:       store,
		Logger:         log,
		OnLoad:         orch.onLoad,
	})
	orch.loader = loader

	orch.start(ctx)

	// Start the diagnostics API server
	apiServer, err := api.New(api.Deps{
		Config:      cfg.API,
		WS:          cfg.WebSocket,
		Logger:      log,
		Topology:    loader,
		HAL:         wrapper,
		Diag:        diag,
		Settings:    store,
		MQTT:        mqttClient,
		Reload:      orch.reload,
		ExternalHub: hub,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	if influxClient != nil {
		influxClient.WriteHALConnection(string(wrapper.State()), wrapper.Revision(), wrapper.InterfaceVersion())
	}

	log.Info("initialisation complete, waiting for shutdown signal",
		"mode", loader.Mode(),
		"zones", len(loader.Zones()),
	)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. Audio control bridge
	// 3. InfluxDB (if enabled)
	// 4. MQTT
	// 5. Database

	log.Info("caraudiod stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses CARAUDIO_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("CARAUDIO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
