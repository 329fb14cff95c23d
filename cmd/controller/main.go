package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pheeno-robot/controller/domain/diagnostic"
	"github.com/pheeno-robot/controller/domain/teleop"
	"github.com/pheeno-robot/controller/pkg/api"
	"github.com/pheeno-robot/controller/pkg/avoidance"
	"github.com/pheeno-robot/controller/pkg/config"
	"github.com/pheeno-robot/controller/pkg/control"
	customlog "github.com/pheeno-robot/controller/pkg/log"
	"github.com/pheeno-robot/controller/pkg/processing"
	"github.com/pheeno-robot/controller/pkg/sensors"
	"github.com/pheeno-robot/controller/pkg/zeromq"
	"github.com/pheeno-robot/controller/services"
)

func main() {
	configDir := flag.String("config-dir", "config", "directory holding controller_config.yaml")
	seed := flag.Int64("turn-seed", 0, "seed for the random turn policy (0 = time-based)")
	flag.Parse()

	bootstrapCfg, err := config.LoadBootstrapConfig(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load bootstrap config: %v\n", err)
		os.Exit(1)
	}

	logger, err := customlog.NewLogrusLogger(bootstrapCfg.Logging.Level, bootstrapCfg.Logging.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger.Infof("Pheeno controller starting")

	// Core state: sensor snapshot and velocity profile.
	snapshot := sensors.NewSnapshot()
	profile := avoidance.NewProfile()

	// Robot configuration service, applied to the profile on load.
	robotConfigPath := filepath.Join(bootstrapCfg.Data.Directory, bootstrapCfg.Data.RobotConfigFilename)
	configService, err := services.NewRobotConfigService(robotConfigPath, profile, logger)
	if err != nil {
		logger.Fatalf("Failed to create robot config service: %v", err)
	}

	robotCfg := configService.GetCurrentConfig()
	if robotCfg == nil {
		logger.Fatalf("No robot configuration available at %s", robotConfigPath)
	}

	// Ingestion pipeline: registry -> director -> pools -> snapshot.
	registry := processing.NewChannelRegistry(logger)
	registry.LoadFromConfig(robotCfg)

	director := processing.NewFrameDirector(logger, registry, &processing.DirectorOptions{
		DefaultQueueSize: bootstrapCfg.ZeroMQ.MessageBufferSize,
	})
	director.Initialize(
		bootstrapCfg.Processing.HighPriorityWorkers,
		bootstrapCfg.Processing.StandardPriorityWorkers,
		bootstrapCfg.Processing.LowPriorityWorkers,
	)

	processor := processing.NewTelemetryProcessor(logger, registry, snapshot)
	director.SetProcessor(processor.CreateProcessorFunc())

	// ZeroMQ transport.
	zmqService, err := zeromq.NewZeroMQService(bootstrapCfg, zeromq.NewDirectorWrapper(director), logger)
	if err != nil {
		logger.Fatalf("Failed to create ZeroMQ service: %v", err)
	}

	resultHandler := processing.NewLoggingResultHandler(logger, zmqService)
	director.SetResultHandler(resultHandler.CreateHandlerFunc())

	configPublisher := zeromq.RegisterConfigHandlers(zmqService, robotCfg, profile, logger)
	configService.SetPublisher(configPublisher)

	director.Start()
	if err := zmqService.Start(); err != nil {
		logger.Fatalf("Failed to start ZeroMQ service: %v", err)
	}

	telemetryListener, err := zeromq.NewTelemetryListener(zmqService.Context(), zeromq.NewDirectorWrapper(director), logger)
	if err != nil {
		logger.Fatalf("Failed to create telemetry listener: %v", err)
	}
	if err := telemetryListener.Start(bootstrapCfg.ZeroMQ.TelemetryBindAddress); err != nil {
		logger.Fatalf("Failed to start telemetry listener: %v", err)
	}

	// Avoidance engine and control loop.
	turnSeed := *seed
	if turnSeed == 0 {
		turnSeed = time.Now().UnixNano()
	}
	engine := avoidance.NewEngine(snapshot, profile, avoidance.NewRandomTurn(turnSeed), logger)

	commandPublisher := zeromq.NewCommandPublisher(zmqService, logger)
	loop := control.NewLoop(
		engine, profile, commandPublisher,
		robotCfg.Avoidance,
		time.Duration(bootstrapCfg.Control.RateMs)*time.Millisecond,
		logger,
	)
	configService.SetRetuner(loop)
	go loop.Run()

	// Domain services.
	teleopService := teleop.NewTeleopService(loop, logger)
	diagnosticService := diagnostic.NewDiagnosticService(robotCfg.RobotID, snapshot, loop, director, registry)

	// HTTP API.
	app := fiber.New(fiber.Config{
		AppName:      "Pheeno Controller",
		ErrorHandler: customErrorHandler,
	})
	app.Use(fiberlogger.New())
	app.Use(recover.New())

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "online",
			"service": "pheeno controller",
			"robot":   robotCfg.RobotID,
		})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	api.RegisterSensorRoutes(app, snapshot, logger)
	api.RegisterProfileRoutes(app, profile, logger)
	api.RegisterConfigRoutes(app, configService, logger)

	apiGroup := app.Group("/api")
	apiGroup.Get("/diagnostics", diagnosticService.GetStatusHandler)

	teleopGroup := apiGroup.Group("/teleop")
	teleopGroup.Post("/command", teleopService.CommandHandler)
	teleopGroup.Post("/stop", teleopService.StopHandler)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/control", websocket.New(func(conn *websocket.Conn) {
		api.ControlWebSocketHandler(conn, logger, teleopService)
	}))

	port := bootstrapCfg.Server.HTTPPort
	if port == 0 {
		port = 8080
	}
	go func() {
		logger.Infof("Server starting on port %d", port)
		if err := app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down...")

	loop.Stop()
	telemetryListener.Stop()
	zmqService.Stop()
	director.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Infof("Controller exited properly")
}

// customErrorHandler returns API errors as JSON.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
