package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/storyreel/api/internal/client"
	"github.com/storyreel/api/internal/config"
	"github.com/storyreel/api/internal/handler"
	"github.com/storyreel/api/internal/middleware"
	"github.com/storyreel/api/internal/service"
	"github.com/storyreel/api/internal/timeline"
	"github.com/storyreel/api/internal/worker"
	ws "github.com/storyreel/api/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Test Redis connection
	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize external service clients
	speechClient := client.NewSpeechClient(&cfg.Speech)
	imageClient := client.NewImageClient(&cfg.Image)

	// Initialize services
	sessionService := service.NewSessionService(redisClient)
	sessionService.SetEditorHook(func(sessionID string, ed *timeline.Editor) {
		ed.SetAudioHandle(ws.NewAudioBridge(hub, sessionID))
	})
	sessionService.SetEditorReleaseHook(func(sessionID string, ed *timeline.Editor) {
		hub.CloseBridge(sessionID)
	})
	defer sessionService.Close()

	// Evict idle editors so a long-running server doesn't accumulate clocks
	// and bridges for every session ever touched.
	editorIdle := time.Duration(cfg.Server.EditorIdleMin) * time.Minute
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := sessionService.EvictIdle(ctx, editorIdle); n > 0 {
				log.Printf("Evicted %d idle session editors", n)
			}
		}
	}()
	fillInService := service.NewFillInService(redisClient, asynqClient)
	exportService := service.NewExportService(sessionService)

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(sessionService, validate)
	timelineHandler := handler.NewTimelineHandler(sessionService, validate)
	gestureHandler := handler.NewGestureHandler(sessionService, validate)
	playbackHandler := handler.NewPlaybackHandler(sessionService, validate)
	fillInHandler := handler.NewFillInHandler(fillInService, validate)
	exportHandler := handler.NewExportHandler(exportService, validate)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, cfg.JWT.Expiration)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"service": "storyreel-api"})
	})

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	// Session routes
	sessions := api.Group("/sessions")
	sessions.Post("/", rateLimiter.SessionLimit(cfg.RateLimit.SessionsPerMin), sessionHandler.Create)
	sessions.Get("/", sessionHandler.List)
	sessions.Get("/:id", sessionHandler.Get)
	sessions.Put("/:id", sessionHandler.Save)
	sessions.Delete("/:id", sessionHandler.Delete)

	// Timeline editing routes
	sessions.Get("/:id/timeline", timelineHandler.Get)
	sessions.Post("/:id/blocks", timelineHandler.InsertBlock)
	sessions.Post("/:id/blocks/index", timelineHandler.InsertBlockAt)
	sessions.Delete("/:id/range", timelineHandler.RemoveRange)
	sessions.Delete("/:id/items/:itemId", timelineHandler.RemoveItem)
	sessions.Patch("/:id/items/:itemId", timelineHandler.UpdateItem)

	// Gesture and playback routes
	sessions.Post("/:id/pointer", gestureHandler.Pointer)
	sessions.Post("/:id/doubleclick", gestureHandler.DoubleClick)
	sessions.Post("/:id/key", gestureHandler.Key)
	sessions.Post("/:id/playback", playbackHandler.Control)

	// Fill-in routes
	fillin := api.Group("/fillin")
	fillin.Post("/start", rateLimiter.FillInLimit(cfg.RateLimit.FillInPerHour), fillInHandler.Start)
	fillin.Get("/status/:jobId", fillInHandler.Status)
	fillin.Get("/result/:jobId", fillInHandler.Result)

	// Export routes
	export := api.Group("/export", rateLimiter.ExportLimit(cfg.RateLimit.ExportPerHour))
	export.Post("/fcpxml", exportHandler.FCPXML)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, ws.JobTopic(c.Params("jobId")))
	}))

	app.Get("/ws/sessions/:id", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, ws.SessionTopic(c.Params("id")))
	}))

	// Start Asynq worker server
	go startWorkerServer(cfg, fillInService, sessionService, speechClient, imageClient, hub)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, fillInService *service.FillInService, sessions *service.SessionService, speechClient *client.SpeechClient, imageClient *client.ImageClient, hub *ws.Hub) {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"fillin": 10,
			},
		},
	)

	fillInWorker := worker.NewFillInWorker(fillInService, sessions, speechClient, imageClient, hub)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeFillIn, fillInWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
