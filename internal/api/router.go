package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/visioncraft-labs/emoscope/internal/analysis"
	"github.com/visioncraft-labs/emoscope/internal/api/docs"
	"github.com/visioncraft-labs/emoscope/internal/api/handler"
	"github.com/visioncraft-labs/emoscope/internal/api/middleware"
	"github.com/visioncraft-labs/emoscope/internal/detector"
	"github.com/visioncraft-labs/emoscope/internal/repository"
	"github.com/visioncraft-labs/emoscope/internal/service"
	"github.com/visioncraft-labs/emoscope/internal/stream"
	"github.com/visioncraft-labs/emoscope/internal/ws"
)

type Dependencies struct {
	ResultRepo   *repository.ResultRepository
	SessionRepo  *repository.SessionRepository
	Pipeline     *analysis.Pipeline
	Locator      detector.Locator
	StreamConfig stream.Config
	DB           *pgxpool.Pool
}

type Router struct {
	app    *fiber.App
	logger *slog.Logger
	deps   *Dependencies
	wsHub  *ws.Hub
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Emoscope API",
		BodyLimit:    12 * 1024 * 1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,X-User-ID",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	var pinger handler.Pinger
	if r.deps != nil && r.deps.DB != nil {
		pinger = r.deps.DB
	}
	healthHandler := handler.NewHealthHandler(pinger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	// API v1 group, caller identity required
	v1 := r.app.Group("/v1")

	// Only configure the API routes if dependencies were provided
	if r.deps != nil {
		v1.Use(middleware.Identity())

		// WebSocket hub for analysis events
		r.wsHub = ws.NewHub()
		go r.wsHub.Run()

		// Services
		emotionService := service.NewEmotionService(
			r.deps.Pipeline,
			r.deps.ResultRepo,
			r.deps.SessionRepo,
			r.wsHub,
			r.logger,
		)
		sessionService := service.NewSessionService(r.deps.SessionRepo, r.wsHub, r.logger)

		// Handlers
		analyzeHandler := handler.NewAnalyzeHandler(emotionService, r.logger)
		sessionHandler := handler.NewSessionHandler(sessionService, r.logger)

		// Analysis routes
		v1.Post("/analyze", analyzeHandler.Analyze)
		v1.Get("/results/:id", analyzeHandler.GetResult)
		v1.Get("/results/:id/similar", analyzeHandler.GetSimilar)

		// Session routes
		v1.Post("/sessions", sessionHandler.Start)
		v1.Post("/sessions/:id/end", sessionHandler.End)
		v1.Get("/sessions/:id/stats", sessionHandler.Stats)

		// WebSocket endpoints: event feed and frames-in results-out stream
		v1.Get("/ws", ws.UpgradeMiddleware(), ws.Handler(r.wsHub))
		v1.Get("/stream", ws.UpgradeMiddleware(), ws.StreamHandler(ws.StreamDeps{
			Pipeline: r.deps.Pipeline,
			Locator:  r.deps.Locator,
			Config:   r.deps.StreamConfig,
			Recorder: emotionService,
			Logger:   r.logger,
		}))
	}
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Hub() *ws.Hub {
	return r.wsHub
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.app.Shutdown()
}
