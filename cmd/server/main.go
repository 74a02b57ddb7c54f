package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"

	"github.com/cgchiraggupta/kalakar/config"
	"github.com/cgchiraggupta/kalakar/handlers"
	"github.com/cgchiraggupta/kalakar/internal/billing"
	"github.com/cgchiraggupta/kalakar/internal/export"
	"github.com/cgchiraggupta/kalakar/internal/storage"
	"github.com/cgchiraggupta/kalakar/internal/store"
	"github.com/cgchiraggupta/kalakar/internal/transcription"
	"github.com/cgchiraggupta/kalakar/internal/worker"
	"github.com/cgchiraggupta/kalakar/middleware"
	"github.com/cgchiraggupta/kalakar/utils"
)

func main() {
	config.InitLogger()
	log := config.Log

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	db, err := config.NewSupabaseClient()
	if err != nil {
		log.Fatalf("Failed to initialize Supabase: %v", err)
	}

	localStorage, err := storage.NewLocalStorage(cfg.UploadDir, cfg.ExportDir, cfg.TempDir)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	st := store.New(db, log)

	dispatcher := worker.NewDispatcher(log, cfg.WorkerCount, cfg.QueueSize)
	dispatcher.Run()

	runner := transcription.NewWhisperCLI(cfg.WhisperScript, cfg.PythonCommand)
	transcriptionSvc := transcription.NewService(st, runner, dispatcher, log, localStorage.TempDir())
	transcriptionSvc.DefaultModel = cfg.WhisperModel
	exportSvc := export.NewService(st, dispatcher, log, localStorage.ExportDir())
	billingSvc := billing.New(st, log, cfg.StripeKey, cfg.StripeSuccessURL, cfg.StripeCancelURL)

	h := handlers.NewApplicationHandler(log, st, localStorage, transcriptionSvc, exportSvc, billingSvc, cfg.MaxUploadMB)

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadMB+1) * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.RequestLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return utils.RespondWithJSON(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	apiV1 := app.Group("/api/v1", middleware.Auth(cfg.JWTSecret))

	// Account and billing
	apiV1.Get("/me", h.GetMe)
	apiV1.Get("/plans", h.ListPlans)
	apiV1.Post("/orders", h.CreateOrder)
	apiV1.Post("/orders/verify", h.VerifyOrder)

	// Videos
	apiV1.Post("/videos/upload", h.UploadVideo)
	apiV1.Get("/videos", h.ListVideos)
	apiV1.Get("/videos/:id", h.GetVideo)
	apiV1.Delete("/videos/:id", h.DeleteVideo)

	// Captions
	apiV1.Get("/videos/:id/captions", h.ListCaptions)
	apiV1.Put("/videos/:id/captions", h.ReplaceCaptions)
	apiV1.Patch("/videos/:id/captions/:captionId", h.UpdateCaption)

	// Transcription
	apiV1.Post("/videos/:id/transcribe", h.StartTranscription)
	apiV1.Get("/transcriptions/:jobId", h.GetTranscriptionJob)
	apiV1.Get("/transcriptions/:jobId/watch", websocket.New(h.WatchTranscription))

	// Export
	apiV1.Post("/videos/:id/export", h.StartExport)
	apiV1.Get("/exports/:jobId", h.GetExportJob)
	apiV1.Get("/exports/:jobId/download", h.DownloadExport)
	apiV1.Delete("/exports/:jobId", h.DeleteExportJob)

	// Projects
	apiV1.Post("/projects", h.CreateProject)
	apiV1.Get("/projects", h.GetProjects)
	apiV1.Get("/projects/:id", h.GetProject)
	apiV1.Patch("/projects/:id", h.UpdateProject)
	apiV1.Delete("/projects/:id", h.DeleteProject)
	apiV1.Get("/projects/:id/videos", h.ListProjectVideos)
	apiV1.Post("/projects/:id/videos", h.AddVideoToProject)
	apiV1.Delete("/projects/:id/videos/:videoId", h.RemoveVideoFromProject)

	// Styles and templates
	apiV1.Get("/projects/:id/style", h.GetStyle)
	apiV1.Put("/projects/:id/style", h.SaveStyle)
	apiV1.Post("/projects/:id/style/template", h.ApplyTemplate)
	apiV1.Get("/templates", h.ListTemplates)
	apiV1.Get("/fonts", h.ListFonts)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down")
		dispatcher.Stop()
		_ = app.Shutdown()
	}()

	log.Infof("Starting server on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
