package server

import (
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kwclassify/internal/classifier"
	"kwclassify/internal/handlers/api"
)

// Deps are the services the routes are wired to.
type Deps struct {
	Probe    api.ModelProbe
	Jobs     api.JobRunner
	Defaults classifier.Settings
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(deps Deps) {
	// Initialize handlers
	healthHandler := api.NewHealthHandler(deps.Probe)
	uploadHandler := api.NewUploadHandler(s.Cfg.UploadDir, s.Log)
	settingsHandler := api.NewSettingsHandler(deps.Defaults)
	jobHandler := api.NewJobHandler(deps.Jobs, deps.Defaults, s.Cfg.UploadDir, s.Log)
	downloadHandler := api.NewDownloadHandler(s.Cfg.OutputDir)
	probeHandler := api.NewProbeHandler(s.Cfg.UploadDir, s.Cfg.OutputDir)

	// Kubernetes probes
	s.App.Get("/healthz", probeHandler.Liveness)
	s.App.Get("/readyz", probeHandler.Readiness)

	apiGroup := s.App.Group("/api")
	apiGroup.Get("/health", healthHandler.Check)
	apiGroup.Post("/upload", uploadHandler.Upload)
	apiGroup.Get("/settings", settingsHandler.Get)
	apiGroup.Post("/settings", settingsHandler.Validate)
	apiGroup.Post("/process", jobHandler.Process)
	apiGroup.Get("/progress/:id", jobHandler.Progress)
	apiGroup.Get("/results/:id", jobHandler.Results)
	apiGroup.Get("/download/:filename", downloadHandler.Download)

	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Frontend must be last (catch-all)
	s.ServeFrontend()
}
