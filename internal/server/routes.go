package server

import (
	"github.com/nulzo/butler/internal/server/middleware"
	v1 "github.com/nulzo/butler/internal/server/v1"
)

func (s *Server) SetupRoutes() {
	s.router.Use(middleware.CORS(s.config.CORS))
	s.router.Use(middleware.ErrorHandler(s.logger, s.config.App.Debug))

	healthHandler := v1.NewHealthHandler(s.config.App.Name, s.config.App.Version)
	s.router.GET("/health", healthHandler.Health)

	api := s.router.Group("/api/v1")

	health := api.Group("/health")
	{
		health.GET("", healthHandler.Health)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/live", healthHandler.Live)
	}

	authHandler := v1.NewAuthHandler(s.verifier, s.directory, s.validator, s.logger)
	requireAuth := middleware.Auth(s.verifier)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", requireAuth, authHandler.Me)
		authGroup.POST("/refresh", requireAuth, authHandler.Refresh)
	}

	aiHandler := v1.NewAIHandler(s.service, s.validator)

	ai := api.Group("/ai")
	ai.Use(requireAuth)
	{
		ai.POST("/chat", aiHandler.Chat)
		ai.GET("/providers", aiHandler.Providers)
	}
}
