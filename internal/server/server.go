package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/butler/internal/auth"
	"github.com/nulzo/butler/internal/config"
	"github.com/nulzo/butler/internal/gateway"
	"github.com/nulzo/butler/internal/server/middleware"
	"github.com/nulzo/butler/internal/server/validator"
	"go.uber.org/zap"
)

type Server struct {
	router    *gin.Engine
	config    *config.Config
	logger    *zap.Logger
	verifier  *auth.Verifier
	directory auth.Directory
	service   gateway.Service
	validator *validator.Validator
}

func New(cfg *config.Config, logger *zap.Logger, verifier *auth.Verifier, directory auth.Directory, service gateway.Service) *Server {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.RequestID())
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}
	engine.Use(middleware.Logger(logger))

	s := &Server{
		router:    engine,
		config:    cfg,
		logger:    logger,
		verifier:  verifier,
		directory: directory,
		service:   service,
		validator: validator.New(),
	}

	s.SetupRoutes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}
