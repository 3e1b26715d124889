package http

import (
	"github.com/gin-gonic/gin"

	"github.com/daydif/daydif-backend/internal/platform/logger"
)

// Server owns the HTTP engine and its listen loop.
type Server struct {
	Engine *gin.Engine
	log    *logger.Logger
}

func NewServer(cfg RouterConfig, baseLog *logger.Logger) *Server {
	return &Server{
		Engine: NewRouter(cfg),
		log:    baseLog.With("component", "HTTPServer"),
	}
}

// Run blocks serving requests until the listener fails.
func (s *Server) Run(address string) error {
	s.log.Info("HTTP server listening", "address", address)
	return s.Engine.Run(address)
}
