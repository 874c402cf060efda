package httpserver

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/formgrid/forms-api/internal/config"
	middleware "github.com/formgrid/forms-api/internal/interfaces/httpserver/middlewares"
	v1 "github.com/formgrid/forms-api/internal/interfaces/httpserver/routes/v1"
)

type HTTPServer struct {
	engine  *gin.Engine
	v1Route *v1.V1Route
	config  *config.Config
}

func NewHTTPServer(v1Route *v1.V1Route, cfg *config.Config, log zerolog.Logger) *HTTPServer {
	gin.SetMode(gin.ReleaseMode)
	server := HTTPServer{
		gin.New(),
		v1Route,
		cfg,
	}
	server.engine.Use(gin.Recovery())
	server.engine.Use(middleware.RequestID())
	server.engine.Use(middleware.TracingMiddleware(cfg.ServiceName))
	server.engine.Use(middleware.LoggingMiddleware(log))
	server.engine.Use(middleware.CORSMiddleware())
	server.engine.Use(middleware.MetricsMiddleware())

	// Root health check (for backwards compatibility)
	server.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server.engine.GET("/readyz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	return &server
}

func (httpServer *HTTPServer) Run() error {
	httpServer.v1Route.RegisterRouter(httpServer.engine)

	if err := httpServer.engine.Run(fmt.Sprintf(":%d", httpServer.config.HTTPPort)); err != nil {
		return err
	}
	return nil
}
