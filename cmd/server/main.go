package main

import (
	"embed"
	"io/fs"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/formgate/formgate/backend/internal/config"
	"github.com/formgate/formgate/backend/pkg/logger"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.Server.Mode)

	// Initialize database, services and schedulers
	svc := bootstrap(cfg)
	defer svc.shutdown()

	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	registerRoutes(r, svc)
	registerStatic(r)

	addr := cfg.Server.Host + ":" + cfg.Server.Port
	logger.Infof("Server starting on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}

// registerStatic serves the embedded frontend build with SPA fallback.
func registerStatic(r *gin.Engine) {
	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return
	}

	serveIndex := func(c *gin.Context) {
		data, readErr := fs.ReadFile(staticFS, "index.html")
		if readErr != nil {
			c.String(404, "index.html not found")
			return
		}
		c.Data(200, "text/html; charset=utf-8", data)
	}

	r.GET("/", serveIndex)

	r.NoRoute(func(c *gin.Context) {
		path := c.Request.URL.Path[1:] // Remove leading /

		data, readErr := fs.ReadFile(staticFS, path)
		if readErr != nil {
			// Fallback to index.html for SPA routing
			serveIndex(c)
			return
		}

		contentType := "application/octet-stream"
		if len(path) > 3 {
			switch path[len(path)-3:] {
			case ".js":
				contentType = "application/javascript"
			case "css":
				contentType = "text/css"
			case "tml":
				contentType = "text/html"
			case "son":
				contentType = "application/json"
			case "svg":
				contentType = "image/svg+xml"
			case "png":
				contentType = "image/png"
			case "ico":
				contentType = "image/x-icon"
			}
		}
		c.Data(200, contentType, data)
	})
}
