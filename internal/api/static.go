package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mindmap-server/internal/config"
	"github.com/rs/zerolog"
)

// staticHandler serves the web client for every path no route claimed.
// /api/* never falls through to files. Unauthenticated page requests are
// redirected to the login page; assets stay public so that page can load.
func staticHandler(cfg config.ServerConfig, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqPath := c.Request.URL.Path
		if strings.HasPrefix(reqPath, "/api/") || reqPath == "/api" || cfg.StaticDir == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
			return
		}

		clean := path.Clean("/" + reqPath)
		if clean != cfg.LoginPath && isPage(clean) && actorFrom(c) == nil {
			c.Redirect(http.StatusFound, cfg.LoginPath)
			return
		}

		file := filepath.Join(cfg.StaticDir, filepath.FromSlash(clean))
		info, err := os.Stat(file)
		if err == nil && info.IsDir() {
			file = filepath.Join(file, "index.html")
			info, err = os.Stat(file)
		}
		if err != nil || info.IsDir() {
			log.Debug().Str("path", clean).Msg("Static file not found")
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		c.File(file)
	}
}

// isPage reports whether a path names an HTML page rather than an asset
func isPage(p string) bool {
	ext := path.Ext(p)
	return ext == "" || ext == ".html" || ext == ".htm"
}
