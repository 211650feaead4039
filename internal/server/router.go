// Package server assembles the HTTP surface of vitehub.
package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"vitehub/internal/admin"
	"vitehub/internal/audit"
	"vitehub/internal/frontend"
	"vitehub/internal/reload"
	"vitehub/pkg/models"
	"vitehub/pkg/utils"
	"vitehub/pkg/vite"
)

type Deps struct {
	Config   utils.Config
	Frontend *frontend.Frontend
	Hub      *reload.Hub
	// DB and Audit are nil when the audit log is disabled.
	DB    *sql.DB
	Audit *audit.Repo

	Tokens       admin.TokenService
	PasswordHash string
}

// NewRouter mounts the document handler on / and as the fallback for every
// unmatched path, so client-side routes render the same document.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), RequestID())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	if d.Config.Mode == utils.ModeCSR {
		router.Static("/assets", filepath.Join(d.Config.Root, "assets"))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "mode": d.Frontend.Mode})
	})
	router.GET("/ready", readyHandler(d))
	router.GET("/debug", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"mode":       d.Frontend.Mode,
			"entry":      d.Frontend.Entry,
			"watching":   d.Frontend.Watching(),
			"ws_clients": d.Hub.Stats().WSClients,
		})
	})
	router.GET("/ws", reload.WSHandler(d.Hub))

	admin.NewHandler(d.Frontend, d.Audit, d.Tokens, d.PasswordHash).
		RegisterRoutes(router.Group("/admin"))

	page := d.Frontend.Handler()
	router.GET("/", page)
	router.NoRoute(func(c *gin.Context) {
		if !wantsDocument(c.Request) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		page(c)
	})
	return router
}

// wantsDocument reports whether an unmatched request is a client-side route.
// Missing files, such as a stale hashed asset after a deploy, stay 404.
func wantsDocument(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		return false
	}
	p := r.URL.Path
	if p == "/assets" || strings.HasPrefix(p, "/assets/") {
		return false
	}
	return path.Ext(p) == ""
}

func readyHandler(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := gin.H{"status": "ready", "mode": d.Frontend.Mode}
		code := http.StatusOK

		if d.Frontend.Mode == utils.ModeCSR {
			m, err := d.Frontend.Manifest()
			if err != nil || len(m) == 0 {
				resp["status"], resp["manifest"] = "not_ready", "missing"
				code = http.StatusServiceUnavailable
			} else {
				resp["manifest_entries"] = len(m)
			}
		}

		if d.DB != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.DB.PingContext(ctx); err != nil {
				log.Printf("[server] ready: audit db ping failed: %v", err)
				resp["status"], resp["db"] = "not_ready", "unavailable"
				code = http.StatusServiceUnavailable
			} else {
				resp["db"] = "ok"
			}
		}

		c.JSON(code, resp)
	}
}

// ConnectReloads forwards every manifest reload to websocket clients and,
// when enabled, to the audit log.
func ConnectReloads(f *frontend.Frontend, hub *reload.Hub, repo *audit.Repo) {
	f.OnReload(func(r vite.ReloadResult) {
		ev := models.FromReload(r)
		hub.BroadcastJSON(ev)

		if repo == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := repo.Record(ctx, ev); err != nil {
			log.Printf("[audit] record reload failed: %v", err)
		}
	})
}
