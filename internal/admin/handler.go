package admin

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"vitehub/internal/audit"
	"vitehub/internal/frontend"
	"vitehub/pkg/manifest"
	"vitehub/pkg/models"
)

type Handler struct {
	Frontend     *frontend.Frontend
	Audit        *audit.Repo // nil when the audit log is disabled
	Tokens       TokenService
	PasswordHash string
}

func NewHandler(f *frontend.Frontend, auditRepo *audit.Repo, tokens TokenService, passwordHash string) *Handler {
	return &Handler{Frontend: f, Audit: auditRepo, Tokens: tokens, PasswordHash: passwordHash}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.login)

	protected := rg.Group("")
	protected.Use(AuthMiddleware(h.Tokens))
	protected.GET("/payload", h.payload)       // GET /admin/payload?entry=
	protected.GET("/manifest", h.listManifest) // GET /admin/manifest
	protected.GET("/entry/*key", h.getEntry)   // GET /admin/entry/src/main.ts
	protected.POST("/reload", h.reload)        // POST /admin/reload
	protected.GET("/reloads", h.listReloads)   // GET /admin/reloads?limit=
}

type loginReq struct {
	Operator string `json:"operator"`
	Password string `json:"password"`
}

func (h *Handler) login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	operator := strings.TrimSpace(req.Operator)
	if operator == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "operator and password required"})
		return
	}
	if h.PasswordHash == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin login disabled"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, exp, err := h.Tokens.Sign(operator)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"operator":   operator,
		"token":      token,
		"expires_at": exp.UTC().Format(time.RFC3339),
	})
}

func (h *Handler) payload(c *gin.Context) {
	entry := strings.TrimSpace(c.Query("entry"))
	if entry == "" {
		entry = h.Frontend.Entry
	}

	p, err := h.Frontend.Payload(c.Request.Context(), entry)
	if err != nil {
		if errors.Is(err, manifest.ErrEntryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "entry not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "resolve failed"})
		return
	}
	c.JSON(http.StatusOK, models.FromPayload(entry, p))
}

func (h *Handler) listManifest(c *gin.Context) {
	m, err := h.Frontend.Manifest()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no manifest in dev mode"})
		return
	}
	c.JSON(http.StatusOK, models.FromManifest(m))
}

func (h *Handler) getEntry(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key required"})
		return
	}

	m, err := h.Frontend.Manifest()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no manifest in dev mode"})
		return
	}
	e, ok := m.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, models.FromEntry(m, key, e))
}

func (h *Handler) reload(c *gin.Context) {
	res, err := h.Frontend.Reload()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	if claims := GetClaims(c); claims != nil {
		log.Printf("[admin] manifest reload requested by %s: ok=%t", claims.Operator, res.OK())
	}

	ev := models.FromReload(res)
	if !res.OK() {
		// keep filesystem details in the log only
		ev.Error = "reload failed, previous manifest kept"
		c.JSON(http.StatusUnprocessableEntity, ev)
		return
	}
	c.JSON(http.StatusOK, ev)
}

func (h *Handler) listReloads(c *gin.Context) {
	if h.Audit == nil {
		c.JSON(http.StatusOK, gin.H{"items": []models.ReloadEvent{}})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}
	items, err := h.Audit.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
