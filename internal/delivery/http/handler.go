package http

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/collabmatch/backend/config"
	"github.com/collabmatch/backend/internal/domain"
	"github.com/collabmatch/backend/internal/infrastructure/report"
	"github.com/collabmatch/backend/internal/usecase"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	collab   *usecase.CollabService
	profiles *usecase.ProfileService
	cfg      *config.Config
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(collab *usecase.CollabService, profiles *usecase.ProfileService, cfg *config.Config, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		collab:   collab,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "collabmatch-backend",
		"version": "1.0.0",
	})
}

// UploadData accepts contact sheets (csv or xlsx), stores them in the
// upload directory and reloads the snapshot from everything on disk.
func (h *Handler) UploadData(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		h.respondError(c, fmt.Errorf("%w: no files in upload", domain.ErrInvalidRequest))
		return
	}

	saved := 0
	for _, file := range files {
		ext := strings.ToLower(filepath.Ext(file.Filename))
		if ext != ".csv" && ext != ".xlsx" && ext != ".xls" {
			h.respondError(c, fmt.Errorf("%w: unsupported file type %q", domain.ErrInvalidRequest, ext))
			return
		}
		dest := filepath.Join(h.cfg.Data.UploadDir, filepath.Base(file.Filename))
		if err := c.SaveUploadedFile(file, dest); err != nil {
			h.logger.Error("failed to save upload", zap.String("file", file.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save upload"})
			return
		}
		saved++
	}

	snapshot, err := h.collab.Reload(h.cfg.Data.UploadDir, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"uploaded":      saved,
		"files_loaded":  snapshot.FilesLoaded,
		"files_skipped": snapshot.FilesSkipped,
		"contacts":      snapshot.IdentityCount(),
		"products":      snapshot.ProductCount(),
	})
}

// ReloadData re-reads every sheet in the upload directory.
func (h *Handler) ReloadData(c *gin.Context) {
	snapshot, err := h.collab.Reload(h.cfg.Data.UploadDir, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"files_loaded":  snapshot.FilesLoaded,
		"files_skipped": snapshot.FilesSkipped,
		"contacts":      snapshot.IdentityCount(),
		"products":      snapshot.ProductCount(),
	})
}

// GetStats reports what the current snapshot contains.
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.collab.Stats())
}

// VerifyAssignment checks one name-product pair against the history.
func (h *Handler) VerifyAssignment(c *gin.Context) {
	var req domain.Assignment
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	result, err := h.collab.Verify(c.Request.Context(), req.Name, req.Product)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type batchVerifyRequest struct {
	Assignments []domain.Assignment `json:"assignments" binding:"required,min=1,dive"`
}

// VerifyBatch checks a list of assignments and reports per-row results
// plus aggregate counts.
func (h *Handler) VerifyBatch(c *gin.Context) {
	var req batchVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	rows, stats, err := h.collab.VerifyBatch(c.Request.Context(), req.Assignments)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"rows":  rows,
		"stats": stats,
	})
}

// ExportBatch runs a batch verification and streams the result as an
// xlsx workbook.
func (h *Handler) ExportBatch(c *gin.Context) {
	var req batchVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	rows, stats, err := h.collab.VerifyBatch(c.Request.Context(), req.Assignments)
	if err != nil {
		h.respondError(c, err)
		return
	}

	buf, err := report.WriteVerificationReport(rows, stats)
	if err != nil {
		h.logger.Error("failed to build report", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build report"})
		return
	}

	filename := fmt.Sprintf("abgleich_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		buf.Bytes())
}

type searchRequest struct {
	Name string `json:"name" binding:"required"`
}

// SearchInfluencer resolves a free-form name against the loaded
// contacts and returns the match with its product history.
func (h *Handler) SearchInfluencer(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	match, err := h.collab.Resolve(req.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	products, err := h.collab.GetProducts(match.Name)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"match":    match,
		"products": products,
	})
}

// ListProfiles returns every stored profile.
func (h *Handler) ListProfiles(c *gin.Context) {
	profiles, err := h.profiles.ListProfiles(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// SearchProfiles matches profiles by substring.
func (h *Handler) SearchProfiles(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		h.respondError(c, fmt.Errorf("%w: query parameter q is required", domain.ErrInvalidRequest))
		return
	}
	profiles, err := h.profiles.SearchProfiles(c.Request.Context(), query)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profiles": profiles})
}

// GetProfile returns one profile by (fuzzy-resolved) name.
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.profiles.GetProfile(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertProfile creates or updates the profile for a name.
func (h *Handler) UpsertProfile(c *gin.Context) {
	var req domain.Profile
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	profile, err := h.profiles.UpsertProfile(c.Request.Context(), c.Param("name"), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

// LogCollaboration appends one collaboration record for a profile.
func (h *Handler) LogCollaboration(c *gin.Context) {
	var req domain.CollaborationEntry
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	req.Influencer = c.Param("name")

	if err := h.profiles.LogCollaboration(c.Request.Context(), req); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "logged"})
}

// GetCollaborations lists the logged collaborations for a profile.
func (h *Handler) GetCollaborations(c *gin.Context) {
	entries, err := h.profiles.GetCollaborations(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collaborations": entries})
}

// GenerateSummary produces (and persists) an AI summary for a profile.
func (h *Handler) GenerateSummary(c *gin.Context) {
	summary, err := h.profiles.GenerateSummary(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

// GetNotionStatus reports whether a workspace token is configured.
func (h *Handler) GetNotionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.profiles.GetNotionStatus(c.Request.Context()))
}

type notionTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// SaveNotionToken validates and stores a workspace integration token.
func (h *Handler) SaveNotionToken(c *gin.Context) {
	var req notionTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}

	if err := h.profiles.SaveNotionToken(c.Request.Context(), req.Token); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "connected"})
}

// ClearNotionToken removes the stored workspace token.
func (h *Handler) ClearNotionToken(c *gin.Context) {
	if err := h.profiles.ClearNotionToken(c.Request.Context()); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "disconnected"})
}

// SyncNotion pulls the workspace database and attaches entries to
// profiles.
func (h *Handler) SyncNotion(c *gin.Context) {
	result, err := h.profiles.SyncNotion(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// respondError maps domain errors onto HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotLoaded):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrDataDirMissing):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrNoMatch):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrProfileNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotionNotConnected):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrAINotConfigured):
		status = http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNotionAPIFailure):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
