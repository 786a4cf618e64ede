package cvs

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cv-backend/internal/shared/server/respond"
	"cv-backend/internal/shared/telemetry"
	"cv-backend/internal/shared/util"
)

const maxUploadBytes = 10 << 20

// Runner starts pipeline runs for uploaded CVs. The HTTP layer never blocks
// on a run; both methods are fire-and-forget.
type Runner interface {
	ProcessAsync(cvID, filePath string)
	ReprocessAsync(cvID string)
}

// Handler wires CV HTTP endpoints to the repository and the pipeline runner.
type Handler struct {
	Repo    Repo
	Runner  Runner
	TempDir string
}

// NewHandler constructs a Handler.
func NewHandler(repo Repo, runner Runner, tempDir string) *Handler {
	return &Handler{Repo: repo, Runner: runner, TempDir: tempDir}
}

// RegisterRoutes attaches CV routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/cvs", h.uploadCV)
	rg.GET("/cvs", h.listCVs)
	rg.GET("/cvs/:id", h.getCV)
	rg.POST("/cvs/:id/reprocess", h.reprocessCV)
}

func (h *Handler) uploadCV(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	if file.Size <= 0 || file.Size > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file size exceeds limit", nil)
		return
	}

	fileName, err := util.SanitizeFileName(file.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid file name", nil)
		return
	}

	docType, err := ParseDocumentType(file.Header.Get("Content-Type"), fileName)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unsupported document type", nil)
		return
	}

	cvID := uuid.NewString()
	tmpPath := filepath.Join(h.TempDir, fmt.Sprintf("cv-upload-%s%s", cvID, util.SafeExt(fileName)))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		telemetry.Error("cv.upload_save", map[string]any{"cv_id": cvID, "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store upload", nil)
		return
	}

	var userID *string
	if raw := strings.TrimSpace(c.PostForm("userId")); raw != "" {
		userID = &raw
	}

	now := time.Now().UTC()
	cv := CV{
		ID:               cvID,
		UserID:           userID,
		OriginalFileName: fileName,
		DocumentType:     docType,
		FileSize:         file.Size,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := h.Repo.Create(c.Request.Context(), cv); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil && !os.IsNotExist(removeErr) {
			telemetry.Warn("cv.upload_cleanup", map[string]any{"cv_id": cvID, "error": removeErr.Error()})
		}
		telemetry.Error("cv.create", map[string]any{"cv_id": cvID, "error": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create cv", nil)
		return
	}

	c.Set("cvId", cvID)
	h.Runner.ProcessAsync(cvID, tmpPath)

	respond.JSON(c, http.StatusAccepted, gin.H{
		"id":     cvID,
		"status": StatusPending,
	})
}

func (h *Handler) getCV(c *gin.Context) {
	cvID := c.Param("id")
	if cvID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cv id is required", nil)
		return
	}

	cv, err := h.Repo.GetByID(c.Request.Context(), cvID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch cv", nil)
		}
		return
	}

	resp := gin.H{"cv": cv.ToResponse()}
	if cv.Status == StatusCompleted {
		if data, err := h.Repo.GetExtractedData(c.Request.Context(), cvID); err == nil {
			resp["extractedData"] = data.ToResponse()
		} else if !errors.Is(err, ErrExtractedNotFound) {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch extracted data", nil)
			return
		}
	}
	respond.OK(c, resp)
}

func (h *Handler) listCVs(c *gin.Context) {
	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	list, err := h.Repo.List(c.Request.Context(), strings.TrimSpace(c.Query("userId")), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list cvs", nil)
		return
	}
	items := make([]CVResponse, 0, len(list))
	for _, cv := range list {
		items = append(items, cv.ToResponse())
	}
	respond.OK(c, gin.H{
		"items":  items,
		"limit":  limit,
		"offset": offset,
	})
}

// reprocessCV validates the preconditions synchronously so callers get a 4xx
// for an unknown CV, a missing stored file, or a CV that is not FAILED. The
// run itself is fire-and-forget, same as the initial upload.
func (h *Handler) reprocessCV(c *gin.Context) {
	cvID := c.Param("id")
	if cvID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "cv id is required", nil)
		return
	}

	cv, err := h.Repo.GetByID(c.Request.Context(), cvID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "cv not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch cv", nil)
		}
		return
	}
	if cv.StorageFileID == "" {
		respond.Error(c, http.StatusConflict, "no_stored_file", "cv has no stored file to reprocess", nil)
		return
	}
	if cv.Status != StatusFailed {
		respond.Error(c, http.StatusConflict, "not_failed", "only failed cvs can be reprocessed", nil)
		return
	}

	c.Set("cvId", cvID)
	h.Runner.ReprocessAsync(cvID)

	respond.JSON(c, http.StatusAccepted, gin.H{
		"id":     cvID,
		"status": StatusPending,
	})
}
