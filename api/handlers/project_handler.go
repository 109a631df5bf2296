// api/handlers/project_handler.go
package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Annany2002/projecthub-backend/api/middleware"
	"github.com/Annany2002/projecthub-backend/api/models"
	"github.com/Annany2002/projecthub-backend/config"
	"github.com/Annany2002/projecthub-backend/internal/auth"
	"github.com/Annany2002/projecthub-backend/internal/core"
	"github.com/Annany2002/projecthub-backend/internal/domain"
	"github.com/Annany2002/projecthub-backend/internal/storage"
)

// ProjectHandler holds dependencies for project handlers.
type ProjectHandler struct {
	Projects *storage.ProjectRepo
	Cfg      *config.Config
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects *storage.ProjectRepo, cfg *config.Config) *ProjectHandler {
	return &ProjectHandler{Projects: projects, Cfg: cfg}
}

// Register creates a project from a multipart form with an optional file.
func (h *ProjectHandler) Register(c *gin.Context) {
	claim, ok := middleware.Identity(c)
	if !ok {
		_ = c.Error(auth.ErrMissingIdentity)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Cfg.MaxUploadBytes)
	if err := c.Request.ParseMultipartForm(h.Cfg.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			_ = c.Error(err)
			return
		}
		customLog.Warnf("Project upload parse error: %v", err)
		_ = c.Error(core.NewValidationError(models.ProjectFieldFile, "Error uploading file"))
		return
	}

	rawUserID := strings.TrimSpace(c.PostForm(models.ProjectFieldUserID))
	title := strings.TrimSpace(c.PostForm(models.ProjectFieldTitle))
	if rawUserID == "" || title == "" {
		_ = c.Error(core.NewMissingFieldsError(models.ProjectFieldUserID, models.ProjectFieldTitle))
		return
	}
	userID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil || userID < 1 {
		_ = c.Error(core.NewValidationError(models.ProjectFieldUserID, "Invalid user ID provided"))
		return
	}

	np := domain.NewProject{
		UserID:    userID,
		Title:     title,
		Semester:  optionalField(c, models.ProjectFieldSemester),
		Link:      optionalField(c, models.ProjectFieldLink),
		CreatedBy: claim.SubjectID,
	}

	stored, err := h.saveUpload(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	np.File = stored

	project, err := h.Projects.Create(c.Request.Context(), np)
	if err != nil {
		if stored != nil {
			if rmErr := os.Remove(stored.Path); rmErr != nil {
				customLog.Warnf("Failed to remove orphaned upload %s: %v", stored.Path, rmErr)
			}
		}
		_ = c.Error(err)
		return
	}

	customLog.Printf("Project %d registered for user %d by user %d", project.ID, project.UserID, claim.SubjectID)
	c.JSON(http.StatusCreated, models.ProjectResponse{
		Message:      "Project created successfully",
		Project:      project,
		FileUploaded: stored != nil,
	})
}

// View returns a single active project.
func (h *ProjectHandler) View(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		_ = c.Error(err)
		return
	}
	project, err := h.Projects.FindByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project fetched successfully", "project": project})
}

// List returns a filtered, sorted page of active projects.
func (h *ProjectHandler) List(c *gin.Context) {
	spec, err := core.BuildQuerySpec(c.Request.URL.Query(), core.ProjectListSchema, core.BuildOptions{MaxLimit: h.Cfg.ListMaxLimit})
	if err != nil {
		_ = c.Error(err)
		return
	}

	page, err := h.Projects.List(c.Request.Context(), spec)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, models.NewListResponse("Projects fetched successfully", page))
}

// saveUpload stores the optional "file" part under the upload directory with
// a generated name. It returns nil when no file was sent.
func (h *ProjectHandler) saveUpload(c *gin.Context) (*domain.StoredFile, error) {
	fh, err := c.FormFile(models.ProjectFieldFile)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		customLog.Warnf("Project upload read error: %v", err)
		return nil, core.NewValidationError(models.ProjectFieldFile, "Error uploading file")
	}

	if err := os.MkdirAll(h.Cfg.UploadDir, 0750); err != nil {
		customLog.Errorf("Failed to create upload directory '%s': %v", h.Cfg.UploadDir, err)
		return nil, err
	}

	dst := filepath.Join(h.Cfg.UploadDir, uuid.NewString()+uploadExt(fh.Filename))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		customLog.Errorf("Failed to save upload to %s: %v", dst, err)
		return nil, err
	}

	mimeType := fh.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return &domain.StoredFile{
		Path:     dst,
		Name:     filepath.Base(fh.Filename),
		Size:     fh.Size,
		MimeType: mimeType,
	}, nil
}

// uploadExt keeps a short, plain extension from the client file name.
func uploadExt(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if len(ext) > 10 || !core.IsValidIdentifier(strings.TrimPrefix(ext, ".")) {
		return ""
	}
	return ext
}

func optionalField(c *gin.Context, name string) *string {
	v := strings.TrimSpace(c.PostForm(name))
	if v == "" {
		return nil
	}
	return &v
}
