package handlers

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/petzone/backend/internal/apperr"
	"github.com/petzone/backend/internal/config"
	"github.com/petzone/backend/internal/models"
	"github.com/petzone/backend/internal/storage"
)

// Handler combines all handler types
type Handler struct {
	Auth      *AuthHandler
	Pet       *PetHandler
	CareLog   *CareLogHandler
	Memory    *MemoryHandler
	Community *CommunityHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, blobs storage.BlobStore, cfg *config.Properties) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(db, blobs, cfg),
		Pet:       NewPetHandler(db, blobs, cfg),
		CareLog:   NewCareLogHandler(db),
		Memory:    NewMemoryHandler(db, blobs, cfg),
		Community: NewCommunityHandler(db, cfg),
	}
}

// currentUserID reads the acting user id set by the auth middleware.
func currentUserID(c *gin.Context) (int, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	switch v := userID.(type) {
	case int:
		return v, true
	case uint:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// respondError is the uniform boundary translator: typed application errors
// map to their status and message, anything else becomes a generic 500.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	body := gin.H{"message": apperr.Message(err)}
	if status == http.StatusInternalServerError {
		log.Printf("unhandled error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if gin.Mode() != gin.ReleaseMode {
			body["detail"] = err.Error()
		}
	}
	c.JSON(status, body)
}

// findOwnedPet looks a pet up by (id, owner) in a single filter so callers
// cannot distinguish a missing pet from someone else's pet.
func findOwnedPet(db *gorm.DB, petID, userID int) (models.Pet, error) {
	var pet models.Pet
	err := db.Where("id = ? AND user_id = ?", petID, userID).First(&pet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pet, apperr.NotFound("Pet not found")
	}
	if err != nil {
		return pet, err
	}
	return pet, nil
}

// errNoFile marks a form with no file part, so callers with optional
// uploads can tell it apart from a file that failed validation.
var errNoFile = apperr.Validation("No file uploaded")

// imageFromForm pulls a single image file out of a multipart form and
// enforces the configured size and format limits.
func imageFromForm(c *gin.Context, field string, cfg *config.Properties) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := c.Request.FormFile(field)
	if err != nil {
		return nil, nil, errNoFile
	}

	if header.Size > cfg.Upload.MaxBytes {
		file.Close()
		return nil, nil, apperr.Validation("File too large")
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	for _, allowed := range cfg.Upload.AllowedFormats {
		if ext == allowed {
			return file, header, nil
		}
	}
	file.Close()
	return nil, nil, apperr.Validation(fmt.Sprintf("Unsupported format: %s", ext))
}

func contentTypeForExt(filename string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
