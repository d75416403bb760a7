package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/petzone/backend/internal/config"
	"github.com/petzone/backend/internal/database"
	"github.com/petzone/backend/internal/models"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func testConfig() *config.Properties {
	return &config.Properties{
		JWTSecret: "test-secret",
		Page:      config.PageProperties{DefaultLimit: 20, MaxLimit: 100},
		Upload: config.UploadProperties{
			MaxBytes:       10 * 1024 * 1024,
			AllowedFormats: []string{"jpg", "jpeg", "png", "gif"},
		},
	}
}

// asUser stands in for the auth middleware in tests.
func asUser(userID int) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Next()
	}
}

// fakeBlobStore records blob operations instead of talking to S3.
type fakeBlobStore struct {
	stored    []string
	removed   []string
	removeErr error
	storeErr  error
}

func (f *fakeBlobStore) Store(_ context.Context, reader io.Reader, _ int64, folder, _ string) (string, error) {
	if f.storeErr != nil {
		return "", f.storeErr
	}
	io.Copy(io.Discard, reader)
	url := fmt.Sprintf("http://blobs.local/petzone/%s/img-%d.jpg", folder, len(f.stored))
	f.stored = append(f.stored, url)
	return url, nil
}

func (f *fakeBlobStore) Remove(_ context.Context, identifier string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removed = append(f.removed, identifier)
	return nil
}

func createTestPet(t *testing.T, db *gorm.DB, userID int, name string) models.Pet {
	t.Helper()
	pet := models.Pet{
		UserID:      userID,
		Name:        name,
		Species:     "Dog",
		Breed:       "Beagle",
		DateOfBirth: time.Date(2020, 6, 15, 0, 0, 0, 0, time.UTC),
		Gender:      "Male",
	}
	if err := db.Create(&pet).Error; err != nil {
		t.Fatalf("Failed to create test pet: %v", err)
	}
	return pet
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
}

// multipartBody builds a multipart form with the given fields and an
// optional image file part.
func multipartBody(t *testing.T, fields map[string]string, fileField, fileName string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, fileName)
		if err != nil {
			t.Fatalf("Failed to create file part: %v", err)
		}
		part.Write([]byte("fake image bytes"))
	}
	writer.Close()
	return buf, writer.FormDataContentType()
}

func init() {
	gin.SetMode(gin.TestMode)
}

var errBlobDown = errors.New("blob store unavailable")
