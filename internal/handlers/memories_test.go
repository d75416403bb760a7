package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/petzone/backend/internal/models"
)

func newMemoryRouter(db *gorm.DB, blobs *fakeBlobStore, userID int) *gin.Engine {
	h := NewMemoryHandler(db, blobs, testConfig())
	r := gin.New()
	r.Use(asUser(userID))
	r.GET("/memories/all", h.GetAllMemories)
	r.GET("/memories/pet/:petId", h.GetPetMemories)
	r.POST("/memories", h.AddMemory)
	r.PUT("/memories/:id", h.UpdateMemory)
	r.DELETE("/memories/:id", h.DeleteMemory)
	return r
}

func postMemory(t *testing.T, r *gin.Engine, fields map[string]string, fileName string) *httptest.ResponseRecorder {
	t.Helper()
	fileField := ""
	if fileName != "" {
		fileField = "image"
	}
	body, contentType := multipartBody(t, fields, fileField, fileName)
	req := httptest.NewRequest("POST", "/memories", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAddMemoryForeignPetNotFound(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	r := newMemoryRouter(db, &fakeBlobStore{}, 2)

	w := postMemory(t, r, map[string]string{"pet_id": strconv.Itoa(pet.ID), "caption": "hello"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddMemoryWithImage(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	blobs := &fakeBlobStore{}
	r := newMemoryRouter(db, blobs, 1)

	w := postMemory(t, r, map[string]string{
		"pet_id":  strconv.Itoa(pet.ID),
		"caption": "Beach day",
		"tags":    "beach, summer",
	}, "beach.jpg")
	require.Equal(t, http.StatusCreated, w.Code)
	require.Len(t, blobs.stored, 1)

	var memory models.Memory
	require.NoError(t, db.First(&memory).Error)
	assert.Equal(t, blobs.stored[0], memory.ImageURL)
	assert.Equal(t, []string{"beach", "summer"}, memory.Tags)
	assert.False(t, memory.IsShared)

	var posts int64
	db.Model(&models.CommunityPost{}).Count(&posts)
	assert.EqualValues(t, 0, posts)
}

func TestAddMemoryRejectsInvalidImage(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	blobs := &fakeBlobStore{}
	r := newMemoryRouter(db, blobs, 1)

	w := postMemory(t, r, map[string]string{
		"pet_id":  strconv.Itoa(pet.ID),
		"caption": "sketchy",
	}, "payload.exe")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Memory{}).Count(&count)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, blobs.stored)
}

func TestAddMemoryRejectsOversizedImage(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")

	cfg := testConfig()
	cfg.Upload.MaxBytes = 1
	h := NewMemoryHandler(db, &fakeBlobStore{}, cfg)
	r := gin.New()
	r.Use(asUser(1))
	r.POST("/memories", h.AddMemory)

	w := postMemory(t, r, map[string]string{
		"pet_id":  strconv.Itoa(pet.ID),
		"caption": "too big",
	}, "huge.jpg")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Memory{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestSharedMemoryProjectsToCommunity(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Luna")
	blobs := &fakeBlobStore{}
	r := newMemoryRouter(db, blobs, 1)

	w := postMemory(t, r, map[string]string{
		"pet_id":    strconv.Itoa(pet.ID),
		"caption":   "First snow!",
		"is_shared": "true",
	}, "snow.jpg")
	require.Equal(t, http.StatusCreated, w.Code)

	var post models.CommunityPost
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "First snow!", post.Caption)
	assert.Equal(t, "Memory", post.CareTag)
	assert.Equal(t, "Luna", post.PetName)
	assert.Equal(t, blobs.stored[0], post.ImageURL)
}

func TestSharedMemoryBlankCaptionFallsBack(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Luna")
	r := newMemoryRouter(db, &fakeBlobStore{}, 1)

	w := postMemory(t, r, map[string]string{
		"pet_id":    strconv.Itoa(pet.ID),
		"caption":   "   ",
		"is_shared": "true",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	var post models.CommunityPost
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "Shared a memory", post.Caption)
}

func TestUpdateMemoryOwnership(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	memory := models.Memory{PetID: pet.ID, UserID: 1, Caption: "old"}
	require.NoError(t, db.Create(&memory).Error)

	other := newMemoryRouter(db, &fakeBlobStore{}, 2)
	w := doJSON(t, other, "PUT", fmt.Sprintf("/memories/%d", memory.ID), gin.H{"caption": "hijacked"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	owner := newMemoryRouter(db, &fakeBlobStore{}, 1)
	w = doJSON(t, owner, "PUT", fmt.Sprintf("/memories/%d", memory.ID), gin.H{"caption": "new", "is_shared": true})
	require.Equal(t, http.StatusOK, w.Code)

	var updated models.Memory
	require.NoError(t, db.First(&updated, memory.ID).Error)
	assert.Equal(t, "new", updated.Caption)
	assert.True(t, updated.IsShared)
}

func TestDeleteMemoryReleasesBlob(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	memory := models.Memory{
		PetID:    pet.ID,
		UserID:   1,
		ImageURL: "http://blobs.local/petzone/memories/img-0.jpg",
	}
	require.NoError(t, db.Create(&memory).Error)

	blobs := &fakeBlobStore{}
	r := newMemoryRouter(db, blobs, 1)
	w := doJSON(t, r, "DELETE", fmt.Sprintf("/memories/%d", memory.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, blobs.removed, 1)
	assert.Equal(t, "memories/img-0.jpg", blobs.removed[0])

	var count int64
	db.Model(&models.Memory{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestDeleteMemoryBlobFailureIsBestEffort(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	memory := models.Memory{
		PetID:    pet.ID,
		UserID:   1,
		ImageURL: "http://blobs.local/petzone/memories/img-0.jpg",
	}
	require.NoError(t, db.Create(&memory).Error)

	blobs := &fakeBlobStore{removeErr: errBlobDown}
	r := newMemoryRouter(db, blobs, 1)
	w := doJSON(t, r, "DELETE", fmt.Sprintf("/memories/%d", memory.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Memory{}).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestGetAllMemoriesAnnotatesPet(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	otherPet := createTestPet(t, db, 2, "Milo")
	db.Create(&models.Memory{PetID: pet.ID, UserID: 1, Caption: "mine"})
	db.Create(&models.Memory{PetID: otherPet.ID, UserID: 2, Caption: "not mine"})

	r := newMemoryRouter(db, &fakeBlobStore{}, 1)
	w := doJSON(t, r, "GET", "/memories/all", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var memories []map[string]any
	decodeJSON(t, w, &memories)
	require.Len(t, memories, 1)
	assert.Equal(t, "Rex", memories[0]["pet_name"])
	assert.Equal(t, "Beagle", memories[0]["breed"])
}
