package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/petzone/backend/internal/config"
	"github.com/petzone/backend/internal/models"
	"github.com/petzone/backend/internal/storage"
)

type MemoryHandler struct {
	db    *gorm.DB
	blobs storage.BlobStore
	cfg   *config.Properties
}

func NewMemoryHandler(db *gorm.DB, blobs storage.BlobStore, cfg *config.Properties) *MemoryHandler {
	return &MemoryHandler{db: db, blobs: blobs, cfg: cfg}
}

// GetPetMemories lists memories for one owned pet, newest first
func (h *MemoryHandler) GetPetMemories(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	petID, _ := strconv.Atoi(c.Param("petId"))
	pet, err := findOwnedPet(h.db, petID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var memories []models.Memory
	if err := h.db.Where("pet_id = ?", pet.ID).Order("created_at desc").Find(&memories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch memories"})
		return
	}

	if memories == nil {
		memories = []models.Memory{}
	}
	c.JSON(http.StatusOK, memories)
}

// GetAllMemories lists memories across all of the user's pets, annotated
// with the pet's name and breed.
func (h *MemoryHandler) GetAllMemories(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var memories []models.Memory
	err := h.db.
		Joins("JOIN pets ON pets.id = memories.pet_id").
		Where("pets.user_id = ?", userID).
		Order("memories.created_at desc").
		Preload("Pet").
		Find(&memories).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch memories"})
		return
	}

	responses := make([]gin.H, 0, len(memories))
	for _, m := range memories {
		responses = append(responses, gin.H{
			"id":         m.ID,
			"pet_id":     m.PetID,
			"pet_name":   m.Pet.Name,
			"breed":      m.Pet.Breed,
			"image_url":  m.ImageURL,
			"video_url":  m.VideoURL,
			"caption":    m.Caption,
			"tags":       m.Tags,
			"is_shared":  m.IsShared,
			"created_at": m.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, responses)
}

// AddMemory records a memory with an optional uploaded image. A shared
// memory is projected into the community feed; a blank caption falls back
// to "Shared a memory" on the post.
func (h *MemoryHandler) AddMemory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	petID, err := strconv.Atoi(c.PostForm("pet_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation Error", "errors": []string{"pet_id is required"}})
		return
	}

	pet, err := findOwnedPet(h.db, petID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	caption := c.PostForm("caption")
	if len(caption) > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation Error", "errors": []string{"caption exceeds 500 characters"}})
		return
	}
	isShared := strings.EqualFold(c.PostForm("is_shared"), "true")

	var tags []string
	if raw := c.PostForm("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	// The image is optional, but one that fails validation is an error,
	// not a missing file.
	var imageURL string
	file, header, err := imageFromForm(c, "image", h.cfg)
	switch {
	case err == nil:
		defer file.Close()
		imageURL, err = h.blobs.Store(c.Request.Context(), file, header.Size, "memories", contentTypeForExt(header.Filename))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to upload image"})
			return
		}
	case !errors.Is(err, errNoFile):
		respondError(c, err)
		return
	}

	memory := models.Memory{
		PetID:    pet.ID,
		UserID:   userID,
		ImageURL: imageURL,
		Caption:  caption,
		Tags:     tags,
		IsShared: isShared,
	}

	if err := h.db.Create(&memory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create memory"})
		return
	}

	if isShared {
		postCaption := caption
		if strings.TrimSpace(postCaption) == "" {
			postCaption = "Shared a memory"
		}
		post := models.CommunityPost{
			UserID:   userID,
			PetID:    pet.ID,
			PetName:  pet.Name,
			Breed:    pet.Breed,
			Caption:  postCaption,
			ImageURL: imageURL,
			CareTag:  models.TagMemory,
		}
		if err := h.db.Create(&post).Error; err != nil {
			log.Printf("community projection failed for memory %d: %v", memory.ID, err)
		}
	}

	c.JSON(http.StatusCreated, memory)
}

// UpdateMemory patches a memory owned by the requester
func (h *MemoryHandler) UpdateMemory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	memoryID, _ := strconv.Atoi(c.Param("id"))
	var memory models.Memory
	if err := h.db.First(&memory, memoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Memory not found"})
		return
	}

	if memory.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return
	}

	var input struct {
		Caption  *string   `json:"caption" binding:"omitempty,max=500"`
		IsShared *bool     `json:"is_shared"`
		Tags     *[]string `json:"tags"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation Error", "errors": []string{err.Error()}})
		return
	}

	if input.Caption != nil {
		memory.Caption = *input.Caption
	}
	if input.IsShared != nil {
		memory.IsShared = *input.IsShared
	}
	if input.Tags != nil {
		memory.Tags = *input.Tags
	}

	if err := h.db.Save(&memory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update memory"})
		return
	}

	c.JSON(http.StatusOK, memory)
}

// DeleteMemory removes a memory. Blob cleanup is best-effort: a blob that
// cannot be parsed or removed never blocks deleting the record.
func (h *MemoryHandler) DeleteMemory(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	memoryID, _ := strconv.Atoi(c.Param("id"))
	var memory models.Memory
	if err := h.db.First(&memory, memoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Memory not found"})
		return
	}

	if memory.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return
	}

	if memory.ImageURL != "" {
		if key, ok := storage.KeyFromURL(memory.ImageURL); ok {
			if err := h.blobs.Remove(c.Request.Context(), key); err != nil {
				log.Printf("blob cleanup failed for memory %d (%s): %v", memory.ID, key, err)
			}
		}
	}

	if err := h.db.Delete(&memory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete memory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Memory deleted successfully"})
}
