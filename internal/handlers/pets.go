package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/petzone/backend/internal/config"
	"github.com/petzone/backend/internal/models"
	"github.com/petzone/backend/internal/storage"
)

type PetHandler struct {
	db    *gorm.DB
	blobs storage.BlobStore
	cfg   *config.Properties
}

func NewPetHandler(db *gorm.DB, blobs storage.BlobStore, cfg *config.Properties) *PetHandler {
	return &PetHandler{db: db, blobs: blobs, cfg: cfg}
}

// GetMyPets returns all pets owned by the current user
func (h *PetHandler) GetMyPets(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var pets []models.Pet
	if err := h.db.Where("user_id = ?", userID).Order("created_at desc").Find(&pets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch pets"})
		return
	}

	if pets == nil {
		pets = []models.Pet{}
	}
	c.JSON(http.StatusOK, pets)
}

// GetPet returns a single pet owned by the current user
func (h *PetHandler) GetPet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	petID, _ := strconv.Atoi(c.Param("id"))
	pet, err := findOwnedPet(h.db, petID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pet)
}

// AddPet registers a new pet profile
func (h *PetHandler) AddPet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var input struct {
		Name        string    `json:"name" binding:"required"`
		Species     string    `json:"species" binding:"required,oneof=Dog Cat Bird Rabbit Hamster Fish Other"`
		Breed       string    `json:"breed" binding:"required"`
		DateOfBirth time.Time `json:"date_of_birth" binding:"required"`
		Gender      string    `json:"gender" binding:"required,oneof=Male Female"`
		Weight      *float64  `json:"weight"`
		MicrochipID string    `json:"microchip_id"`
		Notes       string    `json:"notes"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation Error", "errors": []string{err.Error()}})
		return
	}

	pet := models.Pet{
		UserID:      userID,
		Name:        input.Name,
		Species:     input.Species,
		Breed:       input.Breed,
		DateOfBirth: input.DateOfBirth,
		Gender:      input.Gender,
		Weight:      input.Weight,
		MicrochipID: input.MicrochipID,
		Notes:       input.Notes,
	}

	if err := h.db.Create(&pet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create pet"})
		return
	}

	pet.Age = pet.AgeAt(time.Now())
	c.JSON(http.StatusCreated, pet)
}

// UpdatePet applies a partial update to a pet owned by the current user
func (h *PetHandler) UpdatePet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	petID, _ := strconv.Atoi(c.Param("id"))
	pet, err := findOwnedPet(h.db, petID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var input struct {
		Name        *string    `json:"name"`
		Species     *string    `json:"species" binding:"omitempty,oneof=Dog Cat Bird Rabbit Hamster Fish Other"`
		Breed       *string    `json:"breed"`
		DateOfBirth *time.Time `json:"date_of_birth"`
		Gender      *string    `json:"gender" binding:"omitempty,oneof=Male Female"`
		Weight      *float64   `json:"weight"`
		MicrochipID *string    `json:"microchip_id"`
		Notes       *string    `json:"notes"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation Error", "errors": []string{err.Error()}})
		return
	}

	if input.Name != nil {
		pet.Name = *input.Name
	}
	if input.Species != nil {
		pet.Species = *input.Species
	}
	if input.Breed != nil {
		pet.Breed = *input.Breed
	}
	if input.DateOfBirth != nil {
		pet.DateOfBirth = *input.DateOfBirth
	}
	if input.Gender != nil {
		pet.Gender = *input.Gender
	}
	if input.Weight != nil {
		pet.Weight = input.Weight
	}
	if input.MicrochipID != nil {
		pet.MicrochipID = *input.MicrochipID
	}
	if input.Notes != nil {
		pet.Notes = *input.Notes
	}

	if err := h.db.Save(&pet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update pet"})
		return
	}

	pet.Age = pet.AgeAt(time.Now())
	c.JSON(http.StatusOK, pet)
}

// UploadPetPhoto uploads a photo first and only then updates the record.
func (h *PetHandler) UploadPetPhoto(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	petID, _ := strconv.Atoi(c.Param("id"))
	pet, err := findOwnedPet(h.db, petID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	file, header, err := imageFromForm(c, "photo", h.cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	url, err := h.blobs.Store(c.Request.Context(), file, header.Size, "pets", contentTypeForExt(header.Filename))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": "Failed to upload photo"})
		return
	}

	if err := h.db.Model(&pet).Update("photo_url", url).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update pet"})
		return
	}

	pet.PhotoURL = url
	pet.Age = pet.AgeAt(time.Now())
	c.JSON(http.StatusOK, pet)
}

// DeletePet removes a pet and all of its care logs. Memories and community
// posts referencing the pet are left untouched.
func (h *PetHandler) DeletePet(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	petID, _ := strconv.Atoi(c.Param("id"))
	pet, err := findOwnedPet(h.db, petID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pet_id = ?", pet.ID).Delete(&models.CareLog{}).Error; err != nil {
			return err
		}
		return tx.Delete(&pet).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete pet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Pet deleted successfully"})
}

// GetPetStats returns all-time per-type care log counts for a pet
func (h *PetHandler) GetPetStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	petID, _ := strconv.Atoi(c.Param("id"))
	pet, err := findOwnedPet(h.db, petID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	var logs []models.CareLog
	if err := h.db.Where("pet_id = ?", pet.ID).Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch care logs"})
		return
	}

	type stat struct {
		Type     string    `json:"type"`
		Count    int       `json:"count"`
		LastDate time.Time `json:"last_date"`
	}
	byType := map[string]*stat{}
	for _, l := range logs {
		s, ok := byType[l.Type]
		if !ok {
			s = &stat{Type: l.Type}
			byType[l.Type] = s
		}
		s.Count++
		if l.Date.After(s.LastDate) {
			s.LastDate = l.Date
		}
	}

	stats := make([]stat, 0, len(byType))
	for _, s := range byType {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Type < stats[j].Type })

	c.JSON(http.StatusOK, gin.H{
		"pet":        pet,
		"care_stats": stats,
	})
}
