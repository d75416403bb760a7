package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/petzone/backend/internal/models"
)

type CareLogHandler struct {
	db *gorm.DB
}

func NewCareLogHandler(db *gorm.DB) *CareLogHandler {
	return &CareLogHandler{db: db}
}

// careCaption builds the community caption for a shared care log and the
// care tag of the resulting post. VetVisit and Vaccination both tag as
// Health; types without a template get a generic caption and keep the raw
// type as the tag.
func careCaption(petName, logType string, d models.CareDetails) (caption, careTag string) {
	careTag = logType
	switch logType {
	case models.CareFeeding:
		food := d.FoodType
		if food == "" {
			food = "meal"
		}
		caption = fmt.Sprintf("%s enjoyed %s today!", petName, food)
	case models.CareGrooming:
		grooming := d.GroomingType
		if grooming == "" {
			grooming = "grooming session"
		}
		caption = fmt.Sprintf("%s had a %s!", petName, grooming)
	case models.CareExercise:
		duration := "30"
		if d.Duration > 0 {
			duration = strconv.Itoa(d.Duration)
		}
		activity := d.ActivityType
		if activity == "" {
			activity = "exercise"
		}
		caption = fmt.Sprintf("%s had %s minutes of %s!", petName, duration, activity)
	case models.CareVetVisit:
		reason := d.Reason
		if reason == "" {
			reason = "checkup"
		}
		caption = fmt.Sprintf("%s had a vet visit for %s", petName, reason)
		careTag = models.TagHealth
	case models.CareVaccination:
		vaccine := d.VaccineName
		if vaccine == "" {
			vaccine = "vaccination"
		}
		caption = fmt.Sprintf("%s received %s", petName, vaccine)
		careTag = models.TagHealth
	default:
		caption = fmt.Sprintf("%s care update", petName)
	}
	return caption, careTag
}

// GetPetCareLogs lists a pet's care logs, newest event date first
func (h *CareLogHandler) GetPetCareLogs(c *gin.Context) {
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

	query := h.db.Where("pet_id = ?", pet.ID)
	if logType := c.Query("type"); logType != "" {
		query = query.Where("type = ?", logType)
	}

	var logs []models.CareLog
	if err := query.Order("date desc").Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch care logs"})
		return
	}

	if logs == nil {
		logs = []models.CareLog{}
	}
	c.JSON(http.StatusOK, logs)
}

// AddCareLog records a care event and, when requested, projects it into the
// community feed. The projection is best-effort: a failed post never rolls
// back or fails the care log itself.
func (h *CareLogHandler) AddCareLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var input struct {
		PetID              int                `json:"pet_id" binding:"required"`
		Type               string             `json:"type" binding:"required,oneof=Feeding Grooming Exercise Medication VetVisit Vaccination"`
		Details            models.CareDetails `json:"details"`
		Date               *time.Time         `json:"date"`
		Reminder           *models.Reminder   `json:"reminder"`
		ShareWithCommunity bool               `json:"share_with_community"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation Error", "errors": []string{err.Error()}})
		return
	}
	if input.Reminder != nil && input.Reminder.Frequency != "" {
		switch input.Reminder.Frequency {
		case "Daily", "Weekly", "Monthly", "Custom":
		default:
			c.JSON(http.StatusBadRequest, gin.H{"message": "Validation Error", "errors": []string{"invalid reminder frequency"}})
			return
		}
	}

	pet, err := findOwnedPet(h.db, input.PetID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	careLog := models.CareLog{
		PetID:              pet.ID,
		UserID:             userID,
		Type:               input.Type,
		Details:            input.Details,
		Date:               time.Now(),
		ShareWithCommunity: input.ShareWithCommunity,
	}
	if input.Date != nil {
		careLog.Date = *input.Date
	}
	if input.Reminder != nil {
		careLog.Reminder = *input.Reminder
	}

	if err := h.db.Create(&careLog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create care log"})
		return
	}

	if input.ShareWithCommunity {
		caption, careTag := careCaption(pet.Name, careLog.Type, careLog.Details)
		post := models.CommunityPost{
			UserID:  userID,
			PetID:   pet.ID,
			PetName: pet.Name,
			Breed:   pet.Breed,
			Caption: caption,
			CareTag: careTag,
		}
		if err := h.db.Create(&post).Error; err != nil {
			log.Printf("community projection failed for care log %d: %v", careLog.ID, err)
		}
	}

	c.JSON(http.StatusCreated, careLog)
}

// UpdateCareLog patches a care log owned by the requester
func (h *CareLogHandler) UpdateCareLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	logID, _ := strconv.Atoi(c.Param("id"))
	var careLog models.CareLog
	if err := h.db.First(&careLog, logID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Care log not found"})
		return
	}

	if careLog.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return
	}

	var input struct {
		Type               *string             `json:"type" binding:"omitempty,oneof=Feeding Grooming Exercise Medication VetVisit Vaccination"`
		Details            *models.CareDetails `json:"details"`
		Date               *time.Time          `json:"date"`
		Reminder           *models.Reminder    `json:"reminder"`
		ShareWithCommunity *bool               `json:"share_with_community"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation Error", "errors": []string{err.Error()}})
		return
	}

	if input.Type != nil {
		careLog.Type = *input.Type
	}
	if input.Details != nil {
		careLog.Details = *input.Details
	}
	if input.Date != nil {
		careLog.Date = *input.Date
	}
	if input.Reminder != nil {
		careLog.Reminder = *input.Reminder
	}
	if input.ShareWithCommunity != nil {
		careLog.ShareWithCommunity = *input.ShareWithCommunity
	}

	if err := h.db.Save(&careLog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update care log"})
		return
	}

	c.JSON(http.StatusOK, careLog)
}

// DeleteCareLog removes a single care log owned by the requester
func (h *CareLogHandler) DeleteCareLog(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	logID, _ := strconv.Atoi(c.Param("id"))
	var careLog models.CareLog
	if err := h.db.First(&careLog, logID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Care log not found"})
		return
	}

	if careLog.UserID != userID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not authorized"})
		return
	}

	if err := h.db.Delete(&careLog).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete care log"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Care log deleted successfully"})
}

// GetUpcomingReminders returns enabled reminders due within the next 7 days
// across all of the user's pets, soonest first.
func (h *CareLogHandler) GetUpcomingReminders(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	now := time.Now()
	until := now.AddDate(0, 0, 7)

	var logs []models.CareLog
	err := h.db.
		Joins("JOIN pets ON pets.id = care_logs.pet_id").
		Where("pets.user_id = ?", userID).
		Where("care_logs.reminder_enabled = ?", true).
		Where("care_logs.reminder_next_date >= ? AND care_logs.reminder_next_date <= ?", now, until).
		Order("care_logs.reminder_next_date asc").
		Preload("Pet").
		Find(&logs).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch reminders"})
		return
	}

	reminders := make([]gin.H, 0, len(logs))
	for _, l := range logs {
		reminders = append(reminders, gin.H{
			"id":       l.ID,
			"pet_id":   l.PetID,
			"pet_name": l.Pet.Name,
			"type":     l.Type,
			"details":  l.Details,
			"reminder": l.Reminder,
			"date":     l.Date,
		})
	}

	c.JSON(http.StatusOK, reminders)
}

// GetCareStats aggregates a pet's care logs by type: count, total cost
// (absent cost counts as zero) and most recent date, with a pet snapshot.
func (h *CareLogHandler) GetCareStats(c *gin.Context) {
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

	query := h.db.Where("pet_id = ?", pet.ID)
	startDate, errStart := parseDate(c.Query("start_date"))
	endDate, errEnd := parseDate(c.Query("end_date"))
	if errStart == nil && errEnd == nil {
		query = query.Where("date >= ? AND date <= ?", startDate, endDate)
	}

	var logs []models.CareLog
	if err := query.Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch care logs"})
		return
	}

	type stat struct {
		Type      string    `json:"type"`
		Count     int       `json:"count"`
		TotalCost float64   `json:"total_cost"`
		LastDate  time.Time `json:"last_date"`
	}
	byType := map[string]*stat{}
	for _, l := range logs {
		s, ok := byType[l.Type]
		if !ok {
			s = &stat{Type: l.Type}
			byType[l.Type] = s
		}
		s.Count++
		if l.Details.Cost != nil {
			s.TotalCost += *l.Details.Cost
		}
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
		"pet": gin.H{
			"name":  pet.Name,
			"breed": pet.Breed,
			"age":   pet.Age,
		},
		"stats": stats,
	})
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty date")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
