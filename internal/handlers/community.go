package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/petzone/backend/internal/config"
	"github.com/petzone/backend/internal/models"
)

type CommunityHandler struct {
	db  *gorm.DB
	cfg *config.Properties
}

func NewCommunityHandler(db *gorm.DB, cfg *config.Properties) *CommunityHandler {
	return &CommunityHandler{db: db, cfg: cfg}
}

func (h *CommunityHandler) likesCount(postID int) int {
	var count int64
	h.db.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&count)
	return int(count)
}

func (h *CommunityHandler) isLikedBy(postID, userID int) bool {
	var like models.PostLike
	err := h.db.Where("post_id = ? AND user_id = ?", postID, userID).First(&like).Error
	return err == nil
}

func (h *CommunityHandler) postResponse(post models.CommunityPost, viewerID int, authenticated bool) gin.H {
	response := gin.H{
		"id":          post.ID,
		"user_id":     post.UserID,
		"pet_id":      post.PetID,
		"pet_name":    post.PetName,
		"breed":       post.Breed,
		"caption":     post.Caption,
		"image_url":   post.ImageURL,
		"care_tag":    post.CareTag,
		"is_public":   post.IsPublic,
		"likes_count": h.likesCount(post.ID),
		"created_at":  post.CreatedAt,
	}
	if authenticated {
		response["is_liked"] = h.isLikedBy(post.ID, viewerID)
	}
	return response
}

// GetFeed returns public posts, newest first, paginated. Authenticated
// viewers get is_liked annotations; anonymous viewers do not.
func (h *CommunityHandler) GetFeed(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(h.cfg.Page.DefaultLimit)))
	if limit < 1 {
		limit = h.cfg.Page.DefaultLimit
	}
	if limit > h.cfg.Page.MaxLimit {
		limit = h.cfg.Page.MaxLimit
	}

	var posts []models.CommunityPost
	err := h.db.Where("is_public = ?", true).
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch feed"})
		return
	}

	viewerID, authenticated := currentUserID(c)

	responses := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, h.postResponse(post, viewerID, authenticated))
	}

	c.JSON(http.StatusOK, responses)
}

// CreatePost publishes a post directly, snapshotting the pet's name and
// breed at creation time.
func (h *CommunityHandler) CreatePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var input struct {
		PetID    int    `json:"pet_id" binding:"required"`
		Caption  string `json:"caption" binding:"required,max=500"`
		CareTag  string `json:"care_tag" binding:"required,oneof=Feeding Grooming Exercise Health Memory Other"`
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Validation Error", "errors": []string{err.Error()}})
		return
	}

	pet, err := findOwnedPet(h.db, input.PetID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	post := models.CommunityPost{
		UserID:   userID,
		PetID:    pet.ID,
		PetName:  pet.Name,
		Breed:    pet.Breed,
		Caption:  input.Caption,
		CareTag:  input.CareTag,
		ImageURL: input.ImageURL,
	}

	if err := h.db.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, post)
}

// ToggleLike flips the (user, post) like: absent adds it, present removes it.
func (h *CommunityHandler) ToggleLike(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	postID, _ := strconv.Atoi(c.Param("postId"))
	var post models.CommunityPost
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	liked := true
	var existing models.PostLike
	err := h.db.Where("post_id = ? AND user_id = ?", post.ID, userID).First(&existing).Error
	if err == nil {
		if err := h.db.Delete(&existing).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to unlike post"})
			return
		}
		liked = false
	} else {
		like := models.PostLike{PostID: post.ID, UserID: userID}
		if err := h.db.Create(&like).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to like post"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"liked":       liked,
		"likes_count": h.likesCount(post.ID),
	})
}

// ReportPost records one report per user. Reaching the report threshold
// hides the post; nothing in this subsystem ever re-publishes it.
func (h *CommunityHandler) ReportPost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	postID, _ := strconv.Atoi(c.Param("postId"))
	var post models.CommunityPost
	if err := h.db.First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}

	// Reason is optional, so an empty body is tolerated.
	var input struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&input)

	// The unique (post, user) index is the duplicate guard: two concurrent
	// reports from the same user cannot both insert, so the loser surfaces
	// as a duplicated-key error rather than racing past a pre-check.
	err := h.db.Transaction(func(tx *gorm.DB) error {
		report := models.PostReport{PostID: post.ID, UserID: userID, Reason: input.Reason}
		if err := tx.Create(&report).Error; err != nil {
			return err
		}

		var count int64
		if err := tx.Model(&models.PostReport{}).Where("post_id = ?", post.ID).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.AutoHideReportCount {
			return tx.Model(&models.CommunityPost{}).Where("id = ?", post.ID).Update("is_public", false).Error
		}
		return nil
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		c.JSON(http.StatusConflict, gin.H{"message": "You have already reported this post"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to report post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post reported successfully"})
}

// GetMyPosts lists the current user's posts with like annotations
func (h *CommunityHandler) GetMyPosts(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	var posts []models.CommunityPost
	if err := h.db.Where("user_id = ?", userID).Order("created_at desc").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch posts"})
		return
	}

	responses := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, h.postResponse(post, userID, true))
	}

	c.JSON(http.StatusOK, responses)
}

// DeletePost removes a post. The lookup filters by author, so posts that
// exist but belong to someone else look identical to missing ones.
func (h *CommunityHandler) DeletePost(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		return
	}

	postID, _ := strconv.Atoi(c.Param("postId"))
	var post models.CommunityPost
	err := h.db.Where("id = ? AND user_id = ?", postID, userID).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete post"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.PostReport{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
