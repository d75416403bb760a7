package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/petzone/backend/internal/models"
)

func newCommunityRouter(db *gorm.DB, userID int) *gin.Engine {
	h := NewCommunityHandler(db, testConfig())
	r := gin.New()
	if userID != 0 {
		r.Use(asUser(userID))
	}
	r.GET("/community/feed", h.GetFeed)
	r.POST("/community/posts", h.CreatePost)
	r.POST("/community/posts/:postId/like", h.ToggleLike)
	r.POST("/community/posts/:postId/report", h.ReportPost)
	r.GET("/community/my-posts", h.GetMyPosts)
	r.DELETE("/community/posts/:postId", h.DeletePost)
	return r
}

func createTestPost(t *testing.T, db *gorm.DB, userID, petID int) models.CommunityPost {
	t.Helper()
	post := models.CommunityPost{
		UserID:  userID,
		PetID:   petID,
		PetName: "Rex",
		Breed:   "Beagle",
		Caption: "Rex enjoyed tuna today!",
		CareTag: "Feeding",
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}
	return post
}

func TestCreatePostSnapshotsPet(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	r := newCommunityRouter(db, 1)

	w := doJSON(t, r, "POST", "/community/posts", gin.H{
		"pet_id":   pet.ID,
		"caption":  "Beach day!",
		"care_tag": "Other",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Renaming the pet later must not rewrite the snapshot.
	db.Model(&pet).Update("name", "Rexford")

	var post models.CommunityPost
	require.NoError(t, db.First(&post).Error)
	assert.Equal(t, "Rex", post.PetName)
	assert.Equal(t, "Beagle", post.Breed)
}

func TestCreatePostForeignPetNotFound(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	r := newCommunityRouter(db, 2)

	w := doJSON(t, r, "POST", "/community/posts", gin.H{
		"pet_id":   pet.ID,
		"caption":  "Not my pet",
		"care_tag": "Other",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestToggleLike(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	post := createTestPost(t, db, 1, pet.ID)
	r := newCommunityRouter(db, 2)
	path := fmt.Sprintf("/community/posts/%d/like", post.ID)

	// First toggle likes.
	w := doJSON(t, r, "POST", path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Liked      bool `json:"liked"`
		LikesCount int  `json:"likes_count"`
	}
	decodeJSON(t, w, &body)
	assert.True(t, body.Liked)
	assert.Equal(t, 1, body.LikesCount)

	// Second toggle unlikes; state returns to the original.
	w = doJSON(t, r, "POST", path, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &body)
	assert.False(t, body.Liked)
	assert.Equal(t, 0, body.LikesCount)
}

func TestToggleLikeMissingPost(t *testing.T) {
	db := setupTestDB(t)
	r := newCommunityRouter(db, 1)

	w := doJSON(t, r, "POST", "/community/posts/9999/like", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReportPostOncePerUser(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	post := createTestPost(t, db, 1, pet.ID)
	r := newCommunityRouter(db, 2)
	path := fmt.Sprintf("/community/posts/%d/report", post.ID)

	w := doJSON(t, r, "POST", path, gin.H{"reason": "spam"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", path, gin.H{"reason": "spam again"})
	assert.Equal(t, http.StatusConflict, w.Code)

	var count int64
	db.Model(&models.PostReport{}).Where("post_id = ?", post.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestReportAutoHideAtThreshold(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	post := createTestPost(t, db, 1, pet.ID)
	path := fmt.Sprintf("/community/posts/%d/report", post.ID)

	reload := func() models.CommunityPost {
		var p models.CommunityPost
		require.NoError(t, db.First(&p, post.ID).Error)
		return p
	}

	// Four reports leave the post public.
	for userID := 10; userID < 14; userID++ {
		w := doJSON(t, newCommunityRouter(db, userID), "POST", path, gin.H{"reason": "spam"})
		require.Equal(t, http.StatusOK, w.Code)
	}
	assert.True(t, reload().IsPublic)

	// The fifth flips it to hidden.
	w := doJSON(t, newCommunityRouter(db, 14), "POST", path, gin.H{"reason": "spam"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, reload().IsPublic)

	// A sixth report keeps it hidden.
	w = doJSON(t, newCommunityRouter(db, 15), "POST", path, gin.H{"reason": "spam"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, reload().IsPublic)

	var count int64
	db.Model(&models.PostReport{}).Where("post_id = ?", post.ID).Count(&count)
	assert.EqualValues(t, 6, count)
}

func TestFeedAnnotationsAndVisibility(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	liked := createTestPost(t, db, 1, pet.ID)
	createTestPost(t, db, 1, pet.ID)

	hidden := createTestPost(t, db, 1, pet.ID)
	db.Model(&models.CommunityPost{}).Where("id = ?", hidden.ID).Update("is_public", false)

	db.Create(&models.PostLike{PostID: liked.ID, UserID: 2})
	db.Create(&models.PostLike{PostID: liked.ID, UserID: 3})

	// Authenticated viewer gets is_liked annotations; hidden posts never appear.
	r := newCommunityRouter(db, 2)
	w := doJSON(t, r, "GET", "/community/feed", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []map[string]any
	decodeJSON(t, w, &posts)
	require.Len(t, posts, 2)

	for _, p := range posts {
		if int(p["id"].(float64)) == liked.ID {
			assert.Equal(t, true, p["is_liked"])
			assert.EqualValues(t, 2, p["likes_count"])
		} else {
			assert.Equal(t, false, p["is_liked"])
			assert.EqualValues(t, 0, p["likes_count"])
		}
	}

	// Anonymous viewers get no like annotation.
	anon := newCommunityRouter(db, 0)
	w = doJSON(t, anon, "GET", "/community/feed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	// json.Unmarshal reuses existing maps in the slice, which would leak
	// is_liked keys from the previous decode; start from a nil slice.
	posts = nil
	decodeJSON(t, w, &posts)
	require.Len(t, posts, 2)
	_, hasIsLiked := posts[0]["is_liked"]
	assert.False(t, hasIsLiked)
}

func TestFeedPaginationClampsLimit(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	for i := 0; i < 5; i++ {
		createTestPost(t, db, 1, pet.ID)
	}

	r := newCommunityRouter(db, 0)
	w := doJSON(t, r, "GET", "/community/feed?limit=2&page=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var posts []map[string]any
	decodeJSON(t, w, &posts)
	assert.Len(t, posts, 2)

	w = doJSON(t, r, "GET", "/community/feed?limit=1000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeJSON(t, w, &posts)
	assert.Len(t, posts, 5)
}

func TestDeletePostOwnershipConflated(t *testing.T) {
	db := setupTestDB(t)
	pet := createTestPet(t, db, 1, "Rex")
	post := createTestPost(t, db, 1, pet.ID)

	// Non-owner and non-existent are indistinguishable.
	other := newCommunityRouter(db, 2)
	w := doJSON(t, other, "DELETE", fmt.Sprintf("/community/posts/%d", post.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = doJSON(t, other, "DELETE", "/community/posts/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	owner := newCommunityRouter(db, 1)
	w = doJSON(t, owner, "DELETE", fmt.Sprintf("/community/posts/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.CommunityPost{}).Count(&count)
	assert.EqualValues(t, 0, count)
}
