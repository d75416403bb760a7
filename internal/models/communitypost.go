package models

import "time"

// Tags a projected post can carry beyond the care log's own type. Posts
// created directly are validated against the closed tag list at binding.
const (
	TagHealth = "Health"
	TagMemory = "Memory"
)

// AutoHideReportCount is the number of reports at which a post stops being
// public. There is no unhide path once that happens.
const AutoHideReportCount = 5

type CommunityPost struct {
	ID     int `gorm:"primaryKey" json:"id"`
	UserID int `gorm:"index;not null" json:"user_id"`
	PetID  int `gorm:"index;not null" json:"pet_id"`

	// Snapshot of the pet at creation time; later pet edits do not propagate.
	PetName string `gorm:"not null" json:"pet_name"`
	Breed   string `json:"breed"`

	Caption  string `gorm:"size:500;not null" json:"caption"`
	ImageURL string `json:"image_url,omitempty"`
	CareTag  string `gorm:"index" json:"care_tag"`
	IsPublic bool   `gorm:"default:true" json:"is_public"`

	CreatedAt time.Time `json:"created_at"`

	Likes   []PostLike   `gorm:"foreignKey:PostID" json:"-"`
	Reports []PostReport `gorm:"foreignKey:PostID" json:"-"`
}

// PostLike is one user's like on one post. The composite unique index makes
// the likes set a set: concurrent toggles insert or delete a single row
// instead of rewriting the post document.
type PostLike struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"not null;uniqueIndex:uidx_post_like" json:"post_id"`
	UserID    int       `gorm:"not null;uniqueIndex:uidx_post_like" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// PostReport records one user's report of a post. One report per user,
// permanent.
type PostReport struct {
	ID        int       `gorm:"primaryKey" json:"id"`
	PostID    int       `gorm:"not null;uniqueIndex:uidx_post_report" json:"post_id"`
	UserID    int       `gorm:"not null;uniqueIndex:uidx_post_report" json:"user_id"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"reported_at"`
}
