package models

import "time"

type Memory struct {
	ID       int      `gorm:"primaryKey" json:"id"`
	PetID    int      `gorm:"index;not null" json:"pet_id"`
	UserID   int      `gorm:"index;not null" json:"user_id"`
	ImageURL string   `json:"image_url,omitempty"`
	VideoURL string   `json:"video_url,omitempty"`
	Caption  string   `gorm:"size:500" json:"caption"`
	Tags     []string `gorm:"serializer:json" json:"tags"`
	IsShared bool     `json:"is_shared"`

	CreatedAt time.Time `json:"created_at"`

	Pet Pet `gorm:"foreignKey:PetID" json:"-"`
}
