package models

import (
	"time"

	"gorm.io/gorm"
)

type Pet struct {
	ID          int       `gorm:"primaryKey" json:"id"`
	UserID      int       `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Species     string    `gorm:"not null" json:"species"`
	Breed       string    `gorm:"not null" json:"breed"`
	DateOfBirth time.Time `gorm:"not null" json:"date_of_birth"`
	Gender      string    `gorm:"not null" json:"gender"`
	PhotoURL    string    `json:"photo_url"`
	Weight      *float64  `json:"weight,omitempty"`
	MicrochipID string    `json:"microchip_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`

	// Age is derived from DateOfBirth at read time, never stored.
	Age int `gorm:"-" json:"age"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AgeAt returns the pet's age in whole years, decremented by one when the
// birthday has not yet been reached in the current year.
func (p *Pet) AgeAt(now time.Time) int {
	age := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		age--
	}
	return age
}

func (p *Pet) AfterFind(*gorm.DB) error {
	p.Age = p.AgeAt(time.Now())
	return nil
}
