package model

import "time"

// Document holds the extracted text of an uploaded PDF. Stored once at upload
// time and never edited.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Filename  string    `gorm:"size:256;not null" json:"filename"`
	Owner     string    `gorm:"size:64;not null;index" json:"owner"`
	OwnerRole string    `gorm:"size:16;not null" json:"owner_role"`
	Text      string    `gorm:"type:longtext;not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
