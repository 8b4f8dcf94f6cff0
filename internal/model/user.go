package model

import "time"

const (
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

// User accounts are immutable after signup. Employees carry the username of
// the manager who created them; managers have no manager of their own.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	Role         string    `gorm:"size:16;not null;index" json:"role"`
	Manager      string    `gorm:"size:64;index" json:"manager,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
