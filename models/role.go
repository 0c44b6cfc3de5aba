package models

import "time"

// Role is a named access level. Two are seeded: administrator (sees every
// pick and screenshot) and user (sees only their own).
type Role struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Name        string `gorm:"size:32;uniqueIndex;not null"`
	Description string `gorm:"size:255"`
}
