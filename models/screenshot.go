package models

import (
	"time"
)

// Screenshot is an uploaded betting-slip image together with the tap position
// the user marked on it.
type Screenshot struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	FileName    string  `gorm:"size:255;not null;uniqueIndex:idx_profile_shot_file"`
	StorePath   string  `gorm:"column:store_path;size:512"` // public relative path (e.g. public/shots/xxx.png)
	ProfileID   uint    `gorm:"not null;uniqueIndex:idx_profile_shot_file"`
	Profile     Profile `gorm:"foreignKey:ProfileID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ContentType string  `gorm:"size:128"`
	ClickX      int     `gorm:"not null"`
	ClickY      int     `gorm:"not null"`
	PickID      *uint   `gorm:"index"` // FK to picks.id (nullable: extraction may find nothing)
	// Failed marks screenshots where extraction produced nothing; the row is
	// kept for review.
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
