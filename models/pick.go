package models

import "time"

// Pick is a structured bet extracted from a screenshot (or entered manually).
type Pick struct {
	ID            uint `gorm:"primaryKey"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	UserID        uint      `gorm:"index;not null;uniqueIndex:idx_user_pick_file"`
	FileName      string    `gorm:"size:255;not null;uniqueIndex:idx_user_pick_file"`
	GameText      string    `gorm:"size:255;not null"`
	Team1         string    `gorm:"size:128"`
	Team2         string    `gorm:"size:128"`
	Odds          string    `gorm:"size:32;not null"`
	MarketType    string    `gorm:"size:16;not null"` // moneyline|spread|total|unknown
	ClickPosition string    `gorm:"size:32"`
	Method        string    `gorm:"size:32"`
	ExtractedAt   time.Time `gorm:"not null"`
}
