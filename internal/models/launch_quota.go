package models

import (
	"time"
)

// LaunchQuota 每个自然日一行，记录已确认占用的发布名额。
// Counts only move forward: there is no decrement path, a consumed slot is
// never released even if the project is later deleted.
type LaunchQuota struct {
	ID uint `gorm:"primaryKey" json:"id"`
	// Date carries the launch-hour timestamp of the day it covers
	Date             time.Time `gorm:"uniqueIndex;not null" json:"date"`
	FreeCount        int       `gorm:"default:0;not null" json:"free_count"`
	PremiumCount     int       `gorm:"default:0;not null" json:"premium_count"`
	PremiumPlusCount int       `gorm:"default:0;not null" json:"premium_plus_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
