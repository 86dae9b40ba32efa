package models

import (
	"time"
)

type Upvote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_project" json:"user_id"`
	ProjectID uint      `gorm:"not null;index;uniqueIndex:idx_user_project" json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
}
