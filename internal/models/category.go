package models

import (
	"time"
)

type Category struct {
	ID        string    `gorm:"primaryKey;size:50" json:"id"`
	Name      string    `gorm:"not null;unique" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectCategory 项目与分类的关联表
type ProjectCategory struct {
	ProjectID  uint   `gorm:"primaryKey;autoIncrement:false" json:"project_id"`
	CategoryID string `gorm:"primaryKey;size:50" json:"category_id"`
}
