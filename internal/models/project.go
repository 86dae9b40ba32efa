package models

import (
	"time"
)

type LaunchType string

const (
	LaunchTypeFree        LaunchType = "free"
	LaunchTypePremium     LaunchType = "premium"
	LaunchTypePremiumPlus LaunchType = "premium_plus"
)

// ParseLaunchType 校验并转换发布类型参数
func ParseLaunchType(s string) (LaunchType, bool) {
	switch LaunchType(s) {
	case LaunchTypeFree, LaunchTypePremium, LaunchTypePremiumPlus:
		return LaunchType(s), true
	}
	return "", false
}

type LaunchStatus string

const (
	LaunchStatusPaymentPending LaunchStatus = "payment_pending"
	LaunchStatusScheduled      LaunchStatus = "scheduled"
	LaunchStatusOngoing        LaunchStatus = "ongoing"
	LaunchStatusLaunched       LaunchStatus = "launched"
	LaunchStatusPaymentFailed  LaunchStatus = "payment_failed"
)

type Project struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	PublicID string `gorm:"uniqueIndex;size:36;not null" json:"id"`
	Slug     string `gorm:"uniqueIndex;size:120;not null" json:"slug"`
	Name     string `gorm:"size:120;not null" json:"name"`
	Tagline  string `gorm:"size:200" json:"tagline"`
	// Markdown 原文，展示时经 utils.RenderMarkdown 渲染
	Description string `gorm:"type:text" json:"description"`
	WebsiteURL  string `gorm:"size:500" json:"website_url"`
	LogoURL     string `gorm:"size:500" json:"logo_url"`

	// Weak reference: lookup only, the user row is not a cascading owner
	CreatedBy *uint `gorm:"index" json:"created_by"`

	// ScheduledLaunchDate is always pinned to the launch hour (UTC) of the
	// chosen day so range queries can bucket with [day, day+1).
	ScheduledLaunchDate *time.Time   `gorm:"index" json:"scheduled_launch_date"`
	LaunchType          LaunchType   `gorm:"type:varchar(20);default:'free';not null" json:"launch_type"`
	LaunchStatus        LaunchStatus `gorm:"type:varchar(20);index;default:''" json:"launch_status"`
	FeaturedOnHomepage  bool         `gorm:"default:false" json:"featured_on_homepage"`
	DailyRanking        *int         `json:"daily_ranking"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 非数据库字段，查询时填充
	UpvoteCount int `gorm:"-" json:"upvote_count"`
}
