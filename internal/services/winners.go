package services

import (
	"time"

	"launchpad/internal/db"
	"launchpad/internal/models"

	"gorm.io/gorm"
)

// WinnersService 查询某天的获奖项目（launched 且已有名次）
type WinnersService struct {
	DB *gorm.DB
}

func NewWinnersService() *WinnersService {
	return &WinnersService{DB: db.DB}
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return dayStart, dayStart.Add(24 * time.Hour)
}

// GetWinnersByDate 按名次升序返回某天的获奖项目
func (s *WinnersService) GetWinnersByDate(date time.Time) ([]models.Project, error) {
	dayStart, dayEnd := dayBounds(date)

	var winners []models.Project
	err := s.DB.
		Where("launch_status = ? AND daily_ranking IS NOT NULL AND scheduled_launch_date >= ? AND scheduled_launch_date < ?",
			models.LaunchStatusLaunched, dayStart, dayEnd).
		Order("daily_ranking ASC").
		Find(&winners).Error
	return winners, err
}

// DateHasWinners 判断某天是否已有获奖项目
func (s *WinnersService) DateHasWinners(date time.Time) (bool, error) {
	dayStart, dayEnd := dayBounds(date)

	var count int64
	err := s.DB.Model(&models.Project{}).
		Where("launch_status = ? AND daily_ranking IS NOT NULL AND scheduled_launch_date >= ? AND scheduled_launch_date < ?",
			models.LaunchStatusLaunched, dayStart, dayEnd).
		Count(&count).Error
	return count > 0, err
}
