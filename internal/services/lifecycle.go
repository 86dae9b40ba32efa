package services

import (
	"log"
	"time"

	"launchpad/internal/db"
	"launchpad/internal/models"

	"gorm.io/gorm"
)

// WinnerCount 每天颁发名次的数量（领奖台前三）
const WinnerCount = 3

// LifecycleService 按墙上时钟推进项目发布状态：
// scheduled -> ongoing（发布小时）、ongoing -> launched（次日），
// 并在当天结束时按点赞数给已发布项目定名次。
type LifecycleService struct {
	DB         *gorm.DB
	Now        func() time.Time
	LaunchHour int

	discord *DiscordService
}

func NewLifecycleService() *LifecycleService {
	return &LifecycleService{
		DB:         db.DB,
		Now:        time.Now,
		LaunchHour: launchHourFromEnv(),
		discord:    NewDiscordService(),
	}
}

// launchHourToday 返回今天的发布时刻（UTC）
func (s *LifecycleService) launchHourToday() time.Time {
	now := s.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), s.LaunchHour, 0, 0, 0, time.UTC)
}

// AdvanceScheduledToOngoing 把今天上线的 scheduled 项目置为 ongoing。
// 基于状态的幂等扫描：重复执行时已推进的行不再匹配，更新 0 行不算错误。
func (s *LifecycleService) AdvanceScheduledToOngoing() (int64, error) {
	todayStart := s.launchHourToday()

	result := s.DB.Model(&models.Project{}).
		Where("launch_status = ? AND scheduled_launch_date >= ? AND scheduled_launch_date < ?",
			models.LaunchStatusScheduled, todayStart, todayStart.Add(24*time.Hour)).
		Update("launch_status", models.LaunchStatusOngoing)
	if result.Error != nil {
		return 0, result.Error
	}

	log.Printf("发布状态扫描：%d 个项目进入 ongoing", result.RowsAffected)
	return result.RowsAffected, nil
}

// AdvanceOngoingToLaunched 把昨天上线的 ongoing 项目置为 launched，
// 并为该天的项目分配每日名次。
func (s *LifecycleService) AdvanceOngoingToLaunched() (int64, error) {
	yesterdayStart := s.launchHourToday().AddDate(0, 0, -1)

	result := s.DB.Model(&models.Project{}).
		Where("launch_status = ? AND scheduled_launch_date >= ? AND scheduled_launch_date < ?",
			models.LaunchStatusOngoing, yesterdayStart, yesterdayStart.Add(24*time.Hour)).
		Update("launch_status", models.LaunchStatusLaunched)
	if result.Error != nil {
		return 0, result.Error
	}

	// 名次分配和状态推进一样基于状态：每轮都对该天重算，
	// 上一轮分配失败（状态已推进但名次没写上）也会在这里补齐
	if err := s.assignDailyRankings(yesterdayStart); err != nil {
		log.Printf("分配每日名次失败: %v", err)
	}

	log.Printf("发布状态扫描：%d 个项目进入 launched", result.RowsAffected)
	return result.RowsAffected, nil
}

// assignDailyRankings 按点赞数给某天 launched 的项目排名（前 WinnerCount 名）
func (s *LifecycleService) assignDailyRankings(dayStart time.Time) error {
	dayEnd := dayStart.Add(24 * time.Hour)

	var ids []uint
	err := s.DB.Model(&models.Project{}).
		Joins("LEFT JOIN upvotes ON upvotes.project_id = projects.id").
		Where("projects.launch_status = ? AND projects.scheduled_launch_date >= ? AND projects.scheduled_launch_date < ?",
			models.LaunchStatusLaunched, dayStart, dayEnd).
		Group("projects.id").
		Order("COUNT(upvotes.id) DESC, projects.id ASC").
		Limit(WinnerCount).
		Pluck("projects.id", &ids).Error
	if err != nil {
		return err
	}

	for i, id := range ids {
		rank := i + 1
		if err := s.DB.Model(&models.Project{}).
			Where("id = ?", id).
			UpdateColumn("daily_ranking", rank).Error; err != nil {
			return err
		}
	}
	return nil
}

// StartSweeper 启动每小时一次的后台状态扫描。
// 扫描失败只记录日志，下一轮会基于状态自愈。
func (s *LifecycleService) StartSweeper() {
	go func() {
		for {
			// 对齐到下一个整点
			now := s.Now()
			next := now.Truncate(time.Hour).Add(time.Hour)
			time.Sleep(time.Until(next))

			s.RunSweep()
		}
	}()
}

// RunSweep 跑一轮完整扫描，供定时器和管理接口共用
func (s *LifecycleService) RunSweep() {
	ongoing, err := s.AdvanceScheduledToOngoing()
	if err != nil {
		log.Printf("scheduled -> ongoing 扫描失败: %v", err)
	} else if ongoing > 0 {
		s.announceOngoing()
	}

	if _, err := s.AdvanceOngoingToLaunched(); err != nil {
		log.Printf("ongoing -> launched 扫描失败: %v", err)
	}
}

// announceOngoing 向 Discord 播报今天上线的项目，失败只记日志
func (s *LifecycleService) announceOngoing() {
	todayStart := s.launchHourToday()

	var projects []models.Project
	err := s.DB.
		Where("launch_status = ? AND scheduled_launch_date >= ? AND scheduled_launch_date < ?",
			models.LaunchStatusOngoing, todayStart, todayStart.Add(24*time.Hour)).
		Find(&projects).Error
	if err != nil {
		log.Printf("查询今日上线项目失败: %v", err)
		return
	}

	for _, p := range projects {
		project := p
		go func() {
			if err := s.discord.AnnounceLaunch(project); err != nil {
				log.Printf("Discord 播报失败 (%s): %v", project.Slug, err)
			}
		}()
	}
}
