package services

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"launchpad/internal/db"
	"launchpad/internal/models"
	"launchpad/internal/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 每日发布名额上限
const (
	FreeDailyLimit        = 5
	PremiumDailyLimit     = 12
	PremiumPlusDailyLimit = 3
	TotalDailyLimit       = 20
)

// 各类型的排期窗口（提前天数，含边界）
const (
	MinDaysAhead            = 1
	MaxDaysAhead            = 90
	PremiumMinDaysAhead     = 1
	PremiumMaxDaysAhead     = 30
	PremiumPlusMinDaysAhead = 1
	PremiumPlusMaxDaysAhead = 14
)

// DefaultLaunchHourUTC 所有项目统一在 UTC 8 点上线
const DefaultLaunchHourUTC = 8

const DateFormat = "2006-01-02"

var (
	ErrInvalidDate    = errors.New("invalid launch date")
	ErrOutOfWindow    = errors.New("launch date outside the scheduling window")
	ErrNoAvailability = errors.New("no availability for the selected date and launch type")
	ErrUpdateFailed   = errors.New("failed to update project schedule")
)

// LaunchAvailability 某一天各类型剩余名额
type LaunchAvailability struct {
	Date             string `json:"date"`
	FreeSlots        int    `json:"free_slots"`
	PremiumSlots     int    `json:"premium_slots"`
	PremiumPlusSlots int    `json:"premium_plus_slots"`
	TotalSlots       int    `json:"total_slots"`
}

// SlotsFor 类型剩余名额，类型上限和总量上限都要满足
func (a *LaunchAvailability) SlotsFor(t models.LaunchType) int {
	if a.TotalSlots <= 0 {
		return 0
	}
	switch t {
	case models.LaunchTypePremium:
		return a.PremiumSlots
	case models.LaunchTypePremiumPlus:
		return a.PremiumPlusSlots
	default:
		return a.FreeSlots
	}
}

// LaunchService 负责发布排期：窗口校验、名额计算和排期提交
type LaunchService struct {
	DB         *gorm.DB
	Now        func() time.Time // 注入时钟，测试时可固定
	LaunchHour int
}

func NewLaunchService() *LaunchService {
	return &LaunchService{
		DB:         db.DB,
		Now:        time.Now,
		LaunchHour: launchHourFromEnv(),
	}
}

func launchHourFromEnv() int {
	v := os.Getenv("LAUNCH_HOUR_UTC")
	if v == "" {
		return DefaultLaunchHourUTC
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > 23 {
		return DefaultLaunchHourUTC
	}
	return h
}

// WindowFor 返回该类型允许的排期窗口 [min, max]（相对今天的天数）
func WindowFor(t models.LaunchType) (minDays, maxDays int) {
	switch t {
	case models.LaunchTypePremium:
		return PremiumMinDaysAhead, PremiumMaxDaysAhead
	case models.LaunchTypePremiumPlus:
		return PremiumPlusMinDaysAhead, PremiumPlusMaxDaysAhead
	default:
		return MinDaysAhead, MaxDaysAhead
	}
}

// today 返回当天零点（UTC）
func (s *LaunchService) today() time.Time {
	now := s.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *LaunchService) parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(DateFormat, value); err == nil {
		return t, nil
	}
	// 兼容带时间部分的 ISO 格式
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
}

// GetLaunchAvailability 查询某一天的剩余名额
func (s *LaunchService) GetLaunchAvailability(date string) (*LaunchAvailability, error) {
	parsed, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}
	return s.availabilityForDay(parsed)
}

// availabilityForDay 统计 [当天零点, 次日零点) 内已排期的项目数。
// Only rows with launch_status = scheduled consume public slots;
// payment_pending launches do not count until payment confirms.
func (s *LaunchService) availabilityForDay(day time.Time) (*LaunchAvailability, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	type tierCount struct {
		LaunchType models.LaunchType
		Count      int
	}
	var rows []tierCount
	err := s.DB.Model(&models.Project{}).
		Select("launch_type, COUNT(*) as count").
		Where("launch_status = ? AND scheduled_launch_date >= ? AND scheduled_launch_date < ?",
			models.LaunchStatusScheduled, dayStart, dayEnd).
		Group("launch_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	var freeCount, premiumCount, premiumPlusCount int
	for _, r := range rows {
		switch r.LaunchType {
		case models.LaunchTypePremium:
			premiumCount = r.Count
		case models.LaunchTypePremiumPlus:
			premiumPlusCount = r.Count
		default:
			freeCount = r.Count
		}
	}
	totalCount := freeCount + premiumCount + premiumPlusCount

	return &LaunchAvailability{
		Date:             dayStart.Format(DateFormat),
		FreeSlots:        max(0, FreeDailyLimit-freeCount),
		PremiumSlots:     max(0, PremiumDailyLimit-premiumCount),
		PremiumPlusSlots: max(0, PremiumPlusDailyLimit-premiumPlusCount),
		TotalSlots:       max(0, TotalDailyLimit-totalCount),
	}, nil
}

// GetLaunchAvailabilityRange 查询一段日期的剩余名额，范围先按类型窗口裁剪。
// 裁剪后为空时返回空列表而不是错误。
func (s *LaunchService) GetLaunchAvailabilityRange(startDate, endDate string, t models.LaunchType) ([]LaunchAvailability, error) {
	start, err := s.parseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := s.parseDate(endDate)
	if err != nil {
		return nil, err
	}

	minDays, maxDays := WindowFor(t)
	today := s.today()
	minDate := today.AddDate(0, 0, minDays)
	maxDate := today.AddDate(0, 0, maxDays)

	start = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(minDate) {
		start = minDate
	}
	if end.After(maxDate) {
		end = maxDate
	}

	result := make([]LaunchAvailability, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		availability, err := s.availabilityForDay(day)
		if err != nil {
			return nil, err
		}
		result = append(result, *availability)
	}
	return result, nil
}

// ScheduleLaunch 提交一次排期：校验窗口和名额后原子更新项目和当日配额。
// 免费发布立即占用名额；付费发布先置为 payment_pending，
// 名额在支付确认时由 PaymentService 占用。
func (s *LaunchService) ScheduleLaunch(projectID, date string, t models.LaunchType) error {
	parsed, err := s.parseDate(date)
	if err != nil {
		return err
	}

	minDays, maxDays := WindowFor(t)
	today := s.today()
	minDate := today.AddDate(0, 0, minDays)
	maxDate := today.AddDate(0, 0, maxDays)

	requested := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC)
	if requested.Before(minDate) {
		return fmt.Errorf("%w: %s launches must be scheduled at least %d day(s) ahead", ErrOutOfWindow, t, minDays)
	}
	if requested.After(maxDate) {
		return fmt.Errorf("%w: %s launches cannot be scheduled more than %d days ahead", ErrOutOfWindow, t, maxDays)
	}

	availability, err := s.availabilityForDay(requested)
	if err != nil {
		return err
	}
	if availability.SlotsFor(t) <= 0 {
		return ErrNoAvailability
	}

	// 丢弃调用方传入的时间部分，统一固定到发布小时（UTC）
	launchDate := time.Date(parsed.Year(), parsed.Month(), parsed.Day(), s.LaunchHour, 0, 0, 0, time.UTC)

	initialStatus := models.LaunchStatusScheduled
	if t == models.LaunchTypePremium || t == models.LaunchTypePremiumPlus {
		initialStatus = models.LaunchStatusPaymentPending
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Project{}).
			Where("public_id = ?", projectID).
			Updates(map[string]interface{}{
				"scheduled_launch_date": launchDate,
				"launch_type":           t,
				"launch_status":         initialStatus,
				"featured_on_homepage":  t == models.LaunchTypePremiumPlus,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUpdateFailed
		}

		if t == models.LaunchTypeFree {
			return consumeQuotaSlot(tx, launchDate, t)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 缓存失效尽力而为，不影响排期结果
	utils.GetCache().InvalidateLaunchPages(projectID)
	return nil
}

// consumeQuotaSlot 在配额表上做条件自增，占用一个名额。
// The WHERE clause is the capacity gate: the increment only lands while the
// tier count is below its limit and the day total is below TotalDailyLimit,
// so two concurrent commits can never overbook a day.
func consumeQuotaSlot(tx *gorm.DB, launchDate time.Time, t models.LaunchType) error {
	// 确保当日配额行存在，冲突则忽略
	quota := models.LaunchQuota{Date: launchDate}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(&quota).Error; err != nil {
		return err
	}

	var column string
	var limit int
	switch t {
	case models.LaunchTypePremium:
		column, limit = "premium_count", PremiumDailyLimit
	case models.LaunchTypePremiumPlus:
		column, limit = "premium_plus_count", PremiumPlusDailyLimit
	default:
		column, limit = "free_count", FreeDailyLimit
	}

	result := tx.Model(&models.LaunchQuota{}).
		Where("date = ? AND "+column+" < ? AND free_count + premium_count + premium_plus_count < ?",
			launchDate, limit, TotalDailyLimit).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNoAvailability
	}
	return nil
}
