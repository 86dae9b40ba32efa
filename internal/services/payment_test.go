package services

import (
	"errors"
	"testing"
	"time"

	"launchpad/internal/models"
)

func TestConfirmPayment(t *testing.T) {
	gdb := newTestDB(t)
	s := &PaymentService{DB: gdb}

	day := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	project := seedProject(t, gdb, models.LaunchStatusPaymentPending, models.LaunchTypePremium, launchHourOn(day))

	if err := s.ConfirmPayment(project.PublicID); err != nil {
		t.Fatalf("ConfirmPayment failed: %v", err)
	}

	var got models.Project
	gdb.First(&got, project.ID)
	if got.LaunchStatus != models.LaunchStatusScheduled {
		t.Errorf("status = %s, want scheduled", got.LaunchStatus)
	}

	var quota models.LaunchQuota
	if err := gdb.First(&quota).Error; err != nil {
		t.Fatalf("quota row not created: %v", err)
	}
	if quota.PremiumCount != 1 || quota.FreeCount != 0 {
		t.Errorf("quota counts = free %d / premium %d, want 0/1", quota.FreeCount, quota.PremiumCount)
	}

	// 回调重放：已确认的项目不再是 payment_pending，直接拒绝
	if err := s.ConfirmPayment(project.PublicID); !errors.Is(err, ErrUpdateFailed) {
		t.Fatalf("replayed confirm error = %v, want ErrUpdateFailed", err)
	}
	gdb.First(&quota)
	if quota.PremiumCount != 1 {
		t.Errorf("replay must not consume another slot, premium count = %d", quota.PremiumCount)
	}
}

func TestConfirmPaymentQuotaFullRollsBack(t *testing.T) {
	gdb := newTestDB(t)
	s := &PaymentService{DB: gdb}

	day := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	launchDate := launchHourOn(day)
	if err := gdb.Create(&models.LaunchQuota{Date: *launchDate, PremiumCount: PremiumDailyLimit}).Error; err != nil {
		t.Fatalf("failed to seed quota: %v", err)
	}
	project := seedProject(t, gdb, models.LaunchStatusPaymentPending, models.LaunchTypePremium, launchDate)

	err := s.ConfirmPayment(project.PublicID)
	if !errors.Is(err, ErrNoAvailability) {
		t.Fatalf("error = %v, want ErrNoAvailability", err)
	}

	var got models.Project
	gdb.First(&got, project.ID)
	if got.LaunchStatus != models.LaunchStatusPaymentPending {
		t.Errorf("status = %s, must stay payment_pending when the day filled up", got.LaunchStatus)
	}
}

func TestConfirmPaymentUnknownProject(t *testing.T) {
	s := &PaymentService{DB: newTestDB(t)}

	if err := s.ConfirmPayment("no-such-project"); !errors.Is(err, ErrUpdateFailed) {
		t.Fatalf("error = %v, want ErrUpdateFailed", err)
	}
}

func TestMarkPaymentFailed(t *testing.T) {
	gdb := newTestDB(t)
	s := &PaymentService{DB: gdb}

	day := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	project := seedProject(t, gdb, models.LaunchStatusPaymentPending, models.LaunchTypePremium, launchHourOn(day))

	if err := s.MarkPaymentFailed(project.PublicID); err != nil {
		t.Fatalf("MarkPaymentFailed failed: %v", err)
	}

	var got models.Project
	gdb.First(&got, project.ID)
	if got.LaunchStatus != models.LaunchStatusPaymentFailed {
		t.Errorf("status = %s, want payment_failed", got.LaunchStatus)
	}

	// 不再是 payment_pending，重复标记报错
	if err := s.MarkPaymentFailed(project.PublicID); !errors.Is(err, ErrUpdateFailed) {
		t.Fatalf("second mark error = %v, want ErrUpdateFailed", err)
	}

	var quotaRows int64
	gdb.Model(&models.LaunchQuota{}).Count(&quotaRows)
	if quotaRows != 0 {
		t.Errorf("quota rows = %d, failed payment must not touch the ledger", quotaRows)
	}
}
