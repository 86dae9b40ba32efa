package services

import (
	"errors"

	"launchpad/internal/db"
	"launchpad/internal/models"
	"launchpad/internal/utils"

	"gorm.io/gorm"
)

// PaymentService 处理支付回调后的状态流转。
// 支付本身由外部处理器完成，这里只消费它的确认结果：
// 确认成功时把 payment_pending 置为 scheduled 并占用当日名额，
// 与免费排期提交时的配额写入保持一致。
type PaymentService struct {
	DB *gorm.DB
}

func NewPaymentService() *PaymentService {
	return &PaymentService{DB: db.DB}
}

// ConfirmPayment 支付确认：payment_pending -> scheduled + 占用配额
func (s *PaymentService) ConfirmPayment(projectID string) error {
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		result := tx.Where("public_id = ? AND launch_status = ?",
			projectID, models.LaunchStatusPaymentPending).First(&project)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrUpdateFailed
			}
			return result.Error
		}
		if project.ScheduledLaunchDate == nil {
			return ErrUpdateFailed
		}

		if err := consumeQuotaSlot(tx, *project.ScheduledLaunchDate, project.LaunchType); err != nil {
			return err
		}

		return tx.Model(&models.Project{}).
			Where("id = ?", project.ID).
			Update("launch_status", models.LaunchStatusScheduled).Error
	})
	if err != nil {
		return err
	}

	utils.GetCache().InvalidateLaunchPages(projectID)
	return nil
}

// MarkPaymentFailed 支付失败：payment_pending -> payment_failed
func (s *PaymentService) MarkPaymentFailed(projectID string) error {
	result := s.DB.Model(&models.Project{}).
		Where("public_id = ? AND launch_status = ?", projectID, models.LaunchStatusPaymentPending).
		Update("launch_status", models.LaunchStatusPaymentFailed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUpdateFailed
	}
	return nil
}
