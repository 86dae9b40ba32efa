package handlers

import (
	"net/http"

	"launchpad/internal/db"
	"launchpad/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type VoteHandler struct{}

func NewVoteHandler() *VoteHandler {
	return &VoteHandler{}
}

// Toggle 点赞/取消点赞，返回最新点赞数
func (h *VoteHandler) Toggle(c *gin.Context) {
	currentUser := CurrentUser(c)
	publicID := c.Param("id")

	var project models.Project
	err := db.DB.
		Where("public_id = ? AND launch_status <> ?", publicID, models.LaunchStatusPaymentPending).
		First(&project).Error
	if err != nil {
		JSONError(c, http.StatusNotFound, "project not found")
		return
	}

	upvoted := false
	err = db.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Upvote
		result := tx.Where("user_id = ? AND project_id = ?", currentUser.ID, project.ID).First(&existing)
		if result.Error == nil {
			return tx.Delete(&existing).Error
		}
		upvoted = true
		return tx.Create(&models.Upvote{UserID: currentUser.ID, ProjectID: project.ID}).Error
	})
	if err != nil {
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}

	var count int64
	db.DB.Model(&models.Upvote{}).Where("project_id = ?", project.ID).Count(&count)

	c.JSON(http.StatusOK, gin.H{"upvoted": upvoted, "upvote_count": count})
}
