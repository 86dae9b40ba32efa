package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"launchpad/internal/db"
	"launchpad/internal/models"
	"launchpad/internal/services"
	"launchpad/internal/utils"

	"github.com/gin-gonic/gin"
)

type LaunchHandler struct {
	launchService    *services.LaunchService
	lifecycleService *services.LifecycleService
	paymentService   *services.PaymentService
}

func NewLaunchHandler() *LaunchHandler {
	return &LaunchHandler{
		launchService:    services.NewLaunchService(),
		lifecycleService: services.NewLifecycleService(),
		paymentService:   services.NewPaymentService(),
	}
}

// GetAvailability 查询某天剩余名额
func (h *LaunchHandler) GetAvailability(c *gin.Context) {
	date := c.Query("date")
	if date == "" {
		JSONError(c, http.StatusBadRequest, "date is required (YYYY-MM-DD)")
		return
	}

	availability, err := h.launchService.GetLaunchAvailability(date)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}
	c.JSON(http.StatusOK, availability)
}

// GetAvailabilityRange 查询一段日期的剩余名额（按类型窗口裁剪）
func (h *LaunchHandler) GetAvailabilityRange(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		JSONError(c, http.StatusBadRequest, "start and end are required (YYYY-MM-DD)")
		return
	}

	launchType := models.LaunchTypeFree
	if v := c.Query("type"); v != "" {
		t, ok := models.ParseLaunchType(v)
		if !ok {
			JSONError(c, http.StatusBadRequest, "unknown launch type: "+v)
			return
		}
		launchType = t
	}

	// 名额日历是最热的查询，短 TTL 缓存
	cacheKey := fmt.Sprintf("launch:range:%s:%s:%s", start, end, launchType)
	if cached := utils.GetCache().Get(cacheKey); cached != nil {
		if availability, ok := cached.([]services.LaunchAvailability); ok {
			c.JSON(http.StatusOK, availability)
			return
		}
	}

	availability, err := h.launchService.GetLaunchAvailabilityRange(start, end, launchType)
	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			JSONError(c, http.StatusBadRequest, err.Error())
			return
		}
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}

	utils.GetCache().Set(cacheKey, availability, 30*time.Second)
	c.JSON(http.StatusOK, availability)
}

type scheduleRequest struct {
	ProjectID  string `json:"project_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	LaunchType string `json:"launch_type" binding:"required"`
}

// Schedule 提交排期请求
func (h *LaunchHandler) Schedule(c *gin.Context) {
	currentUser := CurrentUser(c)

	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "project_id, date and launch_type are required")
		return
	}

	launchType, ok := models.ParseLaunchType(req.LaunchType)
	if !ok {
		JSONError(c, http.StatusBadRequest, "unknown launch type: "+req.LaunchType)
		return
	}

	// 只有项目创建者（或管理员）可以排期
	var project models.Project
	if err := db.DB.Where("public_id = ?", req.ProjectID).First(&project).Error; err != nil {
		JSONError(c, http.StatusNotFound, "project not found")
		return
	}
	if !currentUser.IsAdmin() && (project.CreatedBy == nil || *project.CreatedBy != currentUser.ID) {
		JSONError(c, http.StatusForbidden, "you can only schedule your own projects")
		return
	}

	if err := h.launchService.ScheduleLaunch(req.ProjectID, req.Date, launchType); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidDate):
			JSONError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrOutOfWindow):
			JSONError(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, services.ErrNoAvailability):
			JSONError(c, http.StatusConflict, "no availability for the selected date, please pick another day")
		case errors.Is(err, services.ErrUpdateFailed):
			JSONError(c, http.StatusNotFound, "project not found")
		default:
			JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		}
		return
	}

	status := models.LaunchStatusScheduled
	if launchType != models.LaunchTypeFree {
		status = models.LaunchStatusPaymentPending
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "launch_status": status})
}

// webhookAuthorized 校验支付回调的共享密钥
func webhookAuthorized(c *gin.Context) bool {
	token := os.Getenv("PAYMENT_WEBHOOK_TOKEN")
	return token != "" && c.GetHeader("X-Webhook-Token") == token
}

type paymentRequest struct {
	ProjectID string `json:"project_id" binding:"required"`
}

// ConfirmPayment 支付处理器回调：确认成功
func (h *LaunchHandler) ConfirmPayment(c *gin.Context) {
	if !webhookAuthorized(c) {
		JSONError(c, http.StatusUnauthorized, "invalid webhook token")
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "project_id is required")
		return
	}

	if err := h.paymentService.ConfirmPayment(req.ProjectID); err != nil {
		switch {
		case errors.Is(err, services.ErrUpdateFailed):
			JSONError(c, http.StatusNotFound, "no payment-pending launch for this project")
		case errors.Is(err, services.ErrNoAvailability):
			JSONError(c, http.StatusConflict, "the selected day filled up before payment completed")
		default:
			JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// FailPayment 支付处理器回调：支付失败
func (h *LaunchHandler) FailPayment(c *gin.Context) {
	if !webhookAuthorized(c) {
		JSONError(c, http.StatusUnauthorized, "invalid webhook token")
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "project_id is required")
		return
	}

	if err := h.paymentService.MarkPaymentFailed(req.ProjectID); err != nil {
		if errors.Is(err, services.ErrUpdateFailed) {
			JSONError(c, http.StatusNotFound, "no payment-pending launch for this project")
			return
		}
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SweepOngoing 手动触发 scheduled -> ongoing 扫描（管理员）
func (h *LaunchHandler) SweepOngoing(c *gin.Context) {
	count, err := h.lifecycleService.AdvanceScheduledToOngoing()
	if err != nil {
		JSONError(c, http.StatusBadGateway, "sweep failed, it will retry on the next cycle")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated_count": count})
}

// SweepLaunched 手动触发 ongoing -> launched 扫描（管理员）
func (h *LaunchHandler) SweepLaunched(c *gin.Context) {
	count, err := h.lifecycleService.AdvanceOngoingToLaunched()
	if err != nil {
		JSONError(c, http.StatusBadGateway, "sweep failed, it will retry on the next cycle")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated_count": count})
}
