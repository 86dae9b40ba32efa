package handlers

import (
	"net/http"
	"strings"

	"launchpad/internal/db"
	"launchpad/internal/models"
	"launchpad/internal/services"
	"launchpad/internal/utils"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	launchService *services.LaunchService
}

func NewAdminHandler() *AdminHandler {
	return &AdminHandler{
		launchService: services.NewLaunchService(),
	}
}

// Stats 发布和用户的整体统计
func (h *AdminHandler) Stats(c *gin.Context) {
	var totalLaunches, premiumLaunches, premiumPlusLaunches, totalUsers int64

	db.DB.Model(&models.Project{}).Where("scheduled_launch_date IS NOT NULL").Count(&totalLaunches)
	db.DB.Model(&models.Project{}).Where("launch_type = ?", models.LaunchTypePremium).Count(&premiumLaunches)
	db.DB.Model(&models.Project{}).Where("launch_type = ?", models.LaunchTypePremiumPlus).Count(&premiumPlusLaunches)
	db.DB.Model(&models.User{}).Count(&totalUsers)

	c.JSON(http.StatusOK, gin.H{
		"total_launches":        totalLaunches,
		"premium_launches":      premiumLaunches,
		"premium_plus_launches": premiumPlusLaunches,
		"total_users":           totalUsers,
	})
}

// FreeAvailability 免费名额总览，并给出最近的可约日期
func (h *AdminHandler) FreeAvailability(c *gin.Context) {
	today := h.launchService.Now().UTC()
	start := today.AddDate(0, 0, services.MinDaysAhead).Format(services.DateFormat)
	end := today.AddDate(0, 0, services.MaxDaysAhead).Format(services.DateFormat)

	availability, err := h.launchService.GetLaunchAvailabilityRange(start, end, models.LaunchTypeFree)
	if err != nil {
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}

	var firstAvailable *string
	for i := range availability {
		if availability[i].FreeSlots > 0 {
			firstAvailable = &availability[i].Date
			break
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"availability":         availability,
		"first_available_date": firstAvailable,
	})
}

// ListCategories 分类列表
func (h *AdminHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := db.DB.Order("name ASC").Find(&categories).Error; err != nil {
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories, "total": len(categories)})
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// AddCategory 新增分类
func (h *AdminHandler) AddCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "name is required")
		return
	}

	name := strings.TrimSpace(req.Name)
	if len(name) < 2 {
		JSONError(c, http.StatusBadRequest, "category name must be at least 2 characters")
		return
	}

	id := utils.Slugify(name)
	if id == "" {
		JSONError(c, http.StatusBadRequest, "category name must contain letters or digits")
		return
	}

	var count int64
	db.DB.Model(&models.Category{}).Where("id = ? OR name = ?", id, name).Count(&count)
	if count > 0 {
		JSONError(c, http.StatusConflict, "category already exists")
		return
	}

	category := models.Category{ID: id, Name: name}
	if err := db.DB.Create(&category).Error; err != nil {
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// DeleteCategory 删除分类及其项目关联
func (h *AdminHandler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	result := db.DB.Delete(&models.Category{}, "id = ?", id)
	if result.Error != nil {
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}
	if result.RowsAffected == 0 {
		JSONError(c, http.StatusNotFound, "category not found")
		return
	}
	db.DB.Where("category_id = ?", id).Delete(&models.ProjectCategory{})

	c.JSON(http.StatusOK, gin.H{"success": true})
}
