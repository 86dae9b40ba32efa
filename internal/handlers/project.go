package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"launchpad/internal/db"
	"launchpad/internal/models"
	"launchpad/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectHandler struct{}

func NewProjectHandler() *ProjectHandler {
	return &ProjectHandler{}
}

type createProjectRequest struct {
	Name        string   `json:"name" binding:"required"`
	Tagline     string   `json:"tagline"`
	Description string   `json:"description"`
	WebsiteURL  string   `json:"website_url"`
	LogoURL     string   `json:"logo_url"`
	Categories  []string `json:"categories"`
}

// Create 提交新项目，排期在单独的接口完成
func (h *ProjectHandler) Create(c *gin.Context) {
	currentUser := CurrentUser(c)

	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "name is required")
		return
	}

	slug := utils.Slugify(req.Name)
	if slug == "" {
		JSONError(c, http.StatusBadRequest, "project name must contain letters or digits")
		return
	}

	// slug 冲突时追加短后缀
	var existing int64
	db.DB.Model(&models.Project{}).Where("slug = ?", slug).Count(&existing)
	if existing > 0 {
		slug = fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
	}

	project := models.Project{
		PublicID:    uuid.NewString(),
		Slug:        slug,
		Name:        strings.TrimSpace(req.Name),
		Tagline:     req.Tagline,
		Description: req.Description,
		WebsiteURL:  req.WebsiteURL,
		LogoURL:     req.LogoURL,
		CreatedBy:   &currentUser.ID,
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return replaceCategories(tx, project.ID, req.Categories)
	})
	if err != nil {
		JSONError(c, http.StatusInternalServerError, "failed to create project")
		return
	}

	c.JSON(http.StatusCreated, project)
}

// replaceCategories 重建项目的分类关联，未知分类 ID 会被忽略
func replaceCategories(tx *gorm.DB, projectID uint, categoryIDs []string) error {
	if err := tx.Where("project_id = ?", projectID).Delete(&models.ProjectCategory{}).Error; err != nil {
		return err
	}
	for _, id := range categoryIDs {
		var count int64
		tx.Model(&models.Category{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			continue
		}
		if err := tx.Create(&models.ProjectCategory{ProjectID: projectID, CategoryID: id}).Error; err != nil {
			return err
		}
	}
	return nil
}

// Detail 项目详情页数据。payment_pending 的项目对外不可见。
func (h *ProjectHandler) Detail(c *gin.Context) {
	slug := c.Param("slug")

	var project models.Project
	err := db.DB.
		Where("slug = ? AND launch_status <> ?", slug, models.LaunchStatusPaymentPending).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			JSONError(c, http.StatusNotFound, "project not found")
			return
		}
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}

	var upvotes int64
	db.DB.Model(&models.Upvote{}).Where("project_id = ?", project.ID).Count(&upvotes)
	project.UpvoteCount = int(upvotes)

	var categories []models.Category
	db.DB.
		Joins("JOIN project_categories ON project_categories.category_id = categories.id").
		Where("project_categories.project_id = ?", project.ID).
		Find(&categories)

	var creatorName string
	if project.CreatedBy != nil {
		var creator models.User
		if db.DB.First(&creator, *project.CreatedBy).Error == nil {
			creatorName = creator.Username
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"project":          project,
		"categories":       categories,
		"creator":          creatorName,
		"description_html": utils.RenderMarkdown(project.Description),
	})
}

// Status 项目发布状态，仅创建者可见
func (h *ProjectHandler) Status(c *gin.Context) {
	currentUser := CurrentUser(c)
	publicID := c.Param("id")

	var project models.Project
	if err := db.DB.Where("public_id = ?", publicID).First(&project).Error; err != nil {
		JSONError(c, http.StatusNotFound, "project not found")
		return
	}

	if project.CreatedBy == nil || *project.CreatedBy != currentUser.ID {
		JSONError(c, http.StatusForbidden, "forbidden")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     project.PublicID,
		"slug":   project.Slug,
		"status": project.LaunchStatus,
	})
}

// Dashboard 当前用户的项目列表（分页）
func (h *ProjectHandler) Dashboard(c *gin.Context) {
	currentUser := CurrentUser(c)

	page, limit := utils.ParsePagination(c.Query("page"), c.Query("limit"), 20, 100)

	var total int64
	db.DB.Model(&models.Project{}).Where("created_by = ?", currentUser.ID).Count(&total)

	var projects []models.Project
	err := db.DB.
		Where("created_by = ?", currentUser.ID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&projects).Error
	if err != nil {
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects, "total": total, "page": page})
}

type updateProjectRequest struct {
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
}

// Update 修改项目介绍和分类。只有创建者可以改，且仅限 scheduled 状态。
func (h *ProjectHandler) Update(c *gin.Context) {
	currentUser := CurrentUser(c)
	publicID := c.Param("id")

	var req updateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		JSONError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var project models.Project
	if err := db.DB.Where("public_id = ?", publicID).First(&project).Error; err != nil {
		JSONError(c, http.StatusNotFound, "project not found")
		return
	}

	if project.CreatedBy == nil || *project.CreatedBy != currentUser.ID {
		JSONError(c, http.StatusForbidden, "you don't have permission to edit this project")
		return
	}
	if project.LaunchStatus != models.LaunchStatusScheduled {
		JSONError(c, http.StatusBadRequest, "you can only edit projects that are scheduled for launch")
		return
	}

	err := db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&project).Update("description", req.Description).Error; err != nil {
			return err
		}
		return replaceCategories(tx, project.ID, req.Categories)
	})
	if err != nil {
		JSONError(c, http.StatusBadGateway, "temporary storage problem, please retry")
		return
	}

	utils.GetCache().InvalidateLaunchPages(project.PublicID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
