package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"launchpad/internal/db"
	"launchpad/internal/middleware"
	"launchpad/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 换掉全局连接，handler 走的就是这套测试库
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	err = gdb.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Project{},
		&models.ProjectCategory{},
		&models.LaunchQuota{},
		&models.Upvote{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	db.DB = gdb
	return gdb
}

// asUser 在请求上下文里注入登录用户，替代 session 中间件
func asUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CheckUserKey, user)
		c.Next()
	}
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func TestGetAvailabilityHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupTestDB(t)

	r := gin.New()
	r.GET("/api/launch/availability", NewLaunchHandler().GetAvailability)

	// 空档期的一天：各类型名额都是上限
	date := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/launch/availability?date="+date, nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["date"] != date {
		t.Errorf("date = %v, want %s", body["date"], date)
	}
	if body["free_slots"] != float64(5) || body["premium_slots"] != float64(12) || body["premium_plus_slots"] != float64(3) {
		t.Errorf("slots = %v/%v/%v, want 5/12/3", body["free_slots"], body["premium_slots"], body["premium_plus_slots"])
	}
	if body["total_slots"] != float64(20) {
		t.Errorf("total_slots = %v, want 20", body["total_slots"])
	}
}

func TestGetAvailabilityHandlerBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupTestDB(t)

	r := gin.New()
	r.GET("/api/launch/availability", NewLaunchHandler().GetAvailability)

	tests := []struct {
		name string
		url  string
	}{
		{"missing date", "/api/launch/availability"},
		{"malformed date", "/api/launch/availability?date=06-05-2025"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestGetAvailabilityRangeHandlerUnknownType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupTestDB(t)

	r := gin.New()
	r.GET("/api/launch/availability/range", NewLaunchHandler().GetAvailabilityRange)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/launch/availability/range?start=2025-06-02&end=2025-06-10&type=golden", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func scheduleJSON(projectID, date, launchType string) *bytes.Reader {
	payload, _ := json.Marshal(map[string]string{
		"project_id":  projectID,
		"date":        date,
		"launch_type": launchType,
	})
	return bytes.NewReader(payload)
}

func TestScheduleHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gdb := setupTestDB(t)

	owner := models.User{Username: "owner", Email: "owner@example.com", Password: "x"}
	if err := gdb.Create(&owner).Error; err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	project := models.Project{
		PublicID:  uuid.NewString(),
		Slug:      "my-project",
		Name:      "My Project",
		CreatedBy: &owner.ID,
	}
	if err := gdb.Create(&project).Error; err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}

	r := gin.New()
	r.POST("/api/launch/schedule", asUser(&owner), NewLaunchHandler().Schedule)

	date := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/launch/schedule", scheduleJSON(project.PublicID, date, "free"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["launch_status"] != string(models.LaunchStatusScheduled) {
		t.Errorf("launch_status = %v, want scheduled", body["launch_status"])
	}

	var got models.Project
	gdb.First(&got, project.ID)
	if got.LaunchStatus != models.LaunchStatusScheduled {
		t.Errorf("stored status = %s, want scheduled", got.LaunchStatus)
	}
}

func TestScheduleHandlerForbiddenForOtherUsers(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gdb := setupTestDB(t)

	owner := models.User{Username: "owner", Email: "owner@example.com", Password: "x"}
	gdb.Create(&owner)
	stranger := models.User{Username: "stranger", Email: "stranger@example.com", Password: "x"}
	gdb.Create(&stranger)
	project := models.Project{PublicID: uuid.NewString(), Slug: "theirs", Name: "Theirs", CreatedBy: &owner.ID}
	gdb.Create(&project)

	r := gin.New()
	r.POST("/api/launch/schedule", asUser(&stranger), NewLaunchHandler().Schedule)

	date := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/launch/schedule", scheduleJSON(project.PublicID, date, "free"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}

	// 管理员不受创建者限制
	admin := models.User{Username: "admin", Email: "admin@example.com", Password: "x", Role: "admin"}
	gdb.Create(&admin)

	r = gin.New()
	r.POST("/api/launch/schedule", asUser(&admin), NewLaunchHandler().Schedule)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/launch/schedule", scheduleJSON(project.PublicID, date, "free"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("admin schedule status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
}

func TestScheduleHandlerUnknownProject(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gdb := setupTestDB(t)

	user := models.User{Username: "u", Email: "u@example.com", Password: "x"}
	gdb.Create(&user)

	r := gin.New()
	r.POST("/api/launch/schedule", asUser(&user), NewLaunchHandler().Schedule)

	date := time.Now().UTC().AddDate(0, 0, 3).Format("2006-01-02")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/launch/schedule", scheduleJSON(uuid.NewString(), date, "free"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestPaymentWebhookAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupTestDB(t)
	t.Setenv("PAYMENT_WEBHOOK_TOKEN", "hook-secret")

	r := gin.New()
	h := NewLaunchHandler()
	r.POST("/api/payment/confirm", h.ConfirmPayment)
	r.POST("/api/payment/failed", h.FailPayment)

	payload, _ := json.Marshal(map[string]string{"project_id": uuid.NewString()})

	// 没带密钥
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/confirm", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", w.Code)
	}

	// 密钥正确但项目不存在
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/payment/failed", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Token", "hook-secret")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status for unknown project = %d, want 404", w.Code)
	}
}

func TestPaymentWebhookConfirm(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gdb := setupTestDB(t)
	t.Setenv("PAYMENT_WEBHOOK_TOKEN", "hook-secret")

	launchDate := time.Now().UTC().AddDate(0, 0, 5)
	launchDate = time.Date(launchDate.Year(), launchDate.Month(), launchDate.Day(), 8, 0, 0, 0, time.UTC)
	project := models.Project{
		PublicID:            uuid.NewString(),
		Slug:                "paid",
		Name:                "Paid",
		LaunchType:          models.LaunchTypePremium,
		LaunchStatus:        models.LaunchStatusPaymentPending,
		ScheduledLaunchDate: &launchDate,
	}
	gdb.Create(&project)

	r := gin.New()
	r.POST("/api/payment/confirm", NewLaunchHandler().ConfirmPayment)

	payload, _ := json.Marshal(map[string]string{"project_id": project.PublicID})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/payment/confirm", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Token", "hook-secret")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}

	var got models.Project
	gdb.First(&got, project.ID)
	if got.LaunchStatus != models.LaunchStatusScheduled {
		t.Errorf("status = %s, want scheduled after payment confirm", got.LaunchStatus)
	}
}
