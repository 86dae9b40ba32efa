package db

import (
	"log"
	"os"

	"launchpad/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=launchpad port=5432 sslmode=disable TimeZone=UTC"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	// Auto Migrate
	err = DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Project{},
		&models.ProjectCategory{},
		&models.LaunchQuota{},
		&models.Upvote{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	// Seed initial categories
	seedCategories()
}

var defaultCategories = []models.Category{
	// Development & IT
	{ID: "developer-tools", Name: "Developer Tools"},
	{ID: "api", Name: "APIs & Integrations"},
	{ID: "open-source", Name: "Open Source"},
	{ID: "web-dev", Name: "Web Development"},
	{ID: "mobile-dev", Name: "Mobile Development"},
	{ID: "devops", Name: "DevOps & Cloud"},
	{ID: "databases", Name: "Databases"},
	{ID: "testing-qa", Name: "Testing & QA"},
	{ID: "cms", Name: "CMS & No-Code"},
	// AI & Data Science
	{ID: "ai", Name: "Artificial Intelligence"},
	{ID: "machine-learning", Name: "Machine Learning"},
	{ID: "data-science", Name: "Data Science & Analytics"},
	{ID: "nlp", Name: "Natural Language Processing"},
	// Design & UX
	{ID: "design-tools", Name: "Design Tools"},
	{ID: "ui-ux", Name: "UI/UX"},
	{ID: "prototyping", Name: "Prototyping"},
	{ID: "graphics", Name: "Graphics & Illustration"},
	// Business & Marketing
	{ID: "saas", Name: "SaaS"},
	{ID: "marketing-tools", Name: "Marketing Tools"},
	{ID: "sales-tools", Name: "Sales Tools"},
	{ID: "productivity", Name: "Productivity"},
	{ID: "finance-tech", Name: "Finance & FinTech"},
	{ID: "ecommerce", Name: "E-commerce"},
	{ID: "analytics", Name: "Business Analytics"},
	// Hardware & IoT
	{ID: "hardware", Name: "Hardware"},
	{ID: "iot", Name: "Internet of Things (IoT)"},
	{ID: "robotics", Name: "Robotics"},
	{ID: "wearables", Name: "Wearables"},
	// Niche & Emerging Tech
	{ID: "blockchain", Name: "Blockchain & Crypto"},
	{ID: "ar-vr", Name: "AR/VR"},
	{ID: "gaming", Name: "Gaming Tech"},
	{ID: "edtech", Name: "Education Tech"},
	{ID: "healthtech", Name: "Health Tech"},
	{ID: "greentech", Name: "Green Tech"},
	// Platforms & Infrastructure
	{ID: "platform", Name: "Platforms"},
	{ID: "serverless", Name: "Serverless"},
	{ID: "security", Name: "Security"},
}

func seedCategories() {
	// 检查是否已有分类数据
	var count int64
	DB.Model(&models.Category{}).Count(&count)
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return
	}

	for _, cat := range defaultCategories {
		if err := DB.Create(&cat).Error; err != nil {
			log.Printf("Failed to create category %s: %v", cat.Name, err)
		}
	}
	log.Println("Initial categories created successfully")
}
