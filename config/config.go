package config

import (
	"log"
	"os"

	"vape-shop-api/models"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// JWTSecret used to sign admin tokens — read from env or fallback
var JWTSecret = []byte(getEnv("JWT_SECRET", "vape_shop_super_secret_2024"))

// Telegram notification settings. Leaving the token or chat id empty turns
// the notifier into a silent no-op.
var (
	TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	TelegramChatID   = getEnv("TELEGRAM_GROUP_CHAT_ID", os.Getenv("TELEGRAM_ADMIN_CHAT_ID"))
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func InitDB() {
	var err error
	DB, err = gorm.Open(openDialector(), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate all models
	err = DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductFlavor{},
		&models.ProductImage{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.Admin{},
	)
	if err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	seedAdmin()

	log.Println("✅ Database connected and migrated successfully")
}

// openDialector picks Postgres when DATABASE_URL is set, sqlite otherwise.
func openDialector() gorm.Dialector {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		return postgres.Open(dsn)
	}
	return sqlite.Open(getEnv("SQLITE_PATH", "vape_shop.db"))
}

// seedAdmin creates the back-office account from env on first boot.
func seedAdmin() {
	username := os.Getenv("ADMIN_USERNAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if username == "" || password == "" {
		return
	}

	var existing models.Admin
	if err := DB.Where("username = ?", username).First(&existing).Error; err == nil {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Println("Failed to hash admin password:", err)
		return
	}
	if err := DB.Create(&models.Admin{Username: username, PasswordHash: string(hash)}).Error; err != nil {
		log.Println("Failed to seed admin account:", err)
	}
}
