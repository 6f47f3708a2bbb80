package models

import (
	"time"
)

// User is a storefront customer identified by their Telegram id.
// Rows are created on first order or review and updated on later orders.
type User struct {
	ID                uint      `json:"id" gorm:"primaryKey"`
	TelegramID        string    `json:"telegram_id" gorm:"uniqueIndex;not null"`
	TelegramUsername  string    `json:"telegram_username"`
	TelegramFirstName string    `json:"telegram_first_name"`
	TelegramLastName  string    `json:"telegram_last_name"`
	Phone             string    `json:"phone"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}
