package models

import "time"

// Review is hidden from the public read path until an admin approves it.
type Review struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	UserID           *uint     `json:"user_id"`
	User             *User     `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProductID        *string   `json:"product_id" gorm:"size:36"`
	Product          *Product  `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	TelegramUsername string    `json:"telegram_username"`
	Rating           int       `json:"rating" gorm:"not null"`
	ReviewText       string    `json:"review_text"`
	IsApproved       bool      `json:"is_approved" gorm:"not null;default:false"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
