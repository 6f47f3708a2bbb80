package models

import "time"

// StatusPending is the only status the system sets on its own. Everything
// after that is a manual admin edit (e.g. "completed", "cancelled").
const StatusPending = "pending"

type Order struct {
	ID              uint        `json:"id" gorm:"primaryKey"`
	UserID          uint        `json:"user_id" gorm:"not null"`
	User            User        `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TotalAmount     float64     `json:"total_amount" gorm:"not null"`
	Status          string      `json:"status" gorm:"not null;default:'pending'"`
	DeliveryAddress string      `json:"delivery_address"`
	Phone           string      `json:"phone"`
	Notes           string      `json:"notes"`
	Items           []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

type OrderItem struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	OrderID    uint    `json:"order_id" gorm:"not null"`
	ProductID  string  `json:"product_id" gorm:"size:36;not null"`
	Product    Product `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	FlavorName string  `json:"flavor_name"`
	Quantity   int     `json:"quantity" gorm:"not null"`
	Price      float64 `json:"price" gorm:"not null"` // snapshot price at time of order
}
