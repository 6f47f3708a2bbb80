package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SlugLiquids marks the one category whose products carry flavor variants.
// For liquids the product's aggregate stock always equals the sum of its
// flavors' stocks; for every other category stock is authoritative directly.
const SlugLiquids = "liquids"

type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Slug        string    `json:"slug" gorm:"uniqueIndex;not null"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type Product struct {
	ID          string          `json:"id" gorm:"primaryKey;size:36"`
	Name        string          `json:"name" gorm:"not null"`
	Description string          `json:"description"`
	Price       float64         `json:"price" gorm:"not null"`
	CategoryID  uint            `json:"category_id"`
	Category    Category        `json:"category,omitempty" gorm:"foreignKey:CategoryID"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	IsActive    bool            `json:"is_active" gorm:"not null;default:true"`
	Flavors     []ProductFlavor `json:"flavors,omitempty" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	Image       *ProductImage   `json:"-" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BeforeCreate assigns a UUID so product ids are stable across datastores.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// IsLiquid reports whether the product belongs to the flavored category.
// Callers must have the Category association loaded.
func (p *Product) IsLiquid() bool {
	return p.Category.Slug == SlugLiquids
}

// ProductFlavor is a named sub-SKU of a liquid product with its own stock.
type ProductFlavor struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ProductID  string `json:"product_id" gorm:"size:36;not null;uniqueIndex:idx_product_flavor"`
	FlavorName string `json:"flavor_name" gorm:"not null;uniqueIndex:idx_product_flavor"`
	Stock      int    `json:"stock" gorm:"not null;default:0"`
}

// ProductImage holds an uploaded image payload, served at a stable URL
// instead of being re-sent inline on every admin read.
type ProductImage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID string    `json:"product_id" gorm:"size:36;uniqueIndex;not null"`
	Data      []byte    `json:"-" gorm:"not null"`
	MimeType  string    `json:"mime_type" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
