package handlers

import (
	"encoding/base64"
	"net/http"

	"vape-shop-api/config"
	"vape-shop-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type productResponse struct {
	models.Product
	CategoryName string `json:"category_name"`
	CategorySlug string `json:"category_slug"`
}

// ListProducts returns the public catalog: active products with category
// name, ordered flavor list and an inline data-URI image when a stored
// binary exists (the stored image_url string otherwise).
func ListProducts(c *gin.Context) {
	query := config.DB.Preload("Category").
		Preload("Flavors", func(db *gorm.DB) *gorm.DB { return db.Order("flavor_name asc") }).
		Preload("Image").
		Where("is_active = ?", true)

	if slug := c.Query("category"); slug != "" {
		query = query.Joins("JOIN categories ON categories.id = products.category_id").
			Where("categories.slug = ?", slug)
	}

	var products []models.Product
	query.Order("products.name asc").Find(&products)

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		if p.Image != nil {
			p.ImageURL = "data:" + p.Image.MimeType + ";base64," + base64.StdEncoding.EncodeToString(p.Image.Data)
		}
		out = append(out, productResponse{
			Product:      p,
			CategoryName: p.Category.Name,
			CategorySlug: p.Category.Slug,
		})
	}

	c.JSON(http.StatusOK, gin.H{"count": len(out), "products": out})
}

// GetProductImage serves a product's stored binary image at a stable URL
func GetProductImage(c *gin.Context) {
	var image models.ProductImage
	if err := config.DB.Where("product_id = ?", c.Param("id")).First(&image).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}
	c.Data(http.StatusOK, image.MimeType, image.Data)
}

// ListCategories returns all categories (public)
func ListCategories(c *gin.Context) {
	var categories []models.Category
	config.DB.Order("name asc").Find(&categories)
	c.JSON(http.StatusOK, gin.H{"count": len(categories), "categories": categories})
}

type TelegramUserRequest struct {
	TelegramID        string `json:"telegram_id" binding:"required"`
	TelegramUsername  string `json:"telegram_username"`
	TelegramFirstName string `json:"telegram_first_name"`
	TelegramLastName  string `json:"telegram_last_name"`
	Phone             string `json:"phone"`
}

// UpsertTelegramUser creates or refreshes a customer record by telegram_id
func UpsertTelegramUser(c *gin.Context) {
	var req TelegramUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := config.DB.Where("telegram_id = ?", req.TelegramID).First(&user).Error
	if err == nil {
		updates := map[string]interface{}{
			"telegram_username":   req.TelegramUsername,
			"telegram_first_name": req.TelegramFirstName,
			"telegram_last_name":  req.TelegramLastName,
		}
		if req.Phone != "" {
			updates["phone"] = req.Phone
		}
		if err := config.DB.Model(&user).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}

	user = models.User{
		TelegramID:        req.TelegramID,
		TelegramUsername:  req.TelegramUsername,
		TelegramFirstName: req.TelegramFirstName,
		TelegramLastName:  req.TelegramLastName,
		Phone:             req.Phone,
	}
	if err := config.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}
