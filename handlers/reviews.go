package handlers

import (
	"net/http"

	"vape-shop-api/config"
	"vape-shop-api/models"

	"github.com/gin-gonic/gin"
)

// ListReviews returns approved reviews only, newest first (public)
func ListReviews(c *gin.Context) {
	var reviews []models.Review
	config.DB.Preload("Product").Preload("User").
		Where("is_approved = ?", true).
		Order("created_at desc").
		Limit(50).
		Find(&reviews)
	c.JSON(http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews})
}

type CreateReviewRequest struct {
	UserID           *uint   `json:"user_id"`
	ProductID        *string `json:"product_id"`
	TelegramUsername string  `json:"telegram_username"`
	Rating           int     `json:"rating"`
	ReviewText       string  `json:"review_text" binding:"max=1000"`
}

// CreateReview stores a review pending moderation. The rating is clamped
// into [1,5] rather than rejected, and is_approved is always false no
// matter what the client sends.
func CreateReview(c *gin.Context) {
	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rating := req.Rating
	if rating < 1 {
		rating = 1
	}
	if rating > 5 {
		rating = 5
	}

	if req.ProductID != nil {
		var product models.Product
		if err := config.DB.First(&product, "id = ?", *req.ProductID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
	}

	review := models.Review{
		UserID:           req.UserID,
		ProductID:        req.ProductID,
		TelegramUsername: req.TelegramUsername,
		Rating:           rating,
		ReviewText:       req.ReviewText,
		IsApproved:       false,
	}
	if err := config.DB.Create(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create review"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": review})
}
