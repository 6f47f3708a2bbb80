package handlers

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"vape-shop-api/config"
	"vape-shop-api/middleware"
	"vape-shop-api/models"
	"vape-shop-api/stock"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ── Auth ────────────────────────────────────────────────────────────────────

type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin authenticates a back-office account and returns a JWT
func AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var admin models.Admin
	if err := config.DB.Where("username = ?", req.Username).First(&admin).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	token, err := middleware.GenerateToken(&admin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"admin":   gin.H{"id": admin.ID, "username": admin.Username},
	})
}

// ── Product management ──────────────────────────────────────────────────────

type FlavorRequest struct {
	FlavorName string `json:"flavor_name" binding:"required,max=100"`
	Stock      int    `json:"stock" binding:"min=0"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Price       float64         `json:"price" binding:"required,gte=0"`
	CategoryID  uint            `json:"category_id" binding:"required"`
	ImageURL    string          `json:"image_url"`
	Stock       int             `json:"stock" binding:"min=0"`
	Flavors     []FlavorRequest `json:"flavors"`
}

// AdminListProducts returns every product, inactive ones included
func AdminListProducts(c *gin.Context) {
	var products []models.Product
	config.DB.Preload("Category").
		Preload("Flavors", func(db *gorm.DB) *gorm.DB { return db.Order("flavor_name asc") }).
		Order("created_at desc").
		Find(&products)
	c.JSON(http.StatusOK, gin.H{"count": len(products), "products": products})
}

// CreateProduct adds a product, optionally with its flavor variants. When
// flavors are given the aggregate stock is derived from them.
func CreateProduct(c *gin.Context) {
	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category models.Category
	if err := config.DB.First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		ImageURL:    req.ImageURL,
		Stock:       req.Stock,
		IsActive:    true,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if len(req.Flavors) == 0 {
			return nil
		}
		for _, f := range req.Flavors {
			flavor := models.ProductFlavor{
				ProductID:  product.ID,
				FlavorName: f.FlavorName,
				Stock:      f.Stock,
			}
			if err := tx.Create(&flavor).Error; err != nil {
				return err
			}
		}
		return stock.ResyncProduct(tx, product.ID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	config.DB.Preload("Category").Preload("Flavors").First(&product, "id = ?", product.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Product created", "product": product})
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *float64         `json:"price"`
	CategoryID  *uint            `json:"category_id"`
	ImageURL    *string          `json:"image_url"`
	Stock       *int             `json:"stock"`
	IsActive    *bool            `json:"is_active"`
	Flavors     *[]FlavorRequest `json:"flavors"`
}

// UpdateProduct edits product fields. A flavors list, when present,
// replaces every existing flavor row and resyncs the aggregate stock.
func UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	var product models.Product
	if err := config.DB.First(&product, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		if *req.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid price"})
			return
		}
		updates["price"] = *req.Price
	}
	if req.CategoryID != nil {
		updates["category_id"] = *req.CategoryID
	}
	if req.ImageURL != nil {
		updates["image_url"] = *req.ImageURL
	}
	if req.Stock != nil {
		updates["stock"] = *req.Stock
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&product).Updates(updates).Error; err != nil {
				return err
			}
		}
		if req.Flavors == nil {
			return nil
		}
		// Replace-all semantics: drop every flavor row and reinsert.
		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductFlavor{}).Error; err != nil {
			return err
		}
		for _, f := range *req.Flavors {
			flavor := models.ProductFlavor{
				ProductID:  product.ID,
				FlavorName: f.FlavorName,
				Stock:      f.Stock,
			}
			if err := tx.Create(&flavor).Error; err != nil {
				return err
			}
		}
		return stock.ResyncProduct(tx, product.ID)
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	config.DB.Preload("Category").Preload("Flavors").First(&product, "id = ?", product.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Product updated", "product": product})
}

// DeleteProduct removes a product with its flavors and stored image
func DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	var product models.Product
	if err := config.DB.First(&product, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductFlavor{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&product).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

// ── Image upload ────────────────────────────────────────────────────────────

const maxImageBytes = 2 << 20

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
	"image/gif":  true,
}

type UploadImageRequest struct {
	Image string `json:"image" binding:"required"`
}

// UploadProductImage accepts a data-URI payload, validates its MIME type and
// decoded size, and stores it as the product's binary image.
func UploadProductImage(c *gin.Context) {
	productID := c.Param("id")

	var product models.Product
	if err := config.DB.First(&product, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req UploadImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mimeType, data, ok := decodeDataURI(req.Image)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image payload, expected a base64 data URI"})
		return
	}
	if !allowedImageTypes[mimeType] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type. Allowed: png, jpeg, webp, gif"})
		return
	}
	if len(data) > maxImageBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image too large (max 2MB)"})
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		image := models.ProductImage{ProductID: productID, Data: data, MimeType: mimeType}
		if err := tx.Create(&image).Error; err != nil {
			return err
		}
		// The catalog serves the binary at a stable URL from here on.
		return tx.Model(&product).Update("image_url", "/api/products/"+productID+"/image").Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Image uploaded",
		"image_url": "/api/products/" + productID + "/image",
	})
}

// decodeDataURI splits "data:<mime>;base64,<payload>" and decodes the payload.
func decodeDataURI(s string) (string, []byte, bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, false
	}
	rest := strings.TrimPrefix(s, "data:")
	mimeType, payload, found := strings.Cut(rest, ";base64,")
	if !found || mimeType == "" {
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, false
	}
	return mimeType, data, true
}

// ── Categories ──────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug" binding:"required"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

// CreateCategory adds a category
func CreateCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := config.DB.Create(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Category created", "category": category})
}

// ── Orders ──────────────────────────────────────────────────────────────────

// AdminListOrders returns all orders with customer info and line items
func AdminListOrders(c *gin.Context) {
	query := config.DB.Preload("User").Preload("Items.Product")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var orders []models.Order
	query.Order("created_at desc").Find(&orders)
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus sets an order's status to any admin-chosen string.
// There is no transition table: pending → whatever the admin says.
func UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var order models.Order
	if err := config.DB.First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if err := config.DB.Model(&order).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order status"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated", "order": order})
}

// ── Reviews moderation ──────────────────────────────────────────────────────

// AdminListReviews returns every review, approved or not
func AdminListReviews(c *gin.Context) {
	var reviews []models.Review
	config.DB.Preload("Product").Preload("User").
		Order("created_at desc").
		Find(&reviews)
	c.JSON(http.StatusOK, gin.H{"count": len(reviews), "reviews": reviews})
}

type ModerateReviewRequest struct {
	IsApproved *bool `json:"is_approved" binding:"required"`
}

// ModerateReview approves or hides a review
func ModerateReview(c *gin.Context) {
	var req ModerateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var review models.Review
	if err := config.DB.First(&review, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	if err := config.DB.Model(&review).Update("is_approved", *req.IsApproved).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update review"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review updated successfully", "review": review})
}

// ── Stats ───────────────────────────────────────────────────────────────────

type statsTotals struct {
	TotalOrders    int     `json:"total_orders"`
	TotalCustomers int     `json:"total_customers"`
	TotalRevenue   float64 `json:"total_revenue"`
	AvgOrderValue  float64 `json:"avg_order_value"`
}

type categoryStat struct {
	CategoryName string  `json:"category_name"`
	OrdersCount  int     `json:"orders_count"`
	Revenue      float64 `json:"revenue"`
}

type productStat struct {
	Name          string  `json:"name"`
	TimesSold     int     `json:"times_sold"`
	TotalQuantity int     `json:"total_quantity"`
	Revenue       float64 `json:"revenue"`
}

type lowStockProduct struct {
	Name         string `json:"name"`
	Stock        int    `json:"stock"`
	CategoryName string `json:"category_name"`
}

type lowStockFlavor struct {
	ProductName string `json:"product_name"`
	FlavorName  string `json:"flavor_name"`
	Stock       int    `json:"stock"`
}

// AdminStats aggregates a 30-day rolling sales window
func AdminStats(c *gin.Context) {
	since := time.Now().AddDate(0, 0, -30)

	var totals statsTotals
	config.DB.Raw(`
		SELECT COUNT(DISTINCT o.id)            AS total_orders,
		       COUNT(DISTINCT o.user_id)       AS total_customers,
		       COALESCE(SUM(o.total_amount), 0) AS total_revenue,
		       COALESCE(AVG(o.total_amount), 0) AS avg_order_value
		FROM orders o
		WHERE o.created_at >= ?`, since).Scan(&totals)

	var byCategory []categoryStat
	config.DB.Raw(`
		SELECT c.name                          AS category_name,
		       COUNT(DISTINCT o.id)            AS orders_count,
		       COALESCE(SUM(oi.quantity * oi.price), 0) AS revenue
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.id
		JOIN products p     ON p.id = oi.product_id
		JOIN categories c   ON c.id = p.category_id
		WHERE o.created_at >= ?
		GROUP BY c.id, c.name
		ORDER BY revenue DESC`, since).Scan(&byCategory)

	var topProducts []productStat
	config.DB.Raw(`
		SELECT p.name,
		       COUNT(oi.id)                    AS times_sold,
		       COALESCE(SUM(oi.quantity), 0)   AS total_quantity,
		       COALESCE(SUM(oi.quantity * oi.price), 0) AS revenue
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		JOIN orders o   ON o.id = oi.order_id
		WHERE o.created_at >= ?
		GROUP BY p.id, p.name
		ORDER BY revenue DESC
		LIMIT 10`, since).Scan(&topProducts)

	var lowStock []lowStockProduct
	config.DB.Raw(`
		SELECT p.name, p.stock, c.name AS category_name
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.stock <= 10 AND p.is_active = ?
		ORDER BY p.stock ASC
		LIMIT 10`, true).Scan(&lowStock)

	var lowStockFlavors []lowStockFlavor
	config.DB.Raw(`
		SELECT p.name AS product_name, pf.flavor_name, pf.stock
		FROM product_flavors pf
		JOIN products p ON p.id = pf.product_id
		WHERE pf.stock <= 5 AND p.is_active = ?
		ORDER BY pf.stock ASC
		LIMIT 10`, true).Scan(&lowStockFlavors)

	c.JSON(http.StatusOK, gin.H{
		"total":             totals,
		"by_category":       byCategory,
		"top_products":      topProducts,
		"low_stock":         lowStock,
		"low_stock_flavors": lowStockFlavors,
	})
}
