package handlers_test

import (
	"encoding/base64"
	"net/http"
	"testing"

	"vape-shop-api/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminLogin(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")

	w := doJSON(r, http.MethodPost, "/api/admin/login", gin.H{"username": "boss", "password": "hunter2"}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decodeBody(t, w)["token"])

	w = doJSON(r, http.MethodPost, "/api/admin/login", gin.H{"username": "boss", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/login", gin.H{"username": "ghost", "password": "hunter2"}, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	_, r := setupTest(t)

	w := doJSON(r, http.MethodGet, "/api/admin/orders", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/orders", nil, map[string]string{"Authorization": "Bearer not-a-jwt"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/orders", nil, map[string]string{"Authorization": "Basic abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminCreateProductWithFlavors(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")
	liquids := seedCategory(t, db, "Liquids", models.SlugLiquids)

	w := doJSON(r, http.MethodPost, "/api/admin/products", gin.H{
		"name":        "PARADISE Liquid 30ml",
		"price":       25.0,
		"category_id": liquids.ID,
		"flavors": []gin.H{
			{"flavor_name": "Mango Ice", "stock": 12},
			{"flavor_name": "Blueberry", "stock": 8},
		},
	}, bearer(token))
	require.Equal(t, http.StatusCreated, w.Code)

	product := decodeBody(t, w)["product"].(map[string]interface{})
	productID := product["id"].(string)
	require.NotEmpty(t, productID)

	// Aggregate stock derives from the flavors.
	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", productID).Error)
	assert.Equal(t, 20, stored.Stock)
	assert.True(t, stored.IsActive)

	w = doJSON(r, http.MethodPost, "/api/admin/products", gin.H{"name": "no category"}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminUpdateProductReplacesFlavors(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")
	liquids := seedCategory(t, db, "Liquids", models.SlugLiquids)
	seedProduct(t, db, "p1", liquids.ID, 25, 10, map[string]int{"Mango": 10})

	w := doJSON(r, http.MethodPut, "/api/admin/products/p1", gin.H{
		"price": 27.5,
		"flavors": []gin.H{
			{"flavor_name": "Grape", "stock": 4},
			{"flavor_name": "Mint", "stock": 2},
		},
	}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)

	var flavors []models.ProductFlavor
	require.NoError(t, db.Where("product_id = ?", "p1").Order("flavor_name").Find(&flavors).Error)
	require.Len(t, flavors, 2)
	assert.Equal(t, "Grape", flavors[0].FlavorName)
	assert.Equal(t, "Mint", flavors[1].FlavorName)

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", "p1").Error)
	assert.Equal(t, 6, product.Stock)
	assert.Equal(t, 27.5, product.Price)
}

func TestAdminUpdateProductReactivation(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")
	category := seedCategory(t, db, "Consumables", "consumables")
	product := seedProduct(t, db, "pod1", category.ID, 12, 0, nil)
	require.NoError(t, db.Model(&product).Update("is_active", false).Error)

	w := doJSON(r, http.MethodPut, "/api/admin/products/pod1", gin.H{
		"stock":     15,
		"is_active": true,
	}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", "pod1").Error)
	assert.Equal(t, 15, stored.Stock)
	assert.True(t, stored.IsActive)
}

func TestAdminDeleteProductCascades(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")
	liquids := seedCategory(t, db, "Liquids", models.SlugLiquids)
	seedProduct(t, db, "p1", liquids.ID, 25, 10, map[string]int{"Mango": 10})
	require.NoError(t, db.Create(&models.ProductImage{ProductID: "p1", Data: []byte{1}, MimeType: "image/png"}).Error)

	w := doJSON(r, http.MethodDelete, "/api/admin/products/p1", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Product{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ProductFlavor{}).Count(&count)
	assert.Zero(t, count)
	db.Model(&models.ProductImage{}).Count(&count)
	assert.Zero(t, count)

	w = doJSON(r, http.MethodDelete, "/api/admin/products/p1", nil, bearer(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminUploadProductImage(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")
	category := seedCategory(t, db, "Consumables", "consumables")
	seedProduct(t, db, "pod1", category.ID, 12, 10, nil)

	png := base64.StdEncoding.EncodeToString([]byte{0x89, 0x50, 0x4e, 0x47})

	w := doJSON(r, http.MethodPost, "/api/admin/products/pod1/image", gin.H{
		"image": "data:image/png;base64," + png,
	}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/api/products/pod1/image", decodeBody(t, w)["image_url"])

	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", "pod1").Error)
	assert.Equal(t, "/api/products/pod1/image", product.ImageURL)

	// Wrong MIME type.
	w = doJSON(r, http.MethodPost, "/api/admin/products/pod1/image", gin.H{
		"image": "data:image/svg+xml;base64," + png,
	}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Not a data URI.
	w = doJSON(r, http.MethodPost, "/api/admin/products/pod1/image", gin.H{
		"image": "https://example.com/x.png",
	}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Over the 2MB decoded cap.
	big := base64.StdEncoding.EncodeToString(make([]byte, (2<<20)+1))
	w = doJSON(r, http.MethodPost, "/api/admin/products/pod1/image", gin.H{
		"image": "data:image/png;base64," + big,
	}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminUpdateOrderStatus(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")

	user := models.User{TelegramID: "601"}
	require.NoError(t, db.Create(&user).Error)
	order := models.Order{UserID: user.ID, TotalAmount: 30, Status: models.StatusPending}
	require.NoError(t, db.Create(&order).Error)

	w := doJSON(r, http.MethodPut, "/api/admin/orders/1/status", gin.H{"status": "completed"}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, "completed", stored.Status)

	w = doJSON(r, http.MethodPut, "/api/admin/orders/999/status", gin.H{"status": "completed"}, bearer(token))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodPut, "/api/admin/orders/1/status", gin.H{}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminModerateReviewControlsVisibility(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")

	w := doJSON(r, http.MethodPost, "/api/reviews", gin.H{"rating": 5, "review_text": "great"}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	// Hidden until approved.
	w = doJSON(r, http.MethodGet, "/api/reviews", nil, nil)
	assert.EqualValues(t, 0, decodeBody(t, w)["count"])

	// Admin sees it either way.
	w = doJSON(r, http.MethodGet, "/api/admin/reviews", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])

	var review models.Review
	require.NoError(t, db.First(&review).Error)

	w = doJSON(r, http.MethodPut, "/api/admin/reviews/1", gin.H{"is_approved": true}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/api/reviews", nil, nil)
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])

	// Hide again.
	w = doJSON(r, http.MethodPut, "/api/admin/reviews/1", gin.H{"is_approved": false}, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/reviews", nil, nil)
	assert.EqualValues(t, 0, decodeBody(t, w)["count"])

	w = doJSON(r, http.MethodPut, "/api/admin/reviews/999", gin.H{"is_approved": true}, bearer(token))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminListOrdersFilter(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")

	user := models.User{TelegramID: "701"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Order{UserID: user.ID, TotalAmount: 10, Status: "pending"}).Error)
	require.NoError(t, db.Create(&models.Order{UserID: user.ID, TotalAmount: 20, Status: "completed"}).Error)

	w := doJSON(r, http.MethodGet, "/api/admin/orders", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decodeBody(t, w)["count"])

	w = doJSON(r, http.MethodGet, "/api/admin/orders?status=completed", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])
}

func TestAdminStats(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")

	liquids := seedCategory(t, db, "Liquids", models.SlugLiquids)
	seedProduct(t, db, "p1", liquids.ID, 15, 8, map[string]int{"Mango": 4, "Berry": 4})

	w := doJSON(r, http.MethodPost, "/api/orders", gin.H{
		"items":         []gin.H{{"product_id": "p1", "flavor_name": "Mango", "quantity": 2, "price": 15.0}},
		"telegram_user": tgUser("801"),
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/stats", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)

	totals := body["total"].(map[string]interface{})
	assert.EqualValues(t, 1, totals["total_orders"])
	assert.EqualValues(t, 1, totals["total_customers"])
	assert.Equal(t, 30.0, totals["total_revenue"])
	assert.Equal(t, 30.0, totals["avg_order_value"])

	topProducts := body["top_products"].([]interface{})
	require.Len(t, topProducts, 1)
	assert.Equal(t, "Product p1", topProducts[0].(map[string]interface{})["name"])
	assert.Equal(t, 30.0, topProducts[0].(map[string]interface{})["revenue"])

	// Stock dropped to 6 (Mango 2 + Berry 4), below the low-stock threshold.
	lowStock := body["low_stock"].([]interface{})
	require.Len(t, lowStock, 1)
	assert.EqualValues(t, 6, lowStock[0].(map[string]interface{})["stock"])

	lowFlavors := body["low_stock_flavors"].([]interface{})
	require.Len(t, lowFlavors, 2)
}

func TestAdminListProductsIncludesInactive(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")
	category := seedCategory(t, db, "Consumables", "consumables")
	product := seedProduct(t, db, "pod1", category.ID, 12, 0, nil)
	require.NoError(t, db.Model(&product).Update("is_active", false).Error)

	w := doJSON(r, http.MethodGet, "/api/admin/products", nil, bearer(token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])
}

func TestAdminCreateCategory(t *testing.T) {
	db, r := setupTest(t)
	seedAdmin(t, db, "boss", "hunter2")
	token := adminToken(t, r, "boss", "hunter2")

	w := doJSON(r, http.MethodPost, "/api/admin/categories", gin.H{
		"name": "Disposables",
		"slug": "disposables",
	}, bearer(token))
	require.Equal(t, http.StatusCreated, w.Code)

	var count int64
	db.Model(&models.Category{}).Count(&count)
	assert.EqualValues(t, 1, count)

	w = doJSON(r, http.MethodPost, "/api/admin/categories", gin.H{"name": "no slug"}, bearer(token))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
