package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"vape-shop-api/config"
	"vape-shop-api/models"
	"vape-shop-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTest wires a fresh in-memory database into config.DB and returns a
// router with the full route table.
func setupTest(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.ProductFlavor{},
		&models.ProductImage{},
		&models.Order{},
		&models.OrderItem{},
		&models.Review{},
		&models.Admin{},
	))
	config.DB = db

	r := gin.New()
	routes.SetupRoutes(r)
	return db, r
}

func doJSON(r *gin.Engine, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonDecode(req *http.Request, v interface{}) error {
	return json.NewDecoder(req.Body).Decode(v)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func seedCategory(t *testing.T, db *gorm.DB, name, slug string) models.Category {
	t.Helper()
	category := models.Category{Name: name, Slug: slug}
	require.NoError(t, db.Create(&category).Error)
	return category
}

func seedProduct(t *testing.T, db *gorm.DB, id string, categoryID uint, price float64, stock int, flavors map[string]int) models.Product {
	t.Helper()
	product := models.Product{
		ID:         id,
		Name:       "Product " + id,
		Price:      price,
		CategoryID: categoryID,
		Stock:      stock,
		IsActive:   true,
	}
	require.NoError(t, db.Create(&product).Error)
	for name, s := range flavors {
		require.NoError(t, db.Create(&models.ProductFlavor{ProductID: id, FlavorName: name, Stock: s}).Error)
	}
	return product
}

func seedAdmin(t *testing.T, db *gorm.DB, username, password string) models.Admin {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	admin := models.Admin{Username: username, PasswordHash: string(hash)}
	require.NoError(t, db.Create(&admin).Error)
	return admin
}

func adminToken(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/admin/login", gin.H{"username": username, "password": password}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	token, ok := body["token"].(string)
	require.True(t, ok)
	return token
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}
