package handlers

import (
	"errors"
	"log"
	"math"
	"net/http"

	"vape-shop-api/config"
	"vape-shop-api/models"
	"vape-shop-api/notify"
	"vape-shop-api/stock"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Bounds enforced before any row is written. A violation fails the whole
// request with a message naming the offending field.
const (
	maxOrderItems   = 50
	maxItemQuantity = 100
	maxItemPrice    = 10000
	maxTotalAmount  = 100000
	maxFlavorLen    = 100
	maxPhoneLen     = 20
	maxAddressLen   = 500
	maxNotesLen     = 1000
)

var errUserRequired = errors.New("user_id or telegram_user.telegram_id is required")

type OrderItemRequest struct {
	ProductID  string  `json:"product_id"`
	Quantity   int     `json:"quantity"`
	FlavorName string  `json:"flavor_name"`
	Price      float64 `json:"price"`
}

type TelegramUserPayload struct {
	TelegramID        string `json:"telegram_id"`
	TelegramUsername  string `json:"telegram_username"`
	TelegramFirstName string `json:"telegram_first_name"`
	TelegramLastName  string `json:"telegram_last_name"`
}

type PlaceOrderRequest struct {
	Items           []OrderItemRequest   `json:"items"`
	TelegramUser    *TelegramUserPayload `json:"telegram_user"`
	UserID          *uint                `json:"user_id"`
	DeliveryAddress string               `json:"delivery_address"`
	Phone           string               `json:"phone"`
	Notes           string               `json:"notes"`
	TotalAmount     *float64             `json:"total_amount"`
}

// validatePlaceOrder checks every bound before the transaction starts.
// Returns an empty string when the request is acceptable.
func validatePlaceOrder(req *PlaceOrderRequest) string {
	if len(req.Items) == 0 {
		return "Missing required field: items"
	}
	if len(req.Items) > maxOrderItems {
		return "Too many items in order"
	}
	for _, item := range req.Items {
		if item.ProductID == "" {
			return "Invalid product_id"
		}
		if item.Quantity < 1 || item.Quantity > maxItemQuantity {
			return "Invalid quantity"
		}
		if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price < 0 || item.Price > maxItemPrice {
			return "Invalid price"
		}
		if len(item.FlavorName) > maxFlavorLen {
			return "Invalid flavor_name"
		}
	}
	if req.TotalAmount != nil {
		t := *req.TotalAmount
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 || t > maxTotalAmount {
			return "Invalid total_amount"
		}
	}
	if len(req.Phone) > maxPhoneLen {
		return "Invalid phone"
	}
	if len(req.DeliveryAddress) > maxAddressLen {
		return "Invalid delivery_address"
	}
	if len(req.Notes) > maxNotesLen {
		return "Invalid notes"
	}
	return ""
}

// resolveUser finds or creates the customer row inside the order transaction.
// An explicit user_id wins; otherwise the Telegram identity is upserted.
func resolveUser(tx *gorm.DB, req *PlaceOrderRequest) (uint, error) {
	if req.UserID != nil {
		var user models.User
		if err := tx.First(&user, *req.UserID).Error; err != nil {
			return 0, err
		}
		return user.ID, nil
	}

	if req.TelegramUser == nil || req.TelegramUser.TelegramID == "" {
		return 0, errUserRequired
	}

	tg := req.TelegramUser
	var user models.User
	err := tx.Where("telegram_id = ?", tg.TelegramID).First(&user).Error
	if err == nil {
		updates := map[string]interface{}{
			"telegram_username":   tg.TelegramUsername,
			"telegram_first_name": tg.TelegramFirstName,
			"telegram_last_name":  tg.TelegramLastName,
		}
		if req.Phone != "" {
			updates["phone"] = req.Phone
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return 0, err
		}
		return user.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	user = models.User{
		TelegramID:        tg.TelegramID,
		TelegramUsername:  tg.TelegramUsername,
		TelegramFirstName: tg.TelegramFirstName,
		TelegramLastName:  tg.TelegramLastName,
		Phone:             req.Phone,
	}
	if err := tx.Create(&user).Error; err != nil {
		return 0, err
	}
	return user.ID, nil
}

// PlaceOrder creates an order atomically: user resolution, the order row,
// its line items and every stock decrement share one transaction. Any stock
// shortage rolls the whole thing back.
func PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if msg := validatePlaceOrder(&req); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	total := 0.0
	if req.TotalAmount != nil {
		total = *req.TotalAmount
	} else {
		for _, item := range req.Items {
			total += item.Price * float64(item.Quantity)
		}
	}

	var order models.Order
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		userID, err := resolveUser(tx, &req)
		if err != nil {
			return err
		}

		order = models.Order{
			UserID:          userID,
			TotalAmount:     total,
			Status:          models.StatusPending,
			DeliveryAddress: req.DeliveryAddress,
			Phone:           req.Phone,
			Notes:           req.Notes,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range req.Items {
			orderItem := models.OrderItem{
				OrderID:    order.ID,
				ProductID:  item.ProductID,
				FlavorName: item.FlavorName,
				Quantity:   item.Quantity,
				Price:      item.Price,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}

			if item.FlavorName != "" {
				if err := stock.DecrementFlavor(tx, item.ProductID, item.FlavorName, item.Quantity); err != nil {
					return err
				}
			} else {
				if err := stock.DecrementProduct(tx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})

	if err != nil {
		var stockErr *stock.InsufficientStockError
		switch {
		case errors.As(err, &stockErr):
			resp := gin.H{"error": "Insufficient stock", "product_id": stockErr.ProductID}
			if stockErr.FlavorName != "" {
				resp["flavor_name"] = stockErr.FlavorName
			}
			c.JSON(http.StatusBadRequest, resp)
		case errors.Is(err, errUserRequired):
			c.JSON(http.StatusBadRequest, gin.H{"error": errUserRequired.Error()})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		default:
			log.Println("Error creating order:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		}
		return
	}

	// Best-effort notification after commit; never fails the order.
	notifyNewOrder(&order, req.TelegramUser, req.Items)

	config.DB.Preload("Items").First(&order, order.ID)

	c.JSON(http.StatusCreated, gin.H{
		"id":           order.ID,
		"status":       order.Status,
		"total_amount": order.TotalAmount,
		"order":        order,
	})
}

func notifyNewOrder(order *models.Order, tg *TelegramUserPayload, items []OrderItemRequest) {
	lines := make([]notify.OrderLine, 0, len(items))
	for _, item := range items {
		name := item.ProductID
		var product models.Product
		if err := config.DB.Select("name").First(&product, "id = ?", item.ProductID).Error; err == nil {
			name = product.Name
		}
		lines = append(lines, notify.OrderLine{
			Name:       name,
			FlavorName: item.FlavorName,
			Quantity:   item.Quantity,
			Price:      item.Price,
		})
	}

	customer := ""
	if tg != nil {
		if tg.TelegramUsername != "" {
			customer = "@" + tg.TelegramUsername
		} else {
			customer = tg.TelegramFirstName
		}
	}

	if err := notify.Send(notify.OrderMessage(order, customer, lines)); err != nil {
		log.Println("Telegram notify error:", err)
	}
}

// GetUserOrders returns a customer's order history, newest first
func GetUserOrders(c *gin.Context) {
	telegramID := c.Param("telegramId")

	var user models.User
	if err := config.DB.Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var orders []models.Order
	config.DB.Preload("Items.Product").
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&orders)

	c.JSON(http.StatusOK, gin.H{"count": len(orders), "orders": orders})
}
