// Package notify posts human-readable order summaries to a Telegram chat.
// Delivery is fire-and-forget: no retries, no confirmation tracking, and a
// missing bot token or chat id turns every call into a silent no-op.
package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vape-shop-api/config"
	"vape-shop-api/models"
)

// APIBase is a variable so tests can point the notifier at a local server.
var APIBase = "https://api.telegram.org"

var client = &http.Client{Timeout: 5 * time.Second}

// OrderLine is one item of the order summary, with the product's display
// name already resolved.
type OrderLine struct {
	Name       string
	FlavorName string
	Quantity   int
	Price      float64
}

// OrderMessage renders the fixed notification template for a new order.
func OrderMessage(order *models.Order, customer string, lines []OrderLine) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔔 <b>NEW ORDER #%d</b>\n\n", order.ID)
	fmt.Fprintf(&b, "📅 <b>Date:</b> %s\n", order.CreatedAt.Format("02.01.2006 15:04"))
	fmt.Fprintf(&b, "🛍️ <b>Items:</b> %d\n", len(lines))
	if customer == "" {
		customer = "not provided"
	}
	fmt.Fprintf(&b, "👤 <b>Customer:</b> %s\n", customer)
	if order.Phone != "" {
		fmt.Fprintf(&b, "📞 <b>Phone:</b> %s\n", order.Phone)
	}
	if order.DeliveryAddress != "" {
		fmt.Fprintf(&b, "🏠 <b>Address:</b> %s\n", order.DeliveryAddress)
	}
	if order.Notes != "" {
		fmt.Fprintf(&b, "📝 <b>Notes:</b> %s\n", order.Notes)
	}

	b.WriteString("\n📦 <b>Order contents:</b>\n")
	for i, line := range lines {
		fmt.Fprintf(&b, "%d. %s x%d = %.2f BYN\n", i+1, line.Name, line.Quantity, line.Price*float64(line.Quantity))
		if line.FlavorName != "" {
			fmt.Fprintf(&b, "   🍃 <b>Flavor:</b> %s\n", line.FlavorName)
		}
	}

	fmt.Fprintf(&b, "\n💳 <b>Total due:</b> %.2f BYN", order.TotalAmount)
	return b.String()
}

// Send posts a message to the configured chat. Returns nil without doing
// anything when the notifier is not configured.
func Send(text string) error {
	token := config.TelegramBotToken
	chatID := config.TelegramChatID
	if token == "" || chatID == "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", APIBase, token)
	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}
	return nil
}
