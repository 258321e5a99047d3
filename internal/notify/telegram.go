package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/bazaar/internal/models"
)

const telegramAPI = "https://api.telegram.org"

// TelegramService sends admin notifications through a Telegram bot.
type TelegramService struct {
	botToken    string
	adminChatID string
	baseURL     string
	client      *http.Client
}

func NewTelegramService(botToken, adminChatID string) *TelegramService {
	return &TelegramService{
		botToken:    botToken,
		adminChatID: adminChatID,
		baseURL:     telegramAPI,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type telegramMessage struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// SendMessage posts an HTML message to chatID. An unconfigured bot is a no-op.
func (s *TelegramService) SendMessage(ctx context.Context, chatID, text string) error {
	if s.botToken == "" {
		log.Println("[Telegram] Bot token not configured")
		return nil
	}

	body, err := json.Marshal(telegramMessage{ChatID: chatID, Text: text, ParseMode: "HTML"})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram returned status %d", resp.StatusCode)
	}
	return nil
}

func (s *TelegramService) SendToAdmin(ctx context.Context, text string) error {
	if s.adminChatID == "" {
		log.Println("[Telegram] Admin chat ID not configured")
		return nil
	}
	return s.SendMessage(ctx, s.adminChatID, text)
}

// OrderPlaced tells the admin chat about a new order.
func (s *TelegramService) OrderPlaced(ctx context.Context, order *models.Order) error {
	return s.SendToAdmin(ctx, FormatOrder(order))
}

// FormatOrder renders an order as a Telegram HTML message.
func FormatOrder(order *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>New order</b> %s\n", order.ID)
	fmt.Fprintf(&b, "<b>Placed:</b> %s\n\n", order.PlacedAt.Format("2006-01-02 15:04"))
	for i, item := range order.Items {
		fmt.Fprintf(&b, "%d. <b>%s</b>\n   %d x %s = %s\n",
			i+1,
			html.EscapeString(item.Title),
			item.Quantity,
			FormatPrice(item.UnitPrice),
			FormatPrice(item.LineTotal),
		)
	}
	fmt.Fprintf(&b, "\n<b>Total:</b> %s", FormatPrice(order.Subtotal))
	return b.String()
}

// FormatPrice renders an amount with thousands separators and two decimals.
func FormatPrice(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, digit := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	return sign + b.String() + "." + frac
}
