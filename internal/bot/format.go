package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wyzo-ops/orderbot-backend/internal/models"
)

// MarkdownV2 requires these characters escaped in all rendered text,
// including untrusted order content such as item names.
const markdownSpecials = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdown backslash-escapes MarkdownV2 special characters.
func EscapeMarkdown(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r < 128 && strings.ContainsRune(markdownSpecials, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// FormatOrderDetails renders the order summary. Missing fields render
// as placeholders, and any panic while formatting is converted into an
// error string so a malformed payload never breaks the conversation.
func FormatOrderDetails(order *models.Order) (out string) {
	orderRef := "N/A"
	if order != nil && order.Data.ID != 0 {
		orderRef = strconv.FormatInt(order.Data.ID, 10)
	}

	defer func() {
		if r := recover(); r != nil {
			out = fmt.Sprintf("Failed to format order %s: %v", orderRef, r)
		}
	}()

	data := order.Data

	var items strings.Builder
	for _, item := range data.Items {
		items.WriteString(fmt.Sprintf(
			"\n  • %s\n    Quantity: %s\n    Price: %s\n    Total: %s",
			EscapeMarkdown(orDefault(item.Name, "Unknown Item")),
			EscapeMarkdown(strconv.Itoa(item.Additional.Quantity)),
			EscapeMarkdown(orDefault(item.FormattedPrice, "N/A")),
			EscapeMarkdown(orDefault(item.FormattedTotal, "N/A")),
		))
	}

	emailSent := "No"
	if data.EmailSent == 1 {
		emailSent = "Yes"
	}

	return fmt.Sprintf(
		"📦 *Order \\#%s*\n\n"+
			"*Status:* `%s`\n"+
			"*Date:* `%s`\n"+
			"*Currency:* %s\n\n"+
			"💰 *Order Summary*\n"+
			"Subtotal: `%s`\n"+
			"Shipping: `%s`\n"+
			"Tax: `%s`\n"+
			"Discount: `%s`\n"+
			"*Total: `%s`*\n\n"+
			"🛍️ *Items:*%s\n\n"+
			"📊 *Additional Info*\n"+
			"Total Items: %s\n"+
			"Email Sent: %s",
		EscapeMarkdown(orderRef),
		EscapeMarkdown(orDefault(data.Status, "Unknown")),
		EscapeMarkdown(orDefault(data.CreatedAt, "N/A")),
		EscapeMarkdown(orDefault(data.OrderCurrencyCode, "N/A")),
		EscapeMarkdown(orDefault(data.FormattedSubTotal, "0.00")),
		EscapeMarkdown(orDefault(data.FormattedShippingAmount, "0.00")),
		EscapeMarkdown(orDefault(data.FormattedTaxAmount, "0.00")),
		EscapeMarkdown(orDefault(data.FormattedDiscountAmount, "0.00")),
		EscapeMarkdown(orDefault(data.FormattedGrandTotal, "0.00")),
		items.String(),
		EscapeMarkdown(strconv.Itoa(data.TotalQty)),
		emailSent,
	)
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
