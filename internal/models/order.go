package models

// Order is the admin API response for a single sales order.
// Only the fields projected into the chat summary are decoded; the
// formatter substitutes placeholders for anything the server omits.
type Order struct {
	Data OrderData `json:"data"`
}

// OrderData is the order payload itself.
type OrderData struct {
	ID                      int64       `json:"id"`
	Status                  string      `json:"status"`
	CreatedAt               string      `json:"created_at"`
	OrderCurrencyCode       string      `json:"order_currency_code"`
	FormattedSubTotal       string      `json:"formatted_sub_total"`
	FormattedShippingAmount string      `json:"formatted_shipping_amount"`
	FormattedTaxAmount      string      `json:"formatted_tax_amount"`
	FormattedDiscountAmount string      `json:"formatted_discount_amount"`
	FormattedGrandTotal     string      `json:"formatted_grand_total"`
	TotalQty                int         `json:"total_qty"`
	EmailSent               int         `json:"email_sent"`
	Items                   []OrderItem `json:"items"`
	Customer                *Customer   `json:"customer"`
}

// OrderItem is a single line item on an order.
type OrderItem struct {
	Name           string         `json:"name"`
	Additional     ItemAdditional `json:"additional"`
	FormattedPrice string         `json:"formatted_price"`
	FormattedTotal string         `json:"formatted_total"`
}

// ItemAdditional carries the nested per-item metadata.
type ItemAdditional struct {
	Quantity int `json:"quantity"`
}

// Customer is the order's customer record. The phone number is the
// OTP target; orders without it cannot be verified.
type Customer struct {
	Phone string `json:"phone"`
}

// CustomerPhone returns the customer phone number, or "" when the
// customer block or the number is missing.
func (o *Order) CustomerPhone() string {
	if o == nil || o.Data.Customer == nil {
		return ""
	}
	return o.Data.Customer.Phone
}
