package httpx

import (
	"github.com/shopspring/decimal"
)

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id"`
	// Quantity is optional; nil means 1.
	Quantity *int `json:"quantity"`
}

type AddCardRequest struct {
	CardNumber     string `json:"card_number"`
	CardholderName string `json:"cardholder_name"`
	ExpiryMonth    int    `json:"expiry_month"`
	ExpiryYear     int    `json:"expiry_year"`
	CVV            string `json:"cvv"`
}

type CheckoutRequest struct {
	CardID   string            `json:"card_id"`
	Items    []CheckoutItemDTO `json:"items"`
	Subtotal decimal.Decimal   `json:"subtotal"`
	Tax      decimal.Decimal   `json:"tax"`
	Shipping decimal.Decimal   `json:"shipping"`
	Total    decimal.Decimal   `json:"total"`
}

type CheckoutItemDTO struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type CheckoutResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id"`
	Message string `json:"message"`
}

type WatchRequest struct {
	Brand        string          `json:"brand"`
	Model        string          `json:"model"`
	Price        decimal.Decimal `json:"price"`
	Description  string          `json:"description"`
	ImageURL     string          `json:"image_url"`
	Discontinued bool            `json:"discontinued"`
}

type DiscontinueRequest struct {
	Discontinued bool `json:"discontinued"`
}

type UpdateImageRequest struct {
	ImageURL string `json:"imageUrl"`
}

type ChatRequest struct {
	Message string `json:"message"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type UploadResponse struct {
	URL string `json:"url"`
}

// RemovedResponse signals a cart line deleted by a decrease that reached zero.
type RemovedResponse struct {
	Message  string `json:"message"`
	Quantity int    `json:"quantity"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
