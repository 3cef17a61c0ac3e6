// Package cards manages a user's saved payment cards.
//
// Card numbers are stored verbatim and validated only by shape; nothing in
// this package talks to a payment gateway. The CVV is persisted but carries
// `json:"-"`, so it can never appear in a response body.
package cards

import (
	"context"
	"time"
)

// Card is one saved payment method, owned by exactly one user.
type Card struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	CardNumber     string    `json:"card_number"`
	CardholderName string    `json:"cardholder_name"`
	ExpiryMonth    int       `json:"expiry_month"`
	ExpiryYear     int       `json:"expiry_year"`
	CVV            string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewCard carries the fields submitted when saving a card.
type NewCard struct {
	CardNumber     string
	CardholderName string
	ExpiryMonth    int
	ExpiryYear     int
	CVV            string
}

// Repository is the port for card persistence.
type Repository interface {
	ListForUser(ctx context.Context, username string) ([]Card, error)
	Create(ctx context.Context, card *Card) error
	// Delete removes the card only when it belongs to username;
	// domain.ErrNotFound otherwise.
	Delete(ctx context.Context, username, id string) error
	// Exists reports whether the user already saved this card number.
	Exists(ctx context.Context, username, cardNumber string) (bool, error)
}
