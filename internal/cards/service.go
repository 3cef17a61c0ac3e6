package cards

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/watchworks/storefront/internal/domain"
)

// expiryYearWindow is how far in the future an expiry year may lie.
const expiryYearWindow = 50

// Service validates card submissions and scopes every operation to the
// owning user.
type Service struct {
	repo Repository

	// now is swappable so expiry-window tests are not tied to the wall clock.
	now func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) ListForUser(ctx context.Context, username string) ([]Card, error) {
	return s.repo.ListForUser(ctx, username)
}

// Add validates and saves a card for the user. The number keeps only its
// digits; a duplicate (user, number) pair is a conflict.
func (s *Service) Add(ctx context.Context, username string, nc NewCard) (*Card, error) {
	number := strings.ReplaceAll(nc.CardNumber, " ", "")
	if !digitsOnly(number) || len(number) < 13 || len(number) > 19 {
		return nil, fmt.Errorf("%w: card number must be 13-19 digits", domain.ErrInvalidArgument)
	}
	if strings.TrimSpace(nc.CardholderName) == "" {
		return nil, fmt.Errorf("%w: cardholder name is required", domain.ErrInvalidArgument)
	}
	if nc.ExpiryMonth < 1 || nc.ExpiryMonth > 12 {
		return nil, fmt.Errorf("%w: expiry month must be between 1 and 12", domain.ErrInvalidArgument)
	}
	year := s.now().Year()
	if nc.ExpiryYear < year || nc.ExpiryYear > year+expiryYearWindow {
		return nil, fmt.Errorf("%w: expiry year must be between %d and %d", domain.ErrInvalidArgument, year, year+expiryYearWindow)
	}
	if len(nc.CVV) < 3 || len(nc.CVV) > 4 || !digitsOnly(nc.CVV) {
		return nil, fmt.Errorf("%w: CVV must be 3 or 4 digits", domain.ErrInvalidArgument)
	}

	card := &Card{
		ID:             uuid.NewString(),
		Username:       username,
		CardNumber:     number,
		CardholderName: nc.CardholderName,
		ExpiryMonth:    nc.ExpiryMonth,
		ExpiryYear:     nc.ExpiryYear,
		CVV:            nc.CVV,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.repo.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

// Delete removes the user's card. A card owned by someone else is
// indistinguishable from a missing one: both report not found.
func (s *Service) Delete(ctx context.Context, username, id string) error {
	return s.repo.Delete(ctx, username, id)
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
