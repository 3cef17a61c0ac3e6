package cart

import (
	"context"
	"fmt"

	"github.com/watchworks/storefront/internal/domain"
)

// Service validates cart inputs before handing them to the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Items(ctx context.Context, username string) ([]Item, error) {
	return s.repo.Items(ctx, username)
}

// Add merges quantity into the user's cart line for productID, creating the
// line on first add. quantity <= 0 means "not supplied" upstream, so the
// handler passes 1; anything still non-positive here is a caller error.
func (s *Service) Add(ctx context.Context, username string, productID int64, quantity int) (*Line, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product ID is required", domain.ErrInvalidArgument)
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be a positive integer", domain.ErrInvalidArgument)
	}
	return s.repo.Add(ctx, username, productID, quantity)
}

func (s *Service) Increase(ctx context.Context, username string, productID int64) (*Line, error) {
	return s.repo.Increase(ctx, username, productID)
}

func (s *Service) Decrease(ctx context.Context, username string, productID int64) (*Line, error) {
	return s.repo.Decrease(ctx, username, productID)
}

func (s *Service) Remove(ctx context.Context, username string, productID int64) error {
	return s.repo.Remove(ctx, username, productID)
}

func (s *Service) Clear(ctx context.Context, username string) error {
	return s.repo.Clear(ctx, username)
}
