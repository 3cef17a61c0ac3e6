package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/watchworks/storefront/internal/domain"
	"github.com/watchworks/storefront/internal/pkg/cache"
)

// listCacheTTL bounds the staleness of the public listing between admin
// writes and their invalidation.
const listCacheTTL = 5 * time.Minute

// Service wraps the repository with input validation and a read-through
// cache on the public listing.
type Service struct {
	repo  Repository
	cache cache.Cache // nil-safe: caching skipped if nil
}

func NewService(repo Repository, c cache.Cache) *Service {
	return &Service{repo: repo, cache: c}
}

// List returns the watches shown to customers, excluding discontinued ones.
func (s *Service) List(ctx context.Context) ([]Watch, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, s.listKey()); err == nil && cached != "" {
			var watches []Watch
			if err := json.Unmarshal([]byte(cached), &watches); err == nil {
				return watches, nil
			}
			// A corrupt entry is dropped and the listing rebuilt from the store.
			_ = s.cache.Delete(ctx, s.listKey())
		}
	}

	watches, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(watches); err == nil {
			if err := s.cache.Set(ctx, s.listKey(), string(encoded), listCacheTTL); err != nil {
				slog.WarnContext(ctx, "catalog cache set failed", "error", err)
			}
		}
	}
	return watches, nil
}

// Get returns one watch, discontinued or not, so product pages linked from
// old orders keep working.
func (s *Service) Get(ctx context.Context, id int64) (*Watch, error) {
	return s.repo.Get(ctx, id)
}

// ListAll is the admin listing: every watch including discontinued ones.
func (s *Service) ListAll(ctx context.Context) ([]Watch, error) {
	return s.repo.List(ctx, true)
}

func (s *Service) Create(ctx context.Context, nw NewWatch) (*Watch, error) {
	if err := validateWatch(nw); err != nil {
		return nil, err
	}

	w, err := s.repo.Create(ctx, nw)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return w, nil
}

func (s *Service) Update(ctx context.Context, id int64, nw NewWatch, discontinued bool) (*Watch, error) {
	if err := validateWatch(nw); err != nil {
		return nil, err
	}

	w, err := s.repo.Update(ctx, id, nw, discontinued)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return w, nil
}

func (s *Service) SetDiscontinued(ctx context.Context, id int64, discontinued bool) (*Watch, error) {
	w, err := s.repo.SetDiscontinued(ctx, id, discontinued)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return w, nil
}

func (s *Service) UpdateImage(ctx context.Context, id int64, imageURL string) (*Watch, error) {
	if strings.TrimSpace(imageURL) == "" {
		return nil, fmt.Errorf("%w: image URL is required", domain.ErrInvalidArgument)
	}

	w, err := s.repo.SetImageURL(ctx, id, imageURL)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return w, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func validateWatch(nw NewWatch) error {
	if strings.TrimSpace(nw.Brand) == "" || strings.TrimSpace(nw.Model) == "" {
		return fmt.Errorf("%w: brand and model are required", domain.ErrInvalidArgument)
	}
	if nw.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domain.ErrInvalidArgument)
	}
	return nil
}

func (s *Service) listKey() string {
	return s.cache.GenerateKey("watches", "list")
}

// invalidate drops the cached public listing after any admin write.
// A failed delete only extends staleness until the TTL expires.
func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, s.listKey()); err != nil {
		slog.WarnContext(ctx, "catalog cache invalidation failed", "error", err)
	}
}
