package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/logger"
	"github.com/campuseats/campuseats-backend/pkg/pagination"
	"github.com/campuseats/campuseats-backend/pkg/redis"
)

const (
	defaultVendorCacheTTL = time.Minute
	minSearchLength       = 2
)

// Cache is the slice of the Redis client the catalog caches through.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

type ServiceParams struct {
	Repo           *Repository
	Cache          Cache
	Logger         *logger.Logger
	VendorCacheTTL time.Duration
}

// Service serves the read-only catalog endpoints.
type Service interface {
	Items(ctx context.Context, vendor string, limit int) ([]ItemDTO, error)
	Vendors(ctx context.Context) ([]VendorDTO, error)
	Search(ctx context.Context, term string, limit int) (SearchResult, error)
}

type service struct {
	repo  *Repository
	cache Cache
	logg  *logger.Logger
	ttl   time.Duration
}

func NewService(p ServiceParams) (Service, error) {
	if p.Repo == nil {
		return nil, fmt.Errorf("catalog repo required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.VendorCacheTTL <= 0 {
		p.VendorCacheTTL = defaultVendorCacheTTL
	}
	return &service{repo: p.Repo, cache: p.Cache, logg: p.Logger, ttl: p.VendorCacheTTL}, nil
}

func (s *service) Items(ctx context.Context, vendor string, limit int) ([]ItemDTO, error) {
	rows, err := s.repo.ListItems(ctx, vendor, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}
	return rows, nil
}

// Vendors reads through the cache. Cache failures fall back to the database.
func (s *service) Vendors(ctx context.Context) ([]VendorDTO, error) {
	if s.cache == nil {
		return s.loadVendors(ctx)
	}
	key := s.cache.CacheKey("vendors", "all")
	raw, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		var cached []VendorDTO
		if jsonErr := json.Unmarshal([]byte(raw), &cached); jsonErr == nil {
			return cached, nil
		}
		s.logg.Warn(ctx, "discarding undecodable vendor cache entry")
	case !errors.Is(err, redis.Nil):
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "vendor cache read failed")
	}

	vendors, err := s.loadVendors(ctx)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(vendors)
	if err == nil {
		err = s.cache.Set(ctx, key, string(payload), s.ttl)
	}
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "vendor cache write failed")
	}
	return vendors, nil
}

func (s *service) loadVendors(ctx context.Context) ([]VendorDTO, error) {
	rows, err := s.repo.ListVendors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}
	return rows, nil
}

func (s *service) Search(ctx context.Context, term string, limit int) (SearchResult, error) {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSearchLength {
		return SearchResult{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("search term must be at least %d characters", minSearchLength)).
			WithDetails(map[string]any{"field": "q"})
	}
	limit = pagination.NormalizeLimit(limit)
	items, err := s.repo.SearchItems(ctx, term, limit)
	if err != nil {
		return SearchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search items")
	}
	vendors, err := s.repo.SearchVendors(ctx, term, limit)
	if err != nil {
		return SearchResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "search vendors")
	}
	return SearchResult{Items: items, Vendors: vendors}, nil
}
