package favorites

import (
	"context"
	"fmt"

	"github.com/campuseats/campuseats-backend/internal/resolver"
	"github.com/campuseats/campuseats-backend/pkg/db"
	"github.com/campuseats/campuseats-backend/pkg/db/models"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/pagination"
)

// AlreadyFavorited is the message returned for a duplicate favorite.
const AlreadyFavorited = "already favorited"

// ServiceParams groups dependencies for the favorites service.
type ServiceParams struct {
	Repo     *Repository
	Resolver *resolver.Resolver
}

// Service exposes business rules for favorites.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Favorite, error)
	List(ctx context.Context, username string, page int) (PageDTO, error)
}

type service struct {
	repo     *Repository
	resolver *resolver.Resolver
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("favorites repo required")
	}
	if params.Resolver == nil {
		return nil, fmt.Errorf("resolver required")
	}
	return &service{repo: params.Repo, resolver: params.Resolver}, nil
}

// Create favorites an item for a customer. A duplicate is reported as a
// conflict whether the existence check or the unique index catches it.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Favorite, error) {
	lookups := s.resolver.Session()
	customer, err := lookups.Customer(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	item, err := lookups.Item(ctx, input.ItemName, input.VendorUsername)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, customer.ID, item.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check favorite")
	}
	if exists {
		return nil, alreadyFavorited(item.ID)
	}

	fav := &models.Favorite{
		CustomerID: customer.ID,
		VendorID:   item.VendorID,
		ItemID:     item.ID,
	}
	if err := s.repo.Create(ctx, fav); err != nil {
		if isDuplicate(err) {
			return nil, alreadyFavorited(item.ID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create favorite")
	}
	return fav, nil
}

func (s *service) List(ctx context.Context, username string, page int) (PageDTO, error) {
	if page < 1 {
		return PageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "page must be at least 1").
			WithDetails(map[string]any{"field": "page"})
	}
	customer, err := s.resolver.Customer(ctx, username)
	if err != nil {
		return PageDTO{}, err
	}
	total, err := s.repo.Count(ctx, customer.ID)
	if err != nil {
		return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count favorites")
	}
	size := pagination.FavoritesPageSize
	rows, err := s.repo.List(ctx, customer.ID, pagination.Offset(page, size), size)
	if err != nil {
		return PageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list favorites")
	}
	return PageDTO{
		Favorites:  rows,
		Pagination: pagination.NewPage(page, size, total),
	}, nil
}

// isDuplicate matches the unique index by constraint name on postgres and by
// column list on sqlite.
func isDuplicate(err error) bool {
	return db.IsUniqueViolation(err, "favorites_customer_item_key") ||
		db.IsUniqueViolation(err, "favorites.customer_id, favorites.item_id")
}

func alreadyFavorited(itemID int64) error {
	return pkgerrors.New(pkgerrors.CodeConflict, AlreadyFavorited).
		WithDetails(map[string]any{"item_id": itemID})
}
