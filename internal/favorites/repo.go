package favorites

import (
	"context"

	"github.com/campuseats/campuseats-backend/internal/repo"
	"github.com/campuseats/campuseats-backend/pkg/db/models"
	"gorm.io/gorm"
)

// Repository encapsulates favorites persistence.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Exists reports whether the customer already favorited the item.
func (r *Repository) Exists(ctx context.Context, customerID, itemID int64) (bool, error) {
	var n int64
	err := r.DB(ctx).
		Model(&models.Favorite{}).
		Where("customer_id = ? AND item_id = ?", customerID, itemID).
		Count(&n).Error
	return n > 0, err
}

func (r *Repository) Create(ctx context.Context, fav *models.Favorite) error {
	return r.DB(ctx).Create(fav).Error
}

func (r *Repository) Count(ctx context.Context, customerID int64) (int64, error) {
	var n int64
	err := r.DB(ctx).Model(&models.Favorite{}).Where("customer_id = ?", customerID).Count(&n).Error
	return n, err
}

// List returns one page of the customer's favorites, newest first.
func (r *Repository) List(ctx context.Context, customerID int64, offset, limit int) ([]FavoriteDTO, error) {
	rows := make([]FavoriteDTO, 0, limit)
	err := r.DB(ctx).
		Table("favorites f").
		Select(`f.favorite_id, f.created_at, i.item_id, i.item_name, i.price, i.image_url, i.available,
       v.username AS vendor_username, v.stall_name`).
		Joins("JOIN items i ON i.item_id = f.item_id").
		Joins("JOIN vendors v ON v.vendor_id = f.vendor_id").
		Where("f.customer_id = ?", customerID).
		Order("f.created_at DESC").
		Order("f.favorite_id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
