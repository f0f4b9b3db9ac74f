package catalog

import (
	"context"
	"strings"

	"github.com/campuseats/campuseats-backend/internal/repo"
	"gorm.io/gorm"
)

// Repository reads the item and vendor catalog.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) itemsQuery(ctx context.Context) *gorm.DB {
	return r.DB(ctx).
		Table("items i").
		Select(`i.item_id, i.item_name, i.description, i.price, i.category, i.image_url, i.available,
       v.username AS vendor_username, v.stall_name`).
		Joins("JOIN vendors v ON v.vendor_id = i.vendor_id")
}

// ListItems returns items ordered by vendor then name. A non-empty vendor
// restricts the list to that vendor's username, case-insensitively.
func (r *Repository) ListItems(ctx context.Context, vendor string, limit int) ([]ItemDTO, error) {
	q := r.itemsQuery(ctx)
	if vendor = strings.TrimSpace(vendor); vendor != "" {
		q = q.Where("LOWER(v.username) = LOWER(?)", vendor)
	}
	rows := make([]ItemDTO, 0)
	err := q.Order("v.username ASC").Order("i.item_name ASC").Order("i.item_id ASC").Limit(limit).Scan(&rows).Error
	return rows, err
}

func (r *Repository) ListVendors(ctx context.Context) ([]VendorDTO, error) {
	rows := make([]VendorDTO, 0)
	err := r.DB(ctx).
		Table("vendors").
		Select("vendor_id, username, stall_name, location, image_url, is_open").
		Order("stall_name ASC").
		Order("vendor_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) SearchItems(ctx context.Context, term string, limit int) ([]ItemDTO, error) {
	pattern := likePattern(term)
	rows := make([]ItemDTO, 0)
	err := r.itemsQuery(ctx).
		Where("LOWER(i.item_name) LIKE ? ESCAPE '\\' OR LOWER(i.category) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("i.item_name ASC").
		Order("i.item_id ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *Repository) SearchVendors(ctx context.Context, term string, limit int) ([]VendorDTO, error) {
	pattern := likePattern(term)
	rows := make([]VendorDTO, 0)
	err := r.DB(ctx).
		Table("vendors").
		Select("vendor_id, username, stall_name, location, image_url, is_open").
		Where("LOWER(stall_name) LIKE ? ESCAPE '\\' OR LOWER(username) LIKE ? ESCAPE '\\'", pattern, pattern).
		Order("stall_name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(term))) + "%"
}
