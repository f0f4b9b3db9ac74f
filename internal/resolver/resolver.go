package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/campuseats/campuseats-backend/pkg/db/models"
	"github.com/campuseats/campuseats-backend/pkg/enums"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"

	"gorm.io/gorm"
)

const (
	OutcomeHit       = "hit"
	OutcomeNotFound  = "not_found"
	OutcomeAmbiguous = "ambiguous"
	OutcomeError     = "error"
)

// lookupLimit is enough to tell "one" from "more than one".
const lookupLimit = 2

// Recorder receives lookup outcomes. *metrics.OrderMetrics satisfies it.
type Recorder interface {
	ObserveResolution(kind, outcome string)
}

type noopRecorder struct{}

func (noopRecorder) ObserveResolution(string, string) {}

// Resolver maps human-readable references to catalog rows. It never writes.
type Resolver struct {
	db       *gorm.DB
	recorder Recorder
}

type Option func(*Resolver)

// WithRecorder attaches a lookup outcome recorder.
func WithRecorder(rec Recorder) Option {
	return func(r *Resolver) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

// New builds a resolver over db.
func New(db *gorm.DB, opts ...Option) (*Resolver, error) {
	if db == nil {
		return nil, fmt.Errorf("db required")
	}
	r := &Resolver{db: db, recorder: noopRecorder{}}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Customer resolves a customer by username.
func (r *Resolver) Customer(ctx context.Context, username string) (*models.Customer, error) {
	key := strings.TrimSpace(username)
	if key == "" {
		return nil, emptyKey(enums.EntityKindCustomer)
	}
	var rows []models.Customer
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", key).
		Order("customer_id").
		Limit(lookupLimit).
		Find(&rows).Error
	return pickOne(r.recorder, enums.EntityKindCustomer, key, rows, err)
}

// Vendor resolves a vendor by username.
func (r *Resolver) Vendor(ctx context.Context, username string) (*models.Vendor, error) {
	key := strings.TrimSpace(username)
	if key == "" {
		return nil, emptyKey(enums.EntityKindVendor)
	}
	var rows []models.Vendor
	err := r.db.WithContext(ctx).
		Where("LOWER(username) = LOWER(?)", key).
		Order("vendor_id").
		Limit(lookupLimit).
		Find(&rows).Error
	return pickOne(r.recorder, enums.EntityKindVendor, key, rows, err)
}

// Item resolves an item by name within the vendor named vendorUsername.
func (r *Resolver) Item(ctx context.Context, itemName, vendorUsername string) (*models.Item, error) {
	name := strings.TrimSpace(itemName)
	vendor := strings.TrimSpace(vendorUsername)
	if name == "" {
		return nil, emptyKey(enums.EntityKindItem)
	}
	if vendor == "" {
		return nil, emptyKey(enums.EntityKindVendor)
	}
	var rows []models.Item
	err := r.db.WithContext(ctx).
		Select("items.*").
		Joins("JOIN vendors ON vendors.vendor_id = items.vendor_id").
		Where("LOWER(items.item_name) = LOWER(?) AND LOWER(vendors.username) = LOWER(?)", name, vendor).
		Order("items.item_id").
		Limit(lookupLimit).
		Find(&rows).Error
	return pickOne(r.recorder, enums.EntityKindItem, itemKey(name, vendor), rows, err)
}

func pickOne[T any](rec Recorder, kind enums.EntityKind, key string, rows []T, err error) (*T, error) {
	switch {
	case err != nil:
		rec.ObserveResolution(kind.String(), OutcomeError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("resolve %s", kind))
	case len(rows) == 0:
		rec.ObserveResolution(kind.String(), OutcomeNotFound)
		return nil, NotFound(kind, key)
	case len(rows) > 1:
		rec.ObserveResolution(kind.String(), OutcomeAmbiguous)
		return nil, Ambiguous(kind, key)
	}
	rec.ObserveResolution(kind.String(), OutcomeHit)
	return &rows[0], nil
}

// NotFound builds the error returned when a reference matches no row.
func NotFound(kind enums.EntityKind, key string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("%s %q not found", kind, key)).
		WithDetails(map[string]any{
			"entity_kind": kind.String(),
			"key":         key,
		})
}

// Ambiguous builds the error returned when a reference matches several rows.
func Ambiguous(kind enums.EntityKind, key string) error {
	return pkgerrors.New(pkgerrors.CodeAmbiguousReference, fmt.Sprintf("%s %q matches more than one record", kind, key)).
		WithDetails(map[string]any{
			"entity_kind": kind.String(),
			"key":         key,
			"matches":     lookupLimit,
		})
}

func emptyKey(kind enums.EntityKind) error {
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%s reference is required", kind)).
		WithDetails(map[string]any{"field": kind.String()})
}

func itemKey(name, vendor string) string {
	return name + "@" + vendor
}
