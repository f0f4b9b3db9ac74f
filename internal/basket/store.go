// Package basket holds the client-side shopping basket for one session.
package basket

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
)

// maxIDAttempts bounds regeneration when an injected generator repeats itself.
const maxIDAttempts = 8

// Line is one logical selection of an item at a vendor.
type Line struct {
	BasketID       string          `json:"basketId"`
	ItemName       string          `json:"itemName"`
	VendorUsername string          `json:"vendorUsername"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	Quantity       int             `json:"quantity"`
	ImageRef       string          `json:"imageRef,omitempty"`
}

func (l Line) Price() decimal.Decimal { return l.UnitPrice }
func (l Line) Qty() int               { return l.Quantity }

// sameKey reports whether two selections must share one line.
func sameKey(l Line, itemName, vendorUsername string, unitPrice decimal.Decimal) bool {
	return l.ItemName == itemName && l.VendorUsername == vendorUsername && l.UnitPrice.Equal(unitPrice)
}

// AddInput is the payload of an "add to basket" action.
type AddInput struct {
	ItemName       string
	VendorUsername string
	UnitPrice      decimal.Decimal
	Quantity       int
	ImageRef       string
}

// Store is an ordered, mutex guarded collection of basket lines. Each session
// owns its own Store.
type Store struct {
	mu      sync.RWMutex
	lines   []Line
	version uint64
	newID   func() string
}

type Option func(*Store)

// WithIDGenerator overrides uuid based basket ids.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add merges the selection into an existing line with the same item name,
// unit price and vendor, or appends a new line. Invalid input leaves the
// basket untouched.
func (s *Store) Add(in AddInput) (Line, error) {
	in.ItemName = strings.TrimSpace(in.ItemName)
	in.VendorUsername = strings.TrimSpace(in.VendorUsername)
	if err := validateAdd(in); err != nil {
		return Line{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.lines {
		if sameKey(s.lines[i], in.ItemName, in.VendorUsername, in.UnitPrice) {
			s.lines[i].Quantity += in.Quantity
			s.version++
			return s.lines[i], nil
		}
	}

	id, err := s.uniqueIDLocked()
	if err != nil {
		return Line{}, err
	}
	line := Line{
		BasketID:       id,
		ItemName:       in.ItemName,
		VendorUsername: in.VendorUsername,
		UnitPrice:      in.UnitPrice,
		Quantity:       in.Quantity,
		ImageRef:       in.ImageRef,
	}
	s.lines = append(s.lines, line)
	s.version++
	return line, nil
}

func (s *Store) uniqueIDLocked() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.newID()
		if id != "" && s.indexLocked(id) < 0 {
			return id, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a unique basket id")
}

func (s *Store) indexLocked(basketID string) int {
	for i := range s.lines {
		if s.lines[i].BasketID == basketID {
			return i
		}
	}
	return -1
}

// Remove deletes the line with the given id. Unknown ids are ignored.
func (s *Store) Remove(basketID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(basketID)
	if idx < 0 {
		return false
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	s.version++
	return true
}

// Deduct takes the quantities of submitted lines back out of the basket.
// A line keeps whatever was added to it after the snapshot and is removed
// only once nothing is left. Ids no longer present are ignored.
func (s *Store) Deduct(submitted []Line) {
	if len(submitted) == 0 {
		return
	}
	taken := make(map[string]int, len(submitted))
	for _, l := range submitted {
		taken[l.BasketID] += l.Quantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	kept := s.lines[:0]
	for _, l := range s.lines {
		if n, ok := taken[l.BasketID]; ok {
			changed = true
			if l.Quantity -= n; l.Quantity <= 0 {
				continue
			}
		}
		kept = append(kept, l)
	}
	if changed {
		clear(s.lines[len(kept):])
		s.lines = kept
		s.version++
	}
}

// UpdateQuantity sets the quantity of a line. Positivity is the caller's
// responsibility; see ValidateQuantity.
func (s *Store) UpdateQuantity(basketID string, quantity int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(basketID)
	if idx < 0 {
		return false
	}
	s.lines[idx].Quantity = quantity
	s.version++
	return true
}

// Clear empties the basket.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = nil
	s.version++
}

// ClearIfVersion empties the basket only if nothing changed since version.
func (s *Store) ClearIfVersion(version uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version {
		return false
	}
	s.lines = nil
	s.version++
	return true
}

// Lines returns a copy of the current lines in insertion order.
func (s *Store) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Snapshot is a point-in-time copy of the basket.
type Snapshot struct {
	Lines   []Line
	Version uint64
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return Snapshot{Lines: out, Version: s.version}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.lines)
}

// Version increases on every mutation.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Total is the presentation total of the current lines.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Total(s.lines)
}
