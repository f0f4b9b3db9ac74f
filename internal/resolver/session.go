package resolver

import (
	"context"
	"strings"
	"sync"

	"github.com/campuseats/campuseats-backend/pkg/db/models"
)

// Session memoizes lookups for the lifetime of one request. Concurrent calls
// for the same key share a single query.
type Session struct {
	r         *Resolver
	customers memo[*models.Customer]
	vendors   memo[*models.Vendor]
	items     memo[*models.Item]
}

// Session starts a request-scoped memo over r.
func (r *Resolver) Session() *Session {
	return &Session{r: r}
}

func (s *Session) Customer(ctx context.Context, username string) (*models.Customer, error) {
	return s.customers.get(normalize(username), func() (*models.Customer, error) {
		return s.r.Customer(ctx, username)
	})
}

func (s *Session) Vendor(ctx context.Context, username string) (*models.Vendor, error) {
	return s.vendors.get(normalize(username), func() (*models.Vendor, error) {
		return s.r.Vendor(ctx, username)
	})
}

func (s *Session) Item(ctx context.Context, itemName, vendorUsername string) (*models.Item, error) {
	key := itemKey(normalize(itemName), normalize(vendorUsername))
	return s.items.get(key, func() (*models.Item, error) {
		return s.r.Item(ctx, itemName, vendorUsername)
	})
}

type memo[T any] struct {
	mu      sync.Mutex
	entries map[string]*memoEntry[T]
}

type memoEntry[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (m *memo[T]) get(key string, load func() (T, error)) (T, error) {
	m.mu.Lock()
	if m.entries == nil {
		m.entries = make(map[string]*memoEntry[T])
	}
	e, ok := m.entries[key]
	if !ok {
		e = &memoEntry[T]{}
		m.entries[key] = e
	}
	m.mu.Unlock()

	e.once.Do(func() {
		e.val, e.err = load()
	})
	return e.val, e.err
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
