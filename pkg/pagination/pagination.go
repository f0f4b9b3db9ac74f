package pagination

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// FavoritesPageSize is the fixed page size of the favorites listing.
	FavoritesPageSize = 10
	// DefaultLimit is the catalog page size when a limit is not provided.
	DefaultLimit = 25
	// MaxLimit caps how many rows any catalog query can request.
	MaxLimit = 100
)

// Page is the pagination block returned next to page-numbered listings.
type Page struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasMore     bool  `json:"hasMore"`
}

// ParsePage reads a 1-based page number. Blank input means the first page.
func ParsePage(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 1, nil
	}
	page, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid page %q", raw)
	}
	if page < 1 {
		return 0, fmt.Errorf("page must be at least 1")
	}
	return page, nil
}

// Offset is the number of rows preceding page.
func Offset(page, size int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * size
}

// NewPage describes page of a listing holding total rows.
func NewPage(page, size int, total int64) Page {
	if page < 1 {
		page = 1
	}
	pages := 0
	if size > 0 && total > 0 {
		pages = int((total + int64(size) - 1) / int64(size))
	}
	return Page{
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		HasMore:     page < pages,
	}
}

// NormalizeLimit enforces the default and maximum catalog limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
