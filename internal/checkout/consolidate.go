// Package checkout turns a basket into per-vendor orders and submits them.
package checkout

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/campuseats/campuseats-backend/internal/basket"
	"github.com/campuseats/campuseats-backend/internal/checkout/helpers"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

// VendorOrderGroup is the unit of one order creation request.
type VendorOrderGroup struct {
	VendorUsername string               `json:"vendorUsername"`
	Lines          []helpers.MergedLine `json:"lines"`
	GroupTotal     decimal.Decimal      `json:"groupTotal"`
}

// Consolidate groups basket lines by vendor, re-merges duplicates and
// computes each group's total from the merged lines. An empty basket yields
// an empty slice: there is nothing to submit.
func Consolidate(lines []basket.Line) []VendorOrderGroup {
	partitions := helpers.GroupLinesByVendor(lines)
	groups := make([]VendorOrderGroup, 0, len(partitions))
	for _, p := range partitions {
		merged := helpers.MergeLines(p.Lines)
		groups = append(groups, VendorOrderGroup{
			VendorUsername: p.VendorUsername,
			Lines:          merged,
			GroupTotal:     money.Total(merged),
		})
	}
	return groups
}

// GrandTotal sums group totals.
func GrandTotal(groups []VendorOrderGroup) decimal.Decimal {
	sum := decimal.Zero
	for _, g := range groups {
		sum = sum.Add(g.GroupTotal)
	}
	return sum
}

// Fingerprint identifies a group's content. Two submissions of the same
// vendor with the same lines share a fingerprint.
func (g VendorOrderGroup) Fingerprint() string {
	h := sha256.New()
	_, _ = io.WriteString(h, g.VendorUsername)
	for _, l := range g.Lines {
		_, _ = fmt.Fprintf(h, "\x00%s\x1f%s\x1f%d", l.ItemName, money.Key(l.UnitPrice), l.Quantity)
	}
	return hex.EncodeToString(h.Sum(nil))[:32]
}
