package helpers

import (
	"github.com/shopspring/decimal"

	"github.com/campuseats/campuseats-backend/internal/basket"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

// VendorLines is one vendor's slice of a basket.
type VendorLines struct {
	VendorUsername string
	Lines          []basket.Line
}

// GroupLinesByVendor partitions lines by vendor. Groups come out in the order
// each vendor first appears; lines keep their relative order.
func GroupLinesByVendor(lines []basket.Line) []VendorLines {
	index := make(map[string]int, len(lines))
	groups := make([]VendorLines, 0)
	for _, l := range lines {
		i, ok := index[l.VendorUsername]
		if !ok {
			i = len(groups)
			index[l.VendorUsername] = i
			groups = append(groups, VendorLines{VendorUsername: l.VendorUsername})
		}
		groups[i].Lines = append(groups[i].Lines, l)
	}
	return groups
}

// MergedLine is a basket line reduced to what an order needs.
type MergedLine struct {
	BasketID  string          `json:"basketId"`
	ItemName  string          `json:"itemName"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func (l MergedLine) Price() decimal.Decimal { return l.UnitPrice }
func (l MergedLine) Qty() int               { return l.Quantity }

type mergeKey struct {
	itemName string
	vendor   string
	price    string
}

// MergeLines sums quantities of lines sharing item name, unit price and
// vendor. Already merged input comes back unchanged. A merged line keeps the
// basket id of its first occurrence.
func MergeLines(lines []basket.Line) []MergedLine {
	index := make(map[mergeKey]int, len(lines))
	merged := make([]MergedLine, 0, len(lines))
	for _, l := range lines {
		key := mergeKey{itemName: l.ItemName, vendor: l.VendorUsername, price: money.Key(l.UnitPrice)}
		if i, ok := index[key]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[key] = len(merged)
		merged = append(merged, MergedLine{BasketID: l.BasketID, ItemName: l.ItemName, UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}
	return merged
}
