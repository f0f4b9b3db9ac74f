package basket

import (
	"github.com/shopspring/decimal"

	"github.com/campuseats/campuseats-backend/pkg/money"
)

// Total sums unit price x quantity over lines, rounded half-up to two places
// once. It uses the same arithmetic as order consolidation.
func Total(lines []Line) decimal.Decimal {
	return money.Total(lines)
}

// LineSubtotal is unit price x quantity, unrounded.
func LineSubtotal(l Line) decimal.Decimal {
	return money.Extend(l.UnitPrice, l.Quantity)
}

type LineView struct {
	Line
	Subtotal decimal.Decimal `json:"subtotal"`
}

// View is the read model a basket screen renders.
type View struct {
	Lines []LineView      `json:"lines"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

func Present(lines []Line) View {
	v := View{Lines: make([]LineView, 0, len(lines)), Total: Total(lines)}
	for _, l := range lines {
		v.Lines = append(v.Lines, LineView{Line: l, Subtotal: LineSubtotal(l)})
		v.Count += l.Quantity
	}
	return v
}
