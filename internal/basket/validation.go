package basket

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

// MaxQuantity bounds parsed quantities so they fit every platform int.
const MaxQuantity = math.MaxInt32

func validationError(field, msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"field": field})
}

func validateAdd(in AddInput) error {
	switch {
	case in.ItemName == "":
		return validationError("itemName", "item name is required")
	case in.VendorUsername == "":
		return validationError("vendorUsername", "vendor is required")
	case !in.UnitPrice.IsPositive():
		return validationError("unitPrice", "unit price must be greater than zero")
	case !in.UnitPrice.Equal(in.UnitPrice.Round(money.Places)):
		return validationError("unitPrice", "unit price must have at most two decimal places")
	}
	return ValidateQuantity(in.Quantity)
}

// ValidateQuantity rejects non-positive quantities. Callers run it before
// UpdateQuantity.
func ValidateQuantity(quantity int) error {
	if quantity <= 0 {
		return validationError("quantity", "quantity must be greater than zero")
	}
	return nil
}

// ParseQuantity coerces textual input into a quantity. Integral decimals such
// as "2.0" are accepted; anything else non-numeric is a validation error.
func ParseQuantity(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() {
		return 0, validationError("quantity", "quantity must be a whole number")
	}
	if d.Abs().GreaterThan(decimal.NewFromInt(MaxQuantity)) {
		return 0, validationError("quantity", "quantity is too large")
	}
	return int(d.IntPart()), nil
}
