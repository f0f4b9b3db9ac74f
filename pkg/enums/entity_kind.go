package enums

// EntityKind names the catalog entity a human-readable reference points at.
type EntityKind string

const (
	EntityKindCustomer EntityKind = "customer"
	EntityKindVendor   EntityKind = "vendor"
	EntityKindItem     EntityKind = "item"
	EntityKindOrder    EntityKind = "order"
)

// String implements fmt.Stringer.
func (k EntityKind) String() string {
	return string(k)
}
