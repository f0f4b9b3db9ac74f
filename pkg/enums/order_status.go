package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks the lifecycle of a campus order.
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusOrderReceived OrderStatus = "order_received"
	OrderStatusConfirmed     OrderStatus = "confirmed"
	OrderStatusReady         OrderStatus = "ready"
	OrderStatusCompleted     OrderStatus = "completed"
	OrderStatusCancelled     OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusOrderReceived,
	OrderStatusConfirmed,
	OrderStatusReady,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// legacyOrderStatuses maps spellings written by older clients.
var legacyOrderStatuses = map[string]OrderStatus{
	"order received": OrderStatusOrderReceived,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus. Matching is exact;
// the only accepted alternative spelling is the legacy "order received".
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	if legacy, ok := legacyOrderStatuses[value]; ok {
		return legacy, nil
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// StatusActor identifies who requests a status change.
type StatusActor string

const (
	StatusActorCustomer StatusActor = "customer"
	StatusActorVendor   StatusActor = "vendor"
	StatusActorSystem   StatusActor = "system"
)

var orderTransitions = map[StatusActor]map[OrderStatus][]OrderStatus{
	StatusActorCustomer: {
		OrderStatusPending: {OrderStatusCancelled},
	},
	StatusActorVendor: {
		OrderStatusPending:       {OrderStatusOrderReceived, OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusOrderReceived: {OrderStatusConfirmed, OrderStatusCancelled},
		OrderStatusConfirmed:     {OrderStatusReady, OrderStatusCancelled},
		OrderStatusReady:         {OrderStatusCompleted},
	},
	StatusActorSystem: {
		OrderStatusPending: {OrderStatusCancelled},
	},
}

// CanTransition reports whether actor may move an order from one status to another.
func CanTransition(actor StatusActor, from, to OrderStatus) bool {
	for _, next := range orderTransitions[actor][from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses actor may move an order to from the given status.
func AllowedTransitions(actor StatusActor, from OrderStatus) []OrderStatus {
	next := orderTransitions[actor][from]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// JoinStatuses renders statuses for error messages.
func JoinStatuses(statuses []OrderStatus) string {
	parts := make([]string, len(statuses))
	for i, s := range statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}
