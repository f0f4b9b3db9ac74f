package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	got, err := ParseOrderStatus("pending")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPending, got)

	got, err = ParseOrderStatus("order received")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusOrderReceived, got)

	_, err = ParseOrderStatus("Pending")
	assert.Error(t, err, "status matching is case-sensitive")

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestCustomerMayOnlyCancelPending(t *testing.T) {
	for _, from := range validOrderStatuses {
		for _, to := range validOrderStatuses {
			allowed := CanTransition(StatusActorCustomer, from, to)
			want := from == OrderStatusPending && to == OrderStatusCancelled
			assert.Equalf(t, want, allowed, "customer %s -> %s", from, to)
		}
	}
}

func TestVendorTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusActorVendor, OrderStatusPending, OrderStatusConfirmed))
	assert.True(t, CanTransition(StatusActorVendor, OrderStatusOrderReceived, OrderStatusConfirmed))
	assert.True(t, CanTransition(StatusActorVendor, OrderStatusReady, OrderStatusCompleted))
	assert.False(t, CanTransition(StatusActorVendor, OrderStatusCompleted, OrderStatusPending))
	assert.False(t, CanTransition(StatusActorVendor, OrderStatusCancelled, OrderStatusConfirmed))
	assert.False(t, CanTransition(StatusActorVendor, OrderStatusReady, OrderStatusCancelled))
}

func TestTerminalStatusesHaveNoTransitions(t *testing.T) {
	for _, actor := range []StatusActor{StatusActorCustomer, StatusActorVendor, StatusActorSystem} {
		for _, s := range validOrderStatuses {
			if s.IsTerminal() {
				assert.Emptyf(t, AllowedTransitions(actor, s), "%s from %s", actor, s)
			}
		}
	}
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	next := AllowedTransitions(StatusActorVendor, OrderStatusPending)
	require.NotEmpty(t, next)
	next[0] = OrderStatusCompleted
	assert.Equal(t, OrderStatusOrderReceived, AllowedTransitions(StatusActorVendor, OrderStatusPending)[0])
}

func TestParseSubmissionStage(t *testing.T) {
	got, err := ParseSubmissionStage("vendor_resolution")
	require.NoError(t, err)
	assert.Equal(t, SubmissionStageVendorResolution, got)

	_, err = ParseSubmissionStage("teleport")
	assert.Error(t, err)
}
