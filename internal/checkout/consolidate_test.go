package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseats/campuseats-backend/internal/basket"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

func add(t *testing.T, s *basket.Store, item, vendor, price string, qty int) {
	t.Helper()
	_, err := s.Add(basket.AddInput{ItemName: item, VendorUsername: vendor, UnitPrice: money.MustParse(price), Quantity: qty})
	require.NoError(t, err)
}

func TestConsolidateGroupsByVendor(t *testing.T) {
	s := basket.NewStore()
	add(t, s, "ItemA", "VendorX", "10.00", 2)
	add(t, s, "ItemB", "VendorX", "4.50", 1)
	add(t, s, "ItemC", "VendorY", "7.25", 1)

	groups := Consolidate(s.Lines())

	require.Len(t, groups, 2)
	assert.Equal(t, "VendorX", groups[0].VendorUsername)
	assert.Len(t, groups[0].Lines, 2)
	assert.Equal(t, "24.50", money.Format(groups[0].GroupTotal))
	assert.Equal(t, "VendorY", groups[1].VendorUsername)
	assert.Len(t, groups[1].Lines, 1)
	assert.Equal(t, "7.25", money.Format(groups[1].GroupTotal))
}

func TestConsolidateRemergesDuplicatesThatBypassedTheStore(t *testing.T) {
	lines := []basket.Line{
		{BasketID: "1", ItemName: "Rice", VendorUsername: "stallA", UnitPrice: money.MustParse("25.00"), Quantity: 2},
		{BasketID: "2", ItemName: "Rice", VendorUsername: "stallA", UnitPrice: money.MustParse("25"), Quantity: 3},
	}

	groups := Consolidate(lines)

	require.Len(t, groups, 1)
	require.Len(t, groups[0].Lines, 1)
	assert.Equal(t, 5, groups[0].Lines[0].Quantity)
	assert.Equal(t, "1", groups[0].Lines[0].BasketID)
	assert.Equal(t, "125.00", money.Format(groups[0].GroupTotal))
}

func TestConsolidateEmptyBasket(t *testing.T) {
	groups := Consolidate(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
	assert.True(t, GrandTotal(groups).IsZero())
}

func TestPresentationTotalMatchesGroupTotals(t *testing.T) {
	s := basket.NewStore()
	add(t, s, "Rice", "stallA", "25.00", 2)
	add(t, s, "Tea", "stallB", "0.99", 3)
	add(t, s, "Bun", "stallA", "1.05", 7)
	add(t, s, "Soup", "stallC", "12.34", 1)
	add(t, s, "Tea", "stallB", "0.99", 4)

	groups := Consolidate(s.Lines())
	assert.True(t, s.Total().Equal(GrandTotal(groups)), "basket %s vs groups %s", s.Total(), GrandTotal(groups))
}

func TestRoundTripScenarioTotals(t *testing.T) {
	s := basket.NewStore()
	add(t, s, "Rice", "stallA", "25.00", 2)

	groups := Consolidate(s.Lines())
	require.Len(t, groups, 1)
	assert.Equal(t, "50.00", money.Format(groups[0].GroupTotal))

	sub := NewOrderSubmission("alice", groups[0])
	assert.Equal(t, "pending", sub.Status.String())
	assert.Equal(t, "stallA", sub.VendorIdentifier)
	require.Len(t, sub.Lines, 1)
	assert.Equal(t, 2, sub.Lines[0].Quantity)
	assert.Equal(t, "25.00", money.Format(sub.Lines[0].Price))
}

func TestFingerprintIsContentBased(t *testing.T) {
	a := Consolidate([]basket.Line{{ItemName: "Rice", VendorUsername: "stallA", UnitPrice: money.MustParse("25"), Quantity: 2}})[0]
	b := Consolidate([]basket.Line{{BasketID: "other", ItemName: "Rice", VendorUsername: "stallA", UnitPrice: money.MustParse("25.00"), Quantity: 2}})[0]
	c := Consolidate([]basket.Line{{ItemName: "Rice", VendorUsername: "stallA", UnitPrice: money.MustParse("25"), Quantity: 3}})[0]

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Len(t, a.Fingerprint(), 32)
}
