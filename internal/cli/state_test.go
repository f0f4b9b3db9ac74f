package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuseats/campuseats-backend/internal/basket"
	"github.com/campuseats/campuseats-backend/pkg/money"
)

func TestStateRoundTripAndRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), "basket.yaml.state")

	fresh, err := LoadState(path)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.SessionID)
	assert.Empty(t, fresh.Completed)

	fresh.Completed["abc"] = 41
	require.NoError(t, SaveState(path, fresh))

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, fresh.SessionID, loaded.SessionID)
	assert.Equal(t, int64(41), loaded.Completed["abc"])

	require.NoError(t, RemoveState(path))
	require.NoError(t, RemoveState(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestBasketFileStoreMergesDuplicates(t *testing.T) {
	path := writeBasket(t, sampleBasket)
	f, err := LoadBasketFile(path)
	require.NoError(t, err)

	store, err := f.Store()
	require.NoError(t, err)
	lines := store.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, "line-1", lines[0].BasketID)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.True(t, money.MustParse("28.15").Equal(store.Total()))
}

func TestBasketFileSetLinesFormatsPrices(t *testing.T) {
	f := &BasketFile{Customer: "alice"}
	f.SetLines([]basket.Line{{ItemName: "Tea", VendorUsername: "cafe", UnitPrice: money.MustParse("2.5"), Quantity: 2}})

	path := filepath.Join(t.TempDir(), "basket.yaml")
	require.NoError(t, SaveBasketFile(path, f))

	loaded, err := LoadBasketFile(path)
	require.NoError(t, err)
	require.Len(t, loaded.Lines, 1)
	assert.Equal(t, "2.50", loaded.Lines[0].Price)
	assert.Equal(t, "alice", loaded.Customer)
}
