package favorites

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/campuseats/campuseats-backend/internal/resolver"
	"github.com/campuseats/campuseats-backend/internal/testdb"
	"github.com/campuseats/campuseats-backend/pkg/db/models"
	pkgerrors "github.com/campuseats/campuseats-backend/pkg/errors"
	"github.com/campuseats/campuseats-backend/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	db := testdb.Open(t)
	res, err := resolver.New(db)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{Repo: NewRepository(db), Resolver: res})
	require.NoError(t, err)
	return svc, db
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCreateFavorite(t *testing.T) {
	svc, db := newService(t)
	alice := testdb.Customer(t, db, "alice")
	grill := testdb.Vendor(t, db, "grill")
	wings := testdb.Item(t, db, grill.ID, "Wings", "30.00")

	fav, err := svc.Create(context.Background(), CreateInput{CustomerID: "Alice", VendorUsername: "grill", ItemName: "wings"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, fav.CustomerID)
	assert.Equal(t, grill.ID, fav.VendorID)
	assert.Equal(t, wings.ID, fav.ItemID)
}

func TestCreateFavoriteDuplicate(t *testing.T) {
	svc, db := newService(t)
	testdb.Customer(t, db, "alice")
	grill := testdb.Vendor(t, db, "grill")
	testdb.Item(t, db, grill.ID, "Wings", "30.00")
	in := CreateInput{CustomerID: "alice", VendorUsername: "grill", ItemName: "Wings"}

	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), in)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, AlreadyFavorited, pkgerrors.As(err).Message())
}

func TestUniqueIndexViolationIsDuplicate(t *testing.T) {
	db := testdb.Open(t)
	repo := NewRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.Favorite{CustomerID: 1, VendorID: 1, ItemID: 1}))
	err := repo.Create(ctx, &models.Favorite{CustomerID: 1, VendorID: 1, ItemID: 1})
	require.Error(t, err)
	assert.True(t, isDuplicate(err))
	assert.False(t, isDuplicate(fmt.Errorf("timeout")))
}

func TestCreateFavoriteUnknownItem(t *testing.T) {
	svc, db := newService(t)
	testdb.Customer(t, db, "alice")
	testdb.Vendor(t, db, "grill")

	_, err := svc.Create(context.Background(), CreateInput{CustomerID: "alice", VendorUsername: "grill", ItemName: "Sushi"})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
	assert.Equal(t, "item", pkgerrors.DetailMap(err)["entity_kind"])
}

func TestListFavoritesPaginates(t *testing.T) {
	svc, db := newService(t)
	alice := testdb.Customer(t, db, "alice")
	bob := testdb.Customer(t, db, "bob")
	grill := testdb.Vendor(t, db, "grill")

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		item := testdb.Item(t, db, grill.ID, fmt.Sprintf("Dish %02d", i), "10.00")
		require.NoError(t, db.Create(&models.Favorite{
			CustomerID: alice.ID,
			VendorID:   grill.ID,
			ItemID:     item.ID,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}).Error)
	}
	other := testdb.Item(t, db, grill.ID, "Other", "5.00")
	require.NoError(t, db.Create(&models.Favorite{CustomerID: bob.ID, VendorID: grill.ID, ItemID: other.ID}).Error)

	page1, err := svc.List(context.Background(), "alice", 1)
	require.NoError(t, err)
	require.Len(t, page1.Favorites, pagination.FavoritesPageSize)
	assert.Equal(t, "Dish 11", page1.Favorites[0].ItemName)
	assert.Equal(t, "grill", page1.Favorites[0].VendorUsername)
	assert.Equal(t, pagination.Page{CurrentPage: 1, TotalPages: 2, TotalItems: 12, HasMore: true}, page1.Pagination)

	page2, err := svc.List(context.Background(), "alice", 2)
	require.NoError(t, err)
	require.Len(t, page2.Favorites, 2)
	assert.Equal(t, "Dish 00", page2.Favorites[1].ItemName)
	assert.False(t, page2.Pagination.HasMore)

	page3, err := svc.List(context.Background(), "alice", 3)
	require.NoError(t, err)
	assert.NotNil(t, page3.Favorites)
	assert.Empty(t, page3.Favorites)
}

func TestListFavoritesRejectsBadPage(t *testing.T) {
	svc, db := newService(t)
	testdb.Customer(t, db, "alice")

	_, err := svc.List(context.Background(), "alice", 0)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	_, err = svc.List(context.Background(), "nobody", 1)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeNotFound))
}
