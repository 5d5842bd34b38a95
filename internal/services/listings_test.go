package services

import (
	"context"
	"testing"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateListing_AssignsPendingClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r1 := f.receiver(t, "Eastside Pantry", "Austin")
	r2 := f.receiver(t, "Hope Shelter", "Dallas")

	f.listings.Pick = func(n int) int {
		assert.Equal(t, 2, n)
		return 1
	}

	listing, claim, err := f.listings.Create(ctx, NewListing{
		ProviderID: p.ProviderID,
		FoodName:   "  Rice  ",
		Quantity:   10,
		ExpiryDate: day(5),
		FoodType:   models.FoodTypeVegetarian,
		MealType:   models.MealTypeDinner,
	})
	require.NoError(t, err)
	require.NotNil(t, claim)

	assert.Equal(t, "Rice", listing.FoodName)
	assert.Equal(t, "Restaurant", listing.ProviderType)
	assert.Equal(t, "Austin", listing.Location)
	assert.Equal(t, day(5), listing.ExpiryDate)

	assert.Equal(t, listing.FoodID, claim.FoodID)
	assert.Equal(t, r2.ReceiverID, claim.ReceiverID)
	assert.NotEqual(t, r1.ReceiverID, claim.ReceiverID)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)

	assert.Equal(t, int64(1), f.count(t, &models.Claim{}, "food_id = ? AND status = ?", listing.FoodID, models.ClaimStatusPending))
	assert.Equal(t, []EventType{EventListingCreated}, f.notifier.types())
	assert.Equal(t, claim.ClaimID, f.notifier.events[0].ClaimID)
}

func TestCreateListing_NoReceivers(t *testing.T) {
	f := newFixture(t)
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")

	listing, claim, err := f.listings.Create(context.Background(), NewListing{
		ProviderID: p.ProviderID,
		FoodName:   "Soup",
		Quantity:   3,
		ExpiryDate: day(0),
		FoodType:   models.FoodTypeVegan,
		MealType:   models.MealTypeLunch,
	})
	require.NoError(t, err)
	assert.Nil(t, claim)
	assert.NotZero(t, listing.FoodID)
	assert.Zero(t, f.count(t, &models.Claim{}))
}

func TestCreateListing_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	f.receiver(t, "Eastside Pantry", "Austin")

	valid := NewListing{
		ProviderID: p.ProviderID,
		FoodName:   "Rice",
		Quantity:   10,
		ExpiryDate: day(2),
		FoodType:   models.FoodTypeVegetarian,
		MealType:   models.MealTypeLunch,
	}

	tests := []struct {
		name   string
		mutate func(*NewListing)
		field  string
	}{
		{"expiry in the past", func(in *NewListing) { in.ExpiryDate = day(-1) }, "expiryDate"},
		{"zero quantity", func(in *NewListing) { in.Quantity = 0 }, "quantity"},
		{"negative quantity", func(in *NewListing) { in.Quantity = -4 }, "quantity"},
		{"blank name", func(in *NewListing) { in.FoodName = "   " }, "foodName"},
		{"missing provider", func(in *NewListing) { in.ProviderID = 0 }, "providerId"},
		{"unknown food type", func(in *NewListing) { in.FoodType = "Fruitarian" }, "foodType"},
		{"unknown meal type", func(in *NewListing) { in.MealType = "Brunch" }, "mealType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, _, err := f.listings.Create(ctx, in)
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			var v *ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tt.field, v.Field)
		})
	}

	assert.Zero(t, f.count(t, &models.FoodListing{}))
	assert.Zero(t, f.count(t, &models.Claim{}))
	assert.Empty(t, f.notifier.types())
}

func TestCreateListing_UnknownProvider(t *testing.T) {
	f := newFixture(t)
	f.receiver(t, "Eastside Pantry", "Austin")

	_, _, err := f.listings.Create(context.Background(), NewListing{
		ProviderID: 404,
		FoodName:   "Rice",
		Quantity:   1,
		ExpiryDate: day(1),
		FoodType:   models.FoodTypeVegetarian,
		MealType:   models.MealTypeLunch,
	})
	assert.True(t, IsNotFound(err))
	assert.Zero(t, f.count(t, &models.FoodListing{}))
}

func TestUpdateListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	l := f.listing(t, p, "Bread", 4, day(1))

	updated, err := f.listings.Update(ctx, l.FoodID, 9, day(6))
	require.NoError(t, err)
	assert.Equal(t, 9, updated.Quantity)
	assert.Equal(t, day(6), updated.ExpiryDate)

	view, err := f.listings.Get(ctx, l.FoodID)
	require.NoError(t, err)
	assert.Equal(t, 9, view.Quantity)
	assert.Equal(t, day(6), view.ExpiryDate.UTC())
	assert.Equal(t, "Green Bowl", view.ProviderName)

	_, err = f.listings.Update(ctx, l.FoodID, 0, day(6))
	assert.True(t, IsValidation(err))
	_, err = f.listings.Update(ctx, l.FoodID, 3, day(-2))
	assert.True(t, IsValidation(err))
	_, err = f.listings.Update(ctx, 999, 3, day(2))
	assert.True(t, IsNotFound(err))

	view, err = f.listings.Get(ctx, l.FoodID)
	require.NoError(t, err)
	assert.Equal(t, 9, view.Quantity)
}

func TestDeleteListing_RemovesEveryClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r := f.receiver(t, "Eastside Pantry", "Austin")
	l := f.listing(t, p, "Bread", 4, day(1))
	other := f.listing(t, p, "Milk", 2, day(1))
	f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)
	f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusCancelled, fixedNow)
	f.claim(t, other.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)

	require.NoError(t, f.listings.Delete(ctx, l.FoodID))

	assert.Zero(t, f.count(t, &models.FoodListing{}, "food_id = ?", l.FoodID))
	assert.Zero(t, f.count(t, &models.Claim{}, "food_id = ?", l.FoodID))
	assert.Equal(t, int64(1), f.count(t, &models.Claim{}, "food_id = ?", other.FoodID))

	err := f.listings.Delete(ctx, l.FoodID)
	assert.True(t, IsNotFound(err))
}

func TestListListings_FilterAndPaging(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	austin := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	dallas := f.provider(t, "Corner Deli", "Grocery Store", "Dallas")

	for i := 0; i < 30; i++ {
		f.listing(t, austin, "Meal", 1, day(i))
	}
	f.listing(t, dallas, "Bread", 2, day(3))

	page, err := f.listings.List(ctx, ListingFilter{City: "Austin"})
	require.NoError(t, err)
	assert.Equal(t, int64(30), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, DefaultPageSize, page.PageSize)
	require.Len(t, page.Items, DefaultPageSize)
	assert.Equal(t, day(29), page.Items[0].ExpiryDate.UTC())
	for i := 1; i < len(page.Items); i++ {
		assert.False(t, page.Items[i].ExpiryDate.After(page.Items[i-1].ExpiryDate))
	}

	second, err := f.listings.List(ctx, ListingFilter{City: "Austin", Page: 2})
	require.NoError(t, err)
	assert.Len(t, second.Items, 5)

	groceries, err := f.listings.List(ctx, ListingFilter{ProviderType: "Grocery Store"})
	require.NoError(t, err)
	require.Len(t, groceries.Items, 1)
	assert.Equal(t, "Corner Deli", groceries.Items[0].ProviderName)

	none, err := f.listings.List(ctx, ListingFilter{MealType: "Breakfast"})
	require.NoError(t, err)
	assert.Empty(t, none.Items)
	assert.Zero(t, none.TotalPages)
}

func TestGetListing_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.listings.Get(context.Background(), 77)
	assert.True(t, IsNotFound(err))
}
