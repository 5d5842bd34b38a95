package services

import (
	"context"
	"sync"
	"testing"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteClaim_RemovesListingAndSiblings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r1 := f.receiver(t, "Eastside Pantry", "Austin")
	r2 := f.receiver(t, "Hope Shelter", "Austin")

	listing, claim, err := f.listings.Create(ctx, NewListing{
		ProviderID: p.ProviderID,
		FoodName:   "Rice",
		Quantity:   10,
		ExpiryDate: day(5),
		FoodType:   models.FoodTypeVegetarian,
		MealType:   models.MealTypeDinner,
	})
	require.NoError(t, err)
	require.NotNil(t, claim)
	sibling := f.claim(t, listing.FoodID, r2.ReceiverID, models.ClaimStatusPending, fixedNow)
	assert.Equal(t, r1.ReceiverID, claim.ReceiverID)

	tr, err := f.claims.Complete(ctx, claim.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusCompleted, tr.Claim.Status)
	assert.True(t, tr.ListingExisted)
	assert.True(t, tr.ListingRemoved)
	assert.Equal(t, int64(1), tr.SiblingClaimsRemoved)

	assert.Zero(t, f.count(t, &models.FoodListing{}, "food_id = ?", listing.FoodID))
	assert.Zero(t, f.count(t, &models.Claim{}, "claim_id = ?", sibling.ClaimID))

	stored, err := f.claims.Get(ctx, claim.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusCompleted, stored.Status)
	assert.Equal(t, listing.FoodID, stored.FoodID)

	completed, err := f.claims.List(ctx, models.ClaimStatusCompleted)
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Nil(t, completed[0].FoodName)
	assert.Equal(t, "Eastside Pantry", completed[0].ReceiverName)

	_, err = f.claims.Complete(ctx, claim.ClaimID)
	assert.True(t, IsNotFound(err))
	_, err = f.claims.Cancel(ctx, claim.ClaimID)
	assert.True(t, IsNotFound(err))
	stored, err = f.claims.Get(ctx, claim.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusCompleted, stored.Status)

	assert.Equal(t, []EventType{EventListingCreated, EventClaimCompleted}, f.notifier.types())
}

func TestCancelClaim_ExpiredListingIsPurged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r := f.receiver(t, "Eastside Pantry", "Austin")
	l := f.listing(t, p, "Salad", 5, day(-1))
	c := f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)
	other := f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)

	tr, err := f.claims.Cancel(ctx, c.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusCancelled, tr.Claim.Status)
	assert.True(t, tr.ListingRemoved)
	assert.Equal(t, int64(1), tr.SiblingClaimsRemoved)

	assert.Zero(t, f.count(t, &models.FoodListing{}, "food_id = ?", l.FoodID))
	assert.Zero(t, f.count(t, &models.Claim{}, "claim_id = ?", other.ClaimID))
	stored, err := f.claims.Get(ctx, c.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusCancelled, stored.Status)
}

func TestCancelClaim_LiveListingReturnsToPool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r := f.receiver(t, "Eastside Pantry", "Austin")

	for _, offset := range []int{0, 1} {
		l := f.listing(t, p, "Pasta", 5, day(offset))
		c := f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)

		tr, err := f.claims.Cancel(ctx, c.ClaimID)
		require.NoError(t, err)
		assert.True(t, tr.ListingExisted)
		assert.False(t, tr.ListingRemoved)

		view, err := f.listings.Get(ctx, l.FoodID)
		require.NoError(t, err)
		assert.Equal(t, 5, view.Quantity)
	}
}

func TestCancelClaim_ListingAlreadyGone(t *testing.T) {
	f := newFixture(t)
	r := f.receiver(t, "Eastside Pantry", "Austin")
	c := f.claim(t, 4242, r.ReceiverID, models.ClaimStatusPending, fixedNow)

	tr, err := f.claims.Cancel(context.Background(), c.ClaimID)
	require.NoError(t, err)
	assert.False(t, tr.ListingExisted)
	assert.False(t, tr.ListingRemoved)
	assert.Equal(t, models.ClaimStatusCancelled, tr.Claim.Status)
}

func TestCompleteClaim_UnknownID(t *testing.T) {
	f := newFixture(t)
	_, err := f.claims.Complete(context.Background(), 9)
	assert.True(t, IsNotFound(err))
	assert.Empty(t, f.notifier.types())
}

func TestCompleteClaim_ConcurrentCallsCompleteOnce(t *testing.T) {
	f := newFixture(t)
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r := f.receiver(t, "Eastside Pantry", "Austin")
	l := f.listing(t, p, "Rice", 3, day(2))
	c := f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.claims.Complete(context.Background(), c.ClaimID); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else {
				assert.True(t, IsNotFound(err))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
}

func TestListClaims(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r := f.receiver(t, "Eastside Pantry", "Austin")
	l := f.listing(t, p, "Rice", 3, day(2))
	older := f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow.AddDate(0, 0, -2))
	newer := f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)
	f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusCancelled, fixedNow)

	pending, err := f.claims.List(ctx, models.ClaimStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, newer.ClaimID, pending[0].ClaimID)
	assert.Equal(t, older.ClaimID, pending[1].ClaimID)
	require.NotNil(t, pending[0].FoodName)
	assert.Equal(t, "Rice", *pending[0].FoodName)

	_, err = f.claims.List(ctx, "Lost")
	assert.True(t, IsValidation(err))
}

func TestSiblingClaims_CompleteThenCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r1 := f.receiver(t, "Eastside Pantry", "Austin")
	r2 := f.receiver(t, "Hope Shelter", "Austin")
	l := f.listing(t, p, "Rice", 6, day(2))
	c1 := f.claim(t, l.FoodID, r1.ReceiverID, models.ClaimStatusPending, fixedNow)
	c2 := f.claim(t, l.FoodID, r2.ReceiverID, models.ClaimStatusPending, fixedNow)

	tr, err := f.claims.Complete(ctx, c1.ClaimID)
	require.NoError(t, err)
	assert.True(t, tr.ListingRemoved)

	_, err = f.claims.Cancel(ctx, c2.ClaimID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	assert.Zero(t, f.count(t, &models.Claim{}, "claim_id = ?", c2.ClaimID))
	assert.Zero(t, f.count(t, &models.FoodListing{}, "food_id = ?", l.FoodID))
}

func TestSiblingClaims_CancelThenComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r1 := f.receiver(t, "Eastside Pantry", "Austin")
	r2 := f.receiver(t, "Hope Shelter", "Austin")
	l := f.listing(t, p, "Rice", 6, day(2))
	c1 := f.claim(t, l.FoodID, r1.ReceiverID, models.ClaimStatusPending, fixedNow)
	c2 := f.claim(t, l.FoodID, r2.ReceiverID, models.ClaimStatusPending, fixedNow)

	cancelled, err := f.claims.Cancel(ctx, c2.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusCancelled, cancelled.Claim.Status)
	assert.True(t, cancelled.ListingExisted)
	assert.False(t, cancelled.ListingRemoved)

	completed, err := f.claims.Complete(ctx, c1.ClaimID)
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusCompleted, completed.Claim.Status)
	assert.True(t, completed.ListingRemoved)
	assert.Equal(t, int64(1), completed.SiblingClaimsRemoved)

	assert.Zero(t, f.count(t, &models.FoodListing{}, "food_id = ?", l.FoodID))
	assert.Zero(t, f.count(t, &models.Claim{}, "claim_id = ?", c2.ClaimID))
	assert.Equal(t, int64(1), f.count(t, &models.Claim{}, "claim_id = ? AND status = ?", c1.ClaimID, models.ClaimStatusCompleted))
}

func TestSiblingClaims_ConcurrentCompleteAndCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	r1 := f.receiver(t, "Eastside Pantry", "Austin")
	r2 := f.receiver(t, "Hope Shelter", "Austin")
	l := f.listing(t, p, "Rice", 6, day(2))
	c1 := f.claim(t, l.FoodID, r1.ReceiverID, models.ClaimStatusPending, fixedNow)
	c2 := f.claim(t, l.FoodID, r2.ReceiverID, models.ClaimStatusPending, fixedNow)

	var (
		wg                     sync.WaitGroup
		completeErr, cancelErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, completeErr = f.claims.Complete(ctx, c1.ClaimID)
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = f.claims.Cancel(ctx, c2.ClaimID)
	}()
	wg.Wait()

	require.NoError(t, completeErr)
	if cancelErr != nil {
		assert.True(t, IsNotFound(cancelErr), "cancel failed with %v", cancelErr)
	}
	assert.Zero(t, f.count(t, &models.FoodListing{}, "food_id = ?", l.FoodID))
	assert.Zero(t, f.count(t, &models.Claim{}, "claim_id = ?", c2.ClaimID))
}
