package services

import (
	"context"
	"testing"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProviders(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.dir.CreateProvider(ctx, models.Provider{
		Name:    " Green Bowl ",
		Type:    "Restaurant",
		City:    "Austin",
		Address: "12 Lake Rd, Austin TX 73301",
		Contact: "512.555.0199",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ProviderID)
	assert.Equal(t, "Green Bowl", created.Name)
	assert.Equal(t, "73301", created.Pincode)
	assert.Equal(t, "(512) 555-0199", created.Contact)

	_, err = f.dir.CreateProvider(ctx, models.Provider{Name: "Bakery Row", Type: "Grocery Store", City: "Boston"})
	require.NoError(t, err)

	_, err = f.dir.CreateProvider(ctx, models.Provider{Name: "", Type: "Restaurant", City: "Austin"})
	assert.True(t, IsValidation(err))

	all, err := f.dir.ListProviders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Bakery Row", all[0].Name)

	byLetter, err := f.dir.ListProviders(ctx, "g")
	require.NoError(t, err)
	require.Len(t, byLetter, 1)
	assert.Equal(t, "Green Bowl", byLetter[0].Name)

	_, err = f.dir.CreateProvider(ctx, models.Provider{Name: "Épicerie Sud", Type: "Grocery Store", City: "Austin"})
	require.NoError(t, err)
	accented, err := f.dir.ListProviders(ctx, "é")
	require.NoError(t, err)
	require.Len(t, accented, 1)
	assert.Equal(t, "Épicerie Sud", accented[0].Name)

	got, err := f.dir.GetProvider(ctx, created.ProviderID)
	require.NoError(t, err)
	assert.Equal(t, "Austin", got.City)

	_, err = f.dir.GetProvider(ctx, 999)
	assert.True(t, IsNotFound(err))
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "G", initial("g"))
	assert.Equal(t, "É", initial("équipe"))
	assert.Equal(t, "Ж", initial("ж"))
	assert.Equal(t, "", initial(""))
	assert.Equal(t, "", initial("\xff"))
}

func TestDeleteProvider_Cascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")
	keep := f.provider(t, "Corner Deli", "Grocery Store", "Dallas")
	r := f.receiver(t, "Eastside Pantry", "Austin")

	l1 := f.listing(t, p, "Rice", 3, day(1))
	l2 := f.listing(t, p, "Soup", 2, day(2))
	kept := f.listing(t, keep, "Bread", 4, day(1))
	f.claim(t, l1.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)
	f.claim(t, l2.FoodID, r.ReceiverID, models.ClaimStatusCancelled, fixedNow)
	f.claim(t, kept.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)

	require.NoError(t, f.dir.DeleteProvider(ctx, p.ProviderID))

	assert.Zero(t, f.count(t, &models.Provider{}, "provider_id = ?", p.ProviderID))
	assert.Zero(t, f.count(t, &models.FoodListing{}, "provider_id = ?", p.ProviderID))
	assert.Zero(t, f.count(t, &models.Claim{}, "food_id IN ?", []uint{l1.FoodID, l2.FoodID}))
	assert.Equal(t, int64(1), f.count(t, &models.Claim{}, "food_id = ?", kept.FoodID))

	assert.True(t, IsNotFound(f.dir.DeleteProvider(ctx, p.ProviderID)))
	assert.Equal(t, []EventType{EventProviderDeleted}, f.notifier.types())
}

func TestReceivers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.provider(t, "Green Bowl", "Restaurant", "Austin")

	r, err := f.dir.CreateReceiver(ctx, models.Receiver{Name: "Eastside Pantry", Type: "NGO", City: "Austin"})
	require.NoError(t, err)
	_, err = f.dir.CreateReceiver(ctx, models.Receiver{Name: "Hope Shelter", Type: "Shelter", City: "Dallas"})
	require.NoError(t, err)
	_, err = f.dir.CreateReceiver(ctx, models.Receiver{Name: "Nameless", Type: "NGO"})
	assert.True(t, IsValidation(err))

	austin, err := f.dir.ListReceivers(ctx, "Austin")
	require.NoError(t, err)
	require.Len(t, austin, 1)
	assert.Equal(t, r.ReceiverID, austin[0].ReceiverID)

	l := f.listing(t, p, "Rice", 3, day(1))
	f.claim(t, l.FoodID, r.ReceiverID, models.ClaimStatusPending, fixedNow)

	require.NoError(t, f.dir.DeleteReceiver(ctx, r.ReceiverID))
	assert.Zero(t, f.count(t, &models.Claim{}, "receiver_id = ?", r.ReceiverID))
	assert.Equal(t, int64(1), f.count(t, &models.FoodListing{}, "food_id = ?", l.FoodID))

	assert.True(t, IsNotFound(f.dir.DeleteReceiver(ctx, r.ReceiverID)))
}

func TestProviderContactsByCity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.provider(t, "Green Bowl", "Restaurant", "Austin")
	f.provider(t, "Corner Deli", "Grocery Store", "Dallas")

	contacts, err := f.dir.ProviderContactsByCity(ctx, "Austin")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "(512) 555-0100", contacts[0].Contact)

	_, err = f.dir.ProviderContactsByCity(ctx, " ")
	assert.True(t, IsValidation(err))
}
