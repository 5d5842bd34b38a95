package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chachabrian/foodshare-backend/internal/config"
	"github.com/chachabrian/foodshare-backend/internal/database"
	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/chachabrian/foodshare-backend/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixedNow is the clock every service test runs against.
var fixedNow = time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)

func day(offset int) time.Time {
	return models.DateOf(fixedNow).AddDate(0, 0, offset)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Publish(_ context.Context, e Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return nil
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	db       *gorm.DB
	deps     *Deps
	notifier *recordingNotifier
	cache    *MemoryCache
	listings *ListingService
	claims   *ClaimService
	dir      *DirectoryService
	reports  *ReportService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := database.InitDB(&config.Config{
		DBDriver: "sqlite",
		DBSource: "file:" + t.Name() + "?mode=memory&cache=shared",
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	n := &recordingNotifier{}
	cache := NewMemoryCache(time.Hour)
	deps := &Deps{
		DB:       db,
		Cache:    cache,
		Notifier: n,
		Metrics:  observability.NewMetrics(prometheus.NewRegistry()),
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	}
	listings := NewListingService(deps)
	listings.Pick = func(int) int { return 0 }

	return &fixture{
		db:       db,
		deps:     deps,
		notifier: n,
		cache:    cache,
		listings: listings,
		claims:   NewClaimService(deps),
		dir:      NewDirectoryService(deps),
		reports:  NewReportService(deps),
	}
}

func (f *fixture) provider(t *testing.T, name, typ, city string) models.Provider {
	t.Helper()
	p := models.Provider{Name: name, Type: typ, City: city, Address: "12 Main St, " + city + " 73301", Contact: "(512) 555-0100", Pincode: "73301"}
	require.NoError(t, f.db.Create(&p).Error)
	return p
}

func (f *fixture) receiver(t *testing.T, name, city string) models.Receiver {
	t.Helper()
	r := models.Receiver{Name: name, Type: "NGO", City: city, Contact: "(512) 555-0199"}
	require.NoError(t, f.db.Create(&r).Error)
	return r
}

// listing inserts a listing directly, bypassing validation, so tests can seed
// expired rows.
func (f *fixture) listing(t *testing.T, p models.Provider, name string, qty int, expiry time.Time) models.FoodListing {
	t.Helper()
	l := models.FoodListing{
		FoodName:     name,
		Quantity:     qty,
		ExpiryDate:   expiry,
		ProviderID:   p.ProviderID,
		ProviderType: p.Type,
		Location:     p.City,
		FoodType:     models.FoodTypeVegetarian,
		MealType:     models.MealTypeLunch,
	}
	require.NoError(t, f.db.Create(&l).Error)
	return l
}

func (f *fixture) claim(t *testing.T, foodID, receiverID uint, status models.ClaimStatus, at time.Time) models.Claim {
	t.Helper()
	c := models.Claim{FoodID: foodID, ReceiverID: receiverID, Status: status, Timestamp: at}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixture) count(t *testing.T, model interface{}, where ...interface{}) int64 {
	t.Helper()
	var n int64
	q := f.db.Model(model)
	if len(where) > 0 {
		q = q.Where(where[0], where[1:]...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
