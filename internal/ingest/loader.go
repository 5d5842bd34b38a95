// Package ingest loads the provider, receiver, listing and claim CSV exports
// into the database.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/chachabrian/foodshare-backend/internal/database"
	"github.com/chachabrian/foodshare-backend/internal/models"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	ProvidersFile = "providers_data.csv"
	ReceiversFile = "receivers_data.csv"
	ListingsFile  = "food_listings_data.csv"
	ClaimsFile    = "claims_data.csv"

	batchSize = 500
)

// Loader replaces the contents of the four tables with the cleaned CSV data.
type Loader struct {
	DB     *gorm.DB
	Source Source
	// Rand generates contact numbers for rows without a valid one.
	Rand *rand.Rand
}

func NewLoader(db *gorm.DB, src Source) *Loader {
	seed := uint64(time.Now().UnixNano())
	return &Loader{DB: db, Source: src, Rand: rand.New(rand.NewPCG(seed, seed>>1))}
}

// Load clears every table and inserts the cleaned data in one transaction, so
// running it twice leaves the same rows. A missing file is skipped with a
// warning; a file that cannot be parsed aborts the load.
func (l *Loader) Load(ctx context.Context) ([]Stats, error) {
	log.Printf("Loading data from %s", l.Source)

	files := []string{ProvidersFile, ReceiversFile, ListingsFile, ClaimsFile}
	stats := make([]Stats, len(files))
	tables := make([]*table, len(files))

	g, gCtx := errgroup.WithContext(ctx)
	for i, name := range files {
		g.Go(func() error {
			t, err := l.read(gCtx, name, &stats[i])
			tables[i] = t
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Listings need the loaded providers and claims the loaded receivers, so
	// cleaning runs in file order.
	var (
		providers []models.Provider
		receivers []models.Receiver
		listings  []models.FoodListing
		claims    []models.Claim
	)
	providerIDs := map[uint]bool{}
	if t := tables[0]; t != nil {
		providers = cleanProviders(t, l.Rand, &stats[0])
		for _, p := range providers {
			providerIDs[p.ProviderID] = true
		}
	}
	receiverIDs := map[uint]bool{}
	if t := tables[1]; t != nil {
		receivers = cleanReceivers(t, l.Rand, &stats[1])
		for _, r := range receivers {
			receiverIDs[r.ReceiverID] = true
		}
	}
	if t := tables[2]; t != nil {
		listings = cleanListings(t, providerIDs, &stats[2])
	}
	if t := tables[3]; t != nil {
		claims = cleanClaims(t, receiverIDs, &stats[3])
	}

	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := database.ClearAll(tx); err != nil {
			return fmt.Errorf("clear tables: %w", err)
		}
		if err := insert(tx, providers); err != nil {
			return fmt.Errorf("insert providers: %w", err)
		}
		if err := insert(tx, receivers); err != nil {
			return fmt.Errorf("insert receivers: %w", err)
		}
		if err := insert(tx, listings); err != nil {
			return fmt.Errorf("insert listings: %w", err)
		}
		if err := insert(tx, claims); err != nil {
			return fmt.Errorf("insert claims: %w", err)
		}
		return database.ResetSequences(tx)
	})
	if err != nil {
		return nil, err
	}

	stats[0].Loaded = len(providers)
	stats[1].Loaded = len(receivers)
	stats[2].Loaded = len(listings)
	stats[3].Loaded = len(claims)
	for _, st := range stats {
		if st.Skipped {
			continue
		}
		log.Printf("Loaded %d of %d rows from %s (%d dropped)", st.Loaded, st.Read, st.File, st.Dropped)
	}
	return stats, nil
}

// read fetches and parses one file. A missing file yields a nil table.
func (l *Loader) read(ctx context.Context, name string, st *Stats) (*table, error) {
	st.File = name
	rc, err := l.Source.Open(ctx, name)
	if errors.Is(err, ErrMissing) {
		log.Printf("Warning: %s not found in %s. Skipping.", name, l.Source)
		st.Skipped = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	t, err := readTable(rc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	st.Read = len(t.rows)
	return t, nil
}

func insert[T any](tx *gorm.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(rows, batchSize).Error
}
