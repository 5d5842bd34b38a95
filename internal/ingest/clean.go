package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/chachabrian/foodshare-backend/pkg/utils"
)

var (
	dateLayouts = []string{
		models.DateLayout,
		"2006-01-02 15:04:05",
		"1/2/2006",
		"01/02/2006",
		time.RFC3339,
	}
	timestampLayouts = []string{
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02T15:04:05",
		time.RFC3339,
		"1/2/2006 15:04",
		"1/2/2006 15:04:05",
		models.DateLayout,
	}
)

// table is a CSV file with normalized headers and trimmed cells.
type table struct {
	header map[string]int
	rows   [][]string
}

func (t *table) get(row []string, col string) string {
	i, ok := t.header[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// normalizeHeader turns "Provider ID " into "provider_id".
func normalizeHeader(h string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), " ", "_"))
}

func readTable(r io.Reader) (*table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}

	t := &table{header: make(map[string]int, len(records[0]))}
	for i, h := range records[0] {
		t.header[normalizeHeader(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	for _, rec := range records[1:] {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

func parseWith(layouts []string, s string) (time.Time, bool) {
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseID(s string) (uint, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func cleanContact(raw string, rng *rand.Rand) string {
	if phone, ok := utils.StandardizePhone(raw); ok {
		return phone
	}
	return utils.RandomPhone(rng)
}

// Stats counts what happened to one file's rows.
type Stats struct {
	File    string `json:"file"`
	Read    int    `json:"read"`
	Loaded  int    `json:"loaded"`
	Dropped int    `json:"dropped"`
	Skipped bool   `json:"skipped"`
}

func cleanProviders(t *table, rng *rand.Rand, st *Stats) []models.Provider {
	seen := map[uint]bool{}
	var out []models.Provider
	for _, row := range t.rows {
		id, ok := parseID(t.get(row, "provider_id"))
		if !ok || seen[id] {
			st.Dropped++
			continue
		}
		seen[id] = true
		address := t.get(row, "address")
		out = append(out, models.Provider{
			ProviderID: id,
			Name:       t.get(row, "name"),
			Type:       t.get(row, "type"),
			Address:    address,
			City:       t.get(row, "city"),
			Contact:    cleanContact(t.get(row, "contact"), rng),
			Pincode:    utils.ExtractPincode(address),
		})
	}
	return out
}

func cleanReceivers(t *table, rng *rand.Rand, st *Stats) []models.Receiver {
	seen := map[uint]bool{}
	var out []models.Receiver
	for _, row := range t.rows {
		id, ok := parseID(t.get(row, "receiver_id"))
		if !ok || seen[id] {
			st.Dropped++
			continue
		}
		seen[id] = true
		out = append(out, models.Receiver{
			ReceiverID: id,
			Name:       t.get(row, "name"),
			Type:       t.get(row, "type"),
			City:       t.get(row, "city"),
			Contact:    cleanContact(t.get(row, "contact"), rng),
			Pincode:    utils.ExtractPincode(t.get(row, "address")),
		})
	}
	return out
}

// cleanListings drops rows with a bad expiry date, a non-positive quantity or
// a provider that was not loaded.
func cleanListings(t *table, providers map[uint]bool, st *Stats) []models.FoodListing {
	seen := map[uint]bool{}
	var out []models.FoodListing
	for _, row := range t.rows {
		id, ok := parseID(t.get(row, "food_id"))
		if !ok || seen[id] {
			st.Dropped++
			continue
		}
		expiry, ok := parseWith(dateLayouts, t.get(row, "expiry_date"))
		if !ok {
			st.Dropped++
			continue
		}
		qty, err := strconv.Atoi(t.get(row, "quantity"))
		if err != nil || qty <= 0 {
			st.Dropped++
			continue
		}
		providerID, ok := parseID(t.get(row, "provider_id"))
		if !ok || !providers[providerID] {
			st.Dropped++
			continue
		}
		seen[id] = true
		out = append(out, models.FoodListing{
			FoodID:       id,
			FoodName:     t.get(row, "food_name"),
			Quantity:     qty,
			ExpiryDate:   models.DateOf(expiry),
			ProviderID:   providerID,
			ProviderType: t.get(row, "provider_type"),
			Location:     t.get(row, "location"),
			FoodType:     models.FoodType(t.get(row, "food_type")),
			MealType:     models.MealType(t.get(row, "meal_type")),
		})
	}
	return out
}

// cleanClaims drops rows with a bad timestamp, an unknown status or a receiver
// that was not loaded. food_id is kept as-is since claims may outlive their
// listing.
func cleanClaims(t *table, receivers map[uint]bool, st *Stats) []models.Claim {
	seen := map[uint]bool{}
	var out []models.Claim
	for _, row := range t.rows {
		id, ok := parseID(t.get(row, "claim_id"))
		if !ok || seen[id] {
			st.Dropped++
			continue
		}
		ts, ok := parseWith(timestampLayouts, t.get(row, "timestamp"))
		if !ok {
			st.Dropped++
			continue
		}
		status := models.ClaimStatus(t.get(row, "status"))
		if !status.Valid() {
			st.Dropped++
			continue
		}
		foodID, okFood := parseID(t.get(row, "food_id"))
		receiverID, okReceiver := parseID(t.get(row, "receiver_id"))
		if !okFood || !okReceiver || !receivers[receiverID] {
			st.Dropped++
			continue
		}
		seen[id] = true
		out = append(out, models.Claim{
			ClaimID:    id,
			FoodID:     foodID,
			ReceiverID: receiverID,
			Status:     status,
			Timestamp:  ts.UTC(),
		})
	}
	return out
}
