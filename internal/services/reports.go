package services

import (
	"context"
	"log"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"gorm.io/gorm"
)

type KPI struct {
	TotalProviders    int64   `json:"totalProviders"`
	TotalReceivers    int64   `json:"totalReceivers"`
	AvailableQuantity int64   `json:"availableQuantity"`
	CompletionRate    float64 `json:"completionRate"`
}

type CityCount struct {
	City              string `json:"city"`
	NumberOfProviders int64  `json:"numberOfProviders"`
	NumberOfReceivers int64  `json:"numberOfReceivers"`
}

type ProviderTypeQuantity struct {
	ProviderType         string `json:"providerType"`
	TotalQuantityDonated int64  `json:"totalQuantityDonated"`
}

type ProviderContact struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Address string `json:"address"`
	Contact string `json:"contact"`
}

type ReceiverQuantity struct {
	ReceiverName         string `json:"receiverName"`
	ReceiverType         string `json:"receiverType"`
	TotalQuantityClaimed int64  `json:"totalQuantityClaimed"`
}

type LocationCount struct {
	Location         string `json:"location"`
	NumberOfListings int64  `json:"numberOfListings"`
}

type FoodTypeCount struct {
	FoodType         string `json:"foodType"`
	NumberOfListings int64  `json:"numberOfListings"`
}

type FoodClaimCount struct {
	FoodName       string `json:"foodName"`
	NumberOfClaims int64  `json:"numberOfClaims"`
}

type ProviderClaimCount struct {
	ProviderName     string `json:"providerName"`
	SuccessfulClaims int64  `json:"successfulClaims"`
}

type StatusShare struct {
	Status      string  `json:"status"`
	TotalClaims int64   `json:"totalClaims"`
	Percentage  float64 `json:"percentage"`
}

type MealTypeCount struct {
	MealType       string `json:"mealType"`
	NumberOfClaims int64  `json:"numberOfClaims"`
}

type ProviderDonation struct {
	Name                 string `json:"name"`
	Type                 string `json:"type"`
	TotalQuantityDonated int64  `json:"totalQuantityDonated"`
}

type ExpiringItem struct {
	FoodName     string    `json:"foodName"`
	Quantity     int       `json:"quantity"`
	ExpiryDate   time.Time `json:"expiryDate"`
	Location     string    `json:"location"`
	ProviderName string    `json:"providerName"`
	Pincode      string    `json:"pincode"`
	Contact      string    `json:"contact"`
}

type MonthCount struct {
	Month          string `json:"month"`
	NumberOfClaims int64  `json:"numberOfClaims"`
}

type FilterOptions struct {
	Cities        []string `json:"cities"`
	ProviderTypes []string `json:"providerTypes"`
	FoodTypes     []string `json:"foodTypes"`
	MealTypes     []string `json:"mealTypes"`
}

// ExpiryWindowDays is how far ahead NearingExpiry looks.
const ExpiryWindowDays = 3

// ReportService runs the fixed read-only dashboard queries. Results go through
// the ReportCache when one is configured.
type ReportService struct {
	*Deps
}

func NewReportService(deps *Deps) *ReportService {
	return &ReportService{Deps: deps}
}

// ReportNames lists the reports reachable through Run.
var ReportNames = []string{
	"providers-receivers-by-city",
	"top-provider-types",
	"provider-contacts",
	"top-receivers",
	"available-quantity",
	"listings-by-city",
	"food-types",
	"claims-per-food",
	"top-providers-completed",
	"claim-status",
	"avg-quantity-per-receiver",
	"meal-types-claimed",
	"donated-by-provider",
	"nearing-expiry",
	"claims-trend",
}

// Run dispatches a report by name. params carries the optional "letter" and
// "city" arguments.
func (s *ReportService) Run(ctx context.Context, name string, params map[string]string) (interface{}, error) {
	switch name {
	case "kpi":
		return s.KPI(ctx)
	case "providers-receivers-by-city":
		return s.ProvidersReceiversByCity(ctx, params["letter"])
	case "top-provider-types":
		return s.TopProviderTypes(ctx)
	case "provider-contacts":
		if params["city"] == "" {
			return nil, invalid("city", "is required")
		}
		return s.ProviderContacts(ctx, params["city"])
	case "top-receivers":
		return s.TopReceivers(ctx)
	case "available-quantity":
		q, err := s.AvailableQuantity(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"totalAvailableQuantity": q}, nil
	case "listings-by-city":
		return s.ListingsByCity(ctx)
	case "food-types":
		return s.CommonFoodTypes(ctx)
	case "claims-per-food":
		return s.ClaimsPerFood(ctx)
	case "top-providers-completed":
		return s.TopProvidersByCompletedClaims(ctx)
	case "claim-status":
		return s.ClaimStatusDistribution(ctx)
	case "avg-quantity-per-receiver":
		avg, err := s.AverageQuantityPerReceiver(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]float64{"averageQuantityPerReceiver": avg}, nil
	case "meal-types-claimed":
		return s.MostClaimedMealTypes(ctx)
	case "donated-by-provider":
		return s.DonatedByProvider(ctx)
	case "nearing-expiry":
		return s.NearingExpiry(ctx)
	case "claims-trend":
		return s.ClaimsTrend(ctx)
	}
	return nil, &NotFoundError{Entity: "report", Key: name}
}

func (s *ReportService) KPI(ctx context.Context) (*KPI, error) {
	today := s.today()
	var k KPI
	err := s.cached(ctx, "kpi", cacheKey("kpi", today.Format(models.DateLayout)), &k, func(db *gorm.DB) error {
		if err := db.Model(&models.Provider{}).Count(&k.TotalProviders).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Receiver{}).Count(&k.TotalReceivers).Error; err != nil {
			return err
		}
		if err := db.Model(&models.FoodListing{}).
			Select("COALESCE(SUM(quantity), 0)").
			Where("expiry_date >= ?", today).
			Scan(&k.AvailableQuantity).Error; err != nil {
			return err
		}
		var total, completed int64
		if err := db.Model(&models.Claim{}).Count(&total).Error; err != nil {
			return err
		}
		if err := db.Model(&models.Claim{}).Where("status = ?", models.ClaimStatusCompleted).Count(&completed).Error; err != nil {
			return err
		}
		k.CompletionRate = percentage(completed, total)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// ProvidersReceiversByCity counts providers and receivers per provider city.
func (s *ReportService) ProvidersReceiversByCity(ctx context.Context, letter string) ([]CityCount, error) {
	letter = initial(letter)
	rows := []CityCount{}
	err := s.cached(ctx, "providers-receivers-by-city", cacheKey("providers-receivers-by-city", letter), &rows, func(db *gorm.DB) error {
		q := `SELECT p.city,
			COUNT(DISTINCT p.provider_id) AS number_of_providers,
			(SELECT COUNT(DISTINCT r.receiver_id) FROM receivers r WHERE r.city = p.city) AS number_of_receivers
		FROM providers p`
		var args []interface{}
		if letter != "" {
			q += ` WHERE p.city LIKE ?`
			args = append(args, letter+"%")
		}
		q += ` GROUP BY p.city ORDER BY number_of_providers DESC, number_of_receivers DESC, p.city`
		return db.Raw(q, args...).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportService) TopProviderTypes(ctx context.Context) ([]ProviderTypeQuantity, error) {
	rows := []ProviderTypeQuantity{}
	err := s.cached(ctx, "top-provider-types", "top-provider-types", &rows, func(db *gorm.DB) error {
		return db.Raw(`SELECT provider_type, SUM(quantity) AS total_quantity_donated
			FROM food_listings
			GROUP BY provider_type
			ORDER BY total_quantity_donated DESC, provider_type`).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportService) ProviderContacts(ctx context.Context, city string) ([]ProviderContact, error) {
	rows := []ProviderContact{}
	err := s.cached(ctx, "provider-contacts", cacheKey("provider-contacts", city), &rows, func(db *gorm.DB) error {
		return db.Model(&models.Provider{}).
			Select("name, type, address, contact").
			Where("city = ?", city).
			Order("name").
			Scan(&rows).Error
	})
	return rows, err
}

// TopReceivers ranks receivers by the quantity of their completed claims whose
// listing is still on record.
func (s *ReportService) TopReceivers(ctx context.Context) ([]ReceiverQuantity, error) {
	rows := []ReceiverQuantity{}
	err := s.cached(ctx, "top-receivers", "top-receivers", &rows, func(db *gorm.DB) error {
		return db.Raw(`SELECT r.name AS receiver_name, r.type AS receiver_type, SUM(fl.quantity) AS total_quantity_claimed
			FROM claims c
			JOIN food_listings fl ON c.food_id = fl.food_id
			JOIN receivers r ON c.receiver_id = r.receiver_id
			WHERE c.status = ?
			GROUP BY r.receiver_id, r.name, r.type
			ORDER BY total_quantity_claimed DESC
			LIMIT 10`, models.ClaimStatusCompleted).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportService) AvailableQuantity(ctx context.Context) (int64, error) {
	today := s.today()
	var total int64
	err := s.cached(ctx, "available-quantity", cacheKey("available-quantity", today.Format(models.DateLayout)), &total, func(db *gorm.DB) error {
		return db.Model(&models.FoodListing{}).
			Select("COALESCE(SUM(quantity), 0)").
			Where("expiry_date >= ?", today).
			Scan(&total).Error
	})
	return total, err
}

func (s *ReportService) ListingsByCity(ctx context.Context) ([]LocationCount, error) {
	today := s.today()
	rows := []LocationCount{}
	err := s.cached(ctx, "listings-by-city", cacheKey("listings-by-city", today.Format(models.DateLayout)), &rows, func(db *gorm.DB) error {
		return db.Raw(`SELECT location, COUNT(food_id) AS number_of_listings
			FROM food_listings
			WHERE expiry_date >= ? AND quantity > 0
			GROUP BY location
			ORDER BY number_of_listings DESC, location`, today).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportService) CommonFoodTypes(ctx context.Context) ([]FoodTypeCount, error) {
	today := s.today()
	rows := []FoodTypeCount{}
	err := s.cached(ctx, "food-types", cacheKey("food-types", today.Format(models.DateLayout)), &rows, func(db *gorm.DB) error {
		return db.Raw(`SELECT food_type, COUNT(food_id) AS number_of_listings
			FROM food_listings
			WHERE expiry_date >= ? AND quantity > 0
			GROUP BY food_type
			ORDER BY number_of_listings DESC, food_type`, today).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportService) ClaimsPerFood(ctx context.Context) ([]FoodClaimCount, error) {
	rows := []FoodClaimCount{}
	err := s.cached(ctx, "claims-per-food", "claims-per-food", &rows, func(db *gorm.DB) error {
		return db.Raw(`SELECT fl.food_name, COUNT(c.claim_id) AS number_of_claims
			FROM claims c
			JOIN food_listings fl ON c.food_id = fl.food_id
			GROUP BY fl.food_name
			ORDER BY number_of_claims DESC, fl.food_name`).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportService) TopProvidersByCompletedClaims(ctx context.Context) ([]ProviderClaimCount, error) {
	rows := []ProviderClaimCount{}
	err := s.cached(ctx, "top-providers-completed", "top-providers-completed", &rows, func(db *gorm.DB) error {
		return db.Raw(`SELECT p.name AS provider_name, COUNT(c.claim_id) AS successful_claims
			FROM claims c
			JOIN food_listings fl ON c.food_id = fl.food_id
			JOIN providers p ON fl.provider_id = p.provider_id
			WHERE c.status = ?
			GROUP BY p.name
			ORDER BY successful_claims DESC, p.name
			LIMIT 10`, models.ClaimStatusCompleted).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportService) ClaimStatusDistribution(ctx context.Context) ([]StatusShare, error) {
	rows := []StatusShare{}
	err := s.cached(ctx, "claim-status", "claim-status", &rows, func(db *gorm.DB) error {
		if err := db.Model(&models.Claim{}).
			Select("status, COUNT(claim_id) AS total_claims").
			Group("status").
			Order("status").
			Scan(&rows).Error; err != nil {
			return err
		}
		var total int64
		for _, r := range rows {
			total += r.TotalClaims
		}
		for i := range rows {
			rows[i].Percentage = percentage(rows[i].TotalClaims, total)
		}
		return nil
	})
	return rows, err
}

func (s *ReportService) AverageQuantityPerReceiver(ctx context.Context) (float64, error) {
	var avg float64
	err := s.cached(ctx, "avg-quantity-per-receiver", "avg-quantity-per-receiver", &avg, func(db *gorm.DB) error {
		return db.Raw(`SELECT COALESCE(AVG(total_quantity), 0) FROM (
				SELECT c.receiver_id, SUM(fl.quantity) AS total_quantity
				FROM claims c
				JOIN food_listings fl ON c.food_id = fl.food_id
				WHERE c.status = ?
				GROUP BY c.receiver_id
			) per_receiver`, models.ClaimStatusCompleted).Scan(&avg).Error
	})
	return round2(avg), err
}

func (s *ReportService) MostClaimedMealTypes(ctx context.Context) ([]MealTypeCount, error) {
	rows := []MealTypeCount{}
	err := s.cached(ctx, "meal-types-claimed", "meal-types-claimed", &rows, func(db *gorm.DB) error {
		return db.Raw(`SELECT fl.meal_type, COUNT(c.claim_id) AS number_of_claims
			FROM claims c
			JOIN food_listings fl ON c.food_id = fl.food_id
			WHERE c.status = ?
			GROUP BY fl.meal_type
			ORDER BY number_of_claims DESC, fl.meal_type`, models.ClaimStatusCompleted).Scan(&rows).Error
	})
	return rows, err
}

func (s *ReportService) DonatedByProvider(ctx context.Context) ([]ProviderDonation, error) {
	rows := []ProviderDonation{}
	err := s.cached(ctx, "donated-by-provider", "donated-by-provider", &rows, func(db *gorm.DB) error {
		return db.Raw(`SELECT p.name, p.type, SUM(fl.quantity) AS total_quantity_donated
			FROM providers p
			JOIN food_listings fl ON p.provider_id = fl.provider_id
			GROUP BY p.provider_id, p.name, p.type
			ORDER BY total_quantity_donated DESC, p.name`).Scan(&rows).Error
	})
	return rows, err
}

// NearingExpiry lists listings expiring between today and ExpiryWindowDays
// from now, soonest first.
func (s *ReportService) NearingExpiry(ctx context.Context) ([]ExpiringItem, error) {
	today := s.today()
	until := today.AddDate(0, 0, ExpiryWindowDays)
	rows := []ExpiringItem{}
	err := s.cached(ctx, "nearing-expiry", cacheKey("nearing-expiry", today.Format(models.DateLayout)), &rows, func(db *gorm.DB) error {
		return db.Table("food_listings AS fl").
			Select("fl.food_name, fl.quantity, fl.expiry_date, fl.location, p.name AS provider_name, p.pincode, p.contact").
			Joins("JOIN providers p ON fl.provider_id = p.provider_id").
			Where("fl.expiry_date BETWEEN ? AND ?", today, until).
			Where("fl.quantity > 0").
			Order("fl.expiry_date ASC").
			Order("fl.food_id").
			Scan(&rows).Error
	})
	return rows, err
}

// ClaimsTrend counts claims per calendar month (YYYY-MM) of their timestamp.
// Bucketing happens here because the month functions differ between SQLite
// and PostgreSQL.
func (s *ReportService) ClaimsTrend(ctx context.Context) ([]MonthCount, error) {
	rows := []MonthCount{}
	err := s.cached(ctx, "claims-trend", "claims-trend", &rows, func(db *gorm.DB) error {
		var stamps []time.Time
		if err := db.Model(&models.Claim{}).Pluck("timestamp", &stamps).Error; err != nil {
			return err
		}
		counts := map[string]int64{}
		for _, ts := range stamps {
			counts[ts.UTC().Format("2006-01")]++
		}
		rows = rows[:0]
		for month, n := range counts {
			rows = append(rows, MonthCount{Month: month, NumberOfClaims: n})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Month < rows[j].Month })
		return nil
	})
	return rows, err
}

// Filters returns the option lists for the dashboard filters. A non-empty
// letter restricts cities to those starting with it.
func (s *ReportService) Filters(ctx context.Context, letter string) (*FilterOptions, error) {
	letter = initial(letter)
	var f FilterOptions
	err := s.cached(ctx, "filters", cacheKey("filters", letter), &f, func(db *gorm.DB) error {
		cities := db.Model(&models.Provider{}).Distinct("city").Order("city")
		if letter != "" {
			cities = cities.Where("city LIKE ?", letter+"%")
		}
		if err := cities.Pluck("city", &f.Cities).Error; err != nil {
			return err
		}
		if err := db.Model(&models.FoodListing{}).Distinct("provider_type").Order("provider_type").Pluck("provider_type", &f.ProviderTypes).Error; err != nil {
			return err
		}
		if err := db.Model(&models.FoodListing{}).Distinct("food_type").Order("food_type").Pluck("food_type", &f.FoodTypes).Error; err != nil {
			return err
		}
		return db.Model(&models.FoodListing{}).Distinct("meal_type").Order("meal_type").Pluck("meal_type", &f.MealTypes).Error
	})
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// cached serves dest from the cache or runs the query and stores the result.
// Cache failures degrade to a direct query.
func (s *ReportService) cached(ctx context.Context, report, key string, dest interface{}, run func(db *gorm.DB) error) error {
	if s.Cache != nil {
		ok, err := s.Cache.Get(ctx, key, dest)
		switch {
		case err != nil:
			s.Metrics.CacheLookup("error")
			log.Printf("Report cache read failed for %s: %v", key, err)
		case ok:
			s.Metrics.CacheLookup("hit")
			return nil
		default:
			s.Metrics.CacheLookup("miss")
		}
	}

	started := time.Now()
	if err := run(s.DB.WithContext(ctx)); err != nil {
		return storageErr("report "+report, err)
	}
	s.Metrics.ReportQuery(report, started)

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, dest); err != nil {
			log.Printf("Report cache write failed for %s: %v", key, err)
		}
	}
	return nil
}

func cacheKey(name string, params ...string) string {
	if len(params) == 0 {
		return name
	}
	return name + ":" + strings.Join(params, ":")
}

func percentage(part, total int64) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(part) * 100 / float64(total))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
