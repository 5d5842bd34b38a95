package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultPageSize = 25

type NewListing struct {
	ProviderID uint
	FoodName   string
	Quantity   int
	ExpiryDate time.Time
	FoodType   models.FoodType
	MealType   models.MealType
}

// ListingView is a listing joined with its provider's current details.
type ListingView struct {
	FoodID       uint      `json:"foodId"`
	FoodName     string    `json:"foodName"`
	Quantity     int       `json:"quantity"`
	ExpiryDate   time.Time `json:"expiryDate"`
	ProviderID   uint      `json:"providerId"`
	ProviderName string    `json:"providerName"`
	ProviderType string    `json:"providerType"`
	Pincode      string    `json:"pincode"`
	Contact      string    `json:"contact"`
	Location     string    `json:"location"`
	FoodType     string    `json:"foodType"`
	MealType     string    `json:"mealType"`
}

type ListingFilter struct {
	City         string
	ProviderType string
	FoodType     string
	MealType     string
	Page         int
	PageSize     int
}

type ListingPage struct {
	Items      []ListingView `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"pageSize"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"totalPages"`
}

type ListingService struct {
	*Deps
	// Pick returns an index in [0, n). Defaults to a uniform random choice.
	Pick func(n int) int
}

func NewListingService(deps *Deps) *ListingService {
	return &ListingService{Deps: deps, Pick: rand.IntN}
}

// Create inserts a listing and, when any receiver exists, a Pending claim for
// one receiver chosen uniformly at random. The returned claim is nil when no
// receiver was available.
func (s *ListingService) Create(ctx context.Context, in NewListing) (*models.FoodListing, *models.Claim, error) {
	listing, claim, err := s.create(ctx, in)
	s.Metrics.ListingMutation("create", outcome(err))
	if err != nil {
		return nil, nil, err
	}

	e := Event{Type: EventListingCreated, FoodID: listing.FoodID, FoodName: listing.FoodName, ProviderID: listing.ProviderID}
	if claim != nil {
		e.ClaimID = claim.ClaimID
		e.ReceiverID = claim.ReceiverID
	}
	s.afterCommit(ctx, e)
	return listing, claim, nil
}

func (s *ListingService) create(ctx context.Context, in NewListing) (*models.FoodListing, *models.Claim, error) {
	in.FoodName = strings.TrimSpace(in.FoodName)
	in.ExpiryDate = models.DateOf(in.ExpiryDate)
	if in.ProviderID == 0 {
		return nil, nil, invalid("providerId", "is required")
	}
	if in.FoodName == "" {
		return nil, nil, invalid("foodName", "cannot be empty")
	}
	if err := validateQuantityAndExpiry(in.Quantity, in.ExpiryDate, s.today()); err != nil {
		return nil, nil, err
	}
	if !in.FoodType.Valid() {
		return nil, nil, invalid("foodType", "must be one of Vegetarian, Non-Vegetarian, Vegan")
	}
	if !in.MealType.Valid() {
		return nil, nil, invalid("mealType", "must be one of Breakfast, Lunch, Dinner, Snacks")
	}

	var (
		listing models.FoodListing
		claim   *models.Claim
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var provider models.Provider
		if err := tx.First(&provider, in.ProviderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound("provider", in.ProviderID)
			}
			return err
		}

		listing = models.FoodListing{
			FoodName:     in.FoodName,
			Quantity:     in.Quantity,
			ExpiryDate:   in.ExpiryDate,
			ProviderID:   provider.ProviderID,
			ProviderType: provider.Type,
			Location:     provider.City,
			FoodType:     in.FoodType,
			MealType:     in.MealType,
		}
		if err := tx.Create(&listing).Error; err != nil {
			return err
		}

		var receiverIDs []uint
		if err := tx.Model(&models.Receiver{}).Order("receiver_id").Pluck("receiver_id", &receiverIDs).Error; err != nil {
			return err
		}
		if len(receiverIDs) == 0 {
			return nil
		}

		c := models.Claim{
			FoodID:     listing.FoodID,
			ReceiverID: receiverIDs[s.Pick(len(receiverIDs))],
			Status:     models.ClaimStatusPending,
		}
		if err := tx.Create(&c).Error; err != nil {
			return err
		}
		claim = &c
		return nil
	})
	if err != nil {
		return nil, nil, storageErr("create listing", err)
	}
	return &listing, claim, nil
}

// Update replaces a listing's quantity and expiry date.
func (s *ListingService) Update(ctx context.Context, foodID uint, quantity int, expiry time.Time) (*models.FoodListing, error) {
	listing, err := s.update(ctx, foodID, quantity, models.DateOf(expiry))
	s.Metrics.ListingMutation("update", outcome(err))
	if err != nil {
		return nil, err
	}
	s.afterCommit(ctx, Event{Type: EventListingUpdated, FoodID: listing.FoodID, FoodName: listing.FoodName, ProviderID: listing.ProviderID})
	return listing, nil
}

func (s *ListingService) update(ctx context.Context, foodID uint, quantity int, expiry time.Time) (*models.FoodListing, error) {
	if err := validateQuantityAndExpiry(quantity, expiry, s.today()); err != nil {
		return nil, err
	}

	var listing models.FoodListing
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := lockListing(tx, foodID)
		if err != nil {
			return err
		}
		if found == nil {
			return notFound("listing", foodID)
		}
		if err := tx.Model(found).Updates(map[string]interface{}{
			"quantity":    quantity,
			"expiry_date": expiry,
		}).Error; err != nil {
			return err
		}
		found.Quantity = quantity
		found.ExpiryDate = expiry
		listing = *found
		return nil
	})
	if err != nil {
		return nil, storageErr("update listing", err)
	}
	return &listing, nil
}

// Delete removes a listing together with every claim that references it.
func (s *ListingService) Delete(ctx context.Context, foodID uint) error {
	var listing *models.FoodListing
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		listing, err = lockListing(tx, foodID)
		if err != nil {
			return err
		}
		if listing == nil {
			return notFound("listing", foodID)
		}
		_, err = removeListing(tx, foodID, 0)
		return err
	})
	err = storageErr("delete listing", err)
	s.Metrics.ListingMutation("delete", outcome(err))
	if err != nil {
		return err
	}
	s.afterCommit(ctx, Event{Type: EventListingDeleted, FoodID: foodID, FoodName: listing.FoodName, ProviderID: listing.ProviderID})
	return nil
}

func (s *ListingService) Get(ctx context.Context, foodID uint) (*ListingView, error) {
	var views []ListingView
	if err := listingViews(s.DB.WithContext(ctx)).Where("fl.food_id = ?", foodID).Limit(1).Scan(&views).Error; err != nil {
		return nil, storageErr("get listing", err)
	}
	if len(views) == 0 {
		return nil, notFound("listing", foodID)
	}
	return &views[0], nil
}

// List returns one page of listings matching the filter, latest expiry first.
func (s *ListingService) List(ctx context.Context, f ListingFilter) (*ListingPage, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 200 {
		f.PageSize = DefaultPageSize
	}

	db := s.DB.WithContext(ctx)
	var total int64
	if err := applyListingFilter(db.Table("food_listings AS fl"), f).Count(&total).Error; err != nil {
		return nil, storageErr("count listings", err)
	}

	items := make([]ListingView, 0, f.PageSize)
	err := applyListingFilter(listingViews(db), f).
		Order("fl.expiry_date DESC").
		Order("fl.food_id").
		Limit(f.PageSize).
		Offset((f.Page - 1) * f.PageSize).
		Scan(&items).Error
	if err != nil {
		return nil, storageErr("list listings", err)
	}

	totalPages := int(total) / f.PageSize
	if int(total)%f.PageSize > 0 {
		totalPages++
	}
	return &ListingPage{Items: items, Page: f.Page, PageSize: f.PageSize, Total: total, TotalPages: totalPages}, nil
}

func listingViews(db *gorm.DB) *gorm.DB {
	return db.Table("food_listings AS fl").
		Select("fl.food_id, fl.food_name, fl.quantity, fl.expiry_date, fl.provider_id, p.name AS provider_name, " +
			"fl.provider_type, p.pincode, p.contact, fl.location, fl.food_type, fl.meal_type").
		Joins("JOIN providers p ON p.provider_id = fl.provider_id")
}

func applyListingFilter(db *gorm.DB, f ListingFilter) *gorm.DB {
	if f.City != "" {
		db = db.Where("fl.location = ?", f.City)
	}
	if f.ProviderType != "" {
		db = db.Where("fl.provider_type = ?", f.ProviderType)
	}
	if f.FoodType != "" {
		db = db.Where("fl.food_type = ?", f.FoodType)
	}
	if f.MealType != "" {
		db = db.Where("fl.meal_type = ?", f.MealType)
	}
	return db
}

func validateQuantityAndExpiry(quantity int, expiry, today time.Time) error {
	if quantity < 1 {
		return invalid("quantity", "must be at least 1")
	}
	if expiry.IsZero() {
		return invalid("expiryDate", "is required")
	}
	if expiry.Before(today) {
		return invalid("expiryDate", "cannot be in the past")
	}
	return nil
}

// lockListing loads a listing for update. It returns nil, nil when the row is gone.
func lockListing(tx *gorm.DB, foodID uint) (*models.FoodListing, error) {
	var listing models.FoodListing
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("food_id = ?", foodID).
		Take(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// removeListing deletes a listing and the claims on it, except keepClaimID.
// It returns the number of claims deleted.
func removeListing(tx *gorm.DB, foodID, keepClaimID uint) (int64, error) {
	q := tx.Where("food_id = ?", foodID)
	if keepClaimID != 0 {
		q = q.Where("claim_id <> ?", keepClaimID)
	}
	res := q.Delete(&models.Claim{})
	if res.Error != nil {
		return 0, res.Error
	}
	if err := tx.Where("food_id = ?", foodID).Delete(&models.FoodListing{}).Error; err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}
