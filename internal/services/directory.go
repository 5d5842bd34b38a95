package services

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/chachabrian/foodshare-backend/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DirectoryService manages providers and receivers.
type DirectoryService struct {
	*Deps
}

func NewDirectoryService(deps *Deps) *DirectoryService {
	return &DirectoryService{Deps: deps}
}

func (s *DirectoryService) CreateProvider(ctx context.Context, p models.Provider) (*models.Provider, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Type = strings.TrimSpace(p.Type)
	p.City = strings.TrimSpace(p.City)
	if err := requireFields(map[string]string{"name": p.Name, "type": p.Type, "city": p.City}); err != nil {
		return nil, err
	}
	p.Address = strings.TrimSpace(p.Address)
	if p.Pincode == "" {
		p.Pincode = utils.ExtractPincode(p.Address)
	}
	p.Contact = normalizeContact(p.Contact)
	p.ProviderID = 0
	if err := s.DB.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, storageErr("create provider", err)
	}
	s.afterCommit(ctx, Event{Type: EventProviderCreated, ProviderID: p.ProviderID})
	return &p, nil
}

// ListProviders returns providers ordered by name. A non-empty letter keeps
// only names starting with it.
func (s *DirectoryService) ListProviders(ctx context.Context, letter string) ([]models.Provider, error) {
	q := s.DB.WithContext(ctx).Order("name")
	if letter != "" {
		q = q.Where("name LIKE ?", initial(letter)+"%")
	}
	providers := []models.Provider{}
	if err := q.Find(&providers).Error; err != nil {
		return nil, storageErr("list providers", err)
	}
	return providers, nil
}

func (s *DirectoryService) GetProvider(ctx context.Context, id uint) (*models.Provider, error) {
	var p models.Provider
	err := s.DB.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("provider", id)
	}
	if err != nil {
		return nil, storageErr("get provider", err)
	}
	return &p, nil
}

// ProviderContactsByCity returns the contact sheet for providers in a city.
func (s *DirectoryService) ProviderContactsByCity(ctx context.Context, city string) ([]ProviderContact, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, invalid("city", "is required")
	}
	contacts := []ProviderContact{}
	err := s.DB.WithContext(ctx).Model(&models.Provider{}).
		Select("name, type, address, contact").
		Where("city = ?", city).
		Order("name").
		Scan(&contacts).Error
	if err != nil {
		return nil, storageErr("provider contacts", err)
	}
	return contacts, nil
}

// DeleteProvider removes the provider, its listings and every claim on those
// listings in one transaction.
func (s *DirectoryService) DeleteProvider(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Provider{}).Where("provider_id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return notFound("provider", id)
		}
		// Listings are locked before their claims, as the claim transitions do.
		var listingIDs []uint
		if err := tx.Model(&models.FoodListing{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("provider_id = ?", id).
			Order("food_id").
			Pluck("food_id", &listingIDs).Error; err != nil {
			return err
		}
		if len(listingIDs) > 0 {
			if err := tx.Where("food_id IN ?", listingIDs).Delete(&models.Claim{}).Error; err != nil {
				return err
			}
			if err := tx.Where("food_id IN ?", listingIDs).Delete(&models.FoodListing{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Provider{}, id).Error
	})
	if err != nil {
		return storageErr("delete provider", err)
	}
	s.afterCommit(ctx, Event{Type: EventProviderDeleted, ProviderID: id})
	return nil
}

func (s *DirectoryService) CreateReceiver(ctx context.Context, r models.Receiver) (*models.Receiver, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Type = strings.TrimSpace(r.Type)
	r.City = strings.TrimSpace(r.City)
	if err := requireFields(map[string]string{"name": r.Name, "type": r.Type, "city": r.City}); err != nil {
		return nil, err
	}
	r.Contact = normalizeContact(r.Contact)
	r.ReceiverID = 0
	if err := s.DB.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, storageErr("create receiver", err)
	}
	s.afterCommit(ctx, Event{Type: EventReceiverCreated, ReceiverID: r.ReceiverID})
	return &r, nil
}

func (s *DirectoryService) ListReceivers(ctx context.Context, city string) ([]models.Receiver, error) {
	q := s.DB.WithContext(ctx).Order("name")
	if city != "" {
		q = q.Where("city = ?", city)
	}
	receivers := []models.Receiver{}
	if err := q.Find(&receivers).Error; err != nil {
		return nil, storageErr("list receivers", err)
	}
	return receivers, nil
}

// DeleteReceiver removes the receiver; its claims go with it through the
// foreign key cascade.
func (s *DirectoryService) DeleteReceiver(ctx context.Context, id uint) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Receiver{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("receiver", id)
		}
		return nil
	})
	if err != nil {
		return storageErr("delete receiver", err)
	}
	s.afterCommit(ctx, Event{Type: EventReceiverDeleted, ReceiverID: id})
	return nil
}

// initial returns the upper-cased first character of a letter filter.
func initial(letter string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(letter))
	if r == utf8.RuneError {
		return ""
	}
	return string(unicode.ToUpper(r))
}

// normalizeContact formats ten-digit numbers and leaves anything else as typed.
func normalizeContact(contact string) string {
	contact = strings.TrimSpace(contact)
	if std, ok := utils.StandardizePhone(contact); ok {
		return std
	}
	return contact
}

func requireFields(fields map[string]string) error {
	for _, name := range []string{"name", "type", "city"} {
		if v, ok := fields[name]; ok && v == "" {
			return invalid(name, "cannot be empty")
		}
	}
	return nil
}
