package services

import (
	"context"
	"errors"
	"time"
)

type EventType string

const (
	EventListingCreated  EventType = "listing_created"
	EventListingUpdated  EventType = "listing_updated"
	EventListingDeleted  EventType = "listing_deleted"
	EventClaimCompleted  EventType = "claim_completed"
	EventClaimCancelled  EventType = "claim_cancelled"
	EventProviderCreated EventType = "provider_created"
	EventProviderDeleted EventType = "provider_deleted"
	EventReceiverCreated EventType = "receiver_created"
	EventReceiverDeleted EventType = "receiver_deleted"
)

// Event describes a committed mutation. Dashboards use it to refresh and
// receivers get a push when a claim assigned to them changes.
type Event struct {
	ID             string    `json:"id"`
	Type           EventType `json:"type"`
	FoodID         uint      `json:"foodId,omitempty"`
	FoodName       string    `json:"foodName,omitempty"`
	ClaimID        uint      `json:"claimId,omitempty"`
	ReceiverID     uint      `json:"receiverId,omitempty"`
	ProviderID     uint      `json:"providerId,omitempty"`
	ListingRemoved bool      `json:"listingRemoved,omitempty"`
	At             time.Time `json:"at"`
}

type Notifier interface {
	Publish(ctx context.Context, e Event) error
}

// MultiNotifier fans an event out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
