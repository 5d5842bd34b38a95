package services

import (
	"context"
	"fmt"
	"log"
	"strconv"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// ReceiverTopic is the FCM topic a receiver's devices subscribe to.
func ReceiverTopic(receiverID uint) string {
	return fmt.Sprintf("receiver-%d", receiverID)
}

// MessageSender is the part of the FCM client PushNotifier needs.
type MessageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushNotifier sends an FCM message to the receiver involved in a claim event.
// Events without a receiver are ignored. A nil Client disables pushes.
type PushNotifier struct {
	Client MessageSender
}

// NewPushNotifier initializes the Firebase Admin SDK from a service account
// file. An empty path yields a disabled notifier.
func NewPushNotifier(ctx context.Context, serviceAccountPath string) (*PushNotifier, error) {
	if serviceAccountPath == "" {
		log.Println("Warning: FIREBASE_SERVICE_ACCOUNT_PATH not set. Push notifications will be disabled.")
		return &PushNotifier{}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting messaging client: %v", err)
	}

	log.Println("Firebase Cloud Messaging initialized successfully")
	return &PushNotifier{Client: client}, nil
}

func (p *PushNotifier) Publish(ctx context.Context, e Event) error {
	if p == nil || p.Client == nil {
		return nil
	}
	msg := pushMessage(e)
	if msg == nil {
		return nil
	}
	if _, err := p.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("error sending push to %s: %v", msg.Topic, err)
	}
	return nil
}

// pushMessage builds the notification for events a receiver cares about, or
// returns nil.
func pushMessage(e Event) *messaging.Message {
	if e.ReceiverID == 0 {
		return nil
	}

	var title, body string
	switch e.Type {
	case EventListingCreated:
		title = "New food assigned"
		body = fmt.Sprintf("%s is waiting for pickup", e.FoodName)
	case EventClaimCompleted:
		title = "Claim completed"
		body = fmt.Sprintf("Claim #%d has been marked as collected", e.ClaimID)
	case EventClaimCancelled:
		title = "Claim cancelled"
		body = fmt.Sprintf("Claim #%d was cancelled", e.ClaimID)
	default:
		return nil
	}

	return &messaging.Message{
		Notification: &messaging.Notification{Title: title, Body: body},
		Data: map[string]string{
			"type":    string(e.Type),
			"claimId": strconv.FormatUint(uint64(e.ClaimID), 10),
			"foodId":  strconv.FormatUint(uint64(e.FoodID), 10),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID:    "foodshare_claims",
				DefaultSound: true,
			},
		},
		Topic: ReceiverTopic(e.ReceiverID),
	}
}
