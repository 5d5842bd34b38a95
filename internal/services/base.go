package services

import (
	"context"
	"log"
	"time"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"github.com/chachabrian/foodshare-backend/internal/observability"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Deps are the collaborators shared by every service. DB is required; the
// rest may be left nil.
type Deps struct {
	DB       *gorm.DB
	Cache    ReportCache
	Notifier Notifier
	Metrics  *observability.Metrics
	Location *time.Location
	Now      func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// today is the current calendar date in the configured zone, stored form.
func (d *Deps) today() time.Time {
	now := d.now()
	if d.Location != nil {
		now = now.In(d.Location)
	}
	return models.DateOf(now)
}

// afterCommit invalidates cached reports and publishes the events. The
// mutation has already committed, so failures are logged rather than returned.
func (d *Deps) afterCommit(ctx context.Context, events ...Event) {
	if d.Cache != nil {
		if err := d.Cache.Invalidate(ctx); err != nil {
			log.Printf("Failed to invalidate report cache: %v", err)
		}
	}
	if d.Notifier == nil {
		return
	}
	for _, e := range events {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.At.IsZero() {
			e.At = d.now()
		}
		if err := d.Notifier.Publish(ctx, e); err != nil {
			log.Printf("Failed to publish %s event: %v", e.Type, err)
		}
	}
}

// outcome labels an operation result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsNotFound(err):
		return "not_found"
	case IsValidation(err):
		return "invalid"
	default:
		return "error"
	}
}
