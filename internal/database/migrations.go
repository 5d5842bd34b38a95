package database

import (
	"fmt"

	"github.com/chachabrian/foodshare-backend/internal/models"
	"gorm.io/gorm"
)

// RunMigrations creates the four tables with their foreign keys and check
// constraints. Providers and receivers are migrated first so the cascading
// foreign keys on food_listings and claims can be created.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Provider{},
		&models.Receiver{},
		&models.FoodListing{},
		&models.Claim{},
	)
}

// ClearAll removes every row, children first. Used by the CSV loader to make
// a load idempotent.
func ClearAll(tx *gorm.DB) error {
	for _, m := range []interface{}{&models.Claim{}, &models.FoodListing{}, &models.Receiver{}, &models.Provider{}} {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

var serialColumns = map[string]string{
	"providers":     "provider_id",
	"receivers":     "receiver_id",
	"food_listings": "food_id",
	"claims":        "claim_id",
}

// ResetSequences moves the PostgreSQL id sequences past rows inserted with
// explicit ids. SQLite needs nothing here.
func ResetSequences(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	for table, col := range serialColumns {
		q := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', '%s'), COALESCE(MAX(%s), 0) + 1, false) FROM %s", table, col, col, table)
		if err := tx.Exec(q).Error; err != nil {
			return err
		}
	}
	return nil
}
