package models

import "gorm.io/gorm"

// MigrateAll runs every table migration. Used by main, the migrator tool
// and the test harness.
func MigrateAll(db *gorm.DB) error {
	if err := MigrateUsers(db); err != nil {
		return err
	}
	if err := MigrateProducts(db); err != nil {
		return err
	}
	if err := MigrateReviews(db); err != nil {
		return err
	}
	if err := MigrateOrders(db); err != nil {
		return err
	}
	if err := MigrateWishlists(db); err != nil {
		return err
	}
	if err := MigrateSettings(db); err != nil {
		return err
	}
	return MigrateLogs(db)
}
