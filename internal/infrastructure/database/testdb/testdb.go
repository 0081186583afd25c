// Package testdb provides an in-memory sqlite database for repository and
// usecase tests. It lives in its own package, below the repository layer,
// so those packages' tests can use it without an import cycle.
package testdb

import (
	"github.com/designmart/payment-service/internal/domain/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New opens an in-memory sqlite database with the full schema migrated
func New() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, err
	}

	// A pooled second connection would see an empty in-memory database
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&model.Gateway{},
		&model.Payment{},
		&model.Wallet{},
		&model.WalletTransaction{},
		&model.Commission{},
		&model.WebhookEvent{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
