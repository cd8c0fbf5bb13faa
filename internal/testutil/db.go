package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/launchfee/backend/internal/entity"
)

func NewTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal("Failed to create in memory db")
	}

	if err := db.AutoMigrate(&entity.ClaimTransaction{}); err != nil {
		t.Fatal("Failed to migrate db")
	}

	return db
}
