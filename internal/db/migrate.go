package db

import (
	"fmt"

	"github.com/expenseshare/server/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all ledger entities.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	return conn.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Expense{},
		&models.ExpenseSplit{},
	)
}
