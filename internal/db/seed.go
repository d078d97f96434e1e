package db

import (
	"fmt"

	"github.com/expenseshare/server/internal/models"
	"github.com/expenseshare/server/internal/security"
	"gorm.io/gorm"
)

// demo accounts created on an empty database when seeding is enabled.
var demoUsers = []struct {
	name    string
	email   string
	isAdmin bool
}{
	{"admin1", "admin1@expense.com", true},
	{"Aman", "aman@expense.com", false},
	{"Amit", "amit@expense.com", false},
	{"Akash", "akash@expense.com", false},
}

// demoPassword is shared by all seeded accounts.
const demoPassword = "changeme"

// SeedDemoUsers inserts demo accounts when the users table is empty.
func SeedDemoUsers(conn *gorm.DB) error {
	var count int64
	if errCount := conn.Model(&models.User{}).Count(&count).Error; errCount != nil {
		return fmt.Errorf("db: count users: %w", errCount)
	}
	if count > 0 {
		return nil
	}

	hash, errHash := security.HashPassword(demoPassword)
	if errHash != nil {
		return fmt.Errorf("db: hash demo password: %w", errHash)
	}

	users := make([]models.User, 0, len(demoUsers))
	for _, demo := range demoUsers {
		users = append(users, models.User{
			Name:             demo.name,
			EmailID:          demo.email,
			Password:         hash,
			AvailableBalance: 50000,
			IsAdmin:          demo.isAdmin,
		})
	}
	if errCreate := conn.Create(&users).Error; errCreate != nil {
		return fmt.Errorf("db: seed users: %w", errCreate)
	}
	return nil
}
