package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/database"
	"github.com/example/bazaar/internal/dbtest"
	"github.com/example/bazaar/internal/models"
)

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm duplicate", gorm.ErrDuplicatedKey, true},
		{"wrapped gorm duplicate", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"pq unique", &pq.Error{Code: "23505"}, true},
		{"pq foreign key", &pq.Error{Code: "23503"}, false},
		{"message", errors.New("UNIQUE constraint failed: users.phone"), true},
		{"other", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := database.IsUniqueViolation(tt.err); got != tt.want {
				t.Fatalf("IsUniqueViolation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestMigrateCreatesUniquePhone(t *testing.T) {
	db := dbtest.Open(t)

	if err := database.Migrate(db); err != nil {
		t.Fatalf("second migrate should be a no-op: %v", err)
	}

	if err := db.Create(&models.User{Phone: "9999999999", Role: models.RoleCustomer}).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	err := db.Create(&models.User{Phone: "9999999999", Role: models.RoleCustomer}).Error
	if !database.IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}
}
