package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of access levels a user can hold.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole converts a stored or claimed role string into a Role.
func ParseRole(value string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(value))) {
	case RoleCustomer:
		return RoleCustomer, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", fmt.Errorf("unknown role %q", value)
	}
}

// IsAdmin reports whether the role grants catalog management.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is a customer or admin identified by phone number.
type User struct {
	BaseModel
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `gorm:"uniqueIndex;not null" json:"phoneNo"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
	Pincode   string `json:"pincode"`
	City      string `json:"city"`
	State     string `json:"state"`
	Role      Role   `gorm:"type:varchar(16);not null;default:customer" json:"role"`
}

// OTPChallenge is a single issued one-time code. Only the bcrypt hash of the
// code is stored.
type OTPChallenge struct {
	BaseModel
	UserID     uuid.UUID  `gorm:"type:uuid;index;not null" json:"userId"`
	CodeHash   string     `gorm:"not null" json:"-"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	ConsumedAt *time.Time `json:"consumedAt"`
	Attempts   int        `gorm:"not null;default:0" json:"attempts"`
}

// Live reports whether the challenge can still be redeemed.
func (c *OTPChallenge) Live(now time.Time, maxAttempts int) bool {
	if c.ConsumedAt != nil {
		return false
	}
	if !now.Before(c.ExpiresAt) {
		return false
	}
	return maxAttempts <= 0 || c.Attempts < maxAttempts
}
