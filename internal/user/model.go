// Package user provides the user domain model and data access.
package user

import "time"

// Role identifies whether a user is the landlord or a tenant.
type Role string

const (
	RoleLandlord Role = "landlord"
	RoleTenant   Role = "tenant"
)

// ValidRole returns true if r is a known role.
func ValidRole(r string) bool {
	switch Role(r) {
	case RoleLandlord, RoleTenant:
		return true
	}
	return false
}

// MaxTenants is the maximum number of tenant accounts the system allows.
const MaxTenants = 15

// User represents a landlord or tenant account.
// The password hash never leaves the package through JSON.
type User struct {
	ID          int64     `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	PhoneNumber string    `json:"phone_number"`
	HouseNumber string    `json:"house_number,omitempty"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`

	passwordHash string
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsLandlord returns true for the landlord account.
func (u *User) IsLandlord() bool {
	return u.Role == RoleLandlord
}
