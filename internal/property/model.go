// Package property provides the rental property domain model and data access.
package property

import "time"

// DefaultRent is the monthly rent (KES) applied when a property is
// created without an explicit amount.
const DefaultRent = 20000

// Property represents a rental unit managed by the landlord.
type Property struct {
	ID          int64     `json:"id"`
	LandlordID  int64     `json:"landlord_id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	RentAmount  float64   `json:"rent_amount"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}
