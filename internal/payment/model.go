// Package payment provides the rent payment domain model and data access.
package payment

import "time"

// Status is the lifecycle state of a payment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ValidStatus returns true if s is a known payment status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Payment represents a rent payment attempt by a tenant.
// TransactionID holds the local reference until the STK push is accepted,
// then the M-Pesa CheckoutRequestID. Receipt is the M-Pesa receipt number
// set by the payment callback on completion.
type Payment struct {
	ID            int64     `json:"id"`
	TenantID      int64     `json:"tenant_id"`
	PropertyID    int64     `json:"property_id"`
	Amount        float64   `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	TransactionID string    `json:"transaction_id"`
	Receipt       string    `json:"receipt,omitempty"`
	Status        Status    `json:"status"`
	PaymentDate   time.Time `json:"payment_date"`
	PhoneNumber   string    `json:"phone_number"`

	// Denormalized display fields, populated on list queries.
	TenantName   string `json:"tenant_name,omitempty"`
	PropertyName string `json:"property_name,omitempty"`
}
