// Package dashboard aggregates view state for the landlord and tenant dashboards.
package dashboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/nyumba-app/nyumba/internal/payment"
	"github.com/nyumba-app/nyumba/internal/property"
	"github.com/nyumba-app/nyumba/internal/user"
)

// Rent is due on the 5th of each month.
const rentDueDay = 5

// LandlordSummary is the aggregate shown on the landlord dashboard.
type LandlordSummary struct {
	TenantCount    int                `json:"tenant_count"`
	MaxTenants     int                `json:"max_tenants"`
	MonthlyRevenue float64            `json:"monthly_revenue"`
	PropertyCount  int                `json:"property_count"`
	Payments       []*payment.Payment `json:"payments"`
}

// TenantSummary is the aggregate shown on the tenant dashboard.
type TenantSummary struct {
	RentAmount  float64            `json:"rent_amount"`
	DueDate     time.Time          `json:"due_date"`
	DaysOverdue int                `json:"days_overdue"`
	LastStatus  payment.Status     `json:"last_status,omitempty"`
	Payments    []*payment.Payment `json:"payments"`
}

// Service builds dashboard summaries from the domain repositories.
type Service struct {
	users      *user.Store
	properties *property.Repository
	payments   *payment.Repository

	// Overridable for tests.
	now func() time.Time
}

// NewService creates a dashboard service.
func NewService(users *user.Store, properties *property.Repository, payments *payment.Repository) *Service {
	return &Service{
		users:      users,
		properties: properties,
		payments:   payments,
		now:        time.Now,
	}
}

// Landlord assembles the landlord dashboard summary. The tenant count and
// payment list are independent queries and run concurrently.
func (s *Service) Landlord(landlordID int64) (*LandlordSummary, error) {
	var (
		wg          sync.WaitGroup
		tenantCount int
		payments    []*payment.Payment
		countErr    error
		listErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		tenantCount, countErr = s.users.CountTenants()
	}()
	go func() {
		defer wg.Done()
		payments, listErr = s.payments.ListForLandlord(landlordID)
	}()
	wg.Wait()

	if countErr != nil {
		return nil, fmt.Errorf("counting tenants: %w", countErr)
	}
	if listErr != nil {
		return nil, fmt.Errorf("listing payments: %w", listErr)
	}

	revenue, err := s.payments.MonthlyRevenue(landlordID, s.now())
	if err != nil {
		return nil, fmt.Errorf("monthly revenue: %w", err)
	}

	propertyCount, err := s.properties.Count(landlordID)
	if err != nil {
		return nil, fmt.Errorf("counting properties: %w", err)
	}

	return &LandlordSummary{
		TenantCount:    tenantCount,
		MaxTenants:     user.MaxTenants,
		MonthlyRevenue: revenue,
		PropertyCount:  propertyCount,
		Payments:       payments,
	}, nil
}

// Tenant assembles the tenant dashboard summary. Rent falls back to the
// standard amount when the tenant has no payment history to tie them to a
// property.
func (s *Service) Tenant(tenantID int64) (*TenantSummary, error) {
	payments, err := s.payments.ListForTenant(tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}

	rent := float64(property.DefaultRent)
	var lastStatus payment.Status
	if len(payments) > 0 {
		lastStatus = payments[0].Status
		if prop, err := s.properties.GetByID(payments[0].PropertyID); err == nil {
			rent = prop.RentAmount
		}
	}

	now := s.now()
	due := time.Date(now.Year(), now.Month(), rentDueDay, 0, 0, 0, 0, now.Location())

	overdue := 0
	if now.After(due) && !paidThisMonth(payments, now) {
		overdue = int(now.Sub(due).Hours() / 24)
	}

	return &TenantSummary{
		RentAmount:  rent,
		DueDate:     due,
		DaysOverdue: overdue,
		LastStatus:  lastStatus,
		Payments:    payments,
	}, nil
}

// paidThisMonth reports whether a completed payment falls in the month
// containing now. Payment dates come back from SQLite in UTC, so the
// comparison is done in UTC.
func paidThisMonth(payments []*payment.Payment, now time.Time) bool {
	now = now.UTC()
	for _, p := range payments {
		if p.Status != payment.StatusCompleted {
			continue
		}
		d := p.PaymentDate.UTC()
		if d.Year() == now.Year() && d.Month() == now.Month() {
			return true
		}
	}
	return false
}
