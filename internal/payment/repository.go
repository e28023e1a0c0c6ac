package payment

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a payment does not exist.
var ErrNotFound = errors.New("payment not found")

// Repository provides data access for payments.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a payment repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `p.id, p.tenant_id, p.property_id, p.amount, p.payment_method,
	p.transaction_id, p.receipt, p.status, p.payment_date, p.phone_number,
	u.first_name || ' ' || u.last_name, pr.name`

const baseQuery = `SELECT ` + selectColumns + `
	FROM payments p
	JOIN users u ON u.id = p.tenant_id
	JOIN properties pr ON pr.id = p.property_id`

// Insert creates a pending payment with a fresh local transaction reference.
func (r *Repository) Insert(p *Payment) (*Payment, error) {
	if p.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}
	if p.PaymentMethod == "" {
		p.PaymentMethod = "mpesa"
	}
	if p.TransactionID == "" {
		p.TransactionID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = StatusPending
	}

	result, err := r.db.Exec(
		`INSERT INTO payments (tenant_id, property_id, amount, payment_method, transaction_id, status, phone_number)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.TenantID, p.PropertyID, p.Amount, p.PaymentMethod, p.TransactionID, string(p.Status), p.PhoneNumber,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(id)
}

// GetByID returns a payment by its ID.
func (r *Repository) GetByID(id int64) (*Payment, error) {
	row := r.db.QueryRow(baseQuery+" WHERE p.id = ?", id)

	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying payment %d: %w", id, err)
	}
	return p, nil
}

// GetByTransactionID returns the payment with the given transaction
// reference (local UUID or M-Pesa CheckoutRequestID).
func (r *Repository) GetByTransactionID(txID string) (*Payment, error) {
	row := r.db.QueryRow(baseQuery+" WHERE p.transaction_id = ?", txID)

	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying payment by transaction: %w", err)
	}
	return p, nil
}

// ListForTenant returns a tenant's payments, newest first.
func (r *Repository) ListForTenant(tenantID int64) ([]*Payment, error) {
	return r.list(baseQuery+" WHERE p.tenant_id = ? ORDER BY p.payment_date DESC, p.id DESC", tenantID)
}

// ListForLandlord returns payments for all of the landlord's properties,
// newest first.
func (r *Repository) ListForLandlord(landlordID int64) ([]*Payment, error) {
	return r.list(
		baseQuery+" WHERE pr.landlord_id = ? ORDER BY p.payment_date DESC, p.id DESC",
		landlordID,
	)
}

func (r *Repository) list(query string, args ...interface{}) ([]*Payment, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing payments: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var payments []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning payment: %w", err)
		}
		payments = append(payments, p)
	}

	return payments, rows.Err()
}

// UpdateStatus sets a payment's status (landlord correction path).
func (r *Repository) UpdateStatus(id int64, status Status) (*Payment, error) {
	if !ValidStatus(string(status)) {
		return nil, fmt.Errorf("invalid status %q", status)
	}

	result, err := r.db.Exec("UPDATE payments SET status = ? WHERE id = ?", string(status), id)
	if err != nil {
		return nil, fmt.Errorf("updating payment status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(id)
}

// SetTransactionID replaces the local reference with the M-Pesa
// CheckoutRequestID once the STK push is accepted.
func (r *Repository) SetTransactionID(id int64, txID string) error {
	if _, err := r.db.Exec("UPDATE payments SET transaction_id = ? WHERE id = ?", txID, id); err != nil {
		return fmt.Errorf("setting transaction id: %w", err)
	}
	return nil
}

// MarkResult records the payment callback outcome: completed with a
// receipt number, or failed.
func (r *Repository) MarkResult(txID string, success bool, receipt string) (*Payment, error) {
	p, err := r.GetByTransactionID(txID)
	if err != nil {
		return nil, err
	}

	status := StatusFailed
	if success {
		status = StatusCompleted
	}

	if _, err := r.db.Exec(
		"UPDATE payments SET status = ?, receipt = ? WHERE id = ?",
		string(status), receipt, p.ID,
	); err != nil {
		return nil, fmt.Errorf("marking payment result: %w", err)
	}

	return r.GetByID(p.ID)
}

// MonthlyRevenue returns the sum of completed payment amounts for the
// landlord's properties in the month containing now.
func (r *Repository) MonthlyRevenue(landlordID int64, now time.Time) (float64, error) {
	// payment_date defaults to CURRENT_TIMESTAMP, which SQLite stores in
	// UTC, so the month window must be UTC too.
	now = now.UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var total sql.NullFloat64
	err := r.db.QueryRow(
		`SELECT SUM(p.amount) FROM payments p
		 JOIN properties pr ON pr.id = p.property_id
		 WHERE pr.landlord_id = ? AND p.status = 'completed'
		   AND p.payment_date >= ? AND p.payment_date < ?`,
		landlordID, start, end,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("computing monthly revenue: %w", err)
	}

	return total.Float64, nil
}

// LatestForTenant returns the tenant's most recent payment, or ErrNotFound.
func (r *Repository) LatestForTenant(tenantID int64) (*Payment, error) {
	row := r.db.QueryRow(
		baseQuery+" WHERE p.tenant_id = ? ORDER BY p.payment_date DESC, p.id DESC LIMIT 1",
		tenantID,
	)

	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying latest payment: %w", err)
	}
	return p, nil
}

// scanPayment scans a payment row including joined display fields.
func scanPayment(row interface{ Scan(...interface{}) error }) (*Payment, error) {
	var p Payment
	var status string
	err := row.Scan(
		&p.ID, &p.TenantID, &p.PropertyID, &p.Amount, &p.PaymentMethod,
		&p.TransactionID, &p.Receipt, &status, &p.PaymentDate, &p.PhoneNumber,
		&p.TenantName, &p.PropertyName,
	)
	if err != nil {
		return nil, err
	}
	p.Status = Status(status)
	return &p, nil
}
