package property

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a property does not exist.
var ErrNotFound = errors.New("property not found")

// Repository provides CRUD operations for properties.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a property repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, landlord_id, name, address, rent_amount, description, image_url, created_at`

// Insert adds a new property and returns it with its generated ID.
// A zero rent amount falls back to DefaultRent.
func (r *Repository) Insert(p *Property) (*Property, error) {
	if p.Name == "" || p.Address == "" {
		return nil, fmt.Errorf("name and address are required")
	}
	if p.RentAmount <= 0 {
		p.RentAmount = DefaultRent
	}

	result, err := r.db.Exec(
		`INSERT INTO properties (landlord_id, name, address, rent_amount, description, image_url)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.LandlordID, p.Name, p.Address, p.RentAmount, p.Description, p.ImageURL,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting property: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return r.GetByID(id)
}

// GetByID returns a property by its ID.
func (r *Repository) GetByID(id int64) (*Property, error) {
	row := r.db.QueryRow(fmt.Sprintf("SELECT %s FROM properties WHERE id = ?", selectColumns), id)

	p, err := scanProperty(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying property %d: %w", id, err)
	}

	return p, nil
}

// List returns all properties, newest first.
func (r *Repository) List() ([]*Property, error) {
	return r.list(fmt.Sprintf("SELECT %s FROM properties ORDER BY id DESC", selectColumns))
}

// ListByLandlord returns properties owned by the given landlord, newest first.
func (r *Repository) ListByLandlord(landlordID int64) ([]*Property, error) {
	return r.list(
		fmt.Sprintf("SELECT %s FROM properties WHERE landlord_id = ? ORDER BY id DESC", selectColumns),
		landlordID,
	)
}

func (r *Repository) list(query string, args ...interface{}) ([]*Property, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing properties: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var props []*Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning property: %w", err)
		}
		props = append(props, p)
	}

	return props, rows.Err()
}

// UpdateInput holds optional fields for a property update.
// Nil fields are left unchanged.
type UpdateInput struct {
	Name        *string  `json:"name"`
	Address     *string  `json:"address"`
	RentAmount  *float64 `json:"rent_amount"`
	Description *string  `json:"description"`
	ImageURL    *string  `json:"image_url"`
}

// Update applies the non-nil fields of in to the property and returns it.
func (r *Repository) Update(id int64, in UpdateInput) (*Property, error) {
	p, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	if in.RentAmount != nil {
		p.RentAmount = *in.RentAmount
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}

	if _, err := r.db.Exec(
		`UPDATE properties SET name = ?, address = ?, rent_amount = ?, description = ?, image_url = ? WHERE id = ?`,
		p.Name, p.Address, p.RentAmount, p.Description, p.ImageURL, id,
	); err != nil {
		return nil, fmt.Errorf("updating property %d: %w", id, err)
	}

	return r.GetByID(id)
}

// SetImageURL stores the URL of an uploaded property image.
func (r *Repository) SetImageURL(id int64, url string) error {
	result, err := r.db.Exec("UPDATE properties SET image_url = ? WHERE id = ?", url, id)
	if err != nil {
		return fmt.Errorf("setting image url: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a property by ID.
func (r *Repository) Delete(id int64) error {
	result, err := r.db.Exec("DELETE FROM properties WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting property: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Count returns the number of properties owned by the landlord.
func (r *Repository) Count(landlordID int64) (int, error) {
	var count int
	if err := r.db.QueryRow(
		"SELECT COUNT(*) FROM properties WHERE landlord_id = ?", landlordID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting properties: %w", err)
	}
	return count, nil
}

// scanProperty scans a property from a database row.
func scanProperty(row interface{ Scan(...interface{}) error }) (*Property, error) {
	var p Property
	err := row.Scan(
		&p.ID, &p.LandlordID, &p.Name, &p.Address,
		&p.RentAmount, &p.Description, &p.ImageURL, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
