package user

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Sentinel errors for registration and login conditions.
// Handlers map these to HTTP status codes.
var (
	ErrNotFound           = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user already exists")
	ErrHouseNumberTaken   = errors.New("house number already assigned to another tenant")
	ErrLandlordExists     = errors.New("a landlord account already exists")
	ErrTenantLimit        = errors.New("maximum tenant limit reached")
)

// Store manages users in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore creates a user store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateInput holds the fields needed to register a user.
type CreateInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	HouseNumber string
	Role        Role
}

const selectColumns = `id, email, password_hash, first_name, last_name, phone_number, house_number, role, created_at`

// Create registers a new account, enforcing the single-landlord rule,
// the tenant limit, and house-number uniqueness for tenants.
func (s *Store) Create(in CreateInput) (*User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.HouseNumber = strings.TrimSpace(in.HouseNumber)

	if in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("email and password are required")
	}
	if in.Role == "" {
		in.Role = RoleTenant
	}
	if !ValidRole(string(in.Role)) {
		return nil, fmt.Errorf("invalid role %q", in.Role)
	}

	switch in.Role {
	case RoleLandlord:
		count, err := s.countByRole(RoleLandlord)
		if err != nil {
			return nil, err
		}
		if count >= 1 {
			return nil, ErrLandlordExists
		}
	case RoleTenant:
		if in.HouseNumber == "" {
			return nil, fmt.Errorf("house number is required for tenants")
		}
		taken, err := s.houseNumberTaken(in.HouseNumber)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrHouseNumberTaken
		}
		count, err := s.countByRole(RoleTenant)
		if err != nil {
			return nil, err
		}
		if count >= MaxTenants {
			return nil, ErrTenantLimit
		}
	}

	if existing, err := s.GetByEmail(in.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	var houseNumber interface{}
	if in.Role == RoleTenant {
		houseNumber = in.HouseNumber
	}

	result, err := s.db.Exec(
		`INSERT INTO users (email, password_hash, first_name, last_name, phone_number, house_number, role)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.Email, string(hash), in.FirstName, in.LastName, in.PhoneNumber, houseNumber, string(in.Role),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting insert id: %w", err)
	}

	return s.GetByID(id)
}

// Authenticate checks email and password and returns the matching user.
// Wrong email and wrong password are indistinguishable to callers.
func (s *Store) Authenticate(email, password string) (*User, error) {
	u, err := s.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// GetByID returns a user by ID.
func (s *Store) GetByID(id int64) (*User, error) {
	row := s.db.QueryRow(fmt.Sprintf("SELECT %s FROM users WHERE id = ?", selectColumns), id)
	return scanUser(row)
}

// GetByEmail returns a user by email (case-insensitive).
func (s *Store) GetByEmail(email string) (*User, error) {
	row := s.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM users WHERE LOWER(email) = LOWER(?)", selectColumns), email,
	)
	return scanUser(row)
}

// ListTenants returns all tenant accounts ordered by house number.
func (s *Store) ListTenants() ([]*User, error) {
	rows, err := s.db.Query(
		fmt.Sprintf("SELECT %s FROM users WHERE role = 'tenant' ORDER BY house_number", selectColumns),
	)
	if err != nil {
		return nil, fmt.Errorf("listing tenants: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			fmt.Printf("warning: closing rows: %v\n", cerr)
		}
	}()

	var users []*User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning tenant: %w", err)
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// CountTenants returns the number of tenant accounts.
func (s *Store) CountTenants() (int, error) {
	count, err := s.countByRole(RoleTenant)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetLandlord returns the landlord account, if one exists.
func (s *Store) GetLandlord() (*User, error) {
	row := s.db.QueryRow(
		fmt.Sprintf("SELECT %s FROM users WHERE role = 'landlord' LIMIT 1", selectColumns),
	)
	return scanUser(row)
}

func (s *Store) countByRole(role Role) (int, error) {
	var count int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM users WHERE role = ?", string(role),
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting %s accounts: %w", role, err)
	}
	return count, nil
}

func (s *Store) houseNumberTaken(houseNumber string) (bool, error) {
	var count int
	if err := s.db.QueryRow(
		"SELECT COUNT(*) FROM users WHERE house_number = ?", houseNumber,
	).Scan(&count); err != nil {
		return false, fmt.Errorf("checking house number: %w", err)
	}
	return count > 0, nil
}

// scanUser scans a user from a database row.
func scanUser(row interface{ Scan(...interface{}) error }) (*User, error) {
	var u User
	var houseNumber sql.NullString
	var role string

	err := row.Scan(
		&u.ID, &u.Email, &u.passwordHash, &u.FirstName, &u.LastName,
		&u.PhoneNumber, &houseNumber, &role, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}

	if houseNumber.Valid {
		u.HouseNumber = houseNumber.String
	}
	u.Role = Role(role)

	return &u, nil
}
