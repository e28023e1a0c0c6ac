package property

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/nyumba-app/nyumba/internal/db"
)

func testRepo(t *testing.T) (*Repository, *sql.DB) {
	t.Helper()
	d, err := db.Open(filepath.Join(t.TempDir(), "nyumba.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close test db: %v", err)
		}
	})

	// Properties reference a landlord row.
	if _, err := d.Exec(
		`INSERT INTO users (email, password_hash, first_name, last_name, role) VALUES (?, ?, ?, ?, ?)`,
		"owner@example.com", "x", "Land", "Lord", "landlord",
	); err != nil {
		t.Fatalf("seed landlord: %v", err)
	}

	return NewRepository(d), d
}

func TestInsertAndGetByID(t *testing.T) {
	repo, _ := testRepo(t)

	p := &Property{
		LandlordID:  1,
		Name:        "Unit A",
		Address:     "1 Moi Avenue, Nairobi",
		RentAmount:  25000,
		Description: "Two bedroom",
	}

	saved, err := repo.Insert(p)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == 0 {
		t.Error("expected non-zero ID")
	}

	got, err := repo.GetByID(saved.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Address != "1 Moi Avenue, Nairobi" {
		t.Errorf("address = %q", got.Address)
	}
	if got.RentAmount != 25000 {
		t.Errorf("rent = %v, want 25000", got.RentAmount)
	}
}

func TestInsertDefaultRent(t *testing.T) {
	repo, _ := testRepo(t)

	saved, err := repo.Insert(&Property{LandlordID: 1, Name: "Unit B", Address: "2 Moi Ave"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.RentAmount != DefaultRent {
		t.Errorf("rent = %v, want default %v", saved.RentAmount, float64(DefaultRent))
	}
}

func TestInsertRequiresNameAndAddress(t *testing.T) {
	repo, _ := testRepo(t)

	if _, err := repo.Insert(&Property{LandlordID: 1, Address: "2 Moi Ave"}); err == nil {
		t.Error("expected error for missing name")
	}
	if _, err := repo.Insert(&Property{LandlordID: 1, Name: "Unit C"}); err == nil {
		t.Error("expected error for missing address")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, _ := testRepo(t)

	_, err := repo.GetByID(9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestListByLandlord(t *testing.T) {
	repo, d := testRepo(t)

	// Second landlord row inserted directly — the user store enforces the
	// single-landlord rule, the schema doesn't.
	if _, err := d.Exec(
		`INSERT INTO users (email, password_hash, first_name, last_name, role) VALUES (?, ?, ?, ?, ?)`,
		"other@example.com", "x", "Other", "Owner", "landlord",
	); err != nil {
		t.Fatalf("seed second landlord: %v", err)
	}

	for _, p := range []*Property{
		{LandlordID: 1, Name: "Unit A", Address: "1 Moi Ave"},
		{LandlordID: 1, Name: "Unit B", Address: "2 Moi Ave"},
		{LandlordID: 2, Name: "Unit C", Address: "3 Moi Ave"},
	} {
		if _, err := repo.Insert(p); err != nil {
			t.Fatalf("insert %s: %v", p.Name, err)
		}
	}

	mine, err := repo.ListByLandlord(1)
	if err != nil {
		t.Fatalf("list by landlord: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("got %d properties, want 2", len(mine))
	}
	// Newest first
	if mine[0].Name != "Unit B" {
		t.Errorf("first = %q, want Unit B", mine[0].Name)
	}

	all, err := repo.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("got %d properties, want 3", len(all))
	}
}

func TestUpdate(t *testing.T) {
	repo, _ := testRepo(t)

	saved, err := repo.Insert(&Property{LandlordID: 1, Name: "Unit A", Address: "1 Moi Ave"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	newRent := 30000.0
	newDesc := "Renovated"
	updated, err := repo.Update(saved.ID, UpdateInput{RentAmount: &newRent, Description: &newDesc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.RentAmount != 30000 {
		t.Errorf("rent = %v, want 30000", updated.RentAmount)
	}
	if updated.Description != "Renovated" {
		t.Errorf("description = %q", updated.Description)
	}
	// Untouched fields stay
	if updated.Name != "Unit A" {
		t.Errorf("name = %q, want Unit A", updated.Name)
	}
}

func TestSetImageURL(t *testing.T) {
	repo, _ := testRepo(t)

	saved, err := repo.Insert(&Property{LandlordID: 1, Name: "Unit A", Address: "1 Moi Ave"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.SetImageURL(saved.ID, "/uploads/unit-a.jpg"); err != nil {
		t.Fatalf("set image url: %v", err)
	}

	got, err := repo.GetByID(saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ImageURL != "/uploads/unit-a.jpg" {
		t.Errorf("image_url = %q", got.ImageURL)
	}

	if err := repo.SetImageURL(9999, "/uploads/x.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	repo, _ := testRepo(t)

	saved, err := repo.Insert(&Property{LandlordID: 1, Name: "Unit A", Address: "1 Moi Ave"})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.Delete(saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound after delete", err)
	}
	if err := repo.Delete(saved.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestCount(t *testing.T) {
	repo, _ := testRepo(t)

	for i, name := range []string{"Unit A", "Unit B"} {
		if _, err := repo.Insert(&Property{LandlordID: 1, Name: name, Address: "1 Moi Ave"}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	count, err := repo.Count(1)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}
