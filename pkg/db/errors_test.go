package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestConstraintViolations(t *testing.T) {
	unique := fmt.Errorf("insert favorite: %w", &pgconn.PgError{Code: "23505", ConstraintName: "favorites_owner_product_key"})
	foreign := &pgconn.PgError{Code: "23503", ConstraintName: "favorites_product_id_fkey"}

	if !IsUniqueViolation(unique) || IsForeignKeyViolation(unique) {
		t.Fatalf("expected wrapped pg unique violation to be recognised")
	}
	if !IsForeignKeyViolation(foreign) || IsUniqueViolation(foreign) {
		t.Fatalf("expected pg foreign key violation to be recognised")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: favorites.owner_id, favorites.product_id")) {
		t.Fatalf("expected sqlite unique violation to be recognised")
	}
	if !IsForeignKeyViolation(errors.New("FOREIGN KEY constraint failed")) {
		t.Fatalf("expected sqlite foreign key violation to be recognised")
	}
	if IsUniqueViolation(nil) || IsForeignKeyViolation(errors.New("connection reset")) {
		t.Fatalf("expected unrelated errors to be ignored")
	}
}
