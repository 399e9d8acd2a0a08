package repo

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
)

var userCols = []string{"id", "username", "email", "password_hash", "created_at", "updated_at"}

func TestUserRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", "hashed").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "alice", "alice@example.com", "hashed", now, now))

	repo := NewUserRepo(db)
	user, err := repo.Create(context.Background(), "alice", "alice@example.com", "hashed")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID != "u-1" || user.Username != "alice" || user.Email != "alice@example.com" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Create_UniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "alice", "alice@example.com", "hashed").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	repo := NewUserRepo(db)
	_, err = repo.Create(context.Background(), "alice", "alice@example.com", "hashed")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation = false for %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("bob@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-2", "bob", "bob@example.com", "hashed", now, now))

	repo := NewUserRepo(db)
	user, err := repo.GetByEmail(context.Background(), "bob@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if user.ID != "u-2" || user.Username != "bob" {
		t.Errorf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, email, password_hash`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := NewUserRepo(db)
	_, err = repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Error("nil is not a unique violation")
	}
	if IsUniqueViolation(sql.ErrNoRows) {
		t.Error("ErrNoRows is not a unique violation")
	}
	if IsUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Error("foreign-key violation is not a unique violation")
	}
	if !IsUniqueViolation(&pq.Error{Code: "23505"}) {
		t.Error("23505 should be a unique violation")
	}
}
