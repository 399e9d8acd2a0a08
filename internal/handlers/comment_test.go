package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/capsulehq/capsule-api/internal/middleware"
	"github.com/capsulehq/capsule-api/internal/models"
	"github.com/capsulehq/capsule-api/internal/repo"
	"github.com/go-chi/chi/v5"
)

var commentCols = []string{"id", "capsule_id", "owner_id", "body", "created_at", "updated_at"}

func commentRouter(h *CommentHandler, principal *models.User) chi.Router {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if principal != nil {
				req = req.WithContext(middleware.WithPrincipal(req.Context(), principal))
			}
			next.ServeHTTP(w, req)
		})
	})
	r.Post("/timeCapsules/{id}/comments", h.CreateComment)
	r.Get("/timeCapsules/{id}/comments", h.ListComments)
	r.Put("/comments/{id}", h.UpdateComment)
	r.Delete("/comments/{id}", h.DeleteComment)
	return r
}

func newCommentHandler(t *testing.T) (*CommentHandler, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	h := &CommentHandler{Repo: repo.NewCommentRepo(db), Capsules: repo.NewCapsuleRepo(db)}
	return h, mock, func() { db.Close() }
}

func TestCommentHandler_Create_OnPrivateCapsule(t *testing.T) {
	// A stranger cannot comment on a private capsule, and learns nothing about
	// whether it exists.
	h, mock, done := newCommentHandler(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, owner_id, title`).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(capsuleCols).
			AddRow("c-1", "u-1", "Graduation", "", "private", "{}", nil, now, now))

	r := commentRouter(h, &models.User{ID: "u-3"})
	body, _ := json.Marshal(map[string]string{"body": "hello"})
	req := httptest.NewRequest("POST", "/timeCapsules/c-1/comments", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCommentHandler_Create(t *testing.T) {
	h, mock, done := newCommentHandler(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, owner_id, title`).
		WithArgs("c-1").
		WillReturnRows(sqlmock.NewRows(capsuleCols).
			AddRow("c-1", "u-1", "Graduation", "", "public", "{}", nil, now, now))
	mock.ExpectQuery(`INSERT INTO comments`).
		WithArgs(sqlmock.AnyArg(), "c-1", "u-2", "hello").
		WillReturnRows(sqlmock.NewRows(commentCols).
			AddRow("cm-1", "c-1", "u-2", "hello", now, now))

	r := commentRouter(h, &models.User{ID: "u-2"})
	body, _ := json.Marshal(map[string]string{"body": "hello"})
	req := httptest.NewRequest("POST", "/timeCapsules/c-1/comments", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body %s)", rr.Code, rr.Body.String())
	}
	var out models.Comment
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.OwnerID != "u-2" || out.CapsuleID != "c-1" {
		t.Errorf("unexpected comment: %+v", out)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCommentHandler_Update_NonOwner(t *testing.T) {
	h, mock, done := newCommentHandler(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, capsule_id, owner_id`).
		WithArgs("cm-1").
		WillReturnRows(sqlmock.NewRows(commentCols).
			AddRow("cm-1", "c-1", "u-2", "hello", now, now))

	r := commentRouter(h, &models.User{ID: "u-3"})
	body, _ := json.Marshal(map[string]string{"body": "edited"})
	req := httptest.NewRequest("PUT", "/comments/cm-1", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestCommentHandler_Delete_Owner(t *testing.T) {
	h, mock, done := newCommentHandler(t)
	defer done()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, capsule_id, owner_id`).
		WithArgs("cm-1").
		WillReturnRows(sqlmock.NewRows(commentCols).
			AddRow("cm-1", "c-1", "u-2", "hello", now, now))
	mock.ExpectExec(`DELETE FROM comments`).
		WithArgs("cm-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := commentRouter(h, &models.User{ID: "u-2"})
	req := httptest.NewRequest("DELETE", "/comments/cm-1", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rr.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
