package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/snapgram/snapgram-server/cmd/models"
	"github.com/snapgram/snapgram-server/cmd/utils"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// a single connection keeps the in-memory database alive
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("underlying db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, []byte("test-secret")), db
}

func TestPasswordHashRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)

	hash, err := svc.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter2" {
		t.Fatal("password stored in the clear")
	}
	if !svc.CheckPassword(hash, "hunter2") {
		t.Fatal("expected matching password to verify")
	}
	if svc.CheckPassword(hash, "wrong") {
		t.Fatal("expected mismatched password to fail")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc, db := newTestService(t)

	user := models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	token, err := svc.IssueToken("alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	resolved, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if resolved.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, resolved.ID)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.VerifyToken("not-a-token"); !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyTokenUnknownSubject(t *testing.T) {
	svc, _ := newTestService(t)

	token, err := svc.IssueToken("ghost")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	svc, db := newTestService(t)

	user := models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	other := NewService(db, []byte("other-secret"))
	token, err := other.IssueToken("alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	if _, err := svc.VerifyToken(token); !errors.Is(err, utils.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	svc, db := newTestService(t)

	user := models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	token, err := svc.IssueToken("alice")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	var gotUserID uint
	handler := svc.Middleware(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = utils.GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	// missing header
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// valid token
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if gotUserID != user.ID {
		t.Fatalf("expected user id %d in context, got %d", user.ID, gotUserID)
	}
}
