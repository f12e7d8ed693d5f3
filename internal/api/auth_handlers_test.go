package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"famtrack-backend/internal/audit"
	"famtrack-backend/internal/auth"
	"famtrack-backend/internal/config"
	"famtrack-backend/internal/database"
	"famtrack-backend/internal/models"
)

func newTestServer(t *testing.T, loginLimit int) (*echo.Echo, *sql.DB) {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "famtrack.db")})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	testCfg := config.Config{
		SessionLifetime:    time.Hour,
		RateLimitAPI:       100,
		RateLimitAPIWindow: time.Minute,
		PinLockoutDuration: 5 * time.Minute,
		GuestTokenLifetime: 24 * time.Hour,
	}

	auditLogger := audit.NewLogger(database.NewAuditRepo(db), true)
	svc := auth.NewService(db, auditLogger, auth.Config{
		SessionLifetime:     time.Hour,
		RateLimitAuth:       loginLimit,
		RateLimitAuthWindow: 5 * time.Minute,
		PinHashCost:         bcrypt.MinCost,
		PinMaxAttempts:      5,
		PinLockoutDuration:  5 * time.Minute,
		UnlockCode:          "9876",
	})

	e := echo.New()
	RegisterRoutes(e.Group("/api"), Deps{
		DB:       db,
		Auth:     svc,
		AuditLog: auditLogger,
		Cfg:      testCfg,
	})

	return e, db
}

func createAPIUser(t *testing.T, db *sql.DB, role models.Role, name, pin string) *models.User {
	t.Helper()

	hash, err := auth.HashPin(pin, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash test PIN: %v", err)
	}

	user := &models.User{
		Role:    role,
		Name:    name,
		PinHash: hash,
		Locale:  "en",
		Active:  true,
	}
	if err := database.NewUserRepo(db).Create(user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	return user
}

func postLogin(t *testing.T, e *echo.Echo, role string, userID int64, pin string) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(LoginRequest{Role: role, UserID: userID, Pin: pin})
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.RemoteAddr = "10.0.0.1:5000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response body %q: %v", rec.Body.String(), err)
	}

	return body
}

func TestLoginHandler_Success(t *testing.T) {
	e, db := newTestServer(t, 100)
	guardian := createAPIUser(t, db, models.RoleGuardian, "Alex", "1234")

	rec := postLogin(t, e, "guardian", guardian.ID, "1234")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	token, _ := body["token"].(string)
	if len(token) != 64 {
		t.Errorf("token length = %d, want 64", len(token))
	}

	var sessionCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName {
			sessionCookie = c
		}
	}
	if sessionCookie == nil {
		t.Fatal("session cookie not set")
	}
	if !sessionCookie.HttpOnly {
		t.Error("session cookie is not HttpOnly")
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	e, db := newTestServer(t, 100)
	guardian := createAPIUser(t, db, models.RoleGuardian, "Alex", "1234")

	wrongPin := postLogin(t, e, "guardian", guardian.ID, "0000")
	unknown := postLogin(t, e, "guardian", 9999, "0000")

	// Wrong PIN and unknown user are the same status and the same message
	for name, rec := range map[string]*httptest.ResponseRecorder{"wrong PIN": wrongPin, "unknown user": unknown} {
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s status = %d, want 401", name, rec.Code)
		}
		if got := decodeBody(t, rec)["error"]; got != "invalid credentials" {
			t.Errorf("%s error = %q, want %q", name, got, "invalid credentials")
		}
	}
}

func TestLoginHandler_ValidationErrors(t *testing.T) {
	e, db := newTestServer(t, 100)
	guardian := createAPIUser(t, db, models.RoleGuardian, "Alex", "1234")

	if rec := postLogin(t, e, "admin", guardian.ID, "1234"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid role status = %d, want 400", rec.Code)
	}
	if rec := postLogin(t, e, "guardian", guardian.ID, "123"); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed PIN status = %d, want 400", rec.Code)
	}
}

func TestLoginHandler_LockedResponse(t *testing.T) {
	e, db := newTestServer(t, 100)
	guardian := createAPIUser(t, db, models.RoleGuardian, "Alex", "1234")

	var rec *httptest.ResponseRecorder
	for i := 0; i < 5; i++ {
		rec = postLogin(t, e, "guardian", guardian.ID, "0000")
	}

	// The attempt that trips the lock reports the lock with a countdown
	if rec.Code != http.StatusForbidden {
		t.Fatalf("locking attempt status = %d, want 403", rec.Code)
	}
	body := decodeBody(t, rec)
	minutes, ok := body["minutes_remaining"].(float64)
	if !ok || minutes <= 0 {
		t.Errorf("minutes_remaining = %v, want a positive number", body["minutes_remaining"])
	}

	// A correct PIN while locked gets the same shape
	rec = postLogin(t, e, "guardian", guardian.ID, "1234")
	if rec.Code != http.StatusForbidden {
		t.Errorf("correct PIN while locked status = %d, want 403", rec.Code)
	}
	if _, ok := decodeBody(t, rec)["minutes_remaining"]; !ok {
		t.Error("locked response missing minutes_remaining")
	}
}

func TestLoginHandler_RateLimited(t *testing.T) {
	e, db := newTestServer(t, 2)
	guardian := createAPIUser(t, db, models.RoleGuardian, "Alex", "1234")

	postLogin(t, e, "guardian", guardian.ID, "0000")
	postLogin(t, e, "guardian", guardian.ID, "0000")

	rec := postLogin(t, e, "guardian", guardian.ID, "1234")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", rec.Code)
	}
	// The message does not expose the window
	if got := decodeBody(t, rec)["error"]; got != "too many requests, try again later" {
		t.Errorf("error = %q, want generic back-off message", got)
	}
}
