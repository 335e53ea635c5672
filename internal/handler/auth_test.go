package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/zyhxx/classseat/internal/config"
	"github.com/zyhxx/classseat/internal/repository"
	"github.com/zyhxx/classseat/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		JWTSecret:     "test-secret",
		TokenTTLHours: 24,
		BcryptCost:    bcrypt.MinCost,
	}
}

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock, *sql.DB) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	return NewAuthHandler(testConfig(), repository.NewUserRepo(db)), mock, db
}

func jsonContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRegister_MissingFields(t *testing.T) {
	h, _, db := newAuthHandler(t)
	defer db.Close()

	for _, body := range []string{`{}`, `{"username":"alice"}`, `{"password":"pw"}`, `{"username":"  "}`} {
		c, rec := jsonContext(t, http.MethodPost, body)
		if err := h.Register(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(sqlErrDuplicate("uq_users_username"))

	c, rec := jsonContext(t, http.MethodPost, `{"username":"alice","password":"pw"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", rec.Code)
	}
}

func TestRegister_ReturnsPublicID(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT id, username, password_hash, public_id, is_admin, created_at FROM users WHERE id").
		WithArgs(uint64(1)).
		WillReturnRows(testUserRows(1, "alice", "pw", "U123456", true))

	c, rec := jsonContext(t, http.MethodPost, `{"username":"alice","password":"pw"}`)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp struct {
		PublicID string `json:"public_id"`
		User     struct {
			IsAdmin bool `json:"is_admin"`
		} `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.PublicID != "U123456" {
		t.Errorf("public_id = %q, want U123456", resp.PublicID)
	}
	if !resp.User.IsAdmin {
		t.Error("first registration should surface is_admin=true")
	}
}

// Unknown username and wrong password must be indistinguishable to the
// caller.
func TestLogin_UniformFailure(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, username, password_hash, public_id, is_admin, created_at FROM users WHERE username").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	c, rec := jsonContext(t, http.MethodPost, `{"username":"ghost","password":"pw"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	unknownUserBody := rec.Body.String()
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user, got %d", rec.Code)
	}

	mock.ExpectQuery("SELECT id, username, password_hash, public_id, is_admin, created_at FROM users WHERE username").
		WithArgs("alice").
		WillReturnRows(testUserRows(1, "alice", "correct", "U123456", false))

	c, rec = jsonContext(t, http.MethodPost, `{"username":"alice","password":"wrong"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}
	if rec.Body.String() != unknownUserBody {
		t.Errorf("failure bodies differ: %q vs %q", unknownUserBody, rec.Body.String())
	}
}

func TestLogin_TokenRoundTrip(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, username, password_hash, public_id, is_admin, created_at FROM users WHERE username").
		WithArgs("bob").
		WillReturnRows(testUserRows(12, "bob", "s3cret", "U654321", false))

	c, rec := jsonContext(t, http.MethodPost, `{"username":"bob","password":"s3cret"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	tok, err := jwt.Parse(resp.Token, func(tk *jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	if err != nil || !tok.Valid {
		t.Fatalf("returned token should validate: %v", err)
	}
	claims := tok.Claims.(jwt.MapClaims)
	if sub, _ := claims["sub"].(float64); uint64(sub) != 12 {
		t.Errorf("sub = %v, want 12", claims["sub"])
	}
	if claims["username"] != "bob" || claims["public_id"] != "U654321" {
		t.Errorf("identity claims mismatch: %v", claims)
	}
}

func TestMe_UserGone(t *testing.T) {
	h, mock, db := newAuthHandler(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id, username, password_hash, public_id, is_admin, created_at FROM users WHERE id").
		WithArgs(uint64(5)).
		WillReturnError(sql.ErrNoRows)

	c, rec := jsonContext(t, http.MethodGet, "")
	c.Set("user_id", float64(5))
	if err := h.Me(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

// ----- shared helpers -----

func testUserRows(id uint64, username, password, publicID string, isAdmin bool) *sqlmock.Rows {
	hash, err := utils.HashPassword(password, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return sqlmock.
		NewRows([]string{"id", "username", "password_hash", "public_id", "is_admin", "created_at"}).
		AddRow(id, username, hash, publicID, isAdmin, time.Now())
}

func sqlErrDuplicate(key string) error {
	return &mysqlDupError{key: key}
}

type mysqlDupError struct{ key string }

func (e *mysqlDupError) Error() string {
	return "Error 1062 (23000): Duplicate entry 'x' for key 'users." + e.key + "'"
}
