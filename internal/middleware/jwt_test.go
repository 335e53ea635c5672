package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/zyhxx/classseat/internal/utils"
)

func runJWT(t *testing.T, secret, header string) (*httptest.ResponseRecorder, echo.Context, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	mw := JWTAuth(secret)
	err := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })(c)
	return rec, c, err
}

func TestJWTAuth_MissingToken(t *testing.T) {
	rec, _, err := runJWT(t, "secret", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuth_MalformedToken(t *testing.T) {
	rec, _, err := runJWT(t, "secret", "Bearer not-a-jwt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuth_WrongSecret(t *testing.T) {
	access, err := utils.NewAccessToken("other-secret", 9, "eve", "U999999", 24)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, _, err := runJWT(t, "secret", "Bearer "+access.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestJWTAuth_ValidTokenInjectsClaims(t *testing.T) {
	access, err := utils.NewAccessToken("secret", 9, "eve", "U999999", 24)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	rec, c, err := runJWT(t, "secret", "Bearer "+access.Token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if id, ok := userIDFrom(c); !ok || id != 9 {
		t.Errorf("user_id claim not injected, got %v", c.Get("user_id"))
	}
	if c.Get("username") != "eve" {
		t.Errorf("username claim not injected, got %v", c.Get("username"))
	}
	if c.Get("public_id") != "U999999" {
		t.Errorf("public_id claim not injected, got %v", c.Get("public_id"))
	}
}
