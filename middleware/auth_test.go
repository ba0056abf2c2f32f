package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func issueToken(t *testing.T, secret, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		jwtClaimUserID: 1,
		jwtClaimRole:   role,
		"exp":          time.Now().Add(time.Hour).Unix(),
		"iat":          time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

// adminOnly — цепочка Authenticate + Authorize("admin"), как на маршрутах
// управления справочником видов спорта.
func adminOnly(secret string) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return Authenticate(secret)(Authorize("admin")(next))
}

func TestAuthorizeAdmin(t *testing.T) {
	handler := adminOnly(testSecret)

	r := httptest.NewRequest(http.MethodPost, "/sports", nil)
	r.Header.Set("Authorization", "Bearer "+issueToken(t, testSecret, "admin"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("admin request status = %d, want %d", w.Code, http.StatusOK)
	}
}

func TestAuthorizeRejectsNonAdmin(t *testing.T) {
	handler := adminOnly(testSecret)

	r := httptest.NewRequest(http.MethodPost, "/sports", nil)
	r.Header.Set("Authorization", "Bearer "+issueToken(t, testSecret, "user"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("non-admin request status = %d, want %d", w.Code, http.StatusForbidden)
	}
}

func TestAuthorizeWithoutToken(t *testing.T) {
	handler := adminOnly(testSecret)

	r := httptest.NewRequest(http.MethodPost, "/sports", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous request status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthenticateRejectsWrongSecret(t *testing.T) {
	handler := adminOnly(testSecret)

	r := httptest.NewRequest(http.MethodPost, "/sports", nil)
	r.Header.Set("Authorization", "Bearer "+issueToken(t, "other-secret", "admin"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("forged token status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestAuthorizeWithoutClaimsInContext(t *testing.T) {
	// Authorize без Authenticate в цепочке не должен пропускать запрос.
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := Authorize("admin")(next)

	r := httptest.NewRequest(http.MethodPost, "/sports", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("request without claims status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
