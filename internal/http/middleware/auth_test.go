package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "unit-test-secret"

func signToken(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	claims := &UserClaims{
		FuncionarioID: 42,
		Nome:          "Ana",
		Cargo:         "atendente",
		Empresa:       "matriz",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func protect(secret string) (http.Handler, *bool) {
	called := false
	h := BearerAuth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := UserFromContext(r.Context())
		if !ok || claims.FuncionarioID != 42 || claims.Empresa != "matriz" {
			http.Error(w, "claims missing", http.StatusInternalServerError)
			return
		}
		called = true
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &called
}

func TestBearerAuth_ValidToken(t *testing.T) {
	h, called := protect(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/clientes", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(time.Hour)))
	rr := httptest.NewRecorder()

	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if !*called {
		t.Fatal("handler not reached")
	}
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	h, _ := protect(testSecret)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clientes", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestBearerAuth_ExpiredToken(t *testing.T) {
	h, _ := protect(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/clientes", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, time.Now().Add(-time.Minute)))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestBearerAuth_WrongSecret(t *testing.T) {
	h, _ := protect(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/clientes", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", time.Now().Add(time.Hour)))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}
