package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSignAndVerifyJWT(t *testing.T) {
	secret := "test-secret"
	token, err := SignJWT(secret, TokenClaims{
		Sub:    "user-1",
		Locale: "id",
		Exp:    time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("SignJWT() error = %v", err)
	}

	claims, err := VerifyJWT(secret, token)
	if err != nil {
		t.Fatalf("VerifyJWT() error = %v", err)
	}
	if claims.Sub != "user-1" {
		t.Fatalf("Sub = %q, want user-1", claims.Sub)
	}
	if claims.Locale != "id" {
		t.Fatalf("Locale = %q, want id", claims.Locale)
	}
}

func TestVerifyJWTRejectsTampering(t *testing.T) {
	secret := "test-secret"
	token, err := SignJWT(secret, TokenClaims{Sub: "user-1"})
	if err != nil {
		t.Fatalf("SignJWT() error = %v", err)
	}

	if _, err := VerifyJWT("other-secret", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
	if _, err := VerifyJWT(secret, token+"x"); err == nil {
		t.Fatal("expected error for altered signature")
	}
	if _, err := VerifyJWT(secret, "not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestVerifyJWTRejectsExpired(t *testing.T) {
	secret := "test-secret"
	token, err := SignJWT(secret, TokenClaims{
		Sub: "user-1",
		Exp: time.Now().Add(-time.Minute).Unix(),
	})
	if err != nil {
		t.Fatalf("SignJWT() error = %v", err)
	}
	if _, err := VerifyJWT(secret, token); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestAuthJWTMiddleware(t *testing.T) {
	secret := "test-secret"
	token, err := SignJWT(secret, TokenClaims{
		Sub:    "user-1",
		Locale: "id",
		Exp:    time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("SignJWT() error = %v", err)
	}

	var gotUser, gotLocale string
	handler := AuthJWT(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotLocale = LocaleFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if gotUser != "user-1" {
		t.Fatalf("user = %q, want user-1", gotUser)
	}
	if gotLocale != "id" {
		t.Fatalf("locale = %q, want id", gotLocale)
	}
}

func TestAuthJWTMiddlewareRejects(t *testing.T) {
	handler := AuthJWT("test-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "bad token", header: "Bearer not-a-token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			handler.ServeHTTP(rr, req)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rr.Code)
			}
		})
	}
}
