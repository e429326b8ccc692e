package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func TestAuthenticate(t *testing.T) {
	secret := "test-secret"
	m := NewJWTMiddleware(secret)

	var subject string
	h := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = SubjectFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	valid := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	expired := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	})
	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	noExp := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.RegisteredClaims{Subject: "user-123"})
	hs512 := sign(t, jwt.SigningMethodHS512, []byte(secret), jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})

	cases := map[string]int{
		"":                  http.StatusUnauthorized,
		"Bearer " + valid:    http.StatusOK,
		"Bearer " + expired:  http.StatusUnauthorized,
		"Bearer " + wrongKey: http.StatusUnauthorized,
		"Bearer " + noExp:    http.StatusUnauthorized,
		"Bearer " + hs512:    http.StatusUnauthorized,
		"Basic abc":          http.StatusUnauthorized,
	}
	for header, want := range cases {
		subject = ""
		req := httptest.NewRequest(http.MethodGet, "/documents", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, want, w.Code, header)
		if want == http.StatusOK {
			require.Equal(t, "user-123", subject)
		}
	}
}
