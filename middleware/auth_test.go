package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/tournament-accommodation/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func validClaims(role models.UserRole) jwt.MapClaims {
	return jwt.MapClaims{
		JWTClaimUserID: 42,
		JWTClaimRole:   string(role),
		"exp":          time.Now().Add(time.Hour).Unix(),
	}
}

func protected(roles ...models.UserRole) http.Handler {
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		role, _ := GetUserRoleFromContext(r.Context())
		w.Header().Set("X-User", string(role))
		if id == 42 {
			w.WriteHeader(http.StatusNoContent)
		}
	})
	return Authenticate(testSecret)(RequireRoles(roles...)(final))
}

func TestAuthenticate(t *testing.T) {
	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"valid bearer", "Bearer " + signToken(t, testSecret, validClaims(models.RoleAdmin)), "", http.StatusNoContent},
		{"valid query token", "", signToken(t, testSecret, validClaims(models.RoleAdmin)), http.StatusNoContent},
		{"missing token", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", "", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + signToken(t, "other", validClaims(models.RoleAdmin)), "", http.StatusUnauthorized},
		{"expired", "Bearer " + signToken(t, testSecret, jwt.MapClaims{JWTClaimUserID: 42, JWTClaimRole: "admin", "exp": time.Now().Add(-time.Minute).Unix()}), "", http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			target := "/"
			if tc.query != "" {
				target = "/?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()

			protected(models.RoleAdmin).ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestRequireRoles(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, validClaims(models.RolePlayer)))
	rec := httptest.NewRecorder()

	protected(models.RoleAdmin, models.RoleEventManager).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	protected(models.RolePlayer).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "player", rec.Header().Get("X-User"))
}

func TestRequireRoles_UnknownRoleClaim(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, jwt.MapClaims{JWTClaimUserID: 42, JWTClaimRole: "organizer"}))
	rec := httptest.NewRecorder()

	protected(models.RoleAdmin).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetUserIDFromContext(t *testing.T) {
	ctx := WithClaims(httptest.NewRequest(http.MethodGet, "/", nil).Context(), jwt.MapClaims{JWTClaimUserID: "17"})
	id, err := GetUserIDFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, 17, id)

	ctx = WithClaims(ctx, jwt.MapClaims{JWTClaimUserID: float64(-3)})
	_, err = GetUserIDFromContext(ctx)
	assert.Error(t, err)

	_, err = GetUserIDFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.Error(t, err)
}
