package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Crane-Ceeshar/CCD-Suite-sub007/platform/go/auth/devtoken"
)

func TestExtractBearerToken(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		header string
		want   string
		found  bool
	}{
		{name: "missing header", header: "", want: "", found: false},
		{name: "standard bearer", header: "Bearer abc.def.ghi", want: "abc.def.ghi", found: true},
		{name: "lowercase scheme", header: "bearer abc.def", want: "abc.def", found: true},
		{name: "wrong scheme", header: "Basic abc", want: "", found: false},
		{name: "padded token", header: "Bearer   abc  ", want: "abc", found: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}

			token, found := ExtractBearerToken(r)
			require.Equal(t, tc.found, found)
			require.Equal(t, tc.want, token)
		})
	}
}

func TestJWTMiddlewareAttachesCredentials(t *testing.T) {
	t.Parallel()

	token, err := devtoken.BuildUnsignedToken(devtoken.Params{
		ProjectID: "ccd-dev",
		UserID:    "user-123",
		Email:     "admin@example.com",
		Name:      "Admin",
	}, time.Time{})
	require.NoError(t, err)

	var got *UserCredentials
	handler := JWT(UnsignedTokenVerifier(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got)
	require.Equal(t, "user-123", got.Id)
	require.Equal(t, "admin@example.com", got.Email)
}

func TestJWTMiddlewareRejectsInvalidToken(t *testing.T) {
	t.Parallel()

	verify := func(ctx context.Context, token string) (map[string]interface{}, error) {
		return nil, errors.New("boom")
	}

	called := false
	handler := JWT(verify, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	r.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, r)

	require.False(t, called)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, false, resp["success"])
}

func TestJWTMiddlewarePassesThroughWithoutToken(t *testing.T) {
	t.Parallel()

	handler := JWT(UnsignedTokenVerifier(), nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok := UserFromContext(r.Context())
		require.False(t, ok)
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
