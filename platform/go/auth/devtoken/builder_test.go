package devtoken

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBuildUnsignedToken(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	token, err := BuildUnsignedToken(Params{
		ProjectID:     "ccd-dev",
		UserID:        "user-1",
		Email:         "dev@example.com",
		Name:          "Dev User",
		EmailVerified: true,
	}, now)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 2)

	payloadRaw, err := base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)

	var claims map[string]any
	require.NoError(t, json.Unmarshal(payloadRaw, &claims))

	require.Equal(t, "user-1", claims["sub"])
	require.Equal(t, "user-1", claims["uid"])
	require.Equal(t, "dev@example.com", claims["email"])
	require.Equal(t, true, claims["email_verified"])
	require.Equal(t, "https://securetoken.google.com/ccd-dev", claims["iss"])
	require.Equal(t, "ccd-dev", claims["aud"])
	require.EqualValues(t, now.Unix(), claims["iat"])
	require.EqualValues(t, now.Add(time.Hour).Unix(), claims["exp"])
}

func TestBuildUnsignedTokenValidation(t *testing.T) {
	t.Parallel()

	_, err := BuildUnsignedToken(Params{UserID: "u", Email: "e@x"}, time.Time{})
	require.Error(t, err)

	_, err = BuildUnsignedToken(Params{ProjectID: "p", Email: "e@x"}, time.Time{})
	require.Error(t, err)

	_, err = BuildUnsignedToken(Params{ProjectID: "p", UserID: "u"}, time.Time{})
	require.Error(t, err)
}
