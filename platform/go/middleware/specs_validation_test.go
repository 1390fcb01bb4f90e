package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const widgetsContract = `
openapi: 3.0.3
info:
  title: widgets
  version: "1.0"
paths:
  /widgets:
    get:
      security:
        - bearerAuth: []
      responses:
        "200":
          description: OK
    post:
      security:
        - bearerAuth: []
      requestBody:
        required: true
        content:
          application/json:
            schema:
              type: object
              required: [name]
              properties:
                name:
                  type: string
      responses:
        "201":
          description: Created
components:
  securitySchemes:
    bearerAuth:
      type: http
      scheme: bearer
`

func newContractRouter(t *testing.T) http.Handler {
	t.Helper()

	path := filepath.Join(t.TempDir(), "api.yaml")
	require.NoError(t, os.WriteFile(path, []byte(widgetsContract), 0o600))

	validator, err := NewSpecValidator(path)
	require.NoError(t, err)

	return validator(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestSpecValidatorRejectionsUseEnvelope(t *testing.T) {
	t.Parallel()

	router := newContractRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer token")
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	require.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
}

func TestSpecValidatorMissingTokenUsesEnvelope(t *testing.T) {
	t.Parallel()

	router := newContractRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/widgets", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Error   *struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.False(t, resp.Success)
	require.Equal(t, "UNAUTHENTICATED", resp.Error.Code)
}
