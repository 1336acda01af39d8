package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pourboire/backend/internal/auth"
)

func jwtRouter(svc *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWT(svc))
	r.GET("/whoami", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.MustGet(ContextUserID).(uuid.UUID),
			"role":    c.MustGet(ContextUserRole).(string),
			"token":   c.MustGet(ContextUserToken).(string),
		})
	})
	return r
}

func TestJWTMiddlewareSetsClaimsAndRawToken(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 24)
	userID := uuid.New()
	token, err := svc.Generate(userID, uuid.New(), "alice@example.com", "manager")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	jwtRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		UserID uuid.UUID `json:"user_id"`
		Role   string    `json:"role"`
		Token  string    `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, userID, body.UserID)
	assert.Equal(t, "manager", body.Role)
	assert.Equal(t, token, body.Token, "raw token must be kept for identity-service forwarding")
}

func TestJWTMiddlewareRejects(t *testing.T) {
	svc := auth.NewJWTService("test-secret", 24)
	foreign, err := auth.NewJWTService("other-secret", 24).Generate(uuid.New(), uuid.New(), "a@example.com", "manager")
	require.NoError(t, err)

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{name: "missing header", header: "", wantCode: "MISSING_TOKEN"},
		{name: "not bearer", header: "Basic abc", wantCode: "INVALID_TOKEN"},
		{name: "wrong secret", header: "Bearer " + foreign, wantCode: "INVALID_TOKEN"},
		{name: "garbage token", header: "Bearer not-a-jwt", wantCode: "INVALID_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			jwtRouter(svc).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body struct {
				Error string `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error)
		})
	}
}
