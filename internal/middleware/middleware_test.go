package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"tallybook/internal/config"
	apperrors "tallybook/internal/errors"
	"tallybook/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.Get().JWTSecret = "test-secret"
}

func doRequest(r *gin.Engine, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	code, _ := errObj["code"].(string)
	return code
}

func TestOperatorAuthMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{"valid_api_key", "operator-key", "operator-key", http.StatusOK, ""},
		{"invalid_api_key", "operator-key", "wrong-key", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"missing_api_key", "operator-key", "", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"empty_configured_key", "", "any-key", http.StatusServiceUnavailable, "OPERATOR_NOT_CONFIGURED"},
		{"partial_match_rejected", "operator-key", "operator", http.StatusUnauthorized, "INVALID_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(OperatorAuthMiddleware(tt.configuredKey))
			r.POST("/test", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

			headers := map[string]string{}
			if tt.requestKey != "" {
				headers["X-API-Key"] = tt.requestKey
			}
			rec := doRequest(r, headers)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErrorCode != "" {
				if code := errorCode(t, rec); code != tt.wantErrorCode {
					t.Errorf("error code = %q, want %q", code, tt.wantErrorCode)
				}
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	user := &models.User{Base: models.Base{ID: "0190f3a0-0000-7000-8000-000000000001"}, Email: "owner@shop.test"}
	access, err := GenerateAccessToken(user)
	if err != nil {
		t.Fatal(err)
	}
	refresh, err := GenerateRefreshToken(user)
	if err != nil {
		t.Fatal(err)
	}

	newRouter := func() *gin.Engine {
		r := gin.New()
		r.Use(AuthMiddleware())
		r.POST("/test", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"user_id": c.GetString("userID")})
		})
		return r
	}

	t.Run("valid_access_token", func(t *testing.T) {
		rec := doRequest(newRouter(), map[string]string{"Authorization": "Bearer " + access})
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if got := parseBody(t, rec)["user_id"]; got != user.ID {
			t.Errorf("user_id = %v, want %s", got, user.ID)
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		rec := doRequest(newRouter(), nil)
		if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "UNAUTHORIZED" {
			t.Errorf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("refresh_token_rejected", func(t *testing.T) {
		rec := doRequest(newRouter(), map[string]string{"Authorization": "Bearer " + refresh})
		if rec.Code != http.StatusUnauthorized || errorCode(t, rec) != "INVALID_TOKEN" {
			t.Errorf("got %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("garbage_token", func(t *testing.T) {
		rec := doRequest(newRouter(), map[string]string{"Authorization": "Bearer nope"})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("refresh_token_validates", func(t *testing.T) {
		claims, err := ValidateRefreshToken(refresh)
		if err != nil {
			t.Fatal(err)
		}
		if claims.UserID != user.ID {
			t.Errorf("user id = %s, want %s", claims.UserID, user.ID)
		}
		if _, err := ValidateRefreshToken(access); err == nil {
			t.Error("access token must not validate as refresh token")
		}
	})
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.POST("/test", func(c *gin.Context) {
		_ = c.Error(apperrors.WithDetails(apperrors.ErrInsufficientStock, map[string]any{"available": 2}))
	})

	rec := doRequest(r, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	errObj := parseBody(t, rec)["error"].(map[string]interface{})
	details, ok := errObj["details"].(map[string]interface{})
	if !ok || details["available"] != float64(2) {
		t.Errorf("expected details.available = 2, got %v", errObj["details"])
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.POST("/test", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	given := "0190f3a0-0000-7000-8000-0000000000aa"
	rec := doRequest(r, map[string]string{"X-Request-ID": given})
	if got := rec.Header().Get("X-Request-ID"); got != given {
		t.Errorf("request id = %q, want %q", got, given)
	}

	rec = doRequest(r, map[string]string{"X-Request-ID": "not-a-uuid"})
	if got := rec.Header().Get("X-Request-ID"); got == "not-a-uuid" || got == "" {
		t.Errorf("expected a generated request id, got %q", got)
	}
}
