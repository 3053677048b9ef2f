package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestAuthFlow_RegisterLoginRefresh(t *testing.T) {
	app := setupApp(t)

	_, _, userID := app.registerUser(t, "owner@shop.test", "password123")
	if userID == "" {
		t.Fatal("expected a user ID")
	}

	access, refresh := app.loginUser(t, "owner@shop.test", "password123")

	rec := app.request("GET", "/api/v1/profile", "", access)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["id"] != userID || user["business_name"] != "Corner Shop" {
		t.Errorf("unexpected profile %v", user)
	}

	rec = app.request("POST", "/api/v1/auth/refresh", fmt.Sprintf(`{"refresh_token":%q}`, refresh), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh failed: %d %s", rec.Code, rec.Body.String())
	}
	renewed := parseJSON(t, rec)["access_token"].(string)

	rec = app.request("GET", "/api/v1/profile", "", renewed)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with refreshed token, got %d", rec.Code)
	}
}

func TestAuthFlow_Failures(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "taken@shop.test", "password123")

	t.Run("duplicate email", func(t *testing.T) {
		rec := app.request("POST", "/api/v1/auth/register", `{"email":"taken@shop.test","password":"password123"}`, "")
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})

	t.Run("lockout after repeated failures", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			rec := app.request("POST", "/api/v1/auth/login", `{"email":"taken@shop.test","password":"nope"}`, "")
			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("attempt %d: expected 401, got %d", i+1, rec.Code)
			}
		}
		rec := app.request("POST", "/api/v1/auth/login", `{"email":"taken@shop.test","password":"password123"}`, "")
		if rec.Code != http.StatusLocked {
			t.Fatalf("expected 423 while locked, got %d", rec.Code)
		}
	})

	t.Run("no token", func(t *testing.T) {
		if rec := app.request("GET", "/api/v1/products/low-stock", "", ""); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if rec := app.request("GET", "/api/v1/profile", "", "not-a-jwt"); rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}
