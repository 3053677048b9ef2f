package services

import (
	"encoding/json"
	"testing"

	"tallybook/internal/models"
	"tallybook/internal/testutil"
)

func TestAuditLog(t *testing.T) {
	t.Run("records_changes_as_json", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, "CREATE_SALE", "sale", "s-1", "10.0.0.1", map[string]interface{}{"total": "37.5"})

		var entry models.AuditLog
		if err := db.Where("user_id = ?", user.ID).First(&entry).Error; err != nil {
			t.Fatalf("expected an entry: %v", err)
		}
		var changes map[string]string
		if err := json.Unmarshal([]byte(entry.Changes), &changes); err != nil {
			t.Fatalf("changes are not JSON: %v", err)
		}
		if changes["total"] != "37.5" || entry.IPAddress != "10.0.0.1" {
			t.Errorf("unexpected entry %+v", entry)
		}
	})

	t.Run("empty_changes_stored_blank", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewAuditService(db)
		user := testutil.CreateTestUser(t, db)

		svc.Log(user.ID, "DELETE_PRODUCT", "product", "p-1", "", nil)

		var entry models.AuditLog
		db.Where("user_id = ?", user.ID).First(&entry)
		if entry.Changes != "" {
			t.Errorf("expected no changes, got %q", entry.Changes)
		}
	})
}

func TestAuditTrail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	svc := NewAuditService(db)
	owner := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	svc.Log(owner.ID, "CREATE_SALE", "sale", "s-1", "", nil)
	svc.Log(owner.ID, "COMPENSATE_SALE", "sale", "s-1", "", nil)
	svc.Log(owner.ID, "CREATE_SALE", "sale", "s-2", "", nil)
	svc.Log(other.ID, "CREATE_SALE", "sale", "s-1", "", nil)

	trail, err := svc.Trail(owner.ID, "sale", "s-1")
	testutil.AssertNoError(t, err)
	if len(trail) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(trail))
	}
	actions := map[string]bool{}
	for _, e := range trail {
		if e.UserID != owner.ID {
			t.Errorf("trail leaked entry for %s", e.UserID)
		}
		actions[e.Action] = true
	}
	if !actions["CREATE_SALE"] || !actions["COMPENSATE_SALE"] {
		t.Errorf("unexpected actions %v", actions)
	}

	empty, err := svc.Trail(owner.ID, "sale", "unknown")
	testutil.AssertNoError(t, err)
	if len(empty) != 0 {
		t.Errorf("expected empty trail, got %d", len(empty))
	}
}
