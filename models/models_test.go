package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Inquiry{}, &Note{}, &Admin{}, &Job{}, &Blog{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range InquiryStatuses {
		if !IsValidStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	for _, s := range []string{"", "archived", "in progress", "READ"} {
		if IsValidStatus(s) {
			t.Errorf("expected %q to be invalid", s)
		}
	}
}

func TestAdmin_Role(t *testing.T) {
	cases := []struct {
		admin Admin
		want  string
	}{
		{Admin{}, ""},
		{Admin{IsAdmin: 1}, RoleAdmin},
		{Admin{IsSuperAdmin: 1}, RoleSuperAdmin},
		{Admin{IsAdmin: 1, IsSuperAdmin: 1}, RoleSuperAdmin},
	}
	for _, tc := range cases {
		if got := tc.admin.Role(); got != tc.want {
			t.Errorf("Role() for %+v = %q, want %q", tc.admin, got, tc.want)
		}
	}
}

func TestInquiry_BeforeCreate_AssignsIDAndEmptyNotes(t *testing.T) {
	db := openTestDB(t)

	inq := Inquiry{Source: SourceContact, Name: "Jane", Email: "jane@x.com", Message: "Hi", Status: StatusUnread}
	if err := db.Create(&inq).Error; err != nil {
		t.Fatalf("create: %v", err)
	}
	if inq.ID == "" {
		t.Fatal("expected id to be generated")
	}

	var loaded Inquiry
	if err := db.First(&loaded, "id = ?", inq.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	body, _ := json.Marshal(loaded)
	if !strings.Contains(string(body), `"notes":[]`) {
		t.Errorf("expected notes to serialise as empty array, got %s", body)
	}
}

func TestInquiry_NotesPreloadOldestFirst(t *testing.T) {
	db := openTestDB(t)

	inq := Inquiry{Source: SourceContact, Name: "Jane", Status: StatusUnread}
	db.Create(&inq)

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for _, n := range []Note{
		{InquiryID: inq.ID, Content: "sent proposal", CreatedAt: at.Add(time.Hour)},
		{InquiryID: inq.ID, Content: "called back", CreatedAt: at},
	} {
		if err := db.Create(&n).Error; err != nil {
			t.Fatalf("create note: %v", err)
		}
	}

	var loaded Inquiry
	if err := db.Preload("Notes", OrderedNotes).First(&loaded, "id = ?", inq.ID).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(loaded.Notes))
	}
	if loaded.Notes[0].Content != "called back" || loaded.Notes[1].Content != "sent proposal" {
		t.Errorf("notes out of order: %+v", loaded.Notes)
	}
}

func TestEnsureSuperAdmin_Idempotent(t *testing.T) {
	db := openTestDB(t)

	created, err := EnsureSuperAdmin(db, "Root", "root@agency.test", "hash")
	if err != nil || !created {
		t.Fatalf("expected first call to create, got created=%v err=%v", created, err)
	}
	created, err = EnsureSuperAdmin(db, "Root", "root@agency.test", "other")
	if err != nil || created {
		t.Fatalf("expected second call to be a no-op, got created=%v err=%v", created, err)
	}

	var admin Admin
	db.Where("email = ?", "root@agency.test").First(&admin)
	if admin.PasswordHash != "hash" || admin.Role() != RoleSuperAdmin {
		t.Errorf("unexpected admin: %+v", admin)
	}
}

func TestEnsureSuperAdmin_SoftDeletedRowDoesNotFail(t *testing.T) {
	db := openTestDB(t)

	if _, err := EnsureSuperAdmin(db, "Root", "root@agency.test", "hash"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	db.Where("email = ?", "root@agency.test").Delete(&Admin{})

	created, err := EnsureSuperAdmin(db, "Root", "root@agency.test", "hash")
	if err != nil {
		t.Fatalf("expected no unique violation, got %v", err)
	}
	if created {
		t.Error("expected the existing row to be reused")
	}
}
