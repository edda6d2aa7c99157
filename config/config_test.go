package config

import (
	"testing"
	"time"
)

func TestMaskPassword_HidesSecret(t *testing.T) {
	dsn := "host=db port=5432 user=app password=s3cret dbname=site sslmode=disable"
	got := maskPassword(dsn)
	want := "host=db port=5432 user=app password=***** dbname=site sslmode=disable"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestMaskPassword_TrailingPassword(t *testing.T) {
	got := maskPassword("user=app password=s3cret")
	if got != "user=app password=*****" {
		t.Errorf("unexpected mask: %q", got)
	}
}

func TestMaskPassword_NoPassword(t *testing.T) {
	dsn := "host=db user=app"
	if got := maskPassword(dsn); got != dsn {
		t.Errorf("expected dsn unchanged, got %q", got)
	}
}

func TestGetEnvAsInt_FallbackOnGarbage(t *testing.T) {
	t.Setenv("TEST_AGENCY_INT", "abc")
	if got := getEnvAsInt("TEST_AGENCY_INT", 7); got != 7 {
		t.Errorf("expected fallback 7, got %d", got)
	}
	t.Setenv("TEST_AGENCY_INT", "42")
	if got := getEnvAsInt("TEST_AGENCY_INT", 7); got != 42 {
		t.Errorf("expected 42, got %d", got)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_AGENCY_BOOL", "true")
	if !getEnvAsBool("TEST_AGENCY_BOOL", false) {
		t.Error("expected true")
	}
	t.Setenv("TEST_AGENCY_BOOL", "nope")
	if getEnvAsBool("TEST_AGENCY_BOOL", false) {
		t.Error("expected fallback false")
	}
}

func TestLoadConfig_RequiresJWTSecret(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "")
	if err := LoadConfig(); err == nil {
		t.Fatal("expected error when JWT_SECRET is empty")
	}
}

func TestLoadConfig_RejectsNonNumericSMTPPort(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SMTP_PORT", "smtp")
	if err := LoadConfig(); err == nil {
		t.Fatal("expected error for SMTP_PORT=smtp")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("SMTP_USERNAME", "mailer@agency.test")
	t.Setenv("RECEIVER_EMAIL", "")
	t.Setenv("JWT_TTL_HOURS", "2")

	if err := LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if AppConfig.SMTP.Port != 2525 {
		t.Errorf("expected smtp port 2525, got %d", AppConfig.SMTP.Port)
	}
	// An explicitly empty RECEIVER_EMAIL is kept as set.
	if AppConfig.ReceiverEmail != "" {
		t.Errorf("expected empty receiver, got %q", AppConfig.ReceiverEmail)
	}
	if AppConfig.JWTTTL != 2*time.Hour {
		t.Errorf("expected ttl 2h, got %v", AppConfig.JWTTTL)
	}
}
