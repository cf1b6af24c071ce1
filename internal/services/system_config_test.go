package services

import (
	"testing"
)

func TestSystemConfigService_SetAndGet(t *testing.T) {
	db := openTestDB(t)
	svc := NewSystemConfigService(db)

	if err := svc.Set("task_calendar_country", "GB"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := svc.Get("task_calendar_country")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != "GB" {
		t.Errorf("value = %q, expected %q", value, "GB")
	}
}

func TestSystemConfigService_SetOverwrites(t *testing.T) {
	db := openTestDB(t)
	svc := NewSystemConfigService(db)

	if err := svc.Set("log_retention_days", "30"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := svc.Set("log_retention_days", "90"); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}

	if got := svc.GetInt("log_retention_days", 0); got != 90 {
		t.Errorf("GetInt = %d, expected 90", got)
	}
}

func TestSystemConfigService_GetWithDefault(t *testing.T) {
	db := openTestDB(t)
	svc := NewSystemConfigService(db)

	if got := svc.GetWithDefault("missing_key", "fallback"); got != "fallback" {
		t.Errorf("GetWithDefault = %q, expected %q", got, "fallback")
	}
}

func TestSystemConfigService_GetIntBadValue(t *testing.T) {
	db := openTestDB(t)
	svc := NewSystemConfigService(db)

	if err := svc.Set("log_retention_days", "ninety"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if got := svc.GetInt("log_retention_days", 30); got != 30 {
		t.Errorf("GetInt = %d, expected fallback 30", got)
	}
}

func TestSystemConfigService_LDAPConfigRoundTrip(t *testing.T) {
	db := openTestDB(t)
	svc := NewSystemConfigService(db)

	enabled := true
	host := "ldap.example.com"
	port := 636
	useSSL := true
	password := "s3cret"

	err := svc.UpdateLDAPConfig(&UpdateLDAPConfigRequest{
		Enabled:      &enabled,
		Host:         &host,
		Port:         &port,
		UseSSL:       &useSSL,
		BindPassword: &password,
	})
	if err != nil {
		t.Fatalf("UpdateLDAPConfig failed: %v", err)
	}

	cfg := svc.GetLDAPConfig()
	if !cfg.Enabled {
		t.Error("Enabled should be true")
	}
	if cfg.Host != host {
		t.Errorf("Host = %q, expected %q", cfg.Host, host)
	}
	if cfg.Port != port {
		t.Errorf("Port = %d, expected %d", cfg.Port, port)
	}
	if !cfg.UseSSL {
		t.Error("UseSSL should be true")
	}
	if !cfg.PasswordSet {
		t.Error("PasswordSet should be true after storing a bind password")
	}
}

func TestSystemConfigService_LDAPConfigDefaults(t *testing.T) {
	db := openTestDB(t)
	svc := NewSystemConfigService(db)

	cfg := svc.GetLDAPConfig()
	if cfg.Enabled {
		t.Error("LDAP should be disabled by default")
	}
	if cfg.Port != 389 {
		t.Errorf("default Port = %d, expected 389", cfg.Port)
	}
	if cfg.UserFilter != "(uid=%s)" {
		t.Errorf("default UserFilter = %q, expected %q", cfg.UserFilter, "(uid=%s)")
	}
	if cfg.PasswordSet {
		t.Error("PasswordSet should be false by default")
	}
}

func TestSystemConfigService_AuthSessionConfig(t *testing.T) {
	db := openTestDB(t)
	svc := NewSystemConfigService(db)

	cfg := svc.GetAuthSessionConfig()
	if cfg.AccessTokenExpireHours != 24 {
		t.Errorf("default access expiry = %d, expected 24", cfg.AccessTokenExpireHours)
	}
	if cfg.RefreshTokenExpireHours != 720 {
		t.Errorf("default refresh expiry = %d, expected 720", cfg.RefreshTokenExpireHours)
	}

	access := 8
	if err := svc.UpdateAuthSessionConfig(&UpdateAuthSessionConfigRequest{AccessTokenExpireHours: &access}); err != nil {
		t.Fatalf("UpdateAuthSessionConfig failed: %v", err)
	}

	cfg = svc.GetAuthSessionConfig()
	if cfg.AccessTokenExpireHours != 8 {
		t.Errorf("access expiry = %d, expected 8", cfg.AccessTokenExpireHours)
	}
	if cfg.RefreshTokenExpireHours != 720 {
		t.Errorf("refresh expiry should be untouched, got %d", cfg.RefreshTokenExpireHours)
	}
}
