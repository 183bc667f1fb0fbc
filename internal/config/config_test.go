package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"DB_DRIVER", "DB_PATH", "ADMIN_USERNAME", "ADMIN_PASSWORD", "BASIC_AUTH_USERNAME",
		"BASIC_AUTH_PASSWORD", "SESSION_SECRET", "SECRET_KEY", "SESSION_STORE", "SESSION_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("Expected default driver %s, got %s", DriverSQLite, cfg.Database.Driver)
	}
	if cfg.Database.Path != "mindmap.db" {
		t.Errorf("Expected default DB path mindmap.db, got %s", cfg.Database.Path)
	}
	if cfg.Admin.Username != "admin" || cfg.Admin.Password != "changeme" {
		t.Errorf("Unexpected admin defaults: %+v", cfg.Admin)
	}
	if !cfg.Session.SecretGenerated || len(cfg.Session.Secret) != 64 {
		t.Errorf("Expected a generated 32-byte hex secret, got %q", cfg.Session.Secret)
	}
	if cfg.Session.TTL != 31*24*time.Hour {
		t.Errorf("Expected 31 day TTL, got %v", cfg.Session.TTL)
	}
}

func TestLoad_LegacyBasicAuthNames(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PASSWORD", "")
	t.Setenv("BASIC_AUTH_USERNAME", "root")
	t.Setenv("BASIC_AUTH_PASSWORD", "s3cret")
	t.Setenv("SESSION_SECRET", "fixed")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Admin.Username != "root" || cfg.Admin.Password != "s3cret" {
		t.Errorf("Expected legacy names to be honoured, got %+v", cfg.Admin)
	}
	if cfg.Session.SecretGenerated {
		t.Error("Secret was configured, should not be generated")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database: DatabaseConfig{Driver: DriverSQLite, Path: "x.db"},
			Admin:    AdminConfig{Username: "admin", Password: "pw"},
			Session:  SessionConfig{Store: SessionStoreMemory, TTL: time.Hour, BcryptCost: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, "DB_DRIVER"},
		{"postgres without host", func(c *Config) { c.Database.Driver = DriverPostgres; c.Database.Name = "db" }, "DB_HOST"},
		{"unknown store", func(c *Config) { c.Session.Store = "redis" }, "SESSION_STORE"},
		{"bad cost", func(c *Config) { c.Session.BcryptCost = 2 }, "BCRYPT_COST"},
		{"empty admin password", func(c *Config) { c.Admin.Password = "" }, "ADMIN_PASSWORD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	sqlite := DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/m.db"}
	if dsn := sqlite.GetDSN(); !strings.HasPrefix(dsn, "file:/tmp/m.db?") {
		t.Errorf("Unexpected sqlite DSN %q", dsn)
	}

	pg := DatabaseConfig{Driver: DriverPostgres, Host: "h", Port: "5432", User: "u", Password: "p", Name: "n", SSLMode: "disable"}
	want := "host=h port=5432 user=u password=p dbname=n sslmode=disable"
	if dsn := pg.GetDSN(); dsn != want {
		t.Errorf("Expected %q, got %q", want, dsn)
	}
}
