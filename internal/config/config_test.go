package config

import (
	"os"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// DatabaseConfig.GetDSN
// ---------------------------------------------------------------------------

func TestGetDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{
			name: "standard config",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "orgboard",
				Password: "secret",
				Name:     "orgboard",
				SSLMode:  "require",
			},
			want: "host=localhost port=5432 user=orgboard password=secret dbname=orgboard sslmode=require",
		},
		{
			name: "disable ssl mode",
			cfg: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				User:     "admin",
				Password: "pass",
				Name:     "mydb",
				SSLMode:  "disable",
			},
			want: "host=db.example.com port=5433 user=admin password=pass dbname=mydb sslmode=disable",
		},
		{
			name: "empty password",
			cfg: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "user",
				Password: "",
				Name:     "dbname",
				SSLMode:  "prefer",
			},
			want: "host=localhost port=5432 user=user password= dbname=dbname sslmode=prefer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetDSN()
			if got != tt.want {
				t.Errorf("GetDSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ServerConfig.GetAddress
// ---------------------------------------------------------------------------

func TestGetAddress(t *testing.T) {
	tests := []struct {
		name string
		cfg  ServerConfig
		want string
	}{
		{"default", ServerConfig{Host: "0.0.0.0", Port: 8080}, "0.0.0.0:8080"},
		{"localhost", ServerConfig{Host: "localhost", Port: 3000}, "localhost:3000"},
		{"empty host", ServerConfig{Host: "", Port: 8080}, ":8080"},
		{"port 443", ServerConfig{Host: "0.0.0.0", Port: 443}, "0.0.0.0:443"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.GetAddress()
			if got != tt.want {
				t.Errorf("GetAddress() = %q, want %q", got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Config.Validate
// ---------------------------------------------------------------------------

func minimalValidConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    8080,
			BaseURL: "http://localhost:8080",
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Name:         "orgboard",
			User:         "orgboard",
			QueryTimeout: 5 * time.Second,
		},
		Auth: AuthConfig{
			JWTSecret:  "test-jwt-secret-that-is-32-chars-!",
			TokenTTL:   24 * time.Hour,
			BcryptCost: 10,
			Cookie:     CookieConfig{Name: "token"},
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid minimal config passes", func(t *testing.T) {
		if err := minimalValidConfig().Validate(); err != nil {
			t.Errorf("Validate() unexpected error: %v", err)
		}
	})

	t.Run("invalid server port 0", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Server.Port = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for port 0, got nil")
		}
	})

	t.Run("invalid server port 70000", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Server.Port = 70000
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for port 70000, got nil")
		}
	})

	t.Run("missing base_url", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Server.BaseURL = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for empty base_url, got nil")
		}
	})

	t.Run("missing database host", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Database.Host = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for empty database host, got nil")
		}
	})

	t.Run("missing database name", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Database.Name = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for empty database name, got nil")
		}
	})

	t.Run("missing database user", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Database.User = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for empty database user, got nil")
		}
	})

	t.Run("non-positive query timeout", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Database.QueryTimeout = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for zero query_timeout, got nil")
		}
	})

	t.Run("missing jwt secret outside dev mode", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Auth.JWTSecret = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for empty jwt_secret, got nil")
		}
	})

	t.Run("missing jwt secret allowed in dev mode", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Auth.JWTSecret = ""
		cfg.Server.DevMode = true
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() unexpected error in dev mode: %v", err)
		}
	})

	t.Run("non-positive token ttl", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Auth.TokenTTL = 0
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for zero token_ttl, got nil")
		}
	})

	t.Run("bcrypt cost out of range", func(t *testing.T) {
		for _, cost := range []int{0, 3, 32} {
			cfg := minimalValidConfig()
			cfg.Auth.BcryptCost = cost
			if err := cfg.Validate(); err == nil {
				t.Errorf("Validate() expected error for bcrypt_cost %d, got nil", cost)
			}
		}
	})

	t.Run("missing cookie name", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Auth.Cookie.Name = ""
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for empty cookie name, got nil")
		}
	})

	t.Run("tls enabled missing cert_file", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Security.TLS = TLSConfig{Enabled: true, KeyFile: "key.pem"}
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for missing tls cert_file, got nil")
		}
	})

	t.Run("tls enabled missing key_file", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Security.TLS = TLSConfig{Enabled: true, CertFile: "cert.pem"}
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for missing tls key_file, got nil")
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		cfg := minimalValidConfig()
		cfg.Logging.Level = "verbose"
		if err := cfg.Validate(); err == nil {
			t.Error("Validate() expected error for invalid log level, got nil")
		}
	})

	t.Run("all valid log levels pass", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			cfg := minimalValidConfig()
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				t.Errorf("Validate() unexpected error for log level %q: %v", level, err)
			}
		}
	})
}

// ---------------------------------------------------------------------------
// Load – with config file
// ---------------------------------------------------------------------------

// writeTempConfig creates a temp YAML file and registers a cleanup to remove it.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "config-test-*.yaml")
	if err != nil {
		t.Fatal("CreateTemp:", err)
	}
	t.Cleanup(func() { os.Remove(f.Name()) })
	if _, err := f.WriteString(content); err != nil {
		t.Fatal("WriteString:", err)
	}
	f.Close()
	return f.Name()
}

func TestLoad_WithConfigFile(t *testing.T) {
	const content = `
server:
  host: "testhost"
  port: 9999
  base_url: "http://testhost:9999"
database:
  host: "dbhost"
  name: "testdb"
  user: "testuser"
auth:
  jwt_secret: "test-jwt-secret-that-is-32-chars-!"
logging:
  level: "debug"
`
	path := writeTempConfig(t, content)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Host != "testhost" {
		t.Errorf("Server.Host = %q, want testhost", cfg.Server.Host)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999", cfg.Server.Port)
	}
	if cfg.Database.Host != "dbhost" {
		t.Errorf("Database.Host = %q, want dbhost", cfg.Database.Host)
	}
	if cfg.Database.Name != "testdb" {
		t.Errorf("Database.Name = %q, want testdb", cfg.Database.Name)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestLoad_DefaultsApplied(t *testing.T) {
	// Config with only the required secret — setDefaults() fills the rest.
	const content = `
auth:
  jwt_secret: "test-jwt-secret-that-is-32-chars-!"
`
	path := writeTempConfig(t, content)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("default Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("default Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Database.Port != 5432 {
		t.Errorf("default Database.Port = %d, want 5432", cfg.Database.Port)
	}
	if cfg.Database.SSLMode != "require" {
		t.Errorf("default Database.SSLMode = %q, want require", cfg.Database.SSLMode)
	}
	if cfg.Database.QueryTimeout != 5*time.Second {
		t.Errorf("default Database.QueryTimeout = %v, want 5s", cfg.Database.QueryTimeout)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Errorf("default Auth.TokenTTL = %v, want 24h", cfg.Auth.TokenTTL)
	}
	if cfg.Auth.BcryptCost != 10 {
		t.Errorf("default Auth.BcryptCost = %d, want 10", cfg.Auth.BcryptCost)
	}
	if cfg.Auth.Cookie.Name != "token" {
		t.Errorf("default Auth.Cookie.Name = %q, want token", cfg.Auth.Cookie.Name)
	}
	if !cfg.Auth.Cookie.Secure {
		t.Error("default Auth.Cookie.Secure = false, want true")
	}
	if !cfg.Security.RateLimiting.Enabled {
		t.Error("default Security.RateLimiting.Enabled = false, want true")
	}
	if cfg.Security.RateLimiting.RequestsPerMinute != 200 {
		t.Errorf("default rate limit rpm = %d, want 200", cfg.Security.RateLimiting.RequestsPerMinute)
	}
	if cfg.Security.RateLimiting.AuthRequestsPerMinute != 10 {
		t.Errorf("default auth rate limit rpm = %d, want 10", cfg.Security.RateLimiting.AuthRequestsPerMinute)
	}
	if cfg.Sessions.SweepInterval != time.Hour {
		t.Errorf("default Sessions.SweepInterval = %v, want 1h", cfg.Sessions.SweepInterval)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_DB_PASS", "mysecret")
	t.Setenv("TEST_JWT", "env-jwt-secret-that-is-32-chars-!!")
	const content = `
database:
  password: "${TEST_DB_PASS}"
auth:
  jwt_secret: "${TEST_JWT}"
`
	path := writeTempConfig(t, content)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Database.Password != "mysecret" {
		t.Errorf("Database.Password = %q, want mysecret", cfg.Database.Password)
	}
	if cfg.Auth.JWTSecret != "env-jwt-secret-that-is-32-chars-!!" {
		t.Errorf("Auth.JWTSecret = %q, want expanded env value", cfg.Auth.JWTSecret)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("OBD_SERVER_PORT", "9001")
	t.Setenv("OBD_DATABASE_HOST", "envhost")
	const content = `
server:
  port: 8080
database:
  host: "filehost"
auth:
  jwt_secret: "test-jwt-secret-that-is-32-chars-!"
`
	path := writeTempConfig(t, content)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("Server.Port = %d, want env override 9001", cfg.Server.Port)
	}
	if cfg.Database.Host != "envhost" {
		t.Errorf("Database.Host = %q, want env override envhost", cfg.Database.Host)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeTempConfig(t, "server: [unclosed")
	_, err := Load(path)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}
