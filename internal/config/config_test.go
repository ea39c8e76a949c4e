package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EMAIL_USER", "shop@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 5000, cfg.Server.Port)
	require.Equal(t, "uploads", cfg.Upload.Dir)
	require.Equal(t, 20, cfg.Upload.MaxImages)
	require.Equal(t, []string{"png", "jpg", "jpeg", "gif"}, cfg.Upload.AllowedExtensions)
	require.Equal(t, "smtp", cfg.Email.Provider)
	require.Equal(t, "smtp.gmail.com", cfg.Email.SMTP.Host)
	require.Equal(t, 465, cfg.Email.SMTP.Port)
	require.Equal(t, "https://api.ebay.com/ws/api.dll", cfg.Ebay.Endpoint)
}

func TestLoadLegacyEnvNames(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ID", "app")
	t.Setenv("DEV_ID", "dev")
	t.Setenv("CERT_ID", "cert")
	t.Setenv("AUTH_TOKEN", "token")
	t.Setenv("EMAIL_USER", "shop@example.com")
	t.Setenv("EMAIL_PASS", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "app", cfg.Ebay.AppID)
	require.Equal(t, "dev", cfg.Ebay.DevID)
	require.Equal(t, "cert", cfg.Ebay.CertID)
	require.Equal(t, "token", cfg.Ebay.AuthToken)
	require.Equal(t, "shop@example.com", cfg.Email.SMTP.Username)
	require.Equal(t, "secret", cfg.Email.SMTP.Password)
	require.Equal(t, "shop@example.com", cfg.Email.From)
	require.Equal(t, "shop@example.com", cfg.Email.To)
}

func TestLoadPrefixedEnvWins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_ID", "legacy")
	t.Setenv("STOREFRONT_EBAY_APP_ID", "prefixed")
	t.Setenv("STOREFRONT_UPLOAD_MAX_IMAGES", "5")
	t.Setenv("EMAIL_USER", "shop@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "prefixed", cfg.Ebay.AppID)
	require.Equal(t, 5, cfg.Upload.MaxImages)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AUTH_TOKEN=from-dotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("AUTH_TOKEN") })
	t.Setenv("EMAIL_USER", "shop@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-dotenv", cfg.Ebay.AuthToken)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	yaml := []byte("upload:\n  dir: staging\n  allowed_extensions: [\".PNG\", \"jpg\"]\nemail:\n  provider: log\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "staging", cfg.Upload.Dir)
	require.Equal(t, []string{"png", "jpg"}, cfg.Upload.AllowedExtensions)
	require.Equal(t, "log", cfg.Email.Provider)
}

func TestLoadRejectsMissingMailbox(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("EMAIL_USER", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "email.from and email.to are required")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Email: EmailConfig{
				Provider: "smtp",
				From:     "shop@example.com",
				To:       "shop@example.com",
				SMTP:     SMTPConfig{TLSMode: "implicit"},
			},
			Upload: UploadConfig{Dir: "uploads", MaxImages: 20, AllowedExtensions: []string{"png"}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing dir", mutate: func(c *Config) { c.Upload.Dir = "" }, wantErr: true},
		{name: "zero max images", mutate: func(c *Config) { c.Upload.MaxImages = 0 }, wantErr: true},
		{name: "no extensions", mutate: func(c *Config) { c.Upload.AllowedExtensions = nil }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.Email.Provider = "pigeon" }, wantErr: true},
		{name: "unknown tls mode", mutate: func(c *Config) { c.Email.SMTP.TLSMode = "none" }, wantErr: true},
		{name: "starttls", mutate: func(c *Config) { c.Email.SMTP.TLSMode = "starttls" }},
		{name: "ses provider", mutate: func(c *Config) { c.Email.Provider = "ses" }},
		{name: "smtp without from", mutate: func(c *Config) { c.Email.From = "" }, wantErr: true},
		{name: "smtp without to", mutate: func(c *Config) { c.Email.To = "" }, wantErr: true},
		{
			name: "ses without to",
			mutate: func(c *Config) {
				c.Email.Provider = "ses"
				c.Email.To = ""
			},
			wantErr: true,
		},
		{
			name: "log provider without addresses",
			mutate: func(c *Config) {
				c.Email.Provider = "log"
				c.Email.From = ""
				c.Email.To = ""
			},
		},
		{
			name: "bad rate limit with redis",
			mutate: func(c *Config) {
				c.Redis.Enabled = true
				c.RateLimit = RateLimitConfig{Enabled: true}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestEnsureUploadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	cfg := &Config{Upload: UploadConfig{Dir: dir}}

	require.NoError(t, cfg.EnsureUploadDir())
	require.DirExists(t, dir)

	// second call is a no-op
	require.NoError(t, cfg.EnsureUploadDir())
}
