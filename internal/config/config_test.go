package config

import (
	"testing"

	"github.com/jeovahfialho/faturamento-report/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("EMAIL_REMETENTE", "")
	t.Setenv("SENHA_REMETENTE", "")

	cfg := Load()

	assert.Equal(t, "Controle_Pedidos.xlsx", cfg.LocalFile)
	assert.Equal(t, "data", cfg.SheetName)
	assert.Equal(t, "smtp.gmail.com", cfg.SMTPHost)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, "20s", cfg.FetchTimeout.String())
	assert.False(t, notify.NewMailer(cfg.MailConfig()).Enabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_MailCredentials(t *testing.T) {
	t.Setenv("EMAIL_REMETENTE", "financeiro@example.com")
	t.Setenv("SENHA_REMETENTE", "segredo")

	cfg := Load()

	assert.True(t, notify.NewMailer(cfg.MailConfig()).Enabled())
	assert.Equal(t, "financeiro@example.com", cfg.SenderAddress)

	mail := cfg.MailConfig()
	assert.Equal(t, cfg.SMTPHost, mail.Host)
	assert.Equal(t, cfg.SMTPPort, mail.Port)
	assert.Equal(t, "segredo", mail.SenderSecret)
	assert.Equal(t, cfg.SMTPTimeout, mail.Timeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty sheet", func(c *Config) { c.SheetName = "  " }, false},
		{"zero fetch timeout", func(c *Config) { c.FetchTimeout = 0 }, false},
		{"bad smtp port", func(c *Config) { c.SMTPPort = 70000 }, false},
		{"zero upload limit", func(c *Config) { c.UploadLimitMB = 0 }, false},
		{"zero rate limit", func(c *Config) { c.APIRateLimit = 0 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
