package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Email.Transport = "smtp"
	cfg.Email.SenderEmail = "tips@example.com"
	cfg.Email.SenderPassword = "app-password"
	cfg.Email.Recipients = []string{"trader@example.com"}
	cfg.Email.RetryDelays = []time.Duration{5 * time.Minute}
	cfg.JWT.SecretKey = "test-secret-key"
	return cfg
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_RequiredFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing sender email", func(c *Config) { c.Email.SenderEmail = "" }},
		{"no recipients", func(c *Config) { c.Email.Recipients = nil }},
		{"smtp without sender password", func(c *Config) { c.Email.SenderPassword = "" }},
		{"missing jwt secret", func(c *Config) { c.JWT.SecretKey = "" }},
		{"no retry delays", func(c *Config) { c.Email.RetryDelays = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_MailgunWithoutSMTPPassword(t *testing.T) {
	cfg := validConfig()
	cfg.Email.Transport = "mailgun"
	cfg.Email.SenderPassword = ""
	assert.NoError(t, cfg.Validate())
}
