package deploy

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Domain:       "n8n.example.com",
		Email:        "admin@example.com",
		AuthUser:     "admin",
		AuthPassword: "secret",
		AuthHash:     "admin:$2a$10$abcdefghijklmnopqrstuvwxyz012345678901234567890123456",
		Timezone:     "UTC",
	}
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())

	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"empty domain", func(c *Config) { c.Domain = "" }, "domain"},
		{"bare word domain", func(c *Config) { c.Domain = "localhost" }, "domain"},
		{"domain with scheme", func(c *Config) { c.Domain = "https://n8n.example.com" }, "domain"},
		{"bad email", func(c *Config) { c.Email = "not-an-email" }, "email"},
		{"empty user", func(c *Config) { c.AuthUser = "  " }, "username"},
		{"colon in user", func(c *Config) { c.AuthUser = "ad:min" }, "username"},
		{"empty password", func(c *Config) { c.AuthPassword = "" }, "password"},
		{"missing hash", func(c *Config) { c.AuthHash = "" }, "password"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			var cerr *ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tc.field, cerr.Field)
		})
	}
}

func TestParseAllowlist(t *testing.T) {
	got, err := ParseAllowlist("10.0.0.0/8, 192.168.1.5 ,2001:db8::1")
	require.NoError(t, err)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.5/32"),
		netip.MustParsePrefix("2001:db8::1/128"),
	}, got)
}

func TestParseAllowlistEmpty(t *testing.T) {
	got, err := ParseAllowlist("  ")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestParseAllowlistRejectsGarbage(t *testing.T) {
	_, err := ParseAllowlist("10.0.0.0/8,not-an-ip")
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "allowlist", cerr.Field)
}
