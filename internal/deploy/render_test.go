package deploy

import (
	"net/netip"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testLayout() Layout {
	return NewLayout("/opt/n8n")
}

func artifactByName(t *testing.T, artifacts []Artifact, name string) Artifact {
	t.Helper()
	for _, a := range artifacts {
		if filepath.Base(a.Path) == name {
			return a
		}
	}
	t.Fatalf("no artifact named %s", name)
	return Artifact{}
}

func TestRenderAllIdempotent(t *testing.T) {
	cfg := validConfig()
	cfg.Allowlist = []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}

	first, err := RenderAll(cfg, testLayout())
	require.NoError(t, err)
	second, err := RenderAll(cfg, testLayout())
	require.NoError(t, err)

	require.Len(t, first, 5)
	require.Len(t, second, 5)
	for i := range first {
		assert.Equal(t, first[i].Path, second[i].Path)
		assert.Equal(t, first[i].Content, second[i].Content, "artifact %s differs between renders", first[i].Path)
	}
}

func TestRenderRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Domain = "not a domain"
	_, err := RenderAll(cfg, testLayout())
	var cerr *ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestEnvFileKeepsPlaintextPassword(t *testing.T) {
	artifacts, err := RenderAll(validConfig(), testLayout())
	require.NoError(t, err)
	env := string(artifactByName(t, artifacts, ".env").Content)

	assert.Contains(t, env, "N8N_BASIC_AUTH_PASSWORD=secret\n")
	assert.Contains(t, env, "N8N_HOST=n8n.example.com\n")
	assert.Contains(t, env, "WEBHOOK_URL=https://n8n.example.com/\n")
	assert.NotContains(t, env, "$2a$", "env file must carry the raw value, not the hash")
}

func TestDynamicConfigHashedCredential(t *testing.T) {
	artifacts, err := RenderAll(validConfig(), testLayout())
	require.NoError(t, err)
	dynamic := string(artifactByName(t, artifacts, "dynamic.yml").Content)

	assert.Contains(t, dynamic, "basicAuth")
	assert.Contains(t, dynamic, validConfig().AuthHash)
	assert.NotContains(t, dynamic, "secret", "plaintext password must never reach the proxy config")
}

func TestEmptyAllowlistDisablesFiltering(t *testing.T) {
	artifacts, err := RenderAll(validConfig(), testLayout())
	require.NoError(t, err)

	dynamic := string(artifactByName(t, artifacts, "dynamic.yml").Content)
	assert.NotContains(t, dynamic, "ipAllowList")

	compose := string(artifactByName(t, artifacts, "docker-compose.yml").Content)
	assert.Contains(t, compose, "middlewares=n8n-auth@file\n")
	assert.NotContains(t, compose, "n8n-allowlist")
}

func TestAllowlistOneEntryPerAddress(t *testing.T) {
	cfg := validConfig()
	cfg.Allowlist = []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.5/32"),
		netip.MustParsePrefix("203.0.113.0/24"),
	}
	artifacts, err := RenderAll(cfg, testLayout())
	require.NoError(t, err)

	var parsed struct {
		HTTP struct {
			Middlewares map[string]struct {
				IPAllowList *struct {
					SourceRange []string `yaml:"sourceRange"`
				} `yaml:"ipAllowList"`
			} `yaml:"middlewares"`
		} `yaml:"http"`
	}
	require.NoError(t, yaml.Unmarshal(artifactByName(t, artifacts, "dynamic.yml").Content, &parsed))

	mw, ok := parsed.HTTP.Middlewares["n8n-allowlist"]
	require.True(t, ok)
	require.NotNil(t, mw.IPAllowList)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.5/32", "203.0.113.0/24"}, mw.IPAllowList.SourceRange)

	compose := string(artifactByName(t, artifacts, "docker-compose.yml").Content)
	assert.Contains(t, compose, "middlewares=n8n-auth@file,n8n-allowlist@file")
}

func TestComposeManifestShape(t *testing.T) {
	artifacts, err := RenderAll(validConfig(), testLayout())
	require.NoError(t, err)
	compose := string(artifactByName(t, artifacts, "docker-compose.yml").Content)

	assert.Contains(t, compose, "traefik.http.routers.n8n.rule=Host(`n8n.example.com`)")
	assert.Contains(t, compose, "traefik.http.routers.n8n.tls.certresolver=letsencrypt")
	assert.Contains(t, compose, "/var/run/docker.sock:/var/run/docker.sock:ro")
	assert.Contains(t, compose, "/opt/n8n/traefik/traefik.yml:/etc/traefik/traefik.yml:ro")
	assert.Contains(t, compose, "/opt/n8n/traefik/acme.json:/acme.json")
	assert.Contains(t, compose, "/opt/n8n/data:/home/node/.n8n")
	assert.Contains(t, compose, "restart: always")
	assert.Contains(t, compose, "wget -qO- http://localhost:5678/healthz")
	assert.Contains(t, compose, `"80:80"`)
	assert.Contains(t, compose, `"443:443"`)
}

func TestStaticConfig(t *testing.T) {
	artifacts, err := RenderAll(validConfig(), testLayout())
	require.NoError(t, err)
	static := string(artifactByName(t, artifacts, "traefik.yml").Content)

	assert.Contains(t, static, "email: admin@example.com")
	assert.Contains(t, static, "storage: /acme.json")
	assert.Contains(t, static, "tlsChallenge")
	assert.Contains(t, static, "exposedByDefault: false")
	assert.Contains(t, static, `address: ":80"`)
	assert.Contains(t, static, `address: ":443"`)
}

func TestUnitIsOneShot(t *testing.T) {
	artifacts, err := RenderAll(validConfig(), testLayout())
	require.NoError(t, err)
	unit := artifactByName(t, artifacts, "n8n.service")

	assert.Equal(t, "/opt/n8n/n8n.service", unit.Path)
	for _, want := range []string{
		"Type=oneshot",
		"RemainAfterExit=true",
		"Requires=docker.service",
		"WorkingDirectory=/opt/n8n",
		"ExecStartPre=/usr/bin/docker compose pull",
		"ExecStart=/usr/bin/docker compose up -d",
		"ExecStop=/usr/bin/docker compose down",
	} {
		assert.Contains(t, string(unit.Content), want)
	}
}

func TestEnvFileDeterministicOrder(t *testing.T) {
	env := string(renderEnvFile(validConfig()))
	lines := strings.Split(strings.TrimSpace(env), "\n")
	require.Len(t, lines, 10)
	assert.True(t, strings.HasPrefix(lines[0], "DOMAIN_NAME="))
	assert.True(t, strings.HasPrefix(lines[len(lines)-1], "GENERIC_TIMEZONE="))
}
