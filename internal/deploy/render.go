package deploy

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

const (
	authMiddleware      = "n8n-auth"
	allowlistMiddleware = "n8n-allowlist"
	unitName            = "n8n.service"
)

// RenderAll produces the five artifacts of a deployment. Output is a pure
// function of Config and Layout: rendering twice yields byte-identical
// content.
func RenderAll(cfg Config, layout Layout) ([]Artifact, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dynamic, err := renderDynamicConfig(cfg)
	if err != nil {
		return nil, err
	}
	static, err := renderStaticConfig(cfg)
	if err != nil {
		return nil, err
	}
	compose, err := renderCompose(cfg, layout)
	if err != nil {
		return nil, err
	}
	unit, err := renderUnit(layout)
	if err != nil {
		return nil, err
	}

	return []Artifact{
		{Path: filepath.Join(layout.BaseDir, ".env"), Content: renderEnvFile(cfg), Mode: 0o640},
		{Path: filepath.Join(layout.TraefikDir, "traefik.yml"), Content: static, Mode: 0o640},
		{Path: filepath.Join(layout.TraefikDir, "dynamic.yml"), Content: dynamic, Mode: 0o640},
		{Path: filepath.Join(layout.BaseDir, "docker-compose.yml"), Content: compose, Mode: 0o640},
		{Path: filepath.Join(layout.BaseDir, unitName), Content: unit, Mode: 0o644},
	}, nil
}

// renderEnvFile emits the application environment. Key order is fixed so the
// file is stable across runs. The basic-auth password is stored in the clear
// here; n8n reads it verbatim.
func renderEnvFile(cfg Config) []byte {
	var b strings.Builder
	pairs := []struct{ k, v string }{
		{"DOMAIN_NAME", cfg.Domain},
		{"SSL_EMAIL", cfg.Email},
		{"N8N_BASIC_AUTH_ACTIVE", "true"},
		{"N8N_BASIC_AUTH_USER", cfg.AuthUser},
		{"N8N_BASIC_AUTH_PASSWORD", cfg.AuthPassword},
		{"N8N_HOST", cfg.Domain},
		{"N8N_PORT", fmt.Sprint(appPort)},
		{"N8N_PROTOCOL", "https"},
		{"WEBHOOK_URL", "https://" + cfg.Domain + "/"},
		{"GENERIC_TIMEZONE", cfg.Timezone},
	}
	for _, p := range pairs {
		b.WriteString(p.k + "=" + p.v + "\n")
	}
	return []byte(b.String())
}

type staticConfig struct {
	EntryPoints           map[string]entryPoint `yaml:"entryPoints"`
	Providers             providersConfig       `yaml:"providers"`
	CertificatesResolvers map[string]resolver   `yaml:"certificatesResolvers"`
}

type entryPoint struct {
	Address string          `yaml:"address"`
	HTTP    *entryPointHTTP `yaml:"http,omitempty"`
}

type entryPointHTTP struct {
	Redirections redirections `yaml:"redirections"`
}

type redirections struct {
	EntryPoint redirectTarget `yaml:"entryPoint"`
}

type redirectTarget struct {
	To     string `yaml:"to"`
	Scheme string `yaml:"scheme"`
}

type providersConfig struct {
	Docker dockerProvider `yaml:"docker"`
	File   fileProvider   `yaml:"file"`
}

type dockerProvider struct {
	ExposedByDefault bool `yaml:"exposedByDefault"`
}

type fileProvider struct {
	Filename string `yaml:"filename"`
}

type resolver struct {
	ACME acmeConfig `yaml:"acme"`
}

type acmeConfig struct {
	Email        string   `yaml:"email"`
	Storage      string   `yaml:"storage"`
	TLSChallenge struct{} `yaml:"tlsChallenge"`
}

func renderStaticConfig(cfg Config) ([]byte, error) {
	sc := staticConfig{
		EntryPoints: map[string]entryPoint{
			"web": {
				Address: ":80",
				HTTP: &entryPointHTTP{
					Redirections: redirections{
						EntryPoint: redirectTarget{To: "websecure", Scheme: "https"},
					},
				},
			},
			"websecure": {Address: ":443"},
		},
		Providers: providersConfig{
			Docker: dockerProvider{ExposedByDefault: false},
			File:   fileProvider{Filename: "/etc/traefik/dynamic.yml"},
		},
		CertificatesResolvers: map[string]resolver{
			certResolver: {
				ACME: acmeConfig{
					Email:   cfg.Email,
					Storage: "/acme.json",
				},
			},
		},
	}
	return marshalYAML(sc)
}

type dynamicConfig struct {
	HTTP dynamicHTTP `yaml:"http"`
}

type dynamicHTTP struct {
	Middlewares map[string]middleware `yaml:"middlewares"`
}

type middleware struct {
	BasicAuth   *basicAuth   `yaml:"basicAuth,omitempty"`
	IPAllowList *ipAllowList `yaml:"ipAllowList,omitempty"`
}

type basicAuth struct {
	Users []string `yaml:"users"`
}

type ipAllowList struct {
	SourceRange []string `yaml:"sourceRange"`
}

// renderDynamicConfig emits the middleware definitions. The allowlist is one
// sourceRange entry per prefix; with an empty allowlist the middleware is
// omitted entirely so no traffic is blocked.
func renderDynamicConfig(cfg Config) ([]byte, error) {
	mws := map[string]middleware{
		authMiddleware: {BasicAuth: &basicAuth{Users: []string{cfg.AuthHash}}},
	}
	if len(cfg.Allowlist) > 0 {
		ranges := make([]string, 0, len(cfg.Allowlist))
		for _, p := range cfg.Allowlist {
			ranges = append(ranges, p.String())
		}
		mws[allowlistMiddleware] = middleware{IPAllowList: &ipAllowList{SourceRange: ranges}}
	}
	return marshalYAML(dynamicConfig{HTTP: dynamicHTTP{Middlewares: mws}})
}

type composeFile struct {
	Services map[string]composeService `yaml:"services"`
}

type composeService struct {
	Image       string       `yaml:"image"`
	Restart     string       `yaml:"restart"`
	Ports       []string     `yaml:"ports,omitempty"`
	EnvFile     []string     `yaml:"env_file,omitempty"`
	Environment []string     `yaml:"environment,omitempty"`
	Volumes     []string     `yaml:"volumes,omitempty"`
	Labels      []string     `yaml:"labels,omitempty"`
	Healthcheck *healthcheck `yaml:"healthcheck,omitempty"`
}

type healthcheck struct {
	Test     []string `yaml:"test"`
	Interval string   `yaml:"interval"`
	Timeout  string   `yaml:"timeout"`
	Retries  int      `yaml:"retries"`
}

func renderCompose(cfg Config, layout Layout) ([]byte, error) {
	middlewares := authMiddleware + "@file"
	if len(cfg.Allowlist) > 0 {
		middlewares += "," + allowlistMiddleware + "@file"
	}

	cf := composeFile{
		Services: map[string]composeService{
			"traefik": {
				Image:   proxyImage,
				Restart: "always",
				Ports:   []string{"80:80", "443:443"},
				Volumes: []string{
					filepath.Join(layout.TraefikDir, "traefik.yml") + ":/etc/traefik/traefik.yml:ro",
					filepath.Join(layout.TraefikDir, "dynamic.yml") + ":/etc/traefik/dynamic.yml:ro",
					layout.AcmeFile + ":/acme.json",
					// Read-only daemon socket so the proxy can discover the
					// app service's router labels.
					"/var/run/docker.sock:/var/run/docker.sock:ro",
				},
			},
			"n8n": {
				Image:       appImage,
				Restart:     "always",
				EnvFile:     []string{filepath.Join(layout.BaseDir, ".env")},
				Environment: []string{"TZ=" + cfg.Timezone},
				Volumes:     []string{layout.DataDir + ":/home/node/.n8n"},
				Labels: []string{
					"traefik.enable=true",
					fmt.Sprintf("traefik.http.routers.n8n.rule=Host(`%s`)", cfg.Domain),
					"traefik.http.routers.n8n.entrypoints=websecure",
					"traefik.http.routers.n8n.tls.certresolver=" + certResolver,
					"traefik.http.routers.n8n.middlewares=" + middlewares,
					fmt.Sprintf("traefik.http.services.n8n.loadbalancer.server.port=%d", appPort),
				},
				Healthcheck: &healthcheck{
					Test:     []string{"CMD-SHELL", fmt.Sprintf("wget -qO- http://localhost:%d%s || exit 1", appPort, healthPath)},
					Interval: "30s",
					Timeout:  "5s",
					Retries:  5,
				},
			},
		},
	}
	return marshalYAML(cf)
}

var unitTemplate = template.Must(template.New(unitName).Parse(`[Unit]
Description=n8n workflow automation stack
After=docker.service
Requires=docker.service

[Service]
Type=oneshot
RemainAfterExit=true
WorkingDirectory={{.BaseDir}}
ExecStartPre=/usr/bin/docker compose pull --quiet
ExecStart=/usr/bin/docker compose up -d
ExecStop=/usr/bin/docker compose down

[Install]
WantedBy=multi-user.target
`))

func renderUnit(layout Layout) ([]byte, error) {
	var buf bytes.Buffer
	if err := unitTemplate.Execute(&buf, layout); err != nil {
		return nil, fmt.Errorf("render %s: %w", unitName, err)
	}
	return buf.Bytes(), nil
}

func marshalYAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
