package stack

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mohamedamjad/n8n-deploy/internal/deploy"
)

type fakeRunner struct {
	calls []string
}

func (f *fakeRunner) Stream(name string, args ...string) error {
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))
	return nil
}

func (f *fakeRunner) Capture(name string, args ...string) (string, error) {
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))
	return "", nil
}

func (f *fakeRunner) Feed(input string, name string, args ...string) error { return nil }
func (f *fakeRunner) LookPath(name string) error                           { return nil }

func TestUpPullsThenStartsDetached(t *testing.T) {
	r := &fakeRunner{}
	l := &Launcher{Runner: r, Layout: deploy.NewLayout("/opt/n8n"), Log: zap.NewNop()}

	require.NoError(t, l.Up())

	require.Len(t, r.calls, 2)
	assert.Equal(t, "docker compose -f /opt/n8n/docker-compose.yml pull --quiet", r.calls[0])
	assert.Equal(t, "docker compose -f /opt/n8n/docker-compose.yml up -d --remove-orphans", r.calls[1])
}

func TestDown(t *testing.T) {
	r := &fakeRunner{}
	l := &Launcher{Runner: r, Layout: deploy.NewLayout("/opt/n8n"), Log: zap.NewNop()}

	require.NoError(t, l.Down())

	require.Len(t, r.calls, 1)
	assert.Equal(t, "docker compose -f /opt/n8n/docker-compose.yml down", r.calls[0])
}
