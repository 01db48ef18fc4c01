package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohamedamjad/n8n-deploy/internal/deploy"
	"github.com/mohamedamjad/n8n-deploy/internal/run"
)

var (
	opts = struct {
		BaseDir   string
		Domain    string
		Email     string
		User      string
		Password  string
		Allowlist string
		Timezone  string
	}{}

	rootCmd = cobra.Command{
		Use:           "n8n-deploy",
		Short:         "Provision a single-node n8n deployment behind Traefik with TLS, basic auth and scheduled backups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&opts.BaseDir, "base-dir", "", "install base directory (default /opt/n8n, env N8N_DEPLOY_BASE_DIR)")
	rootCmd.AddCommand(&installCmd)
	rootCmd.AddCommand(&renderCmd)
	rootCmd.AddCommand(&backupCmd)
	rootCmd.AddCommand(&scheduleCmd)
	rootCmd.AddCommand(&statusCmd)
	rootCmd.AddCommand(&doctorCmd)
	rootCmd.AddCommand(&downCmd)
}

func Main() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func settings() deploy.Settings {
	s := deploy.LoadSettings()
	if opts.BaseDir != "" {
		s.BaseDir = opts.BaseDir
	}
	if opts.Timezone != "" {
		s.Timezone = opts.Timezone
	}
	return s
}

func layout() deploy.Layout {
	return deploy.NewLayout(settings().BaseDir)
}

func runner() run.Runner {
	return run.ExecRunner{}
}
