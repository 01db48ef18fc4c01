package cli

import (
	"net/netip"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohamedamjad/n8n-deploy/internal/deploy"
	"github.com/mohamedamjad/n8n-deploy/internal/hostprep"
	"github.com/mohamedamjad/n8n-deploy/internal/schedule"
	"github.com/mohamedamjad/n8n-deploy/internal/stack"
)

var installCmd = cobra.Command{
	Use:   "install",
	Short: "Collect parameters, prepare the host and bring the stack up",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Fail before prompting: everything after rendering needs root.
		if err := hostprep.RequireRoot(); err != nil {
			return err
		}

		s := settings()
		cfg := deploy.Config{
			Domain:       opts.Domain,
			Email:        opts.Email,
			AuthUser:     opts.User,
			AuthPassword: opts.Password,
			Timezone:     s.Timezone,
		}
		if cmd.Flags().Changed("allowlist") {
			list, err := deploy.ParseAllowlist(opts.Allowlist)
			if err != nil {
				return err
			}
			if list == nil {
				list = []netip.Prefix{}
			}
			cfg.Allowlist = list
		}
		if err := deploy.NewPrompter().Collect(&cfg, s); err != nil {
			return err
		}

		log := zap.L()
		prep := &hostprep.Preparer{Runner: runner(), Log: log}
		if err := prep.EnsureDocker(); err != nil {
			return err
		}

		l := deploy.NewLayout(s.BaseDir)
		if err := l.Ensure(); err != nil {
			return err
		}

		artifacts, err := deploy.RenderAll(cfg, l)
		if err != nil {
			return err
		}
		if err := deploy.WriteArtifacts(artifacts); err != nil {
			return err
		}
		if err := deploy.SaveState(l, cfg); err != nil {
			return err
		}
		log.Info("artifacts rendered", zap.Int("count", len(artifacts)), zap.String("dir", l.BaseDir))

		launcher := &stack.Launcher{Runner: runner(), Layout: l, Log: log}
		if err := launcher.Up(); err != nil {
			return err
		}
		if err := launcher.InstallUnit(); err != nil {
			return err
		}

		binary, err := os.Executable()
		if err != nil {
			binary = "n8n-deploy"
		}
		sched := &schedule.Scheduler{Runner: runner()}
		if err := sched.EnsureJobs(schedule.DefaultJobs(binary)); err != nil {
			return err
		}

		log.Info("install complete",
			zap.String("url", "https://"+cfg.Domain),
			zap.String("unit", "n8n.service"))
		return nil
	},
}

func init() {
	installCmd.Flags().StringVar(&opts.Domain, "domain", "", "domain served by the proxy")
	installCmd.Flags().StringVar(&opts.Email, "email", "", "contact email for TLS certificates")
	installCmd.Flags().StringVar(&opts.User, "user", "", "basic-auth username")
	installCmd.Flags().StringVar(&opts.Password, "password", "", "basic-auth password (supply to avoid prompt)")
	installCmd.Flags().StringVar(&opts.Allowlist, "allowlist", "", "comma-separated IPs/CIDRs allowed through the proxy")
	installCmd.Flags().StringVar(&opts.Timezone, "timezone", "", "timezone for the application (default UTC)")
}
