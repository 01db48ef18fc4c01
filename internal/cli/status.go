package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohamedamjad/n8n-deploy/internal/deploy"
)

var statusCmd = cobra.Command{
	Use:   "status",
	Short: "Show the saved install state and what is currently running",
	RunE: func(cmd *cobra.Command, args []string) error {
		l := layout()
		cfg, err := deploy.LoadState(l)
		if err != nil {
			return fmt.Errorf("no install found under %s (run 'n8n-deploy install'): %w", l.BaseDir, err)
		}

		fmt.Printf("domain:    %s\n", cfg.Domain)
		fmt.Printf("email:     %s\n", cfg.Email)
		fmt.Printf("auth user: %s\n", cfg.AuthUser)
		if len(cfg.Allowlist) == 0 {
			fmt.Println("allowlist: (none, all sources permitted)")
		} else {
			parts := make([]string, 0, len(cfg.Allowlist))
			for _, p := range cfg.Allowlist {
				parts = append(parts, p.String())
			}
			fmt.Printf("allowlist: %s\n", strings.Join(parts, ", "))
		}
		fmt.Printf("base dir:  %s\n", l.BaseDir)

		r := runner()
		unitState, _ := r.Capture("systemctl", "is-active", "n8n.service")
		fmt.Printf("unit:      %s\n", strings.TrimSpace(unitState))

		out, err := r.Capture("docker", "compose", "-f", l.BaseDir+"/docker-compose.yml", "ps")
		if err != nil {
			fmt.Println("compose status unavailable:")
			fmt.Println(strings.TrimSpace(out))
			return nil
		}
		fmt.Println(out)
		return nil
	},
}
