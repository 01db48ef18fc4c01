package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mohamedamjad/n8n-deploy/internal/doctor"
)

var doctorCmd = cobra.Command{
	Use:   "doctor",
	Short: "Run preflight checks against this host",
	RunE: func(cmd *cobra.Command, args []string) error {
		warnings := doctor.Run(os.Stdout, runner(), layout())
		if warnings > 0 {
			fmt.Printf("%d warning(s); install may still work but review them first\n", warnings)
		}
		return nil
	},
}
