package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohamedamjad/n8n-deploy/internal/hostprep"
	"github.com/mohamedamjad/n8n-deploy/internal/stack"
)

var downCmd = cobra.Command{
	Use:   "down",
	Short: "Stop the stack and disable its systemd supervision",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hostprep.RequireRoot(); err != nil {
			return err
		}
		launcher := &stack.Launcher{Runner: runner(), Layout: layout(), Log: zap.L()}
		if err := launcher.Down(); err != nil {
			return err
		}
		if err := launcher.DisableUnit(); err != nil {
			return err
		}
		zap.L().Info("stack stopped")
		return nil
	},
}
