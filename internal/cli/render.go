package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohamedamjad/n8n-deploy/internal/deploy"
)

var renderCmd = cobra.Command{
	Use:   "render",
	Short: "Re-render all configuration artifacts from the saved install state",
	RunE: func(cmd *cobra.Command, args []string) error {
		l := layout()
		cfg, err := deploy.LoadState(l)
		if err != nil {
			return err
		}
		if err := deploy.HydrateFromEnvFile(l, &cfg); err != nil {
			return err
		}
		artifacts, err := deploy.RenderAll(cfg, l)
		if err != nil {
			return err
		}
		if err := deploy.WriteArtifacts(artifacts); err != nil {
			return err
		}
		zap.L().Info("artifacts rendered", zap.Int("count", len(artifacts)), zap.String("dir", l.BaseDir))
		return nil
	},
}
