package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohamedamjad/n8n-deploy/internal/backup"
)

var backupCmd = cobra.Command{
	Use:   "backup",
	Short: "Archive the persistent data directory into a timestamped tar.gz",
	RunE: func(cmd *cobra.Command, args []string) error {
		l := layout()
		path, err := backup.Snapshot(l.DataDir, l.BackupDir)
		if err != nil {
			return err
		}
		zap.L().Info("backup written", zap.String("archive", path))
		return nil
	},
}
