package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mohamedamjad/n8n-deploy/internal/hostprep"
	"github.com/mohamedamjad/n8n-deploy/internal/schedule"
)

var scheduleCmd = cobra.Command{
	Use:   "schedule",
	Short: "Install the nightly backup and weekly OS update cron jobs",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := hostprep.RequireRoot(); err != nil {
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
		zap.L().Info("cron jobs in place")
		return nil
	},
}
