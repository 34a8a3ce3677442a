package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonnyWalker81/pulse/backend/internal/logger"
)

var remindersCmd = &cobra.Command{
	Use:   "reminders",
	Short: "Reminder maintenance commands",
}

var remindersDispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Fire every due reminder once and exit",
	Long:  `Runs a single dispatch pass. Suitable for cron when the server runs with reminders.enabled=false.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Flush(2 * time.Second)

		a, err := newApp(cfg, log)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.newDispatcher(cfg, log).RunOnce(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	remindersCmd.AddCommand(remindersDispatchCmd)
}
