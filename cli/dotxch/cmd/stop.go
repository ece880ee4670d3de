package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "stop a daemonized resolver",
	RunE: func(cmd *cobra.Command, args []string) error {
		alive, err := stopPid(pidFile)
		if err != nil {
			return fmt.Errorf("stop dotxch: %w", err)
		}
		if !alive {
			fmt.Println("dotxch was not running, stale pid file removed")
			return nil
		}
		fmt.Println("dotxch stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
