package cmd

import (
	"fmt"
	"github.com/everFinance/dotxch/config"
	"github.com/everFinance/dotxch/schema"
	"github.com/spf13/cobra"
	"os"
)

var cfgFile string
var cfg schema.Config

var rootCmd = &cobra.Command{
	Use:     "dotxch",
	Short:   "dotxch resolver daemon",
	Long:    `dotxch resolves .xch names against a chia full node and serves them over http`,
	Version: schema.ResolverVersion,
}

// Execute is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "cfg", "", "cfg file (default is ./dotxch.yaml)")
}

// loadConfig reads the cfg file for the commands that need it.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	if cfg, err = config.LoadFile(cfgFile); err != nil {
		return fmt.Errorf("can not load config file: %w", err)
	}
	return nil
}
