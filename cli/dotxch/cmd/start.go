package cmd

import (
	"fmt"
	"github.com/everFinance/dotxch"
	"github.com/everFinance/dotxch/common"
	"github.com/everFinance/dotxch/schema"
	"github.com/spf13/cobra"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"
)

var daemon bool

var startCmd = &cobra.Command{
	Use:     "start",
	Short:   "start the resolver",
	Long:    `start the resolver api, its jobs and the metric server`,
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, args []string) error {
		if daemon {
			return spawnDaemon()
		}
		runServer()
		return nil
	},
}

// spawnDaemon re-executes start in the foreground of a child process,
// logging to dotxch_<unix>.log and recording its pid.
func spawnDaemon() error {
	if _, err := os.Stat(pidFile); err == nil {
		return fmt.Errorf("pid file %s exists, resolver already running", pidFile)
	}
	self, err := os.Executable()
	if err != nil {
		return err
	}
	args := []string{"start"}
	if cfgFile != "" {
		args = append(args, "--cfg", cfgFile)
	}
	out, err := os.Create(fmt.Sprintf("dotxch_%d.log", time.Now().Unix()))
	if err != nil {
		return err
	}
	defer out.Close()
	child := exec.Command(self, args...)
	child.Stdout, child.Stderr = out, out
	if err := child.Start(); err != nil {
		return err
	}
	fmt.Println("resolver started, pid", child.Process.Pid)
	return writePid(pidFile, child.Process.Pid)
}

func init() {
	rootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVarP(&daemon, "daemon", "d", false, "run in the background")
}

func runServer() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	if err := common.InitSentry(cfg.SentryDsn, schema.ResolverVersion); err != nil {
		panic(err)
	}
	defer common.FlushSentry()
	common.NewMetricServer(cfg.MetricPort)

	s := dotxch.New(cfg)
	s.Run(cfg.Port)

	<-signals
	s.Close()
	if err := releasePid(pidFile, os.Getpid()); err != nil {
		fmt.Println("remove pid file:", err)
	}
}
