package main

import (
	"encoding/json"
	"fmt"
	"github.com/everFinance/dotxch"
	"github.com/everFinance/dotxch/common"
	"github.com/everFinance/dotxch/config"
	"github.com/everFinance/dotxch/schema"
	"github.com/urfave/cli/v2"
	"os"
	"os/signal"
	"syscall"
)

var serveCommand = &cli.Command{
	Name:  "serve",
	Usage: "run the resolver api and its background jobs",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "port", Usage: "overrides the config port", EnvVars: []string{"PORT"}},
	},
	Action: serve,
}

func loadConfig(c *cli.Context) (schema.Config, error) {
	return config.LoadFile(c.String("config"))
}

func serve(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if port := c.String("port"); port != "" {
		cfg.Port = port
	}
	if err := common.InitSentry(cfg.SentryDsn, schema.ResolverVersion); err != nil {
		return err
	}
	defer common.FlushSentry()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	common.NewMetricServer(cfg.MetricPort)
	s := dotxch.New(cfg)
	s.Run(cfg.Port)

	<-signals
	s.Close()
	return nil
}

func printJSON(v interface{}) error {
	by, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(by))
	return nil
}
