package main

import (
	"github.com/everFinance/dotxch/schema"
	"github.com/urfave/cli/v2"
	"log"
	"os"
)

func main() {
	app := &cli.App{
		Name:    "dotxch",
		Usage:   "register, manage and resolve .xch domains",
		Version: schema.ResolverVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "", Usage: "yaml config path (default ./dotxch.yaml)", EnvVars: []string{"DOTXCH_CONFIG"}},
		},
		Commands: []*cli.Command{
			serveCommand,
			resolveCommand,
			cleanupMarkersCommand,
			metadataCommand,
			registerCommand,
			renewCommand,
			updateMetadataCommand,
			updatePubkeyCommand,
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
