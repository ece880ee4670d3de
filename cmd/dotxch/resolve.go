package main

import (
	"fmt"
	"github.com/everFinance/dotxch"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/sdk"
	"github.com/everFinance/dotxch/types"
	"github.com/urfave/cli/v2"
)

var resolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "resolve a domain against the node, or through a resolver service",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "launcher-id", Usage: "only consider this lineage"},
		&cli.BoolFlag{Name: "grace", Usage: "return names in their grace period"},
		&cli.StringFlag{Name: "server", Usage: "resolver service url; records are verified locally", EnvVars: []string{"DOTXCH_SERVER"}},
		&cli.BoolFlag{Name: "all", Usage: "print every lineage found, not only the winner"},
	},
	Action: resolve,
}

var cleanupMarkersCommand = &cli.Command{
	Name:      "cleanup-markers",
	Usage:     "spend discovery markers older than one registration length",
	ArgsUsage: "<name>",
	Action:    cleanupMarkers,
}

func nameArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one domain name")
	}
	return dotxch.ProcessDomainName(c.Args().First())
}

func launcherIDFlag(c *cli.Context) (*types.Bytes32, error) {
	s := c.String("launcher-id")
	if s == "" {
		return nil, nil
	}
	lid, err := types.HexToBytes32(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrInvalidLauncherId, err)
	}
	return &lid, nil
}

func resolve(c *cli.Context) error {
	name, err := nameArg(c)
	if err != nil {
		return err
	}
	lid, err := launcherIDFlag(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := dotxch.NewEngine(cfg)
	if err != nil {
		return err
	}
	grace := c.Bool("grace")

	if url := c.String("server"); url != "" {
		res, err := sdk.NewSDK(url, engine.Driver()).Resolve(name, lid, &grace)
		if err != nil {
			return err
		}
		return printJSON(res)
	}
	if c.Bool("all") {
		var all []resolver.ResolutionResult
		if lid != nil {
			all, err = engine.Discover(c.Context, name, lid)
		} else {
			all, err = engine.ResolveAll(c.Context, name, grace)
		}
		if err != nil {
			return err
		}
		return printJSON(all)
	}
	res, err := engine.Resolve(c.Context, name, lid, grace)
	if err != nil {
		return err
	}
	return printJSON(res)
}

func cleanupMarkers(c *cli.Context) error {
	name, err := nameArg(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	engine, err := dotxch.NewEngine(cfg)
	if err != nil {
		return err
	}
	n, err := engine.SpendOldMarkers(c.Context, name)
	if err != nil {
		return err
	}
	fmt.Printf("spent %d markers of %s\n", n, name)
	return nil
}
