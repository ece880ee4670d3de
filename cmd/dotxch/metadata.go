package main

import (
	"fmt"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/schema"
	"github.com/urfave/cli/v2"
)

var metadataCommand = &cli.Command{
	Name:  "metadata",
	Usage: "build and check domain metadata files",
	Subcommands: []*cli.Command{
		{
			Name:      "validate",
			Usage:     "parse a metadata yaml file and print its canonical form",
			ArgsUsage: "<file or yaml>",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return fmt.Errorf("expected one metadata file")
				}
				md, err := metadata.LoadYAML(c.Args().First())
				if err != nil {
					return err
				}
				return printYAML(md)
			},
		},
		{
			Name:  "create",
			Usage: "create metadata from flags",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "primary", Required: true, Usage: "primary xch address or puzzle hash"},
				&cli.StringFlag{Name: "chain", Usage: "yaml mapping or file of chain records"},
				&cli.StringFlag{Name: "dns", Usage: "yaml mapping or file of dns records"},
				&cli.StringFlag{Name: "other", Usage: "yaml mapping or file of other data"},
			},
			Action: func(c *cli.Context) error {
				md, err := buildMetadata(c.String("primary"), c.String("chain"), c.String("dns"), c.String("other"))
				if err != nil {
					return err
				}
				return printYAML(md)
			},
		},
	},
}

func buildMetadata(primary, chain, dns, other string) (metadata.DomainMetadata, error) {
	d := metadata.Dict{MetadataVersion: schema.MetadataFormatVersion, PrimaryAddress: primary}
	var err error
	if d.ChainRecords, err = metadata.LoadStringMap(chain); err != nil {
		return metadata.DomainMetadata{}, fmt.Errorf("chain: %w", err)
	}
	if d.DNSRecords, err = metadata.LoadStringMap(dns); err != nil {
		return metadata.DomainMetadata{}, fmt.Errorf("dns: %w", err)
	}
	if d.OtherData, err = metadata.LoadStringMap(other); err != nil {
		return metadata.DomainMetadata{}, fmt.Errorf("other: %w", err)
	}
	return metadata.FromDict(d)
}

func printYAML(md metadata.DomainMetadata) error {
	out, err := md.YAML()
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
