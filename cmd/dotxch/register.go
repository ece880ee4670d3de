package main

import (
	"fmt"
	"github.com/everFinance/dotxch"
	"github.com/everFinance/dotxch/bls"
	"github.com/everFinance/dotxch/ledger"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/registrar"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"github.com/urfave/cli/v2"
	"os"
	"strings"
)

var (
	skFlag       = &cli.StringFlag{Name: "sk", Required: true, Usage: "hex private key, or a file holding it", EnvVars: []string{"DOTXCH_SK"}}
	feeFlag      = &cli.StringFlag{Name: "fee", Value: "0", Usage: "transaction fee in XCH"}
	launcherFlag = &cli.StringFlag{Name: "launcher-id", Usage: "spend this lineage instead of the resolved owner"}
	mdFlag       = &cli.StringFlag{Name: "metadata", Usage: "metadata yaml file or inline yaml"}
)

var registerCommand = &cli.Command{
	Name:      "register",
	Usage:     fmt.Sprintf("register a new domain for %s XCH plus fee", mojoToXch(schema.TotalNewDomainAmount)),
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		skFlag, feeFlag,
		&cli.StringFlag{Name: "metadata", Required: true, Usage: "metadata yaml file or inline yaml"},
		&cli.BoolFlag{Name: "force", Usage: "skip the check for an existing registration"},
	},
	Action: func(c *cli.Context) error {
		return withRegistrar(c, func(r *registrar.Registrar, sk *bls.PrivateKey, name string, fee uint64) (*registrar.Submission, error) {
			md, err := metadata.LoadYAML(c.String("metadata"))
			if err != nil {
				return nil, err
			}
			return r.Register(c.Context, sk, name, md, registrar.RegisterOptions{Fee: fee, SkipExistingCheck: c.Bool("force")})
		})
	},
}

var renewCommand = &cli.Command{
	Name:      "renew",
	Usage:     "extend a registration by one registration length",
	ArgsUsage: "<name>",
	Flags:     []cli.Flag{skFlag, feeFlag, launcherFlag, mdFlag},
	Action: func(c *cli.Context) error {
		return withRegistrar(c, func(r *registrar.Registrar, sk *bls.PrivateKey, name string, fee uint64) (*registrar.Submission, error) {
			lid, err := launcherIDFlag(c)
			if err != nil {
				return nil, err
			}
			md, err := optionalMetadata(c.String("metadata"))
			if err != nil {
				return nil, err
			}
			return r.Renew(c.Context, sk, name, lid, md, fee)
		})
	},
}

var updateMetadataCommand = &cli.Command{
	Name:      "update-metadata",
	Usage:     "replace the metadata of a domain",
	ArgsUsage: "<name>",
	Flags:     []cli.Flag{skFlag, feeFlag, launcherFlag, &cli.StringFlag{Name: "metadata", Required: true, Usage: "metadata yaml file or inline yaml"}},
	Action: func(c *cli.Context) error {
		return withRegistrar(c, func(r *registrar.Registrar, sk *bls.PrivateKey, name string, fee uint64) (*registrar.Submission, error) {
			lid, err := launcherIDFlag(c)
			if err != nil {
				return nil, err
			}
			md, err := metadata.LoadYAML(c.String("metadata"))
			if err != nil {
				return nil, err
			}
			return r.UpdateMetadata(c.Context, sk, name, lid, md, fee)
		})
	},
}

var updatePubkeyCommand = &cli.Command{
	Name:      "update-pubkey",
	Usage:     "transfer a domain to a new public key",
	ArgsUsage: "<name>",
	Flags: []cli.Flag{
		skFlag, feeFlag, launcherFlag, mdFlag,
		&cli.StringFlag{Name: "pubkey", Required: true, Usage: "new owner public key, hex"},
	},
	Action: func(c *cli.Context) error {
		return withRegistrar(c, func(r *registrar.Registrar, sk *bls.PrivateKey, name string, fee uint64) (*registrar.Submission, error) {
			lid, err := launcherIDFlag(c)
			if err != nil {
				return nil, err
			}
			pk := types.G1Element{}
			if err := pk.UnmarshalText([]byte(c.String("pubkey"))); err != nil {
				return nil, fmt.Errorf("pubkey: %w", err)
			}
			if !bls.ValidPublicKey(pk) {
				return nil, bls.ErrInvalidPublicKey
			}
			md, err := optionalMetadata(c.String("metadata"))
			if err != nil {
				return nil, err
			}
			return r.UpdatePubkey(c.Context, sk, name, lid, pk, md, fee)
		})
	},
}

type registrarAction func(r *registrar.Registrar, sk *bls.PrivateKey, name string, fee uint64) (*registrar.Submission, error)

func withRegistrar(c *cli.Context, action registrarAction) error {
	name, err := nameArg(c)
	if err != nil {
		return err
	}
	fee, err := xchToMojo(c.String("fee"))
	if err != nil {
		return fmt.Errorf("fee: %w", err)
	}
	sk, err := readKey(c.String("sk"))
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
	wallet, err := ledger.NewWalletClient(cfg.Wallet, cfg.Resolver.CallTimeout)
	if err != nil {
		return err
	}
	sub, err := action(registrar.New(engine, wallet), sk, name, fee)
	if err != nil {
		return err
	}
	return printJSON(map[string]interface{}{
		"domain_name": name,
		"launcher_id": sub.LauncherID,
		"spend_count": len(sub.Bundle.CoinSpends),
	})
}

func readKey(s string) (*bls.PrivateKey, error) {
	if by, err := os.ReadFile(s); err == nil {
		s = string(by)
	}
	raw, err := types.DecodeHex(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("sk: %w", err)
	}
	return bls.PrivateKeyFromBytes(raw)
}

func optionalMetadata(s string) (*metadata.DomainMetadata, error) {
	if s == "" {
		return nil, nil
	}
	md, err := metadata.LoadYAML(s)
	if err != nil {
		return nil, err
	}
	return &md, nil
}
