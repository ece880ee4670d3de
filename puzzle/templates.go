package puzzle

import (
	"fmt"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"os"
	"path/filepath"
	"strings"
)

// compiled module file names inside a template directory
const (
	IdentityFile  = "domain_ph.clsp.hex"
	FeeFile       = "registration_fee.clsp.hex"
	InnerFile     = "domain_inner.clsp.hex"
	SingletonFile = "singleton_top_layer_v1_1.clsp.hex"
	LauncherFile  = "singleton_launcher.clsp.hex"
)

// RawTemplates are the compiled modules before any protocol constant is curried in.
type RawTemplates struct {
	Identity  *clvm.Program
	Fee       *clvm.Program
	Inner     *clvm.Program
	Singleton *clvm.Program
	Launcher  *clvm.Program
}

func LoadRawTemplates(dir string) (RawTemplates, error) {
	load := func(name string) (*clvm.Program, error) {
		by, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		p, err := clvm.FromHex(strings.TrimSpace(string(by)))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return p, nil
	}
	var (
		raw RawTemplates
		err error
	)
	if raw.Identity, err = load(IdentityFile); err != nil {
		return raw, err
	}
	if raw.Fee, err = load(FeeFile); err != nil {
		return raw, err
	}
	if raw.Inner, err = load(InnerFile); err != nil {
		return raw, err
	}
	if raw.Singleton, err = load(SingletonFile); err != nil {
		return raw, err
	}
	if raw.Launcher, err = load(LauncherFile); err != nil {
		return raw, err
	}
	return raw, nil
}

// Templates are the protocol modules with their constants curried in.
type Templates struct {
	Raw RawTemplates

	RegistrationLength uint64
	FeeAddress         types.Bytes32
	FeeAmount          uint64

	Identity      *clvm.Program
	IdentityHash  types.Bytes32
	Fee           *clvm.Program
	FeeHash       types.Bytes32
	Inner         *clvm.Program
	InnerHash     types.Bytes32
	Singleton     *clvm.Program
	SingletonHash types.Bytes32
	Launcher      *clvm.Program
	LauncherHash  types.Bytes32
}

func NewTemplates(raw RawTemplates) *Templates {
	return NewTemplatesWith(raw, schema.RegistrationLength, schema.RegistrationFeeAddress, schema.RegistrationFeeAmount)
}

func NewTemplatesWith(raw RawTemplates, registrationLength uint64, feeAddress types.Bytes32, feeAmount uint64) *Templates {
	t := &Templates{
		Raw:                raw,
		RegistrationLength: registrationLength,
		FeeAddress:         feeAddress,
		FeeAmount:          feeAmount,
		Singleton:          raw.Singleton,
		Launcher:           raw.Launcher,
	}
	t.Identity = clvm.Curry(raw.Identity, clvm.Uint(registrationLength))
	t.IdentityHash = t.Identity.TreeHash()
	t.Fee = clvm.Curry(raw.Fee, clvm.Hash(t.IdentityHash), clvm.Hash(feeAddress), clvm.Uint(feeAmount))
	t.FeeHash = t.Fee.TreeHash()
	t.Inner = clvm.Curry(raw.Inner, clvm.Hash(t.FeeHash))
	t.InnerHash = t.Inner.TreeHash()
	t.SingletonHash = raw.Singleton.TreeHash()
	t.LauncherHash = raw.Launcher.TreeHash()
	return t
}

func LoadTemplates(dir string) (*Templates, error) {
	raw, err := LoadRawTemplates(dir)
	if err != nil {
		return nil, err
	}
	return NewTemplates(raw), nil
}
