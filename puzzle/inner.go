package puzzle

import (
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/types"
)

var (
	ErrNoArgumentsProvided    = errors.New("no_arguments_provided")
	ErrNotSpendableStandalone = errors.New("inner_puzzle_not_spendable_standalone")
)

type Mode int

const (
	ModeRenew Mode = iota
	ModeTransfer
	ModeUpdateMetadata
)

func (m Mode) String() string {
	switch m {
	case ModeRenew:
		return "renew"
	case ModeTransfer:
		return "transfer"
	case ModeUpdateMetadata:
		return "update_metadata"
	}
	return "unknown"
}

// Inner is the owner state of a domain.
type Inner struct {
	Name     string
	PubKey   types.G1Element
	Metadata metadata.DomainMetadata
}

// InnerUpdate requests a state change. A new pubkey wins over renew, renew wins over metadata only.
type InnerUpdate struct {
	Renew       bool
	NewMetadata *metadata.DomainMetadata
	NewPubKey   *types.G1Element
}

func (u InnerUpdate) Mode() (Mode, error) {
	switch {
	case u.NewPubKey != nil:
		return ModeTransfer, nil
	case u.Renew:
		return ModeRenew, nil
	case u.NewMetadata != nil:
		return ModeUpdateMetadata, nil
	}
	return 0, ErrNoArgumentsProvided
}

// InnerBase is the inner module with the name curried in; its hash is also the inner puzzle's first arg.
func (t *Templates) InnerBase(name string) *clvm.Program {
	return clvm.Curry(t.Inner, clvm.String(name))
}

func (t *Templates) innerNode(in Inner) *Node {
	base := t.InnerBase(in.Name)
	return NewNode(InnerShape, base,
		HashValue(base.TreeHash()),
		PubKeyValue(in.PubKey),
		ProgramValue(in.Metadata.Program()),
	)
}

func (t *Templates) InnerPuzzle(in Inner) *clvm.Program {
	p, _ := t.innerNode(in).Complete()
	return p
}

func (t *Templates) InnerPuzzleHash(in Inner) types.Bytes32 {
	baseHash := clvm.CurryTreeHash(t.InnerHash, clvm.TreeHashAtom([]byte(in.Name)))
	return clvm.CurryTreeHash(baseHash,
		clvm.TreeHashAtom(baseHash.Bytes()),
		clvm.TreeHashAtom(in.PubKey[:]),
		in.Metadata.Hash(),
	)
}

// Solution returns (parent, mode, metadata_arg, pubkey_arg) for the requested update.
func (in Inner) Solution(parent types.Bytes32, u InnerUpdate) ([]Value, error) {
	mode, err := u.Mode()
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeTransfer:
		md := in.Metadata
		if u.NewMetadata != nil {
			md = *u.NewMetadata
		}
		return []Value{HashValue(parent), BoolValue(false), ProgramValue(md.Program()), PubKeyValue(*u.NewPubKey)}, nil
	case ModeRenew:
		mdArg := BoolValue(false)
		if u.NewMetadata != nil {
			mdArg = ProgramValue(u.NewMetadata.Program())
		}
		return []Value{HashValue(parent), BoolValue(true), mdArg, BoolValue(false)}, nil
	}
	return []Value{HashValue(parent), BoolValue(false), ProgramValue(u.NewMetadata.Program()), BoolValue(false)}, nil
}

// Apply returns the state after the update.
func (in Inner) Apply(u InnerUpdate) Inner {
	next := in
	if u.NewMetadata != nil {
		next.Metadata = *u.NewMetadata
	}
	if u.NewPubKey != nil {
		next.PubKey = *u.NewPubKey
	}
	return next
}

// ToSpendBundle always fails: the inner puzzle is only spent beneath the singleton.
func (in Inner) ToSpendBundle(types.Coin) (types.SpendBundle, error) {
	return types.SpendBundle{}, ErrNotSpendableStandalone
}

// DecodedInner is one spend of an inner puzzle.
type DecodedInner struct {
	Parent   types.Bytes32
	Mode     Mode
	Previous Inner // curried state
	Next     Inner // effective state after the spend
}

func (t *Templates) DecodeInner(reveal, solution *clvm.Program) (*DecodedInner, error) {
	base, _, ok := clvm.Uncurry(reveal)
	if !ok {
		return nil, fmt.Errorf("%w: inner puzzle is not curried", ErrWrongPuzzleDriver)
	}
	mod, nameArgs, ok := clvm.Uncurry(base)
	if !ok || len(nameArgs) != 1 || mod.TreeHash() != t.InnerHash {
		return nil, fmt.Errorf("%w: not a domain inner puzzle", ErrWrongPuzzleDriver)
	}
	node, err := DecodeProgram(reveal, solution, InnerShape, base.TreeHash())
	if err != nil {
		return nil, err
	}
	name, _ := DecodeValue(nameArgs[0]).AsString()
	selfHash, okHash := node.Args[0].AsHash()
	pk, okPk := node.Args[1].AsPubKey()
	if !okHash || selfHash != base.TreeHash() || !okPk {
		return nil, fmt.Errorf("%w: inner curried args", ErrWrongPuzzleDriver)
	}
	md, err := metadata.FromProgram(node.Args[2].Program())
	if err != nil {
		return nil, err
	}
	prev := Inner{Name: name, PubKey: pk, Metadata: md}

	parent, ok := node.Solution[0].AsHash()
	if !ok {
		return nil, fmt.Errorf("%w: inner solution parent", ErrWrongPuzzleDriver)
	}
	next := prev
	if !node.Solution[2].Falsy() {
		if next.Metadata, err = metadata.FromProgram(node.Solution[2].Program()); err != nil {
			return nil, err
		}
	}
	newPk, hasPk := node.Solution[3].AsPubKey()
	if hasPk {
		next.PubKey = newPk
	}
	renew, _ := node.Solution[1].AsBool()
	mode := ModeUpdateMetadata
	switch {
	case hasPk:
		mode = ModeTransfer
	case renew:
		mode = ModeRenew
	}
	return &DecodedInner{Parent: parent, Mode: mode, Previous: prev, Next: next}, nil
}
