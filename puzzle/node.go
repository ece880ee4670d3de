package puzzle

import (
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/types"
)

var (
	ErrIncompletePuzzle   = errors.New("incomplete_puzzle")
	ErrIncompleteSolution = errors.New("incomplete_solution")
	ErrPuzzleHashMismatch = errors.New("puzzle_hash_mismatch")
	ErrInvalidSpend       = errors.New("invalid_spend")
	ErrWrongPuzzleDriver  = errors.New("wrong_puzzle_driver")
)

type Kind int

const (
	KindIdentity Kind = iota
	KindFee
	KindInner
	KindOuter
)

func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindFee:
		return "fee"
	case KindInner:
		return "inner"
	case KindOuter:
		return "outer"
	}
	return "unknown"
}

// Shape is the fixed arity of one puzzle kind.
type Shape struct {
	Kind          Kind
	CurryArity    int
	SolutionArity int
}

var (
	IdentityShape = Shape{Kind: KindIdentity, CurryArity: 1, SolutionArity: 0}
	FeeShape      = Shape{Kind: KindFee, CurryArity: 0, SolutionArity: 4}
	InnerShape    = Shape{Kind: KindInner, CurryArity: 3, SolutionArity: 4}
	OuterShape    = Shape{Kind: KindOuter, CurryArity: 2, SolutionArity: 3}
)

// Node is a template with its curried arguments and, once solved, its solution arguments.
type Node struct {
	Shape    Shape
	Template *clvm.Program
	Args     []Value
	Solution []Value
}

func NewNode(shape Shape, template *clvm.Program, args ...Value) *Node {
	return &Node{Shape: shape, Template: template, Args: args}
}

// WithSolution returns a copy of n carrying the given solution arguments.
func (n *Node) WithSolution(sol ...Value) *Node {
	cp := *n
	cp.Solution = sol
	return &cp
}

func (n *Node) Complete() (*clvm.Program, error) {
	if len(n.Args) != n.Shape.CurryArity {
		return nil, fmt.Errorf("%w: %s wants %d args, has %d", ErrIncompletePuzzle, n.Shape.Kind, n.Shape.CurryArity, len(n.Args))
	}
	if n.Shape.CurryArity == 0 {
		return n.Template, nil
	}
	args := make([]*clvm.Program, 0, len(n.Args))
	for _, a := range n.Args {
		args = append(args, a.Program())
	}
	return clvm.Curry(n.Template, args...), nil
}

func (n *Node) PuzzleHash() (types.Bytes32, error) {
	p, err := n.Complete()
	if err != nil {
		return types.Bytes32{}, err
	}
	return p.TreeHash(), nil
}

// Solve encodes the solution: 1 for no arguments, the bare value for one, a list otherwise.
func (n *Node) Solve() (*clvm.Program, error) {
	if len(n.Solution) != n.Shape.SolutionArity {
		return nil, fmt.Errorf("%w: %s wants %d args, has %d", ErrIncompleteSolution, n.Shape.Kind, n.Shape.SolutionArity, len(n.Solution))
	}
	switch n.Shape.SolutionArity {
	case 0:
		return clvm.True(), nil
	case 1:
		return n.Solution[0].Program(), nil
	}
	items := make([]*clvm.Program, 0, len(n.Solution))
	for _, s := range n.Solution {
		items = append(items, s.Program())
	}
	return clvm.List(items...), nil
}

// ToSpend builds the spend of coin and checks that it evaluates.
func (n *Node) ToSpend(coin types.Coin, r clvm.Runner, maxCost uint64) (types.CoinSpend, error) {
	puzzle, err := n.Complete()
	if err != nil {
		return types.CoinSpend{}, err
	}
	if puzzle.TreeHash() != coin.PuzzleHash {
		return types.CoinSpend{}, fmt.Errorf("%w: coin %s", ErrPuzzleHashMismatch, coin.Name())
	}
	solution, err := n.Solve()
	if err != nil {
		return types.CoinSpend{}, err
	}
	spend := types.CoinSpend{Coin: coin, PuzzleReveal: puzzle.Serialize(), Solution: solution.Serialize()}
	if _, err := clvm.RunSpend(r, spend, maxCost); err != nil {
		return types.CoinSpend{}, fmt.Errorf("%w: %v", ErrInvalidSpend, err)
	}
	return spend, nil
}

// Decode splits a spend back into template, curried args and solution args.
func Decode(spend types.CoinSpend, shape Shape, expectedTemplateHash types.Bytes32) (*Node, error) {
	reveal, err := clvm.Deserialize(spend.PuzzleReveal)
	if err != nil {
		return nil, fmt.Errorf("%w: puzzle reveal: %v", ErrWrongPuzzleDriver, err)
	}
	solution, err := clvm.Deserialize(spend.Solution)
	if err != nil {
		return nil, fmt.Errorf("%w: solution: %v", ErrWrongPuzzleDriver, err)
	}
	return DecodeProgram(reveal, solution, shape, expectedTemplateHash)
}

func DecodeProgram(reveal, solution *clvm.Program, shape Shape, expectedTemplateHash types.Bytes32) (*Node, error) {
	template := reveal
	args := make([]Value, 0, shape.CurryArity)
	if shape.CurryArity > 0 {
		mod, raw, ok := clvm.Uncurry(reveal)
		if !ok {
			return nil, fmt.Errorf("%w: %s puzzle is not curried", ErrWrongPuzzleDriver, shape.Kind)
		}
		if len(raw) != shape.CurryArity {
			return nil, fmt.Errorf("%w: %s puzzle has %d curried args", ErrWrongPuzzleDriver, shape.Kind, len(raw))
		}
		template = mod
		for _, a := range raw {
			args = append(args, DecodeValue(a))
		}
	}
	if template.TreeHash() != expectedTemplateHash {
		return nil, fmt.Errorf("%w: %s template hash %s", ErrWrongPuzzleDriver, shape.Kind, template.TreeHash())
	}
	sol, err := SolutionValues(solution, shape.SolutionArity)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrWrongPuzzleDriver, shape.Kind, err)
	}
	return &Node{Shape: shape, Template: template, Args: args, Solution: sol}, nil
}

// SolutionValues is the inverse of Solve.
func SolutionValues(solution *clvm.Program, arity int) ([]Value, error) {
	switch arity {
	case 0:
		return []Value{}, nil
	case 1:
		return []Value{DecodeValue(solution)}, nil
	}
	items, ok := solution.Items()
	if !ok || len(items) != arity {
		return nil, fmt.Errorf("solution wants %d items", arity)
	}
	res := make([]Value, 0, arity)
	for _, item := range items {
		res = append(res, DecodeValue(item))
	}
	return res, nil
}
