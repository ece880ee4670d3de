package puzzletest

import (
	"fmt"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/types"
)

// Emulator implements clvm.Runner for the modules returned by RawTemplates.
// It peels curry layers until it reaches a known module and computes that module's conditions.
type Emulator struct {
	raw puzzle.RawTemplates
}

func NewEmulator() *Emulator {
	return &Emulator{raw: RawTemplates()}
}

func fail(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", clvm.ErrRunFailed, fmt.Sprintf(format, args...))
}

// peel returns the innermost module and the curried args of each layer, innermost first.
func peel(p *clvm.Program) (*clvm.Program, [][]*clvm.Program) {
	layers := make([][]*clvm.Program, 0)
	for {
		mod, args, ok := clvm.Uncurry(p)
		if !ok {
			return p, layers
		}
		layers = append([][]*clvm.Program{args}, layers...)
		p = mod
	}
}

func hasShape(layers [][]*clvm.Program, arities ...int) bool {
	if len(layers) != len(arities) {
		return false
	}
	for i, n := range arities {
		if len(layers[i]) != n {
			return false
		}
	}
	return true
}

func hash32(p *clvm.Program) (types.Bytes32, error) {
	if !p.IsAtom() {
		return types.Bytes32{}, fail("want a 32 byte atom, got a pair")
	}
	return types.BytesToBytes32(p.Atom())
}

func solutionItems(sol *clvm.Program, n int, kind string) ([]*clvm.Program, error) {
	items, ok := sol.Items()
	if !ok || len(items) != n {
		return nil, fail("%s solution wants %d items", kind, n)
	}
	return items, nil
}

func (e *Emulator) Run(puz, sol *clvm.Program, _ uint64) (*clvm.Program, error) {
	mod, layers := peel(puz)
	switch {
	case mod.Equal(e.raw.Identity):
		return e.identity(layers)
	case mod.Equal(e.raw.Fee):
		return e.fee(layers, sol)
	case mod.Equal(e.raw.Inner):
		return e.inner(layers, sol)
	case mod.Equal(e.raw.Singleton):
		return e.singleton(layers, sol)
	case mod.Equal(e.raw.Launcher):
		return e.launcher(sol)
	case mod.Equal(PayModule):
		return e.pay(layers, sol)
	}
	return nil, fail("unknown module %s", mod.TreeHash())
}

func (e *Emulator) identity(layers [][]*clvm.Program) (*clvm.Program, error) {
	if !hasShape(layers, 1, 1) {
		return nil, fail("identity wants (registration length) then (name)")
	}
	return clvm.List(clvm.NewCondition(clvm.AssertSecondsRelative, layers[0][0])), nil
}

func (e *Emulator) fee(layers [][]*clvm.Program, sol *clvm.Program) (*clvm.Program, error) {
	if !hasShape(layers, 3) {
		return nil, fail("fee wants (identity hash, fee address, fee amount)")
	}
	identityHash, err := hash32(layers[0][0])
	if err != nil {
		return nil, err
	}
	items, err := solutionItems(sol, 4, "fee")
	if err != nil {
		return nil, err
	}
	name, outerPh, launcherID, parent := items[0].Atom(), items[1].Atom(), items[2], items[3].Atom()
	ann := types.Sha256(name, parent)
	return clvm.List(
		clvm.NewCondition(clvm.CreateCoin, clvm.Hash(clvm.CurryTreeHash(identityHash, clvm.TreeHashAtom(name))), clvm.Uint(1), clvm.List(launcherID)),
		clvm.NewCondition(clvm.CreateCoin, layers[0][1], layers[0][2]),
		clvm.NewCondition(clvm.CreatePuzzleAnnouncement, clvm.Hash(ann)),
		clvm.NewCondition(clvm.AssertPuzzleAnnouncement, clvm.Hash(types.Sha256(outerPh, ann.Bytes()))),
	), nil
}

func (e *Emulator) inner(layers [][]*clvm.Program, sol *clvm.Program) (*clvm.Program, error) {
	if !hasShape(layers, 1, 1, 3) {
		return nil, fail("inner wants (fee hash) then (name) then (self hash, pubkey, metadata)")
	}
	feeHash, name := layers[0][0].Atom(), layers[1][0].Atom()
	selfHash, err := hash32(layers[2][0])
	if err != nil {
		return nil, err
	}
	pk, md := layers[2][1].Atom(), layers[2][2]
	items, err := solutionItems(sol, 4, "inner")
	if err != nil {
		return nil, err
	}
	parent, mode, mdArg, pkArg := items[0].Atom(), items[1], items[2], items[3]

	newPk := pk
	if pkArg.IsAtom() && len(pkArg.Atom()) == 48 {
		newPk = pkArg.Atom()
	}
	newMd := md
	if !mdArg.IsNil() {
		newMd = mdArg
	}
	childPh := clvm.CurryTreeHash(selfHash, clvm.TreeHashAtom(selfHash.Bytes()), clvm.TreeHashAtom(newPk), newMd.TreeHash())
	ann := types.Sha256(name, parent)
	conds := []*clvm.Program{
		clvm.NewCondition(clvm.CreateCoin, clvm.Hash(childPh), clvm.Uint(1)),
		clvm.NewCondition(clvm.AggSigMe, clvm.Atom(pk), clvm.Hash(sol.TreeHash())),
		clvm.NewCondition(clvm.CreatePuzzleAnnouncement, clvm.Hash(ann)),
	}
	if mode.Equal(clvm.True()) {
		conds = append(conds, clvm.NewCondition(clvm.AssertPuzzleAnnouncement, clvm.Hash(types.Sha256(feeHash, ann.Bytes()))))
	}
	return clvm.List(conds...), nil
}

func (e *Emulator) singleton(layers [][]*clvm.Program, sol *clvm.Program) (*clvm.Program, error) {
	if !hasShape(layers, 2) {
		return nil, fail("singleton wants (struct, inner puzzle)")
	}
	st, innerPuzzle := layers[0][0], layers[0][1]
	modHash, launcherID, launcherHash, err := singletonStruct(st)
	if err != nil {
		return nil, err
	}
	items, err := solutionItems(sol, 3, "singleton")
	if err != nil {
		return nil, err
	}
	amount, err := items[1].Uint64()
	if err != nil {
		return nil, fail("singleton amount: %v", err)
	}
	structHash := st.TreeHash()
	parent, err := lineageParent(items[0], modHash, structHash, launcherID, launcherHash)
	if err != nil {
		return nil, err
	}

	innerOut, err := e.Run(innerPuzzle, items[2], 0)
	if err != nil {
		return nil, err
	}
	conds, err := clvm.ParseConditions(innerOut)
	if err != nil {
		return nil, fail("inner output: %v", err)
	}
	out := make([]*clvm.Program, 0, len(conds)+1)
	for _, c := range conds {
		if c.Opcode == clvm.CreateCoin && len(c.Args) >= 2 {
			if v, err := c.Args[1].Uint64(); err == nil && v%2 == 1 {
				innerPh, err := hash32(c.Args[0])
				if err != nil {
					return nil, err
				}
				args := append([]*clvm.Program{clvm.Hash(clvm.CurryTreeHash(modHash, structHash, innerPh))}, c.Args[1:]...)
				c = clvm.Condition{Opcode: c.Opcode, Args: args}
			}
		}
		out = append(out, c.Program())
	}
	myPh := clvm.CurryTreeHash(modHash, structHash, innerPuzzle.TreeHash())
	me := types.Coin{ParentCoinInfo: parent, PuzzleHash: myPh, Amount: amount}
	out = append(out, clvm.NewCondition(clvm.AssertMyCoinID, clvm.Hash(me.Name())))
	return clvm.List(out...), nil
}

func singletonStruct(st *clvm.Program) (modHash, launcherID, launcherHash types.Bytes32, err error) {
	first, err1 := st.First()
	rest, err2 := st.Rest()
	if err1 != nil || err2 != nil {
		return modHash, launcherID, launcherHash, fail("singleton struct is not a pair")
	}
	second, err1 := rest.First()
	third, err2 := rest.Rest()
	if err1 != nil || err2 != nil {
		return modHash, launcherID, launcherHash, fail("singleton struct tail is not a pair")
	}
	if modHash, err = hash32(first); err != nil {
		return
	}
	if launcherID, err = hash32(second); err != nil {
		return
	}
	launcherHash, err = hash32(third)
	return
}

// lineageParent checks the lineage proof and returns the id of the coin's parent.
func lineageParent(lp *clvm.Program, modHash, structHash, launcherID, launcherHash types.Bytes32) (types.Bytes32, error) {
	items, ok := lp.Items()
	if !ok || len(items) < 2 || len(items) > 3 {
		return types.Bytes32{}, fail("lineage proof shape")
	}
	parentParent, err := hash32(items[0])
	if err != nil {
		return types.Bytes32{}, err
	}
	amount, err := items[len(items)-1].Uint64()
	if err != nil {
		return types.Bytes32{}, fail("lineage proof amount: %v", err)
	}
	if len(items) == 2 {
		launcher := types.Coin{ParentCoinInfo: parentParent, PuzzleHash: launcherHash, Amount: amount}
		if launcher.Name() != launcherID {
			return types.Bytes32{}, fail("eve lineage does not point at the launcher")
		}
		return launcherID, nil
	}
	innerPh, err := hash32(items[1])
	if err != nil {
		return types.Bytes32{}, err
	}
	parent := types.Coin{ParentCoinInfo: parentParent, PuzzleHash: clvm.CurryTreeHash(modHash, structHash, innerPh), Amount: amount}
	return parent.Name(), nil
}

func (e *Emulator) launcher(sol *clvm.Program) (*clvm.Program, error) {
	items, err := solutionItems(sol, 3, "launcher")
	if err != nil {
		return nil, err
	}
	return clvm.List(
		clvm.NewCondition(clvm.CreateCoin, items[0], items[1]),
		clvm.NewCondition(clvm.CreateCoinAnnouncement, clvm.Hash(sol.TreeHash())),
	), nil
}

func (e *Emulator) pay(layers [][]*clvm.Program, sol *clvm.Program) (*clvm.Program, error) {
	if !hasShape(layers, 1) {
		return nil, fail("pay wants (pubkey)")
	}
	conds, ok := sol.Items()
	if !ok {
		return nil, fail("pay solution is not a list")
	}
	out := append(append([]*clvm.Program{}, conds...), clvm.NewCondition(clvm.AggSigMe, layers[0][0], clvm.Hash(sol.TreeHash())))
	return clvm.List(out...), nil
}
