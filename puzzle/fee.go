package puzzle

import (
	"fmt"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/types"
)

// Fee is the payment that must be spent alongside every creation or renewal.
type Fee struct {
	Name              string
	OuterPuzzleHash   types.Bytes32
	LauncherID        types.Bytes32
	SingletonParentID types.Bytes32
}

func (t *Templates) feeNode(f Fee) *Node {
	return NewNode(FeeShape, t.Fee).WithSolution(
		StringValue(f.Name),
		HashValue(f.OuterPuzzleHash),
		HashValue(f.LauncherID),
		HashValue(f.SingletonParentID),
	)
}

func (d *Driver) FeeSpend(f Fee, coin types.Coin) (types.CoinSpend, error) {
	return d.T.feeNode(f).ToSpend(coin, d.Runner, d.Net.MaxBlockCost)
}

func (d *Driver) DecodeFee(spend types.CoinSpend) (Fee, error) {
	node, err := Decode(spend, FeeShape, d.T.FeeHash)
	if err != nil {
		return Fee{}, err
	}
	name, _ := node.Solution[0].AsString()
	f := Fee{Name: name}
	var ok1, ok2, ok3 bool
	f.OuterPuzzleHash, ok1 = node.Solution[1].AsHash()
	f.LauncherID, ok2 = node.Solution[2].AsHash()
	f.SingletonParentID, ok3 = node.Solution[3].AsHash()
	if !ok1 || !ok2 || !ok3 {
		return Fee{}, fmt.Errorf("%w: fee solution wants three hashes", ErrWrongPuzzleDriver)
	}
	return f, nil
}

// feeAnnouncement is the message both the singleton and the fee spend announce.
func feeAnnouncement(name string, singletonParent types.Bytes32) []byte {
	return types.Sha256([]byte(name), singletonParent.Bytes()).Bytes()
}

// LauncherIDFromSpend recovers the launcher id from the fee spend that created a marker at identityPh.
// A spend of any other shape is not domain data and yields false.
func (d *Driver) LauncherIDFromSpend(spend *types.CoinSpend, identityPh types.Bytes32) (types.Bytes32, bool) {
	if spend == nil || spend.Coin.PuzzleHash != d.T.FeeHash {
		return types.Bytes32{}, false
	}
	conds, err := clvm.RunSpend(d.Runner, *spend, d.Net.MaxBlockCost)
	if err != nil {
		return types.Bytes32{}, false
	}
	for _, c := range conds {
		if c.Opcode != clvm.CreateCoin || len(c.Args) < 3 {
			continue
		}
		if ph, err := types.BytesToBytes32(c.Args[0].Atom()); err != nil || ph != identityPh {
			continue
		}
		memos, ok := c.Args[2].Items()
		if !ok || len(memos) == 0 || !memos[0].IsAtom() {
			continue
		}
		if id, err := types.BytesToBytes32(memos[0].Atom()); err == nil {
			return id, true
		}
	}
	return types.Bytes32{}, false
}
