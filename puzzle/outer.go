package puzzle

import (
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/bls"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
)

var (
	ErrKeyMismatch          = errors.New("private_key_does_not_match_pubkey")
	ErrInsufficientBaseCoin = errors.New("insufficient_base_coin")
	ErrNoLineage            = errors.New("singleton_has_no_lineage")
)

// LineageProof describes the parent of the coin being spent.
// InnerPuzzleHash is nil when the parent is the launcher.
type LineageProof struct {
	ParentName      types.Bytes32  `json:"parent_name"`
	InnerPuzzleHash *types.Bytes32 `json:"inner_puzzle_hash,omitempty"`
	Amount          uint64         `json:"amount"`
}

func (lp LineageProof) Value() Value {
	if lp.InnerPuzzleHash == nil {
		return ListValue(HashValue(lp.ParentName), UintValue(lp.Amount))
	}
	return ListValue(HashValue(lp.ParentName), HashValue(*lp.InnerPuzzleHash), UintValue(lp.Amount))
}

func LineageProofFromValue(v Value) (LineageProof, error) {
	if v.Kind != ValueList || len(v.Items) < 2 || len(v.Items) > 3 {
		return LineageProof{}, fmt.Errorf("%w: lineage proof shape", ErrWrongPuzzleDriver)
	}
	parent, ok := v.Items[0].AsHash()
	if !ok {
		return LineageProof{}, fmt.Errorf("%w: lineage proof parent", ErrWrongPuzzleDriver)
	}
	lp := LineageProof{ParentName: parent}
	if len(v.Items) == 3 {
		ph, ok := v.Items[1].AsHash()
		if !ok {
			return LineageProof{}, fmt.Errorf("%w: lineage proof inner puzzle hash", ErrWrongPuzzleDriver)
		}
		lp.InnerPuzzleHash = &ph
	}
	amount, ok := v.Items[len(v.Items)-1].AsUint64()
	if !ok {
		return LineageProof{}, fmt.Errorf("%w: lineage proof amount", ErrWrongPuzzleDriver)
	}
	lp.Amount = amount
	return lp, nil
}

// Outer is a domain singleton ready to be spent.
type Outer struct {
	LauncherID types.Bytes32
	Lineage    LineageProof
	Inner      Inner
}

// SingletonStruct is (singleton mod hash . (launcher id . launcher hash)).
func (t *Templates) SingletonStruct(launcherID types.Bytes32) Value {
	return PairValue(HashValue(t.SingletonHash), PairValue(HashValue(launcherID), HashValue(t.LauncherHash)))
}

func (t *Templates) OuterPuzzleHash(launcherID, innerPuzzleHash types.Bytes32) types.Bytes32 {
	structHash := t.SingletonStruct(launcherID).Program().TreeHash()
	return clvm.CurryTreeHash(t.SingletonHash, structHash, innerPuzzleHash)
}

func (t *Templates) outerNode(o Outer) *Node {
	return NewNode(OuterShape, t.Singleton, t.SingletonStruct(o.LauncherID), ProgramValue(t.InnerPuzzle(o.Inner)))
}

func (t *Templates) OuterPuzzle(o Outer) *clvm.Program {
	p, _ := t.outerNode(o).Complete()
	return p
}

func (o Outer) PuzzleHash(t *Templates) types.Bytes32 {
	return t.OuterPuzzleHash(o.LauncherID, t.InnerPuzzleHash(o.Inner))
}

// Decoded is one spend of a domain singleton.
type Decoded struct {
	Spend    types.CoinSpend
	Mode     Mode
	Previous Inner
	// Outer is the state after the spend, carrying the lineage proof needed to spend Tip.
	Outer Outer
	Tip   types.Coin
}

func (d *Driver) DecodeOuter(spend types.CoinSpend) (*Decoded, error) {
	node, err := Decode(spend, OuterShape, d.T.SingletonHash)
	if err != nil {
		return nil, err
	}
	st := node.Args[0]
	if st.Kind != ValuePair || st.Rest.Kind != ValuePair {
		return nil, fmt.Errorf("%w: singleton struct shape", ErrWrongPuzzleDriver)
	}
	modHash, ok1 := st.First.AsHash()
	launcherID, ok2 := st.Rest.First.AsHash()
	launcherHash, ok3 := st.Rest.Rest.AsHash()
	if !ok1 || !ok2 || !ok3 || modHash != d.T.SingletonHash || launcherHash != d.T.LauncherHash {
		return nil, fmt.Errorf("%w: singleton struct", ErrWrongPuzzleDriver)
	}
	innerReveal := node.Args[1].Program()
	inner, err := d.T.DecodeInner(innerReveal, node.Solution[2].Program())
	if err != nil {
		return nil, err
	}

	coins, _, err := clvm.Additions(d.Runner, spend, d.Net.MaxBlockCost)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpend, err)
	}
	var tip *types.Coin
	for i := range coins {
		if coins[i].Coin.Amount%2 == 1 {
			if tip != nil {
				return nil, fmt.Errorf("%w: singleton created two odd coins", ErrInvalidSpend)
			}
			tip = &coins[i].Coin
		}
	}
	if tip == nil {
		return nil, fmt.Errorf("%w: singleton created no child", ErrInvalidSpend)
	}
	innerPh := innerReveal.TreeHash()
	next := Outer{
		LauncherID: launcherID,
		Lineage: LineageProof{
			ParentName:      spend.Coin.ParentCoinInfo,
			InnerPuzzleHash: &innerPh,
			Amount:          spend.Coin.Amount,
		},
		Inner: inner.Next,
	}
	if tip.PuzzleHash != next.PuzzleHash(d.T) {
		return nil, fmt.Errorf("%w: child puzzle hash does not match the decoded state", ErrInvalidSpend)
	}
	return &Decoded{Spend: spend, Mode: inner.Mode, Previous: inner.Previous, Outer: next, Tip: *tip}, nil
}

// Transition is a signed singleton change plus what the funding transaction must do for it.
type Transition struct {
	Bundle           types.SpendBundle
	CoinAssertions   []types.Announcement
	PuzzleAssertions []types.Announcement
	Primaries        []types.Payment
}

func (d *Driver) singletonBundle(sk *bls.PrivateKey, o Outer, coin types.Coin, u InnerUpdate) (types.SpendBundle, error) {
	if sk.PublicKey() != o.Inner.PubKey {
		return types.SpendBundle{}, ErrKeyMismatch
	}
	if o.Lineage.ParentName.IsZero() {
		return types.SpendBundle{}, ErrNoLineage
	}
	innerSol, err := o.Inner.Solution(coin.ParentCoinInfo, u)
	if err != nil {
		return types.SpendBundle{}, err
	}
	node := d.T.outerNode(o).WithSolution(o.Lineage.Value(), UintValue(coin.Amount), ListValue(innerSol...))
	cs, err := node.ToSpend(coin, d.Runner, d.Net.MaxBlockCost)
	if err != nil {
		return types.SpendBundle{}, err
	}
	return bls.SignCoinSpends(d.Runner, []types.CoinSpend{cs}, d.Net, sk)
}

func (d *Driver) feeBundle(f Fee, feeParent types.Bytes32) (types.SpendBundle, error) {
	feeCoin := types.Coin{ParentCoinInfo: feeParent, PuzzleHash: d.T.FeeHash, Amount: schema.TotalFeeAmount}
	cs, err := d.FeeSpend(f, feeCoin)
	if err != nil {
		return types.SpendBundle{}, err
	}
	return types.SpendBundle{CoinSpends: []types.CoinSpend{cs}, AggregatedSignature: types.IdentitySignature()}, nil
}

// Renew extends the registration of tip. feeParent is the coin the funding transaction spends to create the fee coin.
func (d *Driver) Renew(sk *bls.PrivateKey, o Outer, tip types.Coin, feeParent types.Bytes32, newMetadata *metadata.DomainMetadata) (*Transition, error) {
	singletonSb, err := d.singletonBundle(sk, o, tip, InnerUpdate{Renew: true, NewMetadata: newMetadata})
	if err != nil {
		return nil, err
	}
	feeSb, err := d.feeBundle(Fee{
		Name:              o.Inner.Name,
		OuterPuzzleHash:   o.PuzzleHash(d.T),
		LauncherID:        o.LauncherID,
		SingletonParentID: tip.ParentCoinInfo,
	}, feeParent)
	if err != nil {
		return nil, err
	}
	sb, err := bls.AggregateBundles(singletonSb, feeSb)
	if err != nil {
		return nil, err
	}
	return &Transition{
		Bundle: sb,
		PuzzleAssertions: []types.Announcement{
			{Origin: d.T.FeeHash, Message: feeAnnouncement(o.Inner.Name, tip.ParentCoinInfo)},
		},
		Primaries: []types.Payment{{PuzzleHash: d.T.FeeHash, Amount: schema.TotalFeeAmount}},
	}, nil
}

func (d *Driver) UpdateMetadata(sk *bls.PrivateKey, o Outer, tip types.Coin, newMetadata metadata.DomainMetadata) (*Transition, error) {
	return d.update(sk, o, tip, InnerUpdate{NewMetadata: &newMetadata})
}

// UpdatePubkey transfers the domain to newPubKey, optionally replacing the metadata at the same time.
func (d *Driver) UpdatePubkey(sk *bls.PrivateKey, o Outer, tip types.Coin, newPubKey types.G1Element, newMetadata *metadata.DomainMetadata) (*Transition, error) {
	return d.update(sk, o, tip, InnerUpdate{NewPubKey: &newPubKey, NewMetadata: newMetadata})
}

// update spends need no fee coin; the assertion lets a wallet attach a network fee to them.
func (d *Driver) update(sk *bls.PrivateKey, o Outer, tip types.Coin, u InnerUpdate) (*Transition, error) {
	sb, err := d.singletonBundle(sk, o, tip, u)
	if err != nil {
		return nil, err
	}
	return &Transition{
		Bundle: sb,
		PuzzleAssertions: []types.Announcement{
			{Origin: o.PuzzleHash(d.T), Message: feeAnnouncement(o.Inner.Name, tip.ParentCoinInfo)},
		},
	}, nil
}
