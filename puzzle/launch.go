package puzzle

import (
	"fmt"
	"github.com/everFinance/dotxch/bls"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
)

// CreateFromInner launches a new domain singleton out of baseCoin.
// The funding transaction must spend baseCoin, create Primaries and assert both announcement lists.
func (d *Driver) CreateFromInner(sk *bls.PrivateKey, in Inner, baseCoin types.Coin) (*Transition, error) {
	if baseCoin.Amount < schema.TotalNewDomainAmount {
		return nil, fmt.Errorf("%w: %d < %d", ErrInsufficientBaseCoin, baseCoin.Amount, schema.TotalNewDomainAmount)
	}
	if sk.PublicKey() != in.PubKey {
		return nil, ErrKeyMismatch
	}
	baseID := baseCoin.Name()
	launcherCoin := types.Coin{ParentCoinInfo: baseID, PuzzleHash: d.T.LauncherHash, Amount: schema.SingletonAmount}
	launcherID := launcherCoin.Name()
	outerPh := d.T.OuterPuzzleHash(launcherID, d.T.InnerPuzzleHash(in))

	launcherSol := clvm.List(clvm.Hash(outerPh), clvm.Uint(schema.SingletonAmount), in.Metadata.Program())
	launcherSpend := types.CoinSpend{
		Coin:         launcherCoin,
		PuzzleReveal: d.T.Launcher.Serialize(),
		Solution:     launcherSol.Serialize(),
	}
	if _, err := clvm.RunSpend(d.Runner, launcherSpend, d.Net.MaxBlockCost); err != nil {
		return nil, fmt.Errorf("%w: launcher: %v", ErrInvalidSpend, err)
	}

	eve := types.Coin{ParentCoinInfo: launcherID, PuzzleHash: outerPh, Amount: schema.SingletonAmount}
	o := Outer{
		LauncherID: launcherID,
		Lineage:    LineageProof{ParentName: baseID, Amount: launcherCoin.Amount},
		Inner:      in,
	}
	singletonSb, err := d.singletonBundle(sk, o, eve, InnerUpdate{Renew: true})
	if err != nil {
		return nil, err
	}
	feeSb, err := d.feeBundle(Fee{
		Name:              in.Name,
		OuterPuzzleHash:   outerPh,
		LauncherID:        launcherID,
		SingletonParentID: eve.ParentCoinInfo,
	}, baseID)
	if err != nil {
		return nil, err
	}
	launcherSb := types.SpendBundle{CoinSpends: []types.CoinSpend{launcherSpend}, AggregatedSignature: types.IdentitySignature()}
	sb, err := bls.AggregateBundles(launcherSb, singletonSb, feeSb)
	if err != nil {
		return nil, err
	}
	return &Transition{
		Bundle:         sb,
		CoinAssertions: []types.Announcement{{Origin: launcherID, Message: launcherSol.TreeHash().Bytes()}},
		PuzzleAssertions: []types.Announcement{
			{Origin: d.T.FeeHash, Message: feeAnnouncement(in.Name, eve.ParentCoinInfo)},
		},
		Primaries: []types.Payment{
			{PuzzleHash: d.T.LauncherHash, Amount: schema.SingletonAmount},
			{PuzzleHash: d.T.FeeHash, Amount: schema.TotalFeeAmount},
		},
	}, nil
}
