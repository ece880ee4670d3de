package puzzle

import (
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
)

var ErrWrongAmount = errors.New("wrong_coin_amount")

// IdentityPuzzleHash is the discovery mailbox of a name.
func (t *Templates) IdentityPuzzleHash(name string) types.Bytes32 {
	return clvm.CurryTreeHash(t.IdentityHash, clvm.TreeHashAtom([]byte(name)))
}

func (t *Templates) identityNode(name string) *Node {
	return NewNode(IdentityShape, t.Identity, StringValue(name))
}

// IdentitySpend spends a discovery marker. Markers carry no value and need no signature.
func (d *Driver) IdentitySpend(name string, coin types.Coin) (types.CoinSpend, error) {
	if coin.Amount != schema.DiscoveryCoinAmount {
		return types.CoinSpend{}, fmt.Errorf("%w: marker %s has %d", ErrWrongAmount, coin.Name(), coin.Amount)
	}
	return d.T.identityNode(name).WithSolution().ToSpend(coin, d.Runner, d.Net.MaxBlockCost)
}

func (d *Driver) IdentityBundle(name string, coins []types.Coin) (types.SpendBundle, error) {
	spends := make([]types.CoinSpend, 0, len(coins))
	for _, c := range coins {
		cs, err := d.IdentitySpend(name, c)
		if err != nil {
			return types.SpendBundle{}, err
		}
		spends = append(spends, cs)
	}
	return types.SpendBundle{CoinSpends: spends, AggregatedSignature: types.IdentitySignature()}, nil
}

func (d *Driver) DecodeIdentity(spend types.CoinSpend) (string, error) {
	node, err := Decode(spend, IdentityShape, d.T.IdentityHash)
	if err != nil {
		return "", err
	}
	name, _ := node.Args[0].AsString()
	return name, nil
}
