package puzzletest

import (
	"context"
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/bls"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/types"
	"sort"
	"sync"
)

var ErrInsufficientFunds = errors.New("insufficient_funds")

type CoinSource interface {
	CoinsByPuzzleHash(ctx context.Context, ph types.Bytes32, includeSpent bool) ([]types.CoinRecord, error)
}

// Wallet holds pay puzzle coins of one key and funds domain transitions with them.
type Wallet struct {
	Key    *bls.PrivateKey
	Driver *puzzle.Driver
	Coins  CoinSource

	lock sync.Mutex
	// coins handed out but not yet seen spent
	used map[types.Bytes32]bool
}

func NewWallet(key *bls.PrivateKey, d *puzzle.Driver, coins CoinSource) *Wallet {
	return &Wallet{Key: key, Driver: d, Coins: coins, used: make(map[types.Bytes32]bool)}
}

func (w *Wallet) PuzzleHash() types.Bytes32 {
	return PayPuzzleHash(w.Key.PublicKey())
}

// SelectCoins returns the smallest single unspent coin worth at least amount.
func (w *Wallet) SelectCoins(ctx context.Context, amount uint64) ([]types.Coin, error) {
	recs, err := w.Coins.CoinsByPuzzleHash(ctx, w.PuzzleHash(), false)
	if err != nil {
		return nil, err
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Coin.Amount < recs[j].Coin.Amount })
	w.lock.Lock()
	defer w.lock.Unlock()
	for _, r := range recs {
		if r.Coin.Amount >= amount && !w.used[r.Coin.Name()] {
			w.used[r.Coin.Name()] = true
			return []types.Coin{r.Coin}, nil
		}
	}
	return nil, fmt.Errorf("%w: want %d", ErrInsufficientFunds, amount)
}

// CreateSignedTransaction spends req.Coins, or selected coins when none are given.
// The first coin creates the additions and the change and makes every assertion.
func (w *Wallet) CreateSignedTransaction(ctx context.Context, req types.TransactionRequest) (types.SpendBundle, error) {
	var total uint64
	for _, a := range req.Additions {
		total += a.Amount
	}
	total += req.Fee
	coins := req.Coins
	if len(coins) == 0 {
		var err error
		if coins, err = w.SelectCoins(ctx, total); err != nil {
			return types.SpendBundle{}, err
		}
	}
	var in uint64
	for _, c := range coins {
		in += c.Amount
	}
	if in < total {
		return types.SpendBundle{}, fmt.Errorf("%w: have %d want %d", ErrInsufficientFunds, in, total)
	}

	conds := make([]*clvm.Program, 0)
	for _, a := range req.Additions {
		conds = append(conds, clvm.NewCondition(clvm.CreateCoin, clvm.Hash(a.PuzzleHash), clvm.Uint(a.Amount)))
	}
	if change := in - total; change > 0 {
		conds = append(conds, clvm.NewCondition(clvm.CreateCoin, clvm.Hash(w.PuzzleHash()), clvm.Uint(change)))
	}
	for _, a := range req.CoinAnnouncements {
		conds = append(conds, clvm.NewCondition(clvm.AssertCoinAnnouncement, clvm.Hash(a.Name())))
	}
	for _, a := range req.PuzzleAnnouncements {
		conds = append(conds, clvm.NewCondition(clvm.AssertPuzzleAnnouncement, clvm.Hash(a.Name())))
	}

	puz := PayPuzzle(w.Key.PublicKey())
	spends := make([]types.CoinSpend, 0, len(coins))
	for i, c := range coins {
		sol := clvm.Nil()
		if i == 0 {
			sol = clvm.List(conds...)
		}
		spends = append(spends, types.CoinSpend{Coin: c, PuzzleReveal: puz.Serialize(), Solution: sol.Serialize()})
	}
	return bls.SignCoinSpends(w.Driver.Runner, spends, w.Driver.Net, w.Key)
}

// Fund pays for tr with coin and returns the combined bundle.
func (w *Wallet) Fund(ctx context.Context, tr *puzzle.Transition, coin types.Coin) (types.SpendBundle, error) {
	sb, err := w.CreateSignedTransaction(ctx, types.TransactionRequest{
		Additions:           tr.Primaries,
		Coins:               []types.Coin{coin},
		CoinAnnouncements:   tr.CoinAssertions,
		PuzzleAnnouncements: tr.PuzzleAssertions,
	})
	if err != nil {
		return types.SpendBundle{}, err
	}
	return bls.AggregateBundles(tr.Bundle, sb)
}
