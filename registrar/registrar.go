package registrar

import (
	"context"
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/bls"
	"github.com/everFinance/dotxch/common"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
)

var log = common.NewLog("registrar")

var (
	ErrConflict       = errors.New("domain_spend_conflict")
	ErrDomainExists   = errors.New("domain_already_registered")
	ErrDomainNotFound = errors.New("domain_not_found")
	ErrTooManyCoins   = errors.New("too_many_coins_selected")
)

// Wallet funds domain spends with standard coins.
type Wallet interface {
	SelectCoins(ctx context.Context, amount uint64) ([]types.Coin, error)
	CreateSignedTransaction(ctx context.Context, req types.TransactionRequest) (types.SpendBundle, error)
}

type Registrar struct {
	engine *resolver.Engine
	driver *puzzle.Driver
	wallet Wallet
	locks  *keyedMutex
}

func New(engine *resolver.Engine, wallet Wallet) *Registrar {
	return &Registrar{
		engine: engine,
		driver: engine.Driver(),
		wallet: wallet,
		locks:  newKeyedMutex(),
	}
}

// Submission is a pushed domain spend.
type Submission struct {
	LauncherID types.Bytes32
	Bundle     types.SpendBundle
}

type RegisterOptions struct {
	Fee               uint64
	SkipExistingCheck bool
}

// Register launches name for sk's public key.
func (r *Registrar) Register(ctx context.Context, sk *bls.PrivateKey, name string, md metadata.DomainMetadata, opts RegisterOptions) (*Submission, error) {
	unlock := r.locks.Lock("name:" + name)
	defer unlock()

	if !opts.SkipExistingCheck {
		results, err := r.engine.Discover(ctx, name, nil)
		if err != nil {
			return nil, err
		}
		if len(results) > 0 {
			if cur := resolver.Filter(results, true, false)[0]; cur.Record != nil {
				return nil, fmt.Errorf("%w: %s launcher %s", ErrDomainExists, name, cur.Record.LauncherID)
			}
		}
	}

	base, err := r.selectOne(ctx, schema.TotalNewDomainAmount+opts.Fee)
	if err != nil {
		return nil, err
	}
	tr, err := r.driver.CreateFromInner(sk, puzzle.Inner{Name: name, PubKey: sk.PublicKey(), Metadata: md}, base)
	if err != nil {
		return nil, err
	}
	sb, err := r.fund(ctx, tr, []types.Coin{base}, opts.Fee)
	if err != nil {
		return nil, err
	}
	launcherID := tr.Bundle.CoinSpends[0].Coin.Name()
	if err = r.push(ctx, sb); err != nil {
		return nil, err
	}
	log.Info("domain registered", "name", name, "launcherId", launcherID)
	return &Submission{LauncherID: launcherID, Bundle: sb}, nil
}

// Renew extends the registration of the current owner lineage, or of launcherID when given.
func (r *Registrar) Renew(ctx context.Context, sk *bls.PrivateKey, name string, launcherID *types.Bytes32, newMetadata *metadata.DomainMetadata, fee uint64) (*Submission, error) {
	return r.withLatest(ctx, name, launcherID, func(rec *resolver.DomainRecord, o puzzle.Outer) (types.SpendBundle, error) {
		coin, err := r.selectOne(ctx, schema.TotalFeeAmount+fee)
		if err != nil {
			return types.SpendBundle{}, err
		}
		tr, err := r.driver.Renew(sk, o, rec.Tip, coin.Name(), newMetadata)
		if err != nil {
			return types.SpendBundle{}, err
		}
		return r.fund(ctx, tr, []types.Coin{coin}, fee)
	})
}

func (r *Registrar) UpdateMetadata(ctx context.Context, sk *bls.PrivateKey, name string, launcherID *types.Bytes32, md metadata.DomainMetadata, fee uint64) (*Submission, error) {
	return r.withLatest(ctx, name, launcherID, func(rec *resolver.DomainRecord, o puzzle.Outer) (types.SpendBundle, error) {
		tr, err := r.driver.UpdateMetadata(sk, o, rec.Tip, md)
		if err != nil {
			return types.SpendBundle{}, err
		}
		return r.optionalFee(ctx, tr, fee)
	})
}

// UpdatePubkey transfers the domain. A nil metadata keeps the current one.
func (r *Registrar) UpdatePubkey(ctx context.Context, sk *bls.PrivateKey, name string, launcherID *types.Bytes32, newPubKey types.G1Element, md *metadata.DomainMetadata, fee uint64) (*Submission, error) {
	return r.withLatest(ctx, name, launcherID, func(rec *resolver.DomainRecord, o puzzle.Outer) (types.SpendBundle, error) {
		tr, err := r.driver.UpdatePubkey(sk, o, rec.Tip, newPubKey, md)
		if err != nil {
			return types.SpendBundle{}, err
		}
		return r.optionalFee(ctx, tr, fee)
	})
}

// withLatest resolves the lineage, holds its lock, refreshes the tip and pushes what build returns.
func (r *Registrar) withLatest(ctx context.Context, name string, launcherID *types.Bytes32, build func(*resolver.DomainRecord, puzzle.Outer) (types.SpendBundle, error)) (*Submission, error) {
	res, err := r.engine.Resolve(ctx, name, launcherID, true)
	if err != nil {
		return nil, err
	}
	if res.Record == nil {
		return nil, fmt.Errorf("%w: %s is %s", ErrDomainNotFound, name, res.Status)
	}
	id := res.Record.LauncherID
	unlock := r.locks.Lock("launcher:" + id.Hex())
	defer unlock()

	if res, err = r.engine.GetLatest(ctx, res); err != nil {
		return nil, err
	}
	o, err := res.Record.Outer(r.driver)
	if err != nil {
		return nil, err
	}
	sb, err := build(res.Record, o)
	if err != nil {
		return nil, err
	}
	if err = r.push(ctx, sb); err != nil {
		return nil, err
	}
	log.Info("domain updated", "name", name, "launcherId", id)
	return &Submission{LauncherID: id, Bundle: sb}, nil
}

func (r *Registrar) selectOne(ctx context.Context, amount uint64) (types.Coin, error) {
	coins, err := r.wallet.SelectCoins(ctx, amount)
	if err != nil {
		return types.Coin{}, err
	}
	if len(coins) != 1 {
		return types.Coin{}, fmt.Errorf("%w: %d coins for %d, combine the coins in the wallet", ErrTooManyCoins, len(coins), amount)
	}
	if coins[0].Amount < amount {
		return types.Coin{}, fmt.Errorf("%w: %d < %d", puzzle.ErrInsufficientBaseCoin, coins[0].Amount, amount)
	}
	return coins[0], nil
}

func (r *Registrar) fund(ctx context.Context, tr *puzzle.Transition, coins []types.Coin, fee uint64) (types.SpendBundle, error) {
	tx, err := r.wallet.CreateSignedTransaction(ctx, types.TransactionRequest{
		Additions:           tr.Primaries,
		Coins:               coins,
		Fee:                 fee,
		CoinAnnouncements:   tr.CoinAssertions,
		PuzzleAnnouncements: tr.PuzzleAssertions,
	})
	if err != nil {
		return types.SpendBundle{}, err
	}
	return bls.AggregateBundles(tr.Bundle, tx)
}

// optionalFee attaches a fee transaction to an update that needs no funding.
func (r *Registrar) optionalFee(ctx context.Context, tr *puzzle.Transition, fee uint64) (types.SpendBundle, error) {
	if fee == 0 {
		return tr.Bundle, nil
	}
	return r.fund(ctx, tr, nil, fee)
}

func (r *Registrar) push(ctx context.Context, sb types.SpendBundle) error {
	err := r.engine.Ledger().PushTx(ctx, sb)
	if errors.Is(err, schema.ErrDoubleSpend) {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}
