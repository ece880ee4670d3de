package bls

import (
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/types"
)

var ErrMissingKey = errors.New("bls_no_key_for_required_signature")

// Requirement is one (pk, msg) pair a bundle's aggregate signature must cover.
type Requirement struct {
	PubKey  types.G1Element
	Message []byte
}

// RequiredSignatures runs the spend and collects its AGG_SIG conditions.
// AGG_SIG_ME messages get the coin id and the network's additional data appended.
func RequiredSignatures(r clvm.Runner, spend types.CoinSpend, net types.Network) ([]Requirement, error) {
	conds, err := clvm.RunSpend(r, spend, net.MaxBlockCost)
	if err != nil {
		return nil, err
	}
	res := make([]Requirement, 0)
	for _, c := range conds {
		if c.Opcode != clvm.AggSigMe && c.Opcode != clvm.AggSigUnsafe {
			continue
		}
		if len(c.Args) < 2 {
			return nil, fmt.Errorf("%w: agg sig needs two args", clvm.ErrInvalidCondition)
		}
		pk, err := types.BytesToG1(c.Args[0].Atom())
		if err != nil {
			return nil, fmt.Errorf("%w: agg sig public key", clvm.ErrInvalidCondition)
		}
		msg := append([]byte{}, c.Args[1].Atom()...)
		if c.Opcode == clvm.AggSigMe {
			coinID := spend.Coin.Name()
			msg = append(msg, coinID[:]...)
			msg = append(msg, net.AdditionalData...)
		}
		res = append(res, Requirement{PubKey: pk, Message: msg})
	}
	return res, nil
}

// SignCoinSpends signs every requirement of the spends with the matching key.
func SignCoinSpends(r clvm.Runner, spends []types.CoinSpend, net types.Network, keys ...*PrivateKey) (types.SpendBundle, error) {
	byPk := make(map[types.G1Element]*PrivateKey, len(keys))
	for _, k := range keys {
		byPk[k.PublicKey()] = k
	}
	sigs := make([]types.G2Element, 0)
	for _, spend := range spends {
		reqs, err := RequiredSignatures(r, spend, net)
		if err != nil {
			return types.SpendBundle{}, err
		}
		for _, req := range reqs {
			k, ok := byPk[req.PubKey]
			if !ok {
				return types.SpendBundle{}, fmt.Errorf("%w: %s", ErrMissingKey, req.PubKey.Hex())
			}
			sigs = append(sigs, k.Sign(req.Message))
		}
	}
	agg, err := Aggregate(sigs...)
	if err != nil {
		return types.SpendBundle{}, err
	}
	return types.SpendBundle{CoinSpends: spends, AggregatedSignature: agg}, nil
}

// AggregateBundles concatenates the spends and aggregates the signatures.
func AggregateBundles(bundles ...types.SpendBundle) (types.SpendBundle, error) {
	spends := make([]types.CoinSpend, 0)
	sigs := make([]types.G2Element, 0, len(bundles))
	for _, b := range bundles {
		spends = append(spends, b.CoinSpends...)
		sigs = append(sigs, b.AggregatedSignature)
	}
	agg, err := Aggregate(sigs...)
	if err != nil {
		return types.SpendBundle{}, err
	}
	return types.SpendBundle{CoinSpends: spends, AggregatedSignature: agg}, nil
}

// VerifyBundle checks the aggregate signature of a bundle.
func VerifyBundle(r clvm.Runner, sb types.SpendBundle, net types.Network) error {
	pks := make([]types.G1Element, 0)
	msgs := make([][]byte, 0)
	for _, spend := range sb.CoinSpends {
		reqs, err := RequiredSignatures(r, spend, net)
		if err != nil {
			return err
		}
		for _, req := range reqs {
			pks = append(pks, req.PubKey)
			msgs = append(msgs, req.Message)
		}
	}
	if !AggregateVerify(pks, msgs, sb.AggregatedSignature) {
		return ErrInvalidSignature
	}
	return nil
}
