package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"time"
)

// WalletClient talks to the wallet rpc. It selects and signs the standard coins that fund domain spends.
type WalletClient struct {
	rpc      *rpcClient
	walletID int
}

func NewWalletClient(conf schema.Wallet, callTimeout time.Duration) (*WalletClient, error) {
	rpc, err := newRpcClient(conf.Url, conf.CertPath, conf.KeyPath, conf.CaPath, callTimeout)
	if err != nil {
		return nil, err
	}
	id := conf.WalletId
	if id == 0 {
		id = 1
	}
	return &WalletClient{rpc: rpc, walletID: id}, nil
}

func (w *WalletClient) SelectCoins(ctx context.Context, amount uint64) ([]types.Coin, error) {
	res, err := w.rpc.call(ctx, "select_coins", map[string]interface{}{
		"wallet_id":       w.walletID,
		"amount":          amount,
		"min_coin_amount": amount,
	})
	if err != nil {
		return nil, err
	}
	coins := make([]types.Coin, 0)
	if err = json.Unmarshal([]byte(res.Get("coins").Raw), &coins); err != nil {
		return nil, fmt.Errorf("%w: coins: %v", ErrRpc, err)
	}
	return coins, nil
}

type coinAnnouncement struct {
	CoinID  types.Bytes32  `json:"coin_id"`
	Message types.HexBytes `json:"message"`
}

type puzzleAnnouncement struct {
	PuzzleHash types.Bytes32  `json:"puzzle_hash"`
	Message    types.HexBytes `json:"message"`
}

func (w *WalletClient) CreateSignedTransaction(ctx context.Context, req types.TransactionRequest) (types.SpendBundle, error) {
	body := map[string]interface{}{
		"wallet_id": w.walletID,
		"additions": req.Additions,
		"fee":       req.Fee,
	}
	if len(req.Coins) > 0 {
		body["coins"] = req.Coins
	}
	if len(req.CoinAnnouncements) > 0 {
		anns := make([]coinAnnouncement, 0, len(req.CoinAnnouncements))
		for _, a := range req.CoinAnnouncements {
			anns = append(anns, coinAnnouncement{CoinID: a.Origin, Message: a.Message})
		}
		body["coin_announcements"] = anns
	}
	if len(req.PuzzleAnnouncements) > 0 {
		anns := make([]puzzleAnnouncement, 0, len(req.PuzzleAnnouncements))
		for _, a := range req.PuzzleAnnouncements {
			anns = append(anns, puzzleAnnouncement{PuzzleHash: a.Origin, Message: a.Message})
		}
		body["puzzle_announcements"] = anns
	}
	res, err := w.rpc.call(ctx, "create_signed_transaction", body)
	if err != nil {
		return types.SpendBundle{}, err
	}
	var sb types.SpendBundle
	if err = json.Unmarshal([]byte(res.Get("signed_tx.spend_bundle").Raw), &sb); err != nil {
		return sb, fmt.Errorf("%w: spend bundle: %v", ErrRpc, err)
	}
	return sb, nil
}
