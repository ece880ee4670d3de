package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"strings"
	"time"
)

// maxWalkBack bounds the search for a transaction block below the peak.
const maxWalkBack = 64

// NodeClient talks to the full node rpc.
type NodeClient struct {
	rpc *rpcClient
}

func NewNodeClient(conf schema.Node, callTimeout time.Duration) (*NodeClient, error) {
	rpc, err := newRpcClient(conf.Url, conf.CertPath, conf.KeyPath, conf.CaPath, callTimeout)
	if err != nil {
		return nil, err
	}
	return &NodeClient{rpc: rpc}, nil
}

func (n *NodeClient) IsSynced(ctx context.Context) (bool, error) {
	res, err := n.rpc.call(ctx, "get_blockchain_state", nil)
	if err != nil {
		return false, err
	}
	return res.Get("blockchain_state.sync.synced").Bool(), nil
}

// LatestConfirmedBlock walks back from the peak to the newest block that carries a timestamp.
func (n *NodeClient) LatestConfirmedBlock(ctx context.Context) (types.BlockRecord, error) {
	res, err := n.rpc.call(ctx, "get_blockchain_state", nil)
	if err != nil {
		return types.BlockRecord{}, err
	}
	var b types.BlockRecord
	if err = json.Unmarshal([]byte(res.Get("blockchain_state.peak").Raw), &b); err != nil {
		return b, fmt.Errorf("%w: peak: %v", ErrRpc, err)
	}
	for i := 0; !b.IsTransactionBlock(); i++ {
		if i >= maxWalkBack {
			return b, fmt.Errorf("%w: no transaction block within %d blocks of %d", ErrRpc, maxWalkBack, b.Height)
		}
		res, err = n.rpc.call(ctx, "get_block_record", map[string]interface{}{"header_hash": b.PrevHash})
		if err != nil {
			return b, err
		}
		b = types.BlockRecord{}
		if err = json.Unmarshal([]byte(res.Get("block_record").Raw), &b); err != nil {
			return b, fmt.Errorf("%w: block record: %v", ErrRpc, err)
		}
	}
	return b, nil
}

func coinRecords(raw string) ([]types.CoinRecord, error) {
	recs := make([]types.CoinRecord, 0)
	if raw == "" {
		return recs, nil
	}
	if err := json.Unmarshal([]byte(raw), &recs); err != nil {
		return nil, fmt.Errorf("%w: coin records: %v", ErrRpc, err)
	}
	return recs, nil
}

func (n *NodeClient) CoinsByPuzzleHash(ctx context.Context, ph types.Bytes32, includeSpent bool) ([]types.CoinRecord, error) {
	res, err := n.rpc.call(ctx, "get_coin_records_by_puzzle_hash", map[string]interface{}{
		"puzzle_hash":         ph,
		"include_spent_coins": includeSpent,
	})
	if err != nil {
		return nil, err
	}
	return coinRecords(res.Get("coin_records").Raw)
}

func (n *NodeClient) CoinsByParentIDs(ctx context.Context, ids []types.Bytes32, includeSpent bool) ([]types.CoinRecord, error) {
	res, err := n.rpc.call(ctx, "get_coin_records_by_parent_ids", map[string]interface{}{
		"parent_ids":          ids,
		"include_spent_coins": includeSpent,
	})
	if err != nil {
		return nil, err
	}
	return coinRecords(res.Get("coin_records").Raw)
}

// isNoSpend reports whether the node refused get_puzzle_and_solution because
// the coin has no spend at that height.
func isNoSpend(err error) bool {
	var ne *NodeError
	if !errors.As(err, &ne) {
		return false
	}
	msg := strings.ToLower(ne.Msg)
	for _, s := range noSpendMessages {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

// answers of get_puzzle_and_solution for a coin unknown or unspent at the height
var noSpendMessages = []string{"invalid height", "not found", "failed to get puzzle and solution"}

// PuzzleAndSolution returns nil when the node has no spend of coinID at height.
// Any other failure is returned.
func (n *NodeClient) PuzzleAndSolution(ctx context.Context, coinID types.Bytes32, height uint32) (*types.CoinSpend, error) {
	res, err := n.rpc.call(ctx, "get_puzzle_and_solution", map[string]interface{}{
		"coin_id": coinID,
		"height":  height,
	})
	if err != nil {
		if isNoSpend(err) {
			log.Debug("no puzzle and solution", "coinId", coinID, "height", height)
			return nil, nil
		}
		return nil, err
	}
	cs := &types.CoinSpend{}
	if err = json.Unmarshal([]byte(res.Get("coin_solution").Raw), cs); err != nil {
		return nil, fmt.Errorf("%w: coin spend: %v", ErrRpc, err)
	}
	return cs, nil
}

func (n *NodeClient) PushTx(ctx context.Context, sb types.SpendBundle) error {
	res, err := n.rpc.call(ctx, "push_tx", map[string]interface{}{"spend_bundle": sb})
	if err != nil {
		log.Error("push_tx", "err", err)
		return err
	}
	log.Info("push_tx", "status", res.Get("status").String(), "spends", len(sb.CoinSpends))
	return nil
}
