package resolver

import (
	"context"
	"github.com/everFinance/dotxch/types"
)

// Ledger is the chain view the engine reads from.
type Ledger interface {
	IsSynced(ctx context.Context) (bool, error)
	// LatestConfirmedBlock returns the most recent transaction block; its timestamp is set.
	LatestConfirmedBlock(ctx context.Context) (types.BlockRecord, error)
	CoinsByPuzzleHash(ctx context.Context, ph types.Bytes32, includeSpent bool) ([]types.CoinRecord, error)
	CoinsByParentIDs(ctx context.Context, ids []types.Bytes32, includeSpent bool) ([]types.CoinRecord, error)
	// PuzzleAndSolution returns the spend of coinID made at height, or nil when there is none.
	PuzzleAndSolution(ctx context.Context, coinID types.Bytes32, height uint32) (*types.CoinSpend, error)
	PushTx(ctx context.Context, sb types.SpendBundle) error
}
