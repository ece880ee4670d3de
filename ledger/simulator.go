package ledger

import (
	"context"
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/bls"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"sort"
	"sync"
)

var (
	ErrUnknownCoin       = errors.New("unknown_coin")
	ErrAssertionFailed   = errors.New("assertion_failed")
	ErrMintingCoin       = errors.New("minting_coin")
	ErrTimestampNotAfter = errors.New("timestamp_not_after_peak")
)

// Simulator is an in-memory ledger. Pushed bundles are checked at once and land in the next farmed block.
type Simulator struct {
	lock sync.Mutex

	runner clvm.Runner
	net    types.Network
	synced bool

	blocks  []types.BlockRecord
	coins   map[types.Bytes32]*types.CoinRecord
	spends  map[types.Bytes32]types.CoinSpend
	pending []types.SpendBundle
	// coins spent by pending bundles
	pendingRemovals map[types.Bytes32]bool
	mintNonce       uint64

	calls  map[string]int
	faults map[string]fault
}

// fault fails every call of a method from the nth one on.
type fault struct {
	nth int
	err error
}

func NewSimulator(r clvm.Runner, net types.Network, genesisTimestamp uint64) *Simulator {
	ts := genesisTimestamp
	return &Simulator{
		runner:          r,
		net:             net,
		synced:          true,
		blocks:          []types.BlockRecord{{Height: 0, Timestamp: &ts, HeaderHash: types.Sha256([]byte("genesis"))}},
		coins:           make(map[types.Bytes32]*types.CoinRecord),
		spends:          make(map[types.Bytes32]types.CoinSpend),
		pendingRemovals: make(map[types.Bytes32]bool),
		calls:           make(map[string]int),
		faults:          make(map[string]fault),
	}
}

func (s *Simulator) peak() types.BlockRecord {
	return s.blocks[len(s.blocks)-1]
}

func (s *Simulator) SetSynced(synced bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.synced = synced
}

// Calls returns how often a ledger method has been called.
func (s *Simulator) Calls(method string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.calls[method]
}

func (s *Simulator) ResetCalls() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.calls = make(map[string]int)
}

// FailFrom makes the nth call of method from now on, and every later one, return err.
func (s *Simulator) FailFrom(method string, nth int, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.faults[method] = fault{nth: s.calls[method] + nth, err: err}
}

func (s *Simulator) ClearFaults() {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.faults = make(map[string]fault)
}

// count records a call and returns the injected error, if any.
func (s *Simulator) count(method string) error {
	s.calls[method]++
	if f, ok := s.faults[method]; ok && s.calls[method] >= f.nth {
		return f.err
	}
	return nil
}

// Mint creates a coin out of thin air, confirmed at the current peak.
func (s *Simulator) Mint(ph types.Bytes32, amount uint64) types.Coin {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.mintNonce++
	parent := types.Sha256([]byte("mint"), types.Uint64ToClvmBytes(s.mintNonce))
	coin := types.Coin{ParentCoinInfo: parent, PuzzleHash: ph, Amount: amount}
	p := s.peak()
	s.coins[coin.Name()] = &types.CoinRecord{
		Coin:                coin,
		ConfirmedBlockIndex: p.Height,
		Coinbase:            true,
		Timestamp:           *p.Timestamp,
	}
	return coin
}

// FarmBlock confirms every pending bundle in a new transaction block at timestamp.
func (s *Simulator) FarmBlock(timestamp uint64) (types.BlockRecord, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	p := s.peak()
	if timestamp <= *p.Timestamp {
		return p, fmt.Errorf("%w: %d <= %d", ErrTimestampNotAfter, timestamp, *p.Timestamp)
	}
	ts := timestamp
	b := types.BlockRecord{
		Height:     p.Height + 1,
		PrevHash:   p.HeaderHash,
		HeaderHash: types.Sha256(p.HeaderHash.Bytes(), types.Uint64ToClvmBytes(timestamp)),
		Timestamp:  &ts,
	}
	for _, sb := range s.pending {
		for _, cs := range sb.CoinSpends {
			id := cs.Coin.Name()
			rec, ok := s.coins[id]
			if !ok {
				rec = &types.CoinRecord{Coin: cs.Coin, ConfirmedBlockIndex: b.Height, Timestamp: ts}
				s.coins[id] = rec
			}
			rec.Spent = true
			rec.SpentBlockIndex = b.Height
			s.spends[id] = cs

			coins, _, err := clvm.Additions(s.runner, cs, s.net.MaxBlockCost)
			if err != nil {
				return p, err
			}
			for _, c := range coins {
				cid := c.Coin.Name()
				if _, ok := s.coins[cid]; ok {
					continue
				}
				s.coins[cid] = &types.CoinRecord{Coin: c.Coin, ConfirmedBlockIndex: b.Height, Timestamp: ts}
			}
		}
	}
	s.pending = nil
	s.pendingRemovals = make(map[types.Bytes32]bool)
	s.blocks = append(s.blocks, b)
	return b, nil
}

func (s *Simulator) IsSynced(context.Context) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.count("IsSynced"); err != nil {
		return false, err
	}
	return s.synced, nil
}

func (s *Simulator) LatestConfirmedBlock(context.Context) (types.BlockRecord, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.count("LatestConfirmedBlock"); err != nil {
		return types.BlockRecord{}, err
	}
	return s.peak(), nil
}

func sortRecords(recs []types.CoinRecord) {
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].ConfirmedBlockIndex != recs[j].ConfirmedBlockIndex {
			return recs[i].ConfirmedBlockIndex < recs[j].ConfirmedBlockIndex
		}
		return recs[i].Coin.Name().Less(recs[j].Coin.Name())
	})
}

func (s *Simulator) CoinsByPuzzleHash(_ context.Context, ph types.Bytes32, includeSpent bool) ([]types.CoinRecord, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.count("CoinsByPuzzleHash"); err != nil {
		return nil, err
	}
	res := make([]types.CoinRecord, 0)
	for _, r := range s.coins {
		if r.Coin.PuzzleHash == ph && (includeSpent || !r.Spent) {
			res = append(res, *r)
		}
	}
	sortRecords(res)
	return res, nil
}

func (s *Simulator) CoinsByParentIDs(_ context.Context, ids []types.Bytes32, includeSpent bool) ([]types.CoinRecord, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.count("CoinsByParentIDs"); err != nil {
		return nil, err
	}
	want := make(map[types.Bytes32]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	res := make([]types.CoinRecord, 0)
	for _, r := range s.coins {
		if want[r.Coin.ParentCoinInfo] && (includeSpent || !r.Spent) {
			res = append(res, *r)
		}
	}
	sortRecords(res)
	return res, nil
}

func (s *Simulator) PuzzleAndSolution(_ context.Context, coinID types.Bytes32, height uint32) (*types.CoinSpend, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.count("PuzzleAndSolution"); err != nil {
		return nil, err
	}
	rec, ok := s.coins[coinID]
	if !ok || !rec.Spent || rec.SpentBlockIndex != height {
		return nil, nil
	}
	cs := s.spends[coinID]
	return &cs, nil
}

// PushTx validates sb against the peak and queues it for the next block.
func (s *Simulator) PushTx(_ context.Context, sb types.SpendBundle) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	if err := s.count("PushTx"); err != nil {
		return err
	}
	if err := s.validate(sb); err != nil {
		return err
	}
	for _, cs := range sb.CoinSpends {
		s.pendingRemovals[cs.Coin.Name()] = true
	}
	s.pending = append(s.pending, sb)
	return nil
}

func (s *Simulator) validate(sb types.SpendBundle) error {
	type spent struct {
		coin  types.Coin
		conds []clvm.Condition
	}
	spends := make([]spent, 0, len(sb.CoinSpends))
	removals := make(map[types.Bytes32]bool)
	additions := make(map[types.Bytes32]bool)
	announced := make(map[types.Bytes32]bool)
	var in, out uint64

	for _, cs := range sb.CoinSpends {
		id := cs.Coin.Name()
		if removals[id] {
			return fmt.Errorf("%w: coin %s spent twice in one bundle", schema.ErrDoubleSpend, id)
		}
		removals[id] = true
		coins, conds, err := clvm.Additions(s.runner, cs, s.net.MaxBlockCost)
		if err != nil {
			return err
		}
		for _, c := range coins {
			additions[c.Coin.Name()] = true
			out += c.Coin.Amount
		}
		for _, a := range clvm.AnnouncementsCreated(cs.Coin, conds) {
			announced[a.Name()] = true
		}
		in += cs.Coin.Amount
		spends = append(spends, spent{coin: cs.Coin, conds: conds})
	}
	if out > in {
		return fmt.Errorf("%w: outputs %d exceed inputs %d", ErrMintingCoin, out, in)
	}

	now := *s.peak().Timestamp
	for _, sp := range spends {
		id := sp.coin.Name()
		rec, ok := s.coins[id]
		ephemeral := !ok && additions[id]
		switch {
		case !ok && !ephemeral:
			return fmt.Errorf("%w: %s", ErrUnknownCoin, id)
		case ok && rec.Spent, s.pendingRemovals[id]:
			return fmt.Errorf("%w: %s", schema.ErrDoubleSpend, id)
		}
		for _, c := range sp.conds {
			if err := s.checkCondition(c, sp.coin, rec, now, announced); err != nil {
				return err
			}
		}
	}
	return bls.VerifyBundle(s.runner, sb, s.net)
}

func (s *Simulator) checkCondition(c clvm.Condition, coin types.Coin, rec *types.CoinRecord, now uint64, announced map[types.Bytes32]bool) error {
	if len(c.Args) < 1 {
		return nil
	}
	switch c.Opcode {
	case clvm.AssertCoinAnnouncement, clvm.AssertPuzzleAnnouncement:
		id, err := types.BytesToBytes32(c.Args[0].Atom())
		if err != nil || !announced[id] {
			return fmt.Errorf("%w: announcement %x asserted by %s", ErrAssertionFailed, c.Args[0].Atom(), coin.Name())
		}
	case clvm.AssertMyCoinID:
		id, err := types.BytesToBytes32(c.Args[0].Atom())
		if err != nil || id != coin.Name() {
			return fmt.Errorf("%w: my coin id of %s", ErrAssertionFailed, coin.Name())
		}
	case clvm.AssertSecondsRelative:
		secs, err := c.Args[0].Uint64()
		if err != nil {
			return fmt.Errorf("%w: seconds relative: %v", ErrAssertionFailed, err)
		}
		if secs == 0 {
			return nil
		}
		if rec == nil || rec.Timestamp+secs > now {
			return fmt.Errorf("%w: %s is younger than %d seconds", ErrAssertionFailed, coin.Name(), secs)
		}
	}
	return nil
}
