package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/common"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"sort"
	"sync"
	"time"
)

var log = common.NewLog("resolver")

type Engine struct {
	ledger      Ledger
	driver      *puzzle.Driver
	callTimeout time.Duration
	concurrent  int
	tracer      trace.Tracer
}

type Option func(*Engine)

// WithCallTimeout bounds every single ledger call.
func WithCallTimeout(d time.Duration) Option {
	return func(e *Engine) { e.callTimeout = d }
}

// WithConcurrency sets the number of creating-spend lookups run at once during discovery.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrent = n }
}

func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

func NewEngine(l Ledger, d *puzzle.Driver, opts ...Option) *Engine {
	e := &Engine{
		ledger:      l,
		driver:      d,
		callTimeout: schema.DefaultCallTimeout,
		concurrent:  schema.DefaultLookupConcurrent,
		tracer:      otel.Tracer("github.com/everFinance/dotxch/resolver"),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.concurrent < 1 {
		e.concurrent = 1
	}
	return e
}

func (e *Engine) Driver() *puzzle.Driver { return e.driver }

func (e *Engine) Ledger() Ledger { return e.ledger }

func (e *Engine) call(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.callTimeout)
}

func (e *Engine) span(ctx context.Context, name, domain string) (context.Context, trace.Span) {
	return e.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("domain_name", domain)))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (e *Engine) requireSynced(ctx context.Context) error {
	cctx, cancel := e.call(ctx)
	defer cancel()
	synced, err := e.ledger.IsSynced(cctx)
	if err != nil {
		return err
	}
	if !synced {
		return schema.ErrNotSynced
	}
	return nil
}

// LatestTimestamp is the time of the latest transaction block, the clock all expiry math uses.
func (e *Engine) LatestTimestamp(ctx context.Context) (types.BlockRecord, uint64, error) {
	cctx, cancel := e.call(ctx)
	defer cancel()
	b, err := e.ledger.LatestConfirmedBlock(cctx)
	if err != nil {
		return b, 0, err
	}
	if b.Timestamp == nil {
		return b, 0, fmt.Errorf("block %d is not a transaction block", b.Height)
	}
	return b, *b.Timestamp, nil
}

type regEvent struct {
	height    uint32
	timestamp uint64
}

type lookup struct {
	rec        types.CoinRecord
	launcherID types.Bytes32
	ok         bool
	err        error
}

// Discover finds every lineage registered under name. A non-nil launcherID restricts the result to that lineage.
// Lineages that fail the consistency checks are left out; ledger failures fail the whole call.
func (e *Engine) Discover(ctx context.Context, name string, launcherID *types.Bytes32) (res []ResolutionResult, err error) {
	ctx, span := e.span(ctx, "resolver.Discover", name)
	defer func() { endSpan(span, err) }()

	if err = e.requireSynced(ctx); err != nil {
		return nil, err
	}
	_, now, err := e.LatestTimestamp(ctx)
	if err != nil {
		return nil, err
	}

	identityPh := e.driver.T.IdentityPuzzleHash(name)
	cctx, cancel := e.call(ctx)
	records, err := e.ledger.CoinsByPuzzleHash(cctx, identityPh, true)
	cancel()
	if err != nil {
		return nil, err
	}
	markers := make([]types.CoinRecord, 0, len(records))
	for _, r := range records {
		if r.Coin.Amount == schema.DiscoveryCoinAmount {
			markers = append(markers, r)
		}
	}
	if len(markers) == 0 {
		return []ResolutionResult{}, nil
	}

	lookups, err := e.lookupLaunchers(ctx, markers, identityPh)
	if err != nil {
		return nil, err
	}
	groups := make(map[types.Bytes32][]regEvent)
	for _, l := range lookups {
		if !l.ok {
			continue
		}
		if launcherID != nil && l.launcherID != *launcherID {
			continue
		}
		groups[l.launcherID] = append(groups[l.launcherID], regEvent{height: l.rec.ConfirmedBlockIndex, timestamp: l.rec.Timestamp})
	}
	ids := make([]types.Bytes32, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

	res = make([]ResolutionResult, 0, len(ids))
	for _, id := range ids {
		rec, err := e.lineage(ctx, name, id, groups[id])
		if err != nil {
			return nil, err
		}
		if rec == nil {
			continue
		}
		res = append(res, ResolutionResult{DomainName: name, Status: rec.Status(now), Record: rec})
	}
	return res, nil
}

// lookupLaunchers fetches the creating spend of every marker on an ants pool.
func (e *Engine) lookupLaunchers(ctx context.Context, markers []types.CoinRecord, identityPh types.Bytes32) ([]lookup, error) {
	out := make([]lookup, len(markers))
	var wg sync.WaitGroup
	p, err := ants.NewPoolWithFunc(e.concurrent, func(i interface{}) {
		defer wg.Done()
		idx := i.(int)
		rec := markers[idx]
		cctx, cancel := e.call(ctx)
		defer cancel()
		spend, err := e.ledger.PuzzleAndSolution(cctx, rec.Coin.ParentCoinInfo, rec.ConfirmedBlockIndex)
		if err != nil {
			out[idx] = lookup{rec: rec, err: err}
			return
		}
		id, ok := e.driver.LauncherIDFromSpend(spend, identityPh)
		out[idx] = lookup{rec: rec, launcherID: id, ok: ok}
	})
	if err != nil {
		return nil, err
	}
	defer p.Release()

	for i := range markers {
		wg.Add(1)
		if err := p.Invoke(i); err != nil {
			wg.Done()
			out[i] = lookup{rec: markers[i], err: err}
		}
	}
	wg.Wait()

	for _, l := range out {
		if l.err != nil {
			log.Error("creating spend lookup", "err", l.err, "coin", l.rec.Coin.Name())
			return nil, fmt.Errorf("%w: %w", schema.ErrDiscoveryIncomplete, l.err)
		}
	}
	return out, nil
}

// gapTooLarge reports whether two consecutive registrations are further apart than a lineage may lapse.
func gapTooLarge(events []regEvent) bool {
	ts := make([]uint64, 0, len(events))
	for _, ev := range events {
		ts = append(ts, ev.timestamp)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	for i := 1; i < len(ts); i++ {
		if ts[i]-ts[i-1] > schema.MaxRegistrationGap {
			return true
		}
	}
	return false
}

// lineage decodes the first generation of launcherID. A nil record means the lineage is discarded.
func (e *Engine) lineage(ctx context.Context, name string, launcherID types.Bytes32, events []regEvent) (*DomainRecord, error) {
	cctx, cancel := e.call(ctx)
	children, err := e.ledger.CoinsByParentIDs(cctx, []types.Bytes32{launcherID}, true)
	cancel()
	if err != nil {
		return nil, err
	}
	var eve *types.CoinRecord
	for i := range children {
		if children[i].Coin.Amount%2 == 1 {
			eve = &children[i]
			break
		}
	}
	if eve == nil || !eve.Spent {
		log.Debug("launcher has no spent singleton child", "name", name, "launcherId", launcherID)
		return nil, nil
	}
	created := regEvent{height: eve.ConfirmedBlockIndex, timestamp: eve.Timestamp}
	found := false
	var updateHeight uint32
	for _, ev := range events {
		if ev == created {
			found = true
		}
		if ev.height > updateHeight {
			updateHeight = ev.height
		}
	}
	if !found {
		log.Warn("creation not among registration events", "name", name, "launcherId", launcherID)
		return nil, nil
	}
	if gapTooLarge(events) {
		log.Warn("registration gap too large", "name", name, "launcherId", launcherID)
		return nil, nil
	}

	cctx, cancel = e.call(ctx)
	spend, err := e.ledger.PuzzleAndSolution(cctx, eve.Coin.Name(), eve.SpentBlockIndex)
	cancel()
	if err != nil {
		return nil, err
	}
	if spend == nil {
		return nil, fmt.Errorf("%w: no spend for eve coin %s", schema.ErrDiscoveryIncomplete, eve.Coin.Name())
	}
	dec, err := e.driver.DecodeOuter(*spend)
	if err != nil {
		log.Warn("eve spend is not a domain spend", "err", err, "name", name, "launcherId", launcherID)
		return nil, nil
	}
	if dec.Outer.LauncherID != launcherID || dec.Outer.Inner.Name != name {
		log.Warn("eve spend belongs to another lineage", "name", name, "launcherId", launcherID)
		return nil, nil
	}
	rec := recordFromDecoded(dec)
	rec.CreationHeight = created.height
	rec.CreationTimestamp = created.timestamp
	rec.RegistrationUpdateHeight = updateHeight
	rec.StateUpdateHeight = created.height
	rec.ExpirationTimestamp = ExpirationTimestamp(created.timestamp, len(events))
	return rec, nil
}

// Filter picks the lineage that owns a name. The earliest creation wins and ties go to the smaller launcher id.
// With returnConflicting the losers follow the winner, marked CONFLICTING.
func Filter(results []ResolutionResult, allowGracePeriod, returnConflicting bool) []ResolutionResult {
	name := ""
	survivors := make([]ResolutionResult, 0, len(results))
	for _, r := range results {
		name = r.DomainName
		if r.Record == nil {
			continue
		}
		if r.Status == StatusFound || (allowGracePeriod && r.Status == StatusGracePeriod) {
			survivors = append(survivors, r)
		}
	}
	switch len(survivors) {
	case 0:
		return []ResolutionResult{{DomainName: name, Status: StatusExpired}}
	case 1:
		return survivors
	}
	sort.SliceStable(survivors, func(i, j int) bool {
		a, b := survivors[i].Record, survivors[j].Record
		if a.CreationHeight != b.CreationHeight {
			return a.CreationHeight < b.CreationHeight
		}
		return bytes.Compare(a.LauncherID[:], b.LauncherID[:]) < 0
	})
	if !returnConflicting {
		return survivors[:1]
	}
	out := make([]ResolutionResult, 0, len(survivors))
	out = append(out, survivors[0])
	for _, r := range survivors[1:] {
		r.Status = StatusConflicting
		out = append(out, r)
	}
	return out
}

// GetLatest follows a lineage from its record to the current unspent singleton.
func (e *Engine) GetLatest(ctx context.Context, r ResolutionResult) (_ ResolutionResult, err error) {
	if r.Record == nil {
		return r, nil
	}
	ctx, span := e.span(ctx, "resolver.GetLatest", r.DomainName)
	defer func() { endSpan(span, err) }()
	if err = e.requireSynced(ctx); err != nil {
		return r, err
	}

	var (
		current    = r.Record.Tip
		lastParent *types.Coin
		tipRecord  types.CoinRecord
	)
	for {
		cctx, cancel := e.call(ctx)
		children, err := e.ledger.CoinsByParentIDs(cctx, []types.Bytes32{current.Name()}, true)
		cancel()
		if err != nil {
			return r, err
		}
		var next *types.CoinRecord
		for i := range children {
			if children[i].Coin.Amount%2 != 1 {
				continue
			}
			if next != nil {
				return r, fmt.Errorf("%w: coin %s has two singleton children", schema.ErrLineageBroken, current.Name())
			}
			next = &children[i]
		}
		if next == nil {
			break
		}
		parent := current
		lastParent = &parent
		current = next.Coin
		tipRecord = *next
	}

	latest := *r.Record
	rec := &latest
	if lastParent != nil {
		cctx, cancel := e.call(ctx)
		spend, err := e.ledger.PuzzleAndSolution(cctx, lastParent.Name(), tipRecord.ConfirmedBlockIndex)
		cancel()
		if err != nil {
			return r, err
		}
		if spend == nil {
			return r, fmt.Errorf("%w: no spend for %s", schema.ErrLineageBroken, lastParent.Name())
		}
		dec, err := e.driver.DecodeOuter(*spend)
		if err != nil {
			return r, fmt.Errorf("%w: %v", schema.ErrLineageBroken, err)
		}
		if dec.Tip != current || dec.Outer.LauncherID != r.Record.LauncherID {
			return r, fmt.Errorf("%w: tip %s does not follow from its parent spend", schema.ErrLineageBroken, current.Name())
		}
		rec = r.Record.withState(dec, tipRecord.ConfirmedBlockIndex)
	}
	status := r.Status
	if status == StatusFound {
		status = StatusLatest
	}
	return ResolutionResult{DomainName: r.DomainName, Status: status, Record: rec}, nil
}

// Resolve answers who owns name now. Without a launcher id the owning lineage is chosen by Filter.
func (e *Engine) Resolve(ctx context.Context, name string, launcherID *types.Bytes32, allowGracePeriod bool) (res ResolutionResult, err error) {
	ctx, span := e.span(ctx, "resolver.Resolve", name)
	defer func() { endSpan(span, err) }()

	results, err := e.Discover(ctx, name, launcherID)
	if err != nil {
		return notFound(name), err
	}
	if len(results) == 0 {
		return notFound(name), nil
	}
	pick := results[0]
	if launcherID == nil {
		pick = Filter(results, allowGracePeriod, false)[0]
	}
	return e.GetLatest(ctx, pick)
}

// ResolveAll is Resolve that also returns the losing lineages as CONFLICTING.
func (e *Engine) ResolveAll(ctx context.Context, name string, allowGracePeriod bool) ([]ResolutionResult, error) {
	results, err := e.Discover(ctx, name, nil)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []ResolutionResult{notFound(name)}, nil
	}
	filtered := Filter(results, allowGracePeriod, true)
	latest, err := e.GetLatest(ctx, filtered[0])
	if err != nil {
		return nil, err
	}
	filtered[0] = latest
	return filtered, nil
}

// SpendOldMarkers spends the discovery markers of name that have outlived a registration length.
// It returns the number of markers spent.
func (e *Engine) SpendOldMarkers(ctx context.Context, name string) (int, error) {
	if err := e.requireSynced(ctx); err != nil {
		return 0, err
	}
	_, now, err := e.LatestTimestamp(ctx)
	if err != nil {
		return 0, err
	}
	cctx, cancel := e.call(ctx)
	records, err := e.ledger.CoinsByPuzzleHash(cctx, e.driver.T.IdentityPuzzleHash(name), false)
	cancel()
	if err != nil {
		return 0, err
	}
	old := make([]types.Coin, 0)
	for _, r := range records {
		if r.Spent || r.Coin.Amount != schema.DiscoveryCoinAmount {
			continue
		}
		if r.Timestamp+e.driver.T.RegistrationLength < now {
			old = append(old, r.Coin)
		}
	}
	if len(old) == 0 {
		return 0, nil
	}
	sb, err := e.driver.IdentityBundle(name, old)
	if err != nil {
		return 0, err
	}
	cctx, cancel = e.call(ctx)
	defer cancel()
	if err := e.ledger.PushTx(cctx, sb); err != nil {
		if errors.Is(err, schema.ErrDoubleSpend) {
			log.Warn("old markers already spent", "name", name)
			return 0, nil
		}
		return 0, err
	}
	log.Info("spent old markers", "name", name, "count", len(old))
	return len(old), nil
}
