package dotxch

import (
	"context"
	"encoding/json"
	"github.com/everFinance/dotxch/cache"
	"github.com/everFinance/dotxch/config"
	"github.com/everFinance/dotxch/ledger"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/puzzle/puzzletest"
	"github.com/everFinance/dotxch/registrar"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const genesis = uint64(1_700_000_000)

type memWriter struct {
	lock   sync.Mutex
	events []schema.DomainEvent
}

func (m *memWriter) Write(_ string, body []byte) error {
	ev := schema.DomainEvent{}
	if err := json.Unmarshal(body, &ev); err != nil {
		return err
	}
	m.lock.Lock()
	defer m.lock.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func (m *memWriter) Close() {}

func (m *memWriter) all() []schema.DomainEvent {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([]schema.DomainEvent{}, m.events...)
}

type testServer struct {
	t      *testing.T
	s      *Dotxch
	sim    *ledger.Simulator
	reg    *registrar.Registrar
	w      *puzzletest.Wallet
	events *memWriter
	ts     uint64
}

func newTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)
	d := puzzletest.Driver()
	sim := ledger.NewSimulator(d.Runner, d.Net, genesis)
	engine := resolver.NewEngine(sim, d, resolver.WithCallTimeout(time.Second))

	bc, err := cache.NewBigCache(time.Minute)
	require.NoError(t, err)
	store, err := NewBoltStore(t.TempDir(), "mainnet")
	require.NoError(t, err)
	wdb := NewSqliteDb(t.TempDir())
	require.NoError(t, wdb.Migrate())
	events := &memWriter{}

	s := newDotxch(engine, newResolutionCache(bc, schema.DefaultCacheTTL, schema.DefaultCacheSize), wdb, store,
		config.New("", t.TempDir(), true), events)
	s.registerRoutes()
	t.Cleanup(s.Close)

	w := puzzletest.NewWallet(puzzletest.Key(1), d, sim)
	return &testServer{t: t, s: s, sim: sim, reg: registrar.New(engine, w), w: w, events: events, ts: genesis}
}

func (ts *testServer) farm() {
	ts.ts += 600
	_, err := ts.sim.FarmBlock(ts.ts)
	require.NoError(ts.t, err)
}

func (ts *testServer) register(name string) *registrar.Submission {
	ts.sim.Mint(ts.w.PuzzleHash(), schema.TotalNewDomainAmount)
	ts.farm()
	sub, err := ts.reg.Register(context.Background(), ts.w.Key, name, metadata.New(ts.w.PuzzleHash()), registrar.RegisterOptions{})
	require.NoError(ts.t, err)
	ts.farm()
	return sub
}

func (ts *testServer) get(path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	ts.s.api.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) resolver.ResolutionResult {
	res := resolver.ResolutionResult{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestApi_Hello(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get("/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Success!", rec.Body.String())
	assert.Equal(t, schema.ResolverVersion, rec.Header().Get(ResolverVersionHeader))
	assert.Equal(t, schema.CacheControl, rec.Header().Get("Cache-Control"))
}

func TestApi_Resolve(t *testing.T) {
	ts := newTestServer(t)
	sub := ts.register("alice.xch")

	rec := ts.get("/resolve?domain_name=Alice")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, schema.CacheControl, rec.Header().Get("Cache-Control"))
	assert.Equal(t, schema.ResolverVersion, rec.Header().Get(ResolverVersionHeader))
	res := decodeResult(t, rec)
	assert.Equal(t, "alice.xch", res.DomainName)
	assert.Equal(t, resolver.StatusLatest, res.Status)
	require.NotNil(t, res.Record)
	assert.Equal(t, sub.LauncherID, res.Record.LauncherID)

	// answered from the cache
	ts.sim.ResetCalls()
	rec = ts.get("/resolve?domain_name=alice.xch")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, ts.sim.Calls("CoinsByPuzzleHash"))
	assert.Equal(t, resolver.StatusLatest, decodeResult(t, rec).Status)

	// a launcher id goes to the ledger
	rec = ts.get("/resolve?domain_name=alice.xch&launcher_id=" + sub.LauncherID.Hex())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, ts.sim.Calls("CoinsByPuzzleHash"))

	rec = ts.get("/resolve?domain_name=nobody")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, resolver.StatusNotFound, decodeResult(t, rec).Status)
}

func TestApi_ResolveBadRequest(t *testing.T) {
	ts := newTestServer(t)
	for _, path := range []string{
		"/resolve",
		"/resolve?domain_name=a%20b",
		"/resolve?domain_name=sub.alice.xch",
		"/resolve?domain_name=alice&launcher_id=0xzz",
		"/resolve?domain_name=alice&grace_period=maybe",
	} {
		rec := ts.get(path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		assert.Contains(t, rec.Body.String(), "error", path)
	}
}

func TestApi_NotSynced(t *testing.T) {
	ts := newTestServer(t)
	ts.sim.SetSynced(false)
	rec := ts.get("/resolve?domain_name=alice")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), schema.ErrNotSynced.Error())

	rec = ts.get("/info")
	require.Equal(t, http.StatusOK, rec.Code)
	info := schema.RespInfo{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.False(t, info.Synced)
}

func TestApi_InfoAndHistory(t *testing.T) {
	ts := newTestServer(t)
	sub := ts.register("bob.xch")

	rec := ts.get("/info")
	require.Equal(t, http.StatusOK, rec.Code)
	info := schema.RespInfo{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.True(t, info.Synced)
	assert.Equal(t, "mainnet", info.Network)
	assert.Equal(t, uint32(2), info.LatestHeight)
	assert.Equal(t, ts.ts, info.LatestTimestamp)

	require.Equal(t, http.StatusOK, ts.get("/resolve?domain_name=bob").Code)

	rec = ts.get("/domains/bob/history")
	require.Equal(t, http.StatusOK, rec.Code)
	hist := schema.RespHistory{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hist))
	assert.Equal(t, "bob.xch", hist.DomainName)
	require.Len(t, hist.Index, 1)
	assert.Equal(t, sub.LauncherID.Hex(), hist.Index[0].LauncherId)
	assert.Len(t, hist.History, 1)

	tip, err := ts.s.store.LoadResult("bob.xch")
	require.NoError(t, err)
	require.NotNil(t, tip.Record)
	assert.True(t, ts.s.store.IsExistTipSpend(tip.Record.Tip.Name()))
}

func TestApi_Watch(t *testing.T) {
	ts := newTestServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/watch", strings.NewReader(`{"domainName":"Carol"}`))
	req.Header.Set("Content-Type", "application/json")
	ts.s.api.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	watched, err := ts.s.wdb.GetWatched(10)
	require.NoError(t, err)
	require.Len(t, watched, 1)
	assert.Equal(t, "carol.xch", watched[0].DomainName)

	rec = httptest.NewRecorder()
	ts.s.api.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/watch/carol", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	watched, err = ts.s.wdb.GetWatched(10)
	require.NoError(t, err)
	assert.Empty(t, watched)
}
