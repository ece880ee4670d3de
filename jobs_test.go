package dotxch

import (
	"context"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestRefresh_PublishesChanges(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, ts.s.wdb.AddWatched("dave.xch"))

	// nothing registered yet: NOT_FOUND is a change from the unseen state
	require.NoError(t, ts.s.refresh(ctx))
	events := ts.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, int(resolver.StatusNotFound), events[0].StatusCode)
	assert.Equal(t, -1, events[0].PrevStatus)

	sub := ts.register("dave.xch")
	require.NoError(t, ts.s.refresh(ctx))
	events = ts.events.all()
	require.Len(t, events, 2)
	assert.Equal(t, int(resolver.StatusLatest), events[1].StatusCode)
	assert.Equal(t, sub.LauncherID.Hex(), events[1].LauncherId)
	assert.NotEmpty(t, events[1].Id)

	// unchanged
	require.NoError(t, ts.s.refresh(ctx))
	assert.Len(t, ts.events.all(), 2)

	md := metadata.New(ts.w.PuzzleHash())
	md.Other["note"] = "moved"
	_, err := ts.reg.UpdateMetadata(ctx, ts.w.Key, "dave.xch", nil, md, 0)
	require.NoError(t, err)
	ts.farm()

	require.NoError(t, ts.s.refresh(ctx))
	events = ts.events.all()
	require.Len(t, events, 3)
	assert.Equal(t, events[1].TipCoinId, events[2].PrevCoinId)
	assert.NotEqual(t, events[1].TipCoinId, events[2].TipCoinId)

	watched, err := ts.s.wdb.GetWatched(10)
	require.NoError(t, err)
	require.Len(t, watched, 1)
	assert.Equal(t, events[2].TipCoinId, watched[0].LastCoinId)

	hist, err := ts.s.wdb.GetHistoryByName("dave.xch", 10)
	require.NoError(t, err)
	assert.Len(t, hist, 2)
}

func TestSweepCache(t *testing.T) {
	ts := newTestServer(t)
	require.Equal(t, 200, ts.get("/resolve?domain_name=erin").Code)
	assert.Equal(t, 1, ts.s.cache.Len())
	ts.s.sweepCache()
	assert.Equal(t, 1, ts.s.cache.Len())
}
