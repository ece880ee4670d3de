package ledger

import (
	"context"
	"encoding/json"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const (
	peakHash = "0x1111111111111111111111111111111111111111111111111111111111111111"
	prevHash = "0x2222222222222222222222222222222222222222222222222222222222222222"
	coinPh   = "0x3333333333333333333333333333333333333333333333333333333333333333"
)

func fakeNode(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	reply := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
	mux.HandleFunc("/get_blockchain_state", func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"success":true,"blockchain_state":{"sync":{"synced":true},
			"peak":{"header_hash":"`+peakHash+`","prev_hash":"`+prevHash+`","height":11,"timestamp":null}}}`)
	})
	mux.HandleFunc("/get_block_record", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, prevHash, req["header_hash"])
		reply(w, `{"success":true,"block_record":{"header_hash":"`+prevHash+`","prev_hash":"`+peakHash+`","height":10,"timestamp":1700000000}}`)
	})
	mux.HandleFunc("/get_coin_records_by_puzzle_hash", func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"success":true,"coin_records":[{"coin":{"parent_coin_info":"`+prevHash+`","puzzle_hash":"`+coinPh+`","amount":1},
			"confirmed_block_index":10,"spent_block_index":0,"spent":false,"coinbase":false,"timestamp":1700000000}]}`)
	})
	mux.HandleFunc("/get_puzzle_and_solution", func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"success":false,"error":"Failed to get puzzle and solution for coin"}`)
	})
	mux.HandleFunc("/push_tx", func(w http.ResponseWriter, r *http.Request) {
		reply(w, `{"success":false,"error":"Failed to include transaction, error DOUBLE_SPEND"}`)
	})
	return httptest.NewServer(mux)
}

func TestNodeClient(t *testing.T) {
	srv := fakeNode(t)
	defer srv.Close()
	ctx := context.Background()
	n, err := NewNodeClient(schema.Node{Url: srv.URL}, time.Second)
	require.NoError(t, err)

	synced, err := n.IsSynced(ctx)
	require.NoError(t, err)
	assert.True(t, synced)

	b, err := n.LatestConfirmedBlock(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint32(10), b.Height)
	require.NotNil(t, b.Timestamp)
	assert.Equal(t, uint64(1700000000), *b.Timestamp)

	recs, err := n.CoinsByPuzzleHash(ctx, types.MustHexToBytes32(coinPh), true)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, uint64(1), recs[0].Coin.Amount)
	assert.Equal(t, types.MustHexToBytes32(coinPh), recs[0].Coin.PuzzleHash)

	cs, err := n.PuzzleAndSolution(ctx, types.MustHexToBytes32(coinPh), 10)
	require.NoError(t, err)
	assert.Nil(t, cs)

	err = n.PushTx(ctx, types.SpendBundle{AggregatedSignature: types.IdentitySignature()})
	assert.ErrorIs(t, err, schema.ErrDoubleSpend)

	_, err = n.CoinsByParentIDs(ctx, nil, true)
	assert.ErrorIs(t, err, ErrRpc)
}

func TestNodeClient_PuzzleAndSolutionErrors(t *testing.T) {
	ctx := context.Background()
	coinID := types.MustHexToBytes32(coinPh)
	cases := []struct {
		name    string
		status  int
		body    string
		noSpend bool
	}{
		{"unspent at height", http.StatusOK, `{"success":false,"error":"Invalid height 10. coin record None"}`, true},
		{"unknown coin", http.StatusOK, `{"success":false,"error":"Coin record 0x33 not found"}`, true},
		{"node failure", http.StatusOK, `{"success":false,"error":"Can't find transactions generator for block"}`, false},
		{"proxy 404", http.StatusNotFound, `404 page not found`, false},
		{"bad gateway", http.StatusBadGateway, `failed to get upstream`, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(c.status)
				_, _ = io.WriteString(w, c.body)
			}))
			defer srv.Close()
			n, err := NewNodeClient(schema.Node{Url: srv.URL}, time.Second)
			require.NoError(t, err)

			cs, err := n.PuzzleAndSolution(ctx, coinID, 10)
			assert.Nil(t, cs)
			if c.noSpend {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrRpc)
		})
	}
}

func TestNodeClient_PuzzleAndSolutionTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)
	n, err := NewNodeClient(schema.Node{Url: srv.URL}, 50*time.Millisecond)
	require.NoError(t, err)

	cs, err := n.PuzzleAndSolution(context.Background(), types.MustHexToBytes32(coinPh), 10)
	assert.Nil(t, cs)
	assert.Error(t, err)
}
