package registrar_test

import (
	"context"
	"github.com/everFinance/dotxch/ledger"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/puzzle/puzzletest"
	"github.com/everFinance/dotxch/registrar"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

const genesis = uint64(1_700_000_000)

type env struct {
	t   *testing.T
	ctx context.Context
	sim *ledger.Simulator
	e   *resolver.Engine
	w   *puzzletest.Wallet
	r   *registrar.Registrar
	ts  uint64
}

func newEnv(t *testing.T) *env {
	d := puzzletest.Driver()
	sim := ledger.NewSimulator(d.Runner, d.Net, genesis)
	w := puzzletest.NewWallet(puzzletest.Key(1), d, sim)
	e := resolver.NewEngine(sim, d, resolver.WithCallTimeout(time.Second))
	return &env{
		t:   t,
		ctx: context.Background(),
		sim: sim,
		e:   e,
		w:   w,
		r:   registrar.New(e, w),
		ts:  genesis,
	}
}

func (v *env) fund(amount uint64) {
	v.sim.Mint(v.w.PuzzleHash(), amount)
	v.farm()
}

func (v *env) farm() {
	v.ts += 600
	_, err := v.sim.FarmBlock(v.ts)
	require.NoError(v.t, err)
}

func (v *env) md() metadata.DomainMetadata {
	return metadata.New(v.w.PuzzleHash())
}

func TestRegister(t *testing.T) {
	v := newEnv(t)
	v.fund(schema.TotalNewDomainAmount + 50)

	sub, err := v.r.Register(v.ctx, v.w.Key, "alice.xch", v.md(), registrar.RegisterOptions{Fee: 50})
	require.NoError(t, err)
	v.farm()

	res, err := v.e.Resolve(v.ctx, "alice.xch", nil, false)
	require.NoError(t, err)
	assert.Equal(t, resolver.StatusLatest, res.Status)
	require.NotNil(t, res.Record)
	assert.Equal(t, sub.LauncherID, res.Record.LauncherID)
	assert.Equal(t, v.w.Key.PublicKey(), res.Record.PubKey)

	v.fund(schema.TotalNewDomainAmount)
	_, err = v.r.Register(v.ctx, v.w.Key, "alice.xch", v.md(), registrar.RegisterOptions{})
	assert.ErrorIs(t, err, registrar.ErrDomainExists)

	// a second lineage loses the tie-break to the first one
	second, err := v.r.Register(v.ctx, v.w.Key, "alice.xch", v.md(), registrar.RegisterOptions{SkipExistingCheck: true})
	require.NoError(t, err)
	v.farm()
	all, err := v.e.ResolveAll(v.ctx, "alice.xch", false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, sub.LauncherID, all[0].Record.LauncherID)
	assert.Equal(t, resolver.StatusConflicting, all[1].Status)
	assert.Equal(t, second.LauncherID, all[1].Record.LauncherID)
}

func TestRegister_InsufficientFunds(t *testing.T) {
	v := newEnv(t)
	v.fund(schema.TotalNewDomainAmount - 1)
	_, err := v.r.Register(v.ctx, v.w.Key, "bob.xch", v.md(), registrar.RegisterOptions{})
	assert.ErrorIs(t, err, puzzletest.ErrInsufficientFunds)
}

func TestRenewAndUpdate(t *testing.T) {
	v := newEnv(t)
	v.fund(schema.TotalNewDomainAmount)
	sub, err := v.r.Register(v.ctx, v.w.Key, "carol.xch", v.md(), registrar.RegisterOptions{})
	require.NoError(t, err)
	v.farm()

	v.fund(schema.TotalFeeAmount)
	_, err = v.r.Renew(v.ctx, v.w.Key, "carol.xch", nil, nil, 0)
	require.NoError(t, err)
	v.farm()

	res, err := v.e.Resolve(v.ctx, "carol.xch", &sub.LauncherID, false)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, res.Record.CreationTimestamp+2*schema.RegistrationLength, res.Record.ExpirationTimestamp)

	md := v.md()
	md.Other["website"] = "https://carol.example"
	_, err = v.r.UpdateMetadata(v.ctx, v.w.Key, "carol.xch", nil, md, 0)
	require.NoError(t, err)
	v.farm()

	res, err = v.e.Resolve(v.ctx, "carol.xch", nil, false)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.True(t, md.Equal(res.Record.Metadata))

	next := puzzletest.Key(2)
	v.fund(10)
	_, err = v.r.UpdatePubkey(v.ctx, v.w.Key, "carol.xch", nil, next.PublicKey(), nil, 10)
	require.NoError(t, err)
	v.farm()

	res, err = v.e.Resolve(v.ctx, "carol.xch", nil, false)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, next.PublicKey(), res.Record.PubKey)
	assert.True(t, md.Equal(res.Record.Metadata))

	_, err = v.r.UpdateMetadata(v.ctx, v.w.Key, "carol.xch", nil, v.md(), 0)
	assert.ErrorIs(t, err, puzzle.ErrKeyMismatch)
}

func TestUpdate_Conflict(t *testing.T) {
	v := newEnv(t)
	v.fund(schema.TotalNewDomainAmount)
	_, err := v.r.Register(v.ctx, v.w.Key, "dave.xch", v.md(), registrar.RegisterOptions{})
	require.NoError(t, err)
	v.farm()

	_, err = v.r.UpdateMetadata(v.ctx, v.w.Key, "dave.xch", nil, v.md(), 0)
	require.NoError(t, err)
	// the first update is still pending, so the tip is already spent
	_, err = v.r.UpdateMetadata(v.ctx, v.w.Key, "dave.xch", nil, v.md(), 0)
	assert.ErrorIs(t, err, registrar.ErrConflict)
}

func TestUpdate_NotFound(t *testing.T) {
	v := newEnv(t)
	_, err := v.r.UpdateMetadata(v.ctx, v.w.Key, "nobody.xch", nil, v.md(), 0)
	assert.ErrorIs(t, err, registrar.ErrDomainNotFound)
}
