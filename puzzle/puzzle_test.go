package puzzle_test

import (
	"github.com/everFinance/dotxch/bls"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/puzzle/puzzletest"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
	"testing"
)

func aliceInner(pk types.G1Element) puzzle.Inner {
	md := metadata.New(puzzletest.PayPuzzleHash(pk))
	md.DNSRecords["a"] = "10.0.0.1"
	return puzzle.Inner{Name: "alice.xch", PubKey: pk, Metadata: md}
}

func baseCoin(amount uint64) types.Coin {
	return types.Coin{ParentCoinInfo: types.Sha256([]byte("genesis")), PuzzleHash: types.Sha256([]byte("wallet")), Amount: amount}
}

func create(t *testing.T, d *puzzle.Driver, sk *bls.PrivateKey) (*puzzle.Transition, *puzzle.Decoded) {
	tr, err := d.CreateFromInner(sk, aliceInner(sk.PublicKey()), baseCoin(schema.TotalNewDomainAmount))
	require.NoError(t, err)
	require.Len(t, tr.Bundle.CoinSpends, 3)
	dec, err := d.DecodeOuter(tr.Bundle.CoinSpends[1])
	require.NoError(t, err)
	return tr, dec
}

func TestIdentityPuzzleHash(t *testing.T) {
	tpl := puzzletest.Templates()
	name := rapid.StringMatching(`[a-z0-9]{1,20}\.xch`)
	rapid.Check(t, func(t *rapid.T) {
		a := name.Draw(t, "a")
		b := name.Draw(t, "b")
		ph := tpl.IdentityPuzzleHash(a)
		assert.Equal(t, clvm.Curry(tpl.Identity, clvm.String(a)).TreeHash(), ph)
		assert.Equal(t, ph, tpl.IdentityPuzzleHash(a))
		if a != b {
			assert.NotEqual(t, ph, tpl.IdentityPuzzleHash(b))
		}
	})
}

func TestIdentitySpend(t *testing.T) {
	d := puzzletest.Driver()
	coin := types.Coin{ParentCoinInfo: types.Sha256([]byte("p")), PuzzleHash: d.T.IdentityPuzzleHash("bob.xch"), Amount: 1}
	cs, err := d.IdentitySpend("bob.xch", coin)
	require.NoError(t, err)
	name, err := d.DecodeIdentity(cs)
	require.NoError(t, err)
	assert.Equal(t, "bob.xch", name)

	conds, err := clvm.RunSpend(d.Runner, cs, 0)
	require.NoError(t, err)
	require.Len(t, conds, 1)
	assert.Equal(t, clvm.AssertSecondsRelative, conds[0].Opcode)

	coin.Amount = 3
	_, err = d.IdentitySpend("bob.xch", coin)
	assert.ErrorIs(t, err, puzzle.ErrWrongAmount)

	coin.Amount = 1
	_, err = d.IdentitySpend("carol.xch", coin)
	assert.ErrorIs(t, err, puzzle.ErrPuzzleHashMismatch)

	sb, err := d.IdentityBundle("bob.xch", []types.Coin{coin})
	require.NoError(t, err)
	assert.True(t, sb.AggregatedSignature.IsIdentity())
}

func TestFeeSpend(t *testing.T) {
	d := puzzletest.Driver()
	f := puzzle.Fee{
		Name:              "jack.xch",
		OuterPuzzleHash:   types.Sha256([]byte("6")),
		LauncherID:        types.Sha256([]byte("7")),
		SingletonParentID: types.Sha256([]byte("8")),
	}
	coin := types.Coin{ParentCoinInfo: types.Sha256([]byte("9")), PuzzleHash: d.T.FeeHash, Amount: schema.TotalFeeAmount}
	cs, err := d.FeeSpend(f, coin)
	require.NoError(t, err)

	out, err := d.DecodeFee(cs)
	require.NoError(t, err)
	assert.Equal(t, f, out)

	coins, _, err := clvm.Additions(d.Runner, cs, 0)
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, d.T.IdentityPuzzleHash("jack.xch"), coins[0].Coin.PuzzleHash)
	assert.Equal(t, d.T.FeeAddress, coins[1].Coin.PuzzleHash)
	assert.Equal(t, schema.TotalFeeAmount, coins[0].Coin.Amount+coins[1].Coin.Amount)

	id, ok := d.LauncherIDFromSpend(&cs, d.T.IdentityPuzzleHash("jack.xch"))
	assert.True(t, ok)
	assert.Equal(t, f.LauncherID, id)
	_, ok = d.LauncherIDFromSpend(&cs, d.T.IdentityPuzzleHash("jill.xch"))
	assert.False(t, ok)
	_, ok = d.LauncherIDFromSpend(nil, d.T.IdentityPuzzleHash("jack.xch"))
	assert.False(t, ok)
}

func TestInnerUpdate_Mode(t *testing.T) {
	pk := puzzletest.Key(9).PublicKey()
	md := metadata.New(types.Sha256([]byte("x")))

	_, err := puzzle.InnerUpdate{}.Mode()
	assert.ErrorIs(t, err, puzzle.ErrNoArgumentsProvided)

	cases := []struct {
		u    puzzle.InnerUpdate
		mode puzzle.Mode
	}{
		{puzzle.InnerUpdate{Renew: true}, puzzle.ModeRenew},
		{puzzle.InnerUpdate{NewMetadata: &md}, puzzle.ModeUpdateMetadata},
		{puzzle.InnerUpdate{Renew: true, NewMetadata: &md}, puzzle.ModeRenew},
		{puzzle.InnerUpdate{NewPubKey: &pk}, puzzle.ModeTransfer},
		{puzzle.InnerUpdate{Renew: true, NewPubKey: &pk, NewMetadata: &md}, puzzle.ModeTransfer},
	}
	for _, c := range cases {
		m, err := c.u.Mode()
		require.NoError(t, err)
		assert.Equal(t, c.mode, m)
	}
}

func TestInner_NotStandalone(t *testing.T) {
	in := aliceInner(puzzletest.Key(1).PublicKey())
	_, err := in.ToSpendBundle(types.Coin{})
	assert.ErrorIs(t, err, puzzle.ErrNotSpendableStandalone)
}

func TestInnerPuzzleHash(t *testing.T) {
	tpl := puzzletest.Templates()
	in := aliceInner(puzzletest.Key(1).PublicKey())
	assert.Equal(t, tpl.InnerPuzzle(in).TreeHash(), tpl.InnerPuzzleHash(in))

	other := in
	other.Name = "alicia.xch"
	assert.NotEqual(t, tpl.InnerPuzzleHash(in), tpl.InnerPuzzleHash(other))
}

func TestCreateFromInner(t *testing.T) {
	d := puzzletest.Driver()
	sk := puzzletest.Key(1)
	in := aliceInner(sk.PublicKey())
	base := baseCoin(schema.TotalNewDomainAmount)

	tr, dec := create(t, d, sk)
	require.NoError(t, bls.VerifyBundle(d.Runner, tr.Bundle, d.Net))

	launcherID := tr.Bundle.CoinSpends[0].Coin.Name()
	assert.Equal(t, base.Name(), tr.Bundle.CoinSpends[0].Coin.ParentCoinInfo)
	assert.Equal(t, []types.Payment{
		{PuzzleHash: d.T.LauncherHash, Amount: schema.SingletonAmount},
		{PuzzleHash: d.T.FeeHash, Amount: schema.TotalFeeAmount},
	}, tr.Primaries)
	require.Len(t, tr.CoinAssertions, 1)
	assert.Equal(t, launcherID, tr.CoinAssertions[0].Origin)
	require.Len(t, tr.PuzzleAssertions, 1)
	assert.Equal(t, d.T.FeeHash, tr.PuzzleAssertions[0].Origin)

	assert.Equal(t, puzzle.ModeRenew, dec.Mode)
	assert.Equal(t, launcherID, dec.Outer.LauncherID)
	assert.Equal(t, in.Name, dec.Outer.Inner.Name)
	assert.Equal(t, in.PubKey, dec.Outer.Inner.PubKey)
	assert.True(t, in.Metadata.Equal(dec.Outer.Inner.Metadata))
	assert.Equal(t, launcherID, dec.Spend.Coin.ParentCoinInfo)
	assert.Equal(t, dec.Spend.Coin.Name(), dec.Tip.ParentCoinInfo)
	assert.Equal(t, dec.Outer.PuzzleHash(d.T), dec.Tip.PuzzleHash)

	// the fee spend announces what the singleton asserts and leaves a marker for discovery
	id, ok := d.LauncherIDFromSpend(&tr.Bundle.CoinSpends[2], d.T.IdentityPuzzleHash(in.Name))
	assert.True(t, ok)
	assert.Equal(t, launcherID, id)

	_, err := d.CreateFromInner(puzzletest.Key(2), in, base)
	assert.ErrorIs(t, err, puzzle.ErrKeyMismatch)
	_, err = d.CreateFromInner(sk, in, baseCoin(schema.TotalNewDomainAmount-1))
	assert.ErrorIs(t, err, puzzle.ErrInsufficientBaseCoin)
}

func TestTransitions(t *testing.T) {
	d := puzzletest.Driver()
	sk := puzzletest.Key(1)
	_, dec := create(t, d, sk)

	md := metadata.New(types.Sha256([]byte("new primary")))
	md.Other["twitter"] = "@alice"
	tr, err := d.UpdateMetadata(sk, dec.Outer, dec.Tip, md)
	require.NoError(t, err)
	assert.Empty(t, tr.Primaries)
	require.NoError(t, bls.VerifyBundle(d.Runner, tr.Bundle, d.Net))
	dec, err = d.DecodeOuter(tr.Bundle.CoinSpends[0])
	require.NoError(t, err)
	assert.Equal(t, puzzle.ModeUpdateMetadata, dec.Mode)
	assert.True(t, md.Equal(dec.Outer.Inner.Metadata))
	assert.Equal(t, sk.PublicKey(), dec.Outer.Inner.PubKey)

	bob := puzzletest.Key(2)
	tr, err = d.UpdatePubkey(sk, dec.Outer, dec.Tip, bob.PublicKey(), nil)
	require.NoError(t, err)
	dec, err = d.DecodeOuter(tr.Bundle.CoinSpends[0])
	require.NoError(t, err)
	assert.Equal(t, puzzle.ModeTransfer, dec.Mode)
	assert.Equal(t, sk.PublicKey(), dec.Previous.PubKey)
	assert.Equal(t, bob.PublicKey(), dec.Outer.Inner.PubKey)
	assert.True(t, md.Equal(dec.Outer.Inner.Metadata))

	_, err = d.Renew(sk, dec.Outer, dec.Tip, types.Sha256([]byte("fee parent")), nil)
	assert.ErrorIs(t, err, puzzle.ErrKeyMismatch)

	tr, err = d.Renew(bob, dec.Outer, dec.Tip, types.Sha256([]byte("fee parent")), nil)
	require.NoError(t, err)
	require.Len(t, tr.Bundle.CoinSpends, 2)
	assert.Equal(t, []types.Payment{{PuzzleHash: d.T.FeeHash, Amount: schema.TotalFeeAmount}}, tr.Primaries)
	require.NoError(t, bls.VerifyBundle(d.Runner, tr.Bundle, d.Net))
	dec, err = d.DecodeOuter(tr.Bundle.CoinSpends[0])
	require.NoError(t, err)
	assert.Equal(t, puzzle.ModeRenew, dec.Mode)
	fee, err := d.DecodeFee(tr.Bundle.CoinSpends[1])
	require.NoError(t, err)
	assert.Equal(t, dec.Outer.LauncherID, fee.LauncherID)
}

func TestNoLineage(t *testing.T) {
	d := puzzletest.Driver()
	sk := puzzletest.Key(1)
	o := puzzle.Outer{LauncherID: types.Sha256([]byte("l")), Inner: aliceInner(sk.PublicKey())}
	_, err := d.UpdateMetadata(sk, o, types.Coin{}, metadata.New(types.Bytes32{}))
	assert.ErrorIs(t, err, puzzle.ErrNoLineage)
}

func TestDecode_WrongDriver(t *testing.T) {
	d := puzzletest.Driver()
	tr, _ := create(t, d, puzzletest.Key(1))

	_, err := d.DecodeOuter(tr.Bundle.CoinSpends[2])
	assert.ErrorIs(t, err, puzzle.ErrWrongPuzzleDriver)
	_, err = d.DecodeFee(tr.Bundle.CoinSpends[1])
	assert.ErrorIs(t, err, puzzle.ErrWrongPuzzleDriver)
	_, err = d.DecodeIdentity(tr.Bundle.CoinSpends[0])
	assert.ErrorIs(t, err, puzzle.ErrWrongPuzzleDriver)
}

func TestNode_Errors(t *testing.T) {
	tpl := puzzletest.Templates()
	r := puzzletest.NewEmulator()

	_, err := puzzle.NewNode(puzzle.InnerShape, tpl.Inner).Complete()
	assert.ErrorIs(t, err, puzzle.ErrIncompletePuzzle)

	n := puzzle.NewNode(puzzle.FeeShape, tpl.Fee)
	_, err = n.Solve()
	assert.ErrorIs(t, err, puzzle.ErrIncompleteSolution)

	n = n.WithSolution(puzzle.StringValue("a.xch"), puzzle.HashValue(types.Bytes32{}), puzzle.HashValue(types.Bytes32{}), puzzle.HashValue(types.Bytes32{}))
	_, err = n.ToSpend(types.Coin{PuzzleHash: types.Sha256([]byte("other"))}, r, 0)
	assert.ErrorIs(t, err, puzzle.ErrPuzzleHashMismatch)

	// a malformed solution fails evaluation
	bad := puzzle.NewNode(puzzle.Shape{Kind: puzzle.KindFee, SolutionArity: 1}, tpl.Fee).WithSolution(puzzle.StringValue("x"))
	_, err = bad.ToSpend(types.Coin{PuzzleHash: tpl.FeeHash}, r, 0)
	assert.ErrorIs(t, err, puzzle.ErrInvalidSpend)
}

func TestLineageProof_Value(t *testing.T) {
	ph := types.Sha256([]byte("inner"))
	for _, lp := range []puzzle.LineageProof{
		{ParentName: types.Sha256([]byte("p")), Amount: 1},
		{ParentName: types.Sha256([]byte("p")), InnerPuzzleHash: &ph, Amount: 1},
	} {
		out, err := puzzle.LineageProofFromValue(lp.Value())
		require.NoError(t, err)
		assert.Equal(t, lp, out)
	}
	_, err := puzzle.LineageProofFromValue(puzzle.BoolValue(true))
	assert.ErrorIs(t, err, puzzle.ErrWrongPuzzleDriver)
}
