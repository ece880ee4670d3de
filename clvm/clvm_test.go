package clvm

import (
	"github.com/everFinance/dotxch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
	"testing"
)

func genProgram(depth int) *rapid.Generator[*Program] {
	return rapid.Custom(func(t *rapid.T) *Program {
		if depth <= 0 || rapid.Bool().Draw(t, "atom") {
			size := rapid.SampledFrom([]int{0, 1, 2, 32, 48, 70, 300}).Draw(t, "size")
			return Atom(rapid.SliceOfN(rapid.Byte(), size, size).Draw(t, "bytes"))
		}
		return Cons(genProgram(depth-1).Draw(t, "first"), genProgram(depth-1).Draw(t, "rest"))
	})
}

func TestSerialize_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genProgram(4).Draw(t, "program")
		out, err := Deserialize(p.Serialize())
		require.NoError(t, err)
		assert.True(t, p.Equal(out))
		assert.Equal(t, p.TreeHash(), out.TreeHash())
	})
}

func TestSerialize_Vectors(t *testing.T) {
	assert.Equal(t, []byte{0x80}, Nil().Serialize())
	assert.Equal(t, []byte{0x01}, True().Serialize())
	assert.Equal(t, []byte{0x81, 0x80}, Atom([]byte{0x80}).Serialize())
	assert.Equal(t, []byte{0xff, 0x01, 0x80}, List(True()).Serialize())

	long := make([]byte, 64)
	assert.Equal(t, []byte{0xc0, 0x40}, Atom(long).Serialize()[:2])

	p, err := FromHex("ff0180")
	require.NoError(t, err)
	items, ok := p.Items()
	require.True(t, ok)
	assert.Len(t, items, 1)

	_, err = FromHex("ff01")
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
	_, err = FromHex("8080")
	assert.ErrorIs(t, err, ErrTrailingBytes)
}

func TestTreeHash_Nil(t *testing.T) {
	assert.Equal(t,
		types.MustHexToBytes32("4bf5122f344554c53bde2ebb8cd2b7e3d1600ad631c385a5d7cce23c7785459a"),
		Nil().TreeHash())
}

func TestCurry_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		mod := genProgram(3).Draw(t, "mod")
		args := rapid.SliceOfN(genProgram(2), 0, 5).Draw(t, "args")

		curried := Curry(mod, args...)
		gotMod, gotArgs, ok := Uncurry(curried)
		require.True(t, ok)
		assert.True(t, mod.Equal(gotMod))
		require.Len(t, gotArgs, len(args))
		hashes := make([]types.Bytes32, 0, len(args))
		for i := range args {
			assert.True(t, args[i].Equal(gotArgs[i]))
			hashes = append(hashes, args[i].TreeHash())
		}
		assert.Equal(t, curried.TreeHash(), CurryTreeHash(mod.TreeHash(), hashes...))
	})
}

func TestUncurry_NotCurried(t *testing.T) {
	_, _, ok := Uncurry(String("plain"))
	assert.False(t, ok)
	_, _, ok = Uncurry(List(Uint(2), Uint(3), Uint(4)))
	assert.False(t, ok)
}

func TestUint64(t *testing.T) {
	for _, v := range []uint64{0, 1, 127, 128, 255, 256, 10000000001, ^uint64(0)} {
		got, err := Uint(v).Uint64()
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := Atom([]byte{0xff}).Uint64()
	assert.ErrorIs(t, err, ErrIntRange)
}

func TestConditions(t *testing.T) {
	parent := types.Sha256([]byte("parent"))
	ph := types.Sha256([]byte("ph"))
	launcher := types.Sha256([]byte("launcher"))
	out := List(
		NewCondition(CreateCoin, Hash(ph), Uint(1), List(Hash(launcher))),
		NewCondition(CreateCoin, Hash(ph), Uint(7)),
		NewCondition(CreatePuzzleAnnouncement, String("hello")),
		NewCondition(AssertCoinAnnouncement, Hash(launcher)),
	)
	conds, err := ParseConditions(out)
	require.NoError(t, err)
	require.Len(t, conds, 4)

	coins, err := CreatedCoins(parent, conds)
	require.NoError(t, err)
	require.Len(t, coins, 2)
	assert.Equal(t, types.Coin{ParentCoinInfo: parent, PuzzleHash: ph, Amount: 1}, coins[0].Coin)
	assert.Equal(t, [][]byte{launcher.Bytes()}, coins[0].Memos)
	assert.Empty(t, coins[1].Memos)

	coin := types.Coin{ParentCoinInfo: parent, PuzzleHash: ph, Amount: 1}
	anns := AnnouncementsCreated(coin, conds)
	require.Len(t, anns, 1)
	assert.Equal(t, types.Sha256(ph.Bytes(), []byte("hello")), anns[0].Name())
	assert.Equal(t, []types.Bytes32{launcher}, AnnouncementsAsserted(conds))
}
