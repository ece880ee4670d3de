package main

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/everFinance/dotxch/bls"
	"github.com/everFinance/dotxch/puzzle/puzzletest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestReadKey(t *testing.T) {
	k := puzzletest.Key(4)
	encoded := hexutil.Encode(k.Bytes())

	got, err := readKey(encoded)
	require.NoError(t, err)
	assert.Equal(t, k.PublicKey(), got.PublicKey())

	path := filepath.Join(t.TempDir(), "sk")
	require.NoError(t, os.WriteFile(path, []byte(encoded+"\n"), 0o600))
	got, err = readKey(path)
	require.NoError(t, err)
	assert.Equal(t, k.PublicKey(), got.PublicKey())

	_, err = readKey("0x0102")
	assert.ErrorIs(t, err, bls.ErrInvalidKey)
	_, err = readKey("zz")
	assert.Error(t, err)
}

func TestOptionalMetadata(t *testing.T) {
	md, err := optionalMetadata("")
	require.NoError(t, err)
	assert.Nil(t, md)

	_, err = optionalMetadata("primary_address: nope")
	assert.Error(t, err)
}
