package main

import (
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"testing"
)

func TestBuildMetadata(t *testing.T) {
	primary := types.Sha256([]byte("primary"))
	did := types.Sha256([]byte("did"))
	other := filepath.Join(t.TempDir(), "other.yaml")
	require.NoError(t, os.WriteFile(other, []byte("website: https://alice.example\n"), 0o600))

	md, err := buildMetadata(primary.Hex(), "did: "+did.Hex(), "", other)
	require.NoError(t, err)
	assert.Equal(t, schema.MetadataFormatVersion, md.Version)
	assert.Equal(t, primary, md.PrimaryAddress)
	assert.Equal(t, did, md.ChainRecords["did"])
	assert.Empty(t, md.DNSRecords)
	assert.Equal(t, "https://alice.example", md.Other["website"])

	// the yaml output loads back to the same metadata
	out, err := md.YAML()
	require.NoError(t, err)
	back, err := metadata.LoadYAML(out)
	require.NoError(t, err)
	assert.True(t, md.Equal(back))
}

func TestBuildMetadata_Invalid(t *testing.T) {
	primary := types.Sha256([]byte("primary")).Hex()
	_, err := buildMetadata("not an address", "", "", "")
	assert.Error(t, err)
	_, err = buildMetadata(primary, "eth: 0x01", "", "")
	assert.ErrorIs(t, err, metadata.ErrUnknownKey)
	_, err = buildMetadata(primary, "", "[1, 2]", "")
	assert.Error(t, err)
}
