package metadata

import (
	"encoding/json"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"pgregory.net/rapid"
	"testing"
)

func sample() DomainMetadata {
	m := New(types.Sha256([]byte("primary")))
	m.ChainRecords["xch"] = types.Sha256([]byte("xch"))
	m.ChainRecords["did.main"] = types.Sha256([]byte("did"))
	m.DNSRecords["a"] = "1.2.3.4"
	m.Other["twitter"] = "@alice"
	return m
}

func TestProgram_RoundTrip(t *testing.T) {
	m := sample()
	out, err := FromProgram(m.Program())
	require.NoError(t, err)
	assert.True(t, m.Equal(out))
	assert.Equal(t, m.Hash(), out.Hash())
}

func TestProgram_RoundTripRapid(t *testing.T) {
	label := rapid.StringMatching(`[a-z]{1,8}`)
	rapid.Check(t, func(t *rapid.T) {
		m := New(types.Sha256(rapid.SliceOf(rapid.Byte()).Draw(t, "primary")))
		for _, k := range rapid.SliceOfN(label, 0, 4).Draw(t, "dns") {
			m.DNSRecords[k] = rapid.String().Draw(t, "dnsValue")
		}
		fam := rapid.SampledFrom([]string{"xch", "did", "nft"}).Draw(t, "family")
		m.ChainRecords[fam+"."+label.Draw(t, "chainLabel")] = types.Sha256([]byte(fam))

		out, err := FromProgram(m.Program())
		require.NoError(t, err)
		assert.True(t, m.Equal(out))
	})
}

func TestFromProgram_Rejects(t *testing.T) {
	m := sample()
	m.Version = "v0.9.0"
	_, err := FromProgram(m.Program())
	assert.ErrorIs(t, err, ErrUnsupportedVersion)

	m = sample()
	m.ChainRecords["eth"] = types.Sha256([]byte("eth"))
	_, err = FromProgram(m.Program())
	assert.ErrorIs(t, err, ErrUnknownKey)

	bad := clvm.List(
		clvm.Cons(clvm.String(KeyVersion), clvm.String(schema.MetadataFormatVersion)),
		clvm.Cons(clvm.String(KeyPrimaryAddress), clvm.Hash(types.Sha256())),
		clvm.Cons(clvm.String("website"), clvm.String("x")),
	)
	_, err = FromProgram(bad)
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = FromProgram(clvm.String("flat"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestAddress(t *testing.T) {
	ph := types.Sha256([]byte("address"))
	addr, err := EncodeAddress(HrpMainnet, ph)
	require.NoError(t, err)
	assert.Equal(t, "xch1", addr[:4])

	hrp, out, err := DecodeAddress(addr)
	require.NoError(t, err)
	assert.Equal(t, HrpMainnet, hrp)
	assert.Equal(t, ph, out)

	b, err := ParseIdentifier(ph.Hex())
	require.NoError(t, err)
	assert.Equal(t, ph, b)

	_, err = ParseIdentifier("xch1notanaddress")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestDict_JSON(t *testing.T) {
	m := sample()
	by, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Contains(t, string(by), `"metadata_version":"v1.0.0"`)
	assert.Contains(t, string(by), `"primary_address":"xch1`)

	var out DomainMetadata
	require.NoError(t, json.Unmarshal(by, &out))
	assert.True(t, m.Equal(out))

	_, err = FromDict(Dict{MetadataVersion: schema.MetadataFormatVersion, PrimaryAddress: "0x00",
		ChainRecords: map[string]string{}})
	assert.Error(t, err)
}

func TestLoadYAML(t *testing.T) {
	primary, err := EncodeAddress(HrpMainnet, types.Sha256([]byte("p")))
	require.NoError(t, err)
	doc := "metadata_version: v1.0.0\nprimary_address: " + primary + "\ndns_records:\n  a: 1.1.1.1\n"

	m, err := LoadYAML(doc)
	require.NoError(t, err)
	assert.Equal(t, "1.1.1.1", m.DNSRecords["a"])

	path := filepath.Join(t.TempDir(), "md.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))
	m2, err := LoadYAML(path)
	require.NoError(t, err)
	assert.True(t, m.Equal(m2))

	out, err := m.YAML()
	require.NoError(t, err)
	m3, err := LoadYAML(out)
	require.NoError(t, err)
	assert.True(t, m.Equal(m3))

	_, err = LoadYAML("metadata_version: v2\nprimary_address: " + primary + "\n")
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}
