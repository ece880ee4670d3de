package resolver

import (
	"encoding/json"
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
	"testing"
)

func TestExpirationTimestamp(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		creation := rapid.Uint64Range(0, 1<<40).Draw(t, "creation")
		k := rapid.IntRange(1, 50).Draw(t, "events")
		assert.Equal(t, creation+uint64(k)*schema.RegistrationLength, ExpirationTimestamp(creation, k))
	})
	assert.Equal(t, uint64(100)+schema.RegistrationLength, ExpirationTimestamp(100, 0))
}

func TestRecord_Boundaries(t *testing.T) {
	exp := ExpirationTimestamp(1_000_000, 2)
	r := &DomainRecord{ExpirationTimestamp: exp}

	assert.False(t, r.InGracePeriod(exp))
	assert.False(t, r.IsExpired(exp))
	assert.Equal(t, StatusFound, r.Status(exp))

	assert.True(t, r.InGracePeriod(exp+1))
	assert.True(t, r.IsExpired(exp+1))
	assert.Equal(t, StatusGracePeriod, r.Status(exp+1))

	assert.True(t, r.InGracePeriod(exp+schema.GracePeriod-1))
	assert.False(t, r.InGracePeriod(exp+schema.GracePeriod))
	assert.Equal(t, StatusExpired, r.Status(exp+schema.GracePeriod))
	assert.False(t, r.InGracePeriod(exp+schema.GracePeriod+1))
	assert.Equal(t, StatusExpired, r.Status(exp+schema.GracePeriod+1))
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 0, int(StatusNotFound))
	assert.Equal(t, 6, int(StatusLatest))
	assert.Equal(t, "GRACE_PERIOD", StatusGracePeriod.String())
	assert.True(t, StatusConflicting.Terminal())
	assert.False(t, StatusFound.Terminal())
	assert.False(t, StatusCode(7).Valid())
}

func TestResolutionResult_JSON(t *testing.T) {
	md := metadata.New(types.Sha256([]byte("primary")))
	md.DNSRecords["a"] = "10.0.0.1"
	res := ResolutionResult{
		DomainName: "alice.xch",
		Status:     StatusLatest,
		Record: &DomainRecord{
			CreationHeight:           100,
			CreationTimestamp:        1_700_000_000,
			RegistrationUpdateHeight: 101,
			StateUpdateHeight:        102,
			ExpirationTimestamp:      ExpirationTimestamp(1_700_000_000, 2),
			LauncherID:               types.Sha256([]byte("launcher")),
			DomainName:               "alice.xch",
			Metadata:                 md,
			Spend:                    types.CoinSpend{PuzzleReveal: []byte{0x80}, Solution: []byte{0x80}},
		},
	}
	by, err := json.Marshal(res)
	require.NoError(t, err)

	raw := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(by, &raw))
	assert.Equal(t, float64(6), raw["status_code"])
	rec := raw["domain_record"].(map[string]interface{})
	assert.Equal(t, float64(100), rec["creation_height"])
	assert.Contains(t, rec["metadata"], "dns_records")

	var out ResolutionResult
	require.NoError(t, json.Unmarshal(by, &out))
	assert.Equal(t, res.Status, out.Status)
	require.NotNil(t, out.Record)
	assert.Equal(t, res.Record.ExpirationTimestamp, out.Record.ExpirationTimestamp)
	assert.Equal(t, res.Record.LauncherID, out.Record.LauncherID)
	assert.True(t, md.Equal(out.Record.Metadata))

	assert.Error(t, json.Unmarshal([]byte(`{"domain_name":"x","status_code":9}`), &out))
}
