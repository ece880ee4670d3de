package rawdb

import (
	"github.com/everFinance/dotxch/schema"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestObjectLayout(t *testing.T) {
	l := objectLayout{network: "testnet11"}
	k := l.key(schema.ResultBucket, "alice.xch")
	assert.Equal(t, "testnet11/"+schema.ResultBucket+"/alice.xch", k)

	got, ok := l.trim(schema.ResultBucket, k)
	assert.True(t, ok)
	assert.Equal(t, "alice.xch", got)

	_, ok = l.trim(schema.TipSpendBucket, k)
	assert.False(t, ok)
	_, ok = objectLayout{network: "mainnet"}.trim(schema.ResultBucket, k)
	assert.False(t, ok)
	_, ok = l.trim(schema.ResultBucket, l.prefix(schema.ResultBucket))
	assert.False(t, ok)
}
