package dotxch

import (
	"github.com/everFinance/dotxch/schema"
	"github.com/stretchr/testify/assert"
	"testing"
)

func TestProcessDomainName(t *testing.T) {
	for in, want := range map[string]string{
		"alice":      "alice.xch",
		"Alice.XCH":  "alice.xch",
		" bob.xch ":  "bob.xch",
		"a-b_c9":     "a-b_c9.xch",
		"xch":        "xch.xch",
		"xch.xch":    "xch.xch",
		"0123456789": "0123456789.xch",
	} {
		got, err := ProcessDomainName(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"", ".xch", "a b", "sub.alice.xch", "alice.eth", "über"} {
		_, err := ProcessDomainName(in)
		assert.ErrorIs(t, err, schema.ErrInvalidDomainName, in)
	}
}
