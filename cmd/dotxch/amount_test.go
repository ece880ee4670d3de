package main

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestXchToMojo(t *testing.T) {
	for in, want := range map[string]uint64{
		"":                      0,
		"0":                     0,
		"1":                     1000000000000,
		"0.01":                  10000000000,
		"0.000000000001":        1,
		"18446744.073709551615": 18446744073709551615,
	} {
		got, err := xchToMojo(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"-1", "0.0000000000001", "abc", "18446744.073709551616"} {
		_, err := xchToMojo(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, in)
	}
}

func TestMojoToXch(t *testing.T) {
	assert.Equal(t, "0.01", mojoToXch(10000000000))
	assert.Equal(t, "0.000000000001", mojoToXch(1))
	assert.Equal(t, "0", mojoToXch(0))
}
