package main

import (
	"errors"
	"github.com/shopspring/decimal"
	"math/big"
)

const mojoDecimals = 12

var ErrInvalidAmount = errors.New("invalid_amount")

// xchToMojo parses a decimal XCH amount. Amounts finer than one mojo are rejected.
func xchToMojo(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	mojo := d.Shift(mojoDecimals)
	if mojo.IsNegative() || !mojo.Equal(mojo.Truncate(0)) || !mojo.BigInt().IsUint64() {
		return 0, ErrInvalidAmount
	}
	return mojo.BigInt().Uint64(), nil
}

func mojoToXch(v uint64) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -mojoDecimals).String()
}
