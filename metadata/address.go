package metadata

import (
	"errors"
	"fmt"
	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/everFinance/dotxch/types"
	"strings"
)

const (
	HrpMainnet = "xch"
	HrpTestnet = "txch"
	HrpDid     = "did:chia:"
	HrpNft     = "nft"
)

var ErrInvalidAddress = errors.New("invalid_address")

// EncodeAddress renders a puzzle hash or launcher id as a bech32m string.
func EncodeAddress(hrp string, b types.Bytes32) (string, error) {
	conv, err := bech32.ConvertBits(b.Bytes(), 8, 5, true)
	if err != nil {
		return "", err
	}
	return bech32.EncodeM(hrp, conv)
}

// DecodeAddress reads a bech32m address and returns its hrp and payload.
func DecodeAddress(addr string) (string, types.Bytes32, error) {
	hrp, data, version, err := bech32.DecodeGeneric(strings.ToLower(addr))
	if err != nil {
		return "", types.Bytes32{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if version != bech32.VersionM {
		return "", types.Bytes32{}, ErrInvalidAddress
	}
	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return "", types.Bytes32{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	b, err := types.BytesToBytes32(conv)
	if err != nil {
		return "", types.Bytes32{}, ErrInvalidAddress
	}
	return hrp, b, nil
}

// ParseIdentifier accepts 0x hex or any bech32m address.
func ParseIdentifier(s string) (types.Bytes32, error) {
	s = strings.TrimSpace(s)
	if b, err := types.HexToBytes32(s); err == nil {
		return b, nil
	}
	_, b, err := DecodeAddress(s)
	return b, err
}
