package types

import (
	"bytes"
	"errors"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"strings"
)

var ErrInvalidLength = errors.New("invalid_bytes_length")

// Bytes32 is used for puzzle hashes, coin names and launcher ids.
type Bytes32 [32]byte

func BytesToBytes32(b []byte) (Bytes32, error) {
	var out Bytes32
	if len(b) != 32 {
		return out, ErrInvalidLength
	}
	copy(out[:], b)
	return out, nil
}

// HexToBytes32 accepts the value with or without a 0x prefix.
func HexToBytes32(s string) (Bytes32, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return Bytes32{}, err
	}
	return BytesToBytes32(b)
}

func MustHexToBytes32(s string) Bytes32 {
	b, err := HexToBytes32(s)
	if err != nil {
		panic(err)
	}
	return b
}

func (b Bytes32) Bytes() []byte { return b[:] }

func (b Bytes32) Hex() string { return hexutil.Encode(b[:]) }

func (b Bytes32) String() string { return b.Hex() }

func (b Bytes32) IsZero() bool { return b == Bytes32{} }

func (b Bytes32) Less(o Bytes32) bool { return bytes.Compare(b[:], o[:]) < 0 }

func (b Bytes32) MarshalText() ([]byte, error) {
	return []byte(b.Hex()), nil
}

func (b *Bytes32) UnmarshalText(input []byte) error {
	v, err := HexToBytes32(string(input))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// DecodeHex is hexutil.Decode that tolerates a missing prefix.
func DecodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	if s == "0x" {
		return []byte{}, nil
	}
	return hexutil.Decode(s)
}

// HexBytes is a serialized program or other opaque blob, hex encoded in JSON.
type HexBytes []byte

func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(hexutil.Encode(h)), nil
}

func (h *HexBytes) UnmarshalText(input []byte) error {
	b, err := DecodeHex(string(input))
	if err != nil {
		return err
	}
	*h = b
	return nil
}

func (h HexBytes) String() string { return hexutil.Encode(h) }
