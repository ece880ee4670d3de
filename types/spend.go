package types

import (
	"errors"
	"fmt"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

type CoinSpend struct {
	Coin         Coin     `json:"coin"`
	PuzzleReveal HexBytes `json:"puzzle_reveal"`
	Solution     HexBytes `json:"solution"`
}

type SpendBundle struct {
	CoinSpends          []CoinSpend `json:"coin_spends"`
	AggregatedSignature G2Element   `json:"aggregated_signature"`
}

// Removals returns the coins spent by the bundle, in order.
func (sb SpendBundle) Removals() []Coin {
	res := make([]Coin, 0, len(sb.CoinSpends))
	for _, cs := range sb.CoinSpends {
		res = append(res, cs.Coin)
	}
	return res
}

// G1Element is a compressed BLS12-381 public key.
type G1Element [48]byte

func (g G1Element) Hex() string { return hexutil.Encode(g[:]) }

func (g G1Element) String() string { return g.Hex() }

func (g G1Element) MarshalText() ([]byte, error) { return []byte(g.Hex()), nil }

func (g *G1Element) UnmarshalText(input []byte) error {
	b, err := DecodeHex(string(input))
	if err != nil {
		return err
	}
	if len(b) != len(g) {
		return ErrInvalidLength
	}
	copy(g[:], b)
	return nil
}

func BytesToG1(b []byte) (G1Element, error) {
	var g G1Element
	if len(b) != len(g) {
		return g, ErrInvalidLength
	}
	copy(g[:], b)
	return g, nil
}

// G2Element is a compressed BLS12-381 signature.
type G2Element [96]byte

// IdentitySignature is the point at infinity, the signature of an empty aggregate.
func IdentitySignature() G2Element {
	var g G2Element
	g[0] = 0xc0
	return g
}

func (g G2Element) IsIdentity() bool { return g == IdentitySignature() }

func (g G2Element) Hex() string { return hexutil.Encode(g[:]) }

func (g G2Element) MarshalText() ([]byte, error) { return []byte(g.Hex()), nil }

func (g *G2Element) UnmarshalText(input []byte) error {
	b, err := DecodeHex(string(input))
	if err != nil {
		return err
	}
	if len(b) != len(g) {
		return ErrInvalidLength
	}
	copy(g[:], b)
	return nil
}

// Network carries the per-network signing constants.
type Network struct {
	Name           string   `json:"name"`
	AdditionalData HexBytes `json:"agg_sig_me_additional_data"`
	MaxBlockCost   uint64   `json:"max_block_cost_clvm"`
}

var Mainnet = Network{
	Name:           "mainnet",
	AdditionalData: hexutil.MustDecode("0xccd5bb71183532bff220ba46c268991a3ff07eb358e8255a65c30a2dce0e5fbb"),
	MaxBlockCost:   11000000000,
}

var Testnet10 = Network{
	Name:           "testnet10",
	AdditionalData: hexutil.MustDecode("0xae83525ba8d1dd3f09b277de18ca3e43fc0af20d20c4b3e92ef2a48bd291ccb2"),
	MaxBlockCost:   11000000000,
}

var ErrUnknownNetwork = errors.New("unknown_network")

func NetworkByName(name string) (Network, error) {
	switch name {
	case Mainnet.Name:
		return Mainnet, nil
	case Testnet10.Name:
		return Testnet10, nil
	}
	return Network{}, fmt.Errorf("%w: %q", ErrUnknownNetwork, name)
}

// Payment is a coin the funding transaction must create.
type Payment struct {
	PuzzleHash Bytes32 `json:"puzzle_hash"`
	Amount     uint64  `json:"amount"`
}

// TransactionRequest is what a wallet needs to build the transaction that
// funds and links to a domain spend.
type TransactionRequest struct {
	Additions           []Payment      `json:"additions"`
	Coins               []Coin         `json:"coins"`
	Fee                 uint64         `json:"fee"`
	CoinAnnouncements   []Announcement `json:"coin_announcements"`
	PuzzleAnnouncements []Announcement `json:"puzzle_announcements"`
}
