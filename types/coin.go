package types

import (
	"crypto/sha256"
)

type Coin struct {
	ParentCoinInfo Bytes32 `json:"parent_coin_info"`
	PuzzleHash     Bytes32 `json:"puzzle_hash"`
	Amount         uint64  `json:"amount"`
}

// Name is sha256(parent || puzzle_hash || amount), amount as a clvm integer.
func (c Coin) Name() Bytes32 {
	h := sha256.New()
	h.Write(c.ParentCoinInfo[:])
	h.Write(c.PuzzleHash[:])
	h.Write(Uint64ToClvmBytes(c.Amount))
	var out Bytes32
	copy(out[:], h.Sum(nil))
	return out
}

// Uint64ToClvmBytes is the minimal two's complement big-endian form.
// Zero encodes as the empty atom.
func Uint64ToClvmBytes(v uint64) []byte {
	if v == 0 {
		return []byte{}
	}
	buf := make([]byte, 9)
	for i := 8; i >= 1; i-- {
		buf[i] = byte(v)
		v >>= 8
	}
	// strip leading zero bytes but keep one if the next byte has the sign bit
	i := 0
	for i < 8 && buf[i] == 0 && buf[i+1]&0x80 == 0 {
		i++
	}
	return buf[i:]
}

type CoinRecord struct {
	Coin                Coin   `json:"coin"`
	ConfirmedBlockIndex uint32 `json:"confirmed_block_index"`
	SpentBlockIndex     uint32 `json:"spent_block_index"`
	Spent               bool   `json:"spent"`
	Coinbase            bool   `json:"coinbase"`
	Timestamp           uint64 `json:"timestamp"`
}

func (r CoinRecord) Name() Bytes32 { return r.Coin.Name() }

type BlockRecord struct {
	HeaderHash Bytes32 `json:"header_hash"`
	PrevHash   Bytes32 `json:"prev_hash"`
	Height     uint32  `json:"height"`
	// only transaction blocks carry a timestamp
	Timestamp *uint64 `json:"timestamp"`
}

func (b BlockRecord) IsTransactionBlock() bool { return b.Timestamp != nil }

type Announcement struct {
	Origin  Bytes32  `json:"origin"`
	Message HexBytes `json:"message"`
}

func (a Announcement) Name() Bytes32 {
	return Sha256(a.Origin[:], a.Message)
}

func Sha256(parts ...[]byte) Bytes32 {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out Bytes32
	copy(out[:], h.Sum(nil))
	return out
}
