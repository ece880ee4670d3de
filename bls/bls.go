package bls

import (
	"errors"
	"github.com/everFinance/dotxch/types"
	blst "github.com/supranational/blst/bindings/go"
)

// AugSchemeMPL domain separation tag.
var augDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_AUG_")

var (
	ErrShortSeed        = errors.New("bls_seed_too_short")
	ErrInvalidKey       = errors.New("bls_invalid_key")
	ErrInvalidPublicKey = errors.New("bls_invalid_public_key")
	ErrInvalidSignature = errors.New("bls_invalid_signature")
)

type PrivateKey struct {
	sk *blst.SecretKey
}

// KeyGen derives a key from at least 32 bytes of seed material.
func KeyGen(seed []byte) (*PrivateKey, error) {
	if len(seed) < 32 {
		return nil, ErrShortSeed
	}
	sk := blst.KeyGen(seed)
	if sk == nil {
		return nil, ErrInvalidKey
	}
	return &PrivateKey{sk: sk}, nil
}

func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	if len(b) != 32 {
		return nil, ErrInvalidKey
	}
	sk := new(blst.SecretKey).Deserialize(b)
	if sk == nil {
		return nil, ErrInvalidKey
	}
	return &PrivateKey{sk: sk}, nil
}

func (k *PrivateKey) Bytes() []byte { return k.sk.Serialize() }

func (k *PrivateKey) PublicKey() types.G1Element {
	pk := new(blst.P1Affine).From(k.sk)
	var out types.G1Element
	copy(out[:], pk.Compress())
	return out
}

// Sign signs pk || msg, the augmented scheme the ledger verifies.
func (k *PrivateKey) Sign(msg []byte) types.G2Element {
	pk := k.PublicKey()
	sig := new(blst.P2Affine).Sign(k.sk, augment(pk, msg), augDST)
	var out types.G2Element
	copy(out[:], sig.Compress())
	return out
}

func augment(pk types.G1Element, msg []byte) []byte {
	res := make([]byte, 0, len(pk)+len(msg))
	res = append(res, pk[:]...)
	return append(res, msg...)
}

func Aggregate(sigs ...types.G2Element) (types.G2Element, error) {
	agg := new(blst.P2Aggregate)
	n := 0
	for _, s := range sigs {
		if s.IsIdentity() {
			continue
		}
		p := new(blst.P2Affine).Uncompress(s[:])
		if p == nil {
			return types.G2Element{}, ErrInvalidSignature
		}
		if !agg.Add(p, true) {
			return types.G2Element{}, ErrInvalidSignature
		}
		n++
	}
	if n == 0 {
		return types.IdentitySignature(), nil
	}
	var out types.G2Element
	copy(out[:], agg.ToAffine().Compress())
	return out, nil
}

// AggregateVerify checks sig against every (pk, msg) pair.
// An empty set of pairs only accepts the identity signature.
func AggregateVerify(pks []types.G1Element, msgs [][]byte, sig types.G2Element) bool {
	if len(pks) != len(msgs) {
		return false
	}
	if len(pks) == 0 {
		return sig.IsIdentity()
	}
	s := new(blst.P2Affine).Uncompress(sig[:])
	if s == nil {
		return false
	}
	points := make([]*blst.P1Affine, 0, len(pks))
	augMsgs := make([]blst.Message, 0, len(msgs))
	for i, pk := range pks {
		p := new(blst.P1Affine).Uncompress(pk[:])
		if p == nil {
			return false
		}
		points = append(points, p)
		augMsgs = append(augMsgs, augment(pk, msgs[i]))
	}
	return s.AggregateVerify(true, points, true, augMsgs, augDST)
}

func ValidPublicKey(pk types.G1Element) bool {
	p := new(blst.P1Affine).Uncompress(pk[:])
	return p != nil && p.KeyValidate()
}
