package clvm

import (
	"bytes"
	"errors"
	"github.com/everFinance/dotxch/types"
	"math/big"
)

var (
	ErrNotAtom  = errors.New("program_not_atom")
	ErrNotPair  = errors.New("program_not_pair")
	ErrNotList  = errors.New("program_not_list")
	ErrIntRange = errors.New("program_int_out_of_range")
)

// Program is a clvm s-expression: either an atom or a cons pair.
type Program struct {
	atom  []byte
	first *Program
	rest  *Program
}

var (
	nilProgram  = &Program{atom: []byte{}}
	trueProgram = &Program{atom: []byte{0x01}}
)

func Nil() *Program { return nilProgram }

func True() *Program { return trueProgram }

func Atom(b []byte) *Program {
	if b == nil {
		b = []byte{}
	}
	return &Program{atom: b}
}

func String(s string) *Program { return Atom([]byte(s)) }

func Hash(b types.Bytes32) *Program { return Atom(b.Bytes()) }

func Uint(v uint64) *Program { return Atom(types.Uint64ToClvmBytes(v)) }

func Bool(v bool) *Program {
	if v {
		return True()
	}
	return Nil()
}

func Cons(first, rest *Program) *Program {
	return &Program{first: first, rest: rest}
}

// List builds a proper nil-terminated list.
func List(items ...*Program) *Program {
	res := Nil()
	for i := len(items) - 1; i >= 0; i-- {
		res = Cons(items[i], res)
	}
	return res
}

func (p *Program) IsPair() bool { return p.first != nil }

func (p *Program) IsAtom() bool { return p.first == nil }

func (p *Program) IsNil() bool { return p.IsAtom() && len(p.atom) == 0 }

// Atom returns the atom bytes, or nil for a pair.
func (p *Program) Atom() []byte {
	if p.IsPair() {
		return nil
	}
	return p.atom
}

func (p *Program) First() (*Program, error) {
	if !p.IsPair() {
		return nil, ErrNotPair
	}
	return p.first, nil
}

func (p *Program) Rest() (*Program, error) {
	if !p.IsPair() {
		return nil, ErrNotPair
	}
	return p.rest, nil
}

// Items walks a proper list. ok is false for an atom tail other than nil.
func (p *Program) Items() ([]*Program, bool) {
	res := make([]*Program, 0)
	cur := p
	for cur.IsPair() {
		res = append(res, cur.first)
		cur = cur.rest
	}
	if !cur.IsNil() {
		return nil, false
	}
	return res, true
}

// At returns the i-th element of a list.
func (p *Program) At(i int) (*Program, error) {
	cur := p
	for ; i > 0; i-- {
		if !cur.IsPair() {
			return nil, ErrNotList
		}
		cur = cur.rest
	}
	if !cur.IsPair() {
		return nil, ErrNotList
	}
	return cur.first, nil
}

func (p *Program) Equal(o *Program) bool {
	if p.IsPair() != o.IsPair() {
		return false
	}
	if p.IsAtom() {
		return bytes.Equal(p.atom, o.atom)
	}
	return p.first.Equal(o.first) && p.rest.Equal(o.rest)
}

// Uint64 reads a non-negative integer atom.
func (p *Program) Uint64() (uint64, error) {
	if p.IsPair() {
		return 0, ErrNotAtom
	}
	n := p.BigInt()
	if n.Sign() < 0 || !n.IsUint64() {
		return 0, ErrIntRange
	}
	return n.Uint64(), nil
}

// BigInt decodes the atom as a signed big-endian integer.
func (p *Program) BigInt() *big.Int {
	b := p.atom
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return n
}

func (p *Program) TreeHash() types.Bytes32 {
	if p.IsAtom() {
		return types.Sha256([]byte{0x01}, p.atom)
	}
	l := p.first.TreeHash()
	r := p.rest.TreeHash()
	return types.Sha256([]byte{0x02}, l[:], r[:])
}

// TreeHashPair combines two tree hashes the way a cons cell does.
func TreeHashPair(l, r types.Bytes32) types.Bytes32 {
	return types.Sha256([]byte{0x02}, l[:], r[:])
}

func TreeHashAtom(b []byte) types.Bytes32 {
	return types.Sha256([]byte{0x01}, b)
}
