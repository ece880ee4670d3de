package clvm

import (
	"github.com/everFinance/dotxch/types"
)

const (
	opQuote = 0x01
	opApply = 0x02
	opCons  = 0x04
)

var (
	quoteKwHash = TreeHashAtom([]byte{opQuote})
	applyKwHash = TreeHashAtom([]byte{opApply})
	consKwHash  = TreeHashAtom([]byte{opCons})
	oneHash     = TreeHashAtom([]byte{0x01})
	nilHash     = TreeHashAtom([]byte{})
)

// Curry binds args to mod: (a (q . mod) (c (q . arg1) (c (q . arg2) 1))).
func Curry(mod *Program, args ...*Program) *Program {
	env := Atom([]byte{0x01})
	for i := len(args) - 1; i >= 0; i-- {
		env = List(Atom([]byte{opCons}), Cons(Atom([]byte{opQuote}), args[i]), env)
	}
	return List(Atom([]byte{opApply}), Cons(Atom([]byte{opQuote}), mod), env)
}

// Uncurry reverses Curry. ok is false when p is not in curried form.
func Uncurry(p *Program) (mod *Program, args []*Program, ok bool) {
	items, isList := p.Items()
	if !isList || len(items) != 3 {
		return nil, nil, false
	}
	if !isAtomByte(items[0], opApply) {
		return nil, nil, false
	}
	q := items[1]
	if !q.IsPair() || !isAtomByte(q.first, opQuote) {
		return nil, nil, false
	}
	mod = q.rest
	args = make([]*Program, 0)
	env := items[2]
	for env.IsPair() {
		parts, isList := env.Items()
		if !isList || len(parts) != 3 || !isAtomByte(parts[0], opCons) {
			return nil, nil, false
		}
		qa := parts[1]
		if !qa.IsPair() || !isAtomByte(qa.first, opQuote) {
			return nil, nil, false
		}
		args = append(args, qa.rest)
		env = parts[2]
	}
	if !isAtomByte(env, 0x01) {
		return nil, nil, false
	}
	return mod, args, true
}

func isAtomByte(p *Program, b byte) bool {
	return p.IsAtom() && len(p.atom) == 1 && p.atom[0] == b
}

// CurryTreeHash is the tree hash of Curry(mod, args...) computed from hashes only.
func CurryTreeHash(modHash types.Bytes32, argHashes ...types.Bytes32) types.Bytes32 {
	env := oneHash
	for i := len(argHashes) - 1; i >= 0; i-- {
		quoted := TreeHashPair(quoteKwHash, argHashes[i])
		env = TreeHashPair(consKwHash, TreeHashPair(quoted, TreeHashPair(env, nilHash)))
	}
	quotedMod := TreeHashPair(quoteKwHash, modHash)
	return TreeHashPair(applyKwHash, TreeHashPair(quotedMod, TreeHashPair(env, nilHash)))
}
