package puzzle

import (
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/types"
)

type ValueKind int

const (
	ValueBytes ValueKind = iota
	ValueHash32
	ValuePubKey48
	ValueBool
	ValueList
	ValuePair
)

func (k ValueKind) String() string {
	switch k {
	case ValueBytes:
		return "bytes"
	case ValueHash32:
		return "hash32"
	case ValuePubKey48:
		return "pubkey48"
	case ValueBool:
		return "bool"
	case ValueList:
		return "list"
	case ValuePair:
		return "pair"
	}
	return "unknown"
}

// Value is a typed view of a program argument. Only the field matching Kind is set.
type Value struct {
	Kind   ValueKind
	Bytes  []byte
	Hash   types.Bytes32
	PubKey types.G1Element
	Bool   bool
	Items  []Value
	First  *Value
	Rest   *Value
}

func BytesValue(b []byte) Value { return Value{Kind: ValueBytes, Bytes: b} }

func StringValue(s string) Value { return BytesValue([]byte(s)) }

func HashValue(h types.Bytes32) Value { return Value{Kind: ValueHash32, Hash: h} }

func PubKeyValue(pk types.G1Element) Value { return Value{Kind: ValuePubKey48, PubKey: pk} }

func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

func ListValue(items ...Value) Value { return Value{Kind: ValueList, Items: items} }

func PairValue(first, rest Value) Value { return Value{Kind: ValuePair, First: &first, Rest: &rest} }

// UintValue encodes an integer. Small integers come back as bool or bytes when decoded.
func UintValue(v uint64) Value { return DecodeValue(clvm.Uint(v)) }

// ProgramValue wraps an arbitrary program, typing every atom inside it.
func ProgramValue(p *clvm.Program) Value { return DecodeValue(p) }

// DecodeValue types an atom by its length and content and walks lists and pairs recursively.
func DecodeValue(p *clvm.Program) Value {
	if p.IsAtom() {
		return decodeAtom(p.Atom())
	}
	if items, ok := p.Items(); ok {
		res := make([]Value, 0, len(items))
		for _, item := range items {
			res = append(res, DecodeValue(item))
		}
		return ListValue(res...)
	}
	first, _ := p.First()
	rest, _ := p.Rest()
	return PairValue(DecodeValue(first), DecodeValue(rest))
}

func decodeAtom(b []byte) Value {
	switch {
	case len(b) == 32:
		h, _ := types.BytesToBytes32(b)
		return HashValue(h)
	case len(b) == 48:
		pk, _ := types.BytesToG1(b)
		return PubKeyValue(pk)
	case len(b) == 1 && b[0] == 0x01:
		return BoolValue(true)
	case len(b) == 0:
		return BoolValue(false)
	}
	return BytesValue(b)
}

func (v Value) Program() *clvm.Program {
	switch v.Kind {
	case ValueHash32:
		return clvm.Hash(v.Hash)
	case ValuePubKey48:
		return clvm.Atom(v.PubKey[:])
	case ValueBool:
		return clvm.Bool(v.Bool)
	case ValueList:
		items := make([]*clvm.Program, 0, len(v.Items))
		for _, item := range v.Items {
			items = append(items, item.Program())
		}
		return clvm.List(items...)
	case ValuePair:
		return clvm.Cons(v.First.Program(), v.Rest.Program())
	}
	return clvm.Atom(v.Bytes)
}

// Falsy is the placeholder test: an empty atom, which is also 0, false and nil.
func (v Value) Falsy() bool {
	return (v.Kind == ValueBool && !v.Bool) || (v.Kind == ValueList && len(v.Items) == 0)
}

func (v Value) AsHash() (types.Bytes32, bool) {
	return v.Hash, v.Kind == ValueHash32
}

func (v Value) AsPubKey() (types.G1Element, bool) {
	return v.PubKey, v.Kind == ValuePubKey48
}

func (v Value) AsBool() (bool, bool) {
	return v.Bool, v.Kind == ValueBool
}

// AsBytes returns the raw atom for any atom kind.
func (v Value) AsBytes() ([]byte, bool) {
	switch v.Kind {
	case ValueBytes:
		return v.Bytes, true
	case ValueHash32:
		return v.Hash.Bytes(), true
	case ValuePubKey48:
		return v.PubKey[:], true
	case ValueBool:
		if v.Bool {
			return []byte{0x01}, true
		}
		return []byte{}, true
	}
	return nil, false
}

func (v Value) AsString() (string, bool) {
	b, ok := v.AsBytes()
	return string(b), ok
}

func (v Value) AsUint64() (uint64, bool) {
	b, ok := v.AsBytes()
	if !ok {
		return 0, false
	}
	n, err := clvm.Atom(b).Uint64()
	return n, err == nil
}
