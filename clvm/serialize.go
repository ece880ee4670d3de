package clvm

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/types"
)

const (
	consBox   = 0xff
	maxAtomSz = 0x400000000
)

var (
	ErrUnexpectedEOF = errors.New("clvm_unexpected_eof")
	ErrTrailingBytes = errors.New("clvm_trailing_bytes")
	ErrAtomTooLarge  = errors.New("clvm_atom_too_large")
)

func (p *Program) Serialize() []byte {
	buf := &bytes.Buffer{}
	p.serialize(buf)
	return buf.Bytes()
}

func (p *Program) serialize(buf *bytes.Buffer) {
	if p.IsPair() {
		buf.WriteByte(consBox)
		p.first.serialize(buf)
		p.rest.serialize(buf)
		return
	}
	writeAtom(buf, p.atom)
}

func writeAtom(buf *bytes.Buffer, atom []byte) {
	size := len(atom)
	switch {
	case size == 0:
		buf.WriteByte(0x80)
		return
	case size == 1 && atom[0] <= 0x7f:
		buf.WriteByte(atom[0])
		return
	case size <= 0x3f:
		buf.WriteByte(0x80 | byte(size))
	case size <= 0x1fff:
		buf.Write([]byte{0xc0 | byte(size>>8), byte(size)})
	case size <= 0xfffff:
		buf.Write([]byte{0xe0 | byte(size>>16), byte(size >> 8), byte(size)})
	case size <= 0x7ffffff:
		buf.Write([]byte{0xf0 | byte(size>>24), byte(size >> 16), byte(size >> 8), byte(size)})
	default:
		buf.Write([]byte{0xf8 | byte(size>>32), byte(size >> 24), byte(size >> 16), byte(size >> 8), byte(size)})
	}
	buf.Write(atom)
}

// Deserialize parses exactly one program from b.
func Deserialize(b []byte) (*Program, error) {
	p, n, err := parse(b)
	if err != nil {
		return nil, err
	}
	if n != len(b) {
		return nil, ErrTrailingBytes
	}
	return p, nil
}

func FromHex(s string) (*Program, error) {
	b, err := types.DecodeHex(s)
	if err != nil {
		return nil, err
	}
	return Deserialize(b)
}

func MustFromHex(s string) *Program {
	p, err := FromHex(s)
	if err != nil {
		panic(err)
	}
	return p
}

// parse keeps an explicit stack so deep lists don't grow the goroutine stack.
func parse(b []byte) (*Program, int, error) {
	type frame struct {
		first *Program
		done  bool
	}
	pos := 0
	stack := make([]*frame, 0, 16)
	var result *Program
	for {
		if pos >= len(b) {
			return nil, 0, ErrUnexpectedEOF
		}
		c := b[pos]
		if c == consBox {
			pos++
			stack = append(stack, &frame{})
			continue
		}
		atom, n, err := readAtom(b[pos:])
		if err != nil {
			return nil, 0, err
		}
		pos += n
		result = Atom(atom)
		// fold finished pairs
		for len(stack) > 0 {
			top := stack[len(stack)-1]
			if !top.done {
				top.first = result
				top.done = true
				result = nil
				break
			}
			result = Cons(top.first, result)
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 && result != nil {
			return result, pos, nil
		}
	}
}

func readAtom(b []byte) ([]byte, int, error) {
	c := b[0]
	if c == 0x80 {
		return []byte{}, 1, nil
	}
	if c <= 0x7f {
		return []byte{c}, 1, nil
	}
	bitCount := 0
	mask := byte(0x80)
	for c&mask != 0 && mask != 0 {
		bitCount++
		c &^= mask
		mask >>= 1
	}
	if bitCount > 5 {
		return nil, 0, ErrAtomTooLarge
	}
	if len(b) < bitCount {
		return nil, 0, ErrUnexpectedEOF
	}
	size := uint64(c)
	for i := 1; i < bitCount; i++ {
		size = size<<8 | uint64(b[i])
	}
	if size >= maxAtomSz {
		return nil, 0, ErrAtomTooLarge
	}
	end := uint64(bitCount) + size
	if uint64(len(b)) < end {
		return nil, 0, fmt.Errorf("%w: atom of %d bytes", ErrUnexpectedEOF, size)
	}
	atom := make([]byte, size)
	copy(atom, b[bitCount:end])
	return atom, int(end), nil
}
