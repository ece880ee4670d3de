// Package puzzletest provides stand-in protocol modules and a runner that evaluates them natively.
package puzzletest

import (
	"bytes"
	"github.com/everFinance/dotxch/bls"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/types"
)

func marker(kind string) *clvm.Program {
	return clvm.List(clvm.String("dotxch-test"), clvm.String(kind))
}

// PayModule is a p2 puzzle: curried with a public key, it outputs its solution as conditions
// and requires a signature over the solution hash.
var PayModule = marker("pay")

func RawTemplates() puzzle.RawTemplates {
	return puzzle.RawTemplates{
		Identity:  marker("identity"),
		Fee:       marker("registration_fee"),
		Inner:     marker("domain_inner"),
		Singleton: marker("singleton_top_layer"),
		Launcher:  marker("singleton_launcher"),
	}
}

func Templates() *puzzle.Templates {
	return puzzle.NewTemplates(RawTemplates())
}

func Driver() *puzzle.Driver {
	return puzzle.NewDriver(Templates(), NewEmulator(), types.Mainnet)
}

func PayPuzzle(pk types.G1Element) *clvm.Program {
	return clvm.Curry(PayModule, clvm.Atom(pk[:]))
}

func PayPuzzleHash(pk types.G1Element) types.Bytes32 {
	return PayPuzzle(pk).TreeHash()
}

// Key derives a deterministic key from one byte.
func Key(b byte) *bls.PrivateKey {
	k, err := bls.KeyGen(bytes.Repeat([]byte{b}, 32))
	if err != nil {
		panic(err)
	}
	return k
}
