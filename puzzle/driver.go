package puzzle

import (
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/types"
)

// Driver builds and reads the protocol's spends for one network.
type Driver struct {
	T      *Templates
	Runner clvm.Runner
	Net    types.Network
}

func NewDriver(t *Templates, r clvm.Runner, net types.Network) *Driver {
	return &Driver{T: t, Runner: r, Net: net}
}
