package clvm

import (
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/types"
)

type ConditionOpcode byte

const (
	AggSigUnsafe             ConditionOpcode = 49
	AggSigMe                 ConditionOpcode = 50
	CreateCoin               ConditionOpcode = 51
	ReserveFee               ConditionOpcode = 52
	CreateCoinAnnouncement   ConditionOpcode = 60
	AssertCoinAnnouncement   ConditionOpcode = 61
	CreatePuzzleAnnouncement ConditionOpcode = 62
	AssertPuzzleAnnouncement ConditionOpcode = 63
	AssertMyCoinID           ConditionOpcode = 70
	AssertSecondsRelative    ConditionOpcode = 80
)

var ErrInvalidCondition = errors.New("invalid_condition")

type Condition struct {
	Opcode ConditionOpcode
	Args   []*Program
}

// Program renders the condition back to its list form.
func (c Condition) Program() *Program {
	items := append([]*Program{Atom([]byte{byte(c.Opcode)})}, c.Args...)
	return List(items...)
}

func NewCondition(op ConditionOpcode, args ...*Program) *Program {
	return Condition{Opcode: op, Args: args}.Program()
}

// ParseConditions reads the output of a puzzle. Unknown opcodes are kept.
func ParseConditions(out *Program) ([]Condition, error) {
	items, ok := out.Items()
	if !ok {
		return nil, fmt.Errorf("%w: output is not a list", ErrInvalidCondition)
	}
	res := make([]Condition, 0, len(items))
	for _, item := range items {
		parts, ok := item.Items()
		if !ok || len(parts) == 0 || !parts[0].IsAtom() || len(parts[0].atom) != 1 {
			return nil, fmt.Errorf("%w: malformed condition", ErrInvalidCondition)
		}
		res = append(res, Condition{Opcode: ConditionOpcode(parts[0].atom[0]), Args: parts[1:]})
	}
	return res, nil
}

// CreatedCoin is a CREATE_COIN condition resolved against its parent.
type CreatedCoin struct {
	Coin  types.Coin
	Memos [][]byte
}

func CreatedCoins(parent types.Bytes32, conds []Condition) ([]CreatedCoin, error) {
	res := make([]CreatedCoin, 0)
	for _, c := range conds {
		if c.Opcode != CreateCoin {
			continue
		}
		if len(c.Args) < 2 {
			return nil, fmt.Errorf("%w: create coin needs two args", ErrInvalidCondition)
		}
		ph, err := types.BytesToBytes32(c.Args[0].Atom())
		if err != nil {
			return nil, fmt.Errorf("%w: create coin puzzle hash", ErrInvalidCondition)
		}
		amount, err := c.Args[1].Uint64()
		if err != nil {
			return nil, fmt.Errorf("%w: create coin amount", ErrInvalidCondition)
		}
		cc := CreatedCoin{Coin: types.Coin{ParentCoinInfo: parent, PuzzleHash: ph, Amount: amount}}
		if len(c.Args) >= 3 {
			if memos, ok := c.Args[2].Items(); ok {
				for _, m := range memos {
					if m.IsAtom() {
						cc.Memos = append(cc.Memos, m.Atom())
					}
				}
			}
		}
		res = append(res, cc)
	}
	return res, nil
}

// AnnouncementsCreated returns the coin and puzzle announcements a spend of coin makes.
func AnnouncementsCreated(coin types.Coin, conds []Condition) []types.Announcement {
	res := make([]types.Announcement, 0)
	for _, c := range conds {
		if len(c.Args) < 1 {
			continue
		}
		switch c.Opcode {
		case CreateCoinAnnouncement:
			res = append(res, types.Announcement{Origin: coin.Name(), Message: c.Args[0].Atom()})
		case CreatePuzzleAnnouncement:
			res = append(res, types.Announcement{Origin: coin.PuzzleHash, Message: c.Args[0].Atom()})
		}
	}
	return res
}

// AnnouncementsAsserted returns the announcement ids a spend asserts.
func AnnouncementsAsserted(conds []Condition) []types.Bytes32 {
	res := make([]types.Bytes32, 0)
	for _, c := range conds {
		if c.Opcode != AssertCoinAnnouncement && c.Opcode != AssertPuzzleAnnouncement {
			continue
		}
		if len(c.Args) < 1 {
			continue
		}
		if id, err := types.BytesToBytes32(c.Args[0].Atom()); err == nil {
			res = append(res, id)
		}
	}
	return res
}
