package metadata

import (
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"sort"
	"strings"
)

const (
	KeyVersion        = "metadata_version"
	KeyPrimaryAddress = "primary_address"
	PrefixChain       = "chain_records."
	PrefixDns         = "dns_records."
	PrefixOther       = "other_data."
)

// Chain record families. A key is either the bare family or family.<label>.
var chainFamilies = map[string]string{
	"xch": HrpMainnet,
	"did": HrpDid,
	"nft": HrpNft,
}

var (
	ErrUnknownKey         = errors.New("metadata_unknown_key")
	ErrUnsupportedVersion = errors.New("metadata_unsupported_version")
	ErrMalformed          = errors.New("metadata_malformed")
)

type DomainMetadata struct {
	Version        string
	PrimaryAddress types.Bytes32
	ChainRecords   map[string]types.Bytes32
	DNSRecords     map[string]string
	Other          map[string]string
}

func New(primary types.Bytes32) DomainMetadata {
	return DomainMetadata{
		Version:        schema.MetadataFormatVersion,
		PrimaryAddress: primary,
		ChainRecords:   map[string]types.Bytes32{},
		DNSRecords:     map[string]string{},
		Other:          map[string]string{},
	}
}

// ChainFamily returns the family a chain record key belongs to.
func ChainFamily(key string) (string, bool) {
	fam, _, _ := strings.Cut(key, ".")
	if _, ok := chainFamilies[fam]; !ok {
		return "", false
	}
	return fam, true
}

func (m DomainMetadata) Validate() error {
	if m.Version != schema.MetadataFormatVersion {
		return fmt.Errorf("%w: %q", ErrUnsupportedVersion, m.Version)
	}
	for k := range m.ChainRecords {
		if _, ok := ChainFamily(k); !ok {
			return fmt.Errorf("%w: chain record %q", ErrUnknownKey, k)
		}
	}
	return nil
}

// Program encodes the metadata as a sorted list of (key . value) pairs.
func (m DomainMetadata) Program() *clvm.Program {
	pairs := make([]*clvm.Program, 0, 2+len(m.ChainRecords)+len(m.DNSRecords)+len(m.Other))
	pairs = append(pairs,
		clvm.Cons(clvm.String(KeyVersion), clvm.String(m.Version)),
		clvm.Cons(clvm.String(KeyPrimaryAddress), clvm.Hash(m.PrimaryAddress)),
	)
	for _, k := range sortedKeys(m.ChainRecords) {
		pairs = append(pairs, clvm.Cons(clvm.String(PrefixChain+k), clvm.Hash(m.ChainRecords[k])))
	}
	for _, k := range sortedKeys(m.DNSRecords) {
		pairs = append(pairs, clvm.Cons(clvm.String(PrefixDns+k), clvm.String(m.DNSRecords[k])))
	}
	for _, k := range sortedKeys(m.Other) {
		pairs = append(pairs, clvm.Cons(clvm.String(PrefixOther+k), clvm.String(m.Other[k])))
	}
	return clvm.List(pairs...)
}

func FromProgram(p *clvm.Program) (DomainMetadata, error) {
	items, ok := p.Items()
	if !ok {
		return DomainMetadata{}, fmt.Errorf("%w: not a list", ErrMalformed)
	}
	m := DomainMetadata{
		ChainRecords: map[string]types.Bytes32{},
		DNSRecords:   map[string]string{},
		Other:        map[string]string{},
	}
	var hasPrimary bool
	for _, item := range items {
		if !item.IsPair() {
			return DomainMetadata{}, fmt.Errorf("%w: entry is not a pair", ErrMalformed)
		}
		kp, _ := item.First()
		vp, _ := item.Rest()
		if !kp.IsAtom() || !vp.IsAtom() {
			return DomainMetadata{}, fmt.Errorf("%w: entry is not a pair of atoms", ErrMalformed)
		}
		key, val := string(kp.Atom()), vp.Atom()
		switch {
		case key == KeyVersion:
			m.Version = string(val)
		case key == KeyPrimaryAddress:
			b, err := types.BytesToBytes32(val)
			if err != nil {
				return DomainMetadata{}, fmt.Errorf("%w: primary address", ErrMalformed)
			}
			m.PrimaryAddress = b
			hasPrimary = true
		case strings.HasPrefix(key, PrefixChain):
			b, err := types.BytesToBytes32(val)
			if err != nil {
				return DomainMetadata{}, fmt.Errorf("%w: chain record %q", ErrMalformed, key)
			}
			m.ChainRecords[strings.TrimPrefix(key, PrefixChain)] = b
		case strings.HasPrefix(key, PrefixDns):
			m.DNSRecords[strings.TrimPrefix(key, PrefixDns)] = string(val)
		case strings.HasPrefix(key, PrefixOther):
			m.Other[strings.TrimPrefix(key, PrefixOther)] = string(val)
		default:
			return DomainMetadata{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
		}
	}
	if !hasPrimary {
		return DomainMetadata{}, fmt.Errorf("%w: missing primary address", ErrMalformed)
	}
	if err := m.Validate(); err != nil {
		return DomainMetadata{}, err
	}
	return m, nil
}

func (m DomainMetadata) Equal(o DomainMetadata) bool {
	if m.Version != o.Version || m.PrimaryAddress != o.PrimaryAddress {
		return false
	}
	return mapsEqual(m.ChainRecords, o.ChainRecords) &&
		mapsEqual(m.DNSRecords, o.DNSRecords) &&
		mapsEqual(m.Other, o.Other)
}

func (m DomainMetadata) Hash() types.Bytes32 {
	return m.Program().TreeHash()
}

func mapsEqual[V comparable](a, b map[string]V) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if w, ok := b[k]; !ok || w != v {
			return false
		}
	}
	return true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
