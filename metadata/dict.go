package metadata

import (
	"encoding/json"
	"fmt"
	"github.com/everFinance/dotxch/types"
	"gopkg.in/yaml.v3"
	"os"
	"strings"
)

// Dict is the plain record form used by the api, the cli and yaml files.
type Dict struct {
	MetadataVersion string            `json:"metadata_version" yaml:"metadata_version"`
	PrimaryAddress  string            `json:"primary_address" yaml:"primary_address"`
	ChainRecords    map[string]string `json:"chain_records" yaml:"chain_records"`
	DNSRecords      map[string]string `json:"dns_records" yaml:"dns_records"`
	OtherData       map[string]string `json:"other_data" yaml:"other_data"`
}

func FromDict(d Dict) (DomainMetadata, error) {
	primary, err := ParseIdentifier(d.PrimaryAddress)
	if err != nil {
		return DomainMetadata{}, fmt.Errorf("primary_address: %w", err)
	}
	m := New(primary)
	m.Version = d.MetadataVersion
	for k, v := range d.ChainRecords {
		if _, ok := ChainFamily(k); !ok {
			return DomainMetadata{}, fmt.Errorf("%w: chain record %q", ErrUnknownKey, k)
		}
		b, err := ParseIdentifier(v)
		if err != nil {
			return DomainMetadata{}, fmt.Errorf("chain record %q: %w", k, err)
		}
		m.ChainRecords[k] = b
	}
	for k, v := range d.DNSRecords {
		m.DNSRecords[k] = v
	}
	for k, v := range d.OtherData {
		m.Other[k] = v
	}
	if err := m.Validate(); err != nil {
		return DomainMetadata{}, err
	}
	return m, nil
}

// Dict renders addresses as bech32m with the hrp of their family.
func (m DomainMetadata) Dict() Dict {
	d := Dict{
		MetadataVersion: m.Version,
		PrimaryAddress:  encodeOrHex(HrpMainnet, m.PrimaryAddress),
		ChainRecords:    make(map[string]string, len(m.ChainRecords)),
		DNSRecords:      make(map[string]string, len(m.DNSRecords)),
		OtherData:       make(map[string]string, len(m.Other)),
	}
	for k, v := range m.ChainRecords {
		fam, _ := ChainFamily(k)
		d.ChainRecords[k] = encodeOrHex(chainFamilies[fam], v)
	}
	for k, v := range m.DNSRecords {
		d.DNSRecords[k] = v
	}
	for k, v := range m.Other {
		d.OtherData[k] = v
	}
	return d
}

func encodeOrHex(hrp string, b types.Bytes32) string {
	s, err := EncodeAddress(hrp, b)
	if err != nil {
		return b.Hex()
	}
	return s
}

func (m DomainMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Dict())
}

func (m *DomainMetadata) UnmarshalJSON(b []byte) error {
	d := Dict{}
	if err := json.Unmarshal(b, &d); err != nil {
		return err
	}
	res, err := FromDict(d)
	if err != nil {
		return err
	}
	*m = res
	return nil
}

func (m DomainMetadata) YAML() (string, error) {
	by, err := yaml.Marshal(m.Dict())
	return string(by), err
}

// LoadYAML reads metadata from a yaml file path, or parses s itself as yaml.
func LoadYAML(s string) (DomainMetadata, error) {
	by, err := ReadYAMLOrPath(s)
	if err != nil {
		return DomainMetadata{}, err
	}
	d := Dict{}
	if err := yaml.Unmarshal(by, &d); err != nil {
		return DomainMetadata{}, err
	}
	return FromDict(d)
}

// LoadStringMap reads a flat yaml mapping, as used for the cli record flags.
func LoadStringMap(s string) (map[string]string, error) {
	res := make(map[string]string)
	if strings.TrimSpace(s) == "" {
		return res, nil
	}
	by, err := ReadYAMLOrPath(s)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(by, &res); err != nil {
		return nil, err
	}
	return res, nil
}

func ReadYAMLOrPath(s string) ([]byte, error) {
	if st, err := os.Stat(s); err == nil && !st.IsDir() {
		return os.ReadFile(s)
	}
	return []byte(s), nil
}
