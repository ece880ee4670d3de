package resolver

import (
	"github.com/everFinance/dotxch/metadata"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
)

// DomainRecord is the observed state of one domain lineage. Values are never mutated in place;
// the With* helpers return updated copies.
type DomainRecord struct {
	CreationHeight           uint32                  `json:"creation_height"`
	CreationTimestamp        uint64                  `json:"creation_timestamp"`
	RegistrationUpdateHeight uint32                  `json:"registration_update_height"`
	StateUpdateHeight        uint32                  `json:"state_update_height"`
	ExpirationTimestamp      uint64                  `json:"expiration_timestamp"`
	LauncherID               types.Bytes32           `json:"launcher_id"`
	DomainName               string                  `json:"domain_name"`
	PubKey                   types.G1Element         `json:"pubkey"`
	Metadata                 metadata.DomainMetadata `json:"metadata"`
	// Spend is the spend that created Tip.
	Spend types.CoinSpend `json:"spend"`
	Tip   types.Coin      `json:"tip"`
}

// ExpirationTimestamp is creation plus one registration length per observed registration event.
func ExpirationTimestamp(creation uint64, events int) uint64 {
	if events < 1 {
		events = 1
	}
	return creation + uint64(events)*schema.RegistrationLength
}

func (r *DomainRecord) InGracePeriod(now uint64) bool {
	return r.ExpirationTimestamp < now && now < r.ExpirationTimestamp+schema.GracePeriod
}

func (r *DomainRecord) IsExpired(now uint64) bool {
	return r.ExpirationTimestamp < now
}

// Status classifies the record at ledger time now. The grace period is checked before plain expiry.
func (r *DomainRecord) Status(now uint64) StatusCode {
	switch {
	case r.InGracePeriod(now):
		return StatusGracePeriod
	case r.IsExpired(now):
		return StatusExpired
	}
	return StatusFound
}

// Outer re-derives the spendable singleton state from the stored spend.
func (r *DomainRecord) Outer(d *puzzle.Driver) (puzzle.Outer, error) {
	dec, err := d.DecodeOuter(r.Spend)
	if err != nil {
		return puzzle.Outer{}, err
	}
	return dec.Outer, nil
}

func recordFromDecoded(dec *puzzle.Decoded) *DomainRecord {
	return &DomainRecord{
		LauncherID: dec.Outer.LauncherID,
		DomainName: dec.Outer.Inner.Name,
		PubKey:     dec.Outer.Inner.PubKey,
		Metadata:   dec.Outer.Inner.Metadata,
		Spend:      dec.Spend,
		Tip:        dec.Tip,
	}
}

// withState keeps the lineage fields of r and takes the owner state from a later spend.
func (r *DomainRecord) withState(dec *puzzle.Decoded, height uint32) *DomainRecord {
	next := *r
	next.PubKey = dec.Outer.Inner.PubKey
	next.Metadata = dec.Outer.Inner.Metadata
	next.Spend = dec.Spend
	next.Tip = dec.Tip
	next.StateUpdateHeight = height
	return &next
}
