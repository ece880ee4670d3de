package sdk

import (
	"errors"
	"fmt"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/types"
)

var ErrRecordMismatch = errors.New("sdk_record_mismatch")

// SDK resolves through a remote service and re-checks every returned record
// against its own spend, so a service can only withhold records, not forge them.
type SDK struct {
	Cli    *Client
	driver *puzzle.Driver
}

func NewSDK(url string, d *puzzle.Driver) *SDK {
	return &SDK{Cli: New(url), driver: d}
}

func (s *SDK) Resolve(name string, launcherID *types.Bytes32, gracePeriod *bool) (resolver.ResolutionResult, error) {
	res, err := s.Cli.Resolve(name, launcherID, gracePeriod)
	if err != nil {
		return res, err
	}
	if err := VerifyResult(s.driver, res); err != nil {
		return resolver.ResolutionResult{}, err
	}
	return res, nil
}

// VerifyResult decodes the record's spend and checks that it produces the claimed state.
func VerifyResult(d *puzzle.Driver, res resolver.ResolutionResult) error {
	rec := res.Record
	if rec == nil {
		return nil
	}
	if rec.DomainName != res.DomainName {
		return fmt.Errorf("%w: name %s != %s", ErrRecordMismatch, rec.DomainName, res.DomainName)
	}
	dec, err := d.DecodeOuter(rec.Spend)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRecordMismatch, err)
	}
	switch {
	case dec.Tip != rec.Tip:
		return fmt.Errorf("%w: tip", ErrRecordMismatch)
	case dec.Outer.LauncherID != rec.LauncherID:
		return fmt.Errorf("%w: launcher id", ErrRecordMismatch)
	case dec.Outer.Inner.Name != rec.DomainName:
		return fmt.Errorf("%w: domain name", ErrRecordMismatch)
	case dec.Outer.Inner.PubKey != rec.PubKey:
		return fmt.Errorf("%w: pubkey", ErrRecordMismatch)
	case !dec.Outer.Inner.Metadata.Equal(rec.Metadata):
		return fmt.Errorf("%w: metadata", ErrRecordMismatch)
	}
	return nil
}
