package schema

import (
	"github.com/everFinance/dotxch/types"
)

const (
	Year  = 31556926
	Month = 2629743

	// RegistrationLength is how long one registration or renewal lasts, in seconds.
	RegistrationLength uint64 = Year
	GracePeriod        uint64 = Month
	// MaxRegistrationGap is the largest allowed gap between two renewals of one lineage.
	MaxRegistrationGap = RegistrationLength + GracePeriod

	SingletonAmount       uint64 = 1
	RegistrationFeeAmount uint64 = 10000000000
	TotalFeeAmount               = RegistrationFeeAmount + SingletonAmount
	TotalNewDomainAmount         = TotalFeeAmount + SingletonAmount

	// DiscoveryCoinAmount is the amount of every identity marker coin.
	DiscoveryCoinAmount uint64 = 1

	PuzzleVersion         = "v1.0.0"
	MetadataFormatVersion = "v1.0.0"
	ResolverVersion       = "v1.0.0"

	DomainSuffix = ".xch"
)

var RegistrationFeeAddress = types.MustHexToBytes32("b0046b08ca25e28f947d1344b2ccc983be7fc8097a8f353cca43f2c54117a429")
