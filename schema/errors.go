package schema

import (
	"errors"
)

var (
	ErrNotExist = errors.New("not_exist_record")

	ErrNotSynced           = errors.New("ledger_not_synced")
	ErrDoubleSpend         = errors.New("double_spend")
	ErrLedgerTimeout       = errors.New("ledger_call_timeout")
	ErrDiscoveryIncomplete = errors.New("discovery_incomplete")
	ErrLineageBroken       = errors.New("lineage_broken")

	ErrInvalidDomainName = errors.New("invalid_domain_name")
	ErrInvalidLauncherId = errors.New("invalid_launcher_id")
)
