package resolver

import (
	"encoding/json"
	"fmt"
)

// StatusCode values are part of the wire format and keep this order.
type StatusCode int

const (
	StatusNotFound StatusCode = iota
	StatusInvalid
	StatusConflicting
	StatusExpired
	StatusGracePeriod
	StatusFound
	StatusLatest
)

var statusNames = map[StatusCode]string{
	StatusNotFound:    "NOT_FOUND",
	StatusInvalid:     "INVALID",
	StatusConflicting: "CONFLICTING",
	StatusExpired:     "EXPIRED",
	StatusGracePeriod: "GRACE_PERIOD",
	StatusFound:       "FOUND",
	StatusLatest:      "LATEST",
}

func (s StatusCode) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("STATUS_%d", int(s))
}

func (s StatusCode) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether the resolution engine stops at this status.
func (s StatusCode) Terminal() bool {
	return s == StatusNotFound || s == StatusConflicting
}

// ResolutionResult is the caller facing answer for one lineage of a name.
type ResolutionResult struct {
	DomainName string        `json:"domain_name"`
	Status     StatusCode    `json:"status_code"`
	Record     *DomainRecord `json:"domain_record"`
}

func (r ResolutionResult) String() string {
	if r.Record == nil {
		return fmt.Sprintf("%s: %s", r.DomainName, r.Status)
	}
	return fmt.Sprintf("%s: %s launcher=%s", r.DomainName, r.Status, r.Record.LauncherID)
}

func (r *ResolutionResult) UnmarshalJSON(b []byte) error {
	type alias ResolutionResult
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	if !a.Status.Valid() {
		return fmt.Errorf("unknown status code %d", a.Status)
	}
	*r = ResolutionResult(a)
	return nil
}

func notFound(name string) ResolutionResult {
	return ResolutionResult{DomainName: name, Status: StatusNotFound}
}
