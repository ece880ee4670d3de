package schema

const (
	DomainTopic = "dotxch_domain"
)

// DomainEvent is published when a watched name's tip coin or status changes.
type DomainEvent struct {
	Id          string `json:"id"`
	DomainName  string `json:"domainName"`
	LauncherId  string `json:"launcherId"`
	TipCoinId   string `json:"tipCoinId"`
	PrevCoinId  string `json:"prevCoinId"`
	StatusCode  int    `json:"statusCode"`
	PrevStatus  int    `json:"prevStatus"`
	SpendHeight uint32 `json:"spendHeight"`
	Timestamp   int64  `json:"timestamp"`
}
