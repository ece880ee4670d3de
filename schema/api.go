package schema

type RespErr struct {
	Err string `json:"error"`
}

func (r RespErr) Error() string {
	return r.Err
}

type RespInfo struct {
	Version         string `json:"version"`
	Network         string `json:"network"`
	Synced          bool   `json:"synced"`
	LatestHeight    uint32 `json:"latestHeight"`
	LatestTimestamp uint64 `json:"latestTimestamp"`
}

type RespHistory struct {
	DomainName string          `json:"domainName"`
	Index      []DomainIndex   `json:"index"`
	History    []DomainHistory `json:"history"`
}

type ReqWatch struct {
	DomainName string `json:"domainName"`
}
