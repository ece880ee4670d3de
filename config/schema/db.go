package schema

type IpRateWhitelist struct {
	ID          uint   `gorm:"primarykey"`
	OriginOrIP  string // e.g "188.0.2.2"
	Available   bool   `gorm:"index:idx3"` // true means effective
	Description string
}

// Param is the resolver behaviour operators may tune at runtime.
type Param struct {
	ID                   uint `gorm:"primarykey"`
	AllowGracePeriod     bool `json:"allowGracePeriod"`  // default for /resolve without grace_period
	MaxWatchedRefresh    int  `json:"maxWatchedRefresh"` // names refreshed per job run
	RefreshConcurrentNum int  `json:"refreshConcurrentNum"`
}

func DefaultParam() Param {
	return Param{
		AllowGracePeriod:     false,
		MaxWatchedRefresh:    1000,
		RefreshConcurrentNum: 10,
	}
}
