package schema

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"time"
)

type DomainIndex struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	LauncherId string `gorm:"uniqueIndex:uidx1;size:66" json:"launcherId"`
	DomainName string `gorm:"index:idx1;size:255" json:"domainName"`
	StatusCode int    `json:"statusCode"`

	TipCoinId                string         `json:"tipCoinId"`
	CreationHeight           uint32         `json:"creationHeight"`
	CreationTimestamp        uint64         `json:"creationTimestamp"`
	RegistrationUpdateHeight uint32         `json:"registrationUpdateHeight"`
	StateUpdateHeight        uint32         `json:"stateUpdateHeight"`
	ExpirationTimestamp      uint64         `json:"expirationTimestamp"`
	PubKey                   string         `json:"pubKey"`
	Metadata                 datatypes.JSON `json:"metadata"`
}

// DomainHistory is one observed state of a lineage, appended whenever the tip moves.
type DomainHistory struct {
	gorm.Model
	LauncherId  string         `gorm:"index:idx2;size:66" json:"launcherId"`
	DomainName  string         `gorm:"index:idx3;size:255" json:"domainName"`
	TipCoinId   string         `gorm:"uniqueIndex:uidx2;size:66" json:"tipCoinId"`
	StatusCode  int            `json:"statusCode"`
	SpendHeight uint32         `json:"spendHeight"`
	Record      datatypes.JSON `json:"record"`
}

type WatchedDomain struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	DomainName string    `gorm:"uniqueIndex:uidx3;size:255" json:"domainName"`
	LastCoinId string    `json:"lastCoinId"`
	LastStatus int       `json:"lastStatus"`
}
