package rawdb

import (
	"github.com/everFinance/dotxch/common"
)

var log = common.NewLog("rawdb")

// KeyValueDB archives what the resolver observed: the last resolution result per
// domain name and the spend behind every tip coin, one logical bucket each
// (see schema.Buckets). Backends keep each network apart.
// Get returns schema.ErrNotExist for a missing key or bucket.
type KeyValueDB interface {
	Type() string
	Put(bucket, key string, value []byte) error
	Get(bucket, key string) ([]byte, error)
	Exist(bucket, key string) bool
	// GetAllKey lists the keys of one bucket, in no particular order.
	GetAllKey(bucket string) ([]string, error)
	Delete(bucket, key string) error
	Close() error
}
