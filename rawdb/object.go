package rawdb

import (
	"strings"
)

// object stores keep every logical bucket of one network under a single
// storage bucket, as <network>/<bucket>/<key>.
type objectLayout struct {
	network string
}

func (o objectLayout) prefix(bucket string) string {
	return o.network + "/" + bucket + "/"
}

func (o objectLayout) key(bucket, key string) string {
	return o.prefix(bucket) + key
}

// trim returns the logical key of an object, false for objects of other buckets.
func (o objectLayout) trim(bucket, objKey string) (string, bool) {
	k := strings.TrimPrefix(objKey, o.prefix(bucket))
	if k == objKey || k == "" {
		return "", false
	}
	return k, true
}
