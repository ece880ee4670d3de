package cache

import (
	"errors"
	"time"
)

var ErrEntryNotFound = errors.New("cache_entry_not_found")

type Cache struct {
	Cache ICache
}

// ICache is a byte store with a backend enforced lifetime.
type ICache interface {
	Set(key string, entry []byte) error

	// Get returns ErrEntryNotFound on a miss.
	Get(key string) ([]byte, error)

	Delete(key string) error

	// Keys lists the live keys. Backends may include keys that expire during the call.
	Keys() ([]string, error)

	Len() int

	Reset() error
}

func NewLocalCache(allKeysExpTime time.Duration) (*Cache, error) {
	cache, err := NewBigCache(allKeysExpTime)
	if err != nil {
		return nil, err
	}
	return &Cache{Cache: cache}, nil
}

func NewRemoteCache(url string, allKeysExpTime time.Duration) (*Cache, error) {
	cache, err := NewRedisCache(url, allKeysExpTime)
	if err != nil {
		return nil, err
	}
	return &Cache{Cache: cache}, nil
}
