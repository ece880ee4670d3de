package cache

import (
	"context"
	"errors"
	"github.com/allegro/bigcache/v3"
	"time"
)

type BigCache struct {
	Cache *bigcache.BigCache
}

func NewBigCache(allKeysExpTime time.Duration) (*BigCache, error) {
	conf := bigcache.DefaultConfig(allKeysExpTime)
	conf.CleanWindow = allKeysExpTime
	conf.Verbose = false
	cache, err := bigcache.New(context.Background(), conf)
	if err != nil {
		return nil, err
	}
	return &BigCache{Cache: cache}, nil
}

func (s *BigCache) Set(key string, entry []byte) (err error) {
	return s.Cache.Set(key, entry)
}

func (s *BigCache) Get(key string) ([]byte, error) {
	data, err := s.Cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil, ErrEntryNotFound
	}
	return data, err
}

func (s *BigCache) Delete(key string) error {
	err := s.Cache.Delete(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return nil
	}
	return err
}

func (s *BigCache) Keys() ([]string, error) {
	keys := make([]string, 0, s.Cache.Len())
	it := s.Cache.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			// the entry was evicted while iterating
			continue
		}
		keys = append(keys, info.Key())
	}
	return keys, nil
}

func (s *BigCache) Len() int {
	return s.Cache.Len()
}

func (s *BigCache) Reset() error {
	return s.Cache.Reset()
}
