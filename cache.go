package dotxch

import (
	"encoding/json"
	"errors"
	"github.com/everFinance/dotxch/cache"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"strconv"
	"sync"
	"time"
)

type cacheEntry struct {
	Result   resolver.ResolutionResult `json:"result"`
	StoredAt int64                     `json:"storedAt"` // unix nano
}

// ResolutionCache keeps recent name resolutions for a bounded time and count.
// When full, the oldest entry makes room for a new name.
type ResolutionCache struct {
	c       cache.ICache
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	lock    sync.Mutex
}

func NewResolutionCache(conf schema.Cache) (*ResolutionCache, error) {
	var (
		c   *cache.Cache
		err error
	)
	// the backend keeps entries a little longer than ttl so ExpireNow decides
	lifetime := conf.TTL + time.Minute
	if conf.UseRedis {
		c, err = cache.NewRemoteCache(conf.RedisUrl, lifetime)
	} else {
		c, err = cache.NewLocalCache(lifetime)
	}
	if err != nil {
		return nil, err
	}
	return newResolutionCache(c.Cache, conf.TTL, conf.MaxSize), nil
}

func newResolutionCache(c cache.ICache, ttl time.Duration, maxSize int) *ResolutionCache {
	return &ResolutionCache{c: c, ttl: ttl, maxSize: maxSize, now: time.Now}
}

func cacheKey(name string, allowGracePeriod bool) string {
	return name + "|" + strconv.FormatBool(allowGracePeriod)
}

func (rc *ResolutionCache) load(key string) (cacheEntry, bool) {
	data, err := rc.c.Get(key)
	if err != nil {
		if !errors.Is(err, cache.ErrEntryNotFound) {
			log.Warn("cache get failed", "key", key, "err", err)
		}
		return cacheEntry{}, false
	}
	var e cacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		_ = rc.c.Delete(key)
		return cacheEntry{}, false
	}
	return e, true
}

func (rc *ResolutionCache) stale(e cacheEntry) bool {
	return rc.now().Sub(time.Unix(0, e.StoredAt)) > rc.ttl
}

func (rc *ResolutionCache) Get(key string) (resolver.ResolutionResult, bool) {
	e, ok := rc.load(key)
	if ok && rc.stale(e) {
		_ = rc.c.Delete(key)
		ok = false
	}
	metricCache(ok)
	return e.Result, ok
}

func (rc *ResolutionCache) Put(key string, res resolver.ResolutionResult) error {
	rc.lock.Lock()
	defer rc.lock.Unlock()

	if _, present := rc.load(key); !present && rc.c.Len() >= rc.maxSize {
		rc.expire()
		if rc.c.Len() >= rc.maxSize {
			rc.evictOldest()
		}
	}
	data, err := json.Marshal(cacheEntry{Result: res, StoredAt: rc.now().UnixNano()})
	if err != nil {
		return err
	}
	return rc.c.Set(key, data)
}

// Delete drops every cached answer for name.
func (rc *ResolutionCache) Delete(name string) {
	_ = rc.c.Delete(cacheKey(name, true))
	_ = rc.c.Delete(cacheKey(name, false))
}

// ExpireNow drops entries older than the ttl and returns how many it dropped.
func (rc *ResolutionCache) ExpireNow() int {
	rc.lock.Lock()
	defer rc.lock.Unlock()
	return rc.expire()
}

func (rc *ResolutionCache) expire() int {
	keys, err := rc.c.Keys()
	if err != nil {
		log.Warn("cache keys failed", "err", err)
		return 0
	}
	n := 0
	for _, k := range keys {
		if e, ok := rc.load(k); ok && rc.stale(e) {
			if rc.c.Delete(k) == nil {
				n++
			}
		}
	}
	return n
}

func (rc *ResolutionCache) evictOldest() {
	keys, err := rc.c.Keys()
	if err != nil {
		return
	}
	oldestKey, oldest := "", int64(0)
	for _, k := range keys {
		e, ok := rc.load(k)
		if !ok {
			continue
		}
		if oldestKey == "" || e.StoredAt < oldest {
			oldestKey, oldest = k, e.StoredAt
		}
	}
	if oldestKey != "" {
		_ = rc.c.Delete(oldestKey)
	}
}

func (rc *ResolutionCache) Len() int {
	return rc.c.Len()
}
