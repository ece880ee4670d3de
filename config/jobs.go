package config

import (
	"time"
)

const refreshInterval = 10 * time.Second

func (c *Config) runJobs() {
	if _, err := c.scheduler.Every(refreshInterval).SingletonMode().Do(c.refresh); err != nil {
		log.Error("schedule config refresh", "err", err)
		return
	}
	c.scheduler.StartAsync()
}

// refresh reloads the whitelist and the params. A failed read keeps the previous value.
func (c *Config) refresh() {
	whitelist, wlErr := c.loadWhitelist()
	if wlErr != nil {
		log.Error("load rate whitelist", "err", wlErr)
	}
	param, pErr := c.wdb.GetParam()
	if pErr != nil {
		log.Error("load param", "err", pErr)
	}

	c.lock.Lock()
	defer c.lock.Unlock()
	if wlErr == nil {
		c.ipWhiteList = whitelist
	}
	if pErr == nil {
		c.param = param
	}
}

func (c *Config) loadWhitelist() (map[string]struct{}, error) {
	rows, err := c.wdb.GetAllAvailableIpRateWhitelist()
	if err != nil {
		return nil, err
	}
	res := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		res[r.OriginOrIP] = struct{}{}
	}
	return res, nil
}
