package config

import (
	"github.com/everFinance/dotxch/config/schema"
	"github.com/go-co-op/gocron"
	"sync"
	"time"
)

// Config holds the runtime parameters operators can change in the database
// without restarting the resolver.
type Config struct {
	wdb       *Wdb
	scheduler *gocron.Scheduler

	lock        sync.RWMutex
	ipWhiteList map[string]struct{}
	param       schema.Param
}

func New(dsn string, sqliteDir string, useSqlite bool) *Config {
	var wdb *Wdb
	if useSqlite {
		wdb = NewSqliteDb(sqliteDir)
	} else {
		wdb = NewWdb(dsn)
	}
	if err := wdb.Migrate(); err != nil {
		panic(err)
	}
	param, err := wdb.GetParam()
	if err != nil {
		panic(err)
	}
	return &Config{
		wdb:         wdb,
		scheduler:   gocron.NewScheduler(time.UTC),
		ipWhiteList: make(map[string]struct{}),
		param:       param,
	}
}

func (c *Config) GetParam() schema.Param {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.param
}

func (c *Config) IsWhitelisted(originOrIp string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	_, ok := c.ipWhiteList[originOrIp]
	return ok
}

func (c *Config) Wdb() *Wdb {
	return c.wdb
}

func (c *Config) Run() {
	go c.runJobs()
}

func (c *Config) Close() {
	c.scheduler.Stop()
	c.wdb.Close()
}
