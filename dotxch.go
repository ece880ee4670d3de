package dotxch

import (
	"context"
	"github.com/everFinance/dotxch/clvm"
	"github.com/everFinance/dotxch/common"
	"github.com/everFinance/dotxch/config"
	"github.com/everFinance/dotxch/ledger"
	"github.com/everFinance/dotxch/puzzle"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
	"github.com/gin-gonic/gin"
	"github.com/go-co-op/gocron"
	"time"
)

var log = common.NewLog("dotxch")

type Dotxch struct {
	engine    *resolver.Engine
	api       *gin.Engine
	cache     *ResolutionCache
	wdb       *Wdb
	store     *Store
	events    EventWriter // nil when kafka is off
	scheduler *gocron.Scheduler
	config    *config.Config

	network         string
	limiter         schema.Limiter
	refreshInterval int
	cleanupMarkers  bool
}

// NewEngine wires the puzzle templates, the clvm runner and the node client of cfg.
func NewEngine(cfg schema.Config) (*resolver.Engine, error) {
	net, err := types.NetworkByName(cfg.Network)
	if err != nil {
		return nil, err
	}
	templates, err := puzzle.LoadTemplates(cfg.TemplateDir)
	if err != nil {
		return nil, err
	}
	driver := puzzle.NewDriver(templates, clvm.NewBrunRunner(cfg.BrunPath), net)
	node, err := ledger.NewNodeClient(cfg.Node, cfg.Resolver.CallTimeout)
	if err != nil {
		return nil, err
	}
	return resolver.NewEngine(node, driver,
		resolver.WithCallTimeout(cfg.Resolver.CallTimeout),
		resolver.WithConcurrency(cfg.Resolver.LookupConcurrent),
	), nil
}

func New(cfg schema.Config) *Dotxch {
	cfg.SetDefaults()
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}

	cache, err := NewResolutionCache(cfg.Cache)
	if err != nil {
		panic(err)
	}
	store, err := NewStoreFromConfig(cfg)
	if err != nil {
		panic(err)
	}
	wdb := &Wdb{}
	if cfg.UseSqlite {
		wdb = NewSqliteDb(cfg.SqliteDir)
	} else {
		wdb = NewMysqlDb(cfg.Mysql)
	}
	if err = wdb.Migrate(); err != nil {
		panic(err)
	}
	var events EventWriter
	if cfg.Kafka.Start {
		if events, err = NewKWriter(schema.DomainTopic, cfg.Kafka.Uri); err != nil {
			panic(err)
		}
	}

	s := newDotxch(engine, cache, wdb, store, config.New(cfg.Mysql, cfg.SqliteDir, cfg.UseSqlite), events)
	s.limiter = cfg.Limiter
	s.refreshInterval = cfg.Resolver.RefreshInterval
	s.cleanupMarkers = cfg.Resolver.CleanupMarkers
	return s
}

func newDotxch(engine *resolver.Engine, cache *ResolutionCache, wdb *Wdb, store *Store, conf *config.Config, events EventWriter) *Dotxch {
	return &Dotxch{
		engine:          engine,
		api:             gin.Default(),
		cache:           cache,
		wdb:             wdb,
		store:           store,
		events:          events,
		scheduler:       gocron.NewScheduler(time.UTC),
		config:          conf,
		network:         engine.Driver().Net.Name,
		refreshInterval: 30,
	}
}

func (s *Dotxch) Run(port string) {
	s.config.Run()
	go s.runAPI(port)
	go s.runJobs()
}

func (s *Dotxch) Close() {
	s.scheduler.Stop()
	s.config.Close()
	if s.events != nil {
		s.events.Close()
	}
	if err := s.store.Close(); err != nil {
		log.Error("s.store.Close()", "err", err)
	}
	s.wdb.Close()
}

// Resolve answers from the cache when it can. Launcher id lookups always go to the ledger.
func (s *Dotxch) Resolve(ctx context.Context, name string, launcherID *types.Bytes32, allowGracePeriod bool) (resolver.ResolutionResult, error) {
	key := cacheKey(name, allowGracePeriod)
	if launcherID == nil {
		if res, ok := s.cache.Get(key); ok {
			return res, nil
		}
	}
	res, err := s.engine.Resolve(ctx, name, launcherID, allowGracePeriod)
	if err != nil {
		metricLedgerError(err)
		return res, err
	}
	metricResolution(res.Status)
	if launcherID == nil {
		if err := s.cache.Put(key, res); err != nil {
			log.Error("s.cache.Put(key, res)", "err", err, "domain", name)
		}
	}
	s.observe(res)
	return res, nil
}
