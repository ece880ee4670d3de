package dotxch

import (
	"context"
	"github.com/everFinance/dotxch/schema"
	"golang.org/x/sync/errgroup"
)

func (s *Dotxch) runJobs() {
	s.scheduler.Every(1).Minute().SingletonMode().Do(s.sweepCache)
	s.scheduler.Every(s.refreshInterval).Seconds().SingletonMode().Do(s.refreshWatched)
	if s.cleanupMarkers {
		s.scheduler.Every(1).Hour().SingletonMode().Do(s.cleanupOldMarkers)
	}

	s.scheduler.StartAsync()
}

func (s *Dotxch) sweepCache() {
	if n := s.cache.ExpireNow(); n > 0 {
		log.Debug("cache swept", "expired", n)
	}
}

func (s *Dotxch) refreshWatched() {
	if err := s.refresh(context.Background()); err != nil {
		log.Error("s.refresh()", "err", err)
	}
}

// refresh re-resolves every watched name and publishes the ones whose tip or status moved.
func (s *Dotxch) refresh(ctx context.Context) error {
	param := s.config.GetParam()
	watched, err := s.wdb.GetWatched(param.MaxWatchedRefresh)
	if err != nil {
		return err
	}
	limit := param.RefreshConcurrentNum
	if limit <= 0 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, w := range watched {
		w := w
		g.Go(func() error {
			s.refreshOne(gctx, w)
			return nil
		})
	}
	return g.Wait()
}

func (s *Dotxch) refreshOne(ctx context.Context, w schema.WatchedDomain) {
	res, err := s.engine.Resolve(ctx, w.DomainName, nil, true)
	if err != nil {
		metricLedgerError(err)
		log.Warn("refresh watched domain failed", "domain", w.DomainName, "err", err)
		return
	}
	s.observe(res)

	tip := ""
	if res.Record != nil {
		tip = res.Record.Tip.Name().Hex()
	}
	if tip == w.LastCoinId && int(res.Status) == w.LastStatus {
		return
	}
	s.cache.Delete(w.DomainName)
	if s.events != nil {
		if err := s.publish(w, res); err != nil {
			// the watch row stays unchanged so the next run retries
			log.Error("s.publish(w, res)", "err", err, "domain", w.DomainName)
			return
		}
	}
	if err := s.wdb.UpdateWatched(w.DomainName, tip, int(res.Status)); err != nil {
		log.Error("s.wdb.UpdateWatched()", "err", err, "domain", w.DomainName)
	}
	log.Info("watched domain changed", "domain", w.DomainName, "status", res.Status, "tip", tip)
}

func (s *Dotxch) cleanupOldMarkers() {
	watched, err := s.wdb.GetWatched(s.config.GetParam().MaxWatchedRefresh)
	if err != nil {
		log.Error("s.wdb.GetWatched()", "err", err)
		return
	}
	for _, w := range watched {
		n, err := s.engine.SpendOldMarkers(context.Background(), w.DomainName)
		if err != nil {
			log.Warn("spend old markers failed", "domain", w.DomainName, "err", err)
			continue
		}
		if n > 0 {
			log.Info("old markers spent", "domain", w.DomainName, "count", n)
		}
	}
}
