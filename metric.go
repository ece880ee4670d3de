package dotxch

import (
	"errors"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricNameSpace = "dotxch"
)

var (
	resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "resolutions_total",
			Help:      "resolutions answered from the ledger, by status",
		},
		[]string{"status"},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "cache_lookups_total",
			Help:      "resolution cache lookups",
		},
		[]string{"result"},
	)
	ledgerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "ledger_errors_total",
			Help:      "failed resolutions, by cause",
		},
		[]string{"cause"},
	)
	domainEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "domain_events_total",
			Help:      "watched domain changes published",
		},
	)
)

func init() {
	prometheus.MustRegister(
		resolutions,
		cacheLookups,
		ledgerErrors,
		domainEvents,
	)
}

func metricResolution(status resolver.StatusCode) {
	resolutions.WithLabelValues(status.String()).Inc()
}

func metricCache(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func metricLedgerError(err error) {
	cause := "other"
	switch {
	case errors.Is(err, schema.ErrNotSynced):
		cause = "not_synced"
	case errors.Is(err, schema.ErrLedgerTimeout):
		cause = "timeout"
	case errors.Is(err, schema.ErrDiscoveryIncomplete):
		cause = "discovery_incomplete"
	case errors.Is(err, schema.ErrLineageBroken):
		cause = "lineage_broken"
	}
	ledgerErrors.WithLabelValues(cause).Inc()
}
