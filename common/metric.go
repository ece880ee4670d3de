package common

import (
	_ "github.com/mkevac/debugcharts"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
)

var log = NewLog("common")

// NewMetricServer serves /metrics and the debugcharts pages on the default mux.
func NewMetricServer(port string) {
	if port == "" {
		port = ":9000"
	}
	log.Info("Starting metric server", "listen", port)
	http.Handle("/metrics", promhttp.Handler())
	go func() {
		if err := http.ListenAndServe(port, nil); err != nil {
			log.Error("metric server stopped", "err", err)
		}
	}()
}
