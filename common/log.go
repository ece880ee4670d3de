package common

import (
	"github.com/getsentry/sentry-go"
	"github.com/inconshreveable/log15"
	"time"
)

// NewLog returns a module logger. Records at error level and above are also sent to sentry.
func NewLog(module string) log15.Logger {
	lg := log15.New("module", module)
	toSentry := log15.LvlFilterHandler(log15.LvlError, log15.FuncHandler(func(r *log15.Record) error {
		body := string(log15.JsonFormat().Format(r))
		go sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("module", module)
			sentry.CaptureMessage(body)
		})
		return nil
	}))
	lg.SetHandler(log15.MultiHandler(lg.GetHandler(), toSentry))
	return lg
}

// InitSentry is a no-op for an empty dsn, which leaves capturing disabled.
func InitSentry(dsn, release string) error {
	if dsn == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{Dsn: dsn, Release: release})
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
