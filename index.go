package dotxch

import (
	"encoding/json"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"time"
)

func indexFromRecord(status resolver.StatusCode, rec *resolver.DomainRecord) (schema.DomainIndex, schema.DomainHistory, error) {
	md, err := json.Marshal(rec.Metadata)
	if err != nil {
		return schema.DomainIndex{}, schema.DomainHistory{}, err
	}
	full, err := json.Marshal(rec)
	if err != nil {
		return schema.DomainIndex{}, schema.DomainHistory{}, err
	}
	tip := rec.Tip.Name().Hex()
	idx := schema.DomainIndex{
		LauncherId:               rec.LauncherID.Hex(),
		DomainName:               rec.DomainName,
		StatusCode:               int(status),
		TipCoinId:                tip,
		CreationHeight:           rec.CreationHeight,
		CreationTimestamp:        rec.CreationTimestamp,
		RegistrationUpdateHeight: rec.RegistrationUpdateHeight,
		StateUpdateHeight:        rec.StateUpdateHeight,
		ExpirationTimestamp:      rec.ExpirationTimestamp,
		PubKey:                   rec.PubKey.Hex(),
		Metadata:                 datatypes.JSON(md),
	}
	hist := schema.DomainHistory{
		LauncherId:  idx.LauncherId,
		DomainName:  rec.DomainName,
		TipCoinId:   tip,
		StatusCode:  int(status),
		SpendHeight: rec.StateUpdateHeight,
		Record:      datatypes.JSON(full),
	}
	return idx, hist, nil
}

// observe indexes and archives a fresh resolution. Failures are logged, the answer stands.
func (s *Dotxch) observe(res resolver.ResolutionResult) {
	if err := s.store.SaveResult(res); err != nil {
		log.Error("s.store.SaveResult(res)", "err", err, "domain", res.DomainName)
	}
	rec := res.Record
	if rec == nil {
		return
	}
	if tip := rec.Tip.Name(); !s.store.IsExistTipSpend(tip) {
		if err := s.store.SaveTipSpend(tip, rec.Spend); err != nil {
			log.Error("s.store.SaveTipSpend(tip, rec.Spend)", "err", err, "domain", rec.DomainName)
		}
	}
	idx, hist, err := indexFromRecord(res.Status, rec)
	if err != nil {
		log.Error("indexFromRecord(res.Status, rec)", "err", err, "domain", rec.DomainName)
		return
	}
	if err := s.wdb.UpsertIndex(idx); err != nil {
		log.Error("s.wdb.UpsertIndex(idx)", "err", err, "launcherId", idx.LauncherId)
	}
	if err := s.wdb.InsertHistory(hist); err != nil {
		log.Error("s.wdb.InsertHistory(hist)", "err", err, "tip", hist.TipCoinId)
	}
}

func (s *Dotxch) publish(w schema.WatchedDomain, res resolver.ResolutionResult) error {
	ev := schema.DomainEvent{
		Id:         uuid.NewString(),
		DomainName: res.DomainName,
		PrevCoinId: w.LastCoinId,
		StatusCode: int(res.Status),
		PrevStatus: w.LastStatus,
		Timestamp:  time.Now().Unix(),
	}
	if rec := res.Record; rec != nil {
		ev.LauncherId = rec.LauncherID.Hex()
		ev.TipCoinId = rec.Tip.Name().Hex()
		ev.SpendHeight = rec.StateUpdateHeight
	}
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	if err := s.events.Write(ev.DomainName, body); err != nil {
		return err
	}
	domainEvents.Inc()
	return nil
}
