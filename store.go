package dotxch

import (
	"context"
	"encoding/json"
	"github.com/everFinance/dotxch/rawdb"
	"github.com/everFinance/dotxch/resolver"
	"github.com/everFinance/dotxch/schema"
	"github.com/everFinance/dotxch/types"
)

// Store archives tip spends and the last answer given per name.
type Store struct {
	KVDb rawdb.KeyValueDB
}

func NewBoltStore(dir, network string) (*Store, error) {
	db, err := rawdb.NewBoltDB(dir, network)
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: db}, nil
}

// NewStoreFromConfig opens the first enabled archive backend, bolt when none is.
// Every backend is namespaced by cfg.Network.
func NewStoreFromConfig(cfg schema.Config) (*Store, error) {
	var (
		db  rawdb.KeyValueDB
		err error
	)
	switch {
	case cfg.S3KV.UseS3:
		db, err = rawdb.NewS3DB(cfg.S3KV, cfg.Network)
	case cfg.AliyunKV.UseAliyun:
		db, err = rawdb.NewAliyunDB(cfg.AliyunKV, cfg.Network)
	case cfg.MongoDBKV.UseMongoDB:
		db, err = rawdb.NewMongoDB(context.Background(), cfg.MongoDBKV.Uri, cfg.Network)
	default:
		db, err = rawdb.NewBoltDB(cfg.BoltDir, cfg.Network)
	}
	if err != nil {
		return nil, err
	}
	return &Store{KVDb: db}, nil
}

func (s *Store) Close() error {
	return s.KVDb.Close()
}

// SaveTipSpend archives the spend that created tip, keyed by the tip's coin id.
// The spend itself is the parent coin's.
func (s *Store) SaveTipSpend(tip types.Bytes32, spend types.CoinSpend) error {
	data, err := json.Marshal(spend)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.TipSpendBucket, tip.Hex(), data)
}

func (s *Store) LoadTipSpend(tip types.Bytes32) (spend types.CoinSpend, err error) {
	data, err := s.KVDb.Get(schema.TipSpendBucket, tip.Hex())
	if err != nil {
		return
	}
	err = json.Unmarshal(data, &spend)
	return
}

func (s *Store) IsExistTipSpend(tip types.Bytes32) bool {
	return s.KVDb.Exist(schema.TipSpendBucket, tip.Hex())
}

func (s *Store) SaveResult(res resolver.ResolutionResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return s.KVDb.Put(schema.ResultBucket, res.DomainName, data)
}

func (s *Store) LoadResult(name string) (res resolver.ResolutionResult, err error) {
	data, err := s.KVDb.Get(schema.ResultBucket, name)
	if err != nil {
		return
	}
	err = json.Unmarshal(data, &res)
	return
}
