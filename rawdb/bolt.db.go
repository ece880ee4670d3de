package rawdb

import (
	"errors"
	"github.com/everFinance/dotxch/schema"
	bolt "go.etcd.io/bbolt"
	"os"
	"path/filepath"
	"time"
)

const (
	BoltType = "boltdb"
	boltFile = "dotxch.db"
)

var ErrBoltLocked = errors.New("bolt file locked by another process")

// BoltDB nests every logical bucket under a top-level bucket named after the network,
// so one file can hold several networks.
type BoltDB struct {
	Db      *bolt.DB
	network []byte
}

func NewBoltDB(dir, network string) (*BoltDB, error) {
	if dir == "" {
		return nil, errors.New("bolt dir can not be empty")
	}
	if network == "" {
		return nil, errors.New("bolt network can not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(filepath.Join(dir, boltFile), 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if errors.Is(err, bolt.ErrTimeout) {
		return nil, ErrBoltLocked
	}
	if err != nil {
		return nil, err
	}
	b := &BoltDB{Db: db, network: []byte(network)}
	err = db.Update(func(tx *bolt.Tx) error {
		root, err := tx.CreateBucketIfNotExists(b.network)
		if err != nil {
			return err
		}
		for _, name := range schema.Buckets {
			if _, err := root.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

func (s *BoltDB) Type() string {
	return BoltType
}

// bucket resolves a logical bucket of this network inside tx.
func (s *BoltDB) bucket(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	root := tx.Bucket(s.network)
	if root == nil {
		return nil, schema.ErrNotExist
	}
	bkt := root.Bucket([]byte(name))
	if bkt == nil {
		return nil, schema.ErrNotExist
	}
	return bkt, nil
}

func (s *BoltDB) Put(bucket, key string, value []byte) error {
	return s.Db.Update(func(tx *bolt.Tx) error {
		bkt, err := s.bucket(tx, bucket)
		if err != nil {
			return err
		}
		return bkt.Put([]byte(key), value)
	})
}

func (s *BoltDB) Get(bucket, key string) (data []byte, err error) {
	err = s.Db.View(func(tx *bolt.Tx) error {
		bkt, err := s.bucket(tx, bucket)
		if err != nil {
			return err
		}
		v := bkt.Get([]byte(key))
		if v == nil {
			return schema.ErrNotExist
		}
		// bolt memory is only valid inside the tx
		data = append([]byte(nil), v...)
		return nil
	})
	return
}

func (s *BoltDB) GetAllKey(bucket string) ([]string, error) {
	keys := make([]string, 0)
	err := s.Db.View(func(tx *bolt.Tx) error {
		bkt, err := s.bucket(tx, bucket)
		if err != nil {
			return err
		}
		return bkt.ForEach(func(k, v []byte) error {
			// nested buckets have a nil value
			if v != nil {
				keys = append(keys, string(k))
			}
			return nil
		})
	})
	return keys, err
}

func (s *BoltDB) Delete(bucket, key string) error {
	return s.Db.Update(func(tx *bolt.Tx) error {
		bkt, err := s.bucket(tx, bucket)
		if err != nil {
			return err
		}
		return bkt.Delete([]byte(key))
	})
}

func (s *BoltDB) Exist(bucket, key string) bool {
	found := false
	_ = s.Db.View(func(tx *bolt.Tx) error {
		bkt, err := s.bucket(tx, bucket)
		if err == nil {
			found = bkt.Get([]byte(key)) != nil
		}
		return nil
	})
	return found
}

func (s *BoltDB) Close() error {
	return s.Db.Close()
}
