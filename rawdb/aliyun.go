package rawdb

import (
	"bytes"
	"errors"
	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/everFinance/dotxch/schema"
	"io"
)

const AliyunType = "aliyun"

// AliyunDB keeps one network's archive in a single oss bucket.
type AliyunDB struct {
	bkt    *oss.Bucket
	layout objectLayout
}

func NewAliyunDB(cfg schema.AliyunKV, network string) (*AliyunDB, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("oss bucket can not be empty")
	}
	client, err := oss.New(cfg.Endpoint, cfg.AccKey, cfg.SecretKey)
	if err != nil {
		return nil, err
	}
	exist, err := client.IsBucketExist(cfg.Bucket)
	if err != nil {
		return nil, err
	}
	if !exist {
		if err := client.CreateBucket(cfg.Bucket); err != nil {
			return nil, err
		}
	}
	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, err
	}
	log.Info("archive on aliyun oss", "bucket", cfg.Bucket, "network", network)
	return &AliyunDB{bkt: bkt, layout: objectLayout{network: network}}, nil
}

func (a *AliyunDB) Type() string {
	return AliyunType
}

func (a *AliyunDB) Put(bucket, key string, value []byte) error {
	return a.bkt.PutObject(a.layout.key(bucket, key), bytes.NewReader(value))
}

func (a *AliyunDB) Get(bucket, key string) ([]byte, error) {
	body, err := a.bkt.GetObject(a.layout.key(bucket, key))
	if err != nil {
		return nil, ossErr(err)
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (a *AliyunDB) GetAllKey(bucket string) ([]string, error) {
	keys := make([]string, 0)
	opts := []oss.Option{oss.Prefix(a.layout.prefix(bucket))}
	token := ""
	for {
		res, err := a.bkt.ListObjectsV2(append(opts, oss.ContinuationToken(token))...)
		if err != nil {
			return nil, err
		}
		for _, obj := range res.Objects {
			if k, ok := a.layout.trim(bucket, obj.Key); ok {
				keys = append(keys, k)
			}
		}
		if !res.IsTruncated {
			return keys, nil
		}
		token = res.NextContinuationToken
	}
}

func (a *AliyunDB) Delete(bucket, key string) error {
	return a.bkt.DeleteObject(a.layout.key(bucket, key))
}

func (a *AliyunDB) Exist(bucket, key string) bool {
	ok, err := a.bkt.IsObjectExist(a.layout.key(bucket, key))
	return err == nil && ok
}

func (a *AliyunDB) Close() error {
	return nil
}

// https://help.aliyun.com/document_detail/32157.html
func ossErr(err error) error {
	if se, ok := err.(oss.ServiceError); ok && se.Code == "NoSuchKey" {
		return schema.ErrNotExist
	}
	return err
}
