package rawdb

import (
	"bytes"
	"errors"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/everFinance/dotxch/schema"
	"net"
	"net/url"
	"strings"
)

const S3Type = "s3"

// S3DB keeps one network's archive in a single s3 bucket.
type S3DB struct {
	api      s3iface.S3API
	uploader *s3manager.Uploader
	fetcher  *s3manager.Downloader
	bucket   string
	layout   objectLayout
}

func NewS3DB(cfg schema.S3KV, network string) (*S3DB, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket can not be empty")
	}
	awsCfg := aws.NewConfig().
		WithRegion(cfg.Region).
		WithCredentials(credentials.NewStaticCredentials(cfg.AccKey, cfg.SecretKey, ""))
	if cfg.Endpoint != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.Endpoint)
		// minio behind a bare ip needs path-style addressing
		if u, err := url.Parse(cfg.Endpoint); err == nil && net.ParseIP(u.Hostname()) != nil {
			awsCfg = awsCfg.WithS3ForcePathStyle(true)
		}
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, err
	}
	api := s3.New(sess)
	bkt := strings.ToLower(cfg.Bucket)
	if err := ensureS3Bucket(api, bkt); err != nil {
		return nil, err
	}
	log.Info("archive on s3", "bucket", bkt, "network", network)
	return &S3DB{
		api:      api,
		uploader: s3manager.NewUploaderWithClient(api),
		fetcher:  s3manager.NewDownloaderWithClient(api),
		bucket:   bkt,
		layout:   objectLayout{network: network},
	}, nil
}

func (s *S3DB) Type() string {
	return S3Type
}

func (s *S3DB) Put(bucket, key string, value []byte) error {
	_, err := s.uploader.Upload(&s3manager.UploadInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.layout.key(bucket, key)),
		Body:   bytes.NewReader(value),
	})
	return err
}

func (s *S3DB) Get(bucket, key string) ([]byte, error) {
	buf := aws.NewWriteAtBuffer(nil)
	n, err := s.fetcher.Download(buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.layout.key(bucket, key)),
	})
	if isS3NotFound(err) {
		return nil, schema.ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, schema.ErrNotExist
	}
	return buf.Bytes(), nil
}

func (s *S3DB) GetAllKey(bucket string) ([]string, error) {
	keys := make([]string, 0)
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.layout.prefix(bucket)),
	}
	err := s.api.ListObjectsV2Pages(input, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, obj := range page.Contents {
			if k, ok := s.layout.trim(bucket, aws.StringValue(obj.Key)); ok {
				keys = append(keys, k)
			}
		}
		return true
	})
	return keys, err
}

func (s *S3DB) Delete(bucket, key string) error {
	_, err := s.api.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.layout.key(bucket, key)),
	})
	return err
}

func (s *S3DB) Exist(bucket, key string) bool {
	_, err := s.api.HeadObject(&s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.layout.key(bucket, key)),
	})
	return err == nil
}

func (s *S3DB) Close() error {
	return nil
}

func ensureS3Bucket(api s3iface.S3API, bkt string) error {
	_, err := api.CreateBucket(&s3.CreateBucketInput{Bucket: aws.String(bkt)})
	if aerr, ok := err.(awserr.Error); ok {
		switch aerr.Code() {
		case s3.ErrCodeBucketAlreadyOwnedByYou, s3.ErrCodeBucketAlreadyExists:
			return nil
		}
	}
	return err
}

func isS3NotFound(err error) bool {
	aerr, ok := err.(awserr.Error)
	return ok && (aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound")
}
