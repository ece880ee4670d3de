package schema

import (
	"time"
)

type Config struct {
	Port        string `yaml:"port"`
	MetricPort  string `yaml:"metricPort"`
	Network     string `yaml:"network"`
	Mysql       string `yaml:"mysql"`
	UseSqlite   bool   `yaml:"useSqlite"`
	SqliteDir   string `yaml:"sqliteDir"`
	TemplateDir string `yaml:"templateDir"`
	BrunPath    string `yaml:"brunPath"`
	SentryDsn   string `yaml:"sentryDsn"`

	Node   Node   `yaml:"node"`
	Wallet Wallet `yaml:"wallet"`

	Resolver Resolver `yaml:"resolver"`
	Cache    Cache    `yaml:"cache"`
	Limiter  Limiter  `yaml:"limiter"`

	BoltDir   string    `yaml:"boltDir"`
	S3KV      S3KV      `yaml:"s3KV"`
	AliyunKV  AliyunKV  `yaml:"aliyunKV"`
	MongoDBKV MongoDBKV `yaml:"mongoDBKV"`

	Kafka Kafka `yaml:"kafka"`
}

// Node is a full node rpc endpoint with its mutual tls material.
type Node struct {
	Url      string `yaml:"url"`
	CertPath string `yaml:"certPath"`
	KeyPath  string `yaml:"keyPath"`
	CaPath   string `yaml:"caPath"`
}

type Wallet struct {
	Url      string `yaml:"url"`
	CertPath string `yaml:"certPath"`
	KeyPath  string `yaml:"keyPath"`
	CaPath   string `yaml:"caPath"`
	WalletId int    `yaml:"walletId"`
}

type Resolver struct {
	CallTimeout      time.Duration `yaml:"callTimeout"`
	LookupConcurrent int           `yaml:"lookupConcurrent"`
	RefreshInterval  int           `yaml:"refreshInterval"` // seconds
	CleanupMarkers   bool          `yaml:"cleanupMarkers"`
}

type Cache struct {
	UseRedis bool          `yaml:"useRedis"`
	RedisUrl string        `yaml:"redisUrl"`
	MaxSize  int           `yaml:"maxSize"`
	TTL      time.Duration `yaml:"ttl"`
}

type Limiter struct {
	Limit  int    `yaml:"limit"`
	Period string `yaml:"period"`
}

type S3KV struct {
	UseS3     bool   `yaml:"useS3"`
	AccKey    string `yaml:"accKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
}

type AliyunKV struct {
	UseAliyun bool   `yaml:"useAliyun"`
	Endpoint  string `yaml:"endpoint"`
	AccKey    string `yaml:"accKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
}

type MongoDBKV struct {
	UseMongoDB bool   `yaml:"useMongoDB"`
	Uri        string `yaml:"uri"`
}

type Kafka struct {
	Start bool   `yaml:"start"`
	Uri   string `yaml:"uri"`
}

// SetDefaults fills the zero values a minimal config file leaves behind.
func (c *Config) SetDefaults() {
	if c.Port == "" {
		c.Port = ":8080"
	}
	if c.MetricPort == "" {
		c.MetricPort = ":9000"
	}
	if c.Network == "" {
		c.Network = "mainnet"
	}
	if c.BoltDir == "" {
		c.BoltDir = "./data/bolt"
	}
	if c.SqliteDir == "" {
		c.SqliteDir = "./data/sqlite"
	}
	if c.Resolver.CallTimeout == 0 {
		c.Resolver.CallTimeout = DefaultCallTimeout
	}
	if c.Resolver.LookupConcurrent == 0 {
		c.Resolver.LookupConcurrent = DefaultLookupConcurrent
	}
	if c.Resolver.RefreshInterval == 0 {
		c.Resolver.RefreshInterval = 30
	}
	if c.Cache.MaxSize == 0 {
		c.Cache.MaxSize = DefaultCacheSize
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}
	if c.Limiter.Limit == 0 {
		c.Limiter.Limit = 300
	}
	if c.Limiter.Period == "" {
		c.Limiter.Period = "M"
	}
}
