package database

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gocql/gocql"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vnfurniture/internal/config"
	"vnfurniture/internal/logger"
)

// --- ScyllaDB ---

type ScyllaConfig struct {
	Hosts       []string
	Keyspace    string
	Username    string
	Password    string
	CACertPath  string
	Timeout     time.Duration
	NumConns    int
	Consistency gocql.Consistency
}

// ScyllaManager owns the storefront session and recreates it when a health
// probe fails.
type ScyllaManager struct {
	config  ScyllaConfig
	session *gocql.Session
	mu      sync.Mutex
}

func NewScyllaConfig(cfg *config.Config) ScyllaConfig {
	return ScyllaConfig{
		Hosts:       cfg.ScyllaHosts,
		Keyspace:    cfg.ScyllaKeyspace,
		Username:    cfg.ScyllaUsername,
		Password:    cfg.ScyllaPassword,
		CACertPath:  cfg.ScyllaCAPath,
		Timeout:     5 * time.Second,
		NumConns:    20,
		Consistency: gocql.Quorum,
	}
}

func NewScyllaManager(cfg ScyllaConfig) (*ScyllaManager, error) {
	if len(cfg.Hosts) == 0 {
		return nil, fmt.Errorf("SCYLLA_HOSTS not configured")
	}
	sm := &ScyllaManager{config: cfg}
	if _, err := sm.Session(); err != nil {
		return nil, err
	}
	return sm, nil
}

func createScyllaCluster(cfg ScyllaConfig) (*gocql.ClusterConfig, error) {
	cluster := gocql.NewCluster(cfg.Hosts...)
	cluster.Keyspace = cfg.Keyspace
	cluster.Consistency = cfg.Consistency
	cluster.Timeout = cfg.Timeout
	cluster.NumConns = cfg.NumConns
	cluster.MaxWaitSchemaAgreement = 30 * time.Second
	cluster.ReconnectInterval = 1 * time.Second

	if cfg.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("read CA certificate: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("parse CA certificate %s", cfg.CACertPath)
		}
		cluster.SslOpts = &gocql.SslOptions{
			Config:                 &tls.Config{RootCAs: pool},
			EnableHostVerification: true,
		}
	}

	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster, nil
}

// Session returns a live session, reconnecting if the cached one is dead.
func (sm *ScyllaManager) Session() (*gocql.Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.session != nil {
		if err := sm.session.Query("SELECT now() FROM system.local").Exec(); err == nil {
			return sm.session, nil
		}
		sm.session.Close()
		sm.session = nil
	}

	cluster, err := createScyllaCluster(sm.config)
	if err != nil {
		return nil, fmt.Errorf("cluster config for %s: %w", sm.config.Keyspace, err)
	}
	session, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("create session for %s: %w", sm.config.Keyspace, err)
	}

	sm.session = session
	logger.Log.Info("✅ ScyllaDB session opened",
		zap.String("keyspace", sm.config.Keyspace),
		zap.String("user", sm.config.Username))
	return session, nil
}

func (sm *ScyllaManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.session != nil {
		sm.session.Close()
		sm.session = nil
		logger.Log.Info("🔌 ScyllaDB session closed", zap.String("keyspace", sm.config.Keyspace))
	}
}

// --- Redis ---

func ConnectRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.RedisHost == "" {
		return nil, fmt.Errorf("REDIS_HOST not configured")
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisHost,
		Password:     cfg.RedisPassword,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	logger.Log.Info("✅ Connected to Redis", zap.String("addr", cfg.RedisHost))
	return client, nil
}

// --- MinIO ---

// ConnectMinIO opens the client and makes sure the bucket exists.
func ConnectMinIO(ctx context.Context, cfg *config.Config) (*minio.Client, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
		logger.Log.Info("🪣 Bucket created", zap.String("bucket", cfg.MinioBucket))
	}

	logger.Log.Info("✅ Connected to MinIO", zap.String("endpoint", cfg.MinioEndpoint))
	return client, nil
}

// --- Postgres ---

func ConnectPostgres(cfg *config.Config) (*gorm.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL not configured")
	}
	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	logger.Log.Info("✅ Connected to Postgres")
	return db, nil
}
