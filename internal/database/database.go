package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jukebox/config"
	"jukebox/pkg/logger"

	"github.com/valkey-io/valkey-go"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type CacheClient valkey.Client

type DB struct {
	SQL   *gorm.DB
	Cache CacheClient
	log   logger.Logger
}

func New(config config.Config) (DB, error) {
	log := logger.New("database").Function("New")

	log.Info("Initializing database")
	db := &DB{log: log}

	if err := db.initializeDB(config); err != nil {
		return DB{}, log.Err("failed to initialize database", err)
	}

	if err := db.initializeCache(config); err != nil {
		// The cache is an optimization for candidate searches, not a
		// requirement: a missing cache server must not stop the process.
		log.Warn("Cache unavailable, continuing without it", "error", err)
	}

	return *db, nil
}

func (s *DB) initializeDB(config config.Config) error {
	// Silent GORM logging: import loops issue many small writes and SQL
	// echo drowns the application logs.
	gormLog := gormLogger.New(
		slog.NewLogLogger(slog.Default().Handler(), slog.LevelError),
		gormLogger.Config{
			SlowThreshold:             10 * time.Second,
			LogLevel:                  gormLogger.Silent,
			IgnoreRecordNotFoundError: true,
		},
	)

	gormConfig := &gorm.Config{
		Logger:                 gormLog,
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
	}

	return s.initializePostgresDB(gormConfig, config)
}

func (s *DB) initializePostgresDB(gormConfig *gorm.Config, config config.Config) error {
	log := s.log.Function("initializePostgresDB")

	if config.DatabaseHost == "" {
		return log.Error("database host is empty")
	}
	if config.DatabaseName == "" {
		return log.Error("database name is empty")
	}
	if config.DatabaseUser == "" {
		return log.Error("database user is empty")
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		config.DatabaseHost,
		config.DatabasePort,
		config.DatabaseUser,
		config.DatabasePassword,
		config.DatabaseName,
	)

	log.Info("Connecting to PostgreSQL",
		"host", config.DatabaseHost,
		"port", config.DatabasePort,
		"database", config.DatabaseName,
	)

	db, err := gorm.Open(postgres.Open(dsn), gormConfig)
	if err != nil {
		return log.Err("failed to open PostgreSQL database with GORM", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return log.Err("failed to get database from GORM", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return log.Err("failed to ping PostgreSQL database through GORM", err)
	}

	log.Info("Successfully connected to PostgreSQL with GORM")
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	s.SQL = db

	return nil
}

func (s *DB) initializeCache(config config.Config) error {
	if config.DatabaseCacheAddress == "" {
		s.log.Info("No cache address configured, skipping cache initialization")
		return nil
	}

	address := fmt.Sprintf("%s:%d", config.DatabaseCacheAddress, config.DatabaseCachePort)
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{address},
	})
	if err != nil {
		return err
	}

	s.Cache = client
	s.log.Info("Connected to cache", "address", address)
	return nil
}

func (s *DB) Close() (err error) {
	if s.SQL != nil {
		sqlDB, dbErr := s.SQL.DB()
		if dbErr == nil {
			if closeErr := sqlDB.Close(); closeErr != nil {
				err = s.log.Err("failed to close database", closeErr)
			}
		}
	}

	if s.Cache != nil {
		s.Cache.Close()
	}

	return err
}

func (s *DB) SQLWithContext(ctx context.Context) *gorm.DB {
	return s.SQL.WithContext(ctx)
}

// CacheGet returns the cached value for key, or "" when the cache is
// unavailable or the key is missing.
func (s *DB) CacheGet(ctx context.Context, key string) string {
	if s.Cache == nil {
		return ""
	}

	value, err := s.Cache.Do(ctx, s.Cache.B().Get().Key(key).Build()).ToString()
	if err != nil {
		return ""
	}
	return value
}

// CacheSet stores value under key with a TTL. Failures are logged and
// swallowed: the cache is best effort.
func (s *DB) CacheSet(ctx context.Context, key, value string, ttl time.Duration) {
	if s.Cache == nil {
		return
	}

	cmd := s.Cache.B().Set().Key(key).Value(value).Ex(ttl).Build()
	if err := s.Cache.Do(ctx, cmd).Error(); err != nil {
		s.log.Warn("Failed to write cache entry", "key", key, "error", err)
	}
}
