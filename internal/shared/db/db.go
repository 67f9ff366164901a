package db

import (
	"database/sql"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Store struct{ Base *gorm.DB }

// Open connects to postgres (retrying while the server comes up) or to a
// SQLite file/memory database.
func Open(driver, dsn string) (*Store, error) {
	cfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	}
	switch driver {
	case "sqlite":
		base, err := gorm.Open(sqlite.Open(dsn), cfg)
		if err != nil {
			return nil, fmt.Errorf("sqlite open: %w", err)
		}
		sqlDB, err := base.DB()
		if err != nil {
			return nil, err
		}
		// One connection keeps ":memory:" databases alive and avoids
		// SQLITE_BUSY between writers.
		sqlDB.SetMaxOpenConns(1)
		return &Store{Base: base}, nil
	case "postgres", "":
		return openPostgres(dsn, cfg)
	default:
		return nil, fmt.Errorf("unknown db driver %q", driver)
	}
}

func openPostgres(dsn string, cfg *gorm.Config) (*Store, error) {
	var base *gorm.DB
	var err error
	sleep := time.Second
	for i := 0; i < 8; i++ {
		base, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			sqlDB, _ := base.DB()
			if err = pingWithTimeout(sqlDB, 2*time.Second); err == nil {
				break
			}
		}
		time.Sleep(sleep)
		if sleep < 8*time.Second {
			sleep *= 2
		}
	}
	if err != nil {
		return nil, fmt.Errorf("db open: %w", err)
	}
	sqlDB, _ := base.DB()
	sqlDB.SetMaxOpenConns(40)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return &Store{Base: base}, nil
}

// UseReplicas sends reads to the given postgres DSNs. Writes and
// transactions stay on the primary.
func (s *Store) UseReplicas(dsns []string) error {
	if len(dsns) == 0 {
		return nil
	}
	var readers []gorm.Dialector
	for _, dsn := range dsns {
		readers = append(readers, postgres.Open(dsn))
	}
	r := dbresolver.Register(dbresolver.Config{
		Replicas: readers,
		Policy:   dbresolver.RandomPolicy{},
	}).
		SetMaxOpenConns(40).
		SetMaxIdleConns(10).
		SetConnMaxLifetime(30 * time.Minute)
	return s.Base.Use(r)
}

func (s *Store) Close() error {
	sqlDB, err := s.Base.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func pingWithTimeout(sqlDB *sql.DB, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() { done <- sqlDB.Ping() }()
	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		return fmt.Errorf("db ping timeout after %s", timeout)
	}
}
