package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/segyhp/installment-ledger/internal/config"
	"github.com/segyhp/installment-ledger/internal/repository"
	"github.com/segyhp/installment-ledger/internal/repository/gormstore"
)

// Store is an opened persistence backend.
type Store struct {
	Repos  repository.Repos
	UoW    repository.UnitOfWork
	Driver string

	ping  func(ctx context.Context) error
	close func() error
}

func (s *Store) PingContext(ctx context.Context) error { return s.ping(ctx) }

func (s *Store) Close() error { return s.close() }

// Open connects to the backend named by DATABASE_DRIVER. postgres runs on
// sqlx against the migrations/ schema; mysql and sqlite run on gorm, which
// creates its own tables.
func Open(cfg *config.Config) (*Store, error) {
	db := cfg.Database
	pool := poolSettings{
		maxOpen:     db.MaxOpenConns,
		maxIdle:     db.MaxIdleConns,
		maxLifetime: cfg.GetConnMaxLifetime(),
	}

	switch db.Driver {
	case "postgres":
		return openPostgres(db.DSN(), pool)
	case "mysql":
		return openGorm("mysql", mysql.Open(db.DSN()), pool)
	case "sqlite":
		// a single writer, sqlite locks the whole file
		pool.maxOpen = 1
		return openGorm("sqlite", sqlite.Open(db.DSN()), pool)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", db.Driver)
	}
}

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
}

func openPostgres(dsn string, pool poolSettings) (*Store, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(pool.maxOpen)
	db.SetMaxIdleConns(pool.maxIdle)
	db.SetConnMaxLifetime(pool.maxLifetime)

	return &Store{
		Repos:  repository.NewRepos(db),
		UoW:    repository.NewSqlxUoW(db),
		Driver: "postgres",
		ping:   db.PingContext,
		close:  db.Close,
	}, nil
}

func openGorm(driver string, dialector gorm.Dialector, pool poolSettings) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetMaxIdleConns(pool.maxIdle)
	sqlDB.SetConnMaxLifetime(pool.maxLifetime)

	if err := gormstore.Migrate(db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate %s: %w", driver, err)
	}
	log.Printf("storage: %s schema migrated", driver)

	return &Store{
		Repos:  gormstore.NewRepos(db),
		UoW:    gormstore.NewGormUoW(db),
		Driver: driver,
		ping:   sqlDB.PingContext,
		close:  sqlDB.Close,
	}, nil
}
