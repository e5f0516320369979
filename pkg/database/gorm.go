package database

import (
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type gormOptions struct {
	debug           bool
	writer          logger.Writer
	maxIdleConns    int
	maxOpenConns    int
	connMaxLifetime time.Duration
}

type GormOption func(*gormOptions)

// WithDebug logs every statement instead of only slow ones and errors.
func WithDebug(debug bool) GormOption {
	return func(o *gormOptions) { o.debug = debug }
}

// WithLogWriter sends gorm's statement log to w instead of stdout.
func WithLogWriter(w logger.Writer) GormOption {
	return func(o *gormOptions) { o.writer = w }
}

func WithPool(maxIdle, maxOpen int, lifetime time.Duration) GormOption {
	return func(o *gormOptions) {
		o.maxIdleConns = maxIdle
		o.maxOpenConns = maxOpen
		o.connMaxLifetime = lifetime
	}
}

func newLogger(o *gormOptions) logger.Interface {
	level := logger.Warn
	if o.debug {
		level = logger.Info
	}
	writer := o.writer
	if writer == nil {
		writer = log.New(os.Stdout, "\r\n", log.LstdFlags)
	}
	return logger.New(writer, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true, // missing records are (nil, nil) in the repositories
		ParameterizedQueries:      true,
		Colorful:                  o.debug && o.writer == nil,
	})
}

// NewGormDBFromDSN opens a pooled Postgres connection.
func NewGormDBFromDSN(dsn string, opts ...GormOption) (*gorm.DB, error) {
	o := &gormOptions{
		maxIdleConns:    10,
		maxOpenConns:    100,
		connMaxLifetime: time.Hour,
	}
	for _, opt := range opts {
		opt(o)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger(o),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(o.maxIdleConns)
	sqlDB.SetMaxOpenConns(o.maxOpenConns)
	sqlDB.SetConnMaxLifetime(o.connMaxLifetime)

	return db, nil
}
