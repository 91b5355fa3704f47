package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	sqliteGo "github.com/mattn/go-sqlite3"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const CustomDriverName = "sqlite3_extended"

const DefaultFile = "notes-service.db"

const (
	DriverSqlite   = "sqlite"
	DriverPostgres = "postgres"
)

var (
	ErrUnknownDriver  = errors.New("unknown database driver")
	ErrRecordNotFound = gorm.ErrRecordNotFound
	ErrDuplicatedKey  = gorm.ErrDuplicatedKey
)

func init() {
	sql.Register(CustomDriverName,
		&sqliteGo.SQLiteDriver{
			ConnectHook: func(conn *sqliteGo.SQLiteConn) error {
				err := conn.RegisterFunc(
					"gen_random_uuid",
					func(arguments ...interface{}) (string, error) {
						u, err := uuid.NewRandom()
						if err != nil {
							return "", err
						}
						return u.String(), nil
					},
					true,
				)
				return err
			},
		},
	)
}

type Options struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// sqliteDSN turns on foreign keys for every pooled connection; cascades depend on it.
func sqliteDSN(file string) string {
	sep := "?"
	if strings.Contains(file, "?") {
		sep = "&"
	}
	return file + sep + "_foreign_keys=on&_busy_timeout=5000"
}

func NewDb(opts Options) (*gorm.DB, error) {
	level := opts.LogLevel
	if level == 0 {
		level = logger.Silent
	}
	cfg := &gorm.Config{
		Logger:                 logger.Default.LogMode(level),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	}

	switch opts.Driver {
	case DriverPostgres:
		db, err := gorm.Open(postgres.Open(opts.DSN), cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
		return db, nil

	case DriverSqlite, "":
		file := opts.DSN
		if file == "" {
			file = DefaultFile
		}
		dsn := sqliteDSN(file)
		conn, err := sql.Open(CustomDriverName, dsn)
		if err != nil {
			return nil, err
		}
		// sqlite has a single writer
		conn.SetMaxOpenConns(1)

		db, err := gorm.Open(sqlite.Dialector{
			DriverName: CustomDriverName,
			DSN:        dsn,
			Conn:       conn,
		}, cfg)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		return db, nil
	}
	return nil, ErrUnknownDriver
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&File{},
		&Favourite{},
		&Trash{},
		&FileShare{},
		&Friendship{},
		&Activity{},
	)
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
