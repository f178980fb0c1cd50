package models

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// ErrUnknownDriver is returned by NewDatabase for an unsupported driver name.
var ErrUnknownDriver = errors.New("unknown target driver")

// Database interface
type Database interface {
	Migrate() error
	GetDB() *gorm.DB
	Close() error
}

type database struct {
	db *gorm.DB
}

func (d *database) GetDB() *gorm.DB {
	return d.db
}

func (d *database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// NewDatabase opens the target store. sqlite is limited to one connection so
// that in-memory databases stay on a single handle.
func NewDatabase(driver, dsn string, logLevel gormlogger.LogLevel) (Database, error) {
	var dialector gorm.Dialector
	switch driver {
	case DriverPostgres:
		dialector = postgres.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(dsn)
	case DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	return &database{db: db}, nil
}

// Tables lists the target models in foreign-key order.
func Tables() []interface{} {
	return []interface{}{
		&User{},
		&Student{},
		&Room{},
		&RoomAllocation{},
		&Complaint{},
		&Payment{},
		&LaundryRequest{},
		&LeaveRequest{},
		&Notice{},
		&BusTiming{},
		&MessSchedule{},
		&EmergencyContact{},
	}
}

// Migrate creates missing tables, columns and indexes. Existing tables and
// rows are left in place so repeated runs stay idempotent.
func (d *database) Migrate() error {
	return d.db.AutoMigrate(Tables()...)
}
