package models

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	go_sqlite "github.com/glebarez/go-sqlite"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var DB *gorm.DB

type ContextKey string

const (
	DBContextURL   ContextKey = "budgeter-url"
	DBContextOwner ContextKey = "budgeter-owner"
)

// Connect opens the SQLite database and configures the connection pool.
func Connect(dsn string) error {
	config := &gorm.Config{
		Logger: &logger{
			Logger: log.Logger,
		},
		NowFunc: func() time.Time {
			return time.Now().In(time.UTC)
		},
	}

	// Migration runs with foreign keys disabled, sqlite recreates
	// tables when columns change
	db, err := gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	err = migrate(db)
	if err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}
	sqlDB.Close()

	// Reconnect with foreign keys enabled
	dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)", dsn)
	db, err = gorm.Open(sqlite.Open(dsn), config)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err = db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetConnMaxLifetime(time.Hour)

	// A single connection serializes all writers and prevents SQLITE_BUSY
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	callbacks := []struct {
		processor interface {
			Register(string, func(*gorm.DB)) error
		}
		name     string
		callback func(*gorm.DB)
	}{
		{db.Callback().Query().After("*"), "budgeter:after_query", queryCallback},
		{db.Callback().Query().After("*"), "budgeter:after_query_general", generalCallback},
		{db.Callback().Create().After("*"), "budgeter:after_create", createUpdateCallback},
		{db.Callback().Create().After("*"), "budgeter:after_create_general", generalCallback},
		{db.Callback().Update().After("*"), "budgeter:after_update", createUpdateCallback},
		{db.Callback().Update().After("*"), "budgeter:after_update_general", generalCallback},
		{db.Callback().Delete().After("*"), "budgeter:after_delete_general", generalCallback},
	}

	for _, c := range callbacks {
		err = c.processor.Register(c.name, c.callback)
		if err != nil {
			return err
		}
	}

	DB = db

	return nil
}

var plural = regexp.MustCompile("ies$")

// queryCallback replaces the generic "no record" error with a more user
// friendly one
func queryCallback(db *gorm.DB) {
	if errors.Is(db.Error, gorm.ErrRecordNotFound) {
		// The table name describes the type of resource
		name := strings.ReplaceAll(db.Statement.Table, "_", " ")
		name = plural.ReplaceAllString(name, "y")
		name = strings.TrimSuffix(name, "s")

		db.Error = fmt.Errorf("%w %s matching your query", ErrResourceNotFound, name)
	}
}

// uniqueConstraints maps constraint violations to readable errors
var uniqueConstraints = map[string]error{
	"UNIQUE constraint failed: allocations.budget_id, allocations.category_id":                ErrAllocationCategoryNotUnique,
	"UNIQUE constraint failed: budget_exclusions.budget_id, budget_exclusions.transaction_id": ErrExclusionExists,
	"UNIQUE constraint failed: linked_items.owner_id, linked_items.item_id":                   ErrLinkedItemNotUnique,
	"FOREIGN KEY constraint failed":                                                           ErrReferenceMissing,
}

// createUpdateCallback inspects errors returned by the database for create
// and update calls and replaces them with user friendly ones
func createUpdateCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	for constraint, err := range uniqueConstraints {
		if strings.Contains(db.Error.Error(), constraint) {
			db.Error = err
			return
		}
	}
}

// generalCallback handles unspecified errors.
//
// These are logged, users only get a general error message.
func generalCallback(db *gorm.DB) {
	if db.Error == nil {
		return
	}

	// "sql: database is closed" is hard-coded in database/sql
	if db.Error.Error() == "sql: database is closed" || reflect.TypeOf(db.Error) == reflect.TypeOf(&go_sqlite.Error{}) {
		log.Error().Msgf("%T: %v", db.Error, db.Error.Error())
		db.Error = ErrGeneral
	}
}

// migrate migrates all models to the schema defined in the code.
func migrate(db *gorm.DB) error {
	err := db.AutoMigrate(Account{}, Transaction{}, Budget{}, Allocation{}, BudgetExclusion{}, Asset{}, AssetHistory{}, LinkedItem{})
	if err != nil {
		return fmt.Errorf("error during DB migration: %w", err)
	}

	return nil
}
