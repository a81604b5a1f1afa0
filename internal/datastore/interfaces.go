// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wildscout/wildscout-go/internal/conf"
	"github.com/wildscout/wildscout-go/internal/errors"
	"github.com/wildscout/wildscout-go/internal/logging"
)

// Interface abstracts the underlying database implementation and defines
// the operations the application performs against it.
type Interface interface {
	Open() error
	Close() error
	SaveSighting(s *SavedSighting) error
	GetSavedSightings(callerID string) ([]SavedSighting, error)
	GetSighting(id uint, callerID string) (SavedSighting, error)
	DeleteSighting(id uint, callerID string) error
	SaveSearchLog(log *SearchLog) error
	RecentSearches(callerID string, limit int) ([]SearchLog, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a datastore instance based on the output configuration.
// Returns nil when no database output is enabled; persistence is optional.
func New(settings *conf.Settings) Interface {
	switch {
	case settings.Output.SQLite.Enabled:
		return &SQLiteStore{Settings: settings}
	case settings.Output.MySQL.Enabled:
		return &MySQLStore{Settings: settings}
	default:
		return nil
	}
}

// SaveSighting inserts a saved sighting record.
func (ds *DataStore) SaveSighting(s *SavedSighting) error {
	if ds.DB == nil {
		return errNotOpen("save_sighting")
	}
	if err := ds.DB.Create(s).Error; err != nil {
		return dbError(err, "save_sighting")
	}
	return nil
}

// GetSavedSightings returns all sightings saved by a caller, newest first.
func (ds *DataStore) GetSavedSightings(callerID string) ([]SavedSighting, error) {
	if ds.DB == nil {
		return nil, errNotOpen("get_saved_sightings")
	}
	var sightings []SavedSighting
	err := ds.DB.Where("caller_id = ?", callerID).
		Order("created_at DESC").
		Find(&sightings).Error
	if err != nil {
		return nil, dbError(err, "get_saved_sightings")
	}
	return sightings, nil
}

// GetSighting retrieves one saved sighting by its ID. The record must belong
// to the given caller; another caller's sighting reads as not found.
func (ds *DataStore) GetSighting(id uint, callerID string) (SavedSighting, error) {
	if ds.DB == nil {
		return SavedSighting{}, errNotOpen("get_sighting")
	}
	var s SavedSighting
	err := ds.DB.Where("id = ? AND caller_id = ?", id, callerID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SavedSighting{}, errors.New(err).
				Component("datastore").
				Category(errors.CategoryNotFound).
				Context("operation", "get_sighting").
				Build()
		}
		return SavedSighting{}, dbError(err, "get_sighting")
	}
	return s, nil
}

// DeleteSighting removes a saved sighting by its ID, scoped to the caller
// that saved it.
func (ds *DataStore) DeleteSighting(id uint, callerID string) error {
	if ds.DB == nil {
		return errNotOpen("delete_sighting")
	}
	result := ds.DB.Where("id = ? AND caller_id = ?", id, callerID).Delete(&SavedSighting{})
	if result.Error != nil {
		return dbError(result.Error, "delete_sighting")
	}
	if result.RowsAffected == 0 {
		return errors.Newf("sighting %d not found", id).
			Component("datastore").
			Category(errors.CategoryNotFound).
			Context("operation", "delete_sighting").
			Build()
	}
	return nil
}

// SaveSearchLog records an executed search.
func (ds *DataStore) SaveSearchLog(log *SearchLog) error {
	if ds.DB == nil {
		return errNotOpen("save_search_log")
	}
	if err := ds.DB.Create(log).Error; err != nil {
		return dbError(err, "save_search_log")
	}
	return nil
}

// RecentSearches returns the caller's most recent search logs, newest first.
func (ds *DataStore) RecentSearches(callerID string, limit int) ([]SearchLog, error) {
	if ds.DB == nil {
		return nil, errNotOpen("recent_searches")
	}
	if limit <= 0 {
		limit = 20
	}
	var logs []SearchLog
	err := ds.DB.Where("caller_id = ?", callerID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, dbError(err, "recent_searches")
	}
	return logs, nil
}

// Close closes the underlying database connection.
func (ds *DataStore) Close() error {
	if ds.DB == nil {
		return nil
	}
	sqlDB, err := ds.DB.DB()
	if err != nil {
		return dbError(err, "close")
	}
	return sqlDB.Close()
}

// performAutoMigration migrates the schema for all models.
func performAutoMigration(db *gorm.DB, dbType string) error {
	if err := db.AutoMigrate(&SavedSighting{}, &SearchLog{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("operation", "auto_migration").
			Context("db_type", dbType).
			Build()
	}
	logging.ForService("datastore").Info("database schema up to date", "db_type", dbType)
	return nil
}

// createGormLogger returns a GORM logger that stays quiet except for slow
// queries and errors.
func createGormLogger() gormlogger.Interface {
	return gormlogger.New(
		gormLogWriter{},
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
}

type gormLogWriter struct{}

func (gormLogWriter) Printf(format string, args ...any) {
	logging.ForService("datastore").Warn("gorm", "message", fmt.Sprintf(format, args...))
}

func errNotOpen(operation string) error {
	return errors.Newf("database connection is not initialized").
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Build()
}

func dbError(err error, operation string) error {
	return errors.New(err).
		Component("datastore").
		Category(errors.CategoryDatabase).
		Context("operation", operation).
		Build()
}
