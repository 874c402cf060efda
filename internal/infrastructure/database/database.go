package database

import (
	"fmt"
	"time"

	"github.com/formgrid/forms-api/internal/infrastructure/logger"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

const (
	SchemaName  = "forms_api"
	TablePrefix = SchemaName + "."
)

var SchemaRegistry []interface{}

func RegisterSchemaForAutoMigrate(models ...interface{}) {
	SchemaRegistry = append(SchemaRegistry, models...)
}

var DB *gorm.DB

// Config holds database configuration
type Config struct {
	DatabaseURL string
	MaxIdle     int
	MaxOpen     int
	MaxLifetime time.Duration
	LogLevel    gormlogger.LogLevel
}

// Connect creates a new database connection with the given configuration
func Connect(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   TablePrefix,
			SingularTable: false,
		},
		Logger: gormlogger.Default.LogMode(cfg.LogLevel),
	})
	if err != nil {
		log := logger.GetLogger()
		log.Error().
			Str("error_code", "d2f8a1c4-6b3e-47d9-9a5f-0c1e2d3b4a56").
			Err(err).
			Msg("unable to connect to database")
		return nil, err
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	sqlDB.SetConnMaxLifetime(cfg.MaxLifetime)

	log := logger.GetLogger()
	log.Info().Msg("Successfully connected to database")
	DB = db
	return DB, nil
}

// NewDB creates a new database connection using DSN
func NewDB(dsn string) (*gorm.DB, error) {
	return Connect(Config{
		DatabaseURL: dsn,
		MaxIdle:     10,
		MaxOpen:     25,
		MaxLifetime: 1 * time.Hour,
		LogLevel:    gormlogger.Silent,
	})
}

// Migration creates the schema if needed and automigrates every registered
// model.
func Migration(db *gorm.DB) error {
	if err := db.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", SchemaName)).Error; err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	for _, model := range SchemaRegistry {
		if err := db.AutoMigrate(model); err != nil {
			log := logger.GetLogger()
			log.Error().
				Str("error_code", "e3a9b2d5-7c4f-48ea-8b60-1d2e3f4a5b67").
				Err(err).
				Msgf("failed to auto migrate schema: %T", model)
			return err
		}
	}
	return nil
}
