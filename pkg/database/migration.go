package database

import (
	"fmt"
	"os"

	"github.com/Gobusters/ectologger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
)

type MigrationLogger struct {
	ectologger.Logger
}

func (l MigrationLogger) Verbose() bool {
	return true
}

func (l MigrationLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

type MigrationService struct {
	config *MigrationConfig
	logger ectologger.Logger
}

type MigrationConfig struct {
	MigrationFolderPath string
}

func NewMigrationService(logger ectologger.Logger, config *MigrationConfig) *MigrationService {
	return &MigrationService{
		config: config,
		logger: logger,
	}
}

func (ms *MigrationService) resolveMigrationFolder() string {
	migrationFolder := ms.config.MigrationFolderPath
	if _, err := os.Stat(migrationFolder); err == nil {
		return migrationFolder
	}
	workingDirectory, _ := os.Getwd()
	separator := ""
	if workingDirectory != "/" {
		separator = "/"
	}
	return workingDirectory + separator + migrationFolder
}

func (ms *MigrationService) newMigrate(databaseName string, databaseInstance database.Driver) (*migrate.Migrate, error) {
	migrationFolder := ms.resolveMigrationFolder()
	if _, err := os.Stat(migrationFolder); err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("migration folder %s does not exist", migrationFolder))
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationFolder, databaseName, databaseInstance)
	if err != nil {
		ms.logger.WithError(err).Error("Failed to create migrate instance")
		return nil, err
	}

	m.Log = MigrationLogger{Logger: ms.logger}
	return m, nil
}

// Migrate applies all pending migrations.
func (ms *MigrationService) Migrate(databaseName string, databaseInstance database.Driver) error {
	m, err := ms.newMigrate(databaseName, databaseInstance)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil {
		if err == migrate.ErrNoChange {
			ms.logger.Info("No new migrations to apply")
			return nil
		}
		ms.logger.WithError(err).Error("Failed to apply migrations")
		return err
	}

	ms.logger.Info("Successfully applied migrations")
	return nil
}

// DriverFactory builds a fresh migration driver. Reset needs one per phase
// because the drop removes the driver's version table.
type DriverFactory func() (database.Driver, error)

// Reset destroys the entire schema and recreates it from the migrations.
// Destructive; only the fixture loader's flush mode calls this.
func (ms *MigrationService) Reset(databaseName string, newDriver DriverFactory) error {
	driver, err := newDriver()
	if err != nil {
		return err
	}

	m, err := ms.newMigrate(databaseName, driver)
	if err != nil {
		return err
	}

	ms.logger.Warn("Dropping entire database schema")
	if err := m.Drop(); err != nil {
		ms.logger.WithError(err).Error("Failed to drop schema")
		return err
	}

	driver, err = newDriver()
	if err != nil {
		return err
	}

	return ms.Migrate(databaseName, driver)
}
