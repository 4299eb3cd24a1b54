// SPDX-License-Identifier: AGPL-3.0-only
package config

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"
	"github.com/pulsebot/pulsebot/internal/database"
	"github.com/sirupsen/logrus"

	_ "github.com/lib/pq"
)

const AppVersion = "1.2.0"

// Category selects which adapter/formatter pair a publish cycle uses.
// Manual is reserved for operator-triggered posts from the dashboard.
type Category string

const (
	CategoryWeather  Category = "weather"
	CategoryCurrency Category = "currency"
	CategoryNews     Category = "news"
	CategoryManual   Category = "manual"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryWeather, CategoryCurrency, CategoryNews, CategoryManual:
		return true
	}
	return false
}

type AppConfig struct {
	Port string
}

// LoadDatabase opens the Postgres connection from the environment and runs
// pending goose migrations before handing back the query layer.
func LoadDatabase() (*database.Queries, *sql.DB, error) {

	connectDbUrl := os.Getenv("DATABASE_URL")

	if connectDbUrl == "" {
		dbName := os.Getenv("POSTGRES_DB")
		dbUserName := os.Getenv("POSTGRES_USER")
		dbPassword := os.Getenv("POSTGRES_PASSWORD")
		dbHost := GetEnv("POSTGRES_HOST", "db")

		if dbName == "" || dbUserName == "" || dbPassword == "" {
			return nil, nil, fmt.Errorf("failed to load the database environment configuration")
		}

		connectDbUrl = fmt.Sprintf("postgres://%v:%v@%v:5432/%v?sslmode=disable", dbUserName, dbPassword, dbHost, dbName)
	}

	db, err := sql.Open("postgres", connectDbUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to the DB: %v", err)
	}

	migrationsDir := "./sql/schema"
	if err := goose.Up(db, migrationsDir); err != nil {
		return nil, nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	version, err := goose.EnsureDBVersion(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get DB version: %v", err)
	}
	logrus.WithField("db_version", version).Info("Migrations applied successfully")

	return database.New(db), db, nil
}

// GetEnv gets an environment variable with a default value.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvInt gets an integer environment variable with a default value.
func GetEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// GetLogLevel maps LOG_LEVEL to a logrus level, defaulting to info.
func GetLogLevel() logrus.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}
