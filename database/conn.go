/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

var (
	globalFactory *BaseDatabaseFactory
	globalConfig  *Config
	DB            *bun.DB
)

// GetDB returns the global Bun database instance.
func GetDB() *bun.DB {
	if globalFactory != nil {
		return globalFactory.GetDB()
	}
	return DB
}

// GetDatabaseManager returns the global database manager.
func GetDatabaseManager() AbstractDatabaseManager {
	if globalFactory != nil {
		return globalFactory.GetManager()
	}
	return nil
}

// GetDatabaseFactory returns the global database factory.
func GetDatabaseFactory() *BaseDatabaseFactory {
	return globalFactory
}

// InitDB initializes the global database using the provided configuration.
// Migrations run on startup when the config asks for it.
func InitDB(cfg *Config) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	globalConfig = cfg
	return InitDatabaseWithOptions(cfg, cfg.DataMigrateConfig.EnableMigrateOnStartup)
}

// InitDBFromFile loads a YAML config file and initializes the global database.
func InitDBFromFile(path string) (*bun.DB, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return InitDB(cfg)
}

// InitDatabaseWithOptions initializes the database and optionally runs
// migrations.
func InitDatabaseWithOptions(cfg *Config, runMigrations bool) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	globalFactory = NewDatabaseFactory()
	manager, err := globalFactory.CreateFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	ctx := context.Background()
	if err := globalFactory.InitializeDatabase(ctx, runMigrations); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	DB = manager.GetDB()
	DB.RegisterModel(RegisteredModelInstances()...)
	return DB, nil
}

// CloseDB closes the global database connection.
func CloseDB() error {
	if globalFactory != nil {
		return globalFactory.Close()
	}
	return nil
}

// GetHealthStatus returns the current database health status.
func GetHealthStatus(ctx context.Context) *HealthStatus {
	if globalFactory != nil {
		return globalFactory.GetHealthStatus(ctx)
	}
	return &HealthStatus{
		Healthy:   false,
		Connected: false,
		LastError: "database not initialized",
	}
}

// GetDatabaseStats returns global database statistics.
func GetDatabaseStats() *DBStats {
	if globalFactory != nil {
		return globalFactory.GetStats()
	}
	return &DBStats{}
}

// RunMigrations executes database migrations on the global database.
func RunMigrations() error {
	if globalFactory == nil {
		return fmt.Errorf("database not initialized")
	}
	manager := globalFactory.GetManager()
	if manager == nil {
		return fmt.Errorf("database manager not initialized")
	}
	return manager.RunMigrations(context.Background())
}
