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
	"sort"
	"sync"
	"time"

	"github.com/uptrace/bun"
)

// Migration is an applied migration record stored in the tracking table.
type Migration struct {
	bun.BaseModel `bun:"table:wingbase_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version with up/down functions.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
	Down        MigrationFunc
}

// MigrationManager tracks applied migrations and executes pending ones.
// Each migration runs in its own transaction together with its tracking
// record, so a failed step leaves no partial state behind.
type MigrationManager struct {
	db             *bun.DB
	logger         Logger
	createTables   bool
	registered     []MigrationItem
	registeredLock sync.Mutex
}

// NewMigrationManager builds a manager over db. When createTables is true,
// RunMigrations first creates tables for all registered models.
func NewMigrationManager(db *bun.DB, logger Logger, createTables bool) *MigrationManager {
	return &MigrationManager{db: db, logger: logger, createTables: createTables}
}

// Register queues a migration item. Items run in ascending version order.
func (mm *MigrationManager) Register(item MigrationItem) {
	mm.registeredLock.Lock()
	defer mm.registeredLock.Unlock()
	mm.registered = append(mm.registered, item)
}

// RunMigrations creates the tracking table, optionally creates tables for all
// registered models, then executes every pending migration.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := mm.createMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	if mm.createTables {
		if err := mm.createModelTables(ctx, mm.db); err != nil {
			return err
		}
	}

	mm.registeredLock.Lock()
	migrations := make([]MigrationItem, len(mm.registered))
	copy(migrations, mm.registered)
	mm.registeredLock.Unlock()

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for _, migration := range migrations {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}

	if mm.logger != nil {
		mm.logger.Info("Database migrations completed")
	}
	return nil
}

func (mm *MigrationManager) createMigrationTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (mm *MigrationManager) createModelTables(ctx context.Context, db bun.IDB) error {
	for _, model := range RegisteredModelInstances() {
		_, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table for %T: %w", model, err)
		}
	}
	return nil
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := mm.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && mm.logger != nil {
				mm.logger.Error("Failed to rollback migration transaction", "error", rollbackErr)
			}
		}
	}()

	if migration.Up != nil {
		if err := migration.Up(ctx, tx); err != nil {
			return err
		}
	}

	record := &Migration{
		Version:     migration.Version,
		Name:        migration.Name,
		AppliedAt:   time.Now(),
		Description: migration.Description,
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	if mm.logger != nil {
		mm.logger.Info("Migration applied", "version", migration.Version, "name", migration.Name)
	}
	return nil
}

// AppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) AppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}

// RollbackMigration reverts one applied migration using its Down function.
func (mm *MigrationManager) RollbackMigration(ctx context.Context, version string) error {
	mm.registeredLock.Lock()
	var target *MigrationItem
	for i := range mm.registered {
		if mm.registered[i].Version == version {
			target = &mm.registered[i]
			break
		}
	}
	mm.registeredLock.Unlock()

	if target == nil {
		return fmt.Errorf("migration %s is not registered", version)
	}
	if target.Down == nil {
		return fmt.Errorf("migration %s has no down function", version)
	}

	tx, err := mm.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := target.Down(ctx, tx); err != nil {
		return err
	}
	if _, err := tx.NewDelete().
		Model((*Migration)(nil)).
		Where("version = ?", version).
		Exec(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	if mm.logger != nil {
		mm.logger.Info("Migration rolled back", "version", version)
	}
	return nil
}
