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

package repository

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/wingbase/types"
)

// CrudRepository defines read and single-entity write operations for a
// generic entity type. Filters and orderings are compiled predicates,
// typically produced by the query package.
type CrudRepository[T any] interface {
	// Get returns the entity with the given primary key, excluding
	// soft-deleted rows. Returns ErrNotFound when no row matches.
	Get(ctx context.Context, id any) (*T, error)

	// GetWithDeleted is Get without the soft-delete visibility filter.
	GetWithDeleted(ctx context.Context, id any) (*T, error)

	// GetBy returns the first entity matching all filters in the given order.
	GetBy(ctx context.Context, orderBy []*types.Ordering, filters []*types.Predicate) (*T, error)

	// GetMany returns a bounded window of matching entities. A non-positive
	// limit falls back to types.DefaultLimit; results are never unbounded.
	GetMany(ctx context.Context, offset, limit int, columns []string, orderBy []*types.Ordering, filters []*types.Predicate) ([]*T, error)

	// GetAll returns every matching entity. Callers own the volume.
	GetAll(ctx context.Context, columns []string, orderBy []*types.Ordering, filters []*types.Predicate) ([]*T, error)

	// Count returns the number of matching rows.
	Count(ctx context.Context, filters []*types.Predicate) (int, error)

	// Exists reports whether at least one row matches.
	Exists(ctx context.Context, filters []*types.Predicate) (bool, error)

	// Create inserts the entity and returns it with generated fields
	// populated.
	Create(ctx context.Context, entity *T) (*T, error)

	// CreateMany inserts all entities in one transaction; the whole batch
	// rolls back on any failure.
	CreateMany(ctx context.Context, entities []*T) ([]*T, error)

	// Update applies only the given column values to the entity with the
	// given primary key and returns the refreshed entity. Absent columns are
	// untouched.
	Update(ctx context.Context, id any, values map[string]interface{}) (*T, error)

	// UpdateMany applies the column values to every matching row and returns
	// the affected row count.
	UpdateMany(ctx context.Context, filters []*types.Predicate, values map[string]interface{}) (int64, error)
}

// SoftDeleteRepository defines reversible and irreversible delete
// operations. Soft operations require the entity to expose an is_deleted
// column and fail with SoftDeleteUnsupportedError otherwise.
type SoftDeleteRepository[T any] interface {
	// Delete marks the row soft-deleted. Deleting a missing or already
	// deleted row is a no-op.
	Delete(ctx context.Context, id any) error

	// DeleteMany soft-deletes every matching row.
	DeleteMany(ctx context.Context, filters []*types.Predicate) (int64, error)

	// Restore clears the soft-delete mark and returns the entity.
	Restore(ctx context.Context, id any) (*T, error)

	// RestoreMany restores every matching row. Filters must be compiled with
	// deleted rows visible, otherwise nothing matches.
	RestoreMany(ctx context.Context, filters []*types.Predicate) (int64, error)

	// HardDelete removes the row irreversibly, bypassing soft delete.
	HardDelete(ctx context.Context, id any) error

	// HardDeleteMany removes every matching row irreversibly.
	HardDeleteMany(ctx context.Context, filters []*types.Predicate) (int64, error)
}

// PageQueryRepository defines page-based listing.
type PageQueryRepository[T any] interface {
	// Paginate returns the 1-indexed page of matching entities and the total
	// size of the filtered set ignoring page bounds.
	Paginate(ctx context.Context, page, perPage int, columns []string, orderBy []*types.Ordering, filters []*types.Predicate) ([]*T, int, error)
}

// UpsertRepository defines update-if-exists-else-create keyed on a field
// subset.
type UpsertRepository[T any] interface {
	// Upsert looks up a row matching the entity's values on matchFields,
	// updates it when found or inserts the entity otherwise, and reports
	// which branch was taken.
	Upsert(ctx context.Context, entity *T, matchFields []string) (*T, bool, error)
}

// Repository combines CRUD, soft-delete, pagination, and upsert operations
// and exposes Bun query builders for advanced use cases. Every mutating
// method owns its transaction boundary: one call is one committed or
// rolled-back unit, and no transaction state survives across calls.
type Repository[T any] interface {
	CrudRepository[T]
	SoftDeleteRepository[T]
	PageQueryRepository[T]
	UpsertRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
