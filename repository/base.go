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
	"database/sql"
	"errors"
	"fmt"
	"reflect"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/wingbase/types"
)

const softDeleteColumn = "is_deleted"

type baseRepositoryImpl[T any] struct {
	db    *bun.DB
	table *schema.Table
}

// NewRepository returns a generic repository backed by the provided Bun DB.
// Sessions are acquired per call from the DB's connection pool; the
// repository itself holds no state between calls.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{
		db:    db,
		table: db.Dialect().Tables().Get(reflect.TypeOf((*T)(nil)).Elem()),
	}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) softDeletable() bool {
	_, ok := r.table.FieldMap[softDeleteColumn]
	return ok
}

func (r *baseRepositoryImpl[T]) pk() (*schema.Field, error) {
	if len(r.table.PKs) != 1 {
		return nil, fmt.Errorf("model %s must have exactly one primary key, got %d",
			r.table.TypeName, len(r.table.PKs))
	}
	return r.table.PKs[0], nil
}

func (r *baseRepositoryImpl[T]) applyToSelect(q *bun.SelectQuery, columns []string, orderBy []*types.Ordering, filters []*types.Predicate) *bun.SelectQuery {
	for _, rel := range collectRelations(orderBy, filters) {
		q = q.Relation(rel)
	}
	if len(columns) > 0 {
		q = q.Column(columns...)
	}
	for _, p := range filters {
		q = q.Where(p.Expr, p.Args...)
	}
	for _, o := range orderBy {
		q = q.OrderExpr(o.Expr)
	}
	return q
}

func collectRelations(orderBy []*types.Ordering, filters []*types.Predicate) []string {
	var relations []string
	seen := make(map[string]struct{})
	add := func(names []string) {
		for _, name := range names {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			relations = append(relations, name)
		}
	}
	for _, p := range filters {
		add(p.Relations)
	}
	for _, o := range orderBy {
		add(o.Relations)
	}
	return relations
}

// checkBulkFilters rejects relation-traversing predicates: joins are only
// available on select queries.
func checkBulkFilters(filters []*types.Predicate) error {
	for _, p := range filters {
		if len(p.Relations) > 0 {
			return ErrRelationFilter
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) checkColumns(values map[string]interface{}) error {
	for column := range values {
		if _, ok := r.table.FieldMap[column]; !ok {
			return &UnknownColumnError{Model: r.table.TypeName, Column: column}
		}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) getByID(ctx context.Context, id any, withDeleted bool) (*T, error) {
	pk, err := r.pk()
	if err != nil {
		return nil, err
	}
	var entity T
	q := r.db.NewSelect().Model(&entity).Where("?TableAlias.? = ?", bun.Ident(pk.Name), id)
	if !withDeleted && r.softDeletable() {
		q = q.Where("?TableAlias.? = ?", bun.Ident(softDeleteColumn), false)
	}
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &DatabaseError{Op: "get", Err: err}
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return r.getByID(ctx, id, false)
}

func (r *baseRepositoryImpl[T]) GetWithDeleted(ctx context.Context, id any) (*T, error) {
	return r.getByID(ctx, id, true)
}

func (r *baseRepositoryImpl[T]) GetBy(ctx context.Context, orderBy []*types.Ordering, filters []*types.Predicate) (*T, error) {
	var entity T
	q := r.applyToSelect(r.db.NewSelect().Model(&entity), nil, orderBy, filters).Limit(1)
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, &DatabaseError{Op: "getBy", Err: err}
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetMany(ctx context.Context, offset, limit int, columns []string, orderBy []*types.Ordering, filters []*types.Predicate) ([]*T, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = types.DefaultLimit
	}
	var entities []*T
	q := r.applyToSelect(r.db.NewSelect().Model(&entities), columns, orderBy, filters).
		Offset(offset).
		Limit(limit)
	if err := q.Scan(ctx); err != nil {
		return nil, &DatabaseError{Op: "getMany", Err: err}
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context, columns []string, orderBy []*types.Ordering, filters []*types.Predicate) ([]*T, error) {
	var entities []*T
	q := r.applyToSelect(r.db.NewSelect().Model(&entities), columns, orderBy, filters)
	if err := q.Scan(ctx); err != nil {
		return nil, &DatabaseError{Op: "getAll", Err: err}
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filters []*types.Predicate) (int, error) {
	q := r.applyToSelect(r.db.NewSelect().Model((*T)(nil)), nil, nil, filters)
	count, err := q.Count(ctx)
	if err != nil {
		return 0, &DatabaseError{Op: "count", Err: err}
	}
	return count, nil
}

func (r *baseRepositoryImpl[T]) Exists(ctx context.Context, filters []*types.Predicate) (bool, error) {
	q := r.applyToSelect(r.db.NewSelect().Model((*T)(nil)), nil, nil, filters)
	exists, err := q.Exists(ctx)
	if err != nil {
		return false, &DatabaseError{Op: "exists", Err: err}
	}
	return exists, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity *T) (*T, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(entity).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, &DatabaseError{Op: "create", Err: err}
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) CreateMany(ctx context.Context, entities []*T) ([]*T, error) {
	if len(entities) == 0 {
		return entities, nil
	}
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewInsert().Model(&entities).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, &DatabaseError{Op: "createMany", Err: err}
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, id any, values map[string]interface{}) (*T, error) {
	pk, err := r.pk()
	if err != nil {
		return nil, err
	}
	if err := r.checkColumns(values); err != nil {
		return nil, err
	}

	// Surfaces ErrNotFound before touching the row.
	if _, err := r.getByID(ctx, id, false); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return r.getByID(ctx, id, true)
	}

	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().Model((*T)(nil)).Where("?TableAlias.? = ?", bun.Ident(pk.Name), id)
		for column, value := range values {
			q = q.Set("? = ?", bun.Ident(column), value)
		}
		_, err := q.Exec(ctx)
		return err
	})
	if err != nil {
		return nil, &DatabaseError{Op: "update", Err: err}
	}
	return r.getByID(ctx, id, true)
}

func (r *baseRepositoryImpl[T]) UpdateMany(ctx context.Context, filters []*types.Predicate, values map[string]interface{}) (int64, error) {
	if err := checkBulkFilters(filters); err != nil {
		return 0, err
	}
	if err := r.checkColumns(values); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}

	var affected int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().Model((*T)(nil))
		for column, value := range values {
			q = q.Set("? = ?", bun.Ident(column), value)
		}
		for _, p := range filters {
			q = q.Where(p.Expr, p.Args...)
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, &DatabaseError{Op: "updateMany", Err: err}
	}
	return affected, nil
}

func (r *baseRepositoryImpl[T]) setDeleted(ctx context.Context, op string, id any, deleted bool) error {
	if !r.softDeletable() {
		return &SoftDeleteUnsupportedError{Model: r.table.TypeName}
	}
	pk, err := r.pk()
	if err != nil {
		return err
	}
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewUpdate().Model((*T)(nil)).
			Set("? = ?", bun.Ident(softDeleteColumn), deleted).
			Where("?TableAlias.? = ?", bun.Ident(pk.Name), id).
			Exec(ctx)
		return err
	})
	if err != nil {
		return &DatabaseError{Op: op, Err: err}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) setDeletedMany(ctx context.Context, op string, filters []*types.Predicate, deleted bool) (int64, error) {
	if !r.softDeletable() {
		return 0, &SoftDeleteUnsupportedError{Model: r.table.TypeName}
	}
	if err := checkBulkFilters(filters); err != nil {
		return 0, err
	}
	var affected int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewUpdate().Model((*T)(nil)).Set("? = ?", bun.Ident(softDeleteColumn), deleted)
		for _, p := range filters {
			q = q.Where(p.Expr, p.Args...)
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, &DatabaseError{Op: op, Err: err}
	}
	return affected, nil
}

// Delete is idempotent: a missing or already deleted id affects zero rows
// and is not an error.
func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	return r.setDeleted(ctx, "delete", id, true)
}

func (r *baseRepositoryImpl[T]) DeleteMany(ctx context.Context, filters []*types.Predicate) (int64, error) {
	return r.setDeletedMany(ctx, "deleteMany", filters, true)
}

func (r *baseRepositoryImpl[T]) Restore(ctx context.Context, id any) (*T, error) {
	if err := r.setDeleted(ctx, "restore", id, false); err != nil {
		return nil, err
	}
	return r.getByID(ctx, id, false)
}

func (r *baseRepositoryImpl[T]) RestoreMany(ctx context.Context, filters []*types.Predicate) (int64, error) {
	return r.setDeletedMany(ctx, "restoreMany", filters, false)
}

func (r *baseRepositoryImpl[T]) HardDelete(ctx context.Context, id any) error {
	pk, err := r.pk()
	if err != nil {
		return err
	}
	err = r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().Model((*T)(nil)).
			Where("?TableAlias.? = ?", bun.Ident(pk.Name), id).
			Exec(ctx)
		return err
	})
	if err != nil {
		return &DatabaseError{Op: "hardDelete", Err: err}
	}
	return nil
}

func (r *baseRepositoryImpl[T]) HardDeleteMany(ctx context.Context, filters []*types.Predicate) (int64, error) {
	if err := checkBulkFilters(filters); err != nil {
		return 0, err
	}
	var affected int64
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		q := tx.NewDelete().Model((*T)(nil))
		for _, p := range filters {
			q = q.Where(p.Expr, p.Args...)
		}
		res, err := q.Exec(ctx)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, &DatabaseError{Op: "hardDeleteMany", Err: err}
	}
	return affected, nil
}

func (r *baseRepositoryImpl[T]) Paginate(ctx context.Context, page, perPage int, columns []string, orderBy []*types.Ordering, filters []*types.Predicate) ([]*T, int, error) {
	if page < 1 {
		page = types.DefaultPage
	}
	if perPage < 1 {
		perPage = types.DefaultPerPage
	}

	var entities []*T
	q := r.applyToSelect(r.db.NewSelect().Model(&entities), columns, orderBy, filters)
	total, err := q.Count(ctx)
	if err != nil {
		return nil, 0, &DatabaseError{Op: "paginate", Err: err}
	}
	if total == 0 {
		return make([]*T, 0), 0, nil
	}

	q = q.Offset((page - 1) * perPage).Limit(perPage)
	if err := q.Scan(ctx); err != nil {
		return nil, 0, &DatabaseError{Op: "paginate", Err: err}
	}
	return entities, total, nil
}

func (r *baseRepositoryImpl[T]) Upsert(ctx context.Context, entity *T, matchFields []string) (*T, bool, error) {
	if len(matchFields) == 0 {
		return nil, false, fmt.Errorf("match fields cannot be empty")
	}
	for _, column := range matchFields {
		if _, ok := r.table.FieldMap[column]; !ok {
			return nil, false, &UnknownColumnError{Model: r.table.TypeName, Column: column}
		}
	}

	value := reflect.ValueOf(entity).Elem()
	var created bool
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var existing T
		q := tx.NewSelect().Model(&existing)
		for _, column := range matchFields {
			field := r.table.FieldMap[column]
			q = q.Where("?TableAlias.? = ?", bun.Ident(column), field.Value(value).Interface())
		}
		err := q.Limit(1).Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			created = true
			_, err := tx.NewInsert().Model(entity).Exec(ctx)
			return err
		}
		if err != nil {
			return err
		}

		// Carry the existing primary key onto the incoming entity so the
		// update targets the matched row.
		existingValue := reflect.ValueOf(&existing).Elem()
		for _, pk := range r.table.PKs {
			pk.Value(value).Set(pk.Value(existingValue))
		}
		_, err = tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
		return err
	})
	if err != nil {
		return nil, false, &DatabaseError{Op: "upsert", Err: err}
	}
	return entity, created, nil
}
