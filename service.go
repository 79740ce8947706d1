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

// Package wingbase assembles the query compiler and the generic repository
// into a ready-to-use service layer for one entity type. A service accepts
// parsed request parameters, compiles them into predicates, and executes
// them through the repository.
package wingbase

import (
	"context"
	"sync"

	"github.com/uptrace/bun"

	"github.com/tomoncle/wingbase/database"
	"github.com/tomoncle/wingbase/query"
	"github.com/tomoncle/wingbase/repository"
	"github.com/tomoncle/wingbase/types"
)

// Service exposes entity operations driven by parsed request parameters.
// Query compilation happens before any statement is sent, so an invalid
// field or operator fails without touching the database.
type Service[T any] interface {
	// Get returns a single entity by its identifier, excluding soft-deleted
	// rows.
	Get(ctx context.Context, id any) (*T, error)

	// GetWithDeleted returns a single entity by its identifier, including
	// soft-deleted rows.
	GetWithDeleted(ctx context.Context, id any) (*T, error)

	// GetBy returns the first entity matching the parameters.
	GetBy(ctx context.Context, params *types.ParsedRequestParams) (*T, error)

	// GetMany returns an offset/limit window of matching entities.
	GetMany(ctx context.Context, params *types.ParsedRequestParams) ([]*T, error)

	// GetAll returns every matching entity.
	GetAll(ctx context.Context, params *types.ParsedRequestParams) ([]*T, error)

	// Count returns the number of matching entities.
	Count(ctx context.Context, params *types.ParsedRequestParams) (int, error)

	// Exists reports whether any entity matches.
	Exists(ctx context.Context, params *types.ParsedRequestParams) (bool, error)

	// Paginate returns a page of matching entities with the filtered total.
	Paginate(ctx context.Context, params *types.ParsedRequestParams) (*types.Pagination[T], error)

	// Create inserts a new entity.
	Create(ctx context.Context, entity *T) (*T, error)

	// CreateMany inserts entities in one all-or-nothing transaction.
	CreateMany(ctx context.Context, entities []*T) ([]*T, error)

	// Update applies a partial column update to one entity.
	Update(ctx context.Context, id any, values map[string]interface{}) (*T, error)

	// UpdateMany applies a partial column update to every matching entity.
	UpdateMany(ctx context.Context, params *types.ParsedRequestParams, values map[string]interface{}) (int64, error)

	// Upsert updates the entity matching on matchFields or inserts it,
	// reporting true when a new row was created.
	Upsert(ctx context.Context, entity *T, matchFields []string) (*T, bool, error)

	// Delete soft-deletes one entity; missing or already deleted rows are a
	// no-op.
	Delete(ctx context.Context, id any) error

	// DeleteMany soft-deletes every matching entity.
	DeleteMany(ctx context.Context, params *types.ParsedRequestParams) (int64, error)

	// Restore reverses a soft delete and returns the entity.
	Restore(ctx context.Context, id any) (*T, error)

	// RestoreMany reverses the soft delete on every matching entity.
	RestoreMany(ctx context.Context, params *types.ParsedRequestParams) (int64, error)

	// HardDelete removes one entity irreversibly.
	HardDelete(ctx context.Context, id any) error

	// HardDeleteMany removes every matching entity irreversibly.
	HardDeleteMany(ctx context.Context, params *types.ParsedRequestParams) (int64, error)

	// Repository returns the underlying repository for advanced use cases.
	Repository() repository.Repository[T]

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery

	// InsertBuilder returns a Bun insert query builder for the entity.
	InsertBuilder() *bun.InsertQuery

	// UpdateBuilder returns a Bun update query builder for the entity.
	UpdateBuilder() *bun.UpdateQuery

	// DeleteBuilder returns a Bun delete query builder for the entity.
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	db       *bun.DB
	repo     repository.Repository[T]
	compiler *query.Compiler[T]
	once     sync.Once
}

// NewService returns a Service bound lazily to the global database
// connection. The binding happens on first use, so services may be declared
// before database.InitDB runs.
func NewService[T any]() Service[T] {
	return &baseServiceImpl[T]{}
}

// NewServiceWithDB returns a Service bound to the given database.
func NewServiceWithDB[T any](db *bun.DB) Service[T] {
	return &baseServiceImpl[T]{db: db}
}

func (s *baseServiceImpl[T]) bind() {
	s.once.Do(func() {
		if s.db == nil {
			s.db = database.GetDB()
		}
		s.repo = repository.NewRepository[T](s.db)
		s.compiler = query.NewCompiler[T](s.db.Dialect())
	})
}

func (s *baseServiceImpl[T]) baseRepo() repository.Repository[T] {
	s.bind()
	return s.repo
}

func (s *baseServiceImpl[T]) baseCompiler() *query.Compiler[T] {
	s.bind()
	return s.compiler
}

// compileQuery compiles filters, or-group, sort, and projection in one pass.
// The or-group predicate, when present, is appended after the AND filters.
func (s *baseServiceImpl[T]) compileQuery(params *types.ParsedRequestParams) ([]string, []*types.Ordering, []*types.Predicate, error) {
	c := s.baseCompiler()

	filters, err := c.CompileFilters(params)
	if err != nil {
		return nil, nil, nil, err
	}
	or, err := c.CompileOr(params)
	if err != nil {
		return nil, nil, nil, err
	}
	if or != nil {
		filters = append(filters, or)
	}
	orderBy, err := c.CompileSort(params)
	if err != nil {
		return nil, nil, nil, err
	}
	columns, err := c.CompileColumns(params)
	if err != nil {
		return nil, nil, nil, err
	}
	return columns, orderBy, filters, nil
}

// compileFilters compiles only the filter portion, for operations that take
// no projection or ordering.
func (s *baseServiceImpl[T]) compileFilters(params *types.ParsedRequestParams) ([]*types.Predicate, error) {
	c := s.baseCompiler()

	filters, err := c.CompileFilters(params)
	if err != nil {
		return nil, err
	}
	or, err := c.CompileOr(params)
	if err != nil {
		return nil, err
	}
	if or != nil {
		filters = append(filters, or)
	}
	return filters, nil
}

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().Get(ctx, id)
}

func (s *baseServiceImpl[T]) GetWithDeleted(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().GetWithDeleted(ctx, id)
}

func (s *baseServiceImpl[T]) GetBy(ctx context.Context, params *types.ParsedRequestParams) (*T, error) {
	_, orderBy, filters, err := s.compileQuery(params)
	if err != nil {
		return nil, err
	}
	return s.baseRepo().GetBy(ctx, orderBy, filters)
}

func (s *baseServiceImpl[T]) GetMany(ctx context.Context, params *types.ParsedRequestParams) ([]*T, error) {
	columns, orderBy, filters, err := s.compileQuery(params)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &types.ParsedRequestParams{}
	}
	return s.baseRepo().GetMany(ctx, params.GetOffset(), params.GetLimit(), columns, orderBy, filters)
}

func (s *baseServiceImpl[T]) GetAll(ctx context.Context, params *types.ParsedRequestParams) ([]*T, error) {
	columns, orderBy, filters, err := s.compileQuery(params)
	if err != nil {
		return nil, err
	}
	return s.baseRepo().GetAll(ctx, columns, orderBy, filters)
}

func (s *baseServiceImpl[T]) Count(ctx context.Context, params *types.ParsedRequestParams) (int, error) {
	filters, err := s.compileFilters(params)
	if err != nil {
		return 0, err
	}
	return s.baseRepo().Count(ctx, filters)
}

func (s *baseServiceImpl[T]) Exists(ctx context.Context, params *types.ParsedRequestParams) (bool, error) {
	filters, err := s.compileFilters(params)
	if err != nil {
		return false, err
	}
	return s.baseRepo().Exists(ctx, filters)
}

func (s *baseServiceImpl[T]) Paginate(ctx context.Context, params *types.ParsedRequestParams) (*types.Pagination[T], error) {
	columns, orderBy, filters, err := s.compileQuery(params)
	if err != nil {
		return nil, err
	}
	if params == nil {
		params = &types.ParsedRequestParams{}
	}
	page, perPage := params.GetPage(), params.GetPerPage()

	items, total, err := s.baseRepo().Paginate(ctx, page, perPage, columns, orderBy, filters)
	if err != nil {
		return nil, err
	}
	return types.NewPagination(page, perPage, total, items), nil
}

func (s *baseServiceImpl[T]) Create(ctx context.Context, entity *T) (*T, error) {
	return s.baseRepo().Create(ctx, entity)
}

func (s *baseServiceImpl[T]) CreateMany(ctx context.Context, entities []*T) ([]*T, error) {
	return s.baseRepo().CreateMany(ctx, entities)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, id any, values map[string]interface{}) (*T, error) {
	return s.baseRepo().Update(ctx, id, values)
}

func (s *baseServiceImpl[T]) UpdateMany(ctx context.Context, params *types.ParsedRequestParams, values map[string]interface{}) (int64, error) {
	filters, err := s.compileFilters(params)
	if err != nil {
		return 0, err
	}
	return s.baseRepo().UpdateMany(ctx, filters, values)
}

func (s *baseServiceImpl[T]) Upsert(ctx context.Context, entity *T, matchFields []string) (*T, bool, error) {
	return s.baseRepo().Upsert(ctx, entity, matchFields)
}

func (s *baseServiceImpl[T]) Delete(ctx context.Context, id any) error {
	return s.baseRepo().Delete(ctx, id)
}

func (s *baseServiceImpl[T]) DeleteMany(ctx context.Context, params *types.ParsedRequestParams) (int64, error) {
	filters, err := s.compileFilters(params)
	if err != nil {
		return 0, err
	}
	return s.baseRepo().DeleteMany(ctx, filters)
}

func (s *baseServiceImpl[T]) Restore(ctx context.Context, id any) (*T, error) {
	return s.baseRepo().Restore(ctx, id)
}

func (s *baseServiceImpl[T]) RestoreMany(ctx context.Context, params *types.ParsedRequestParams) (int64, error) {
	// Restore targets rows that are soft-deleted, so the visibility filter
	// must include them.
	withDeleted := s.withDeleted(params)
	filters, err := s.compileFilters(withDeleted)
	if err != nil {
		return 0, err
	}
	return s.baseRepo().RestoreMany(ctx, filters)
}

func (s *baseServiceImpl[T]) HardDelete(ctx context.Context, id any) error {
	return s.baseRepo().HardDelete(ctx, id)
}

func (s *baseServiceImpl[T]) HardDeleteMany(ctx context.Context, params *types.ParsedRequestParams) (int64, error) {
	filters, err := s.compileFilters(params)
	if err != nil {
		return 0, err
	}
	return s.baseRepo().HardDeleteMany(ctx, filters)
}

func (s *baseServiceImpl[T]) withDeleted(params *types.ParsedRequestParams) *types.ParsedRequestParams {
	if params == nil {
		return &types.ParsedRequestParams{WithDeleted: true}
	}
	clone := *params
	clone.WithDeleted = true
	return &clone
}

func (s *baseServiceImpl[T]) Repository() repository.Repository[T] {
	return s.baseRepo()
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.baseRepo().NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.baseRepo().NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.baseRepo().NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.baseRepo().NewDelete()
}
