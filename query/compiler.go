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

package query

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/wingbase/types"
)

// SoftDeleteColumn is the entity column that marks a row as soft-deleted.
// Entities without this column are unaffected by soft-delete filtering.
const SoftDeleteColumn = "is_deleted"

// Column is a resolved field path. Expr is a Bun query fragment referencing
// the column; Relation names the relation that must be joined, or is empty
// for columns on the base table.
type Column struct {
	Expr     string
	Relation string
}

func (c *Column) relations() []string {
	if c.Relation == "" {
		return nil
	}
	return []string{c.Relation}
}

// Compiler translates a declarative query description into Bun predicates
// for one entity type. It is pure: compilation never touches the database,
// so a single compiler serves any number of concurrent repository calls.
type Compiler[T any] struct {
	table *schema.Table
}

// NewCompiler builds a compiler for T using the dialect's table metadata.
func NewCompiler[T any](dialect schema.Dialect) *Compiler[T] {
	return &Compiler[T]{table: dialect.Tables().Get(reflect.TypeOf((*T)(nil)).Elem())}
}

// ResolveField walks a dot-separated field path one segment at a time.
// A single relation hop is supported: "profile.email" resolves the email
// column of the Profile relation. Unknown segments fail with
// InvalidFieldError naming the full path.
func (c *Compiler[T]) ResolveField(path string) (*Column, error) {
	parts := strings.Split(path, ".")
	switch len(parts) {
	case 1:
		field, ok := c.table.FieldMap[parts[0]]
		if !ok {
			return nil, &InvalidFieldError{Model: c.table.TypeName, Field: path}
		}
		return &Column{Expr: "?TableAlias." + field.Name}, nil
	case 2:
		rel := c.relation(parts[0])
		if rel == nil {
			return nil, &InvalidFieldError{Model: c.table.TypeName, Field: path}
		}
		field, ok := rel.JoinTable.FieldMap[parts[1]]
		if !ok {
			return nil, &InvalidFieldError{Model: c.table.TypeName, Field: path}
		}
		return &Column{
			Expr:     fmt.Sprintf("%s.%s", rel.Field.Name, field.Name),
			Relation: rel.Field.GoName,
		}, nil
	default:
		return nil, &InvalidFieldError{Model: c.table.TypeName, Field: path}
	}
}

func (c *Compiler[T]) relation(name string) *schema.Relation {
	for relName, rel := range c.table.Relations {
		if strings.EqualFold(relName, name) || rel.Field.Name == name {
			return rel
		}
	}
	return nil
}

// CompileFilter builds one predicate from a field/operator/value triple.
// The like and ilike operators pass the value through untouched; starts,
// ends, and cont wrap it with % wildcards.
func (c *Compiler[T]) CompileFilter(filter types.QueryFilter) (*types.Predicate, error) {
	col, err := c.ResolveField(filter.Field)
	if err != nil {
		return nil, err
	}

	var expr string
	var args []interface{}
	value := filter.Value

	switch filter.Operator {
	case types.OpEq:
		expr, args = col.Expr+" = ?", []interface{}{value}
	case types.OpNe:
		expr, args = col.Expr+" != ?", []interface{}{value}
	case types.OpGt:
		expr, args = col.Expr+" > ?", []interface{}{value}
	case types.OpLt:
		expr, args = col.Expr+" < ?", []interface{}{value}
	case types.OpGte:
		expr, args = col.Expr+" >= ?", []interface{}{value}
	case types.OpLte:
		expr, args = col.Expr+" <= ?", []interface{}{value}
	case types.OpIn:
		expr, args = col.Expr+" IN (?)", []interface{}{bun.In(value)}
	case types.OpNin:
		expr, args = col.Expr+" NOT IN (?)", []interface{}{bun.In(value)}
	case types.OpLike:
		expr, args = col.Expr+" LIKE ?", []interface{}{value}
	case types.OpILike:
		// LOWER on both sides keeps the semantics identical across
		// Postgres, MySQL, and SQLite.
		expr, args = fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", col.Expr), []interface{}{value}
	case types.OpStarts:
		expr, args = col.Expr+" LIKE ?", []interface{}{fmt.Sprintf("%v%%", value)}
	case types.OpEnds:
		expr, args = col.Expr+" LIKE ?", []interface{}{fmt.Sprintf("%%%v", value)}
	case types.OpCont:
		expr, args = col.Expr+" LIKE ?", []interface{}{fmt.Sprintf("%%%v%%", value)}
	case types.OpIsNull:
		expr = col.Expr + " IS NULL"
	case types.OpNotNull:
		expr = col.Expr + " IS NOT NULL"
	default:
		return nil, &UnsupportedOperatorError{Operator: filter.Operator}
	}

	return &types.Predicate{Expr: expr, Args: args, Relations: col.relations()}, nil
}

// CompileFilters compiles the AND-ed filter list, preserving input order.
// When the entity exposes an is_deleted column and parsed.WithDeleted is
// false, a predicate excluding soft-deleted rows is prepended; entity types
// without the column are unaffected.
func (c *Compiler[T]) CompileFilters(parsed *types.ParsedRequestParams) ([]*types.Predicate, error) {
	if parsed == nil {
		parsed = &types.ParsedRequestParams{}
	}

	predicates := make([]*types.Predicate, 0, len(parsed.Filter)+1)
	if !parsed.WithDeleted && c.SoftDeletable() {
		predicates = append(predicates, types.NewPredicate("?TableAlias."+SoftDeleteColumn+" = ?", false))
	}

	for _, filter := range parsed.Filter {
		p, err := c.CompileFilter(filter)
		if err != nil {
			return nil, err
		}
		predicates = append(predicates, p)
	}
	return predicates, nil
}

// CompileOr compiles the OR-ed filter list into a single predicate.
// An empty list compiles to no condition at all: the method returns nil and
// callers omit it, so an absent or_ never constrains the result set.
func (c *Compiler[T]) CompileOr(parsed *types.ParsedRequestParams) (*types.Predicate, error) {
	if parsed == nil || len(parsed.Or) == 0 {
		return nil, nil
	}

	exprs := make([]string, 0, len(parsed.Or))
	var args []interface{}
	var relations []string
	for _, filter := range parsed.Or {
		p, err := c.CompileFilter(filter)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, p.Expr)
		args = append(args, p.Args...)
		relations = mergeRelations(relations, p.Relations)
	}

	return &types.Predicate{
		Expr:      "(" + strings.Join(exprs, " OR ") + ")",
		Args:      args,
		Relations: relations,
	}, nil
}

// CompileSort resolves every sort directive into an ORDER BY expression,
// first-listed first.
func (c *Compiler[T]) CompileSort(parsed *types.ParsedRequestParams) ([]*types.Ordering, error) {
	if parsed == nil {
		return nil, nil
	}

	orderings := make([]*types.Ordering, 0, len(parsed.Sort))
	for _, s := range parsed.Sort {
		if !s.Order.IsValid() {
			return nil, &UnsupportedSortOrderError{Order: s.Order}
		}
		col, err := c.ResolveField(s.Field)
		if err != nil {
			return nil, err
		}
		orderings = append(orderings, &types.Ordering{
			Expr:      col.Expr + " " + s.Order.Name(),
			Relations: col.relations(),
		})
	}
	return orderings, nil
}

// CompileColumns resolves the projection list into column names on the base
// table. Relation columns cannot be projected.
func (c *Compiler[T]) CompileColumns(parsed *types.ParsedRequestParams) ([]string, error) {
	if parsed == nil || len(parsed.Fields) == 0 {
		return nil, nil
	}

	columns := make([]string, 0, len(parsed.Fields))
	for _, path := range parsed.Fields {
		col, err := c.ResolveField(path)
		if err != nil {
			return nil, err
		}
		if col.Relation != "" {
			return nil, &InvalidFieldError{Model: c.table.TypeName, Field: path}
		}
		columns = append(columns, strings.TrimPrefix(col.Expr, "?TableAlias."))
	}
	return columns, nil
}

// SoftDeletable reports whether the entity exposes the soft-delete column.
func (c *Compiler[T]) SoftDeletable() bool {
	_, ok := c.table.FieldMap[SoftDeleteColumn]
	return ok
}

func mergeRelations(dst []string, src []string) []string {
next:
	for _, rel := range src {
		for _, existing := range dst {
			if existing == rel {
				continue next
			}
		}
		dst = append(dst, rel)
	}
	return dst
}
