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

package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/tomoncle/wingbase/query"
	"github.com/tomoncle/wingbase/types"
)

type testProfile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Email string `bun:"email"`
}

type testUser struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64        `bun:"id,pk,autoincrement"`
	Name      string       `bun:"name"`
	Age       int          `bun:"age"`
	IsDeleted bool         `bun:"is_deleted"`
	ProfileID int64        `bun:"profile_id"`
	Profile   *testProfile `bun:"rel:belongs-to,join:profile_id=id"`
}

func newUserCompiler() *query.Compiler[testUser] {
	return query.NewCompiler[testUser](sqlitedialect.New())
}

func TestResolveField(t *testing.T) {
	c := newUserCompiler()

	col, err := c.ResolveField("name")
	require.NoError(t, err)
	assert.Equal(t, "?TableAlias.name", col.Expr)
	assert.Empty(t, col.Relation)

	col, err = c.ResolveField("profile.email")
	require.NoError(t, err)
	assert.Equal(t, "profile.email", col.Expr)
	assert.Equal(t, "Profile", col.Relation)
}

func TestResolveFieldInvalid(t *testing.T) {
	c := newUserCompiler()

	var fieldErr *query.InvalidFieldError

	_, err := c.ResolveField("missing")
	require.ErrorAs(t, err, &fieldErr)
	assert.Equal(t, "missing", fieldErr.Field)

	_, err = c.ResolveField("missing.email")
	require.ErrorAs(t, err, &fieldErr)

	_, err = c.ResolveField("profile.missing")
	require.ErrorAs(t, err, &fieldErr)

	// Only one relation hop is supported.
	_, err = c.ResolveField("profile.email.domain")
	require.ErrorAs(t, err, &fieldErr)
}

func TestCompileFilterOperators(t *testing.T) {
	c := newUserCompiler()

	tests := []struct {
		name     string
		filter   types.QueryFilter
		wantExpr string
		wantArgs []interface{}
	}{
		{"eq", types.QueryFilter{Field: "name", Operator: types.OpEq, Value: "bob"},
			"?TableAlias.name = ?", []interface{}{"bob"}},
		{"ne", types.QueryFilter{Field: "age", Operator: types.OpNe, Value: 30},
			"?TableAlias.age != ?", []interface{}{30}},
		{"gt", types.QueryFilter{Field: "age", Operator: types.OpGt, Value: 30},
			"?TableAlias.age > ?", []interface{}{30}},
		{"lte", types.QueryFilter{Field: "age", Operator: types.OpLte, Value: 30},
			"?TableAlias.age <= ?", []interface{}{30}},
		{"like passes value through", types.QueryFilter{Field: "name", Operator: types.OpLike, Value: "bo%"},
			"?TableAlias.name LIKE ?", []interface{}{"bo%"}},
		{"starts adds suffix wildcard", types.QueryFilter{Field: "name", Operator: types.OpStarts, Value: "bo"},
			"?TableAlias.name LIKE ?", []interface{}{"bo%"}},
		{"ends adds prefix wildcard", types.QueryFilter{Field: "name", Operator: types.OpEnds, Value: "ob"},
			"?TableAlias.name LIKE ?", []interface{}{"%ob"}},
		{"cont wraps with wildcards", types.QueryFilter{Field: "name", Operator: types.OpCont, Value: "abc"},
			"?TableAlias.name LIKE ?", []interface{}{"%abc%"}},
		{"ilike lowercases both sides", types.QueryFilter{Field: "name", Operator: types.OpILike, Value: "BoB"},
			"LOWER(?TableAlias.name) LIKE LOWER(?)", []interface{}{"BoB"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.CompileFilter(tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.wantExpr, p.Expr)
			assert.Equal(t, tt.wantArgs, p.Args)
		})
	}
}

func TestCompileFilterNullAndIn(t *testing.T) {
	c := newUserCompiler()

	p, err := c.CompileFilter(types.QueryFilter{Field: "name", Operator: types.OpIsNull})
	require.NoError(t, err)
	assert.Equal(t, "?TableAlias.name IS NULL", p.Expr)
	assert.Empty(t, p.Args)

	p, err = c.CompileFilter(types.QueryFilter{Field: "name", Operator: types.OpNotNull})
	require.NoError(t, err)
	assert.Equal(t, "?TableAlias.name IS NOT NULL", p.Expr)
	assert.Empty(t, p.Args)

	p, err = c.CompileFilter(types.QueryFilter{Field: "age", Operator: types.OpIn, Value: []int{1, 2, 3}})
	require.NoError(t, err)
	assert.Equal(t, "?TableAlias.age IN (?)", p.Expr)
	require.Len(t, p.Args, 1)

	p, err = c.CompileFilter(types.QueryFilter{Field: "age", Operator: types.OpNin, Value: []int{1, 2}})
	require.NoError(t, err)
	assert.Equal(t, "?TableAlias.age NOT IN (?)", p.Expr)
}

func TestCompileFilterUnsupportedOperator(t *testing.T) {
	c := newUserCompiler()

	_, err := c.CompileFilter(types.QueryFilter{Field: "name", Operator: "between", Value: 1})
	var opErr *query.UnsupportedOperatorError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, types.FilterOperator("between"), opErr.Operator)
}

func TestCompileFiltersSoftDeleteVisibility(t *testing.T) {
	c := newUserCompiler()

	// Default visibility prepends the soft-delete exclusion.
	predicates, err := c.CompileFilters(&types.ParsedRequestParams{
		Filter: []types.QueryFilter{{Field: "age", Operator: types.OpGt, Value: 18}},
	})
	require.NoError(t, err)
	require.Len(t, predicates, 2)
	assert.Equal(t, "?TableAlias.is_deleted = ?", predicates[0].Expr)
	assert.Equal(t, []interface{}{false}, predicates[0].Args)
	assert.Equal(t, "?TableAlias.age > ?", predicates[1].Expr)

	// with_deleted removes the exclusion.
	predicates, err = c.CompileFilters(&types.ParsedRequestParams{
		WithDeleted: true,
		Filter:      []types.QueryFilter{{Field: "age", Operator: types.OpGt, Value: 18}},
	})
	require.NoError(t, err)
	require.Len(t, predicates, 1)
	assert.Equal(t, "?TableAlias.age > ?", predicates[0].Expr)

	// Entity types without an is_deleted column are unaffected.
	pc := query.NewCompiler[testProfile](sqlitedialect.New())
	predicates, err = pc.CompileFilters(&types.ParsedRequestParams{})
	require.NoError(t, err)
	assert.Empty(t, predicates)
}

func TestCompileFiltersPreservesOrder(t *testing.T) {
	c := newUserCompiler()

	predicates, err := c.CompileFilters(&types.ParsedRequestParams{
		WithDeleted: true,
		Filter: []types.QueryFilter{
			{Field: "age", Operator: types.OpGte, Value: 18},
			{Field: "name", Operator: types.OpStarts, Value: "a"},
			{Field: "age", Operator: types.OpLt, Value: 65},
		},
	})
	require.NoError(t, err)
	require.Len(t, predicates, 3)
	assert.Equal(t, "?TableAlias.age >= ?", predicates[0].Expr)
	assert.Equal(t, "?TableAlias.name LIKE ?", predicates[1].Expr)
	assert.Equal(t, "?TableAlias.age < ?", predicates[2].Expr)
}

func TestCompileOr(t *testing.T) {
	c := newUserCompiler()

	// An empty or-group compiles to no condition at all.
	p, err := c.CompileOr(&types.ParsedRequestParams{})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = c.CompileOr(nil)
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = c.CompileOr(&types.ParsedRequestParams{
		Or: []types.QueryFilter{
			{Field: "name", Operator: types.OpEq, Value: "bob"},
			{Field: "age", Operator: types.OpGt, Value: 60},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "(?TableAlias.name = ? OR ?TableAlias.age > ?)", p.Expr)
	assert.Equal(t, []interface{}{"bob", 60}, p.Args)
}

func TestCompileOrCollectsRelations(t *testing.T) {
	c := newUserCompiler()

	p, err := c.CompileOr(&types.ParsedRequestParams{
		Or: []types.QueryFilter{
			{Field: "profile.email", Operator: types.OpEnds, Value: "@example.com"},
			{Field: "profile.email", Operator: types.OpIsNull},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Profile"}, p.Relations)
}

func TestCompileSort(t *testing.T) {
	c := newUserCompiler()

	orderings, err := c.CompileSort(&types.ParsedRequestParams{
		Sort: []types.QuerySort{
			{Field: "age", Order: types.SortDesc},
			{Field: "name", Order: "asc"},
		},
	})
	require.NoError(t, err)
	require.Len(t, orderings, 2)
	assert.Equal(t, "?TableAlias.age DESC", orderings[0].Expr)
	assert.Equal(t, "?TableAlias.name ASC", orderings[1].Expr)

	_, err = c.CompileSort(&types.ParsedRequestParams{
		Sort: []types.QuerySort{{Field: "age", Order: "sideways"}},
	})
	var orderErr *query.UnsupportedSortOrderError
	require.ErrorAs(t, err, &orderErr)

	_, err = c.CompileSort(&types.ParsedRequestParams{
		Sort: []types.QuerySort{{Field: "missing", Order: types.SortAsc}},
	})
	var fieldErr *query.InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
}

func TestCompileColumns(t *testing.T) {
	c := newUserCompiler()

	columns, err := c.CompileColumns(&types.ParsedRequestParams{Fields: []string{"name", "age"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "age"}, columns)

	columns, err = c.CompileColumns(&types.ParsedRequestParams{})
	require.NoError(t, err)
	assert.Nil(t, columns)

	// Relation columns cannot be projected.
	_, err = c.CompileColumns(&types.ParsedRequestParams{Fields: []string{"profile.email"}})
	var fieldErr *query.InvalidFieldError
	require.ErrorAs(t, err, &fieldErr)
}

func TestSoftDeletable(t *testing.T) {
	assert.True(t, newUserCompiler().SoftDeletable())
	assert.False(t, query.NewCompiler[testProfile](sqlitedialect.New()).SoftDeletable())
}
