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

package wingbase_test

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"github.com/tomoncle/wingbase"
	"github.com/tomoncle/wingbase/query"
	"github.com/tomoncle/wingbase/repository"
	"github.com/tomoncle/wingbase/types"
)

type account struct {
	bun.BaseModel `bun:"table:accounts,alias:a"`

	ID        int64  `bun:"id,pk,autoincrement"`
	Username  string `bun:"username,notnull,unique"`
	Email     string `bun:"email"`
	Age       int    `bun:"age"`
	IsDeleted bool   `bun:"is_deleted,notnull,default:false"`
}

func newServiceDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.NewCreateTable().Model((*account)(nil)).IfNotExists().Exec(context.Background())
	require.NoError(t, err)
	return db
}

func seedAccounts(t *testing.T, svc wingbase.Service[account], n int) {
	t.Helper()
	accounts := make([]*account, 0, n)
	for i := 1; i <= n; i++ {
		accounts = append(accounts, &account{
			Username: fmt.Sprintf("acct-%02d", i),
			Email:    fmt.Sprintf("acct-%02d@example.com", i),
			Age:      20 + i,
		})
	}
	_, err := svc.CreateMany(context.Background(), accounts)
	require.NoError(t, err)
}

func TestServiceQueryLifecycle(t *testing.T) {
	svc := wingbase.NewServiceWithDB[account](newServiceDB(t))
	ctx := context.Background()
	seedAccounts(t, svc, 10)

	got, err := svc.GetMany(ctx, &types.ParsedRequestParams{
		Filter: []types.QueryFilter{{Field: "age", Operator: types.OpGte, Value: 26}},
		Sort:   []types.QuerySort{{Field: "age", Order: types.SortAsc}},
	})
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, "acct-06", got[0].Username)

	one, err := svc.GetBy(ctx, &types.ParsedRequestParams{
		Filter: []types.QueryFilter{{Field: "username", Operator: types.OpEq, Value: "acct-03"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 23, one.Age)

	count, err := svc.Count(ctx, &types.ParsedRequestParams{
		Or: []types.QueryFilter{
			{Field: "username", Operator: types.OpEq, Value: "acct-01"},
			{Field: "username", Operator: types.OpEq, Value: "acct-02"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	exists, err := svc.Exists(ctx, &types.ParsedRequestParams{
		Filter: []types.QueryFilter{{Field: "username", Operator: types.OpStarts, Value: "acct"}},
	})
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestServiceGetManyDefaults(t *testing.T) {
	svc := wingbase.NewServiceWithDB[account](newServiceDB(t))
	ctx := context.Background()
	seedAccounts(t, svc, 15)

	// No explicit window: offset 0, default limit.
	got, err := svc.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, got, types.DefaultLimit)

	all, err := svc.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 15)
}

func TestServicePaginate(t *testing.T) {
	svc := wingbase.NewServiceWithDB[account](newServiceDB(t))
	ctx := context.Background()
	seedAccounts(t, svc, 25)

	page, err := svc.Paginate(ctx, &types.ParsedRequestParams{
		Page:    2,
		PerPage: 10,
		Sort:    []types.QuerySort{{Field: "id", Order: types.SortAsc}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 10, page.PerPage)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 3, page.Pages())
	require.Len(t, page.Items, 10)
	assert.Equal(t, "acct-11", page.Items[0].Username)

	// Defaults apply when the request carries no paging values.
	page, err = svc.Paginate(ctx, &types.ParsedRequestParams{})
	require.NoError(t, err)
	assert.Equal(t, types.DefaultPage, page.Page)
	assert.Equal(t, types.DefaultPerPage, page.PerPage)
	assert.Len(t, page.Items, types.DefaultPerPage)
}

func TestServiceSoftDeleteVisibility(t *testing.T) {
	svc := wingbase.NewServiceWithDB[account](newServiceDB(t))
	ctx := context.Background()
	seedAccounts(t, svc, 5)

	deleted, err := svc.DeleteMany(ctx, &types.ParsedRequestParams{
		Filter: []types.QueryFilter{{Field: "age", Operator: types.OpLte, Value: 22}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	count, err := svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = svc.Count(ctx, &types.ParsedRequestParams{WithDeleted: true})
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	// RestoreMany sees soft-deleted rows without an explicit with_deleted.
	restored, err := svc.RestoreMany(ctx, &types.ParsedRequestParams{
		Filter: []types.QueryFilter{{Field: "age", Operator: types.OpLte, Value: 22}},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, restored)

	count, err = svc.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestServiceCrud(t *testing.T) {
	svc := wingbase.NewServiceWithDB[account](newServiceDB(t))
	ctx := context.Background()

	created, err := svc.Create(ctx, &account{Username: "holly", Email: "holly@example.com", Age: 33})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	updated, err := svc.Update(ctx, created.ID, map[string]interface{}{"email": "h@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "h@example.com", updated.Email)
	assert.Equal(t, 33, updated.Age)

	_, upserted, err := svc.Upsert(ctx, &account{Username: "holly", Email: "h2@example.com", Age: 34}, []string{"username"})
	require.NoError(t, err)
	assert.False(t, upserted)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	got, err := svc.GetWithDeleted(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)

	require.NoError(t, svc.HardDelete(ctx, created.ID))
	_, err = svc.GetWithDeleted(ctx, created.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestServiceProjection(t *testing.T) {
	svc := wingbase.NewServiceWithDB[account](newServiceDB(t))
	ctx := context.Background()
	seedAccounts(t, svc, 3)

	got, err := svc.GetAll(ctx, &types.ParsedRequestParams{
		Fields: []string{"id", "username"},
		Sort:   []types.QuerySort{{Field: "id", Order: types.SortAsc}},
	})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "acct-01", got[0].Username)
	// Unselected columns come back zero-valued.
	assert.Empty(t, got[0].Email)
}

// A query that fails compilation must never reach the database. The mock
// carries zero expectations, so any statement would fail the test.
func TestServiceCompileErrorPerformsNoIO(t *testing.T) {
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	svc := wingbase.NewServiceWithDB[account](db)
	ctx := context.Background()

	var fieldErr *query.InvalidFieldError
	_, err = svc.GetMany(ctx, &types.ParsedRequestParams{
		Filter: []types.QueryFilter{{Field: "missing", Operator: types.OpEq, Value: 1}},
	})
	require.ErrorAs(t, err, &fieldErr)

	var opErr *query.UnsupportedOperatorError
	_, err = svc.Count(ctx, &types.ParsedRequestParams{
		Filter: []types.QueryFilter{{Field: "age", Operator: "between", Value: 1}},
	})
	require.ErrorAs(t, err, &opErr)

	var orderErr *query.UnsupportedSortOrderError
	_, err = svc.GetAll(ctx, &types.ParsedRequestParams{
		Sort: []types.QuerySort{{Field: "age", Order: "sideways"}},
	})
	require.ErrorAs(t, err, &orderErr)

	assert.NoError(t, mock.ExpectationsWereMet())
}
