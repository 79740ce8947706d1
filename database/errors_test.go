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
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func TestClassifyMySQLErrors(t *testing.T) {
	tests := []struct {
		number uint16
		want   SQLErrorKind
	}{
		{1062, KindDuplicateKey},
		{1048, KindNotNullViolation},
		{1451, KindForeignKeyViolation},
		{1452, KindForeignKeyViolation},
		{3819, KindCheckViolation},
		{1265, KindDataTruncated},
		{1054, KindUndefinedColumn},
		{1146, KindUndefinedTable},
		{1040, KindUnknown},
	}
	for _, tt := range tests {
		err := &mysql.MySQLError{Number: tt.number, Message: "test"}
		assert.Equal(t, tt.want, ClassifyError(err), "error number %d", tt.number)
	}
}

func TestClassifyWrappedError(t *testing.T) {
	err := fmt.Errorf("insert failed: %w", &mysql.MySQLError{Number: 1062, Message: "dup"})
	assert.Equal(t, KindDuplicateKey, ClassifyError(err))
}

func TestClassifyByMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want SQLErrorKind
	}{
		{`pq: duplicate key value violates unique constraint "users_email_key"`, KindDuplicateKey},
		{"UNIQUE constraint failed: users.email", KindDuplicateKey},
		{"NOT NULL constraint failed: users.name", KindNotNullViolation},
		{`null value in column "name" violates not-null constraint`, KindNotNullViolation},
		{"FOREIGN KEY constraint failed", KindForeignKeyViolation},
		{"ERROR: value too long for type (SQLSTATE 22001)", KindDataTruncated},
		{"no such column: nickname", KindUndefinedColumn},
		{"no such table: ghosts", KindUndefinedTable},
		{"connection refused", KindUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyError(errors.New(tt.msg)), "message %q", tt.msg)
	}
}

func TestClassifyNil(t *testing.T) {
	assert.Equal(t, KindUnknown, ClassifyError(nil))
}

func TestSQLErrorKindString(t *testing.T) {
	assert.Equal(t, "duplicate_key", KindDuplicateKey.String())
	assert.Equal(t, "unknown", KindUnknown.String())
}
