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
	"strings"

	"github.com/go-sql-driver/mysql"
)

// SQLErrorKind classifies a backend failure independently of the driver
// that produced it.
type SQLErrorKind int

const (
	KindUnknown SQLErrorKind = iota
	KindDuplicateKey
	KindNotNullViolation
	KindForeignKeyViolation
	KindCheckViolation
	KindDataTruncated
	KindUndefinedColumn
	KindUndefinedTable
)

func (k SQLErrorKind) String() string {
	switch k {
	case KindDuplicateKey:
		return "duplicate_key"
	case KindNotNullViolation:
		return "not_null_violation"
	case KindForeignKeyViolation:
		return "foreign_key_violation"
	case KindCheckViolation:
		return "check_violation"
	case KindDataTruncated:
		return "data_truncated"
	case KindUndefinedColumn:
		return "undefined_column"
	case KindUndefinedTable:
		return "undefined_table"
	default:
		return "unknown"
	}
}

// ClassifyError maps a driver error to a SQLErrorKind. MySQL errors are
// matched by number; Postgres and SQLite errors by SQLSTATE or message text.
func ClassifyError(err error) SQLErrorKind {
	if err == nil {
		return KindUnknown
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case 1062:
			return KindDuplicateKey
		case 1048:
			return KindNotNullViolation
		case 1216, 1217, 1451, 1452:
			return KindForeignKeyViolation
		case 3819:
			return KindCheckViolation
		case 1265:
			return KindDataTruncated
		case 1054:
			return KindUndefinedColumn
		case 1146:
			return KindUndefinedTable
		default:
			return KindUnknown
		}
	}

	s := strings.ToLower(err.Error())
	switch {
	case strings.Contains(s, "sqlstate 23505"),
		strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"):
		return KindDuplicateKey
	case strings.Contains(s, "sqlstate 23502"),
		strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "not null constraint failed"):
		return KindNotNullViolation
	case strings.Contains(s, "sqlstate 23503"),
		strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "foreign key constraint failed"):
		return KindForeignKeyViolation
	case strings.Contains(s, "sqlstate 23514"),
		strings.Contains(s, "check constraint"):
		return KindCheckViolation
	case strings.Contains(s, "sqlstate 22001"),
		strings.Contains(s, "string data right truncation"),
		strings.Contains(s, "data truncated"):
		return KindDataTruncated
	case strings.Contains(s, "sqlstate 42703"),
		strings.Contains(s, "undefined column"),
		strings.Contains(s, "no such column"):
		return KindUndefinedColumn
	case strings.Contains(s, "sqlstate 42p01"),
		strings.Contains(s, "undefined table"),
		strings.Contains(s, "no such table"):
		return KindUndefinedTable
	}
	return KindUnknown
}
