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
	"errors"
	"fmt"

	"github.com/tomoncle/wingbase/database"
)

// ErrNotFound reports that a single-entity lookup matched no row. It is a
// local condition, not a backend failure; callers decide whether it is an
// error at all.
var ErrNotFound = errors.New("record not found")

// ErrRelationFilter reports a relation-traversing predicate handed to a bulk
// mutation. Joins are only available on select queries.
var ErrRelationFilter = errors.New("relation filters are not supported for bulk operations")

// DatabaseError wraps any backend failure surfaced by a repository
// operation. The in-flight transaction has already been rolled back when it
// is returned. Callers never need to inspect driver error types: the
// original cause is carried for diagnostics only.
type DatabaseError struct {
	Op  string
	Err error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database error in %s: %v", e.Op, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// Kind classifies the underlying cause, e.g. a duplicate key or a foreign
// key violation, without exposing the driver error.
func (e *DatabaseError) Kind() database.SQLErrorKind {
	return database.ClassifyError(e.Err)
}

// SoftDeleteUnsupportedError reports a soft-delete or restore call against
// an entity type that has no is_deleted column.
type SoftDeleteUnsupportedError struct {
	Model string
}

func (e *SoftDeleteUnsupportedError) Error() string {
	return fmt.Sprintf("model %s does not support soft delete", e.Model)
}

// UnknownColumnError reports an update value or upsert match field that is
// not a column of the entity type. Raised before any I/O.
type UnknownColumnError struct {
	Model  string
	Column string
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %q for model %s", e.Column, e.Model)
}
