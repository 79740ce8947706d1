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

	"github.com/tomoncle/wingbase/types"
)

// InvalidFieldError reports a filter or sort field path that does not resolve
// on the entity type. Raised before any I/O.
type InvalidFieldError struct {
	Model string
	Field string
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid field %q for model %s", e.Field, e.Model)
}

// UnsupportedOperatorError reports a filter operator outside the fixed set.
type UnsupportedOperatorError struct {
	Operator types.FilterOperator
}

func (e *UnsupportedOperatorError) Error() string {
	return fmt.Sprintf("unsupported operator: %s", e.Operator)
}

// UnsupportedSortOrderError reports a sort direction other than ASC or DESC.
type UnsupportedSortOrderError struct {
	Order types.SortOrder
}

func (e *UnsupportedSortOrderError) Error() string {
	return fmt.Sprintf("unsupported sort order: %s", e.Order)
}
