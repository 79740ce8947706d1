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

package types

import "strings"

// FilterOperator identifies a comparison applied to a single field.
type FilterOperator string

const (
	OpEq      FilterOperator = "eq"
	OpNe      FilterOperator = "ne"
	OpGt      FilterOperator = "gt"
	OpLt      FilterOperator = "lt"
	OpGte     FilterOperator = "gte"
	OpLte     FilterOperator = "lte"
	OpIn      FilterOperator = "in"
	OpNin     FilterOperator = "nin"
	OpLike    FilterOperator = "like"
	OpILike   FilterOperator = "ilike"
	OpStarts  FilterOperator = "starts"
	OpEnds    FilterOperator = "ends"
	OpCont    FilterOperator = "cont"
	OpIsNull  FilterOperator = "isnull"
	OpNotNull FilterOperator = "notnull"
)

var filterOperators = []FilterOperator{
	OpEq, OpNe, OpGt, OpLt, OpGte, OpLte,
	OpIn, OpNin, OpLike, OpILike, OpStarts, OpEnds, OpCont,
	OpIsNull, OpNotNull,
}

var operatorDescriptions = map[FilterOperator]string{
	OpEq:      "equal",
	OpNe:      "not equal",
	OpGt:      "greater than",
	OpLt:      "less than",
	OpGte:     "greater than or equal",
	OpLte:     "less than or equal",
	OpIn:      "value in list",
	OpNin:     "value not in list",
	OpLike:    "pattern match, caller supplies wildcards",
	OpILike:   "case-insensitive pattern match",
	OpStarts:  "prefix match",
	OpEnds:    "suffix match",
	OpCont:    "substring match",
	OpIsNull:  "field is null",
	OpNotNull: "field is not null",
}

var _ BaseEnum = OpEq

func (o FilterOperator) IsValid() bool {
	_, ok := operatorDescriptions[o]
	return ok
}

func (o FilterOperator) Number() int {
	for i, op := range filterOperators {
		if op == o {
			return i
		}
	}
	return IllegalValue
}

func (o FilterOperator) String() string { return string(o) }

func (o FilterOperator) Name() string {
	if !o.IsValid() {
		return IllegalName
	}
	return string(o)
}

func (o FilterOperator) Desc() string {
	if desc, ok := operatorDescriptions[o]; ok {
		return desc
	}
	return IllegalDesc
}

// FilterOperators returns the full set of supported operators.
func FilterOperators() []FilterOperator {
	ops := make([]FilterOperator, len(filterOperators))
	copy(ops, filterOperators)
	return ops
}

// SortOrder identifies the direction of a sort directive.
type SortOrder string

const (
	SortAsc  SortOrder = "ASC"
	SortDesc SortOrder = "DESC"
)

var _ BaseEnum = SortAsc

func (s SortOrder) IsValid() bool {
	switch SortOrder(strings.ToUpper(string(s))) {
	case SortAsc, SortDesc:
		return true
	}
	return false
}

func (s SortOrder) Number() int {
	switch SortOrder(strings.ToUpper(string(s))) {
	case SortAsc:
		return 0
	case SortDesc:
		return 1
	}
	return IllegalValue
}

func (s SortOrder) String() string { return string(s) }

func (s SortOrder) Name() string {
	if !s.IsValid() {
		return IllegalName
	}
	return strings.ToUpper(string(s))
}

func (s SortOrder) Desc() string {
	switch SortOrder(strings.ToUpper(string(s))) {
	case SortAsc:
		return "ascending"
	case SortDesc:
		return "descending"
	}
	return IllegalDesc
}

// QueryFilter is one declarative field/operator/value triple. Field is a
// dot-separated path into the entity; a single relation hop is allowed,
// e.g. "profile.email".
type QueryFilter struct {
	Field    string         `json:"field"`
	Operator FilterOperator `json:"operator"`
	Value    interface{}    `json:"value"`
}

// QuerySort is one declarative sort directive.
type QuerySort struct {
	Field string    `json:"field"`
	Order SortOrder `json:"order"`
}

// ParsedRequestParams is the declarative query description handed in by the
// request-handling layer. It is never mutated by this library. Pagination is
// either page-based (Page/PerPage, used by Paginate) or window-based
// (Offset/Limit, used by GetMany); the two are not reconciled.
type ParsedRequestParams struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`

	Fields      []string      `json:"fields"`
	Filter      []QueryFilter `json:"filter"`
	Or          []QueryFilter `json:"or"`
	Sort        []QuerySort   `json:"sort"`
	WithDeleted bool          `json:"with_deleted"`
}

// GetPage returns the 1-indexed page, defaulting when unset.
func (p *ParsedRequestParams) GetPage() int {
	if p.Page < 1 {
		return DefaultPage
	}
	return p.Page
}

// GetPerPage returns the page size, defaulting when unset.
func (p *ParsedRequestParams) GetPerPage() int {
	if p.PerPage < 1 {
		return DefaultPerPage
	}
	return p.PerPage
}

// GetOffset returns the window offset, clamped to zero.
func (p *ParsedRequestParams) GetOffset() int {
	if p.Offset < 0 {
		return 0
	}
	return p.Offset
}

// GetLimit returns the window size, defaulting when unset so that list
// queries are never unbounded by accident.
func (p *ParsedRequestParams) GetLimit() int {
	if p.Limit < 1 {
		return DefaultLimit
	}
	return p.Limit
}
