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

// Defaults applied when the request omits pagination values.
const (
	DefaultPage    = 1
	DefaultPerPage = 20
	DefaultLimit   = 10
)

// Pagination holds one page of results along with pagination metadata.
// Total reflects the size of the filtered set ignoring page bounds.
type Pagination[T any] struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	Items   []*T `json:"items"`
}

// NewPagination wraps one page of items with its pagination metadata.
func NewPagination[T any](page, perPage, total int, items []*T) *Pagination[T] {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if items == nil {
		items = make([]*T, 0)
	}
	return &Pagination[T]{Page: page, PerPage: perPage, Total: total, Items: items}
}

// Pages returns the number of pages needed to cover Total.
func (p *Pagination[T]) Pages() int {
	if p.PerPage < 1 || p.Total < 1 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}
