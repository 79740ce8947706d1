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

// Predicate is a compiled boolean expression with its bound arguments.
// Expr is a Bun query fragment; Args may contain bun.In wrappers. Relations
// lists relation names that must be joined for the expression to resolve.
// Predicates are ephemeral: they live for a single repository call.
type Predicate struct {
	Expr      string
	Args      []interface{}
	Relations []string
}

// NewPredicate creates a predicate with expression and args.
func NewPredicate(expr string, args ...interface{}) *Predicate {
	return &Predicate{Expr: expr, Args: args}
}

// Ordering is a compiled ORDER BY expression.
type Ordering struct {
	Expr      string
	Relations []string
}
