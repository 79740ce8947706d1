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

// Package response defines the JSON envelope returned by API handlers built
// on this library, including pagination metadata.
package response

import (
	"time"

	"github.com/tomoncle/wingbase/types"
)

// Body is the JSON envelope wrapping every API response.
type Body struct {
	Timestamp string      `json:"timestamp"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Meta      *PageMeta   `json:"meta,omitempty"`
}

// PageMeta carries pagination details for list responses.
type PageMeta struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Total   int `json:"total"`
	Pages   int `json:"pages"`
}

func now() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// Success wraps data in a 200 envelope.
func Success(data interface{}) *Body {
	return &Body{
		Timestamp: now(),
		Code:      200,
		Message:   "success",
		Data:      data,
	}
}

// SuccessMessage builds a 200 envelope with a custom message and no data.
func SuccessMessage(message string) *Body {
	return &Body{
		Timestamp: now(),
		Code:      200,
		Message:   message,
	}
}

// Error builds an envelope carrying an error code and message.
func Error(code int, message string) *Body {
	return &Body{
		Timestamp: now(),
		Code:      code,
		Message:   message,
	}
}

// Page wraps a pagination result in a 200 envelope with page metadata.
func Page[T any](p *types.Pagination[T]) *Body {
	return &Body{
		Timestamp: now(),
		Code:      200,
		Message:   "success",
		Data:      p.Items,
		Meta: &PageMeta{
			Page:    p.Page,
			PerPage: p.PerPage,
			Total:   p.Total,
			Pages:   p.Pages(),
		},
	}
}
