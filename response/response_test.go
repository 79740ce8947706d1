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

package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/wingbase/types"
)

func TestSuccess(t *testing.T) {
	body := Success(map[string]string{"name": "alice"})
	assert.Equal(t, 200, body.Code)
	assert.Equal(t, "success", body.Message)
	assert.NotEmpty(t, body.Timestamp)
	assert.NotNil(t, body.Data)
	assert.Nil(t, body.Meta)
}

func TestError(t *testing.T) {
	body := Error(404, "record not found")
	assert.Equal(t, 404, body.Code)
	assert.Equal(t, "record not found", body.Message)
	assert.Nil(t, body.Data)
}

func TestPageEnvelope(t *testing.T) {
	type item struct{ ID int }
	items := []*item{{ID: 11}, {ID: 12}}

	body := Page(types.NewPagination(2, 10, 25, items))
	require.NotNil(t, body.Meta)
	assert.Equal(t, 2, body.Meta.Page)
	assert.Equal(t, 10, body.Meta.PerPage)
	assert.Equal(t, 25, body.Meta.Total)
	assert.Equal(t, 3, body.Meta.Pages)
	assert.Equal(t, items, body.Data)
}

func TestEnvelopeJSONShape(t *testing.T) {
	raw, err := json.Marshal(SuccessMessage("deleted"))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Contains(t, decoded, "timestamp")
	assert.Contains(t, decoded, "code")
	assert.Contains(t, decoded, "message")
	// Empty data and meta are omitted from the wire form.
	assert.NotContains(t, decoded, "data")
	assert.NotContains(t, decoded, "meta")
}
