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

package utils

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLogLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLogLevel("WARNING"))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLogLevel("nonsense"))
}

func TestSetLoggerLevel(t *testing.T) {
	l := NewLogger("LEVELTEST")
	require.Equal(t, logrus.InfoLevel, l.GetLevel())

	assert.True(t, SetLoggerLevel("LEVELTEST", "debug"))
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	assert.False(t, SetLoggerLevel("NO-SUCH-LOGGER", "debug"))
}

func TestNamedColorFormatter(t *testing.T) {
	f := &NamedColorFormatter{LoggerName: "TEST", NameWidth: 10}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.InfoLevel,
		Message: "hello world",
		Data:    logrus.Fields{"b": 2, "a": 1},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	line := string(out)
	assert.Contains(t, line, "hello world")
	// Fields render sorted by key.
	assert.Less(t, strings.Index(line, "a=1"), strings.Index(line, "b=2"))
	assert.True(t, strings.HasSuffix(line, "\n"))
}

func TestJSONLogFormatter(t *testing.T) {
	f := &JSONLogFormatter{LoggerName: "TEST"}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Level:   logrus.WarnLevel,
		Message: "disk almost full",
		Data:    logrus.Fields{"free_mb": 12},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	var rec map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rec))
	assert.Equal(t, "warn", rec["level"])
	assert.Equal(t, "TEST", rec["name"])
	assert.Equal(t, "disk almost full", rec["message"])
	fields, ok := rec["fields"].(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 12, fields["free_mb"])
}

func TestEnvDefaults(t *testing.T) {
	t.Setenv("WINGBASE_TEST_STR", "custom")
	assert.Equal(t, "custom", EnvDefaultString("WINGBASE_TEST_STR", "fallback"))
	assert.Equal(t, "fallback", EnvDefaultString("WINGBASE_TEST_UNSET", "fallback"))

	t.Setenv("WINGBASE_TEST_BOOL", "true")
	assert.True(t, EnvDefaultBool("WINGBASE_TEST_BOOL", false))
	assert.False(t, EnvDefaultBool("WINGBASE_TEST_BOOL_UNSET", false))
}
