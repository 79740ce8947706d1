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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
)

// Logger is the logger type handed out by NewLogger.
type Logger = logrus.Logger

var (
	defaultLevel     = logrus.InfoLevel
	loggerRegistryMu sync.RWMutex
	loggerRegistry   = map[string]*logrus.Logger{}
	consoleLogFormat = EnvDefaultString("CONSOLE_LOG_FORMAT", "text")
)

// NewLogger returns a named logger writing colored, log4j-style lines to
// stdout, or JSON lines when CONSOLE_LOG_FORMAT=json. Loggers are registered
// by name so levels can be adjusted at runtime.
func NewLogger(name string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(defaultLevel)
	l.SetReportCaller(true)

	var formatter logrus.Formatter
	if consoleLogFormat == "json" {
		formatter = &JSONLogFormatter{LoggerName: name}
	} else {
		formatter = &NamedColorFormatter{LoggerName: name, NameWidth: 10}
	}
	l.SetFormatter(formatter)

	RegisterLogger(name, l)
	return l
}

// RegisterLogger adds a logger to the registry, replacing any previous one
// with the same name.
func RegisterLogger(name string, l *logrus.Logger) {
	loggerRegistryMu.Lock()
	defer loggerRegistryMu.Unlock()
	loggerRegistry[name] = l
}

// SetLoggerLevel adjusts one registered logger's level. Returns false when
// no logger with the name exists.
func SetLoggerLevel(name string, lvlStr string) bool {
	lvl := ParseLogLevel(lvlStr)
	loggerRegistryMu.RLock()
	l, ok := loggerRegistry[name]
	loggerRegistryMu.RUnlock()
	if !ok {
		return false
	}
	l.SetLevel(lvl)
	return true
}

// SetAllLoggersLevel adjusts every registered logger and the default level
// for loggers created afterwards.
func SetAllLoggersLevel(lvl logrus.Level) {
	loggerRegistryMu.Lock()
	defaultLevel = lvl
	for _, l := range loggerRegistry {
		l.SetLevel(lvl)
	}
	loggerRegistryMu.Unlock()
}

// ConfigureLogLevel parses a level name and applies it to all loggers.
func ConfigureLogLevel(levelStr string) {
	SetAllLoggersLevel(ParseLogLevel(levelStr))
}

// ParseLogLevel maps a level name to a logrus level, defaulting to info.
func ParseLogLevel(s string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info", "":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

var (
	levelErrorColor = color.New(color.FgRed)
	levelWarnColor  = color.New(color.FgYellow)
	levelInfoColor  = color.New(color.FgGreen)
	levelDebugColor = color.New(color.FgBlue)
	levelOtherColor = color.New(color.FgMagenta)
	nameColor       = color.New(color.FgCyan)
	callerColor     = color.New(color.Faint)
)

func colorLevel(s string, level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return levelErrorColor.Sprint(s)
	case logrus.WarnLevel:
		return levelWarnColor.Sprint(s)
	case logrus.InfoLevel:
		return levelInfoColor.Sprint(s)
	case logrus.DebugLevel:
		return levelDebugColor.Sprint(s)
	default:
		return levelOtherColor.Sprint(s)
	}
}

// NamedColorFormatter renders log4j-style lines:
//
//	2025-01-02 15:04:05.000    INFO 1234 SERVICE service.go:42 : message
type NamedColorFormatter struct {
	LoggerName      string
	TimestampFormat string
	NameWidth       int
}

func (f *NamedColorFormatter) tsFormat() string {
	if f.TimestampFormat != "" {
		return f.TimestampFormat
	}
	return "2006-01-02 15:04:05.000"
}

func (f *NamedColorFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	ts := time.Now().Format(f.tsFormat())
	lvl := colorLevel(fmt.Sprintf("%7s", strings.ToUpper(entry.Level.String())), entry.Level)

	width := f.NameWidth
	if width <= 0 {
		width = 10
	}
	name := nameColor.Sprintf("%*s", width, limitRunes(f.LoggerName, width))

	caller := ""
	if entry.Caller != nil {
		caller = callerColor.Sprintf(" %s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}

	var fields strings.Builder
	for _, k := range sortedKeys(entry.Data) {
		fields.WriteString(fmt.Sprintf(" %s=%v", k, entry.Data[k]))
	}

	line := fmt.Sprintf("%s %s %d %s%s : %s%s\n",
		ts, lvl, os.Getpid(), name, caller, entry.Message, fields.String())
	return []byte(line), nil
}

// JSONLogFormatter renders one JSON object per line, carrying the logger
// name and caller location.
type JSONLogFormatter struct {
	LoggerName      string
	TimestampFormat string
}

func (f *JSONLogFormatter) tsFormat() string {
	if f.TimestampFormat != "" {
		return f.TimestampFormat
	}
	return "2006-01-02 15:04:05.000"
}

func (f *JSONLogFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	rec := struct {
		Time    string                 `json:"time"`
		Level   string                 `json:"level"`
		Name    string                 `json:"name"`
		Caller  string                 `json:"caller,omitempty"`
		Message string                 `json:"message"`
		Fields  map[string]interface{} `json:"fields,omitempty"`
	}{
		Time:    time.Now().Format(f.tsFormat()),
		Level:   strings.ToLower(entry.Level.String()),
		Name:    f.LoggerName,
		Message: entry.Message,
	}
	if entry.Caller != nil {
		rec.Caller = fmt.Sprintf("%s:%d", filepath.Base(entry.Caller.File), entry.Caller.Line)
	}
	if len(entry.Data) > 0 {
		rec.Fields = entry.Data
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func limitRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func sortedKeys(data logrus.Fields) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EnvDefaultString returns the environment value for key, or def when unset.
func EnvDefaultString(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// EnvDefaultBool returns the boolean environment value for key, or def when
// unset.
func EnvDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, _ := strconv.ParseBool(v)
		return b
	}
	return def
}
