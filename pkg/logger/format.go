// Copyright 2025 UMH Systems GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logger

import (
	"fmt"
	"sort"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// PrettyConsoleEncoder produces human-readable logs in a format like:
//
//	[INFO]	[BloomingBehavior]	Entering bloom state - instance=floower
//
// Timestamps are left out, the device supervisor adds its own.
type PrettyConsoleEncoder struct {
	zapcore.Encoder

	cfg  zapcore.EncoderConfig
	pool buffer.Pool
	// context holds fields added through With(), they are printed before per-entry fields
	context *zapcore.MapObjectEncoder
}

// NewPrettyConsoleEncoder creates a new PrettyConsoleEncoder instance.
func NewPrettyConsoleEncoder(cfg zapcore.EncoderConfig) zapcore.Encoder {
	return &PrettyConsoleEncoder{
		Encoder: zapcore.NewConsoleEncoder(cfg),
		cfg:     cfg,
		pool:    buffer.NewPool(),
		context: zapcore.NewMapObjectEncoder(),
	}
}

// Clone implements zapcore.Encoder.
func (e *PrettyConsoleEncoder) Clone() zapcore.Encoder {
	context := zapcore.NewMapObjectEncoder()
	for k, v := range e.context.Fields {
		context.Fields[k] = v
	}

	return &PrettyConsoleEncoder{
		Encoder: e.Encoder.Clone(),
		cfg:     e.cfg,
		pool:    e.pool,
		context: context,
	}
}

// AddString records a context field so that loggers created with With() keep it.
func (e *PrettyConsoleEncoder) AddString(key, value string) {
	e.context.AddString(key, value)
}

// AddInt64 records a context field.
func (e *PrettyConsoleEncoder) AddInt64(key string, value int64) {
	e.context.AddInt64(key, value)
}

// AddBool records a context field.
func (e *PrettyConsoleEncoder) AddBool(key string, value bool) {
	e.context.AddBool(key, value)
}

// EncodeEntry formats a log entry in a human-readable format.
func (e *PrettyConsoleEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	line := e.pool.Get()

	line.AppendString("[")
	line.AppendString(entry.Level.CapitalString())
	line.AppendString("]\t")

	if entry.Caller.Defined {
		line.AppendString("[")
		line.AppendString(entry.Caller.TrimmedPath())
		line.AppendString("]\t")
	}

	if entry.LoggerName != "" {
		line.AppendString("[")
		line.AppendString(entry.LoggerName)
		line.AppendString("]\t")
	}

	line.AppendString(entry.Message)

	merged := zapcore.NewMapObjectEncoder()
	for k, v := range e.context.Fields {
		merged.Fields[k] = v
	}
	for _, field := range fields {
		field.AddTo(merged)
	}
	if len(merged.Fields) > 0 {
		line.AppendString(" - ")
		addFields(line, merged.Fields)
	}

	if entry.Stack != "" && e.cfg.StacktraceKey != "" {
		line.AppendString(e.cfg.LineEnding)
		line.AppendString(entry.Stack)
	}

	line.AppendString(e.cfg.LineEnding)

	return line, nil
}

// addFields prints fields sorted by key so the output is stable.
func addFields(line *buffer.Buffer, fields map[string]interface{}) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for i, k := range keys {
		if i > 0 {
			line.AppendString(", ")
		}
		line.AppendString(k)
		line.AppendString("=")
		line.AppendString(fmt.Sprintf("%v", fields[k]))
	}
}
