// Copyright 2015 The go-probeum Authors
// This file is part of the go-probeum library.
//
// The go-probeum library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-probeum library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-probeum library. If not, see <http://www.gnu.org/licenses/>.

// Package log provides the leveled, structured logger used across the
// notification broker. It mirrors the terminal/key-value logger the rest of
// this family of clients ships, rather than the bare standard library
// "log" package.
package log

import (
	"time"

	"github.com/go-stack/stack"
)

// Lvl is a log severity level.
type Lvl int

const (
	LvlError Lvl = iota
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlError:
		return "eror"
	case LvlWarn:
		return "warn"
	case LvlInfo:
		return "info"
	case LvlDebug:
		return "dbug"
	case LvlTrace:
		return "trce"
	default:
		return "unkn"
	}
}

// Record is a single captured log line.
type Record struct {
	Time  time.Time
	Lvl   Lvl
	Msg   string
	Ctx   []interface{}
	Call  stack.Call
}

// Logger writes leveled, structured log lines.
type Logger interface {
	New(ctx ...interface{}) Logger

	Trace(msg string, ctx ...interface{})
	Debug(msg string, ctx ...interface{})
	Info(msg string, ctx ...interface{})
	Warn(msg string, ctx ...interface{})
	Error(msg string, ctx ...interface{})

	GetHandler() Handler
	SetHandler(h Handler)
}

type logger struct {
	ctx []interface{}
	h   *swapHandler
}

// swapHandler lets SetHandler replace the active handler without a lock
// on the hot logging path, the same trick the teacher's own log package
// uses so a single root logger can be reconfigured at runtime.
type swapHandler struct {
	handler Handler
}

func (s *swapHandler) Log(r *Record) error { return s.handler.Log(r) }

// Root returns the root logger. Most callers derive a named child via
// Root().New("component", "notify").
var root = &logger{h: &swapHandler{handler: StderrHandler}}

func Root() Logger { return root }

func New(ctx ...interface{}) Logger { return root.New(ctx...) }

func (l *logger) New(ctx ...interface{}) Logger {
	child := &logger{h: l.h}
	child.ctx = append(append([]interface{}{}, l.ctx...), ctx...)
	return child
}

func (l *logger) write(msg string, lvl Lvl, ctx []interface{}) {
	r := &Record{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  msg,
		Ctx:  append(append([]interface{}{}, l.ctx...), ctx...),
		Call: stack.Caller(2),
	}
	l.h.Log(r)
}

func (l *logger) Trace(msg string, ctx ...interface{}) { l.write(msg, LvlTrace, ctx) }
func (l *logger) Debug(msg string, ctx ...interface{}) { l.write(msg, LvlDebug, ctx) }
func (l *logger) Info(msg string, ctx ...interface{})  { l.write(msg, LvlInfo, ctx) }
func (l *logger) Warn(msg string, ctx ...interface{})  { l.write(msg, LvlWarn, ctx) }
func (l *logger) Error(msg string, ctx ...interface{}) { l.write(msg, LvlError, ctx) }

func (l *logger) GetHandler() Handler { return l.h.handler }
func (l *logger) SetHandler(h Handler) { l.h.handler = h }

// Package-level convenience wrappers over the root logger, used the way
// the teacher's consumer code calls log.Debug/log.Warn/log.Error directly
// without first fetching a logger.
func Trace(msg string, ctx ...interface{}) { root.write(msg, LvlTrace, ctx) }
func Debug(msg string, ctx ...interface{}) { root.write(msg, LvlDebug, ctx) }
func Info(msg string, ctx ...interface{})  { root.write(msg, LvlInfo, ctx) }
func Warn(msg string, ctx ...interface{})  { root.write(msg, LvlWarn, ctx) }
func Error(msg string, ctx ...interface{}) { root.write(msg, LvlError, ctx) }
