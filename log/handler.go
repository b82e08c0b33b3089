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

package log

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-colorable"
)

// Handler dispatches a Record somewhere: a stream, a filter, a multi-fanout.
type Handler interface {
	Log(r *Record) error
}

type funcHandler func(r *Record) error

func (h funcHandler) Log(r *Record) error { return h(r) }

// StreamHandler writes records to w using fmtr, serializing concurrent
// writers the way the teacher's own StreamHandler does.
func StreamHandler(wr io.Writer, fmtr Format) Handler {
	var mu sync.Mutex
	return funcHandler(func(r *Record) error {
		mu.Lock()
		defer mu.Unlock()
		_, err := wr.Write(fmtr.Format(r))
		return err
	})
}

// LvlFilterHandler drops records more verbose than maxLvl.
func LvlFilterHandler(maxLvl Lvl, h Handler) Handler {
	return funcHandler(func(r *Record) error {
		if r.Lvl > maxLvl {
			return nil
		}
		return h.Log(r)
	})
}

// MultiHandler fans a record out to every handler given.
func MultiHandler(hs ...Handler) Handler {
	return funcHandler(func(r *Record) error {
		for _, h := range hs {
			h.Log(r)
		}
		return nil
	})
}

// StdoutHandler and StderrHandler are the two console sinks the root
// logger is preconfigured to offer, written through a colorable writer
// when attached to a tty; TerminalFormat itself adds no color codes.
var (
	StdoutHandler = StreamHandler(colorableOrPlain(os.Stdout), TerminalFormat())
	StderrHandler = StreamHandler(colorableOrPlain(os.Stderr), TerminalFormat())
)

func colorableOrPlain(f *os.File) io.Writer {
	if isTerminal(f.Fd()) {
		return colorable.NewColorable(f)
	}
	return f
}
