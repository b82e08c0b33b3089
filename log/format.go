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
	"bytes"
	"fmt"
	"strconv"

	"github.com/mattn/go-isatty"
)

// Format turns a Record into a line of output.
type Format interface {
	Format(r *Record) []byte
}

type formatFunc func(*Record) []byte

func (f formatFunc) Format(r *Record) []byte { return f(r) }

// TerminalFormat renders records the way the teacher's console output
// looks: "lvl[time] msg k=v k=v ...". It emits no color codes.
func TerminalFormat() Format {
	return formatFunc(func(r *Record) []byte {
		var buf bytes.Buffer
		fmt.Fprintf(&buf, "%s[%s] %s", r.Lvl.String(), r.Time.Format("01-02|15:04:05.000"), r.Msg)
		for i := 0; i+1 < len(r.Ctx); i += 2 {
			fmt.Fprintf(&buf, " %v=%v", r.Ctx[i], formatValue(r.Ctx[i+1]))
		}
		buf.WriteByte('\n')
		return buf.Bytes()
	})
}

func formatValue(v interface{}) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case error:
		return strconv.Quote(v.Error())
	default:
		return fmt.Sprintf("%v", v)
	}
}

// isTerminal reports whether fd looks like an interactive terminal,
// mirroring the teacher's isatty-gated color decision.
func isTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd)
}
