// Copyright 2023 The go-probeum Authors
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

package notify

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// errVerdictRejected is the internal sentinel errgroup.Group short-circuits
// on; it never escapes aggregateValidation.
var errVerdictRejected = errors.New("notify: verdict rejected")

// aggregateValidation combines N verdict receivers into a single verdict:
// Reject as soon as any receiver yields Reject or its sender is dropped
// (channel closed without a value); Accept iff every receiver yields
// Accept, so a ctx that ends before every verdict arrives yields Reject;
// Accept with zero receivers, since no subscribers means the
// protocol opted out of validation entirely (see DESIGN.md).
//
// golang.org/x/sync/errgroup drives the fan-in: each receiver gets a
// goroutine that returns a non-nil error on Reject/drop, and
// errgroup.WithContext cancels every sibling watcher the instant one of
// them rejects, so a 3-subscriber Reject doesn't wait on the other two.
func aggregateValidation(ctx context.Context, receivers []<-chan ValidationVerdict) ValidationVerdict {
	if len(receivers) == 0 {
		return Accept
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, recv := range receivers {
		recv := recv
		g.Go(func() error {
			select {
			case v, ok := <-recv:
				if !ok || v == Reject {
					return errVerdictRejected
				}
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	if err := g.Wait(); err != nil {
		return Reject
	}
	return Accept
}
