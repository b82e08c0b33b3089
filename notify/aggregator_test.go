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
	"testing"
	"time"
)

func TestAggregateValidationNoSubscribers(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if v := aggregateValidation(ctx, nil); v != Accept {
		t.Fatalf("verdict = %v, want Accept", v)
	}
}

func TestAggregateValidationAllAccept(t *testing.T) {
	a := make(chan ValidationVerdict, 1)
	b := make(chan ValidationVerdict, 1)
	a <- Accept
	b <- Accept

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if v := aggregateValidation(ctx, []<-chan ValidationVerdict{a, b}); v != Accept {
		t.Fatalf("verdict = %v, want Accept", v)
	}
}

func TestAggregateValidationOneReject(t *testing.T) {
	a := make(chan ValidationVerdict, 1)
	b := make(chan ValidationVerdict, 1)
	a <- Accept
	b <- Reject

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if v := aggregateValidation(ctx, []<-chan ValidationVerdict{a, b}); v != Reject {
		t.Fatalf("verdict = %v, want Reject", v)
	}
}

func TestAggregateValidationClosedChannelIsReject(t *testing.T) {
	a := make(chan ValidationVerdict)
	close(a)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if v := aggregateValidation(ctx, []<-chan ValidationVerdict{a}); v != Reject {
		t.Fatalf("verdict = %v, want Reject for a dropped sender", v)
	}
}

func TestAggregateValidationContextCanceled(t *testing.T) {
	a := make(chan ValidationVerdict)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if v := aggregateValidation(ctx, []<-chan ValidationVerdict{a}); v != Reject {
		t.Fatalf("verdict = %v, want Reject when context is done before any verdict arrives", v)
	}
}
