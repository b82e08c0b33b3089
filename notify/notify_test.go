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

import "testing"

func TestProtocolNameMetricLabel(t *testing.T) {
	tests := []struct {
		name ProtocolName
		want string
	}{
		{"/sup/1/transactions/2", "mpsc-notification-to-protocol-2-transactions"},
		{"/a/b/c/d/e", "mpsc-notification-to-protocol-e-d"},
		{"solo", "mpsc-notification-to-protocol-solo"},
		{"", "mpsc-notification-to-protocol-"},
	}
	for _, tt := range tests {
		if got := tt.name.MetricLabel("mpsc-notification-to-protocol"); got != tt.want {
			t.Errorf("MetricLabel(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDirectionString(t *testing.T) {
	if DirInbound.String() != "inbound" {
		t.Errorf("DirInbound.String() = %q, want inbound", DirInbound.String())
	}
	if DirOutbound.String() != "outbound" {
		t.Errorf("DirOutbound.String() = %q, want outbound", DirOutbound.String())
	}
}

func TestValidationVerdictString(t *testing.T) {
	if Accept.String() != "accept" {
		t.Errorf("Accept.String() = %q, want accept", Accept.String())
	}
	if Reject.String() != "reject" {
		t.Errorf("Reject.String() = %q, want reject", Reject.String())
	}
}
