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

// Package notifyconfig holds the tunables of the notification broker that
// are fixed by contract rather than discovered at runtime, the way
// probeconfig sits alongside the probe package for its protocol manager.
package notifyconfig

// Capacities are contractually fixed for wire compatibility with
// observability (dashboards alert on queue depth against these numbers).
const (
	// EventChannelCapacity is the nominal "unbounded" size of the internal
	// event channel from the network task to each cloned handle.
	EventChannelCapacity = 100_000

	// CommandChannelCapacity is the bounded size of the control-command
	// pipe from handles back to the network task.
	CommandChannelCapacity = 64
)

// DefaultMetricsLabelPrefix is prepended to the derived per-protocol
// metrics label (see notify.ProtocolName.MetricLabel).
const DefaultMetricsLabelPrefix = "mpsc-notification-to-protocol"

// Config is the small set of knobs FactoryGlue and ProtocolEndpoint read
// at construction/configuration time.
type Config struct {
	// DelegateToPeerset makes ReportIncomingSubstream always answer
	// Delegated, handing validation responsibility to the external
	// peerset/admission-control component instead of any subscriber.
	DelegateToPeerset bool

	// MetricsLabelPrefix overrides DefaultMetricsLabelPrefix, mostly for
	// tests that want a distinguishable label.
	MetricsLabelPrefix string
}

// LabelPrefix returns the configured prefix, falling back to the default.
func (c Config) LabelPrefix() string {
	if c.MetricsLabelPrefix == "" {
		return DefaultMetricsLabelPrefix
	}
	return c.MetricsLabelPrefix
}
