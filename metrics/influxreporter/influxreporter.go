// Copyright 2016 The go-probeum Authors
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

// Package influxreporter periodically pushes a metrics.Registry to an
// InfluxDB v1 endpoint, the same export path the teacher's own
// metrics/influxdb reporter uses for dashboarding.
package influxreporter

import (
	"time"

	client "github.com/influxdata/influxdb1-client/v2"

	"github.com/probeum/subp2p-notify/log"
	"github.com/probeum/subp2p-notify/metrics"
)

// Config configures a periodic push to InfluxDB.
type Config struct {
	Endpoint    string
	Database    string
	Username    string
	Password    string
	Namespace   string // prefix applied to every measurement name
	Interval    time.Duration
}

// Reporter pushes Registry samples to InfluxDB on a ticker.
type Reporter struct {
	cfg    Config
	reg    *metrics.Registry
	client client.Client
	quit   chan struct{}
}

// New constructs a Reporter. It does not start pushing until Start is
// called, mirroring the teacher's InfluxDB exporter constructor/Run split.
func New(reg *metrics.Registry, cfg Config) (*Reporter, error) {
	c, err := client.NewHTTPClient(client.HTTPConfig{
		Addr:     cfg.Endpoint,
		Username: cfg.Username,
		Password: cfg.Password,
	})
	if err != nil {
		return nil, err
	}
	return &Reporter{cfg: cfg, reg: reg, client: c, quit: make(chan struct{})}, nil
}

// Start launches the push loop in a new goroutine.
func (r *Reporter) Start() {
	go r.loop()
}

// Stop halts the push loop. Safe to call once.
func (r *Reporter) Stop() {
	close(r.quit)
}

func (r *Reporter) loop() {
	interval := r.cfg.Interval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := r.send(); err != nil {
				log.Warn("Influx metrics push failed", "err", err)
			}
		case <-r.quit:
			return
		}
	}
}

func (r *Reporter) send() error {
	bp, err := client.NewBatchPoints(client.BatchPointsConfig{Database: r.cfg.Database})
	if err != nil {
		return err
	}
	now := time.Now()
	r.reg.Each(func(name string, i interface{}) {
		fields := map[string]interface{}{}
		switch m := i.(type) {
		case metrics.Counter:
			fields["count"] = m.Count()
		case metrics.Gauge:
			fields["value"] = m.Value()
		case metrics.Meter:
			fields["count"] = m.Count()
		default:
			return
		}
		pt, err := client.NewPoint(r.cfg.Namespace+name, nil, fields, now)
		if err != nil {
			return
		}
		bp.AddPoint(pt)
	})
	return r.client.Write(bp)
}
