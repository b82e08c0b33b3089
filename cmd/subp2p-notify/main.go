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

// Command subp2p-notify is a small soak harness for the notify package: it
// wires a FactoryGlue pair to an in-process loopback TransportSink and
// drives a scripted peer-open/notify/peer-close sequence so the broker's
// logging and metrics can be observed without a real transport stack.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/probeum/subp2p-notify/log"
	"github.com/probeum/subp2p-notify/metrics"
	"github.com/probeum/subp2p-notify/metrics/influxreporter"
	"github.com/probeum/subp2p-notify/notify"
	"github.com/probeum/subp2p-notify/notify/notifyconfig"
)

var (
	protocolFlag = cli.StringFlag{
		Name:  "protocol",
		Usage: "ProtocolName to drive the demo under",
		Value: "/sup/1/transactions/2",
	}
	peerFlag = cli.StringFlag{
		Name:  "peer",
		Usage: "PeerID used for the scripted substream",
		Value: "demo-peer",
	}
	delegateFlag = cli.BoolFlag{
		Name:  "delegate-to-peerset",
		Usage: "skip application-level validation, like a peerset-admission deployment",
	}
	influxFlag = cli.StringFlag{
		Name:  "influxdb",
		Usage: "push metrics to this InfluxDB v1 HTTP endpoint (disabled if empty)",
	}
	influxDBFlag = cli.StringFlag{
		Name:  "influxdb.database",
		Usage: "InfluxDB database name",
		Value: "subp2p_notify",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "subp2p-notify"
	app.Usage = "notification protocol service demo harness"
	app.Flags = []cli.Flag{protocolFlag, peerFlag, delegateFlag, influxFlag, influxDBFlag}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	log.Root().SetHandler(log.StderrHandler)
	logger := log.New("cmd", "subp2p-notify")

	protocol := notify.ProtocolName(ctx.String(protocolFlag.Name))
	peer := notify.PeerID(ctx.String(peerFlag.Name))

	reg := metrics.NewRegistry()
	if endpoint := ctx.String(influxFlag.Name); endpoint != "" {
		rep, err := influxreporter.New(reg, influxreporter.Config{
			Endpoint: endpoint,
			Database: ctx.String(influxDBFlag.Name),
			Interval: 10 * time.Second,
		})
		if err != nil {
			return fmt.Errorf("influxreporter: %w", err)
		}
		rep.Start()
		defer rep.Stop()
	}

	endpoint, handle := notify.NewNotificationService(protocol, notifyconfig.Config{
		DelegateToPeerset: ctx.Bool(delegateFlag.Name),
	})
	endpoint.SetMetrics(reg)

	deadline, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	go consumeEvents(deadline, logger, handle)

	sink := newLoopbackSink(string(peer))
	defer sink.close()
	go drainLoopback(deadline, logger, sink)

	logger.Info("requesting validation", "peer", peer)
	result, err := endpoint.ReportIncomingSubstream(deadline, peer, []byte("demo-handshake"))
	if err != nil {
		return fmt.Errorf("ReportIncomingSubstream: %w", err)
	}
	if result.Outcome == notify.OutcomeAwait {
		select {
		case v := <-result.Verdict:
			logger.Info("validation resolved", "peer", peer, "verdict", v)
		case <-deadline.Done():
			return deadline.Err()
		}
	}

	endpoint.ReportSubstreamOpened(peer, notify.DirInbound, []byte("demo-handshake"), "", sink)
	time.Sleep(10 * time.Millisecond) // let the Handle side apply the event

	if err := handle.SendAsyncNotification(deadline, peer, []byte("hello from subp2p-notify")); err != nil {
		logger.Warn("SendAsyncNotification failed", "err", err)
	}

	endpoint.ReportSubstreamClosed(peer)
	time.Sleep(10 * time.Millisecond)

	handle.Close()
	logger.Info("demo sequence complete", "peers", endpoint.NumPeers())
	return nil
}

// consumeEvents plays the application side of the broker: it accepts every
// inbound validation request and otherwise just logs what it observes.
func consumeEvents(ctx context.Context, logger log.Logger, h *notify.Handle) {
	for {
		ev, ok := h.NextEvent(ctx)
		if !ok {
			return
		}
		switch ev.Kind {
		case notify.EventValidateInbound:
			logger.Info("validating inbound substream", "peer", ev.Peer)
			ev.Verdict <- notify.Accept
		case notify.EventStreamOpened:
			logger.Info("substream opened", "peer", ev.Peer, "direction", ev.Direction)
		case notify.EventStreamClosed:
			logger.Info("substream closed", "peer", ev.Peer)
		case notify.EventNotificationReceived:
			logger.Info("notification received", "peer", ev.Peer, "bytes", len(ev.Bytes))
		}
	}
}

func drainLoopback(ctx context.Context, logger log.Logger, sink *loopbackSink) {
	for {
		select {
		case b, ok := <-sink.out:
			if !ok {
				return
			}
			logger.Info("loopback sink delivered", "tag", sink.MetricsTag(), "bytes", len(b))
		case <-ctx.Done():
			return
		}
	}
}
