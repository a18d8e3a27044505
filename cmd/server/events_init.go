// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package main

import (
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/config"
	"github.com/tomtom215/hydroalert/internal/events"
	"github.com/tomtom215/hydroalert/internal/logging"
)

// natsReadyTimeout bounds embedded server startup.
const natsReadyTimeout = 10 * time.Second

// eventIngest holds the NATS pieces started by initEvents.
type eventIngest struct {
	server     *events.EmbeddedServer
	conn       *nats.Conn
	subscriber *events.Subscriber
}

// Close drains the client connection and stops the embedded server.
func (e *eventIngest) Close() {
	if e.conn != nil {
		if err := e.conn.Drain(); err != nil {
			logging.Warn().Err(err).Msg("NATS drain failed")
		}
	}
	if e.server != nil {
		e.server.Shutdown()
	}
}

// initEvents connects to NATS, starting an embedded server first when
// configured. It returns nil when event ingest is disabled.
func initEvents(cfg config.EventsConfig, handler events.EventHandler, accounts auth.AccountDirectory) (*eventIngest, error) {
	if !cfg.Enabled {
		logging.Info().Msg("Event ingest disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	ingest := &eventIngest{}
	url := cfg.URL
	if cfg.Embedded {
		srv, err := events.NewEmbeddedServer(cfg.Host, cfg.Port, natsReadyTimeout)
		if err != nil {
			return nil, err
		}
		ingest.server = srv
		url = srv.ClientURL()
		logging.Info().Str("url", url).Msg("Embedded NATS server started")
	}

	nc, err := events.Connect(url, "hydroalert-realtime")
	if err != nil {
		ingest.Close()
		return nil, err
	}
	ingest.conn = nc
	ingest.subscriber = events.NewSubscriber(nc, cfg.SubjectPrefix, handler, accounts)
	logging.Info().Str("url", url).Str("prefix", cfg.SubjectPrefix).Msg("Event ingest enabled")
	return ingest, nil
}
