// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/metrics"
	"github.com/tomtom215/hydroalert/internal/notify"
)

// EventHandler consumes domain events. *notify.Notifier satisfies it.
type EventHandler interface {
	Dispatch(ctx context.Context, ev notify.DomainEvent) (int, error)
}

// Connect dials NATS with reconnect enabled.
func Connect(url, name string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name(name),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return nc, nil
}

// Subjects derives the subscription subjects from a prefix.
type Subjects struct {
	Prefix string
}

// Events is the wildcard subject for domain events.
func (s Subjects) Events() string { return s.Prefix + ".events.>" }

// Event is the subject for one event kind.
func (s Subjects) Event(kind notify.Kind) string { return s.Prefix + ".events." + string(kind) }

// AccountUpsert is the subject for account changes.
func (s Subjects) AccountUpsert() string { return s.Prefix + ".accounts.upsert" }

// AccountDelete is the subject for account removals.
func (s Subjects) AccountDelete() string { return s.Prefix + ".accounts.delete" }

// accountRef is the payload of an account removal.
type accountRef struct {
	ID string `json:"id"`
}

// Subscriber feeds NATS messages into the notifier and account directory.
type Subscriber struct {
	nc       *nats.Conn
	subjects Subjects
	handler  EventHandler
	accounts auth.AccountDirectory
	log      zerolog.Logger
}

// NewSubscriber creates a subscriber. accounts may be nil to ignore
// account updates.
func NewSubscriber(nc *nats.Conn, prefix string, handler EventHandler, accounts auth.AccountDirectory) *Subscriber {
	return &Subscriber{
		nc:       nc,
		subjects: Subjects{Prefix: prefix},
		handler:  handler,
		accounts: accounts,
		log:      logging.WithComponent("events"),
	}
}

// Serve subscribes and processes messages until ctx is done.
func (s *Subscriber) Serve(ctx context.Context) error {
	msgs := make(chan *nats.Msg, 256)

	eventSub, err := s.nc.ChanSubscribe(s.subjects.Events(), msgs)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subjects.Events(), err)
	}
	defer func() { _ = eventSub.Unsubscribe() }()

	if s.accounts != nil {
		for _, subject := range []string{s.subjects.AccountUpsert(), s.subjects.AccountDelete()} {
			sub, err := s.nc.ChanSubscribe(subject, msgs)
			if err != nil {
				return fmt.Errorf("subscribe %s: %w", subject, err)
			}
			defer func() { _ = sub.Unsubscribe() }()
		}
	}

	if err := s.nc.Flush(); err != nil {
		return fmt.Errorf("flush subscriptions: %w", err)
	}
	s.log.Info().Str("subject", s.subjects.Events()).Msg("event subscriber started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("event subscriber stopped")
			return ctx.Err()
		case msg := <-msgs:
			s.handle(ctx, msg)
		}
	}
}

func (s *Subscriber) String() string {
	return "event-subscriber"
}

func (s *Subscriber) handle(ctx context.Context, msg *nats.Msg) {
	switch msg.Subject {
	case s.subjects.AccountUpsert():
		s.handleAccount(ctx, msg)
	case s.subjects.AccountDelete():
		s.handleAccountDelete(ctx, msg)
	default:
		s.handleEvent(ctx, msg)
	}
}

func (s *Subscriber) handleEvent(ctx context.Context, msg *nats.Msg) {
	var ev notify.DomainEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		s.fail(msg.Subject, "decode", err)
		return
	}
	if ev.Kind == "" {
		ev.Kind = notify.Kind(msg.Subject[strings.LastIndexByte(msg.Subject, '.')+1:])
	}

	delivered, err := s.handler.Dispatch(ctx, ev)
	if err != nil {
		s.fail(msg.Subject, "dispatch", err)
		return
	}
	metrics.EventsConsumed.WithLabelValues(msg.Subject).Inc()
	s.log.Debug().Str("subject", msg.Subject).Str("kind", string(ev.Kind)).Int("delivered", delivered).Msg("event dispatched")
}

func (s *Subscriber) handleAccount(ctx context.Context, msg *nats.Msg) {
	var account auth.Account
	if err := json.Unmarshal(msg.Data, &account); err != nil {
		s.fail(msg.Subject, "decode", err)
		return
	}
	if err := s.accounts.Upsert(ctx, &account); err != nil {
		s.fail(msg.Subject, "store", err)
		return
	}
	metrics.EventsConsumed.WithLabelValues(msg.Subject).Inc()
	s.log.Info().Str("account_id", account.ID).Bool("active", account.Active).Msg("account updated")
}

func (s *Subscriber) handleAccountDelete(ctx context.Context, msg *nats.Msg) {
	var ref accountRef
	if err := json.Unmarshal(msg.Data, &ref); err != nil {
		s.fail(msg.Subject, "decode", err)
		return
	}
	if err := s.accounts.Delete(ctx, ref.ID); err != nil {
		s.fail(msg.Subject, "store", err)
		return
	}
	metrics.EventsConsumed.WithLabelValues(msg.Subject).Inc()
	s.log.Info().Str("account_id", ref.ID).Msg("account deleted")
}

func (s *Subscriber) fail(subject, reason string, err error) {
	metrics.EventsFailed.WithLabelValues(reason).Inc()
	s.log.Warn().Err(err).Str("subject", subject).Str("reason", reason).Msg("event rejected")
}
