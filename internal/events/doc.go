// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

/*
Package events ingests domain events and account changes from NATS.

Subjects, with a configurable prefix (default "hydroalert"):

	<prefix>.events.<kind>     JSON notify.DomainEvent -> Notifier.Dispatch
	<prefix>.accounts.upsert   JSON auth.Account       -> AccountDirectory.Upsert

The <kind> subject token fills DomainEvent.Kind when the payload omits it.
Undecodable or rejected messages are counted and logged; they never stop the
subscription.

Subscriber implements suture.Service. EmbeddedServer runs an in-process
nats-server for single-binary deployments and tests.
*/
package events
