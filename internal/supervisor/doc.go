// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

/*
Package supervisor provides process supervision using suture v4.

	RootSupervisor ("hydroalert")
	├── StateSupervisor ("state-layer")
	│   ├── admission.Limiter (bucket sweeper)
	│   └── PeriodicService "account-store-gc" (badger store only)
	├── MessagingSupervisor ("messaging-layer")
	│   ├── websocket.Registry (closes connections with 1001 on shutdown)
	│   └── events.Subscriber (NATS_ENABLED only)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A service that returns an error is restarted with backoff. Returning
suture.ErrDoNotRestart stops it permanently. Supervisor events are logged
through the zerolog-backed slog handler from the logging package.
*/
package supervisor
