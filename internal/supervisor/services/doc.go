// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

/*
Package services adapts blocking components to suture.Service.

  - HTTPServerService: ListenAndServe with graceful Shutdown on cancel
  - PeriodicService: runs a task on a fixed interval

Components that already have a Serve(ctx) error method (the connection
registry, the admission limiter, the NATS subscriber) are added to the tree
directly.
*/
package services
