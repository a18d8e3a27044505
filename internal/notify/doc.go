// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

// Package notify translates domain events into deliveries.
//
// The Notifier holds only references to the connection registry and the map
// broadcaster. Routing:
//
//	new report (HIGH/CRITICAL)   -> admins: new_critical_report
//	new report                   -> submitter: report_submitted
//	triage                       -> report owner and admins: report_triaged
//	alert                        -> everybody: emergency_alert
//	notification                 -> everybody: system_notification
//	reading/report/center + geo  -> overlapping viewports: map_update
//
// Delivery failures never surface here; the registry prunes failed
// connections and the Notifier only reports how many sends succeeded.
package notify
