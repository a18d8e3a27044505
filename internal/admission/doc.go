// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

// Package admission gates every inbound HTTP request and socket handshake
// with a per-client, per-endpoint sliding-window log.
//
// Each check prunes timestamps older than the window, appends the current
// timestamp, and only then compares the bucket size with the limit. The
// request that crosses the limit is therefore counted and rejected, and
// rejected requests keep extending the window while a client keeps trying.
//
// Endpoints map to named policies through an ordered rule list evaluated top
// to bottom, first match wins:
//
//	/auth/...                         auth           5 / 300s
//	.../upload... or .../submit...    fileUpload     5 / 60s
//	/api/admin/...                    admin        120 / 60s
//	/api/mobile|web|map/..., /ws/...  authenticated 60 / 60s
//	anything else                     public        10 / 60s
//
// Client keys are "user:<id>" for authenticated callers and "ip:<addr>"
// otherwise. When forwarded-for trust is enabled the address is the first
// X-Forwarded-For token, which any client can set. That is an open trust
// boundary and must only be enabled behind a proxy that rewrites the header.
package admission
