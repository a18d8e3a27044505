// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package admission

import (
	"net"
	"net/http"
	"strings"
)

// IdentityFunc returns the authenticated subject for a request, if any.
type IdentityFunc func(r *http.Request) (id string, ok bool)

// ClientKey derives the bucket client component for r.
//
// With trustForwarded set, the first X-Forwarded-For token wins over the
// peer address. The header is caller-controlled.
func ClientKey(r *http.Request, identify IdentityFunc, trustForwarded bool) string {
	if identify != nil {
		if id, ok := identify(r); ok && id != "" {
			return "user:" + id
		}
	}
	return "ip:" + clientAddress(r, trustForwarded)
}

func clientAddress(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
