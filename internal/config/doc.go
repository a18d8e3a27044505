// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

// Package config loads Hydro Alert configuration with koanf.
//
// Sources are layered, later ones winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. Optional YAML file (CONFIG_PATH, ./config.yaml, /etc/hydroalert/config.yaml)
//  3. Environment variables listed in envMappings
//
// Unmapped environment variables are ignored. Comma-separated values are
// split for the slice fields in sliceConfigPaths.
//
// # Example
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("invalid configuration")
//	}
//
// # Trust boundary
//
// Security.TrustForwardedFor controls whether the admission controller
// derives anonymous client keys from X-Forwarded-For. The header is client
// controlled; enable it only behind a proxy that overwrites it.
package config
