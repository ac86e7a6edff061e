// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds the static front-end assets.
package web

import "embed"

// Static holds the HTML pages and assets served by the application.
//
//go:embed static
var Static embed.FS
