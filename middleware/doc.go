// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP plumbing shared by all handlers:
request logging with per-request uuids, JSON encode/decode helpers, the
uniform error body, and CORS.

Error bodies always have the same shape:

	{"error": "<localized short text>", "message": "<english detail>"}

The localized text comes from the locale package using the request's
X-Locale header (or locale query parameter). Edit tokens pass through
the X-Edit-Token header and are never written to the log.
*/
package middleware
