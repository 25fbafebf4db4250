// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package locale holds the user-visible message tables.
//
// Handlers never carry display text; they pass a Key through
// middleware.ErrorResponse and the text is chosen here at the response
// boundary. Mongolian is the product default, English is the fallback
// carried in the machine-readable message field.
package locale
