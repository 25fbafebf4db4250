// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth generates and compares the identifiers and capability
tokens used by the uulzah.link API.

# Identifiers

Two kinds of random strings, both drawn uniformly from [0-9A-Za-z] via
crypto/rand:

	id, err := auth.NewPublicID()     // 8 chars, appears in share URLs
	tok, err := auth.NewSecretToken() // 12 chars, bearer credential

The edit token returned at event creation is the only way to mutate or
delete that event. Response tokens are issued to participants and
reserved for a future edit-your-response flow.

# Comparison

Stored tokens are compared with the constant-time TokensMatch helper,
never with ==. ValidPublicID is a cheap shape check handlers use to
short-circuit storage lookups for malformed ids.
*/
package auth
