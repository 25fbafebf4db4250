// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse parses server configuration from CLI flags with
environment variable fallback.

Flags take precedence over environment variables:

	-p / PORT                  server port (default 3318)
	-d / DATABASE_URL          connection string (required)
	-t / DATABASE_TYPE         sqlite or postgres (default sqlite)
	-base-url / BASE_URL       public origin for share links

main loads a .env file (via godotenv) before calling ParseFlags, so a
local .env behaves like exported variables.
*/
package cliparse
