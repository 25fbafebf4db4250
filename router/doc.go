// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router wires URL patterns to handlers using Go 1.22+ method
routing on the standard ServeMux.

Every application route is wrapped in the logging middleware; CORS is
applied once around the whole mux in main.
*/
package router
