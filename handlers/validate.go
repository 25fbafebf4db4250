// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/random-mongol/uulzah.link/locale"
	"github.com/random-mongol/uulzah.link/models"
)

// dateSpan is a validated candidate slot, ready to write. id carries
// the payload's row id on update (zero for new slots).
type dateSpan struct {
	id     int64
	start  time.Time
	end    *time.Time
	allDay bool
}

// validateTitle trims and length-checks an event title. Returns the
// trimmed value and whether it passed.
func validateTitle(title string) (string, bool) {
	trimmed := strings.TrimSpace(title)
	n := utf8.RuneCountInString(trimmed)
	return trimmed, n >= 3 && n <= 255
}

func validateDescription(description string) bool {
	return utf8.RuneCountInString(description) <= 500
}

// validateParticipantName trims and length-checks a participant name.
// Uniqueness is checked against the trimmed value too, so "Alice" and
// " Alice " are the same identity.
func validateParticipantName(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	return trimmed, n >= 1 && n <= 100
}

// Accepted timestamp formats. The web client sends RFC 3339; the
// shorter forms come from datetime-local inputs and are taken as UTC.
var datetimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseDatetime(s string) (time.Time, bool) {
	for _, layout := range datetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// validateDates checks a submitted date set: non-empty, resolvable
// starts, end strictly after start, and no two slots sharing the same
// (start, end) pair. Runs before any write.
func validateDates(inputs []models.DateInput) ([]dateSpan, locale.Key, bool) {
	if len(inputs) == 0 {
		return nil, locale.KeyDatesRequired, false
	}

	spans := make([]dateSpan, 0, len(inputs))
	seen := make(map[string]struct{}, len(inputs))

	for _, in := range inputs {
		start, ok := parseDatetime(strings.TrimSpace(in.StartDatetime))
		if !ok {
			return nil, locale.KeyInvalidDate, false
		}

		var end *time.Time
		if strings.TrimSpace(in.EndDatetime) != "" {
			e, ok := parseDatetime(strings.TrimSpace(in.EndDatetime))
			if !ok {
				return nil, locale.KeyInvalidDate, false
			}
			if !e.After(start) {
				return nil, locale.KeyEndBeforeStart, false
			}
			end = &e
		}

		key := start.UTC().Format(time.RFC3339Nano)
		if end != nil {
			key += "/" + end.UTC().Format(time.RFC3339Nano)
		}
		if _, dup := seen[key]; dup {
			return nil, locale.KeyDuplicateDate, false
		}
		seen[key] = struct{}{}

		spans = append(spans, dateSpan{
			id:     in.ID,
			start:  start,
			end:    end,
			allDay: in.IsAllDay,
		})
	}

	return spans, "", true
}

func validStatus(status string) bool {
	switch status {
	case models.StatusYes, models.StatusNo, models.StatusMaybe:
		return true
	}
	return false
}
