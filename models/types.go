// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Response status constants
const (
	StatusYes   = "yes"
	StatusNo    = "no"
	StatusMaybe = "maybe"
)

// DefaultTimezone is assigned to every event at creation.
const DefaultTimezone = "Asia/Ulaanbaatar"

// Request types

// DateInput is one candidate slot as submitted by the creator.
// ID is only meaningful on update: zero means "new slot".
type DateInput struct {
	ID            int64  `json:"id,omitempty"`
	StartDatetime string `json:"startDatetime"`
	EndDatetime   string `json:"endDatetime,omitempty"`
	IsAllDay      bool   `json:"isAllDay,omitempty"`
}

type CreateEventRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Location    string      `json:"location"`
	OwnerName   string      `json:"ownerName"`
	Dates       []DateInput `json:"dates"`
	Fingerprint string      `json:"fingerprint"`
}

// UpdateEventRequest carries a metadata edit plus an optional full
// replacement of the date set. Nil pointer fields mean "leave the
// stored value alone"; an empty Location or OwnerName clears it.
type UpdateEventRequest struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Location    *string      `json:"location"`
	OwnerName   *string      `json:"ownerName"`
	Dates       *[]DateInput `json:"dates"`
}

type VerifyAccessRequest struct {
	EditToken   string `json:"editToken"`
	Fingerprint string `json:"fingerprint"`
}

type ResponseInput struct {
	EventDateID int64  `json:"eventDateId"`
	Status      string `json:"status"`
}

type SubmitResponseRequest struct {
	ParticipantName string          `json:"participantName"`
	Comment         string          `json:"comment"`
	Responses       []ResponseInput `json:"responses"`
}

// Response types

type CreateEventResponse struct {
	EventID   string `json:"eventId"`
	EditToken string `json:"editToken"`
}

type GetEventResponse struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description *string     `json:"description"`
	Location    *string     `json:"location,omitempty"`
	OwnerName   *string     `json:"owner_name,omitempty"`
	Timezone    string      `json:"timezone"`
	Dates       []EventDate `json:"dates"`
}

type UpdateEventResponse struct {
	Success bool        `json:"success"`
	Event   Event       `json:"event"`
	Dates   []EventDate `json:"dates,omitempty"`
}

type DeleteEventResponse struct {
	Success bool `json:"success"`
}

type VerifyAccessResponse struct {
	CanEdit bool   `json:"canEdit"`
	Message string `json:"message"`
}

type SubmitResponseResponse struct {
	ParticipantID int64  `json:"participantId"`
	ResponseToken string `json:"responseToken"`
	Message       string `json:"message"`
}

type EventPreviewResponse struct {
	Title         string `json:"title"`
	DateCount     int    `json:"date_count"`
	ResponseCount int    `json:"response_count"`
	CreatedAgo    string `json:"created_ago"`
	ShareURL      string `json:"share_url"`
}

// Domain types

type Event struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   *string   `json:"description"`
	Location      *string   `json:"location,omitempty"`
	OwnerName     *string   `json:"owner_name,omitempty"`
	Timezone      string    `json:"timezone"`
	ViewCount     int       `json:"view_count"`
	ResponseCount int       `json:"response_count"`
	CreatedAt     time.Time `json:"created_at"`
	EditToken     string    `json:"-"` // Never expose in JSON
	Fingerprint   *string   `json:"-"` // Never expose in JSON
}

type EventDate struct {
	ID            int64      `json:"id"`
	EventID       string     `json:"event_id"`
	StartDatetime time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
	IsAllDay      bool       `json:"is_all_day"`
	DisplayOrder  int        `json:"display_order"`
}

type Participant struct {
	ID            int64     `json:"id"`
	EventID       string    `json:"event_id"`
	Name          string    `json:"name"`
	Comment       *string   `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
	ResponseToken string    `json:"-"` // Never expose in JSON
}

// Results types

// DateTally is one candidate slot with its aggregated vote counts.
// Counts are always present; a slot nobody voted on reports zeroes.
type DateTally struct {
	ID            int64      `json:"id"`
	StartDatetime time.Time  `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
	IsAllDay      bool       `json:"is_all_day"`
	DisplayOrder  int        `json:"display_order"`
	YesCount      int        `json:"yes_count"`
	MaybeCount    int        `json:"maybe_count"`
	NoCount       int        `json:"no_count"`
}

// ParticipantResult maps event date ids to this participant's status.
// A date absent from the map means "no opinion", distinct from "no".
type ParticipantResult struct {
	ID        int64            `json:"id"`
	Name      string           `json:"name"`
	Comment   *string          `json:"comment,omitempty"`
	Responses map[int64]string `json:"responses"`
}

type ResultsEvent struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

type ResultsResponse struct {
	Event             ResultsEvent        `json:"event"`
	Dates             []DateTally         `json:"dates"`
	Participants      []ParticipantResult `json:"participants"`
	TotalParticipants int                 `json:"totalParticipants"`
	BestDateID        *int64              `json:"best_date_id"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
