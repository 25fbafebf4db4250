// Copyright (c) 2025 uulzah.link.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/random-mongol/uulzah.link/models"
	"github.com/random-mongol/uulzah.link/testutil"
)

func TestCreateEvent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()
	handler := NewEventHandler(conn, cfg)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		checkResponse  func(t *testing.T, resp *models.CreateEventResponse)
	}{
		{
			name: "valid event creation",
			requestBody: models.CreateEventRequest{
				Title:       "Team Sync",
				Description: "Weekly planning",
				Dates: []models.DateInput{
					{StartDatetime: "2025-12-01T19:00:00Z"},
					{StartDatetime: "2025-12-02T19:00:00Z"},
				},
				Fingerprint: "device-abc",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreateEventResponse) {
				if len(resp.EventID) != 8 {
					t.Errorf("Expected 8-char event id, got %q", resp.EventID)
				}
				if len(resp.EditToken) != 12 {
					t.Errorf("Expected 12-char edit token, got %q", resp.EditToken)
				}

				// Verify event and dates were created in database
				var title string
				if err := conn.QueryRow("SELECT title FROM events WHERE id = $1", resp.EventID).Scan(&title); err != nil {
					t.Fatalf("Event row missing: %v", err)
				}
				if title != "Team Sync" {
					t.Errorf("Expected title 'Team Sync', got %q", title)
				}

				var dateCount int
				if err := conn.QueryRow("SELECT COUNT(*) FROM event_dates WHERE event_id = $1", resp.EventID).Scan(&dateCount); err != nil {
					t.Fatalf("Failed to count dates: %v", err)
				}
				if dateCount != 2 {
					t.Errorf("Expected 2 date rows, got %d", dateCount)
				}
			},
		},
		{
			name: "title trimmed before validation",
			requestBody: models.CreateEventRequest{
				Title: "   Standup   ",
				Dates: []models.DateInput{{StartDatetime: "2025-12-01T10:00:00Z"}},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreateEventResponse) {
				var title string
				if err := conn.QueryRow("SELECT title FROM events WHERE id = $1", resp.EventID).Scan(&title); err != nil {
					t.Fatalf("Event row missing: %v", err)
				}
				if title != "Standup" {
					t.Errorf("Expected trimmed title, got %q", title)
				}
			},
		},
		{
			name: "title too short",
			requestBody: models.CreateEventRequest{
				Title: "ab",
				Dates: []models.DateInput{{StartDatetime: "2025-12-01T10:00:00Z"}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "title too long",
			requestBody: models.CreateEventRequest{
				Title: strings.Repeat("x", 256),
				Dates: []models.DateInput{{StartDatetime: "2025-12-01T10:00:00Z"}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "description too long",
			requestBody: models.CreateEventRequest{
				Title:       "Valid title",
				Description: strings.Repeat("x", 501),
				Dates:       []models.DateInput{{StartDatetime: "2025-12-01T10:00:00Z"}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "empty dates",
			requestBody: models.CreateEventRequest{
				Title: "Valid title",
				Dates: []models.DateInput{},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unparseable start",
			requestBody: models.CreateEventRequest{
				Title: "Valid title",
				Dates: []models.DateInput{{StartDatetime: "not-a-date"}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "end before start",
			requestBody: models.CreateEventRequest{
				Title: "Valid title",
				Dates: []models.DateInput{{
					StartDatetime: "2025-12-01T19:00:00Z",
					EndDatetime:   "2025-12-01T18:00:00Z",
				}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "end equal to start",
			requestBody: models.CreateEventRequest{
				Title: "Valid title",
				Dates: []models.DateInput{{
					StartDatetime: "2025-12-01T19:00:00Z",
					EndDatetime:   "2025-12-01T19:00:00Z",
				}},
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate slots",
			requestBody: models.CreateEventRequest{
				Title: "Valid title",
				Dates: []models.DateInput{
					{StartDatetime: "2025-01-01T10:00"},
					{StartDatetime: "2025-01-01T10:00"},
				},
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/events", tt.requestBody, nil)
			w := httptest.NewRecorder()

			handler.CreateEvent(w, req)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.checkResponse != nil {
				var resp models.CreateEventResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestCreateEventRejectsBeforeAnyWrite(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewEventHandler(conn, testutil.GetTestConfig())

	body := models.CreateEventRequest{
		Title: "Duplicate slots",
		Dates: []models.DateInput{
			{StartDatetime: "2025-01-01T10:00"},
			{StartDatetime: "2025-01-01T10:00"},
		},
	}
	req := testutil.MakeRequest("POST", "/events", body, nil)
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	var eventCount int
	if err := conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&eventCount); err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	if eventCount != 0 {
		t.Errorf("Expected no event rows after rejected create, got %d", eventCount)
	}
}

func TestCreateEventLeavesNothingOnWriteFailure(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewEventHandler(conn, testutil.GetTestConfig())

	// Make the second write of the transaction fail after the event
	// insert already succeeded
	if _, err := conn.Exec("DROP TABLE event_dates"); err != nil {
		t.Fatalf("Failed to drop table: %v", err)
	}

	body := models.CreateEventRequest{
		Title: "Half-written event",
		Dates: []models.DateInput{{StartDatetime: "2025-12-01T10:00:00Z"}},
	}
	req := testutil.MakeRequest("POST", "/events", body, nil)
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)
	testutil.AssertStatus(t, w, http.StatusInternalServerError)

	var eventCount int
	if err := conn.QueryRow("SELECT COUNT(*) FROM events").Scan(&eventCount); err != nil {
		t.Fatalf("Failed to count events: %v", err)
	}
	if eventCount != 0 {
		t.Errorf("Expected no event rows after failed date insert, got %d", eventCount)
	}
}

func TestGetEvent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewEventHandler(conn, testutil.GetTestConfig())

	eventID, _ := testutil.CreateTestEvent(t, conn, "Planning", "")
	first := time.Date(2025, 12, 1, 19, 0, 0, 0, time.UTC)
	second := time.Date(2025, 12, 2, 19, 0, 0, 0, time.UTC)
	// Insert out of display order to prove ordering comes from display_order
	testutil.AddTestDate(t, conn, eventID, second, 1)
	testutil.AddTestDate(t, conn, eventID, first, 0)

	req := testutil.MakeRequest("GET", "/events/"+eventID, nil, nil)
	req.SetPathValue("id", eventID)
	w := httptest.NewRecorder()
	handler.GetEvent(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.GetEventResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.ID != eventID {
		t.Errorf("Expected id %q, got %q", eventID, resp.ID)
	}
	if resp.Timezone != "Asia/Ulaanbaatar" {
		t.Errorf("Expected default timezone, got %q", resp.Timezone)
	}
	if len(resp.Dates) != 2 {
		t.Fatalf("Expected 2 dates, got %d", len(resp.Dates))
	}
	if !resp.Dates[0].StartDatetime.Equal(first) || !resp.Dates[1].StartDatetime.Equal(second) {
		t.Errorf("Dates not in display order: %v then %v", resp.Dates[0].StartDatetime, resp.Dates[1].StartDatetime)
	}

	// View counter bumps on every successful fetch
	var viewCount int
	if err := conn.QueryRow("SELECT view_count FROM events WHERE id = $1", eventID).Scan(&viewCount); err != nil {
		t.Fatalf("Failed to read view count: %v", err)
	}
	if viewCount != 1 {
		t.Errorf("Expected view_count 1, got %d", viewCount)
	}

	// Idempotent read: content identical on the second fetch
	req2 := testutil.MakeRequest("GET", "/events/"+eventID, nil, nil)
	req2.SetPathValue("id", eventID)
	w2 := httptest.NewRecorder()
	handler.GetEvent(w2, req2)
	testutil.AssertStatus(t, w2, http.StatusOK)

	var resp2 models.GetEventResponse
	testutil.AssertJSON(t, w2, &resp2)
	if resp2.Title != resp.Title || len(resp2.Dates) != len(resp.Dates) {
		t.Error("Second read returned different content")
	}
}

func TestGetEventNotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewEventHandler(conn, testutil.GetTestConfig())

	tests := []struct {
		name string
		id   string
	}{
		{"unknown id", "AAAAAAAA"},
		{"malformed id", "../etc"},
		{"too short", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("GET", "/events/"+tt.id, nil, nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()
			handler.GetEvent(w, req)
			testutil.AssertStatus(t, w, http.StatusNotFound)
		})
	}
}

func TestUpdateEvent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewEventHandler(conn, testutil.GetTestConfig())

	eventID, editToken := testutil.CreateTestEvent(t, conn, "Original title", "")
	start := time.Date(2025, 12, 1, 19, 0, 0, 0, time.UTC)
	dateID := testutil.AddTestDate(t, conn, eventID, start, 0)

	t.Run("missing token", func(t *testing.T) {
		body := models.UpdateEventRequest{Title: "New title"}
		req := testutil.MakeRequest("PATCH", "/events/"+eventID, body, nil)
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.UpdateEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("wrong token", func(t *testing.T) {
		body := models.UpdateEventRequest{Title: "Hijacked"}
		req := testutil.MakeRequest("PATCH", "/events/"+eventID, body,
			map[string]string{EditTokenHeader: "wrongwrongwr"})
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.UpdateEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusForbidden)

		var title string
		if err := conn.QueryRow("SELECT title FROM events WHERE id = $1", eventID).Scan(&title); err != nil {
			t.Fatalf("Failed to read title: %v", err)
		}
		if title != "Original title" {
			t.Errorf("Title changed despite bad token: %q", title)
		}
	})

	t.Run("invalid title", func(t *testing.T) {
		body := models.UpdateEventRequest{Title: "ab"}
		req := testutil.MakeRequest("PATCH", "/events/"+eventID, body,
			map[string]string{EditTokenHeader: editToken})
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.UpdateEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("metadata-only edit keeps dates", func(t *testing.T) {
		body := models.UpdateEventRequest{Title: "Renamed", Description: "now with notes"}
		req := testutil.MakeRequest("PATCH", "/events/"+eventID, body,
			map[string]string{EditTokenHeader: editToken})
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.UpdateEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.UpdateEventResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Event.Title != "Renamed" {
			t.Errorf("Expected renamed event, got %q", resp.Event.Title)
		}

		var dateCount int
		if err := conn.QueryRow("SELECT COUNT(*) FROM event_dates WHERE event_id = $1", eventID).Scan(&dateCount); err != nil {
			t.Fatalf("Failed to count dates: %v", err)
		}
		if dateCount != 1 {
			t.Errorf("Metadata-only edit touched dates: %d rows", dateCount)
		}
	})

	t.Run("date replacement reconciles by id", func(t *testing.T) {
		dates := []models.DateInput{
			// Existing slot, moved and reordered
			{ID: dateID, StartDatetime: "2025-12-05T09:00:00Z"},
			// Brand new slot
			{StartDatetime: "2025-12-06T09:00:00Z"},
		}
		body := models.UpdateEventRequest{Title: "Renamed", Dates: &dates}
		req := testutil.MakeRequest("PATCH", "/events/"+eventID, body,
			map[string]string{EditTokenHeader: editToken})
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.UpdateEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.UpdateEventResponse
		testutil.AssertJSON(t, w, &resp)
		if len(resp.Dates) != 2 {
			t.Fatalf("Expected 2 dates after replace, got %d", len(resp.Dates))
		}
		if resp.Dates[0].ID != dateID {
			t.Errorf("Existing slot should keep its id %d, got %d", dateID, resp.Dates[0].ID)
		}
		if resp.Dates[0].DisplayOrder != 0 || resp.Dates[1].DisplayOrder != 1 {
			t.Errorf("display_order not rewritten to array index: %d, %d",
				resp.Dates[0].DisplayOrder, resp.Dates[1].DisplayOrder)
		}
		want := time.Date(2025, 12, 5, 9, 0, 0, 0, time.UTC)
		if !resp.Dates[0].StartDatetime.Equal(want) {
			t.Errorf("Existing slot not updated: %v", resp.Dates[0].StartDatetime)
		}
	})

	t.Run("slot missing from payload is deleted", func(t *testing.T) {
		dates := []models.DateInput{
			{StartDatetime: "2025-12-07T09:00:00Z"},
		}
		body := models.UpdateEventRequest{Title: "Renamed", Dates: &dates}
		req := testutil.MakeRequest("PATCH", "/events/"+eventID, body,
			map[string]string{EditTokenHeader: editToken})
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.UpdateEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var dateCount int
		if err := conn.QueryRow("SELECT COUNT(*) FROM event_dates WHERE event_id = $1", eventID).Scan(&dateCount); err != nil {
			t.Fatalf("Failed to count dates: %v", err)
		}
		if dateCount != 1 {
			t.Errorf("Expected 1 date after full replace, got %d", dateCount)
		}
	})

	t.Run("empty dates array rejected", func(t *testing.T) {
		dates := []models.DateInput{}
		body := models.UpdateEventRequest{Title: "Renamed", Dates: &dates}
		req := testutil.MakeRequest("PATCH", "/events/"+eventID, body,
			map[string]string{EditTokenHeader: editToken})
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.UpdateEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}

func TestUpdateEventOmittedFieldsUnchanged(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewEventHandler(conn, testutil.GetTestConfig())

	createReq := models.CreateEventRequest{
		Title:     "Naadam planning",
		Location:  "Ulaanbaatar",
		OwnerName: "Bold",
		Dates:     []models.DateInput{{StartDatetime: "2025-12-01T10:00:00Z"}},
	}
	req := testutil.MakeRequest("POST", "/events", createReq, nil)
	w := httptest.NewRecorder()
	handler.CreateEvent(w, req)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var created models.CreateEventResponse
	testutil.AssertJSON(t, w, &created)

	patch := func(body models.UpdateEventRequest) models.UpdateEventResponse {
		t.Helper()
		req := testutil.MakeRequest("PATCH", "/events/"+created.EventID, body,
			map[string]string{EditTokenHeader: created.EditToken})
		req.SetPathValue("id", created.EventID)
		w := httptest.NewRecorder()
		handler.UpdateEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.UpdateEventResponse
		testutil.AssertJSON(t, w, &resp)
		return resp
	}

	t.Run("title-only edit keeps location and owner", func(t *testing.T) {
		resp := patch(models.UpdateEventRequest{Title: "Naadam planning v2"})

		if resp.Event.Location == nil || *resp.Event.Location != "Ulaanbaatar" {
			t.Errorf("Location changed by omission: %v", resp.Event.Location)
		}
		if resp.Event.OwnerName == nil || *resp.Event.OwnerName != "Bold" {
			t.Errorf("Owner name changed by omission: %v", resp.Event.OwnerName)
		}
	})

	t.Run("present field is replaced", func(t *testing.T) {
		newLocation := "Darkhan"
		resp := patch(models.UpdateEventRequest{Title: "Naadam planning v2", Location: &newLocation})

		if resp.Event.Location == nil || *resp.Event.Location != "Darkhan" {
			t.Errorf("Expected location Darkhan, got %v", resp.Event.Location)
		}
		if resp.Event.OwnerName == nil || *resp.Event.OwnerName != "Bold" {
			t.Errorf("Owner name changed by omission: %v", resp.Event.OwnerName)
		}
	})

	t.Run("empty field clears the stored value", func(t *testing.T) {
		empty := ""
		resp := patch(models.UpdateEventRequest{Title: "Naadam planning v2", OwnerName: &empty})

		if resp.Event.OwnerName != nil {
			t.Errorf("Expected owner name cleared, got %v", *resp.Event.OwnerName)
		}
		if resp.Event.Location == nil || *resp.Event.Location != "Darkhan" {
			t.Errorf("Location changed by omission: %v", resp.Event.Location)
		}
	})
}

func TestDeleteEvent(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	handler := NewEventHandler(conn, testutil.GetTestConfig())

	eventID, editToken := testutil.CreateTestEvent(t, conn, "Doomed event", "")

	t.Run("missing token", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/events/"+eventID, nil, nil)
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.DeleteEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusUnauthorized)
	})

	t.Run("unknown event", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/events/BBBBBBBB", nil,
			map[string]string{EditTokenHeader: editToken})
		req.SetPathValue("id", "BBBBBBBB")
		w := httptest.NewRecorder()
		handler.DeleteEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("wrong token", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/events/"+eventID, nil,
			map[string]string{EditTokenHeader: "wrongwrongwr"})
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.DeleteEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusForbidden)
	})

	t.Run("successful soft delete", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/events/"+eventID, nil,
			map[string]string{EditTokenHeader: editToken})
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.DeleteEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var resp models.DeleteEventResponse
		testutil.AssertJSON(t, w, &resp)
		if !resp.Success {
			t.Error("Expected success true")
		}

		// Row remains, only marked
		var deleted bool
		if err := conn.QueryRow("SELECT deleted_at IS NOT NULL FROM events WHERE id = $1", eventID).Scan(&deleted); err != nil {
			t.Fatalf("Event row gone entirely: %v", err)
		}
		if !deleted {
			t.Error("deleted_at not set")
		}
	})

	t.Run("read after delete is 404", func(t *testing.T) {
		req := testutil.MakeRequest("GET", "/events/"+eventID, nil, nil)
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.GetEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusNotFound)
	})

	t.Run("second delete reports already deleted", func(t *testing.T) {
		req := testutil.MakeRequest("DELETE", "/events/"+eventID, nil,
			map[string]string{EditTokenHeader: editToken})
		req.SetPathValue("id", eventID)
		w := httptest.NewRecorder()
		handler.DeleteEvent(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})
}
