// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/queue"
	"github.com/danielhkuo/smartecoq/testutil"
)

// testNow is the frozen clock used by handler tests
var testNow = time.Date(2025, 10, 30, 11, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T, conn *sql.DB) *queue.Store {
	t.Helper()
	cfg := testutil.GetTestConfig()
	store := queue.NewStore(conn, cfg.DatabaseType, cfg.CodeSalt)
	store.SetClock(func() time.Time { return testNow })
	return store
}

func TestListStands(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewStandHandler(newTestStore(t, db), cfg)

	testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 10, 60, testNow)
	testutil.CreateTestStand(t, db, "Arrosticini", models.KindStand, 10, 60, testNow)
	testutil.CreateTestStand(t, db, "Bagni Nord", models.KindToilet, 6, 120, testNow)

	tests := []struct {
		name           string
		query          string
		expectedStatus int
		expectedCount  int
	}{
		{"all kinds", "", http.StatusOK, 3},
		{"stands only", "?kind=stand", http.StatusOK, 2},
		{"toilets only", "?kind=toilet", http.StatusOK, 1},
		{"no ecopoints", "?kind=ecopoint", http.StatusOK, 0},
		{"invalid kind", "?kind=bar", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/stands"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.ListStands(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var stands []models.Stand
			testutil.AssertJSON(t, w, &stands)
			if len(stands) != tt.expectedCount {
				t.Errorf("Expected %d stands, got %d", tt.expectedCount, len(stands))
			}
		})
	}
}

func TestGetStand(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewStandHandler(newTestStore(t, db), testutil.GetTestConfig())
	standID := testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 10, 60, testNow)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/stands/"+standID, nil)
		req.SetPathValue("id", standID)
		w := httptest.NewRecorder()

		handler.GetStand(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)
		var st models.Stand
		testutil.AssertJSON(t, w, &st)
		if st.Name != "Piadineria" || st.QRPayload != queue.StandQRPayload(standID) {
			t.Errorf("Unexpected stand: %+v", st)
		}
	})

	t.Run("not found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/stands/nope", nil)
		req.SetPathValue("id", "nope")
		w := httptest.NewRecorder()

		handler.GetStand(w, req)

		testutil.AssertStatus(t, w, http.StatusNotFound)
	})
}

func TestArrive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewStandHandler(newTestStore(t, db), testutil.GetTestConfig())
	standID := testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 5, 60, testNow)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedQueue  int
	}{
		{"three walk-ins", models.CountRequest{Count: 3}, http.StatusCreated, 3},
		{"zero count", models.CountRequest{Count: 0}, http.StatusBadRequest, 3},
		{"over capacity", models.CountRequest{Count: 3}, http.StatusConflict, 3},
		{"fills the line", models.CountRequest{Count: 2}, http.StatusCreated, 5},
		{"invalid json", "not an object", http.StatusBadRequest, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/stands/"+standID+"/arrivals", tt.body, nil)
			req.SetPathValue("id", standID)
			w := httptest.NewRecorder()

			handler.Arrive(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if got := testutil.QueueCounter(t, db, standID); got != tt.expectedQueue {
				t.Errorf("Expected queue_counter %d, got %d", tt.expectedQueue, got)
			}
			if got := testutil.CountWaiting(t, db, standID); got != tt.expectedQueue {
				t.Errorf("Expected %d waiting rows, got %d", tt.expectedQueue, got)
			}
		})
	}
}

func TestArriveTickets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewStandHandler(newTestStore(t, db), testutil.GetTestConfig())
	standID := testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 10, 60, testNow)

	req := testutil.MakeRequest("POST", "/stands/"+standID+"/arrivals", models.CountRequest{Count: 3}, nil)
	req.SetPathValue("id", standID)
	w := httptest.NewRecorder()
	handler.Arrive(w, req)

	testutil.AssertStatus(t, w, http.StatusCreated)
	var resp models.ArrivalsResponse
	testutil.AssertJSON(t, w, &resp)

	if len(resp.Tickets) != 3 || resp.Tickets[0] != 1 || resp.Tickets[2] != 3 {
		t.Errorf("Expected tickets [1 2 3], got %v", resp.Tickets)
	}
	if resp.Stand.Arrivals != 3 || resp.Stand.QueueCounter != 3 {
		t.Errorf("Unexpected stand counters: %+v", resp.Stand)
	}
	// 3 people, 60 s each, one counter
	if resp.Stand.WaitSeconds != 180 {
		t.Errorf("Expected wait 180s, got %v", resp.Stand.WaitSeconds)
	}
}

func TestListReservationsHandler(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	store := newTestStore(t, db)
	handler := NewStandHandler(store, testutil.GetTestConfig())
	standID := testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 10, 60, testNow)

	if _, _, err := store.Arrive(t.Context(), standID, 2); err != nil {
		t.Fatalf("Arrive failed: %v", err)
	}
	if _, _, err := store.Book(t.Context(), standID, "Giulia", ""); err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	tests := []struct {
		name          string
		query         string
		expectedCount int
	}{
		{"bookings only", "", 1},
		{"with walk-ins", "?walk_ins=true", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/stands/"+standID+"/reservations"+tt.query, nil)
			req.SetPathValue("id", standID)
			w := httptest.NewRecorder()

			handler.ListReservations(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)
			var list []models.Reservation
			testutil.AssertJSON(t, w, &list)
			if len(list) != tt.expectedCount {
				t.Fatalf("Expected %d reservations, got %d", tt.expectedCount, len(list))
			}
		})
	}

	t.Run("booking position counts walk-ins", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/stands/"+standID+"/reservations", nil)
		req.SetPathValue("id", standID)
		w := httptest.NewRecorder()
		handler.ListReservations(w, req)

		var list []models.Reservation
		testutil.AssertJSON(t, w, &list)
		if list[0].Name != "Giulia" || list[0].Ahead != 2 {
			t.Errorf("Expected Giulia with 2 ahead, got %+v", list[0])
		}
	})
}
