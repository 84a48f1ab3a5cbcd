// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/testutil"
)

var venueStands = []models.CreateStandRequest{
	{Name: "Piadineria", Kind: models.KindStand, MaxCapacity: 12, ServiceSeconds: 90, Servers: 2, Lat: 43.8441, Lon: 10.5062},
	{Name: "Bagni Porta Elisa", Kind: models.KindToilet, MaxCapacity: 8, ServiceSeconds: 120, Lat: 43.8425, Lon: 10.5121},
}

func TestAdminRequiresKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, newTestStore(t, db), cfg, venueStands)
	standID := testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 10, 60, testNow)

	endpoints := []struct {
		name    string
		method  string
		path    string
		body    interface{}
		handler http.HandlerFunc
	}{
		{"reset", "POST", "/admin/reset", nil, handler.Reset},
		{"create stand", "POST", "/stands", venueStands[0], handler.CreateStand},
		{"serve", "POST", "/stands/" + standID + "/serve", models.CountRequest{Count: 1}, handler.Serve},
		{"queue length", "PUT", "/stands/" + standID + "/queue", models.QueueLengthRequest{Length: 3}, handler.SetQueueLength},
		{"seed queues", "POST", "/admin/seed-queues", nil, handler.SeedQueues},
	}

	keys := []struct {
		name string
		key  string
	}{
		{"missing key", ""},
		{"wrong key", "definitely-not-it"},
		{"key for another salt", testutil.AdminKey(testutil.GetTestConfig()) + "x"},
	}

	for _, ep := range endpoints {
		for _, k := range keys {
			t.Run(ep.name+"/"+k.name, func(t *testing.T) {
				headers := map[string]string{}
				if k.key != "" {
					headers["X-Admin-Key"] = k.key
				}
				req := testutil.MakeRequest(ep.method, ep.path, ep.body, headers)
				req.SetPathValue("id", standID)
				w := httptest.NewRecorder()

				ep.handler(w, req)

				testutil.AssertStatus(t, w, http.StatusUnauthorized)
			})
		}
	}

	// Nothing changed
	if got := testutil.QueueCounter(t, db, standID); got != 0 {
		t.Errorf("Expected untouched queue, got %d", got)
	}
}

func TestAdminCreateStand(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, newTestStore(t, db), cfg, nil)
	headers := map[string]string{"X-Admin-Key": testutil.AdminKey(cfg)}

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
	}{
		{"valid stand", venueStands[0], http.StatusCreated},
		{"duplicate name", venueStands[0], http.StatusConflict},
		{"bad kind", models.CreateStandRequest{Name: "Bar", Kind: "bar", MaxCapacity: 5, ServiceSeconds: 30}, http.StatusBadRequest},
		{"zero capacity", models.CreateStandRequest{Name: "Bar", Kind: models.KindStand, ServiceSeconds: 30}, http.StatusBadRequest},
		{"bad latitude", models.CreateStandRequest{Name: "Bar", Kind: models.KindStand, MaxCapacity: 5, ServiceSeconds: 30, Lat: 123}, http.StatusBadRequest},
		{"ecopoint", models.CreateStandRequest{Name: "Isola Ecologica", Kind: models.KindEcopoint, MaxCapacity: 4, ServiceSeconds: 20}, http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/stands", tt.body, headers)
			w := httptest.NewRecorder()

			handler.CreateStand(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
		})
	}
}

func TestAdminServe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	store := newTestStore(t, db)
	handler := NewAdminHandler(db, store, cfg, nil)
	standID := testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 10, 60, testNow)
	headers := map[string]string{"X-Admin-Key": testutil.AdminKey(cfg)}

	if _, _, err := store.Arrive(t.Context(), standID, 3); err != nil {
		t.Fatalf("Arrive failed: %v", err)
	}

	tests := []struct {
		name           string
		count          int
		expectedStatus int
		expectedServed int
		expectedQueue  int
	}{
		{"serve two", 2, http.StatusOK, 2, 1},
		{"serve more than waiting", 5, http.StatusOK, 1, 0},
		{"empty line", 1, http.StatusOK, 0, 0},
		{"zero", 0, http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/stands/"+standID+"/serve", models.CountRequest{Count: tt.count}, headers)
			req.SetPathValue("id", standID)
			w := httptest.NewRecorder()

			handler.Serve(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus == http.StatusOK {
				var resp models.ServeResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Served != tt.expectedServed {
					t.Errorf("Expected %d served, got %d", tt.expectedServed, resp.Served)
				}
			}
			if got := testutil.CountWaiting(t, db, standID); got != tt.expectedQueue {
				t.Errorf("Expected %d waiting rows, got %d", tt.expectedQueue, got)
			}
		})
	}
}

func TestAdminSetQueueLength(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, newTestStore(t, db), cfg, nil)
	standID := testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 6, 60, testNow)
	headers := map[string]string{"X-Admin-Key": testutil.AdminKey(cfg)}

	tests := []struct {
		name          string
		length        int
		expectedQueue int
	}{
		{"grow", 4, 4},
		{"shrink", 1, 1},
		{"clamped to capacity", 50, 6},
		{"empty", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("PUT", "/stands/"+standID+"/queue", models.QueueLengthRequest{Length: tt.length}, headers)
			req.SetPathValue("id", standID)
			w := httptest.NewRecorder()

			handler.SetQueueLength(w, req)

			testutil.AssertStatus(t, w, http.StatusOK)
			if got := testutil.QueueCounter(t, db, standID); got != tt.expectedQueue {
				t.Errorf("Expected queue_counter %d, got %d", tt.expectedQueue, got)
			}
			if got := testutil.CountWaiting(t, db, standID); got != tt.expectedQueue {
				t.Errorf("Expected %d waiting rows, got %d", tt.expectedQueue, got)
			}
		})
	}
}

func TestAdminSeedQueues(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewAdminHandler(db, newTestStore(t, db), cfg, nil)
	a := testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 3, 60, testNow)
	b := testutil.CreateTestStand(t, db, "Bagni", models.KindToilet, 30, 60, testNow)
	headers := map[string]string{"X-Admin-Key": testutil.AdminKey(cfg)}

	req := testutil.MakeRequest("POST", "/admin/seed-queues", models.SeedQueuesRequest{Max: 5}, headers)
	w := httptest.NewRecorder()
	handler.SeedQueues(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.SeedQueuesResponse
	testutil.AssertJSON(t, w, &resp)

	limits := map[string]int{a: 3, b: 5}
	for id, limit := range limits {
		n, ok := resp.Lengths[id]
		if !ok {
			t.Fatalf("Missing length for stand %s", id)
		}
		if n < 0 || n > limit {
			t.Errorf("Stand %s seeded with %d, want [0, %d]", id, n, limit)
		}
		if got := testutil.CountWaiting(t, db, id); got != n {
			t.Errorf("Stand %s has %d waiting rows, response says %d", id, got, n)
		}
	}
}

func TestAdminReset(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	store := newTestStore(t, db)
	handler := NewAdminHandler(db, store, cfg, venueStands)

	standID := testutil.CreateTestStand(t, db, "Temporary", models.KindStand, 10, 60, testNow)
	if _, _, err := store.Book(t.Context(), standID, "Giulia", ""); err != nil {
		t.Fatalf("Book failed: %v", err)
	}

	req := testutil.MakeRequest("POST", "/admin/reset", nil, map[string]string{"X-Admin-Key": testutil.AdminKey(cfg)})
	w := httptest.NewRecorder()
	handler.Reset(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.ResetResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Stands != len(venueStands) {
		t.Errorf("Expected %d stands recreated, got %d", len(venueStands), resp.Stands)
	}

	var reservations int
	if err := db.QueryRow("SELECT COUNT(*) FROM reservation").Scan(&reservations); err != nil {
		t.Fatalf("Failed to count reservations: %v", err)
	}
	if reservations != 0 {
		t.Errorf("Expected no reservations after reset, got %d", reservations)
	}

	stands, err := store.ListStands(t.Context(), "")
	if err != nil {
		t.Fatalf("ListStands failed: %v", err)
	}
	for _, st := range stands {
		if st.Name == "Temporary" {
			t.Error("Stand created before the reset survived it")
		}
	}
}
