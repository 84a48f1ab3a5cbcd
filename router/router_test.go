// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/smartecoq/assistant"
	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/navigator"
	"github.com/danielhkuo/smartecoq/queue"
	"github.com/danielhkuo/smartecoq/routing"
	"github.com/danielhkuo/smartecoq/testutil"
	"github.com/danielhkuo/smartecoq/venue"
)

const testVenue = `
name: Test Fair
default_origin:
  lat: 43.843
  lon: 10.508
`

func newTestRouter(t *testing.T, db *sql.DB) http.Handler {
	t.Helper()

	cfg := testutil.GetTestConfig()
	v, err := venue.Parse([]byte(testVenue), t.TempDir())
	if err != nil {
		t.Fatalf("Failed to parse venue: %v", err)
	}
	store := queue.NewStore(db, cfg.DatabaseType, cfg.CodeSalt)

	return NewRouter(db, cfg, Services{
		Store:     store,
		Navigator: navigator.New(v, routing.NewGeodesic(venue.DefaultWalkSpeed), store, nil, nil),
		Assistant: assistant.New(nil, ""),
	})
}

func TestHealthEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := newTestRouter(t, db)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := newTestRouter(t, db)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "smartecoq API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}

	t.Run("unknown path", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/nope", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", w.Code)
		}
	})
}

func TestRouteExistence(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := newTestRouter(t, db)

	// 400, 401, 404 and 503 are all valid handler answers here
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		{"GET", "/stands"},
		{"POST", "/stands"},
		{"GET", "/stands/test-id"},
		{"POST", "/stands/test-id/arrivals"},
		{"POST", "/stands/test-id/serve"},
		{"PUT", "/stands/test-id/queue"},
		{"GET", "/stands/test-id/reservations"},
		{"POST", "/stands/test-id/reservations"},

		{"POST", "/reservations"},
		{"GET", "/reservations/test-id"},
		{"GET", "/reservations/code/ABCD1234"},
		{"POST", "/reservations/test-id/cancel"},

		{"POST", "/admin/reset"},
		{"POST", "/admin/seed-queues"},

		{"GET", "/navigator/datasets"},
		{"GET", "/navigator/pois"},
		{"GET", "/navigator/origin"},
		{"POST", "/navigator/route"},
		{"POST", "/navigator/plan"},

		{"POST", "/assistant/chat"},
		{"POST", "/assistant/recycling"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
			if w.Header().Get("X-Request-ID") == "" && tc.path != "/health" && tc.path != "/" {
				t.Errorf("Route %s %s is not wrapped with request logging", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	mux := newTestRouter(t, db)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"DELETE a stand", "DELETE", "/stands/test-id", http.StatusMethodNotAllowed},
		{"GET the serve action", "GET", "/stands/test-id/serve", http.StatusMethodNotAllowed},
		{"PUT a reservation", "PUT", "/reservations/test-id", http.StatusMethodNotAllowed},
		{"preflight", "OPTIONS", "/stands", http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	standID := testutil.CreateTestStand(t, db, "Piadineria", models.KindStand, 10, 60, time.Now())
	mux := newTestRouter(t, db)

	t.Run("stand ID extraction", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/stands/"+standID, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected 200, got %d. Body: %s", w.Code, w.Body.String())
		}
		var st models.Stand
		testutil.AssertJSON(t, w, &st)
		if st.ID != standID {
			t.Errorf("Expected stand %s, got %s", standID, st.ID)
		}
	})

	t.Run("code is not mistaken for an id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/reservations/code/ZZZZZZZZ", nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected 404 for an unknown code, got %d", w.Code)
		}
	})

	t.Run("book through the mux", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/stands/"+standID+"/reservations", models.BookRequest{Name: "Giulia"}, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d. Body: %s", w.Code, w.Body.String())
		}
		var resp models.BookResponse
		testutil.AssertJSON(t, w, &resp)
		if resp.Reservation.StandID != standID || resp.Token == "" {
			t.Errorf("Unexpected booking: %+v", resp)
		}
	})
}
