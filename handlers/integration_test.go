// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/queue"
	"github.com/danielhkuo/smartecoq/testutil"
)

// TestFullBookingWorkflow tests the complete visitor workflow:
// 1. Operator creates a stand
// 2. Walk-ins join the line
// 3. A visitor books from the stand's QR code
// 4. The visitor checks their position
// 5. Time passes and the line decays
// 6. The operator serves by hand
// 7. A second visitor books and cancels
func TestFullBookingWorkflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	now := testNow
	store := queue.NewStore(db, cfg.DatabaseType, cfg.CodeSalt)
	store.SetClock(func() time.Time { return now })

	admin := NewAdminHandler(db, store, cfg, nil)
	stands := NewStandHandler(store, cfg)
	bookings := NewBookingHandler(store, cfg)
	adminHeaders := map[string]string{"X-Admin-Key": testutil.AdminKey(cfg)}

	// Step 1: Create a stand with two counters, 60 s per person each
	req := testutil.MakeRequest("POST", "/stands", models.CreateStandRequest{
		Name: "Arrosticini", Kind: models.KindStand, MaxCapacity: 10,
		ServiceSeconds: 60, Servers: 2, Lat: 43.844, Lon: 10.507,
	}, adminHeaders)
	w := httptest.NewRecorder()
	admin.CreateStand(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 1 - Create stand failed: %d - %s", w.Code, w.Body.String())
	}
	var st models.Stand
	testutil.AssertJSON(t, w, &st)
	t.Logf("Step 1 - Created stand: %s", st.ID)

	// Step 2: Four walk-ins
	req = testutil.MakeRequest("POST", "/stands/"+st.ID+"/arrivals", models.CountRequest{Count: 4}, nil)
	req.SetPathValue("id", st.ID)
	w = httptest.NewRecorder()
	stands.Arrive(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 2 - Arrivals failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 3: Book from the QR payload printed on the stand
	req = testutil.MakeRequest("POST", "/reservations", models.BookRequest{Name: "Giulia", QRPayload: st.QRPayload}, nil)
	w = httptest.NewRecorder()
	bookings.BookFromQR(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("Step 3 - Booking failed: %d - %s", w.Code, w.Body.String())
	}
	var booked models.BookResponse
	testutil.AssertJSON(t, w, &booked)
	if booked.Reservation.Ticket != 5 || booked.Reservation.Ahead != 4 {
		t.Fatalf("Step 3 - Expected ticket 5 with 4 ahead, got %+v", booked.Reservation)
	}
	// 4 ahead over 2 counters at 60 s
	if booked.Reservation.WaitSeconds != 120 {
		t.Errorf("Step 3 - Expected 120s wait, got %v", booked.Reservation.WaitSeconds)
	}

	// Step 4: Look the booking up by code
	req = httptest.NewRequest("GET", "/reservations/code/"+*booked.Reservation.Code, nil)
	req.SetPathValue("code", *booked.Reservation.Code)
	w = httptest.NewRecorder()
	bookings.GetReservationByCode(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 4 - Lookup failed: %d - %s", w.Code, w.Body.String())
	}

	// Step 5: 65 s later two people have been served by decay
	now = now.Add(65 * time.Second)
	req = httptest.NewRequest("GET", "/reservations/"+booked.Reservation.ID, nil)
	req.SetPathValue("id", booked.Reservation.ID)
	w = httptest.NewRecorder()
	bookings.GetReservation(w, req)
	var res models.Reservation
	testutil.AssertJSON(t, w, &res)
	if res.Ahead != 2 {
		t.Errorf("Step 5 - Expected 2 ahead after decay, got %d", res.Ahead)
	}
	if got := testutil.QueueCounter(t, db, st.ID); got != 3 {
		t.Errorf("Step 5 - Expected 3 in line, got %d", got)
	}

	// Step 6: Operator serves the remaining walk-ins
	req = testutil.MakeRequest("POST", "/stands/"+st.ID+"/serve", models.CountRequest{Count: 2}, adminHeaders)
	req.SetPathValue("id", st.ID)
	w = httptest.NewRecorder()
	admin.Serve(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 6 - Serve failed: %d - %s", w.Code, w.Body.String())
	}

	req = httptest.NewRequest("GET", "/reservations/"+booked.Reservation.ID, nil)
	req.SetPathValue("id", booked.Reservation.ID)
	w = httptest.NewRecorder()
	bookings.GetReservation(w, req)
	testutil.AssertJSON(t, w, &res)
	if res.Status != models.StatusWaiting || res.Ahead != 0 {
		t.Errorf("Step 6 - Expected Giulia at the counter, got %+v", res)
	}

	// Step 7: A second booking is cancelled
	req = testutil.MakeRequest("POST", "/stands/"+st.ID+"/reservations", models.BookRequest{Name: "Marco"}, nil)
	req.SetPathValue("id", st.ID)
	w = httptest.NewRecorder()
	bookings.BookAtStand(w, req)
	var second models.BookResponse
	testutil.AssertJSON(t, w, &second)

	req = testutil.MakeRequest("POST", "/reservations/"+second.Reservation.ID+"/cancel", nil,
		map[string]string{"X-Reservation-Token": second.Token})
	req.SetPathValue("id", second.Reservation.ID)
	w = httptest.NewRecorder()
	bookings.CancelReservation(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Step 7 - Cancel failed: %d - %s", w.Code, w.Body.String())
	}

	// Final check: only Giulia is waiting and the counters add up
	if got := testutil.CountWaiting(t, db, st.ID); got != 1 {
		t.Errorf("Expected 1 waiting row, got %d", got)
	}
	final, err := store.GetStand(t.Context(), st.ID)
	if err != nil {
		t.Fatalf("GetStand failed: %v", err)
	}
	if final.Arrivals != 6 || final.Served != 4 || final.QueueCounter != 1 {
		t.Errorf("Expected arrivals=6 served=4 queue=1, got %d/%d/%d", final.Arrivals, final.Served, final.QueueCounter)
	}
}
