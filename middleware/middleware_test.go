// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/smartecoq/auth"
	"github.com/danielhkuo/smartecoq/models"
)

func TestValidationMessage(t *testing.T) {
	valid := models.CreateStandRequest{
		Name:           "Piadineria",
		Kind:           models.KindStand,
		MaxCapacity:    10,
		ServiceSeconds: 60,
		Lat:            43.843,
		Lon:            10.508,
	}

	tests := []struct {
		name   string
		mutate func(r *models.CreateStandRequest)
		want   string
	}{
		{"missing name", func(r *models.CreateStandRequest) { r.Name = "" }, "name is required"},
		{"unknown kind", func(r *models.CreateStandRequest) { r.Kind = "bar" }, "kind must be one of [stand toilet ecopoint]"},
		{"zero capacity", func(r *models.CreateStandRequest) { r.MaxCapacity = 0 }, "max_capacity fails gt=0"},
		{"negative service time", func(r *models.CreateStandRequest) { r.ServiceSeconds = -5 }, "service_seconds fails gt=0"},
		{"latitude out of range", func(r *models.CreateStandRequest) { r.Lat = 95 }, "lat must be a valid latitude"},
		{"longitude out of range", func(r *models.CreateStandRequest) { r.Lon = -181 }, "lon must be a valid longitude"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			err := validate.Struct(req)
			if err == nil {
				t.Fatal("Expected a validation error")
			}
			if got := ValidationMessage(err); got != tt.want {
				t.Errorf("ValidationMessage() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("several fields joined", func(t *testing.T) {
		req := valid
		req.Name = ""
		req.MaxCapacity = -1

		got := ValidationMessage(validate.Struct(req))
		if got != "name is required; max_capacity fails gt=0" {
			t.Errorf("ValidationMessage() = %q", got)
		}
	})

	t.Run("nested chat history", func(t *testing.T) {
		req := models.ChatRequest{
			Message: "Where does a pizza box go?",
			History: []models.ChatMessage{{Role: "system", Content: "x"}},
		}
		got := ValidationMessage(validate.Struct(req))
		if got != "role must be one of [user assistant]" {
			t.Errorf("ValidationMessage() = %q", got)
		}
	})

	t.Run("non validator error", func(t *testing.T) {
		if got := ValidationMessage(errors.New("stand not found")); got != "stand not found" {
			t.Errorf("ValidationMessage() = %q", got)
		}
	})
}

func TestDecodeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"walk-in count", `{"count":3}`, ""},
		{"zero walk-ins", `{"count":0}`, "count fails gt=0"},
		{"too many walk-ins", `{"count":501}`, "count fails lte=500"},
		{"not json", `count=3`, "invalid JSON body"},
		{"empty body", ``, "invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/stands/abc/arrivals", strings.NewReader(tt.body))

			var parsed models.CountRequest
			err := DecodeAndValidate(req, &parsed)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if parsed.Count != 3 {
					t.Errorf("Expected count 3, got %d", parsed.Count)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("Expected error %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	called := false
	handler := CORS(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))

	t.Run("preflight stops before the handler", func(t *testing.T) {
		called = false
		req := httptest.NewRequest("OPTIONS", "/reservations/abc/cancel", nil)
		req.Header.Set("Origin", "https://festival.example")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusOK || called {
			t.Errorf("preflight: status %d, handler called %v", w.Code, called)
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://festival.example" {
			t.Errorf("Allow-Origin = %q", got)
		}

		allowed := w.Header().Get("Access-Control-Allow-Headers")
		for _, h := range []string{"X-Admin-Key", "X-Reservation-Token", RequestIDHeader} {
			if !strings.Contains(allowed, h) {
				t.Errorf("Allow-Headers %q misses %s", allowed, h)
			}
		}
		if !strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), "PUT") {
			t.Error("Expected PUT for queue length updates")
		}
	})

	t.Run("request id is readable by browsers", func(t *testing.T) {
		called = false
		w := httptest.NewRecorder()

		CORS(WithLogging(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusCreated)
		})).ServeHTTP(w, httptest.NewRequest("POST", "/reservations", nil))

		if !called || w.Code != http.StatusCreated {
			t.Fatalf("status %d, handler called %v", w.Code, called)
		}
		if got := w.Header().Get("Access-Control-Expose-Headers"); got != RequestIDHeader {
			t.Errorf("Expose-Headers = %q, want %s", got, RequestIDHeader)
		}
		if w.Header().Get(RequestIDHeader) == "" {
			t.Error("Expected a request id on the response")
		}
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("Allow-Origin without Origin = %q, want *", got)
		}
	})
}

func TestWithLogging(t *testing.T) {
	var seen string
	handler := WithLogging(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
		ErrorResponse(w, http.StatusConflict, "queue is full")
	})

	t.Run("generated id", func(t *testing.T) {
		w := httptest.NewRecorder()
		handler(w, httptest.NewRequest("POST", "/stands/abc/reservations", nil))

		id := w.Header().Get(RequestIDHeader)
		if id == "" {
			t.Fatal("Expected X-Request-ID header")
		}
		if seen != id {
			t.Errorf("Context id %q does not match header %q", seen, id)
		}
		if w.Code != http.StatusConflict {
			t.Errorf("Expected status 409 to pass through, got %d", w.Code)
		}
	})

	t.Run("upstream id kept", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/stands/abc/reservations", nil)
		req.Header.Set(RequestIDHeader, "lb-7f3a")
		w := httptest.NewRecorder()
		handler(w, req)

		if got := w.Header().Get(RequestIDHeader); got != "lb-7f3a" {
			t.Errorf("Expected upstream id, got %q", got)
		}
		if seen != "lb-7f3a" {
			t.Errorf("Expected context id lb-7f3a, got %q", seen)
		}
	})

	if RequestID(httptest.NewRequest("GET", "/", nil).Context()) != "" {
		t.Error("Expected no request id outside WithLogging")
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		realIP     string
		remoteAddr string
		want       string
	}{
		{"proxy chain keeps the visitor", "198.51.100.7, 10.1.0.2", "", "10.1.0.3:443", "198.51.100.7"},
		{"forwarded wins over real ip", "198.51.100.7", "203.0.113.9", "10.1.0.3:443", "198.51.100.7"},
		{"real ip from nginx", "", " 203.0.113.9 ", "10.1.0.3:443", "203.0.113.9"},
		{"direct IPv4 drops the port", "", "", "192.0.2.44:51234", "192.0.2.44"},
		{"direct IPv6 drops the port", "", "", "[2001:db8::5]:51234", "2001:db8::5"},
		{"remote without port", "", "", "192.0.2.44", "192.0.2.44"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/navigator/origin", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				req.Header.Set("X-Real-IP", tt.realIP)
			}

			if got := GetClientIP(req); got != tt.want {
				t.Errorf("GetClientIP() = %q, want %q", got, tt.want)
			}
		})
	}

	t.Run("same visitor hashes the same from any port", func(t *testing.T) {
		a := httptest.NewRequest("POST", "/reservations", nil)
		a.RemoteAddr = "192.0.2.44:50000"
		b := httptest.NewRequest("POST", "/reservations", nil)
		b.RemoteAddr = "192.0.2.44:60000"

		if auth.HashIP(GetClientIP(a), "salt") != auth.HashIP(GetClientIP(b), "salt") {
			t.Error("Expected equal ip hashes for one host")
		}
	})
}
