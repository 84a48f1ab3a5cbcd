package models

import "time"

// Service point kinds
const (
	KindStand    = "stand"
	KindToilet   = "toilet"
	KindEcopoint = "ecopoint"
)

// Reservation status constants
const (
	StatusWaiting   = "waiting"
	StatusServed    = "served"
	StatusCancelled = "cancelled"
)

// Reservation sources
const (
	SourceBooking = "booking"
	SourceWalkIn  = "walk_in"
)

// ValidKind reports whether k names a service point kind
func ValidKind(k string) bool {
	return k == KindStand || k == KindToilet || k == KindEcopoint
}

// Request types

type CreateStandRequest struct {
	Name           string  `json:"name" validate:"required"`
	Kind           string  `json:"kind" validate:"required,oneof=stand toilet ecopoint"`
	MaxCapacity    int     `json:"max_capacity" validate:"gt=0"`
	ServiceSeconds float64 `json:"service_seconds" validate:"gt=0"`
	Servers        int     `json:"servers" validate:"gte=0"`
	Lat            float64 `json:"lat" validate:"latitude"`
	Lon            float64 `json:"lon" validate:"longitude"`
}

type BookRequest struct {
	Name      string `json:"name" validate:"required,max=80"`
	QRPayload string `json:"qr_payload,omitempty"`
}

type CountRequest struct {
	Count int `json:"count" validate:"gt=0,lte=500"`
}

type QueueLengthRequest struct {
	Length int `json:"length" validate:"gte=0"`
}

type SeedQueuesRequest struct {
	Max int `json:"max" validate:"gte=0,lte=500"`
}

type Point struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lon float64 `json:"lon" validate:"longitude"`
}

type RouteRequest struct {
	Origin      *Point `json:"origin,omitempty"`
	Destination *Point `json:"destination,omitempty"`
	Place       string `json:"place,omitempty"`
	StandID     string `json:"stand_id,omitempty"`
}

type PlanRequest struct {
	Kind   string `json:"kind" validate:"required,oneof=stand toilet ecopoint"`
	Origin *Point `json:"origin,omitempty"`
	Limit  int    `json:"limit,omitempty" validate:"gte=0"`
}

type ChatMessage struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	History []ChatMessage `json:"history" validate:"dive"`
	Message string        `json:"message" validate:"required"`
}

type RecyclingRequest struct {
	Items string `json:"items" validate:"required"`
}

// Response types

type BookResponse struct {
	Reservation Reservation `json:"reservation"`
	Token       string      `json:"token"`
	QRPayload   string      `json:"qr_payload"`
}

type ArrivalsResponse struct {
	Stand   Stand `json:"stand"`
	Tickets []int `json:"tickets"`
}

type ServeResponse struct {
	Stand  Stand `json:"stand"`
	Served int   `json:"served"`
}

type ResetResponse struct {
	Status string `json:"status"`
	Stands int    `json:"stands"`
}

type SeedQueuesResponse struct {
	Lengths map[string]int `json:"lengths"`
}

type DatasetsResponse struct {
	Datasets []string `json:"datasets"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type RecyclingAdvice struct {
	Text string `json:"text"`
	Bin  string `json:"bin,omitempty"`
}

type RecyclingResponse struct {
	Items  string            `json:"items"`
	Advice []RecyclingAdvice `json:"advice"`
}

// Domain types

// Stand is a named service point with a waiting line
type Stand struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Kind           string    `json:"kind"`
	MaxCapacity    int       `json:"max_capacity"`
	QueueCounter   int       `json:"queue_counter"`
	Arrivals       int       `json:"arrivals"`
	Served         int       `json:"served"`
	ServiceSeconds float64   `json:"service_seconds"`
	Servers        int       `json:"servers"`
	Lat            float64   `json:"lat"`
	Lon            float64   `json:"lon"`
	LastServedAt   time.Time `json:"last_served_at"`
	CreatedAt      time.Time `json:"created_at"`
	WaitSeconds    float64   `json:"wait_seconds"`
	QRPayload      string    `json:"qr_payload"`
}

// Reservation is one ticket in a stand's line, booked or walk-in
type Reservation struct {
	ID          string     `json:"reservation_id"`
	StandID     string     `json:"stand_id"`
	Ticket      int        `json:"ticket"`
	Datetime    time.Time  `json:"reservation_datetime"`
	Name        string     `json:"reservation_name"`
	Source      string     `json:"source"`
	Status      string     `json:"status"`
	Code        *string    `json:"code,omitempty"`
	Token       *string    `json:"-"` // Never expose in JSON
	IPHash      *string    `json:"-"` // Never expose in JSON
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
	Ahead       int        `json:"ahead"`
	WaitSeconds float64    `json:"wait_seconds"`
}

type Location struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Source string  `json:"source"` // request, ip, default, geocoder
	Label  string  `json:"label,omitempty"`
}

type Route struct {
	From            Location `json:"from"`
	To              Location `json:"to"`
	DistanceMeters  float64  `json:"distance_m"`
	DurationSeconds float64  `json:"duration_s"`
	Polyline        string   `json:"polyline,omitempty"`
	Router          string   `json:"router"`
}

type PlanCandidate struct {
	Stand                Stand   `json:"stand"`
	DistanceMeters       float64 `json:"distance_m"`
	TravelSeconds        float64 `json:"travel_s"`
	WaitSeconds          float64 `json:"wait_s"`
	TimeToServiceSeconds float64 `json:"time_to_service_s"`
	Polyline             string  `json:"polyline,omitempty"`
	Router               string  `json:"router"`
}

type Plan struct {
	Origin     Location        `json:"origin"`
	Kind       string          `json:"kind"`
	Candidates []PlanCandidate `json:"candidates"`
	Skipped    []string        `json:"skipped,omitempty"`
}

type POI struct {
	Lat        float64                `json:"lat"`
	Lon        float64                `json:"lon"`
	Amenity    string                 `json:"amenity"`
	Properties map[string]interface{} `json:"properties"`
}

type POIResponse struct {
	Dataset   string   `json:"dataset"`
	Center    Point    `json:"center"`
	Amenities []string `json:"amenities"`
	POIs      []POI    `json:"pois"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
