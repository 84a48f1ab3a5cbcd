// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/danielhkuo/smartecoq/middleware"
	"github.com/danielhkuo/smartecoq/models"
	"github.com/danielhkuo/smartecoq/navigator"
)

type NavigatorHandler struct {
	nav *navigator.Navigator
}

func NewNavigatorHandler(nav *navigator.Navigator) *NavigatorHandler {
	return &NavigatorHandler{nav: nav}
}

// Datasets handles GET /navigator/datasets
func (h *NavigatorHandler) Datasets(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, models.DatasetsResponse{Datasets: h.nav.Datasets()})
}

// POIs handles GET /navigator/pois?dataset=&amenity=
// amenity may be repeated or comma separated.
func (h *NavigatorHandler) POIs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dataset := q.Get("dataset")
	if dataset == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "dataset is required")
		return
	}

	var amenities []string
	for _, v := range q["amenity"] {
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				amenities = append(amenities, a)
			}
		}
	}

	resp, err := h.nav.POIs(dataset, amenities)
	if err != nil {
		writeError(w, r, err, "Failed to load points of interest")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// Origin handles GET /navigator/origin?lat=&lon=
func (h *NavigatorHandler) Origin(w http.ResponseWriter, r *http.Request) {
	explicit, err := pointFromQuery(r)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	loc := h.nav.Origin(r.Context(), explicit, middleware.GetClientIP(r))
	middleware.JSONResponse(w, http.StatusOK, loc)
}

// Route handles POST /navigator/route
func (h *NavigatorHandler) Route(w http.ResponseWriter, r *http.Request) {
	var req models.RouteRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	route, err := h.nav.Route(r.Context(), req, middleware.GetClientIP(r))
	if err != nil {
		writeError(w, r, err, "Failed to compute route")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, route)
}

// Plan handles POST /navigator/plan
func (h *NavigatorHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req models.PlanRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	plan, err := h.nav.Plan(r.Context(), req, middleware.GetClientIP(r))
	if err != nil {
		writeError(w, r, err, "Failed to plan")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, plan)
}

func pointFromQuery(r *http.Request) (*models.Point, error) {
	q := r.URL.Query()
	latStr, lonStr := q.Get("lat"), q.Get("lon")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || lat < -90 || lat > 90 {
		return nil, errors.New("lat must be a latitude")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil || lon < -180 || lon > 180 {
		return nil, errors.New("lon must be a longitude")
	}
	return &models.Point{Lat: lat, Lon: lon}, nil
}
