// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package venue

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/danielhkuo/smartecoq/models"
)

// UnknownAmenity labels features without an amenity property
const UnknownAmenity = "Sconosciuto"

// POIs loads a dataset and keeps the features whose amenity is listed.
// An empty amenity list keeps everything. The centre and the amenity list
// always describe the whole dataset so a client can offer every filter.
func (v *Venue) POIs(dataset string, amenities []string) (models.POIResponse, error) {
	fc, err := v.collection(dataset)
	if err != nil {
		return models.POIResponse{}, err
	}

	keep := make(map[string]bool, len(amenities))
	for _, a := range amenities {
		keep[a] = true
	}

	resp := models.POIResponse{
		Dataset:   dataset,
		Amenities: []string{},
		POIs:      []models.POI{},
	}

	seen := map[string]bool{}
	var sumLat, sumLon float64
	n := 0
	for _, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		p := featurePoint(f.Geometry)
		amenity := amenityOf(f.Properties)

		sumLat += p.Lat()
		sumLon += p.Lon()
		n++

		if !seen[amenity] {
			seen[amenity] = true
			resp.Amenities = append(resp.Amenities, amenity)
		}
		if len(keep) > 0 && !keep[amenity] {
			continue
		}

		props := map[string]interface{}(f.Properties)
		if props == nil {
			props = map[string]interface{}{}
		}
		resp.POIs = append(resp.POIs, models.POI{
			Lat:        p.Lat(),
			Lon:        p.Lon(),
			Amenity:    amenity,
			Properties: props,
		})
	}

	if n > 0 {
		resp.Center = models.Point{Lat: sumLat / float64(n), Lon: sumLon / float64(n)}
	} else {
		resp.Center = v.Origin()
	}

	return resp, nil
}

func (v *Venue) collection(dataset string) (*geojson.FeatureCollection, error) {
	path, ok := v.Datasets[dataset]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataset, dataset)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if fc, ok := v.loaded[dataset]; ok {
		return fc, nil
	}

	data, err := os.ReadFile(v.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset %s: %w", dataset, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode dataset %s: %w", dataset, err)
	}

	if v.loaded == nil {
		v.loaded = make(map[string]*geojson.FeatureCollection)
	}
	v.loaded[dataset] = fc
	return fc, nil
}

// featurePoint reduces any geometry to a marker position
func featurePoint(g orb.Geometry) orb.Point {
	if p, ok := g.(orb.Point); ok {
		return p
	}
	return g.Bound().Center()
}

func amenityOf(props geojson.Properties) string {
	if s, ok := props["amenity"].(string); ok && s != "" {
		return s
	}
	return UnknownAmenity
}
