// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package venue

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"

	"github.com/danielhkuo/smartecoq/models"
)

// DefaultWalkSpeed is an average adult walking pace in metres per second
const DefaultWalkSpeed = 1.4

// DefaultOrigin is where visitors are assumed to stand when nothing better
// is known: the main entrance.
var DefaultOrigin = models.Point{Lat: 43.843, Lon: 10.508}

var ErrUnknownDataset = errors.New("unknown dataset")

type Point struct {
	Lat float64 `yaml:"lat" validate:"latitude"`
	Lon float64 `yaml:"lon" validate:"longitude"`
}

// StandConfig is one service point declared in the venue file
type StandConfig struct {
	Name           string  `yaml:"name" validate:"required"`
	Kind           string  `yaml:"kind" validate:"required,oneof=stand toilet ecopoint"`
	MaxCapacity    int     `yaml:"max_capacity" validate:"gt=0"`
	ServiceSeconds float64 `yaml:"service_seconds" validate:"gt=0"`
	Servers        int     `yaml:"servers" validate:"gte=0"`
	Lat            float64 `yaml:"lat" validate:"latitude"`
	Lon            float64 `yaml:"lon" validate:"longitude"`
}

// Venue is the static description of the event site
type Venue struct {
	Name                string            `yaml:"name" validate:"required"`
	DefaultOrigin       *Point            `yaml:"default_origin"`
	WalkSpeed           float64           `yaml:"walk_speed_mps" validate:"gte=0"`
	Stands              []StandConfig     `yaml:"stands" validate:"unique=Name,dive"`
	Datasets            map[string]string `yaml:"datasets" validate:"dive,keys,required,endkeys,required"`
	Walkways            string            `yaml:"walkways"`
	RecyclingGuidelines string            `yaml:"recycling_guidelines"`

	dir string

	mu     sync.Mutex
	loaded map[string]*geojson.FeatureCollection
}

// Load reads and validates a venue file. Relative dataset paths are
// resolved against the file's directory.
func Load(path string) (*Venue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read venue file: %w", err)
	}
	return Parse(data, filepath.Dir(path))
}

// Parse decodes a venue description; dir anchors relative paths
func Parse(data []byte, dir string) (*Venue, error) {
	var v Venue
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse venue file: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&v); err != nil {
		return nil, fmt.Errorf("invalid venue file: %w", err)
	}

	if v.WalkSpeed == 0 {
		v.WalkSpeed = DefaultWalkSpeed
	}
	v.dir = dir
	v.loaded = make(map[string]*geojson.FeatureCollection)

	return &v, nil
}

// Origin returns the simulated starting point of a visitor
func (v *Venue) Origin() models.Point {
	if v.DefaultOrigin == nil {
		return DefaultOrigin
	}
	return models.Point{Lat: v.DefaultOrigin.Lat, Lon: v.DefaultOrigin.Lon}
}

// StandRequests converts the declared stands into create requests
func (v *Venue) StandRequests() []models.CreateStandRequest {
	reqs := make([]models.CreateStandRequest, 0, len(v.Stands))
	for _, s := range v.Stands {
		reqs = append(reqs, models.CreateStandRequest{
			Name:           s.Name,
			Kind:           s.Kind,
			MaxCapacity:    s.MaxCapacity,
			ServiceSeconds: s.ServiceSeconds,
			Servers:        s.Servers,
			Lat:            s.Lat,
			Lon:            s.Lon,
		})
	}
	return reqs
}

// DatasetNames lists the configured POI datasets in name order
func (v *Venue) DatasetNames() []string {
	names := make([]string, 0, len(v.Datasets))
	for name := range v.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WalkwaysPath is the resolved OSM extract path, empty when none is configured
func (v *Venue) WalkwaysPath() string {
	if v.Walkways == "" {
		return ""
	}
	return v.resolve(v.Walkways)
}

// Guidelines returns the recycling guidelines text given to the advisor
func (v *Venue) Guidelines() (string, error) {
	if v.RecyclingGuidelines == "" {
		return "", nil
	}
	data, err := os.ReadFile(v.resolve(v.RecyclingGuidelines))
	if err != nil {
		return "", fmt.Errorf("failed to read recycling guidelines: %w", err)
	}
	return string(data), nil
}

func (v *Venue) resolve(p string) string {
	if filepath.IsAbs(p) || v.dir == "" {
		return p
	}
	return filepath.Join(v.dir, p)
}
