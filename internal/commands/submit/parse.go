// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package submit

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

// readArg returns the contents of the file named by s when s is "@path" or
// an existing file, and s itself otherwise.
func readArg(s string) (string, error) {
	path := ""
	switch {
	case strings.HasPrefix(s, "@"):
		path = s[1:]
	case !strings.ContainsAny(s, "\n{(") && fileExists(s):
		path = s
	}
	if path == "" {
		return s, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// parseGeometry accepts WKT or GeoJSON (geometry, feature or feature
// collection). A collection with several features becomes an
// orb.Collection.
func parseGeometry(s string) (orb.Geometry, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return nil, fmt.Errorf("empty geometry")
	}
	if !strings.HasPrefix(text, "{") {
		g, err := wkt.Unmarshal(text)
		if err != nil {
			return nil, fmt.Errorf("invalid WKT geometry: %w", err)
		}
		return g, nil
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(text), &probe); err != nil {
		return nil, fmt.Errorf("invalid GeoJSON: %w", err)
	}

	switch probe.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("invalid GeoJSON feature collection: %w", err)
		}
		switch len(fc.Features) {
		case 0:
			return nil, fmt.Errorf("feature collection has no features")
		case 1:
			return fc.Features[0].Geometry, nil
		}
		var coll orb.Collection
		for _, f := range fc.Features {
			coll = append(coll, f.Geometry)
		}
		return coll, nil
	case "Feature":
		f, err := geojson.UnmarshalFeature([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("invalid GeoJSON feature: %w", err)
		}
		return f.Geometry, nil
	default:
		g, err := geojson.UnmarshalGeometry([]byte(text))
		if err != nil {
			return nil, fmt.Errorf("invalid GeoJSON geometry: %w", err)
		}
		return g.Geometry(), nil
	}
}

// parseTime accepts most common timestamp layouts. Times without a zone
// are taken as UTC.
func parseTime(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

// parseParams turns key=value pairs into workflow parameters. Values that
// parse as JSON keep their type; anything else is a string.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", p)
		}
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			v = value
		}
		params[key] = v
	}
	return params, nil
}

// parseInput reads arbitrary run input as JSON or YAML.
func parseInput(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v, nil
	}
	if err := yaml.Unmarshal([]byte(text), &v); err != nil {
		return nil, fmt.Errorf("input is neither JSON nor YAML: %w", err)
	}
	if v == nil {
		return nil, fmt.Errorf("input is empty")
	}
	return v, nil
}
