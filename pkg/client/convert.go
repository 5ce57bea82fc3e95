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

package client

import (
	"encoding/json"
	"fmt"
)

// OutputConverter turns one raw output slot into the value handed to
// callers. Implementations may build richer geospatial types from the raw
// STAC metadata; the client itself treats values as opaque.
type OutputConverter interface {
	Convert(raw any) (any, error)
}

// OutputConverterFunc adapts a function to OutputConverter.
type OutputConverterFunc func(raw any) (any, error)

// Convert implements OutputConverter.
func (f OutputConverterFunc) Convert(raw any) (any, error) {
	return f(raw)
}

// IdentityConverter returns output values unchanged.
type IdentityConverter struct{}

// Convert implements OutputConverter.
func (IdentityConverter) Convert(raw any) (any, error) {
	return raw, nil
}

// InputSerializer turns caller input data into the user_input payload of a
// run.
type InputSerializer interface {
	SerializeInput(data any) (any, error)
}

// JSONInputSerializer serializes input through encoding/json, so any value
// with a JSON representation (structs, maps, slices) is accepted.
type JSONInputSerializer struct{}

// SerializeInput implements InputSerializer.
func (JSONInputSerializer) SerializeInput(data any) (any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("serializing input data: %w", err)
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("serializing input data: %w", err)
	}
	return out, nil
}

func convertOutput(conv OutputConverter, raw map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(raw))
	for slot, value := range raw {
		converted, err := conv.Convert(value)
		if err != nil {
			return nil, fmt.Errorf("converting output %q: %w", slot, err)
		}
		out[slot] = converted
	}
	return out, nil
}
