package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Model state is plain structs of floats and slices, which JSON encodes
// portably. Use this when the lowest-dependency option matters more than
// encoding speed.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
//
// This affects newly-written snapshots only; existing snapshots are
// self-describing and are opened by selecting the codec by name.
var Default Codec = GoJSON{}
