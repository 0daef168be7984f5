package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Use it when snapshots must be readable by tools that only know
// encoding/json semantics. Both codecs decode each other's output.
type JSON struct{}

var _ Codec = JSON{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the codec used for new snapshots.
//
// NOTE: Existing snapshots are self-describing (they store the codec name in
// their header) and are decoded by the codec that wrote them.
var Default Codec = GoJSON{}
