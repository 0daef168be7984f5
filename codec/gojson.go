package codec

import gojson "github.com/goccy/go-json"

// GoJSON is the default snapshot codec, backed by github.com/goccy/go-json.
//
// Snapshot payloads are never embedded in HTML, so string values are written
// without HTML escaping. The output decodes with JSON as well.
type GoJSON struct{}

var _ Codec = GoJSON{}

// Marshal encodes v without HTML escaping.
func (GoJSON) Marshal(v any) ([]byte, error) { return gojson.MarshalNoEscape(v) }

// Unmarshal decodes data into v.
func (GoJSON) Unmarshal(data []byte, v any) error { return gojson.Unmarshal(data, v) }

// Name returns "go-json", the name recorded in snapshot headers.
func (GoJSON) Name() string { return "go-json" }
