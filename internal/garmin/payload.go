package garmin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
)

// Payload wraps a decoded Garmin Connect JSON document. Vendor responses are
// loosely structured and change shape between firmware generations, so values
// are read by path and every accessor tolerates missing or mistyped nodes.
type Payload struct {
	data any
}

// NewPayload wraps an already decoded value (map[string]any, []any, numbers, ...).
func NewPayload(v any) Payload {
	return Payload{data: v}
}

// DecodePayload reads a JSON document, keeping numbers as json.Number.
// An empty body yields an empty Payload.
func DecodePayload(r io.Reader) (Payload, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return Payload{}, fmt.Errorf("read payload: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Payload{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return Payload{}, fmt.Errorf("decode payload: %w", err)
	}
	return Payload{data: v}, nil
}

// Raw returns the underlying decoded value.
func (p Payload) Raw() any {
	return p.data
}

// IsEmpty reports whether the payload is null, an empty object or an empty list.
func (p Payload) IsEmpty() bool {
	switch v := p.data.(type) {
	case nil:
		return true
	case map[string]any:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

// Last returns the final element of a list payload, or the payload itself
// when it is not a list. An empty list yields an empty Payload.
func (p Payload) Last() Payload {
	list, ok := p.data.([]any)
	if !ok {
		return p
	}
	if len(list) == 0 {
		return Payload{}
	}
	return Payload{data: list[len(list)-1]}
}

// Lookup walks path through nested objects (string keys) and lists (int indexes).
func (p Payload) Lookup(path ...any) (any, bool) {
	cur := p.data
	for _, step := range path {
		switch key := step.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return nil, false
			}
			if cur, ok = m[key]; !ok {
				return nil, false
			}
		case int:
			list, ok := cur.([]any)
			if !ok || key < 0 || key >= len(list) {
				return nil, false
			}
			cur = list[key]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}

// Get returns the sub-document at path.
func (p Payload) Get(path ...any) Payload {
	v, _ := p.Lookup(path...)
	return Payload{data: v}
}

// Float returns the number at path, or nil when absent or not numeric.
func (p Payload) Float(path ...any) *float64 {
	v, ok := p.Lookup(path...)
	if !ok {
		return nil
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	return &f
}

// Int returns the number at path rounded to the nearest integer, or nil when
// absent or not numeric.
func (p Payload) Int(path ...any) *int {
	v, ok := p.Lookup(path...)
	if !ok {
		return nil
	}
	if n, ok := v.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			out := int(i)
			return &out
		}
	}
	f, ok := toFloat(v)
	if !ok {
		return nil
	}
	out := int(math.Round(f))
	return &out
}

// String returns the string at path, or "" when absent or not a string.
func (p Payload) String(path ...any) string {
	v, _ := p.Lookup(path...)
	s, _ := v.(string)
	return s
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
