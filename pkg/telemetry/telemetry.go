// Package telemetry normalizes vehicle-gateway payloads into typed states.
//
// The gateway's car-adapter endpoints wrap their payload in a {data: {attributes:
// {...}}} envelope, and the attribute names drift across vehicle generations and
// adapter versions. Each state is therefore extracted by probing an ordered list of
// candidate field paths; the first path present wins. Values are coerced tolerantly,
// since the adapter has been observed to switch between numbers, strings, and
// booleans for the same field.
package telemetry

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Document is a decoded JSON payload.
type Document map[string]interface{}

// Decode parses raw JSON into a Document.
func Decode(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// attributes unwraps the car-adapter envelope. Payloads without the envelope are
// probed at the root.
func (d Document) attributes() Document {
	if node, ok := d.at("data.attributes"); ok {
		if attrs, ok := node.(map[string]interface{}); ok {
			return Document(attrs)
		}
	}
	return d
}

// at walks a dot-separated path through nested objects. Numeric segments index
// arrays. Returns false if any segment is absent or null.
func (d Document) at(path string) (interface{}, bool) {
	var node interface{} = map[string]interface{}(d)
	for _, segment := range strings.Split(path, ".") {
		switch parent := node.(type) {
		case map[string]interface{}:
			child, ok := parent[segment]
			if !ok {
				return nil, false
			}
			node = child
		case []interface{}:
			index, err := strconv.Atoi(segment)
			if err != nil || index < 0 || index >= len(parent) {
				return nil, false
			}
			node = parent[index]
		default:
			return nil, false
		}
	}
	if node == nil {
		return nil, false
	}
	return node, true
}

// firstString probes paths in order and returns the first non-empty string value.
func (d Document) firstString(paths ...string) (string, bool) {
	for _, path := range paths {
		if node, ok := d.at(path); ok {
			if s, ok := asString(node); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// firstFloat probes paths in order and returns the first numeric value.
func (d Document) firstFloat(paths ...string) (float64, bool) {
	for _, path := range paths {
		if node, ok := d.at(path); ok {
			if f, ok := asFloat(node); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// firstBool probes paths in order and returns the first boolean value.
func (d Document) firstBool(paths ...string) (bool, bool) {
	for _, path := range paths {
		if node, ok := d.at(path); ok {
			if b, ok := asBool(node); ok {
				return b, true
			}
		}
	}
	return false, false
}

// firstTime probes paths in order and returns the first parseable timestamp.
func (d Document) firstTime(paths ...string) (time.Time, bool) {
	for _, path := range paths {
		if node, ok := d.at(path); ok {
			if ts, ok := asTime(node); ok {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

func asString(node interface{}) (string, bool) {
	s, ok := node.(string)
	return s, ok
}

func asFloat(node interface{}) (float64, bool) {
	switch v := node.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func asBool(node interface{}) (bool, bool) {
	switch v := node.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.ToLower(v))
		if err != nil {
			return false, false
		}
		return b, true
	case float64:
		return v != 0, true
	}
	return false, false
}

// asTime accepts RFC 3339 strings and epoch numbers. Epoch values above 10^12 are
// taken as milliseconds; the adapter has emitted both.
func asTime(node interface{}) (time.Time, bool) {
	switch v := node.(type) {
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05Z0700"} {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	case float64:
		if v <= 0 {
			return time.Time{}, false
		}
		if v >= 1e12 {
			sec, msec := math.Floor(v/1000), math.Mod(v, 1000)
			return time.Unix(int64(sec), int64(msec)*int64(time.Millisecond)), true
		}
		return time.Unix(int64(v), 0), true
	}
	return time.Time{}, false
}
