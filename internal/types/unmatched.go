package types

import (
	"encoding/json"
	"reflect"
	"strings"
	"sync"
)

// knownKeysCache maps a struct type to the set of JSON keys its fields
// declare. Built lazily, never invalidated.
var knownKeysCache sync.Map // reflect.Type -> map[string]struct{}

// knownJSONKeys returns the lower-cased JSON object keys declared by the
// exported fields of t. Fields tagged `json:"-"` are ignored.
func knownJSONKeys(t reflect.Type) map[string]struct{} {
	if cached, ok := knownKeysCache.Load(t); ok {
		return cached.(map[string]struct{})
	}

	keys := make(map[string]struct{}, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		keys[strings.ToLower(name)] = struct{}{}
	}

	actual, _ := knownKeysCache.LoadOrStore(t, keys)
	return actual.(map[string]struct{})
}

// unmatchedFields returns the top-level keys of the JSON object in data that
// are not declared by t, together with their raw values. Keys match
// case-insensitively, as encoding/json binds them. Returns nil when every key
// is known.
func unmatchedFields(data []byte, t reflect.Type) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	known := knownJSONKeys(t)
	var out map[string]json.RawMessage
	for k, v := range raw {
		if _, ok := known[strings.ToLower(k)]; ok {
			continue
		}
		if out == nil {
			out = make(map[string]json.RawMessage)
		}
		out[k] = v
	}
	return out, nil
}
