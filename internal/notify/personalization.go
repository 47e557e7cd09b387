// Package notify builds notification payloads and dispatches them through
// the notification provider.
package notify

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"casenotify/internal/types"
)

// tagName is the struct tag naming the template placeholder a field fills.
const tagName = "notify"

// DateLayout is the format dates are rendered in.
const DateLayout = "02-01-2006"

type placeholderField struct {
	key   string
	index []int
}

// placeholderCache maps reflect.Type -> []placeholderField. Entries are
// computed once per type and never change.
var placeholderCache sync.Map

// Placeholders returns the template placeholder keys declared on the struct
// type of v, in field order.
func Placeholders(v any) []string {
	fields := fieldsOf(indirectType(reflect.TypeOf(v)))
	keys := make([]string, 0, len(fields))
	for _, f := range fields {
		keys = append(keys, f.key)
	}
	return keys
}

// Personalize renders v, a struct whose fields carry `notify:"placeholder"`
// tags, into a fresh personalization map. Empty values render as
// types.UnavailableValue. Anonymous struct fields without a tag are flattened.
func Personalize(v any) map[string]any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return map[string]any{}
	}

	fields := fieldsOf(rv.Type())
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		out[f.key] = render(rv.FieldByIndex(f.index))
	}
	return out
}

func indirectType(t reflect.Type) reflect.Type {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func fieldsOf(t reflect.Type) []placeholderField {
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}
	if cached, ok := placeholderCache.Load(t); ok {
		return cached.([]placeholderField)
	}

	var fields []placeholderField
	collectFields(t, nil, &fields)

	actual, _ := placeholderCache.LoadOrStore(t, fields)
	return actual.([]placeholderField)
}

func collectFields(t reflect.Type, prefix []int, out *[]placeholderField) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		index := append(append([]int(nil), prefix...), i)

		tag, hasTag := sf.Tag.Lookup(tagName)
		if !hasTag {
			if sf.Anonymous && sf.IsExported() && sf.Type.Kind() == reflect.Struct {
				collectFields(sf.Type, index, out)
			}
			continue
		}
		key := strings.TrimSpace(strings.Split(tag, ",")[0])
		if key == "" || key == "-" || !sf.IsExported() {
			continue
		}
		*out = append(*out, placeholderField{key: key, index: index})
	}
}

// render converts one field value to its template representation.
func render(v reflect.Value) any {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return types.UnavailableValue
		}
		v = v.Elem()
	}

	switch val := v.Interface().(type) {
	case time.Time:
		if val.IsZero() {
			return types.UnavailableValue
		}
		return val.Format(DateLayout)
	case bool:
		if val {
			return "ja"
		}
		return "nee"
	case fmt.Stringer:
		if s := strings.TrimSpace(val.String()); s != "" {
			return s
		}
		return types.UnavailableValue
	}

	switch v.Kind() {
	case reflect.String:
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
		return types.UnavailableValue
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	default:
		if v.IsZero() {
			return types.UnavailableValue
		}
		return fmt.Sprint(v.Interface())
	}
}
