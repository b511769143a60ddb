package changeset

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Record is a plain keyed snapshot or patch of a domain record
type Record = map[string]any

// ValueKind tags the variant held by a Value
type ValueKind int

const (
	KindEmpty ValueKind = iota
	KindScalar
	KindNumber
	KindReference
	KindDate
	KindList
	KindStructured
)

// Value is a normalized field value used for comparison and display
type Value struct {
	Kind   ValueKind
	Text   string
	Number float64
	ID     string
	Name   string
	Time   time.Time
	Items  []Value
	Raw    any
}

// FieldKind hints how a raw value of a known field should be interpreted
type FieldKind int

const (
	FieldAuto FieldKind = iota
	FieldText
	FieldStatus
	FieldNumber
	FieldQuantity
	FieldDate
	FieldReference
	FieldItems
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseValue converts a raw decoded value into a Value using the field kind hint.
func ParseValue(raw any, kind FieldKind) Value {
	switch v := raw.(type) {
	case nil:
		return Value{Kind: KindEmpty}
	case Value:
		return v
	case string:
		return parseString(v, kind)
	case *time.Time:
		if v == nil || v.IsZero() {
			return Value{Kind: KindEmpty}
		}
		return Value{Kind: KindDate, Time: *v, Raw: raw}
	case time.Time:
		if v.IsZero() {
			return Value{Kind: KindEmpty}
		}
		return Value{Kind: KindDate, Time: v, Raw: raw}
	case bool:
		return Value{Kind: KindScalar, Text: strconv.FormatBool(v), Raw: raw}
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return numberValue(f, kind, raw)
		}
		return parseString(v.String(), kind)
	case map[string]any:
		return parseObject(v)
	case []any:
		return parseList(v)
	case []string:
		items := make([]any, len(v))
		for i, s := range v {
			items[i] = s
		}
		return parseList(items)
	}

	if f, ok := toFloat(raw); ok {
		return numberValue(f, kind, raw)
	}
	return Value{Kind: KindStructured, Raw: raw}
}

func parseString(s string, kind FieldKind) Value {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Value{Kind: KindEmpty}
	}
	switch kind {
	case FieldDate:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return Value{Kind: KindDate, Time: t, Raw: s}
			}
		}
	case FieldNumber, FieldQuantity:
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return numberValue(f, kind, s)
		}
	case FieldReference:
		return Value{Kind: KindReference, Name: trimmed, Raw: s}
	}
	return Value{Kind: KindScalar, Text: trimmed, Raw: s}
}

func numberValue(f float64, kind FieldKind, raw any) Value {
	if kind == FieldQuantity && f == 0 {
		return Value{Kind: KindEmpty}
	}
	return Value{Kind: KindNumber, Number: f, Raw: raw}
}

func parseObject(m map[string]any) Value {
	id := stringAttr(m, "id")
	if id == "" {
		id = stringAttr(m, "_id")
	}
	name := stringAttr(m, "name")
	if id == "" && name == "" {
		if len(m) == 0 {
			return Value{Kind: KindEmpty}
		}
		return Value{Kind: KindStructured, Raw: m}
	}
	return Value{Kind: KindReference, ID: id, Name: name, Raw: m}
}

func parseList(list []any) Value {
	items := make([]Value, 0, len(list))
	for _, item := range list {
		items = append(items, ParseValue(item, FieldAuto))
	}
	return Value{Kind: KindList, Items: items, Raw: list}
}

func stringAttr(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case fmt.Stringer:
		return strings.TrimSpace(s.String())
	}
	if f, ok := toFloat(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

func toFloat(raw any) (float64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// IsEmpty reports whether the value is unset
func (v Value) IsEmpty() bool {
	return v.Kind == KindEmpty
}
