package aedesc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ValueKind discriminates decoded reply values
type ValueKind int

const (
	KindNull ValueKind = iota
	KindInt
	KindFloat
	KindString
	KindBool
	KindDate
	KindList
	KindRecord
)

// Field is one key/value pair of a decoded record; the key is the display
// string form of its four-byte code
type Field struct {
	Key   string
	Value Value
}

// Value is a structured value decoded from a reply descriptor
type Value struct {
	Kind   ValueKind
	Int    int64
	Float  float64
	Str    string
	Bool   bool
	Date   time.Time
	List   []Value
	Record []Field
}

// Null returns the explicit missing-value variant
func Null() Value {
	return Value{Kind: KindNull}
}

// Int returns an integer value
func Int(n int64) Value {
	return Value{Kind: KindInt, Int: n}
}

// Float returns a float value
func Float(f float64) Value {
	return Value{Kind: KindFloat, Float: f}
}

// String returns a string value
func String(s string) Value {
	return Value{Kind: KindString, Str: s}
}

// Bool returns a boolean value
func Bool(b bool) Value {
	return Value{Kind: KindBool, Bool: b}
}

// Date returns a date value
func Date(t time.Time) Value {
	return Value{Kind: KindDate, Date: t}
}

// List returns a list value
func List(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}

	return Value{Kind: KindList, List: items}
}

// Render formats the value for display
func (v Value) Render() string {
	switch v.Kind {
	case KindNull:
		return "missing value"
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindString:
		return v.Str
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindDate:
		return v.Date.Format(time.RFC3339)
	case KindList:
		items := make([]string, 0, len(v.List))
		for _, item := range v.List {
			items = append(items, item.Render())
		}

		return "{" + strings.Join(items, ", ") + "}"
	case KindRecord:
		fields := make([]string, 0, len(v.Record))
		for _, field := range v.Record {
			fields = append(fields, field.Key+": "+field.Value.Render())
		}

		return "{" + strings.Join(fields, ", ") + "}"
	default:
		return fmt.Sprintf("<unknown kind %d>", v.Kind)
	}
}
