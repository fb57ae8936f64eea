package spec

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	// ValueString holds free text.
	ValueString ValueKind = iota
	// ValueNumber holds a numeric value.
	ValueNumber
	// ValueBool holds a boolean.
	ValueBool
	// ValueList holds an ordered list of values (multi-select answers).
	ValueList
)

// Value is a tagged variant for prompt answers and resolved variables.
// Validation and rendering dispatch on the tag instead of reflecting over
// untyped interfaces.
type Value struct {
	kind ValueKind
	str  string
	num  float64
	b    bool
	list []Value
}

// StringValue wraps a string.
func StringValue(s string) Value { return Value{kind: ValueString, str: s} }

// NumberValue wraps a number.
func NumberValue(n float64) Value { return Value{kind: ValueNumber, num: n} }

// BoolValue wraps a boolean.
func BoolValue(b bool) Value { return Value{kind: ValueBool, b: b} }

// ListValue wraps an ordered list of values.
func ListValue(items []Value) Value { return Value{kind: ValueList, list: items} }

// Kind returns the variant tag.
func (v Value) Kind() ValueKind { return v.kind }

// Str returns the string payload.
func (v Value) Str() string { return v.str }

// Num returns the numeric payload.
func (v Value) Num() float64 { return v.num }

// Bool returns the boolean payload.
func (v Value) Bool() bool { return v.b }

// List returns the list payload.
func (v Value) List() []Value { return v.list }

// Equal reports whether two values hold the same tag and payload.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case ValueString:
		return v.str == other.str
	case ValueNumber:
		return v.num == other.num
	case ValueBool:
		return v.b == other.b
	case ValueList:
		if len(v.list) != len(other.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(other.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Display renders the value the way it should appear in a prompt.
func (v Value) Display() string {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueBool:
		return strconv.FormatBool(v.b)
	case ValueList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			parts = append(parts, item.Display())
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

// Native converts the value into the representation handed to the template
// engine. Integral numbers become int64 so `{{ age }}` renders as `20`
// instead of a decimal expansion.
func (v Value) Native() any {
	switch v.kind {
	case ValueString:
		return v.str
	case ValueNumber:
		if v.num == math.Trunc(v.num) && v.num >= math.MinInt64 && v.num <= math.MaxInt64 {
			return int64(v.num)
		}
		return v.num
	case ValueBool:
		return v.b
	case ValueList:
		items := make([]any, 0, len(v.list))
		for _, item := range v.list {
			items = append(items, item.Native())
		}
		return items
	}
	return nil
}
