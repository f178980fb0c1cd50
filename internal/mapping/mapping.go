// Package mapping turns loosely typed source documents into column values.
//
// Each source collection has one Table listing, per target column, the source
// keys to read (in priority order), the value kind and the default used when
// no key carries a usable value. A value is usable when it is present, not
// nil, not an empty string, not numeric zero and not false.
package mapping

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type Kind int

const (
	String Kind = iota
	Int
	Float
	Time
)

func (k Kind) String() string {
	switch k {
	case String:
		return "string"
	case Int:
		return "int"
	case Float:
		return "float"
	case Time:
		return "time"
	}
	return "unknown"
}

type nowDefault struct{}

// Now as a Field default resolves to the migration clock at Apply time.
var Now = nowDefault{}

// Field maps one target column.
type Field struct {
	Column  string
	Sources []string
	Kind    Kind
	Default any
}

// Table is the mapping for one source collection.
type Table struct {
	Collection string
	Fields     []Field
}

// Apply resolves every field of t against data.
func (t Table) Apply(data map[string]any, now time.Time) Values {
	out := Values{values: make(map[string]any, len(t.Fields))}
	for _, f := range t.Fields {
		out.values[f.Column] = f.resolve(data, now)
	}
	return out
}

func (f Field) resolve(data map[string]any, now time.Time) any {
	for _, key := range f.Sources {
		raw, ok := Lookup(data, key)
		if !ok || isEmpty(raw) {
			continue
		}
		if v, ok := convert(raw, f.Kind); ok {
			return v
		}
	}
	if _, ok := f.Default.(nowDefault); ok {
		return now
	}
	return f.Default
}

// Lookup finds key in data. An exact match wins unless its value is empty;
// otherwise keys equal to key ignoring case are tried in sorted order and
// the first usable value is returned.
func Lookup(data map[string]any, key string) (any, bool) {
	exact, found := data[key]
	if found && !isEmpty(exact) {
		return exact, true
	}
	var folded []string
	for k := range data {
		if k != key && strings.EqualFold(k, key) {
			folded = append(folded, k)
		}
	}
	slices.Sort(folded)
	for _, k := range folded {
		if v := data[k]; !isEmpty(v) {
			return v, true
		}
	}
	if found {
		return exact, true
	}
	if len(folded) > 0 {
		return data[folded[0]], true
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case int:
		return t == 0
	case int32:
		return t == 0
	case int64:
		return t == 0
	case float32:
		return t == 0
	case float64:
		return t == 0 || math.IsNaN(t)
	case time.Time:
		return t.IsZero()
	}
	return false
}

func convert(v any, kind Kind) (any, bool) {
	switch kind {
	case String:
		return toString(v)
	case Int:
		f, ok := toFloat(v)
		if !ok {
			return nil, false
		}
		return int(f), true
	case Float:
		return toFloat(v)
	case Time:
		return toTime(v)
	}
	return nil, false
}

func toString(v any) (any, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case int:
		return strconv.Itoa(t), true
	case int32:
		return strconv.FormatInt(int64(t), 10), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case time.Time:
		return t.UTC().Format(time.RFC3339), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := toString(item); ok && s.(string) != "" {
				parts = append(parts, s.(string))
			}
		}
		if len(parts) == 0 {
			return nil, false
		}
		return strings.Join(parts, ", "), true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float32:
		return float64(t), true
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func toTime(v any) (any, bool) {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case string:
		s := strings.TrimSpace(x)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				t = parsed
				break
			}
		}
	case int:
		t = fromEpoch(int64(x))
	case int32:
		t = fromEpoch(int64(x))
	case int64:
		t = fromEpoch(x)
	case float64:
		t = fromEpoch(int64(x))
	case map[string]any:
		// exported Firestore timestamps: {"_seconds": ..., "_nanoseconds": ...}
		secs, ok := firstNumber(x, "_seconds", "seconds")
		if !ok {
			return nil, false
		}
		nanos, _ := firstNumber(x, "_nanoseconds", "nanoseconds")
		t = time.Unix(int64(secs), int64(nanos))
	}
	if !validTime(t) {
		return nil, false
	}
	return t, true
}

// Bare numbers below this are epoch seconds; at or above it, milliseconds.
// 1e11 seconds is past year 5000 and 1e11 milliseconds is in 1973.
const epochMillisThreshold = 1e11

func fromEpoch(n int64) time.Time {
	if n > -epochMillisThreshold && n < epochMillisThreshold {
		return time.Unix(n, 0)
	}
	return time.UnixMilli(n)
}

func firstNumber(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := toFloat(m[k]); ok {
			return f, true
		}
	}
	return 0, false
}

// validTime rejects zero and out-of-range dates the target columns cannot hold.
func validTime(t time.Time) bool {
	return !t.IsZero() && t.Year() >= 1900 && t.Year() <= 2100
}
