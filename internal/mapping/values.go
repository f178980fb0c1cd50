package mapping

import "time"

// Values holds the resolved columns of one document. A nil value means the
// column stays NULL.
type Values struct {
	values map[string]any
}

func (v Values) Has(column string) bool {
	return v.values[column] != nil
}

func (v Values) Raw(column string) any {
	return v.values[column]
}

func (v Values) String(column string) string {
	s, _ := v.values[column].(string)
	return s
}

func (v Values) StringPtr(column string) *string {
	s, ok := v.values[column].(string)
	if !ok {
		return nil
	}
	return &s
}

func (v Values) Int(column string) int {
	switch n := v.values[column].(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func (v Values) Float(column string) float64 {
	switch n := v.values[column].(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func (v Values) Time(column string) time.Time {
	t, _ := v.values[column].(time.Time)
	return t
}

func (v Values) TimePtr(column string) *time.Time {
	t, ok := v.values[column].(time.Time)
	if !ok {
		return nil
	}
	return &t
}
