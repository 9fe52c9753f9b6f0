package store

import (
	"errors"
	"reflect"
	"time"
)

// ErrUnknownField is returned when a condition names a field the record type
// does not expose through Field.
var ErrUnknownField = errors.New("store: unknown filter field")

// Op is a comparison operator of a Condition.
type Op string

const (
	// OpEq matches when the field equals the single value.
	OpEq Op = "eq"
	// OpIn matches when the field equals any of the values. An empty set matches nothing.
	OpIn Op = "in"
)

// Condition is one typed predicate of a query: field, operator, value-or-set.
type Condition struct {
	Field  string
	Op     Op
	Values []any
}

// Eq builds an equality condition.
func Eq(field string, value any) Condition {
	return Condition{Field: field, Op: OpEq, Values: []any{value}}
}

// In builds a set-membership condition.
func In[V any](field string, values ...V) Condition {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return Condition{Field: field, Op: OpIn, Values: vals}
}

// matches reports whether doc satisfies every condition. Fields have already
// been checked by the caller.
func matches(doc Document, conds []Condition) bool {
	for _, cond := range conds {
		got, _ := doc.Field(cond.Field)
		if !cond.match(got) {
			return false
		}
	}
	return true
}

func (c Condition) match(got any) bool {
	g := normalize(got)
	switch c.Op {
	case OpEq:
		if len(c.Values) != 1 {
			return false
		}
		return reflect.DeepEqual(g, normalize(c.Values[0]))
	case OpIn:
		for _, v := range c.Values {
			if reflect.DeepEqual(g, normalize(v)) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// normalize folds named string, numeric, and pointer types onto their base
// kinds so that a condition built from a typed constant matches the field
// value regardless of how the record declares it.
func normalize(v any) any {
	if v == nil {
		return nil
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC().UnixNano()
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
		if t, ok := rv.Interface().(time.Time); ok {
			return t.UTC().UnixNano()
		}
	}

	switch rv.Kind() {
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return rv.Interface()
	}
}
