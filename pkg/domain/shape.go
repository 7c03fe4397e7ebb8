package domain

import "reflect"

// Shape classifies a cached value at runtime. The cache is untyped, so the
// merge strategy is chosen from the shapes of the stored and incoming values.
type Shape int

const (
	ShapeAbsent   Shape = iota // nil
	ShapeScalar                // bool, number, string, []byte, structs, pointers
	ShapeSequence              // slices and arrays
	ShapeMapping               // maps keyed by string
)

func (s Shape) String() string {
	switch s {
	case ShapeAbsent:
		return "absent"
	case ShapeScalar:
		return "scalar"
	case ShapeSequence:
		return "sequence"
	case ShapeMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// ShapeOf inspects v and reports its shape. The canonical containers
// (map[string]any and []any) are matched without reflection.
func ShapeOf(v any) Shape {
	switch v.(type) {
	case nil:
		return ShapeAbsent
	case map[string]any:
		return ShapeMapping
	case []any:
		return ShapeSequence
	case []byte, string, bool:
		return ShapeScalar
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return ShapeMapping
		}
		return ShapeScalar
	case reflect.Slice, reflect.Array:
		return ShapeSequence
	default:
		return ShapeScalar
	}
}
