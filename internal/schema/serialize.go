package schema

import (
	"fmt"
	"math"
	"strconv"
)

// SerializeLeaf converts a resolved scalar or enum value into its JSON-safe
// result form. Built-in scalars accept the same inputs as the reference
// GraphQL implementation; custom scalars are returned unchanged; enum values
// must be one of the declared value names.
func (s *Schema) SerializeLeaf(typeName string, value any) (any, error) {
	t := s.Types[typeName]
	if t == nil {
		return nil, fmt.Errorf("unknown type %q", typeName)
	}
	switch t.Kind {
	case TypeKindEnum:
		name, ok := value.(string)
		if ok {
			for _, ev := range t.EnumValues {
				if ev.Name == name {
					return name, nil
				}
			}
		}
		return nil, fmt.Errorf("enum %q cannot represent value: %v", typeName, value)
	case TypeKindScalar:
	default:
		return nil, fmt.Errorf("type %q is not a leaf type", typeName)
	}

	switch typeName {
	case "Int":
		return serializeInt(value)
	case "Float":
		return serializeFloat(value)
	case "String":
		return serializeString(value)
	case "Boolean":
		return serializeBoolean(value)
	case "ID":
		return serializeID(value)
	default:
		return value, nil
	}
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

func serializeInt(value any) (any, error) {
	var f float64
	switch v := value.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if v == "" || err != nil {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %q", v)
		}
		f = n
	default:
		n, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("Int cannot represent non-integer value: %v", value)
		}
		f = n
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("Int cannot represent non-integer value: %v", value)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return nil, fmt.Errorf("Int cannot represent non 32-bit signed integer value: %v", value)
	}
	return int(f), nil
}

func serializeFloat(value any) (any, error) {
	var f float64
	switch v := value.(type) {
	case bool:
		if v {
			return 1.0, nil
		}
		return 0.0, nil
	case string:
		n, err := strconv.ParseFloat(v, 64)
		if v == "" || err != nil {
			return nil, fmt.Errorf("Float cannot represent non numeric value: %q", v)
		}
		f = n
	default:
		n, ok := toFloat(value)
		if !ok {
			return nil, fmt.Errorf("Float cannot represent non numeric value: %v", value)
		}
		f = n
	}
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, fmt.Errorf("Float cannot represent non numeric value: %v", value)
	}
	return f, nil
}

func serializeString(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	if f, ok := toFloat(value); ok {
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("String cannot represent value: %v", value)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return nil, fmt.Errorf("String cannot represent value: %v", value)
}

func serializeBoolean(value any) (any, error) {
	if v, ok := value.(bool); ok {
		return v, nil
	}
	if f, ok := toFloat(value); ok && !math.IsNaN(f) {
		return f != 0, nil
	}
	return nil, fmt.Errorf("Boolean cannot represent a non boolean value: %v", value)
}

func serializeID(value any) (any, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case fmt.Stringer:
		return v.String(), nil
	}
	if f, ok := toFloat(value); ok && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	}
	return nil, fmt.Errorf("ID cannot represent value: %v", value)
}
