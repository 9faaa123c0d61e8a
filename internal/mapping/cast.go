package mapping

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/jonesrussell/north-cloud/elastic-tool/internal/document"
)

// Date values treated as absent.
var zeroDates = map[string]struct{}{
	"0000-00-00":          {},
	"0000-00-00 00:00:00": {},
	"0000-00-00T00:00:00": {},
}

var truthy = map[string]struct{}{
	"1":    {},
	"true": {},
	"on":   {},
	"yes":  {},
}

// Cast coerces n to type t. Sequences are cast element by element. Cast never
// fails and is idempotent: Cast(Cast(n, t), t) equals Cast(n, t).
func Cast(n document.Node, t FieldType) document.Node {
	switch v := n.(type) {
	case document.Sequence:
		out := make(document.Sequence, len(v))
		for i, item := range v {
			out[i] = Cast(item, t)
		}
		return out
	case *document.Map:
		return castMap(v, t)
	case document.Scalar:
		return document.Scalar{Value: CastValue(v.Value, t)}
	default:
		return document.Scalar{Value: CastValue(nil, t)}
	}
}

// castMap handles a record found where a leaf value was declared.
func castMap(m *document.Map, t FieldType) document.Node {
	switch t {
	case TypeText, TypeKeyword, TypeShort, TypeInteger, TypeLong, TypeDouble,
		TypeHalfFloat, TypeScaledFloat, TypeFloat, TypeBoolean:
		return document.Scalar{Value: CastValue(nil, t)}
	case TypeDate:
		if m.Len() == 0 {
			return document.Scalar{Value: nil}
		}
		return document.Clone(m)
	default:
		return document.Clone(m)
	}
}

// CastValue coerces a scalar value to type t.
func CastValue(v any, t FieldType) any {
	switch t {
	case TypeText, TypeKeyword:
		return toString(v)
	case TypeShort, TypeInteger:
		return toInteger(v)
	case TypeLong, TypeDouble:
		return toDouble(v)
	case TypeHalfFloat, TypeScaledFloat, TypeFloat:
		return toFloat(v)
	case TypeBoolean:
		return toBoolean(v)
	case TypeDate:
		if isEmptyDate(v) {
			return nil
		}
		return v
	default:
		return v
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case nil:
		return ""
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return ""
	}
	return s
}

func toInteger(v any) int64 {
	switch x := v.(type) {
	case string:
		return parseInteger(x)
	case json.Number:
		return parseInteger(x.String())
	case float64:
		return truncate(x)
	case float32:
		return truncate(float64(x))
	}
	n, err := cast.ToInt64E(v)
	if err != nil {
		return 0
	}
	return n
}

// parseInteger reads a base 10 integer, truncating decimals. Anything else is 0.
func parseInteger(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return truncate(f)
	}
	return 0
}

func truncate(f float64) int64 {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

func toDouble(v any) float64 {
	var f float64
	switch x := v.(type) {
	case string:
		f = parseFloat(x, 64)
	case json.Number:
		f = parseFloat(x.String(), 64)
	default:
		var err error
		if f, err = cast.ToFloat64E(v); err != nil {
			return 0
		}
	}
	return finite(f)
}

func toFloat(v any) float32 {
	var f float64
	switch x := v.(type) {
	case float32:
		f = float64(x)
	case string:
		f = parseFloat(x, 32)
	case json.Number:
		f = parseFloat(x.String(), 32)
	default:
		var err error
		if f, err = cast.ToFloat64E(v); err != nil {
			return 0
		}
	}
	f32 := float32(f)
	if math.IsInf(float64(f32), 0) || math.IsNaN(float64(f32)) {
		return 0
	}
	return f32
}

func parseFloat(s string, bitSize int) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), bitSize)
	if err != nil {
		return 0
	}
	return finite(f)
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func toBoolean(v any) bool {
	var token string
	switch x := v.(type) {
	case bool:
		return x
	case nil:
		return false
	case string:
		token = x
	case json.Number:
		token = x.String()
	default:
		s, err := cast.ToStringE(v)
		if err != nil {
			return false
		}
		token = s
	}
	_, ok := truthy[strings.ToLower(strings.TrimSpace(token))]
	return ok
}

func isEmptyDate(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		s := strings.TrimSpace(x)
		if s == "" || s == "0" {
			return true
		}
		_, zero := zeroDates[s]
		return zero
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 0
	case bool:
		return !x
	}
	f, err := cast.ToFloat64E(v)
	return err == nil && f == 0
}
