// Package mapping reshapes documents according to a declarative field schema.
//
// A schema is an ordered tree of fields. Mapping a document drops fields the
// schema does not declare, rewrites alias keys to their canonical names,
// coerces leaf values to their declared type and orders fields the way the
// schema declares them. Mapping never fails.
//
// Field names must not contain ".", which is used to join nested names into
// dotted paths.
package mapping

// FieldType is an Elasticsearch field datatype.
type FieldType string

// Field types.
const (
	TypeNone            FieldType = ""
	TypeText            FieldType = "text"
	TypeKeyword         FieldType = "keyword"
	TypeByte            FieldType = "byte"
	TypeInteger         FieldType = "integer"
	TypeShort           FieldType = "short"
	TypeLong            FieldType = "long"
	TypeDouble          FieldType = "double"
	TypeFloat           FieldType = "float"
	TypeHalfFloat       FieldType = "half_float"
	TypeScaledFloat     FieldType = "scaled_float"
	TypeDate            FieldType = "date"
	TypeDateNanos       FieldType = "date_nanos"
	TypeBoolean         FieldType = "boolean"
	TypeJoin            FieldType = "join"
	TypeNested          FieldType = "nested"
	TypeObject          FieldType = "object"
	TypeBinary          FieldType = "binary"
	TypeIP              FieldType = "ip"
	TypeDenseVector     FieldType = "dense_vector"
	TypeAlias           FieldType = "alias"
	TypeHistogram       FieldType = "histogram"
	TypeFlattened       FieldType = "flattened"
	TypePoint           FieldType = "point"
	TypeGeoPoint        FieldType = "geo_point"
	TypeIntegerRange    FieldType = "integer_range"
	TypeFloatRange      FieldType = "float_range"
	TypeLongRange       FieldType = "long_range"
	TypeDoubleRange     FieldType = "double_range"
	TypeDateRange       FieldType = "date_range"
	TypeIPRange         FieldType = "ip_range"
	TypeRankFeature     FieldType = "rank_feature"
	TypeRankFeatures    FieldType = "rank_features"
	TypeSearchAsYouType FieldType = "search_as_you_type"
)

var knownTypes = map[FieldType]struct{}{
	TypeText: {}, TypeKeyword: {}, TypeByte: {}, TypeInteger: {}, TypeShort: {},
	TypeLong: {}, TypeDouble: {}, TypeFloat: {}, TypeHalfFloat: {}, TypeScaledFloat: {},
	TypeDate: {}, TypeDateNanos: {}, TypeBoolean: {}, TypeJoin: {}, TypeNested: {},
	TypeObject: {}, TypeBinary: {}, TypeIP: {}, TypeDenseVector: {}, TypeAlias: {},
	TypeHistogram: {}, TypeFlattened: {}, TypePoint: {}, TypeGeoPoint: {},
	TypeIntegerRange: {}, TypeFloatRange: {}, TypeLongRange: {}, TypeDoubleRange: {},
	TypeDateRange: {}, TypeIPRange: {}, TypeRankFeature: {}, TypeRankFeatures: {},
	TypeSearchAsYouType: {},
}

// ParseFieldType returns the FieldType for tag and whether it is recognized.
// The empty tag parses as TypeNone.
func ParseFieldType(tag string) (FieldType, bool) {
	t := FieldType(tag)
	if t == TypeNone {
		return TypeNone, true
	}
	_, ok := knownTypes[t]
	return t, ok
}

// Valid reports whether t is a recognized type tag.
func (t FieldType) Valid() bool {
	_, ok := knownTypes[t]
	return ok
}

// IsNesting reports whether fields of type t hold child fields.
func (t FieldType) IsNesting() bool {
	return t == TypeObject || t == TypeNested
}

func (t FieldType) String() string {
	return string(t)
}
