package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Field is one declared schema field.
type Field struct {
	Name string
	// Type is TypeNone when the declaration omits it.
	Type FieldType
	// Params holds every other declared mapping parameter (analyzer, format,
	// scaling_factor, ...). They are sent to Elasticsearch but do not affect mapping.
	Params map[string]any
	// Properties is nil unless the field declares children.
	Properties Properties
}

// EffectiveType returns the declared type, or TypeObject for an untyped field with children.
func (f *Field) EffectiveType() FieldType {
	if f.Type != TypeNone {
		return f.Type
	}
	if f.Properties != nil {
		return TypeObject
	}
	return TypeNone
}

// Properties is an ordered list of sibling fields.
type Properties []*Field

// UnmarshalYAML decodes a YAML mapping of field name to declaration, keeping
// declaration order. A scalar declaration is shorthand for the type:
//
//	id: keyword
//	stock:
//	  type: nested
//	  properties:
//	    id: {type: integer}
func (p *Properties) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*p = Properties{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a mapping", node.Line)
	}

	props := make(Properties, 0, len(node.Content)/2)
	seen := make(map[string]struct{}, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		if _, dup := seen[name]; dup {
			return fmt.Errorf("line %d: duplicate field %q", node.Content[i].Line, name)
		}
		seen[name] = struct{}{}

		field := &Field{Name: name}
		if err := field.decodeYAML(node.Content[i+1]); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		props = append(props, field)
	}
	*p = props
	return nil
}

func (f *Field) decodeYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		f.Type = FieldType(node.Value)
		return nil
	case yaml.MappingNode:
	default:
		return fmt.Errorf("line %d: field declaration must be a mapping or a type name", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "type":
			f.Type = FieldType(value.Value)
		case "properties":
			var props Properties
			if err := value.Decode(&props); err != nil {
				return err
			}
			f.Properties = props
		default:
			var v any
			if err := value.Decode(&v); err != nil {
				return fmt.Errorf("param %q: %w", key, err)
			}
			if f.Params == nil {
				f.Params = make(map[string]any)
			}
			f.Params[key] = v
		}
	}
	return nil
}

// MarshalJSON encodes the properties as an Elasticsearch "properties" object
// in declaration order.
func (p Properties) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(f)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(body)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the field declaration: type, params by name, then properties.
func (f *Field) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	write := func(key string, value any) error {
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("field %q param %q: %w", f.Name, key, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(key)
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(b)
		return nil
	}

	if f.Type != TypeNone {
		if err := write("type", f.Type); err != nil {
			return nil, err
		}
	}
	keys := make([]string, 0, len(f.Params))
	for k := range f.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := write(k, f.Params[k]); err != nil {
			return nil, err
		}
	}
	if f.Properties != nil {
		if err := write("properties", f.Properties); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Walk calls fn for every field in declaration order, depth first, with its dotted path.
func (p Properties) Walk(fn func(path string, f *Field) error) error {
	return p.walk("", fn)
}

func (p Properties) walk(parent string, fn func(path string, f *Field) error) error {
	for _, f := range p {
		path := joinPath(parent, f.Name)
		if err := fn(path, f); err != nil {
			return err
		}
		if err := f.Properties.walk(path, fn); err != nil {
			return err
		}
	}
	return nil
}

// Schema is a named index mapping: field properties, aliases and top-level
// mapping params such as dynamic or _source.
type Schema struct {
	ID         string
	Name       string
	Version    string
	Params     map[string]any
	Properties Properties
	Aliases    Aliases

	once   sync.Once
	mapper *Mapper
}

// Mapper returns the schema's document mapper. The mapper is created once and
// reads Properties and Aliases each time it builds a table, so Refresh picks up
// changes made to the schema after the first Map.
func (s *Schema) Mapper() *Mapper {
	s.once.Do(func() {
		s.mapper = newMapper(func() (Properties, Aliases) { return s.Properties, s.Aliases })
	})
	return s.mapper
}

// Body returns the put-mapping request body.
func (s *Schema) Body() ([]byte, error) {
	body := make(map[string]any, len(s.Params)+1)
	for k, v := range s.Params {
		body[k] = v
	}
	body["properties"] = s.Properties
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode mapping for schema %s: %w", s.ID, err)
	}
	return b, nil
}
