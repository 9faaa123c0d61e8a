package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrNotObject is returned by ParseMap when the top-level value is not a JSON object.
var ErrNotObject = errors.New("document is not a JSON object")

// Parse decodes a single JSON value keeping object key order.
// Numbers are kept as json.Number.
func Parse(data []byte) (Node, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads a single JSON value from r.
func Decode(r io.Reader) (Node, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	n, err := decodeNode(dec)
	if err != nil {
		return nil, err
	}
	if _, err = dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after top-level value")
	}
	return n, nil
}

// ParseMap decodes a JSON object.
func ParseMap(data []byte) (*Map, error) {
	n, err := Parse(data)
	if err != nil {
		return nil, err
	}
	m, ok := n.(*Map)
	if !ok {
		return nil, ErrNotObject
	}
	return m, nil
}

func decodeNode(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return Scalar{Value: tok}, nil
	}

	switch delim {
	case '{':
		m := NewMap()
		for dec.More() {
			keyTok, keyErr := dec.Token()
			if keyErr != nil {
				return nil, fmt.Errorf("decode document key: %w", keyErr)
			}
			key, isString := keyTok.(string)
			if !isString {
				return nil, fmt.Errorf("decode document: unexpected key token %v", keyTok)
			}
			value, valueErr := decodeNode(dec)
			if valueErr != nil {
				return nil, valueErr
			}
			m.Set(key, value)
		}
		if _, err = dec.Token(); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		return m, nil
	case '[':
		seq := Sequence{}
		for dec.More() {
			item, itemErr := decodeNode(dec)
			if itemErr != nil {
				return nil, itemErr
			}
			seq = append(seq, item)
		}
		if _, err = dec.Token(); err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("decode document: unexpected delimiter %v", delim)
	}
}

// MarshalJSON encodes the scalar value.
func (s Scalar) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Value)
}

// MarshalJSON encodes the sequence; a nil sequence encodes as [].
func (s Sequence) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := marshalNode(item)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalJSON encodes the map with keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	var err error
	buf.WriteByte('{')
	first := true
	m.Range(func(key string, value Node) bool {
		if !first {
			buf.WriteByte(',')
		}
		first = false

		var kb, vb []byte
		if kb, err = json.Marshal(key); err != nil {
			return false
		}
		if vb, err = marshalNode(value); err != nil {
			return false
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
		return true
	})
	if err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into m, replacing its contents.
func (m *Map) UnmarshalJSON(data []byte) error {
	parsed, err := ParseMap(data)
	if err != nil {
		return err
	}
	m.fields = parsed.fields
	return nil
}

func marshalNode(n Node) ([]byte, error) {
	if n == nil {
		return []byte("null"), nil
	}
	return json.Marshal(n)
}
