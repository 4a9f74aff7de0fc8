package network

import (
	"bytes"
	"encoding/json"
)

type field struct {
	key   string
	value interface{}
}

// Record is a flat key/value payload that keeps its keys in insertion order.
// Values are strings, numbers or booleans.
type Record struct {
	fields []field
}

func NewRecord() *Record {
	return &Record{}
}

// Set stores value under key. An existing key keeps its position.
func (r *Record) Set(key string, value interface{}) *Record {
	for i := range r.fields {
		if r.fields[i].key == key {
			r.fields[i].value = value
			return r
		}
	}

	r.fields = append(r.fields, field{key: key, value: value})

	return r
}

func (r *Record) Get(key string) (interface{}, bool) {
	for _, f := range r.fields {
		if f.key == key {
			return f.value, true
		}
	}

	return nil, false
}

// String returns the value under key if it is a string.
func (r *Record) String(key string) string {
	value, _ := r.Get(key)
	s, _ := value.(string)
	return s
}

func (r *Record) Keys() []string {
	keys := make([]string, len(r.fields))
	for i, f := range r.fields {
		keys[i] = f.key
	}

	return keys
}

func (r *Record) Len() int {
	return len(r.fields)
}

// Map returns an unordered copy of the record.
func (r *Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.fields))
	for _, f := range r.fields {
		m[f.key] = f.value
	}

	return m
}

// MarshalJSON encodes the record as an object with keys in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}

		value, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}
