package feed

import (
	"bytes"
	"encoding/json"
)

// Field is one key/value pair of an Object
type Field struct {
	Key   string
	Value any
}

// Object is a JSON object that keeps its keys in insertion order
type Object []Field

// Set appends a field, or replaces the value of an existing key in place
func (o Object) Set(key string, value any) Object {
	for i := range o {
		if o[i].Key == key {
			o[i].Value = value
			return o
		}
	}
	return append(o, Field{Key: key, Value: value})
}

// Value returns the value stored under key
func (o Object) Value(key string) (any, bool) {
	for _, f := range o {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// MarshalJSON implements json.Marshaler
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
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

// Mapping copies CSV column Column into JSON key Key
type Mapping struct {
	Column string
	Key    string
}

// apply copies each mapped column of row into o, in mapping order
func apply(o Object, row Row, mappings []Mapping) (Object, error) {
	for _, m := range mappings {
		v, err := row.Get(m.Column)
		if err != nil {
			return nil, err
		}
		o = o.Set(m.Key, v)
	}
	return o, nil
}
