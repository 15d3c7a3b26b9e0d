package models

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// Optional is a patch field: it distinguishes a key that was absent from the
// payload from one that was present with a zero value.
// JSON null is treated as absent.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns an Optional holding v. A nil slice or map is stored empty so
// that the field stays present after a JSON round trip.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: emptyIfNil(v), Set: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// IsZero lets `omitzero` drop unset fields on output.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(emptyIfNil(o.Value))
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = Optional[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = v
	o.Set = true
	return nil
}

// emptyIfNil replaces a nil slice or map with an empty one. Anything else is
// returned unchanged.
func emptyIfNil[T any](v T) T {
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			rv.Set(reflect.MakeSlice(rv.Type(), 0, 0))
		}
	case reflect.Map:
		if rv.IsNil() {
			rv.Set(reflect.MakeMap(rv.Type()))
		}
	}
	return v
}
