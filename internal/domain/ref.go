package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref is a reference to another record. The API sends it either as the bare
// id string or as the populated object.
type Ref[T any] struct {
	id    string
	value *T
}

// RefID builds an unpopulated reference
func RefID[T any](id string) Ref[T] {
	return Ref[T]{id: id}
}

// RefTo builds a populated reference
func RefTo[T any](id string, v *T) Ref[T] {
	return Ref[T]{id: id, value: v}
}

// ID returns the referenced record id
func (r Ref[T]) ID() string {
	return r.id
}

// Value returns the populated record, or nil when only the id was sent
func (r Ref[T]) Value() *T {
	return r.value
}

// Populated reports whether the full record is available
func (r Ref[T]) Populated() bool {
	return r.value != nil
}

// IsZero reports whether the reference is empty
func (r Ref[T]) IsZero() bool {
	return r.id == "" && r.value == nil
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref[T]{}
		return nil
	}

	if data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref[T]{id: id}
		return nil
	}

	if data[0] != '{' {
		return fmt.Errorf("domain: reference must be an id or an object, got %s", data)
	}

	var head struct {
		ID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	v := new(T)
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}
	*r = Ref[T]{id: head.ID, value: v}
	return nil
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.value != nil {
		return json.Marshal(r.value)
	}
	if r.id == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.id)
}
