package graph

import (
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Reducer defines how a state value should be updated.
// It takes the current value and the new value, and returns the merged value.
// Reducers must be pure: they may not mutate either argument.
type Reducer func(current, new any) (any, error)

// Field declares a state field: its name, the reducer used to merge writes into it,
// and the Go type its values decode to when a checkpoint is restored.
type Field struct {
	Name    string
	Reducer Reducer

	decode func(raw json.RawMessage) (any, error)
}

// NewField declares a field whose values have type T.
// A nil reducer means OverwriteReducer.
//
// Example:
//
//	graph.NewField[int]("count", graph.OverwriteReducer)
//	graph.NewField[[]graph.Message]("messages", graph.AddMessages)
func NewField[T any](name string, reducer Reducer) Field {
	if reducer == nil {
		reducer = OverwriteReducer
	}
	return Field{
		Name:    name,
		Reducer: reducer,
		decode: func(raw json.RawMessage) (any, error) {
			var v T
			if err := json.Unmarshal(raw, &v); err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}

// Schema is the reducer registry of a graph. Every field a node, an input or a
// checkpoint writes must be declared here.
type Schema struct {
	fields map[string]Field
	order  []string
}

// NewSchema creates a schema from the given field declarations.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		if err := s.Declare(f); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewMessageSchema creates a schema with a "messages" field merged by AddMessages,
// plus any extra fields.
func NewMessageSchema(extra ...Field) (*Schema, error) {
	return NewSchema(append([]Field{NewField[[]Message](MessagesKey, AddMessages)}, extra...)...)
}

// Declare adds a field to the schema.
func (s *Schema) Declare(f Field) error {
	if f.Name == "" {
		return fmt.Errorf("field name must not be empty")
	}
	if _, exists := s.fields[f.Name]; exists {
		return &DuplicateNameError{Kind: "field", Name: f.Name}
	}
	if f.Reducer == nil {
		f.Reducer = OverwriteReducer
	}
	if f.decode == nil {
		f.decode = NewField[any](f.Name, nil).decode
	}
	s.fields[f.Name] = f
	s.order = append(s.order, f.Name)
	return nil
}

// Fields returns the declared field names in declaration order.
func (s *Schema) Fields() []string {
	return slices.Clone(s.order)
}

// Has reports whether name is declared.
func (s *Schema) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// Merge combines an existing field value with an incoming one using the field's reducer.
func (s *Schema) Merge(field string, existing, incoming any) (any, error) {
	f, ok := s.fields[field]
	if !ok {
		return nil, &ConfigurationError{Field: field}
	}
	merged, err := f.Reducer(existing, incoming)
	if err != nil {
		return nil, fmt.Errorf("failed to reduce key %s: %w", field, err)
	}
	return merged, nil
}

// Update merges a partial update into the current state and returns a new state.
// Neither argument is modified.
func (s *Schema) Update(current, update State) (State, error) {
	result := current.Clone()
	for _, k := range slices.Sorted(maps.Keys(update)) {
		merged, err := s.Merge(k, result[k], update[k])
		if err != nil {
			return nil, err
		}
		result[k] = merged
	}
	return result, nil
}

// Encode serializes a state to JSON for checkpointing.
func (s *Schema) Encode(state State) ([]byte, error) {
	data, err := json.Marshal(map[string]any(state))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

// Decode restores a state encoded by Encode, giving each field its declared type.
func (s *Schema) Decode(data []byte) (State, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	state := make(State, len(raw))
	for k, v := range raw {
		f, ok := s.fields[k]
		if !ok {
			return nil, &ConfigurationError{Field: k}
		}
		val, err := f.decode(v)
		if err != nil {
			return nil, fmt.Errorf("failed to decode field %s: %w", k, err)
		}
		state[k] = val
	}
	return state, nil
}

// Common Reducers

// OverwriteReducer replaces the old value with the new one.
func OverwriteReducer(current, new any) (any, error) {
	return new, nil
}

// Identifiable is implemented by list elements that can be replaced in place by id.
type Identifiable interface {
	MessageID() string
}

// AppendReducer appends the new value to the current slice.
// It supports appending a slice to a slice, or a single element to a slice.
// An incoming element whose MessageID matches an existing element replaces that
// element in its original position instead of being appended.
func AppendReducer(current, new any) (any, error) {
	if new == nil {
		return current, nil
	}

	newVal := reflect.ValueOf(new)
	if newVal.Kind() != reflect.Slice {
		single := reflect.MakeSlice(reflect.SliceOf(newVal.Type()), 0, 1)
		newVal = reflect.Append(single, newVal)
	}

	var result reflect.Value
	if current == nil {
		result = reflect.MakeSlice(newVal.Type(), 0, newVal.Len())
	} else {
		currVal := reflect.ValueOf(current)
		if currVal.Kind() != reflect.Slice {
			return nil, fmt.Errorf("current value is not a slice: %T", current)
		}
		if currVal.Type().Elem() == newVal.Type().Elem() {
			result = reflect.MakeSlice(currVal.Type(), currVal.Len(), currVal.Len()+newVal.Len())
			reflect.Copy(result, currVal)
		} else {
			// Types don't match, convert both to []any
			result = reflect.MakeSlice(reflect.TypeOf([]any{}), 0, currVal.Len()+newVal.Len())
			for i := 0; i < currVal.Len(); i++ {
				result = reflect.Append(result, currVal.Index(i))
			}
		}
	}

	index := make(map[string]int, result.Len())
	for i := 0; i < result.Len(); i++ {
		if id := elementID(result.Index(i)); id != "" {
			index[id] = i
		}
	}

	for i := 0; i < newVal.Len(); i++ {
		elem := newVal.Index(i)
		if id := elementID(elem); id != "" {
			if pos, ok := index[id]; ok {
				result.Index(pos).Set(elem)
				continue
			}
			index[id] = result.Len()
		}
		result = reflect.Append(result, elem)
	}

	return result.Interface(), nil
}

func elementID(v reflect.Value) string {
	if !v.IsValid() || !v.CanInterface() {
		return ""
	}
	if v.Kind() == reflect.Interface && v.IsNil() {
		return ""
	}
	if ident, ok := v.Interface().(Identifiable); ok {
		return ident.MessageID()
	}
	return ""
}

func (s *Schema) clone() *Schema {
	return &Schema{fields: maps.Clone(s.fields), order: slices.Clone(s.order)}
}
