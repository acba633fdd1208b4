package rendergraph

import "reflect"

// Store is a type-keyed container used to pass data into passes.
//
// A Store holds at most one value per Go type. It is scoped to one graph
// instance: the same Store is handed to every pass's Setup during
// compilation and to every Execute callback during a run, so passes can
// exchange configuration and per-frame data without package-level state.
//
// Store is not safe for concurrent use.
type Store struct {
	m map[reflect.Type]any
}

// NewStore creates a new, empty Store.
func NewStore() *Store {
	return &Store{m: make(map[reflect.Type]any)}
}

// Len returns the number of values in the store.
func (s *Store) Len() int {
	return len(s.m)
}

// Clear removes all values from the store.
func (s *Store) Clear() {
	clear(s.m)
}

// StorePut inserts a value into the store, replacing any previous value of
// the same type. It returns the previous value and whether one was present.
func StorePut[T any](s *Store, v T) (T, bool) {
	key := reflect.TypeOf((*T)(nil)).Elem()
	prev, ok := s.m[key]
	s.m[key] = v
	if !ok {
		var zero T
		return zero, false
	}
	return prev.(T), true
}

// StoreGet retrieves the value of type T from the store.
func StoreGet[T any](s *Store) (T, bool) {
	key := reflect.TypeOf((*T)(nil)).Elem()
	v, ok := s.m[key]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// StoreRemove removes and returns the value of type T from the store.
func StoreRemove[T any](s *Store) (T, bool) {
	key := reflect.TypeOf((*T)(nil)).Elem()
	v, ok := s.m[key]
	if !ok {
		var zero T
		return zero, false
	}
	delete(s.m, key)
	return v.(T), true
}
