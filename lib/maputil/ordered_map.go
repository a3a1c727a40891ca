package maputil

// OrderedMap is a string keyed map that remembers the order in which keys were first added.
type OrderedMap[T any] struct {
	keys []string
	// data - Important: Do not ever expose `data` out, always use the methods as it will cause corruption between `data` and `keys`
	data map[string]T
}

func NewOrderedMap[T any]() *OrderedMap[T] {
	return &OrderedMap[T]{
		keys: []string{},
		data: make(map[string]T),
	}
}

// Add inserts or replaces the value, a replaced key keeps its original position.
func (o *OrderedMap[T]) Add(key string, value T) {
	if _, ok := o.data[key]; !ok {
		o.keys = append(o.keys, key)
	}

	o.data[key] = value
}

// AddIfAbsent inserts the value only if the key has not been seen, returning true if it was inserted.
func (o *OrderedMap[T]) AddIfAbsent(key string, value T) bool {
	if _, ok := o.data[key]; ok {
		return false
	}

	o.Add(key, value)
	return true
}

func (o *OrderedMap[T]) Len() int {
	return len(o.keys)
}

// Values returns the values in insertion order.
func (o *OrderedMap[T]) Values() []T {
	values := make([]T, 0, len(o.keys))
	for _, key := range o.keys {
		values = append(values, o.data[key])
	}

	return values
}
